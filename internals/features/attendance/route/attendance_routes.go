// file: internals/features/attendance/route/attendance_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"

	attCtrl "sekolahku_backend/internals/features/attendance/controller"
	"sekolahku_backend/internals/features/attendance/repository"
	"sekolahku_backend/internals/features/attendance/service"
	authMw "sekolahku_backend/internals/middlewares/auth"
)

// AttendanceRoutes: r sudah melewati AuthJWT (principal ada di locals).
func AttendanceRoutes(r fiber.Router, store repository.Store, cfg service.Config) {
	att := service.NewAttendanceService(store, cfg)
	cfgSvc := service.NewSessionConfigService(store, att.Validation())
	bulk := service.NewBulkManagementService(store, att.Summaries(), service.NewAuditService(store))

	attendanceCtl := attCtrl.NewAttendanceController(att)
	reportCtl := attCtrl.NewReportController(att)
	sessionCtl := attCtrl.NewSessionConfigController(cfgSvc)
	bulkCtl := attCtrl.NewBulkController(bulk)

	g := r.Group("/attendance")

	// =====================
	// Marking & records
	// =====================
	g.Post("/mark", authMw.TeacherOrAdmin(), attendanceCtl.Mark)
	g.Get("/class/:classId/students", authMw.TeacherOrAdmin(), attendanceCtl.ClassStudents)
	g.Get("/records", attendanceCtl.Records) // siswa dibatasi ke miliknya di service
	g.Get("/session-options", authMw.TeacherOrAdmin(), attendanceCtl.SessionOptions)
	g.Get("/session-summary", authMw.TeacherOrAdmin(), attendanceCtl.SessionSummary)

	// =====================
	// Reporting
	// =====================
	g.Get("/summary/student/:studentId", reportCtl.StudentSummary)
	g.Get("/summary/class/:classId", authMw.TeacherOrAdmin(), reportCtl.ClassSummary)
	g.Get("/reports/class/:classId/export", authMw.TeacherOrAdmin(), reportCtl.ExportClass)

	// =====================
	// Session configuration
	// =====================
	sc := g.Group("/session-configs")
	sc.Post("/", authMw.OnlyAdmin(), sessionCtl.Create)
	sc.Get("/", authMw.TeacherOrAdmin(), sessionCtl.List)
	sc.Patch("/:id", authMw.OnlyAdmin(), sessionCtl.Patch)

	// =====================
	// Bulk roster (admin)
	// =====================
	bg := g.Group("/bulk", authMw.OnlyAdmin())
	bg.Post("/validate-pattern", bulkCtl.ValidatePattern)
	bg.Post("/assign-students", bulkCtl.AssignStudents)
	bg.Post("/transfer", bulkCtl.Transfer)
	bg.Get("/jobs", bulkCtl.Jobs)

	// paling akhir: param catch-all /:recordId
	g.Get("/:recordId/audit", authMw.TeacherOrAdmin(), attendanceCtl.AuditTrail)
	g.Put("/:recordId", authMw.TeacherOrAdmin(), attendanceCtl.Update)
	g.Patch("/:recordId", authMw.TeacherOrAdmin(), attendanceCtl.Update)
	g.Delete("/:recordId", authMw.OnlyAdmin(), attendanceCtl.Delete)
}
