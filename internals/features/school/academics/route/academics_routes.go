// file: internals/features/school/academics/route/academics_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	acCtrl "sekolahku_backend/internals/features/school/academics/controller"
	authMw "sekolahku_backend/internals/middlewares/auth"
)

// AcademicsRoutes: r sudah melewati AuthJWT. Tulis = admin, baca = guru/admin.
func AcademicsRoutes(r fiber.Router, db *gorm.DB) {
	classCtl := acCtrl.NewClassController(db)
	subjectCtl := acCtrl.NewSubjectController(db)
	teacherCtl := acCtrl.NewTeacherController(db)
	studentCtl := acCtrl.NewStudentController(db)

	g := r.Group("/academics")

	// Classes
	g.Post("/classes", authMw.OnlyAdmin(), classCtl.Create)
	g.Get("/classes", authMw.TeacherOrAdmin(), classCtl.List)
	g.Get("/classes/:id", authMw.TeacherOrAdmin(), classCtl.Get)
	g.Get("/classes/:classId/subjects", authMw.TeacherOrAdmin(), subjectCtl.ListByClass)
	g.Get("/classes/:classId/students", authMw.TeacherOrAdmin(), studentCtl.ListByClass)

	// Subjects
	g.Post("/subjects", authMw.OnlyAdmin(), subjectCtl.Create)

	// Teachers
	tg := g.Group("/teachers", authMw.OnlyAdmin())
	tg.Post("/", teacherCtl.Create)
	tg.Get("/", teacherCtl.List)
	tg.Post("/:id/assignments", teacherCtl.Assign)
	tg.Delete("/:id/assignments", teacherCtl.Unassign)

	// Students
	g.Post("/students", authMw.OnlyAdmin(), studentCtl.Create)
	g.Get("/students", authMw.TeacherOrAdmin(), studentCtl.List)
}
