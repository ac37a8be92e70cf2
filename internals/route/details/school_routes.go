// internals/route/details/school_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	attendanceRepo "sekolahku_backend/internals/features/attendance/repository"
	attendanceRoutes "sekolahku_backend/internals/features/attendance/route"
	attendanceService "sekolahku_backend/internals/features/attendance/service"
	academicsRoutes "sekolahku_backend/internals/features/school/academics/route"
)

/* ===================== PRIVATE (AuthJWT) ===================== */
// Otorisasi per-role ada di masing-masing route/service.
func SchoolPrivateRoutes(r fiber.Router, db *gorm.DB, cfg attendanceService.Config) {
	academicsRoutes.AcademicsRoutes(r, db)
	attendanceRoutes.AttendanceRoutes(r, attendanceRepo.NewGormStore(db), cfg)
}
