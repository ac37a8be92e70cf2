// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	attendanceService "sekolahku_backend/internals/features/attendance/service"
	authService "sekolahku_backend/internals/features/users/auth/service"
	authMw "sekolahku_backend/internals/middlewares/auth"
	routeDetails "sekolahku_backend/internals/route/details"
)

var startTime time.Time

type Deps struct {
	DB         *gorm.DB
	JWTSecret  string
	Auth       *authService.AuthService
	Attendance attendanceService.Config
}

func SetupRoutes(app *fiber.App, d Deps) {
	startTime = time.Now()

	BaseRoutes(app, d.DB)

	// ===================== PUBLIC =====================
	// harus didaftarkan sebelum group private: group private memasang AuthJWT di prefix yang sama
	log.Println("[INFO] Setting up PUBLIC auth routes...")
	public := app.Group("/api")
	routeDetails.AuthPublicRoutes(public, d.Auth)

	// ===================== PRIVATE =====================
	log.Println("[INFO] Setting up PRIVATE group (AuthJWT)...")
	private := app.Group("/api",
		authMw.AuthJWT(authMw.AuthJWTOpts{
			Secret:      d.JWTSecret,
			Resolver:    d.Auth,
			Revocations: d.Auth,
		}),
	)
	routeDetails.AuthProtectedRoutes(private, d.Auth)
	routeDetails.SchoolPrivateRoutes(private, d.DB, d.Attendance)

	log.Println("[INFO] Routes ready")
}
