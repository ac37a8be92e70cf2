// file: internals/features/users/auth/route/auth_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"

	controller "sekolahku_backend/internals/features/users/auth/controller"
	"sekolahku_backend/internals/features/users/auth/service"
	rateLimiter "sekolahku_backend/internals/middlewares"
)

// AuthPublicRoutes: 🔓 tanpa token. Daftarkan SEBELUM group yang memasang AuthJWT.
func AuthPublicRoutes(r fiber.Router, svc *service.AuthService) {
	authController := controller.NewAuthController(svc)

	baseAuth := r.Group("/auth")
	baseAuth.Post("/login", rateLimiter.LoginRateLimiter(), authController.Login)
	baseAuth.Post("/register", rateLimiter.RegisterRateLimiter(), authController.Register)
}

// AuthProtectedRoutes: 🔐 r sudah melewati AuthJWT.
func AuthProtectedRoutes(r fiber.Router, svc *service.AuthService) {
	authController := controller.NewAuthController(svc)

	protectedAuth := r.Group("/auth")
	protectedAuth.Get("/me", authController.Me)
	protectedAuth.Post("/logout", authController.Logout)
	protectedAuth.Post("/change-password", authController.ChangePassword)
}
