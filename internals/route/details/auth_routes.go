package details

import (
	"github.com/gofiber/fiber/v2"

	authRoute "sekolahku_backend/internals/features/users/auth/route"
	authService "sekolahku_backend/internals/features/users/auth/service"
)

func AuthPublicRoutes(r fiber.Router, svc *authService.AuthService) {
	authRoute.AuthPublicRoutes(r, svc)
}

func AuthProtectedRoutes(r fiber.Router, svc *authService.AuthService) {
	authRoute.AuthProtectedRoutes(r, svc)
}
