package auth

import (
	"github.com/gofiber/fiber/v2"

	"sekolahku_backend/internals/constants"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

// RequireKinds: lolos jika principal termasuk salah satu kind.
func RequireKinds(customForbiddenMessage string, kinds ...helperAuth.PrincipalKind) fiber.Handler {
	if customForbiddenMessage == "" {
		customForbiddenMessage = "Forbidden: you are not authorized to access this resource"
	}
	return func(c *fiber.Ctx) error {
		p, err := helperAuth.GetPrincipal(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: missing principal")
		}
		for _, k := range kinds {
			if p.Kind == k {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, customForbiddenMessage)
	}
}

// Shortcut biar lebih clean pemakaian
func OnlyAdmin() fiber.Handler {
	return RequireKinds(constants.ErrOnlyAdmins, helperAuth.KindAdmin)
}

func TeacherOrAdmin() fiber.Handler {
	return RequireKinds(constants.ErrOnlyTeachersOrAdmin, helperAuth.KindTeacher, helperAuth.KindAdmin)
}
