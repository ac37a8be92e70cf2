package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

// schoolOf: semua query academics di-scope ke sekolah principal.
func schoolOf(c *fiber.Ctx) (uuid.UUID, error) {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return p.SchoolID, nil
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, field+" tidak valid")
	}
	return id, nil
}

func parseOptionalID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := parseID(*raw, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// dbError: not found → 404, unique → 409, lainnya → 500 (dicatat).
func dbError(c *fiber.Ctx, err error, what, conflictMsg string) error {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return helper.JsonError(c, fe.Code, fe.Message)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, what+" tidak ditemukan")
	case helper.IsUniqueViolation(err):
		return helper.JsonError(c, fiber.StatusConflict, conflictMsg)
	}
	log.Printf("[ERROR] %s %s (%s): %v", c.Method(), c.OriginalURL(), what, err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Terjadi kesalahan pada server")
}
