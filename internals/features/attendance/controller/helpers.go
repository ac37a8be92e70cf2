// file: internals/features/attendance/controller/helpers.go
package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/service"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

/* ========== small helpers ========== */

// fail: error service → envelope JSON dengan status sesuai taksonomi.
func fail(c *fiber.Ctx, err error) error {
	return helper.JsonErrorWithDetails(c, service.StatusCode(err), service.PublicMessage(err), service.ErrorDetails(err))
}

func principalOf(c *fiber.Ctx) (helperAuth.Principal, error) {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return p, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return p, nil
}

func auditInfo(c *fiber.Ctx) service.AuditInfo {
	info := service.AuditInfo{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
	if rid, ok := c.Locals("reqid").(string); ok && rid != "" {
		info.Metadata = map[string]any{"requestId": rid}
	}
	return info
}

func parseUUID(raw, name string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, name+" wajib diisi")
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, name+" tidak valid")
	}
	return id, nil
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return parseUUID(c.Params(name), name)
}

func queryUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return parseUUID(c.Query(name), name)
}

// optionalQueryUUID: kosong → nil, invalid → 400.
func optionalQueryUUID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	if strings.TrimSpace(c.Query(name)) == "" {
		return nil, nil
	}
	id, err := queryUUID(c, name)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
