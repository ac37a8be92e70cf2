// file: internals/features/attendance/controller/session_config_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/dto"
	"sekolahku_backend/internals/features/attendance/service"
	helper "sekolahku_backend/internals/helpers"
)

type SessionConfigController struct {
	Svc       *service.SessionConfigService
	Validator *validator.Validate
}

func NewSessionConfigController(svc *service.SessionConfigService) *SessionConfigController {
	return &SessionConfigController{Svc: svc, Validator: helper.NewValidator()}
}

// POST /attendance/session-configs
func (ctl *SessionConfigController) Create(c *fiber.Ctx) error {
	p, err := principalOf(c)
	if err != nil {
		return fail(c, err)
	}
	var req dto.CreateSessionConfigurationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	req.SessionType = strings.ToLower(strings.TrimSpace(req.SessionType))
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	m, err := ctl.Svc.Create(c.UserContext(), p, req)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonCreated(c, "Konfigurasi sesi dibuat", m)
}

// GET /attendance/session-configs?classId&subjectId&active=true
func (ctl *SessionConfigController) List(c *fiber.Ctx) error {
	p, err := principalOf(c)
	if err != nil {
		return fail(c, err)
	}
	classID, err := optionalQueryUUID(c, "classId")
	if err != nil {
		return fail(c, err)
	}
	subjectID, err := optionalQueryUUID(c, "subjectId")
	if err != nil {
		return fail(c, err)
	}
	cid, sid := uuid.Nil, uuid.Nil
	if classID != nil {
		cid = *classID
	}
	if subjectID != nil {
		sid = *subjectID
	}

	rows, err := ctl.Svc.List(c.UserContext(), p, cid, sid, c.QueryBool("active", false))
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// PATCH /attendance/session-configs/:id
func (ctl *SessionConfigController) Patch(c *fiber.Ctx) error {
	p, err := principalOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.PatchSessionConfigurationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	m, err := ctl.Svc.Patch(c.UserContext(), p, id, req)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonUpdated(c, "Konfigurasi sesi diperbarui", m)
}
