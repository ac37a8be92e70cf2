// file: internals/features/attendance/controller/bulk_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"sekolahku_backend/internals/features/attendance/dto"
	"sekolahku_backend/internals/features/attendance/service"
	helper "sekolahku_backend/internals/helpers"
)

type BulkController struct {
	Svc       *service.BulkManagementService
	Validator *validator.Validate
}

func NewBulkController(svc *service.BulkManagementService) *BulkController {
	return &BulkController{Svc: svc, Validator: helper.NewValidator()}
}

// POST /attendance/bulk/validate-pattern
func (ctl *BulkController) ValidatePattern(c *fiber.Ctx) error {
	p, err := principalOf(c)
	if err != nil {
		return fail(c, err)
	}
	var req dto.ValidatePatternRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	out, err := ctl.Svc.ValidatePattern(c.UserContext(), p, req)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// POST /attendance/bulk/assign-students
func (ctl *BulkController) AssignStudents(c *fiber.Ctx) error {
	p, err := principalOf(c)
	if err != nil {
		return fail(c, err)
	}
	var req dto.AssignStudentsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	out, err := ctl.Svc.AssignStudents(c.UserContext(), p, req)
	if err != nil {
		return fail(c, err)
	}
	if !out.Committed {
		return helper.JsonOK(c, "Preview; kirim confirm=true untuk menyimpan", out)
	}
	return helper.JsonOK(c, "Siswa berhasil ditempatkan", out)
}

// POST /attendance/bulk/transfer
func (ctl *BulkController) Transfer(c *fiber.Ctx) error {
	p, err := principalOf(c)
	if err != nil {
		return fail(c, err)
	}
	var req dto.TransferStudentsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	out, err := ctl.Svc.TransferStudents(c.UserContext(), p, req, auditInfo(c))
	if err != nil {
		return fail(c, err)
	}
	if !out.Committed {
		return helper.JsonOK(c, "Preview; kirim confirm=true untuk memindahkan", out)
	}
	return helper.JsonOK(c, "Siswa berhasil dipindahkan", out)
}

// GET /attendance/bulk/jobs?limit=
func (ctl *BulkController) Jobs(c *fiber.Ctx) error {
	p, err := principalOf(c)
	if err != nil {
		return fail(c, err)
	}
	rows, err := ctl.Svc.ListJobs(c.UserContext(), p, c.QueryInt("limit", 50))
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}
