// file: internals/features/attendance/controller/attendance_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"sekolahku_backend/internals/features/attendance/dto"
	"sekolahku_backend/internals/features/attendance/service"
	helper "sekolahku_backend/internals/helpers"
)

type AttendanceController struct {
	Svc       *service.AttendanceService
	Validator *validator.Validate
}

func NewAttendanceController(svc *service.AttendanceService) *AttendanceController {
	return &AttendanceController{Svc: svc, Validator: helper.NewValidator()}
}

// POST /attendance/mark
func (ctl *AttendanceController) Mark(c *fiber.Ctx) error {
	p, err := principalOf(c)
	if err != nil {
		return fail(c, err)
	}
	var req dto.MarkAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	res, err := ctl.Svc.BulkMarkAttendance(c.UserContext(), p, req, auditInfo(c))
	if err != nil {
		return fail(c, err)
	}
	msg := "Absensi berhasil disimpan"
	if res.FailureCount > 0 {
		msg = "Absensi disimpan sebagian"
	}
	return helper.JsonOK(c, msg, res)
}

// GET /attendance/class/:classId/students?subjectId=
func (ctl *AttendanceController) ClassStudents(c *fiber.Ctx) error {
	p, err := principalOf(c)
	if err != nil {
		return fail(c, err)
	}
	classID, err := paramUUID(c, "classId")
	if err != nil {
		return fail(c, err)
	}
	subjectID, err := queryUUID(c, "subjectId")
	if err != nil {
		return fail(c, err)
	}

	rows, err := ctl.Svc.GetClassStudentsForAttendance(c.UserContext(), p, classID, subjectID)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// GET /attendance/records?classId&subjectId&studentId&startDate&endDate&status&session&page&limit&sortBy&sortOrder
func (ctl *AttendanceController) Records(c *fiber.Ctx) error {
	p, err := principalOf(c)
	if err != nil {
		return fail(c, err)
	}
	var q dto.AttendanceRecordQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query tidak valid")
	}
	if err := ctl.Validator.Struct(q); err != nil {
		return helper.ValidationError(c, err)
	}
	page := helper.ParseFiber(c, "date", "desc", helper.DefaultOpts)

	out, err := ctl.Svc.GetAttendanceByFilters(c.UserContext(), p, q, page)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// PUT|PATCH /attendance/:recordId
func (ctl *AttendanceController) Update(c *fiber.Ctx) error {
	p, err := principalOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "recordId")
	if err != nil {
		return fail(c, err)
	}
	var req dto.UpdateAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	rec, err := ctl.Svc.UpdateAttendance(c.UserContext(), p, id, req, auditInfo(c))
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonUpdated(c, "Absensi diperbarui", rec)
}

// DELETE /attendance/:recordId  body: {reason}
func (ctl *AttendanceController) Delete(c *fiber.Ctx) error {
	p, err := principalOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "recordId")
	if err != nil {
		return fail(c, err)
	}
	var req dto.DeleteAttendanceRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
		}
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	if err := ctl.Svc.DeleteAttendance(c.UserContext(), p, id, req.Reason, auditInfo(c)); err != nil {
		return fail(c, err)
	}
	return helper.JsonDeleted(c, "Absensi dihapus", fiber.Map{"id": id})
}

// GET /attendance/session-options?classId&subjectId
func (ctl *AttendanceController) SessionOptions(c *fiber.Ctx) error {
	p, err := principalOf(c)
	if err != nil {
		return fail(c, err)
	}
	classID, err := queryUUID(c, "classId")
	if err != nil {
		return fail(c, err)
	}
	subjectID, err := queryUUID(c, "subjectId")
	if err != nil {
		return fail(c, err)
	}

	opts, err := ctl.Svc.GetSessionOptions(c.UserContext(), p, classID, subjectID)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", opts)
}

// GET /attendance/session-summary?classId&subjectId&date&session
func (ctl *AttendanceController) SessionSummary(c *fiber.Ctx) error {
	p, err := principalOf(c)
	if err != nil {
		return fail(c, err)
	}
	classID, err := queryUUID(c, "classId")
	if err != nil {
		return fail(c, err)
	}
	subjectID, err := queryUUID(c, "subjectId")
	if err != nil {
		return fail(c, err)
	}

	sum, err := ctl.Svc.GetSessionSummary(c.UserContext(), p, classID, subjectID, c.Query("date"), c.Query("session"))
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", sum)
}

// GET /attendance/:recordId/audit
func (ctl *AttendanceController) AuditTrail(c *fiber.Ctx) error {
	p, err := principalOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "recordId")
	if err != nil {
		return fail(c, err)
	}

	rows, err := ctl.Svc.AuditTrail(c.UserContext(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}
