// file: internals/features/attendance/controller/report_controller.go
package controller

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"sekolahku_backend/internals/features/attendance/service"
	helper "sekolahku_backend/internals/helpers"
	"sekolahku_backend/internals/helpers/dbtime"
)

type ReportController struct {
	Svc *service.AttendanceService
}

func NewReportController(svc *service.AttendanceService) *ReportController {
	return &ReportController{Svc: svc}
}

// GET /attendance/summary/student/:studentId?subjectId=
func (ctl *ReportController) StudentSummary(c *fiber.Ctx) error {
	p, err := principalOf(c)
	if err != nil {
		return fail(c, err)
	}
	studentID, err := paramUUID(c, "studentId")
	if err != nil {
		return fail(c, err)
	}
	subjectID, err := optionalQueryUUID(c, "subjectId")
	if err != nil {
		return fail(c, err)
	}

	rows, err := ctl.Svc.StudentSummaries(c.UserContext(), p, studentID, subjectID)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// GET /attendance/summary/class/:classId?subjectId=
func (ctl *ReportController) ClassSummary(c *fiber.Ctx) error {
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

	out, err := ctl.Svc.ClassSummary(c.UserContext(), p, classID, subjectID)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

var exportHeader = []string{"date", "session", "roll_number", "student_code", "student_name", "subject", "status", "marked_by"}

// GET /attendance/reports/class/:classId/export?subjectId&startDate&endDate
func (ctl *ReportController) ExportClass(c *fiber.Ctx) error {
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

	rows, err := ctl.Svc.ExportClassRecords(c.UserContext(), p, classID, subjectID, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		return fail(c, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(exportHeader)
	for _, r := range rows {
		_ = w.Write([]string{
			dbtime.FormatDate(r.Date),
			r.Session,
			strconv.Itoa(r.RollNum),
			r.StudentCode,
			r.StudentName,
			r.Subject,
			string(r.Status),
			r.MarkedBy,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fail(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="attendance_%s_%s.csv"`, classID, subjectID))
	return c.Send(buf.Bytes())
}
