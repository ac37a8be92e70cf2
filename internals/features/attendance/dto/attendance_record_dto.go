// file: internals/features/attendance/dto/attendance_record_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/model"
	helper "sekolahku_backend/internals/helpers"
)

/* =========================================================
 * REQUESTS
 * ========================================================= */

// Status & studentId per item tidak divalidasi di sini: item yang salah
// dilaporkan sebagai kegagalan per-siswa, bukan menolak seluruh batch.
type StudentAttendanceEntry struct {
	StudentID string `json:"studentId"`
	Status    string `json:"status"`
}

type MarkAttendanceRequest struct {
	ClassID           string                   `json:"classId" validate:"required,uuid"`
	SubjectID         string                   `json:"subjectId" validate:"required,uuid"`
	TeacherID         *string                  `json:"teacherId" validate:"omitempty,uuid"` // hanya untuk admin
	Date              string                   `json:"date" validate:"required"`
	Session           string                   `json:"session" validate:"required,max=80"`
	StudentAttendance []StudentAttendanceEntry `json:"studentAttendance" validate:"required,min=1"`
	UserRole          string                   `json:"userRole,omitempty"` // diabaikan; role diambil dari token
}

// Update (partial JSON)
type UpdateAttendanceRequest struct {
	Status  *string `json:"status" validate:"omitempty,oneof=present absent late excused"`
	Session *string `json:"session" validate:"omitempty,min=1,max=80"`
	Date    *string `json:"date" validate:"omitempty"`
	Reason  *string `json:"reason" validate:"omitempty,max=500"`
}

func (r UpdateAttendanceRequest) Empty() bool {
	return r.Status == nil && r.Session == nil && r.Date == nil
}

type DeleteAttendanceRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// Filter / List (query)
type AttendanceRecordQuery struct {
	ClassID   string `query:"classId"`
	SubjectID string `query:"subjectId"`
	TeacherID string `query:"teacherId"`
	StudentID string `query:"studentId"`
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
	Status    string `query:"status" validate:"omitempty,oneof=present absent late excused"`
	Session   string `query:"session" validate:"omitempty,max=80"`
	Expand    bool   `query:"expand"`
}

/* =========================================================
 * RESPONSE
 * ========================================================= */

type RosterStudent struct {
	StudentID uuid.UUID `json:"studentId"`
	Name      string    `json:"name"`
	RollNum   int       `json:"rollNum"`
}

type MarkSuccess struct {
	StudentID uuid.UUID              `json:"studentId"`
	RecordID  uuid.UUID              `json:"recordId"`
	Status    model.AttendanceStatus `json:"status"`
	Action    model.AuditAction      `json:"action"`
}

type MarkFailure struct {
	StudentID string `json:"studentId"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error"`
}

type BulkMarkResult struct {
	SuccessCount int           `json:"successCount"`
	FailureCount int           `json:"failureCount"`
	Successful   []MarkSuccess `json:"successful"`
	Failed       []MarkFailure `json:"failed"`
}

func NewBulkMarkResult() *BulkMarkResult {
	return &BulkMarkResult{Successful: []MarkSuccess{}, Failed: []MarkFailure{}}
}

func (r *BulkMarkResult) Ok(s MarkSuccess) {
	r.Successful = append(r.Successful, s)
	r.SuccessCount++
}

func (r *BulkMarkResult) Fail(f MarkFailure) {
	r.Failed = append(r.Failed, f)
	r.FailureCount++
}

// Referensi hasil ekspansi (opsional)
type StudentRef struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	RollNum int       `json:"rollNum"`
}

type NamedRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Code string    `json:"code,omitempty"`
}

type AttendanceRecordView struct {
	model.AttendanceRecordModel
	Student *StudentRef `json:"student,omitempty"`
	Teacher *NamedRef   `json:"teacher,omitempty"`
	Subject *NamedRef   `json:"subject,omitempty"`
	Class   *NamedRef   `json:"class,omitempty"`
}

type RecordPage struct {
	Records    []AttendanceRecordView `json:"records"`
	Pagination helper.Pagination      `json:"pagination"`
}

type SessionSummary struct {
	ClassID   uuid.UUID              `json:"classId"`
	SubjectID uuid.UUID              `json:"subjectId"`
	Date      string                 `json:"date"`
	Session   string                 `json:"session"`
	Present   int                    `json:"present"`
	Absent    int                    `json:"absent"`
	Late      int                    `json:"late"`
	Excused   int                    `json:"excused"`
	Total     int                    `json:"total"`
	Students  map[string][]uuid.UUID `json:"students"`
}

// Baris export CSV
type ExportRow struct {
	Date        time.Time
	Session     string
	RollNum     int
	StudentName string
	StudentCode string
	Subject     string
	Status      model.AttendanceStatus
	MarkedBy    string
}

/* =========================================================
 * HELPERS
 * ========================================================= */

func NewRosterStudent(id uuid.UUID, name string, roll int) RosterStudent {
	return RosterStudent{StudentID: id, Name: name, RollNum: roll}
}
