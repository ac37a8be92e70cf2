// file: internals/features/attendance/dto/attendance_summary_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/model"
)

type StudentSummaryView struct {
	model.AttendanceSummaryModel
	SubjectName string `json:"subjectName,omitempty"`
	SubjectCode string `json:"subjectCode,omitempty"`
}

// Satu baris per siswa roster; siswa tanpa record → nol.
type ClassSummaryRow struct {
	StudentID            uuid.UUID  `json:"studentId"`
	Name                 string     `json:"name"`
	RollNum              int        `json:"rollNum"`
	TotalSessions        int        `json:"totalSessions"`
	PresentCount         int        `json:"presentCount"`
	AbsentCount          int        `json:"absentCount"`
	LateCount            int        `json:"lateCount"`
	ExcusedCount         int        `json:"excusedCount"`
	AttendancePercentage float64    `json:"attendancePercentage"`
	LastUpdated          *time.Time `json:"lastUpdated,omitempty"`
}

type ClassSummary struct {
	ClassID   uuid.UUID         `json:"classId"`
	SubjectID uuid.UUID         `json:"subjectId"`
	Students  []ClassSummaryRow `json:"students"`
}
