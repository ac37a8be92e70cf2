// file: internals/features/attendance/model/attendance_summary_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Agregat turunan per (student, subject, class). Selalu dihitung ulang penuh
// dari attendance_records, tidak pernah di-patch inkremental.
type AttendanceSummaryModel struct {
	AttendanceSummaryID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:attendance_summary_id" json:"id"`
	AttendanceSummarySchoolID uuid.UUID `gorm:"type:uuid;not null;index;column:attendance_summary_school_id" json:"schoolId"`

	AttendanceSummaryStudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_summary_key,priority:1;column:attendance_summary_student_id" json:"studentId"`
	AttendanceSummarySubjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_summary_key,priority:2;column:attendance_summary_subject_id" json:"subjectId"`
	AttendanceSummaryClassID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_summary_key,priority:3;index;column:attendance_summary_class_id" json:"classId"`

	AttendanceSummaryTotalSessions int     `gorm:"not null;default:0;column:attendance_summary_total_sessions" json:"totalSessions"`
	AttendanceSummaryPresentCount  int     `gorm:"not null;default:0;column:attendance_summary_present_count" json:"presentCount"`
	AttendanceSummaryAbsentCount   int     `gorm:"not null;default:0;column:attendance_summary_absent_count" json:"absentCount"`
	AttendanceSummaryLateCount     int     `gorm:"not null;default:0;column:attendance_summary_late_count" json:"lateCount"`
	AttendanceSummaryExcusedCount  int     `gorm:"not null;default:0;column:attendance_summary_excused_count" json:"excusedCount"`
	AttendanceSummaryPercentage    float64 `gorm:"type:double precision;not null;default:0;column:attendance_summary_percentage" json:"attendancePercentage"`

	AttendanceSummaryLastUpdated time.Time `gorm:"type:timestamptz;column:attendance_summary_last_updated" json:"lastUpdated"`
}

func (AttendanceSummaryModel) TableName() string { return "attendance_summaries" }
