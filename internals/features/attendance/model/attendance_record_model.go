// file: internals/features/attendance/model/attendance_record_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// AllStatuses urutan tetap untuk ringkasan & laporan.
var AllStatuses = []AttendanceStatus{AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused}

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

/*
=========================================================

	Satu baris per (student, class, subject, date, session).
	Natural key dijaga UNIQUE index uq_attendance_record_key.
	=========================================================
*/
type AttendanceRecordModel struct {
	AttendanceRecordID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:attendance_record_id" json:"id"`

	// Tenant guard
	AttendanceRecordSchoolID uuid.UUID `gorm:"type:uuid;not null;index;column:attendance_record_school_id" json:"schoolId"`

	// Natural key
	AttendanceRecordStudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_record_key,priority:1;column:attendance_record_student_id" json:"studentId"`
	AttendanceRecordClassID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_record_key,priority:2;index:idx_attendance_record_class_date,priority:1;column:attendance_record_class_id" json:"classId"`
	AttendanceRecordSubjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_record_key,priority:3;column:attendance_record_subject_id" json:"subjectId"`
	AttendanceRecordDate      time.Time `gorm:"type:date;not null;uniqueIndex:uq_attendance_record_key,priority:4;index:idx_attendance_record_class_date,priority:2;column:attendance_record_date" json:"date"`
	AttendanceRecordSession   string    `gorm:"type:varchar(80);not null;uniqueIndex:uq_attendance_record_key,priority:5;column:attendance_record_session" json:"session"`

	AttendanceRecordTeacherID uuid.UUID        `gorm:"type:uuid;not null;index;column:attendance_record_teacher_id" json:"teacherId"`
	AttendanceRecordStatus    AttendanceStatus `gorm:"type:varchar(16);not null;index;column:attendance_record_status" json:"status"`

	// Jejak pelaku
	AttendanceRecordMarkedBy           uuid.UUID  `gorm:"type:uuid;not null;column:attendance_record_marked_by" json:"markedBy"`
	AttendanceRecordMarkedByRole       string     `gorm:"type:varchar(16);not null;column:attendance_record_marked_by_role" json:"markedByRole"`
	AttendanceRecordLastModifiedBy     *uuid.UUID `gorm:"type:uuid;column:attendance_record_last_modified_by" json:"lastModifiedBy,omitempty"`
	AttendanceRecordLastModifiedByRole *string    `gorm:"type:varchar(16);column:attendance_record_last_modified_by_role" json:"lastModifiedByRole,omitempty"`
	AttendanceRecordLastModifiedAt     *time.Time `gorm:"type:timestamptz;column:attendance_record_last_modified_at" json:"lastModifiedAt,omitempty"`

	AttendanceRecordCreatedAt time.Time `gorm:"type:timestamptz;column:attendance_record_created_at;autoCreateTime" json:"createdAt"`
	AttendanceRecordUpdatedAt time.Time `gorm:"type:timestamptz;column:attendance_record_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (AttendanceRecordModel) TableName() string { return "attendance_records" }

// Snapshot dipakai audit log (old/new values).
func (m AttendanceRecordModel) Snapshot() map[string]any {
	out := map[string]any{
		"id":           m.AttendanceRecordID.String(),
		"schoolId":     m.AttendanceRecordSchoolID.String(),
		"studentId":    m.AttendanceRecordStudentID.String(),
		"classId":      m.AttendanceRecordClassID.String(),
		"subjectId":    m.AttendanceRecordSubjectID.String(),
		"teacherId":    m.AttendanceRecordTeacherID.String(),
		"date":         m.AttendanceRecordDate.Format("2006-01-02"),
		"session":      m.AttendanceRecordSession,
		"status":       string(m.AttendanceRecordStatus),
		"markedBy":     m.AttendanceRecordMarkedBy.String(),
		"markedByRole": m.AttendanceRecordMarkedByRole,
	}
	if m.AttendanceRecordLastModifiedBy != nil {
		out["lastModifiedBy"] = m.AttendanceRecordLastModifiedBy.String()
	}
	if m.AttendanceRecordLastModifiedAt != nil {
		out["lastModifiedAt"] = m.AttendanceRecordLastModifiedAt.UTC().Format(time.RFC3339)
	}
	return out
}
