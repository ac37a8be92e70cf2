// file: internals/features/attendance/model/attendance_audit_log_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// Append-only. Tidak ada jalur update/delete untuk tabel ini.
type AttendanceAuditLogModel struct {
	AttendanceAuditLogID       uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:attendance_audit_log_id" json:"id"`
	AttendanceAuditLogRecordID uuid.UUID   `gorm:"type:uuid;not null;index;column:attendance_audit_log_record_id" json:"recordId"`
	AttendanceAuditLogSchoolID uuid.UUID   `gorm:"type:uuid;not null;index;column:attendance_audit_log_school_id" json:"schoolId"`
	AttendanceAuditLogAction   AuditAction `gorm:"type:varchar(10);not null;column:attendance_audit_log_action" json:"action"`

	AttendanceAuditLogOldValues datatypes.JSONMap `gorm:"type:jsonb;column:attendance_audit_log_old_values" json:"oldValues"`
	AttendanceAuditLogNewValues datatypes.JSONMap `gorm:"type:jsonb;column:attendance_audit_log_new_values" json:"newValues"`

	AttendanceAuditLogPerformedBy      uuid.UUID `gorm:"type:uuid;not null;column:attendance_audit_log_performed_by" json:"performedBy"`
	AttendanceAuditLogPerformedByModel string    `gorm:"type:varchar(16);not null;column:attendance_audit_log_performed_by_model" json:"performedByModel"`

	AttendanceAuditLogReason    *string           `gorm:"type:text;column:attendance_audit_log_reason" json:"reason,omitempty"`
	AttendanceAuditLogIPAddress *string           `gorm:"type:varchar(64);column:attendance_audit_log_ip_address" json:"ipAddress,omitempty"`
	AttendanceAuditLogUserAgent *string           `gorm:"type:text;column:attendance_audit_log_user_agent" json:"userAgent,omitempty"`
	AttendanceAuditLogMetadata  datatypes.JSONMap `gorm:"type:jsonb;column:attendance_audit_log_metadata" json:"metadata,omitempty"`

	AttendanceAuditLogTimestamp time.Time `gorm:"type:timestamptz;not null;index;column:attendance_audit_log_timestamp" json:"timestamp"`
}

func (AttendanceAuditLogModel) TableName() string { return "attendance_audit_logs" }
