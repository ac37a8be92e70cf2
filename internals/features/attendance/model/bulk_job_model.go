// file: internals/features/attendance/model/bulk_job_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type BulkJobKind string

const (
	BulkJobAssign   BulkJobKind = "assign"
	BulkJobTransfer BulkJobKind = "transfer"
)

// Log operasi bulk yang sudah di-commit.
type BulkJobModel struct {
	BulkJobID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:bulk_job_id" json:"id"`
	BulkJobSchoolID    uuid.UUID      `gorm:"type:uuid;not null;index;column:bulk_job_school_id" json:"schoolId"`
	BulkJobKind        BulkJobKind    `gorm:"type:varchar(16);not null;column:bulk_job_kind" json:"kind"`
	BulkJobPerformedBy uuid.UUID      `gorm:"type:uuid;not null;column:bulk_job_performed_by" json:"performedBy"`
	BulkJobPattern     *string        `gorm:"type:varchar(120);column:bulk_job_pattern" json:"pattern,omitempty"`
	BulkJobClassID     uuid.UUID      `gorm:"type:uuid;not null;column:bulk_job_class_id" json:"classId"`
	BulkJobTargetClass *uuid.UUID     `gorm:"type:uuid;column:bulk_job_target_class_id" json:"targetClassId,omitempty"`
	BulkJobSubjectIDs  pq.StringArray `gorm:"type:text[];column:bulk_job_subject_ids" json:"subjectIds"`
	BulkJobSuccess     int            `gorm:"not null;default:0;column:bulk_job_success_count" json:"successCount"`
	BulkJobFailure     int            `gorm:"not null;default:0;column:bulk_job_failure_count" json:"failureCount"`
	BulkJobCreatedAt   time.Time      `gorm:"type:timestamptz;column:bulk_job_created_at;autoCreateTime" json:"createdAt"`
}

func (BulkJobModel) TableName() string { return "attendance_bulk_jobs" }
