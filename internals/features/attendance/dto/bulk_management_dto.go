// file: internals/features/attendance/dto/bulk_management_dto.go
package dto

import (
	"github.com/google/uuid"
)

/* =========================================================
 * REQUESTS
 * ========================================================= */

type ValidatePatternRequest struct {
	Pattern    string   `json:"pattern" validate:"required,max=120"`
	ClassID    string   `json:"classId" validate:"required,uuid"`
	SubjectIDs []string `json:"subjectIds" validate:"omitempty,dive,uuid"`
}

type AssignStudentsRequest struct {
	ValidatePatternRequest
	Confirm           bool `json:"confirm"`
	OverrideConflicts bool `json:"overrideConflicts"`
}

type TransferStudentsRequest struct {
	StudentIDs     []string `json:"studentIds" validate:"required,min=1,dive,uuid"`
	FromClassID    string   `json:"fromClassId" validate:"required,uuid"`
	ToClassID      string   `json:"toClassId" validate:"required,uuid"`
	MigrateRecords bool     `json:"migrateRecords"`
	Confirm        bool     `json:"confirm"`
}

/* =========================================================
 * RESPONSE
 * ========================================================= */

const (
	ConflictAlreadyInClass = "already_in_class"
	ConflictInOtherClass   = "in_other_class"
	ConflictNotInSource    = "not_in_source_class"
)

type MatchedStudent struct {
	StudentID      uuid.UUID  `json:"studentId"`
	Name           string     `json:"name"`
	Code           string     `json:"code"`
	RollNum        int        `json:"rollNum"`
	CurrentClassID *uuid.UUID `json:"currentClassId"`
}

type BulkConflict struct {
	StudentID uuid.UUID `json:"studentId"`
	Reason    string    `json:"reason"`
}

type PatternPreview struct {
	Pattern    string           `json:"pattern"`
	MatchCount int              `json:"matchCount"`
	Matched    []MatchedStudent `json:"matched"`
	Conflicts  []BulkConflict   `json:"conflicts"`
}

type BulkItemFailure struct {
	StudentID uuid.UUID `json:"studentId"`
	Error     string    `json:"error"`
}

type AssignResult struct {
	Committed    bool              `json:"committed"`
	Preview      *PatternPreview   `json:"preview,omitempty"`
	SuccessCount int               `json:"successCount"`
	FailureCount int               `json:"failureCount"`
	Successful   []uuid.UUID       `json:"successful"`
	Skipped      []BulkConflict    `json:"skipped"`
	Failed       []BulkItemFailure `json:"failed"`
	JobID        *uuid.UUID        `json:"jobId,omitempty"`
}

type TransferPreviewItem struct {
	StudentID      uuid.UUID `json:"studentId"`
	Name           string    `json:"name"`
	Records        int       `json:"records"`
	MigratableRecs int       `json:"migratableRecords"`
}

type TransferResult struct {
	Committed    bool                  `json:"committed"`
	Preview      []TransferPreviewItem `json:"preview,omitempty"`
	Conflicts    []BulkConflict        `json:"conflicts"`
	SuccessCount int                   `json:"successCount"`
	FailureCount int                   `json:"failureCount"`
	Successful   []uuid.UUID           `json:"successful"`
	Failed       []BulkItemFailure     `json:"failed"`
	MigratedRecs int                   `json:"migratedRecords"`
	JobID        *uuid.UUID            `json:"jobId,omitempty"`
}
