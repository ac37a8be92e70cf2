// file: internals/features/attendance/service/audit_service.go
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"sekolahku_backend/internals/features/attendance/model"
	"sekolahku_backend/internals/features/attendance/repository"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

// AuditInfo: metadata dari request (IP, user agent, request id, dsb).
type AuditInfo struct {
	IPAddress string
	UserAgent string
	Metadata  map[string]any
}

// AuditEntry: satu aksi terhadap record. Before nil untuk create, After nil untuk delete.
type AuditEntry struct {
	Action model.AuditAction
	Before *model.AttendanceRecordModel
	After  *model.AttendanceRecordModel
	Actor  helperAuth.Principal
	Reason string
	Info   AuditInfo
}

type AuditService struct {
	store repository.Store
	now   func() time.Time
}

func NewAuditService(store repository.Store) *AuditService {
	return &AuditService{store: store, now: time.Now}
}

func (a *AuditService) With(store repository.Store) *AuditService {
	cp := *a
	cp.store = store
	return &cp
}

func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Record menulis satu baris audit (append-only).
func (a *AuditService) Record(ctx context.Context, e AuditEntry) (*model.AttendanceAuditLogModel, error) {
	var recordID uuid.UUID
	var schoolID uuid.UUID
	entry := &model.AttendanceAuditLogModel{
		AttendanceAuditLogAction:           e.Action,
		AttendanceAuditLogPerformedBy:      e.Actor.ID,
		AttendanceAuditLogPerformedByModel: e.Actor.Role(),
		AttendanceAuditLogReason:           optString(e.Reason),
		AttendanceAuditLogIPAddress:        optString(e.Info.IPAddress),
		AttendanceAuditLogUserAgent:        optString(e.Info.UserAgent),
		AttendanceAuditLogTimestamp:        a.now().UTC(),
	}
	if e.Before != nil {
		entry.AttendanceAuditLogOldValues = datatypes.JSONMap(e.Before.Snapshot())
		recordID, schoolID = e.Before.AttendanceRecordID, e.Before.AttendanceRecordSchoolID
	}
	if e.After != nil {
		entry.AttendanceAuditLogNewValues = datatypes.JSONMap(e.After.Snapshot())
		recordID, schoolID = e.After.AttendanceRecordID, e.After.AttendanceRecordSchoolID
	}
	if len(e.Info.Metadata) > 0 {
		entry.AttendanceAuditLogMetadata = datatypes.JSONMap(e.Info.Metadata)
	}
	entry.AttendanceAuditLogRecordID = recordID
	entry.AttendanceAuditLogSchoolID = schoolID

	if err := a.store.AppendAudit(ctx, entry); err != nil {
		return nil, dbErr("append audit log", err)
	}
	return entry, nil
}

// Trail: riwayat audit satu record, terbaru dulu.
func (a *AuditService) Trail(ctx context.Context, schoolID, recordID uuid.UUID) ([]model.AttendanceAuditLogModel, error) {
	rows, err := a.store.ListAudits(ctx, schoolID, recordID)
	if err != nil {
		return nil, dbErr("list audit logs", err)
	}
	if rows == nil {
		rows = []model.AttendanceAuditLogModel{}
	}
	return rows, nil
}
