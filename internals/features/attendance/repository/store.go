// file: internals/features/attendance/repository/store.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/model"
	acModel "sekolahku_backend/internals/features/school/academics/model"
	"sekolahku_backend/internals/helpers/dbtime"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("unique constraint conflict")
)

/* =========================================================
   KEYS & FILTERS
========================================================= */

// RecordKey: natural key satu baris absensi.
type RecordKey struct {
	StudentID uuid.UUID
	ClassID   uuid.UUID
	SubjectID uuid.UUID
	Date      time.Time
	Session   string
}

func KeyOf(r model.AttendanceRecordModel) RecordKey {
	return RecordKey{
		StudentID: r.AttendanceRecordStudentID,
		ClassID:   r.AttendanceRecordClassID,
		SubjectID: r.AttendanceRecordSubjectID,
		Date:      dbtime.DateOnly(r.AttendanceRecordDate),
		Session:   r.AttendanceRecordSession,
	}
}

// SummaryKey: kunci agregat (student, subject, class).
type SummaryKey struct {
	SchoolID  uuid.UUID
	StudentID uuid.UUID
	SubjectID uuid.UUID
	ClassID   uuid.UUID
}

func SummaryKeyOf(r model.AttendanceRecordModel) SummaryKey {
	return SummaryKey{
		SchoolID:  r.AttendanceRecordSchoolID,
		StudentID: r.AttendanceRecordStudentID,
		SubjectID: r.AttendanceRecordSubjectID,
		ClassID:   r.AttendanceRecordClassID,
	}
}

// SessionKey: satu sesi mengajar (kelas, mapel, tanggal, sesi).
type SessionKey struct {
	SchoolID  uuid.UUID
	ClassID   uuid.UUID
	SubjectID uuid.UUID
	Date      time.Time
	Session   string
}

// RecordFilter: semua field opsional kecuali SchoolID (tenant guard).
type RecordFilter struct {
	SchoolID  uuid.UUID
	ClassID   *uuid.UUID
	SubjectID *uuid.UUID
	TeacherID *uuid.UUID
	StudentID *uuid.UUID
	StartDate *time.Time // inklusif
	EndDate   *time.Time // inklusif
	Status    *model.AttendanceStatus
	Session   *string
}

// Kunci sort yang diizinkan → kolom
var RecordSortColumns = map[string]string{
	"date":      "attendance_record_date",
	"session":   "attendance_record_session",
	"status":    "attendance_record_status",
	"createdAt": "attendance_record_created_at",
	"updatedAt": "attendance_record_updated_at",
}

type ListOptions struct {
	Limit  int
	Offset int
	SortBy string // salah satu key RecordSortColumns
	Desc   bool
}

type SummaryFilter struct {
	SchoolID  uuid.UUID
	StudentID *uuid.UUID
	SubjectID *uuid.UUID
	ClassID   *uuid.UUID
}

// StatusGroup: hasil agregasi per status untuk satu sesi.
type StatusGroup struct {
	Status     model.AttendanceStatus
	StudentIDs []uuid.UUID
}

/* =========================================================
   INTERFACES
========================================================= */

// ReferenceStore: baca (dan sedikit tulis) entitas roster.
type ReferenceStore interface {
	GetSchool(ctx context.Context, schoolID uuid.UUID) (*acModel.SchoolModel, error)
	GetClass(ctx context.Context, schoolID, classID uuid.UUID) (*acModel.ClassModel, error)
	GetSubject(ctx context.Context, schoolID, subjectID uuid.UUID) (*acModel.SubjectModel, error)
	GetTeacher(ctx context.Context, schoolID, teacherID uuid.UUID) (*acModel.TeacherModel, error)
	GetStudent(ctx context.Context, schoolID, studentID uuid.UUID) (*acModel.StudentModel, error)

	HasTeacherAssignment(ctx context.Context, teacherID, classID, subjectID uuid.UUID) (bool, error)

	// Roster kelas, urut roll number lalu nama.
	ListClassStudents(ctx context.Context, schoolID, classID uuid.UUID) ([]acModel.StudentModel, error)
	ListSchoolStudents(ctx context.Context, schoolID uuid.UUID) ([]acModel.StudentModel, error)
	ListClassSubjects(ctx context.Context, schoolID, classID uuid.UUID) ([]acModel.SubjectModel, error)

	// Lookup batch untuk ekspansi referensi
	ListStudentsByIDs(ctx context.Context, schoolID uuid.UUID, ids []uuid.UUID) ([]acModel.StudentModel, error)
	ListTeachersByIDs(ctx context.Context, schoolID uuid.UUID, ids []uuid.UUID) ([]acModel.TeacherModel, error)
	ListSubjectsByIDs(ctx context.Context, schoolID uuid.UUID, ids []uuid.UUID) ([]acModel.SubjectModel, error)
	ListClassesByIDs(ctx context.Context, schoolID uuid.UUID, ids []uuid.UUID) ([]acModel.ClassModel, error)

	// Keanggotaan (dipakai bulk management)
	SetStudentClass(ctx context.Context, schoolID, studentID uuid.UUID, classID *uuid.UUID) error
	EnsureStudentSubject(ctx context.Context, row *acModel.StudentSubjectModel) (bool, error)
	// DropOtherClassSubjects: hapus StudentSubject siswa yang bukan milik keepClassID.
	DropOtherClassSubjects(ctx context.Context, schoolID, studentID, keepClassID uuid.UUID) (int64, error)
}

type RecordStore interface {
	// InsertRecordIfAbsent: INSERT ... ON CONFLICT (natural key) DO NOTHING.
	// inserted=false berarti baris dengan key sama sudah ada.
	InsertRecordIfAbsent(ctx context.Context, rec *model.AttendanceRecordModel) (bool, error)
	FindRecordByKey(ctx context.Context, key RecordKey) (*model.AttendanceRecordModel, error)
	GetRecord(ctx context.Context, schoolID, recordID uuid.UUID) (*model.AttendanceRecordModel, error)
	// LockRecord: SELECT ... FOR UPDATE (hanya bermakna di dalam WithTx)
	LockRecord(ctx context.Context, schoolID, recordID uuid.UUID) (*model.AttendanceRecordModel, error)
	SaveRecord(ctx context.Context, rec *model.AttendanceRecordModel) error
	DeleteRecord(ctx context.Context, schoolID, recordID uuid.UUID) error

	ListRecords(ctx context.Context, f RecordFilter, opt ListOptions) ([]model.AttendanceRecordModel, int64, error)
	ListStudentRecords(ctx context.Context, schoolID, studentID, classID uuid.UUID) ([]model.AttendanceRecordModel, error)
	CountStatuses(ctx context.Context, key SummaryKey) (map[model.AttendanceStatus]int, error)
	SessionStatusGroups(ctx context.Context, key SessionKey) ([]StatusGroup, error)
	ListRecordKeys(ctx context.Context) ([]SummaryKey, error)
}

type SummaryStore interface {
	// UpsertSummary: satu baris per SummaryKey, ditimpa penuh.
	UpsertSummary(ctx context.Context, s *model.AttendanceSummaryModel) error
	ListSummaries(ctx context.Context, f SummaryFilter) ([]model.AttendanceSummaryModel, error)
	ListSummaryKeys(ctx context.Context) ([]SummaryKey, error)
}

// AuditStore append-only.
type AuditStore interface {
	AppendAudit(ctx context.Context, entry *model.AttendanceAuditLogModel) error
	ListAudits(ctx context.Context, schoolID, recordID uuid.UUID) ([]model.AttendanceAuditLogModel, error)
}

type SessionConfigStore interface {
	CreateSessionConfig(ctx context.Context, cfg *model.SessionConfigurationModel) error
	GetSessionConfig(ctx context.Context, schoolID, id uuid.UUID) (*model.SessionConfigurationModel, error)
	SaveSessionConfig(ctx context.Context, cfg *model.SessionConfigurationModel) error
	ListSessionConfigs(ctx context.Context, schoolID, classID, subjectID uuid.UUID, activeOnly bool) ([]model.SessionConfigurationModel, error)
}

type BulkJobStore interface {
	CreateBulkJob(ctx context.Context, job *model.BulkJobModel) error
	ListBulkJobs(ctx context.Context, schoolID uuid.UUID, limit int) ([]model.BulkJobModel, error)
}

// Store: gabungan semua akses data attendance.
type Store interface {
	ReferenceStore
	RecordStore
	SummaryStore
	AuditStore
	SessionConfigStore
	BulkJobStore

	// WithTx: fn dijalankan dalam satu transaksi; error → rollback.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}
