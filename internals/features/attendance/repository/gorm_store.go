// file: internals/features/attendance/repository/gorm_store.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sekolahku_backend/internals/features/attendance/model"
	acModel "sekolahku_backend/internals/features/school/academics/model"
	helper "sekolahku_backend/internals/helpers"
	"sekolahku_backend/internals/helpers/dbtime"
)

// GormStore: implementasi Store di atas PostgreSQL.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

var _ Store = (*GormStore)(nil)

func (s *GormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) q(ctx context.Context) *gorm.DB { return s.db.WithContext(ctx) }

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case helper.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

var recordKeyColumns = []clause.Column{
	{Name: "attendance_record_student_id"},
	{Name: "attendance_record_class_id"},
	{Name: "attendance_record_subject_id"},
	{Name: "attendance_record_date"},
	{Name: "attendance_record_session"},
}

/* =========================================================
   REFERENCE
========================================================= */

func (s *GormStore) GetSchool(ctx context.Context, schoolID uuid.UUID) (*acModel.SchoolModel, error) {
	var m acModel.SchoolModel
	if err := s.q(ctx).Where("school_id = ?", schoolID).First(&m).Error; err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *GormStore) GetClass(ctx context.Context, schoolID, classID uuid.UUID) (*acModel.ClassModel, error) {
	var m acModel.ClassModel
	if err := s.q(ctx).
		Where("class_id = ? AND class_school_id = ?", classID, schoolID).
		First(&m).Error; err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *GormStore) GetSubject(ctx context.Context, schoolID, subjectID uuid.UUID) (*acModel.SubjectModel, error) {
	var m acModel.SubjectModel
	if err := s.q(ctx).
		Where("subject_id = ? AND subject_school_id = ?", subjectID, schoolID).
		First(&m).Error; err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *GormStore) GetTeacher(ctx context.Context, schoolID, teacherID uuid.UUID) (*acModel.TeacherModel, error) {
	var m acModel.TeacherModel
	if err := s.q(ctx).
		Where("teacher_id = ? AND teacher_school_id = ?", teacherID, schoolID).
		First(&m).Error; err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *GormStore) GetStudent(ctx context.Context, schoolID, studentID uuid.UUID) (*acModel.StudentModel, error) {
	var m acModel.StudentModel
	if err := s.q(ctx).
		Where("student_id = ? AND student_school_id = ?", studentID, schoolID).
		First(&m).Error; err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *GormStore) HasTeacherAssignment(ctx context.Context, teacherID, classID, subjectID uuid.UUID) (bool, error) {
	var n int64
	err := s.q(ctx).Model(&acModel.TeacherAssignmentModel{}).
		Where("teacher_assignment_teacher_id = ? AND teacher_assignment_class_id = ? AND teacher_assignment_subject_id = ?",
			teacherID, classID, subjectID).
		Count(&n).Error
	return n > 0, err
}

func (s *GormStore) ListClassStudents(ctx context.Context, schoolID, classID uuid.UUID) ([]acModel.StudentModel, error) {
	var out []acModel.StudentModel
	err := s.q(ctx).
		Where("student_school_id = ? AND student_class_id = ?", schoolID, classID).
		Order("student_roll_num ASC, student_name ASC").
		Find(&out).Error
	return out, err
}

func (s *GormStore) ListSchoolStudents(ctx context.Context, schoolID uuid.UUID) ([]acModel.StudentModel, error) {
	var out []acModel.StudentModel
	err := s.q(ctx).
		Where("student_school_id = ?", schoolID).
		Order("student_code ASC").
		Find(&out).Error
	return out, err
}

func (s *GormStore) ListClassSubjects(ctx context.Context, schoolID, classID uuid.UUID) ([]acModel.SubjectModel, error) {
	var out []acModel.SubjectModel
	err := s.q(ctx).
		Where("subject_school_id = ? AND subject_class_id = ?", schoolID, classID).
		Order("subject_code ASC").
		Find(&out).Error
	return out, err
}

func (s *GormStore) ListStudentsByIDs(ctx context.Context, schoolID uuid.UUID, ids []uuid.UUID) ([]acModel.StudentModel, error) {
	var out []acModel.StudentModel
	if len(ids) == 0 {
		return out, nil
	}
	err := s.q(ctx).Where("student_school_id = ? AND student_id IN ?", schoolID, ids).Find(&out).Error
	return out, err
}

func (s *GormStore) ListTeachersByIDs(ctx context.Context, schoolID uuid.UUID, ids []uuid.UUID) ([]acModel.TeacherModel, error) {
	var out []acModel.TeacherModel
	if len(ids) == 0 {
		return out, nil
	}
	err := s.q(ctx).Where("teacher_school_id = ? AND teacher_id IN ?", schoolID, ids).Find(&out).Error
	return out, err
}

func (s *GormStore) ListSubjectsByIDs(ctx context.Context, schoolID uuid.UUID, ids []uuid.UUID) ([]acModel.SubjectModel, error) {
	var out []acModel.SubjectModel
	if len(ids) == 0 {
		return out, nil
	}
	err := s.q(ctx).Where("subject_school_id = ? AND subject_id IN ?", schoolID, ids).Find(&out).Error
	return out, err
}

func (s *GormStore) ListClassesByIDs(ctx context.Context, schoolID uuid.UUID, ids []uuid.UUID) ([]acModel.ClassModel, error) {
	var out []acModel.ClassModel
	if len(ids) == 0 {
		return out, nil
	}
	err := s.q(ctx).Where("class_school_id = ? AND class_id IN ?", schoolID, ids).Find(&out).Error
	return out, err
}

func (s *GormStore) SetStudentClass(ctx context.Context, schoolID, studentID uuid.UUID, classID *uuid.UUID) error {
	res := s.q(ctx).Model(&acModel.StudentModel{}).
		Where("student_id = ? AND student_school_id = ?", studentID, schoolID).
		Update("student_class_id", classID)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) EnsureStudentSubject(ctx context.Context, row *acModel.StudentSubjectModel) (bool, error) {
	if row.StudentSubjectID == uuid.Nil {
		row.StudentSubjectID = uuid.New()
	}
	res := s.q(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_subject_student_id"}, {Name: "student_subject_subject_id"}},
		DoNothing: true,
	}).Create(row)
	if res.Error != nil {
		return false, mapErr(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) DropOtherClassSubjects(ctx context.Context, schoolID, studentID, keepClassID uuid.UUID) (int64, error) {
	res := s.q(ctx).
		Where("student_subject_school_id = ? AND student_subject_student_id = ? AND student_subject_class_id <> ?",
			schoolID, studentID, keepClassID).
		Delete(&acModel.StudentSubjectModel{})
	return res.RowsAffected, res.Error
}

/* =========================================================
   RECORDS
========================================================= */

func (s *GormStore) InsertRecordIfAbsent(ctx context.Context, rec *model.AttendanceRecordModel) (bool, error) {
	if rec.AttendanceRecordID == uuid.Nil {
		rec.AttendanceRecordID = uuid.New()
	}
	rec.AttendanceRecordDate = dbtime.DateOnly(rec.AttendanceRecordDate)
	res := s.q(ctx).Clauses(clause.OnConflict{
		Columns:   recordKeyColumns,
		DoNothing: true,
	}).Create(rec)
	if res.Error != nil {
		return false, mapErr(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) FindRecordByKey(ctx context.Context, key RecordKey) (*model.AttendanceRecordModel, error) {
	var m model.AttendanceRecordModel
	err := s.q(ctx).
		Where(`attendance_record_student_id = ? AND attendance_record_class_id = ?
			AND attendance_record_subject_id = ? AND attendance_record_date = ?
			AND attendance_record_session = ?`,
			key.StudentID, key.ClassID, key.SubjectID, dbtime.DateOnly(key.Date), key.Session).
		First(&m).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *GormStore) GetRecord(ctx context.Context, schoolID, recordID uuid.UUID) (*model.AttendanceRecordModel, error) {
	var m model.AttendanceRecordModel
	if err := s.q(ctx).
		Where("attendance_record_id = ? AND attendance_record_school_id = ?", recordID, schoolID).
		First(&m).Error; err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *GormStore) LockRecord(ctx context.Context, schoolID, recordID uuid.UUID) (*model.AttendanceRecordModel, error) {
	var m model.AttendanceRecordModel
	if err := s.q(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("attendance_record_id = ? AND attendance_record_school_id = ?", recordID, schoolID).
		First(&m).Error; err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *GormStore) SaveRecord(ctx context.Context, rec *model.AttendanceRecordModel) error {
	rec.AttendanceRecordDate = dbtime.DateOnly(rec.AttendanceRecordDate)
	return mapErr(s.q(ctx).Save(rec).Error)
}

func (s *GormStore) DeleteRecord(ctx context.Context, schoolID, recordID uuid.UUID) error {
	res := s.q(ctx).
		Where("attendance_record_id = ? AND attendance_record_school_id = ?", recordID, schoolID).
		Delete(&model.AttendanceRecordModel{})
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func applyRecordFilter(q *gorm.DB, f RecordFilter) *gorm.DB {
	q = q.Where("attendance_record_school_id = ?", f.SchoolID)
	if f.ClassID != nil {
		q = q.Where("attendance_record_class_id = ?", *f.ClassID)
	}
	if f.SubjectID != nil {
		q = q.Where("attendance_record_subject_id = ?", *f.SubjectID)
	}
	if f.TeacherID != nil {
		q = q.Where("attendance_record_teacher_id = ?", *f.TeacherID)
	}
	if f.StudentID != nil {
		q = q.Where("attendance_record_student_id = ?", *f.StudentID)
	}
	if f.StartDate != nil {
		q = q.Where("attendance_record_date >= ?", dbtime.DateOnly(*f.StartDate))
	}
	if f.EndDate != nil {
		q = q.Where("attendance_record_date <= ?", dbtime.DateOnly(*f.EndDate))
	}
	if f.Status != nil {
		q = q.Where("attendance_record_status = ?", *f.Status)
	}
	if f.Session != nil {
		q = q.Where("LOWER(attendance_record_session) = LOWER(?)", *f.Session)
	}
	return q
}

func (s *GormStore) ListRecords(ctx context.Context, f RecordFilter, opt ListOptions) ([]model.AttendanceRecordModel, int64, error) {
	base := applyRecordFilter(s.q(ctx).Model(&model.AttendanceRecordModel{}), f)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := RecordSortColumns[opt.SortBy]
	if !ok {
		col = RecordSortColumns["date"]
	}
	q := base.Session(&gorm.Session{}).Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: opt.Desc}).
		Order("attendance_record_id ASC")
	if opt.Limit > 0 {
		q = q.Limit(opt.Limit).Offset(opt.Offset)
	}

	var out []model.AttendanceRecordModel
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *GormStore) ListStudentRecords(ctx context.Context, schoolID, studentID, classID uuid.UUID) ([]model.AttendanceRecordModel, error) {
	var out []model.AttendanceRecordModel
	err := s.q(ctx).
		Where("attendance_record_school_id = ? AND attendance_record_student_id = ? AND attendance_record_class_id = ?",
			schoolID, studentID, classID).
		Order("attendance_record_date ASC, attendance_record_session ASC").
		Find(&out).Error
	return out, err
}

func (s *GormStore) CountStatuses(ctx context.Context, key SummaryKey) (map[model.AttendanceStatus]int, error) {
	var rows []struct {
		Status string
		N      int
	}
	err := s.q(ctx).Model(&model.AttendanceRecordModel{}).
		Select("attendance_record_status AS status, COUNT(*) AS n").
		Where("attendance_record_student_id = ? AND attendance_record_subject_id = ? AND attendance_record_class_id = ?",
			key.StudentID, key.SubjectID, key.ClassID).
		Group("attendance_record_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[model.AttendanceStatus]int, len(rows))
	for _, r := range rows {
		out[model.AttendanceStatus(r.Status)] = r.N
	}
	return out, nil
}

func (s *GormStore) SessionStatusGroups(ctx context.Context, key SessionKey) ([]StatusGroup, error) {
	var rows []struct {
		Status     string
		StudentIDs pq.StringArray `gorm:"column:student_ids"`
	}
	err := s.q(ctx).Model(&model.AttendanceRecordModel{}).
		Select(`attendance_record_status AS status,
			array_agg(attendance_record_student_id::text ORDER BY attendance_record_student_id) AS student_ids`).
		Where(`attendance_record_school_id = ? AND attendance_record_class_id = ? AND attendance_record_subject_id = ?
			AND attendance_record_date = ? AND LOWER(attendance_record_session) = LOWER(?)`,
			key.SchoolID, key.ClassID, key.SubjectID, dbtime.DateOnly(key.Date), key.Session).
		Group("attendance_record_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]StatusGroup, 0, len(rows))
	for _, r := range rows {
		g := StatusGroup{Status: model.AttendanceStatus(r.Status)}
		for _, raw := range r.StudentIDs {
			if id, err := uuid.Parse(raw); err == nil {
				g.StudentIDs = append(g.StudentIDs, id)
			}
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *GormStore) ListRecordKeys(ctx context.Context) ([]SummaryKey, error) {
	var out []SummaryKey
	err := s.q(ctx).Model(&model.AttendanceRecordModel{}).
		Select(`DISTINCT attendance_record_school_id AS school_id, attendance_record_student_id AS student_id,
			attendance_record_subject_id AS subject_id, attendance_record_class_id AS class_id`).
		Scan(&out).Error
	return out, err
}

/* =========================================================
   SUMMARIES
========================================================= */

func (s *GormStore) UpsertSummary(ctx context.Context, m *model.AttendanceSummaryModel) error {
	if m.AttendanceSummaryID == uuid.Nil {
		m.AttendanceSummaryID = uuid.New()
	}
	return mapErr(s.q(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "attendance_summary_student_id"},
			{Name: "attendance_summary_subject_id"},
			{Name: "attendance_summary_class_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"attendance_summary_total_sessions",
			"attendance_summary_present_count",
			"attendance_summary_absent_count",
			"attendance_summary_late_count",
			"attendance_summary_excused_count",
			"attendance_summary_percentage",
			"attendance_summary_last_updated",
		}),
	}).Create(m).Error)
}

func (s *GormStore) ListSummaries(ctx context.Context, f SummaryFilter) ([]model.AttendanceSummaryModel, error) {
	q := s.q(ctx).Where("attendance_summary_school_id = ?", f.SchoolID)
	if f.StudentID != nil {
		q = q.Where("attendance_summary_student_id = ?", *f.StudentID)
	}
	if f.SubjectID != nil {
		q = q.Where("attendance_summary_subject_id = ?", *f.SubjectID)
	}
	if f.ClassID != nil {
		q = q.Where("attendance_summary_class_id = ?", *f.ClassID)
	}
	var out []model.AttendanceSummaryModel
	err := q.Order("attendance_summary_subject_id ASC, attendance_summary_student_id ASC").Find(&out).Error
	return out, err
}

func (s *GormStore) ListSummaryKeys(ctx context.Context) ([]SummaryKey, error) {
	var out []SummaryKey
	err := s.q(ctx).Model(&model.AttendanceSummaryModel{}).
		Select(`attendance_summary_school_id AS school_id, attendance_summary_student_id AS student_id,
			attendance_summary_subject_id AS subject_id, attendance_summary_class_id AS class_id`).
		Scan(&out).Error
	return out, err
}

/* =========================================================
   AUDIT
========================================================= */

func (s *GormStore) AppendAudit(ctx context.Context, e *model.AttendanceAuditLogModel) error {
	if e.AttendanceAuditLogID == uuid.Nil {
		e.AttendanceAuditLogID = uuid.New()
	}
	return mapErr(s.q(ctx).Create(e).Error)
}

func (s *GormStore) ListAudits(ctx context.Context, schoolID, recordID uuid.UUID) ([]model.AttendanceAuditLogModel, error) {
	var out []model.AttendanceAuditLogModel
	err := s.q(ctx).
		Where("attendance_audit_log_school_id = ? AND attendance_audit_log_record_id = ?", schoolID, recordID).
		Order("attendance_audit_log_timestamp DESC").
		Find(&out).Error
	return out, err
}

/* =========================================================
   SESSION CONFIGURATION
========================================================= */

func (s *GormStore) CreateSessionConfig(ctx context.Context, cfg *model.SessionConfigurationModel) error {
	if cfg.SessionConfigurationID == uuid.Nil {
		cfg.SessionConfigurationID = uuid.New()
	}
	return mapErr(s.q(ctx).Create(cfg).Error)
}

func (s *GormStore) GetSessionConfig(ctx context.Context, schoolID, id uuid.UUID) (*model.SessionConfigurationModel, error) {
	var m model.SessionConfigurationModel
	if err := s.q(ctx).
		Where("session_configuration_id = ? AND session_configuration_school_id = ?", id, schoolID).
		First(&m).Error; err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *GormStore) SaveSessionConfig(ctx context.Context, cfg *model.SessionConfigurationModel) error {
	return mapErr(s.q(ctx).Save(cfg).Error)
}

// classID/subjectID = uuid.Nil → tidak difilter.
func (s *GormStore) ListSessionConfigs(ctx context.Context, schoolID, classID, subjectID uuid.UUID, activeOnly bool) ([]model.SessionConfigurationModel, error) {
	q := s.q(ctx).Where("session_configuration_school_id = ?", schoolID)
	if classID != uuid.Nil {
		q = q.Where("session_configuration_class_id = ?", classID)
	}
	if subjectID != uuid.Nil {
		q = q.Where("session_configuration_subject_id = ?", subjectID)
	}
	if activeOnly {
		q = q.Where("session_configuration_is_active = ?", true)
	}
	var out []model.SessionConfigurationModel
	err := q.Order("session_configuration_type ASC").Find(&out).Error
	return out, err
}

/* =========================================================
   BULK JOBS
========================================================= */

func (s *GormStore) CreateBulkJob(ctx context.Context, job *model.BulkJobModel) error {
	if job.BulkJobID == uuid.Nil {
		job.BulkJobID = uuid.New()
	}
	return mapErr(s.q(ctx).Create(job).Error)
}

func (s *GormStore) ListBulkJobs(ctx context.Context, schoolID uuid.UUID, limit int) ([]model.BulkJobModel, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []model.BulkJobModel
	err := s.q(ctx).
		Where("bulk_job_school_id = ?", schoolID).
		Order("bulk_job_created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
