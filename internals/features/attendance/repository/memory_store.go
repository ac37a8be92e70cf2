// file: internals/features/attendance/repository/memory_store.go
package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/model"
	acModel "sekolahku_backend/internals/features/school/academics/model"
	"sekolahku_backend/internals/helpers/dbtime"
)

// MemoryStore: Store di memori untuk test & demo lokal.
// Transaksi = salin state, jalankan fn, tukar state bila sukses.
type MemoryStore struct {
	mu    *sync.Mutex
	state *memState
	inTx  bool
	now   func() time.Time
}

type memState struct {
	schools     map[uuid.UUID]acModel.SchoolModel
	classes     map[uuid.UUID]acModel.ClassModel
	subjects    map[uuid.UUID]acModel.SubjectModel
	teachers    map[uuid.UUID]acModel.TeacherModel
	students    map[uuid.UUID]acModel.StudentModel
	assignments map[uuid.UUID]acModel.TeacherAssignmentModel
	enrollments map[uuid.UUID]acModel.StudentSubjectModel

	records   map[uuid.UUID]model.AttendanceRecordModel
	summaries map[uuid.UUID]model.AttendanceSummaryModel
	audits    []model.AttendanceAuditLogModel
	configs   map[uuid.UUID]model.SessionConfigurationModel
	jobs      []model.BulkJobModel
}

func newMemState() *memState {
	return &memState{
		schools:     map[uuid.UUID]acModel.SchoolModel{},
		classes:     map[uuid.UUID]acModel.ClassModel{},
		subjects:    map[uuid.UUID]acModel.SubjectModel{},
		teachers:    map[uuid.UUID]acModel.TeacherModel{},
		students:    map[uuid.UUID]acModel.StudentModel{},
		assignments: map[uuid.UUID]acModel.TeacherAssignmentModel{},
		enrollments: map[uuid.UUID]acModel.StudentSubjectModel{},
		records:     map[uuid.UUID]model.AttendanceRecordModel{},
		summaries:   map[uuid.UUID]model.AttendanceSummaryModel{},
		configs:     map[uuid.UUID]model.SessionConfigurationModel{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (st *memState) clone() *memState {
	return &memState{
		schools:     copyMap(st.schools),
		classes:     copyMap(st.classes),
		subjects:    copyMap(st.subjects),
		teachers:    copyMap(st.teachers),
		students:    copyMap(st.students),
		assignments: copyMap(st.assignments),
		enrollments: copyMap(st.enrollments),
		records:     copyMap(st.records),
		summaries:   copyMap(st.summaries),
		audits:      append([]model.AttendanceAuditLogModel(nil), st.audits...),
		configs:     copyMap(st.configs),
		jobs:        append([]model.BulkJobModel(nil), st.jobs...),
	}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mu: &sync.Mutex{}, state: newMemState(), now: time.Now}
}

var _ Store = (*MemoryStore)(nil)

// guard mengunci mutex kecuali sedang di dalam WithTx (mutex sudah dipegang).
func (s *MemoryStore) guard() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	txState := s.state.clone()
	tx := &MemoryStore{mu: s.mu, state: txState, inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	*s.state = *txState
	return nil
}

/* =========================================================
   SEED (khusus memori)
========================================================= */

func (s *MemoryStore) PutSchool(m acModel.SchoolModel) {
	defer s.guard()()
	s.state.schools[m.SchoolID] = m
}

func (s *MemoryStore) PutClass(m acModel.ClassModel) {
	defer s.guard()()
	s.state.classes[m.ClassID] = m
}

func (s *MemoryStore) PutSubject(m acModel.SubjectModel) {
	defer s.guard()()
	s.state.subjects[m.SubjectID] = m
}

func (s *MemoryStore) PutTeacher(m acModel.TeacherModel) {
	defer s.guard()()
	s.state.teachers[m.TeacherID] = m
}

func (s *MemoryStore) PutStudent(m acModel.StudentModel) {
	defer s.guard()()
	s.state.students[m.StudentID] = m
}

func (s *MemoryStore) PutAssignment(m acModel.TeacherAssignmentModel) {
	defer s.guard()()
	if m.TeacherAssignmentID == uuid.Nil {
		m.TeacherAssignmentID = uuid.New()
	}
	s.state.assignments[m.TeacherAssignmentID] = m
}

// Jumlah baris (untuk assertion test)
func (s *MemoryStore) CountRecords() int {
	defer s.guard()()
	return len(s.state.records)
}

func (s *MemoryStore) CountAudits() int {
	defer s.guard()()
	return len(s.state.audits)
}

func (s *MemoryStore) ListEnrollments(studentID uuid.UUID) []acModel.StudentSubjectModel {
	defer s.guard()()
	var out []acModel.StudentSubjectModel
	for _, e := range s.state.enrollments {
		if e.StudentSubjectStudentID == studentID {
			out = append(out, e)
		}
	}
	return out
}

/* =========================================================
   REFERENCE
========================================================= */

func (s *MemoryStore) GetSchool(_ context.Context, schoolID uuid.UUID) (*acModel.SchoolModel, error) {
	defer s.guard()()
	m, ok := s.state.schools[schoolID]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) GetClass(_ context.Context, schoolID, classID uuid.UUID) (*acModel.ClassModel, error) {
	defer s.guard()()
	m, ok := s.state.classes[classID]
	if !ok || m.ClassSchoolID != schoolID {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) GetSubject(_ context.Context, schoolID, subjectID uuid.UUID) (*acModel.SubjectModel, error) {
	defer s.guard()()
	m, ok := s.state.subjects[subjectID]
	if !ok || m.SubjectSchoolID != schoolID {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) GetTeacher(_ context.Context, schoolID, teacherID uuid.UUID) (*acModel.TeacherModel, error) {
	defer s.guard()()
	m, ok := s.state.teachers[teacherID]
	if !ok || m.TeacherSchoolID != schoolID {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) GetStudent(_ context.Context, schoolID, studentID uuid.UUID) (*acModel.StudentModel, error) {
	defer s.guard()()
	m, ok := s.state.students[studentID]
	if !ok || m.StudentSchoolID != schoolID {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) HasTeacherAssignment(_ context.Context, teacherID, classID, subjectID uuid.UUID) (bool, error) {
	defer s.guard()()
	for _, a := range s.state.assignments {
		if a.TeacherAssignmentTeacherID == teacherID &&
			a.TeacherAssignmentClassID == classID &&
			a.TeacherAssignmentSubjectID == subjectID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ListClassStudents(_ context.Context, schoolID, classID uuid.UUID) ([]acModel.StudentModel, error) {
	defer s.guard()()
	var out []acModel.StudentModel
	for _, st := range s.state.students {
		if st.StudentSchoolID == schoolID && st.InClass(classID) {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StudentRollNum != out[j].StudentRollNum {
			return out[i].StudentRollNum < out[j].StudentRollNum
		}
		return out[i].StudentName < out[j].StudentName
	})
	return out, nil
}

func (s *MemoryStore) ListSchoolStudents(_ context.Context, schoolID uuid.UUID) ([]acModel.StudentModel, error) {
	defer s.guard()()
	var out []acModel.StudentModel
	for _, st := range s.state.students {
		if st.StudentSchoolID == schoolID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentCode < out[j].StudentCode })
	return out, nil
}

func (s *MemoryStore) ListClassSubjects(_ context.Context, schoolID, classID uuid.UUID) ([]acModel.SubjectModel, error) {
	defer s.guard()()
	var out []acModel.SubjectModel
	for _, sub := range s.state.subjects {
		if sub.SubjectSchoolID == schoolID && sub.SubjectClassID == classID {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectCode < out[j].SubjectCode })
	return out, nil
}

func idSet(ids []uuid.UUID) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func (s *MemoryStore) ListStudentsByIDs(_ context.Context, schoolID uuid.UUID, ids []uuid.UUID) ([]acModel.StudentModel, error) {
	defer s.guard()()
	want := idSet(ids)
	var out []acModel.StudentModel
	for id, m := range s.state.students {
		if want[id] && m.StudentSchoolID == schoolID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListTeachersByIDs(_ context.Context, schoolID uuid.UUID, ids []uuid.UUID) ([]acModel.TeacherModel, error) {
	defer s.guard()()
	want := idSet(ids)
	var out []acModel.TeacherModel
	for id, m := range s.state.teachers {
		if want[id] && m.TeacherSchoolID == schoolID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListSubjectsByIDs(_ context.Context, schoolID uuid.UUID, ids []uuid.UUID) ([]acModel.SubjectModel, error) {
	defer s.guard()()
	want := idSet(ids)
	var out []acModel.SubjectModel
	for id, m := range s.state.subjects {
		if want[id] && m.SubjectSchoolID == schoolID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListClassesByIDs(_ context.Context, schoolID uuid.UUID, ids []uuid.UUID) ([]acModel.ClassModel, error) {
	defer s.guard()()
	want := idSet(ids)
	var out []acModel.ClassModel
	for id, m := range s.state.classes {
		if want[id] && m.ClassSchoolID == schoolID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemoryStore) SetStudentClass(_ context.Context, schoolID, studentID uuid.UUID, classID *uuid.UUID) error {
	defer s.guard()()
	m, ok := s.state.students[studentID]
	if !ok || m.StudentSchoolID != schoolID {
		return ErrNotFound
	}
	if classID != nil {
		cid := *classID
		m.StudentClassID = &cid
	} else {
		m.StudentClassID = nil
	}
	m.StudentUpdatedAt = s.now()
	s.state.students[studentID] = m
	return nil
}

func (s *MemoryStore) EnsureStudentSubject(_ context.Context, row *acModel.StudentSubjectModel) (bool, error) {
	defer s.guard()()
	for _, e := range s.state.enrollments {
		if e.StudentSubjectStudentID == row.StudentSubjectStudentID && e.StudentSubjectSubjectID == row.StudentSubjectSubjectID {
			return false, nil
		}
	}
	if row.StudentSubjectID == uuid.Nil {
		row.StudentSubjectID = uuid.New()
	}
	row.StudentSubjectCreatedAt = s.now()
	s.state.enrollments[row.StudentSubjectID] = *row
	return true, nil
}

func (s *MemoryStore) DropOtherClassSubjects(_ context.Context, schoolID, studentID, keepClassID uuid.UUID) (int64, error) {
	defer s.guard()()
	var n int64
	for id, e := range s.state.enrollments {
		if e.StudentSubjectSchoolID == schoolID && e.StudentSubjectStudentID == studentID && e.StudentSubjectClassID != keepClassID {
			delete(s.state.enrollments, id)
			n++
		}
	}
	return n, nil
}

/* =========================================================
   RECORDS
========================================================= */

func sameKey(r model.AttendanceRecordModel, k RecordKey) bool {
	return r.AttendanceRecordStudentID == k.StudentID &&
		r.AttendanceRecordClassID == k.ClassID &&
		r.AttendanceRecordSubjectID == k.SubjectID &&
		dbtime.DateOnly(r.AttendanceRecordDate).Equal(dbtime.DateOnly(k.Date)) &&
		r.AttendanceRecordSession == k.Session
}

func (s *MemoryStore) findByKey(k RecordKey, exclude uuid.UUID) (model.AttendanceRecordModel, bool) {
	for id, r := range s.state.records {
		if id != exclude && sameKey(r, k) {
			return r, true
		}
	}
	return model.AttendanceRecordModel{}, false
}

func (s *MemoryStore) InsertRecordIfAbsent(_ context.Context, rec *model.AttendanceRecordModel) (bool, error) {
	defer s.guard()()
	rec.AttendanceRecordDate = dbtime.DateOnly(rec.AttendanceRecordDate)
	if _, ok := s.findByKey(KeyOf(*rec), uuid.Nil); ok {
		return false, nil
	}
	if rec.AttendanceRecordID == uuid.Nil {
		rec.AttendanceRecordID = uuid.New()
	}
	now := s.now()
	rec.AttendanceRecordCreatedAt = now
	rec.AttendanceRecordUpdatedAt = now
	s.state.records[rec.AttendanceRecordID] = *rec
	return true, nil
}

func (s *MemoryStore) FindRecordByKey(_ context.Context, key RecordKey) (*model.AttendanceRecordModel, error) {
	defer s.guard()()
	r, ok := s.findByKey(key, uuid.Nil)
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) GetRecord(_ context.Context, schoolID, recordID uuid.UUID) (*model.AttendanceRecordModel, error) {
	defer s.guard()()
	r, ok := s.state.records[recordID]
	if !ok || r.AttendanceRecordSchoolID != schoolID {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) LockRecord(ctx context.Context, schoolID, recordID uuid.UUID) (*model.AttendanceRecordModel, error) {
	return s.GetRecord(ctx, schoolID, recordID)
}

func (s *MemoryStore) SaveRecord(_ context.Context, rec *model.AttendanceRecordModel) error {
	defer s.guard()()
	rec.AttendanceRecordDate = dbtime.DateOnly(rec.AttendanceRecordDate)
	if _, ok := s.findByKey(KeyOf(*rec), rec.AttendanceRecordID); ok {
		return ErrConflict
	}
	if rec.AttendanceRecordID == uuid.Nil {
		rec.AttendanceRecordID = uuid.New()
	}
	if old, ok := s.state.records[rec.AttendanceRecordID]; ok {
		rec.AttendanceRecordCreatedAt = old.AttendanceRecordCreatedAt
	} else {
		rec.AttendanceRecordCreatedAt = s.now()
	}
	rec.AttendanceRecordUpdatedAt = s.now()
	s.state.records[rec.AttendanceRecordID] = *rec
	return nil
}

func (s *MemoryStore) DeleteRecord(_ context.Context, schoolID, recordID uuid.UUID) error {
	defer s.guard()()
	r, ok := s.state.records[recordID]
	if !ok || r.AttendanceRecordSchoolID != schoolID {
		return ErrNotFound
	}
	delete(s.state.records, recordID)
	return nil
}

func matchRecord(r model.AttendanceRecordModel, f RecordFilter) bool {
	if r.AttendanceRecordSchoolID != f.SchoolID {
		return false
	}
	if f.ClassID != nil && r.AttendanceRecordClassID != *f.ClassID {
		return false
	}
	if f.SubjectID != nil && r.AttendanceRecordSubjectID != *f.SubjectID {
		return false
	}
	if f.TeacherID != nil && r.AttendanceRecordTeacherID != *f.TeacherID {
		return false
	}
	if f.StudentID != nil && r.AttendanceRecordStudentID != *f.StudentID {
		return false
	}
	d := dbtime.DateOnly(r.AttendanceRecordDate)
	if f.StartDate != nil && d.Before(dbtime.DateOnly(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && d.After(dbtime.DateOnly(*f.EndDate)) {
		return false
	}
	if f.Status != nil && r.AttendanceRecordStatus != *f.Status {
		return false
	}
	if f.Session != nil && !strings.EqualFold(r.AttendanceRecordSession, *f.Session) {
		return false
	}
	return true
}

func recordLess(a, b model.AttendanceRecordModel, sortBy string) int {
	switch sortBy {
	case "session":
		return strings.Compare(a.AttendanceRecordSession, b.AttendanceRecordSession)
	case "status":
		return strings.Compare(string(a.AttendanceRecordStatus), string(b.AttendanceRecordStatus))
	case "createdAt":
		return a.AttendanceRecordCreatedAt.Compare(b.AttendanceRecordCreatedAt)
	case "updatedAt":
		return a.AttendanceRecordUpdatedAt.Compare(b.AttendanceRecordUpdatedAt)
	default:
		return a.AttendanceRecordDate.Compare(b.AttendanceRecordDate)
	}
}

func (s *MemoryStore) ListRecords(_ context.Context, f RecordFilter, opt ListOptions) ([]model.AttendanceRecordModel, int64, error) {
	defer s.guard()()
	var all []model.AttendanceRecordModel
	for _, r := range s.state.records {
		if matchRecord(r, f) {
			all = append(all, r)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		c := recordLess(all[i], all[j], opt.SortBy)
		if c == 0 {
			return all[i].AttendanceRecordID.String() < all[j].AttendanceRecordID.String()
		}
		if opt.Desc {
			return c > 0
		}
		return c < 0
	})

	total := int64(len(all))
	if opt.Limit > 0 {
		start := opt.Offset
		if start > len(all) {
			start = len(all)
		}
		end := start + opt.Limit
		if end > len(all) {
			end = len(all)
		}
		all = all[start:end]
	}
	return all, total, nil
}

func (s *MemoryStore) ListStudentRecords(_ context.Context, schoolID, studentID, classID uuid.UUID) ([]model.AttendanceRecordModel, error) {
	defer s.guard()()
	var out []model.AttendanceRecordModel
	for _, r := range s.state.records {
		if r.AttendanceRecordSchoolID == schoolID && r.AttendanceRecordStudentID == studentID && r.AttendanceRecordClassID == classID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].AttendanceRecordDate.Compare(out[j].AttendanceRecordDate); c != 0 {
			return c < 0
		}
		return out[i].AttendanceRecordSession < out[j].AttendanceRecordSession
	})
	return out, nil
}

func (s *MemoryStore) CountStatuses(_ context.Context, key SummaryKey) (map[model.AttendanceStatus]int, error) {
	defer s.guard()()
	out := map[model.AttendanceStatus]int{}
	for _, r := range s.state.records {
		if r.AttendanceRecordStudentID == key.StudentID &&
			r.AttendanceRecordSubjectID == key.SubjectID &&
			r.AttendanceRecordClassID == key.ClassID {
			out[r.AttendanceRecordStatus]++
		}
	}
	return out, nil
}

func (s *MemoryStore) SessionStatusGroups(_ context.Context, key SessionKey) ([]StatusGroup, error) {
	defer s.guard()()
	byStatus := map[model.AttendanceStatus][]uuid.UUID{}
	day := dbtime.DateOnly(key.Date)
	for _, r := range s.state.records {
		if r.AttendanceRecordSchoolID == key.SchoolID &&
			r.AttendanceRecordClassID == key.ClassID &&
			r.AttendanceRecordSubjectID == key.SubjectID &&
			dbtime.DateOnly(r.AttendanceRecordDate).Equal(day) &&
			strings.EqualFold(r.AttendanceRecordSession, key.Session) {
			byStatus[r.AttendanceRecordStatus] = append(byStatus[r.AttendanceRecordStatus], r.AttendanceRecordStudentID)
		}
	}
	out := make([]StatusGroup, 0, len(byStatus))
	for _, st := range model.AllStatuses {
		ids, ok := byStatus[st]
		if !ok {
			continue
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
		out = append(out, StatusGroup{Status: st, StudentIDs: ids})
	}
	return out, nil
}

func (s *MemoryStore) ListRecordKeys(_ context.Context) ([]SummaryKey, error) {
	defer s.guard()()
	seen := map[SummaryKey]bool{}
	var out []SummaryKey
	for _, r := range s.state.records {
		k := SummaryKeyOf(r)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out, nil
}

/* =========================================================
   SUMMARIES
========================================================= */

func (s *MemoryStore) UpsertSummary(_ context.Context, m *model.AttendanceSummaryModel) error {
	defer s.guard()()
	for id, cur := range s.state.summaries {
		if cur.AttendanceSummaryStudentID == m.AttendanceSummaryStudentID &&
			cur.AttendanceSummarySubjectID == m.AttendanceSummarySubjectID &&
			cur.AttendanceSummaryClassID == m.AttendanceSummaryClassID {
			m.AttendanceSummaryID = id
			s.state.summaries[id] = *m
			return nil
		}
	}
	if m.AttendanceSummaryID == uuid.Nil {
		m.AttendanceSummaryID = uuid.New()
	}
	s.state.summaries[m.AttendanceSummaryID] = *m
	return nil
}

func (s *MemoryStore) ListSummaries(_ context.Context, f SummaryFilter) ([]model.AttendanceSummaryModel, error) {
	defer s.guard()()
	var out []model.AttendanceSummaryModel
	for _, m := range s.state.summaries {
		if m.AttendanceSummarySchoolID != f.SchoolID {
			continue
		}
		if f.StudentID != nil && m.AttendanceSummaryStudentID != *f.StudentID {
			continue
		}
		if f.SubjectID != nil && m.AttendanceSummarySubjectID != *f.SubjectID {
			continue
		}
		if f.ClassID != nil && m.AttendanceSummaryClassID != *f.ClassID {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AttendanceSummarySubjectID != out[j].AttendanceSummarySubjectID {
			return out[i].AttendanceSummarySubjectID.String() < out[j].AttendanceSummarySubjectID.String()
		}
		return out[i].AttendanceSummaryStudentID.String() < out[j].AttendanceSummaryStudentID.String()
	})
	return out, nil
}

func (s *MemoryStore) ListSummaryKeys(_ context.Context) ([]SummaryKey, error) {
	defer s.guard()()
	out := make([]SummaryKey, 0, len(s.state.summaries))
	for _, m := range s.state.summaries {
		out = append(out, SummaryKey{
			SchoolID:  m.AttendanceSummarySchoolID,
			StudentID: m.AttendanceSummaryStudentID,
			SubjectID: m.AttendanceSummarySubjectID,
			ClassID:   m.AttendanceSummaryClassID,
		})
	}
	return out, nil
}

/* =========================================================
   AUDIT
========================================================= */

func (s *MemoryStore) AppendAudit(_ context.Context, e *model.AttendanceAuditLogModel) error {
	defer s.guard()()
	if e.AttendanceAuditLogID == uuid.Nil {
		e.AttendanceAuditLogID = uuid.New()
	}
	s.state.audits = append(s.state.audits, *e)
	return nil
}

func (s *MemoryStore) ListAudits(_ context.Context, schoolID, recordID uuid.UUID) ([]model.AttendanceAuditLogModel, error) {
	defer s.guard()()
	var out []model.AttendanceAuditLogModel
	// urutan append = urutan waktu; dibalik untuk newest-first
	for i := len(s.state.audits) - 1; i >= 0; i-- {
		e := s.state.audits[i]
		if e.AttendanceAuditLogSchoolID == schoolID && e.AttendanceAuditLogRecordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}

/* =========================================================
   SESSION CONFIGURATION
========================================================= */

func (s *MemoryStore) sameConfigKey(a, b model.SessionConfigurationModel) bool {
	return a.SessionConfigurationClassID == b.SessionConfigurationClassID &&
		a.SessionConfigurationSubjectID == b.SessionConfigurationSubjectID &&
		a.SessionConfigurationType == b.SessionConfigurationType
}

func (s *MemoryStore) CreateSessionConfig(_ context.Context, cfg *model.SessionConfigurationModel) error {
	defer s.guard()()
	for _, cur := range s.state.configs {
		if s.sameConfigKey(cur, *cfg) {
			return ErrConflict
		}
	}
	if cfg.SessionConfigurationID == uuid.Nil {
		cfg.SessionConfigurationID = uuid.New()
	}
	now := s.now()
	cfg.SessionConfigurationCreatedAt = now
	cfg.SessionConfigurationUpdatedAt = now
	s.state.configs[cfg.SessionConfigurationID] = *cfg
	return nil
}

func (s *MemoryStore) GetSessionConfig(_ context.Context, schoolID, id uuid.UUID) (*model.SessionConfigurationModel, error) {
	defer s.guard()()
	m, ok := s.state.configs[id]
	if !ok || m.SessionConfigurationSchoolID != schoolID {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) SaveSessionConfig(_ context.Context, cfg *model.SessionConfigurationModel) error {
	defer s.guard()()
	for id, cur := range s.state.configs {
		if id != cfg.SessionConfigurationID && s.sameConfigKey(cur, *cfg) {
			return ErrConflict
		}
	}
	cfg.SessionConfigurationUpdatedAt = s.now()
	s.state.configs[cfg.SessionConfigurationID] = *cfg
	return nil
}

func (s *MemoryStore) ListSessionConfigs(_ context.Context, schoolID, classID, subjectID uuid.UUID, activeOnly bool) ([]model.SessionConfigurationModel, error) {
	defer s.guard()()
	var out []model.SessionConfigurationModel
	for _, m := range s.state.configs {
		if m.SessionConfigurationSchoolID != schoolID {
			continue
		}
		if classID != uuid.Nil && m.SessionConfigurationClassID != classID {
			continue
		}
		if subjectID != uuid.Nil && m.SessionConfigurationSubjectID != subjectID {
			continue
		}
		if activeOnly && !m.SessionConfigurationIsActive {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionConfigurationType < out[j].SessionConfigurationType })
	return out, nil
}

/* =========================================================
   BULK JOBS
========================================================= */

func (s *MemoryStore) CreateBulkJob(_ context.Context, job *model.BulkJobModel) error {
	defer s.guard()()
	if job.BulkJobID == uuid.Nil {
		job.BulkJobID = uuid.New()
	}
	job.BulkJobCreatedAt = s.now()
	s.state.jobs = append(s.state.jobs, *job)
	return nil
}

func (s *MemoryStore) ListBulkJobs(_ context.Context, schoolID uuid.UUID, limit int) ([]model.BulkJobModel, error) {
	defer s.guard()()
	if limit <= 0 {
		limit = 50
	}
	var out []model.BulkJobModel
	for i := len(s.state.jobs) - 1; i >= 0 && len(out) < limit; i-- {
		if s.state.jobs[i].BulkJobSchoolID == schoolID {
			out = append(out, s.state.jobs[i])
		}
	}
	return out, nil
}
