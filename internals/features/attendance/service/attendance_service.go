// file: internals/features/attendance/service/attendance_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/dto"
	"sekolahku_backend/internals/features/attendance/model"
	"sekolahku_backend/internals/features/attendance/repository"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"
	"sekolahku_backend/internals/helpers/dbtime"
)

// AttendanceService: satu-satunya pintu baca/tulis attendance.
// Tulis = validasi → record → audit → recompute summary, dalam satu transaksi per siswa.
type AttendanceService struct {
	store      repository.Store
	cfg        Config
	validation *ValidationService
	summary    *SummaryService
	audit      *AuditService
	now        func() time.Time
}

func NewAttendanceService(store repository.Store, cfg Config) *AttendanceService {
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = DefaultConfig().MaxBatch
	}
	if cfg.Location == nil {
		cfg.Location = DefaultConfig().Location
	}
	return &AttendanceService{
		store:      store,
		cfg:        cfg,
		validation: NewValidationService(store, cfg),
		summary:    NewSummaryService(store),
		audit:      NewAuditService(store),
		now:        time.Now,
	}
}

// WithClock mengganti sumber waktu (test).
func (s *AttendanceService) WithClock(now func() time.Time) *AttendanceService {
	s.now = now
	s.validation.now = now
	s.summary.now = now
	s.audit.now = now
	return s
}

func (s *AttendanceService) Summaries() *SummaryService { return s.summary }

func (s *AttendanceService) Validation() *ValidationService { return s.validation }

/* =========================================================
   ROSTER
========================================================= */

func (s *AttendanceService) GetClassStudentsForAttendance(ctx context.Context, p helperAuth.Principal, classID, subjectID uuid.UUID) ([]dto.RosterStudent, error) {
	if _, err := s.validation.ValidateTeacherAssignment(ctx, p, classID, subjectID); err != nil {
		return nil, err
	}
	students, err := s.store.ListClassStudents(ctx, p.SchoolID, classID)
	if err != nil {
		return nil, dbErr("list class students", err)
	}
	if len(students) == 0 {
		return nil, &NotFoundError{Resource: "students in class", ID: classID.String()}
	}
	out := make([]dto.RosterStudent, 0, len(students))
	for _, st := range students {
		out = append(out, dto.NewRosterStudent(st.StudentID, st.StudentName, st.StudentRollNum))
	}
	return out, nil
}

/* =========================================================
   BULK MARK
========================================================= */

type markContext struct {
	principal helperAuth.Principal
	classID   uuid.UUID
	subjectID uuid.UUID
	teacherID uuid.UUID
	date      time.Time
	session   string
	info      AuditInfo
}

// BulkMarkAttendance: validasi batch sekali, lalu tiap siswa diproses terisolasi.
// Kegagalan satu siswa tidak membatalkan siswa lain.
func (s *AttendanceService) BulkMarkAttendance(ctx context.Context, p helperAuth.Principal, req dto.MarkAttendanceRequest, info AuditInfo) (*dto.BulkMarkResult, error) {
	if p.IsStudent() {
		return nil, forbidden("students cannot mark attendance")
	}
	n := len(req.StudentAttendance)
	if n == 0 {
		return nil, invalid("studentAttendance", "at least one student is required")
	}
	if n > s.cfg.MaxBatch {
		return nil, &BulkOperationError{Operation: "mark", Message: fmt.Sprintf("batch of %d students exceeds the limit of %d", n, s.cfg.MaxBatch)}
	}

	classID, err := parseID("classId", req.ClassID)
	if err != nil {
		return nil, err
	}
	subjectID, err := parseID("subjectId", req.SubjectID)
	if err != nil {
		return nil, err
	}

	// 1) validasi level batch
	asg, err := s.validation.ValidateTeacherAssignment(ctx, p, classID, subjectID)
	if err != nil {
		return nil, err
	}
	session, err := s.validation.ValidateSessionConfiguration(ctx, p.SchoolID, classID, subjectID, req.Session)
	if err != nil {
		return nil, err
	}
	date, err := s.validation.ParseAndValidateDate(req.Date)
	if err != nil {
		return nil, err
	}
	teacherID, err := s.resolveMarkingTeacher(ctx, p, asg, req.TeacherID)
	if err != nil {
		return nil, err
	}

	mc := markContext{
		principal: p,
		classID:   classID,
		subjectID: subjectID,
		teacherID: teacherID,
		date:      date,
		session:   session,
		info:      info.with("operation", "bulk_mark"),
	}

	// 2) per siswa
	result := dto.NewBulkMarkResult()
	seen := make(map[uuid.UUID]bool, n)
	for _, entry := range req.StudentAttendance {
		ok, err := s.markOne(ctx, mc, entry, seen)
		if err != nil {
			result.Fail(dto.MarkFailure{
				StudentID: strings.TrimSpace(entry.StudentID),
				Status:    strings.TrimSpace(entry.Status),
				Error:     PublicMessage(err),
			})
			continue
		}
		result.Ok(*ok)
	}
	return result, nil
}

func (s *AttendanceService) markOne(ctx context.Context, mc markContext, entry dto.StudentAttendanceEntry, seen map[uuid.UUID]bool) (*dto.MarkSuccess, error) {
	studentID, err := parseID("studentId", entry.StudentID)
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(entry.Status)
	if err != nil {
		return nil, err
	}
	if seen[studentID] {
		return nil, invalid("studentId", "student appears more than once in this batch")
	}
	seen[studentID] = true

	var out dto.MarkSuccess
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		p := mc.principal
		if _, err := s.validation.With(tx).ValidateStudentEnrollment(ctx, p.SchoolID, studentID, mc.classID); err != nil {
			return err
		}

		now := s.now().UTC()
		rec := &model.AttendanceRecordModel{
			AttendanceRecordSchoolID:     p.SchoolID,
			AttendanceRecordStudentID:    studentID,
			AttendanceRecordClassID:      mc.classID,
			AttendanceRecordSubjectID:    mc.subjectID,
			AttendanceRecordDate:         mc.date,
			AttendanceRecordSession:      mc.session,
			AttendanceRecordTeacherID:    mc.teacherID,
			AttendanceRecordStatus:       status,
			AttendanceRecordMarkedBy:     p.ID,
			AttendanceRecordMarkedByRole: p.Role(),
		}

		// upsert bersyarat: insert on-conflict-do-nothing, lalu lock+update baris pemenang
		inserted, err := tx.InsertRecordIfAbsent(ctx, rec)
		if err != nil {
			return dbErr("insert attendance", err)
		}
		action := model.AuditCreate
		var before *model.AttendanceRecordModel
		if !inserted {
			if s.cfg.StrictOnce {
				return &AlreadyMarkedError{StudentID: studentID.String(), Date: dbtime.FormatDate(mc.date), Session: mc.session}
			}
			existing, err := tx.FindRecordByKey(ctx, repository.KeyOf(*rec))
			if err != nil {
				return dbErr("find attendance", err)
			}
			locked, err := tx.LockRecord(ctx, p.SchoolID, existing.AttendanceRecordID)
			if err != nil {
				return dbErr("lock attendance", err)
			}
			prev := *locked
			before = &prev

			locked.AttendanceRecordStatus = status
			stampModified(locked, p, now)
			if err := tx.SaveRecord(ctx, locked); err != nil {
				return dbErr("update attendance", err)
			}
			rec = locked
			action = model.AuditUpdate
		}

		if _, err := s.audit.With(tx).Record(ctx, AuditEntry{
			Action: action, Before: before, After: rec, Actor: p, Info: mc.info,
		}); err != nil {
			return err
		}
		if _, err := s.summary.With(tx).UpdateStudentSummary(ctx, repository.SummaryKeyOf(*rec)); err != nil {
			return err
		}

		out = dto.MarkSuccess{
			StudentID: studentID,
			RecordID:  rec.AttendanceRecordID,
			Status:    rec.AttendanceRecordStatus,
			Action:    action,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// resolveMarkingTeacher: guru = dirinya; admin = teacherId eksplisit atau guru pengampu mapel.
func (s *AttendanceService) resolveMarkingTeacher(ctx context.Context, p helperAuth.Principal, asg *Assignment, raw *string) (uuid.UUID, error) {
	if p.IsTeacher() {
		return p.ID, nil
	}
	if raw != nil && strings.TrimSpace(*raw) != "" {
		id, err := parseID("teacherId", *raw)
		if err != nil {
			return uuid.Nil, err
		}
		if _, err := s.store.GetTeacher(ctx, p.SchoolID, id); err != nil {
			return uuid.Nil, lookupErr("load teacher", "teacher", id, err)
		}
		ok, err := s.store.HasTeacherAssignment(ctx, id, asg.Class.ClassID, asg.Subject.SubjectID)
		if err != nil {
			return uuid.Nil, dbErr("check teacher assignment", err)
		}
		if !ok {
			return uuid.Nil, invalid("teacherId", "teacher is not assigned to this class and subject")
		}
		return id, nil
	}
	if asg.Subject.SubjectTeacherID != nil {
		return *asg.Subject.SubjectTeacherID, nil
	}
	return uuid.Nil, invalid("teacherId", "teacherId is required when the subject has no teacher")
}

/* =========================================================
   UPDATE
========================================================= */

// UpdateAttendance: merge parsial. Penugasan aktor dicek ulang terhadap kelas/mapel record;
// sesi & tanggal baru divalidasi ulang; bentrok natural key → 409.
func (s *AttendanceService) UpdateAttendance(ctx context.Context, p helperAuth.Principal, recordID uuid.UUID, req dto.UpdateAttendanceRequest, info AuditInfo) (*model.AttendanceRecordModel, error) {
	if p.IsStudent() {
		return nil, forbidden("students cannot update attendance")
	}
	if req.Empty() {
		return nil, invalid("", "nothing to update")
	}
	if err := s.validation.ValidateActor(ctx, p); err != nil {
		return nil, err
	}

	var out *model.AttendanceRecordModel
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		v := s.validation.With(tx)

		rec, err := tx.LockRecord(ctx, p.SchoolID, recordID)
		if err != nil {
			return lookupErr("load attendance", "attendance record", recordID, err)
		}
		if _, err := v.ValidateTeacherAssignment(ctx, p, rec.AttendanceRecordClassID, rec.AttendanceRecordSubjectID); err != nil {
			return err
		}
		before := *rec

		if req.Status != nil {
			st, err := parseStatus(*req.Status)
			if err != nil {
				return err
			}
			rec.AttendanceRecordStatus = st
		}
		if req.Session != nil {
			label, err := v.ValidateSessionConfiguration(ctx, p.SchoolID, rec.AttendanceRecordClassID, rec.AttendanceRecordSubjectID, *req.Session)
			if err != nil {
				return err
			}
			rec.AttendanceRecordSession = label
		}
		if req.Date != nil {
			d, err := v.ParseAndValidateDate(*req.Date)
			if err != nil {
				return err
			}
			rec.AttendanceRecordDate = d
		}
		stampModified(rec, p, s.now().UTC())

		if err := tx.SaveRecord(ctx, rec); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return &AlreadyMarkedError{
					StudentID: rec.AttendanceRecordStudentID.String(),
					Date:      dbtime.FormatDate(rec.AttendanceRecordDate),
					Session:   rec.AttendanceRecordSession,
				}
			}
			return dbErr("update attendance", err)
		}

		reason := ""
		if req.Reason != nil {
			reason = *req.Reason
		}
		if _, err := s.audit.With(tx).Record(ctx, AuditEntry{
			Action: model.AuditUpdate, Before: &before, After: rec, Actor: p, Reason: reason, Info: info,
		}); err != nil {
			return err
		}
		if before.AttendanceRecordStatus != rec.AttendanceRecordStatus {
			if _, err := s.summary.With(tx).UpdateStudentSummary(ctx, repository.SummaryKeyOf(*rec)); err != nil {
				return err
			}
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

/* =========================================================
   DELETE
========================================================= */

// DeleteAttendance: admin saja, alasan wajib. Audit "delete" menyimpan state penuh sebelum hapus.
func (s *AttendanceService) DeleteAttendance(ctx context.Context, p helperAuth.Principal, recordID uuid.UUID, reason string, info AuditInfo) error {
	if !p.IsAdmin() {
		return forbidden("only school admins can delete attendance records")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return invalid("reason", "reason is required to delete an attendance record")
	}

	return s.store.WithTx(ctx, func(tx repository.Store) error {
		rec, err := tx.LockRecord(ctx, p.SchoolID, recordID)
		if err != nil {
			return lookupErr("load attendance", "attendance record", recordID, err)
		}
		if _, err := s.audit.With(tx).Record(ctx, AuditEntry{
			Action: model.AuditDelete, Before: rec, Actor: p, Reason: reason, Info: info,
		}); err != nil {
			return err
		}
		if err := tx.DeleteRecord(ctx, p.SchoolID, recordID); err != nil {
			return lookupErr("delete attendance", "attendance record", recordID, err)
		}
		_, err = s.summary.With(tx).UpdateStudentSummary(ctx, repository.SummaryKeyOf(*rec))
		return err
	})
}

/* =========================================================
   READ
========================================================= */

var recordSortKeys = map[string]bool{
	"date": true, "session": true, "status": true, "createdAt": true, "updatedAt": true,
}

// GetAttendanceByFilters: query konjungtif + paging + sort + ekspansi referensi opsional.
func (s *AttendanceService) GetAttendanceByFilters(ctx context.Context, p helperAuth.Principal, q dto.AttendanceRecordQuery, page helper.Params) (*dto.RecordPage, error) {
	f, err := buildRecordFilter(p, q)
	if err != nil {
		return nil, err
	}

	rows, total, err := s.store.ListRecords(ctx, f, repository.ListOptions{
		Limit:  page.Limit(),
		Offset: page.Offset(),
		SortBy: page.SafeSortKey(recordSortKeys, "date"),
		Desc:   page.Desc(),
	})
	if err != nil {
		return nil, dbErr("list attendance", err)
	}

	views, err := s.expand(ctx, p.SchoolID, rows, q.Expand)
	if err != nil {
		return nil, err
	}
	return &dto.RecordPage{Records: views, Pagination: helper.BuildPagination(total, page)}, nil
}

func optID(field, raw string) (*uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := parseID(field, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func optDate(field, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := dbtime.ParseDate(raw)
	if err != nil {
		return nil, invalid(field, err.Error())
	}
	return &d, nil
}

func buildRecordFilter(p helperAuth.Principal, q dto.AttendanceRecordQuery) (repository.RecordFilter, error) {
	f := repository.RecordFilter{SchoolID: p.SchoolID}
	var err error
	if f.ClassID, err = optID("classId", q.ClassID); err != nil {
		return f, err
	}
	if f.SubjectID, err = optID("subjectId", q.SubjectID); err != nil {
		return f, err
	}
	if f.TeacherID, err = optID("teacherId", q.TeacherID); err != nil {
		return f, err
	}
	if f.StudentID, err = optID("studentId", q.StudentID); err != nil {
		return f, err
	}
	if f.StartDate, err = optDate("startDate", q.StartDate); err != nil {
		return f, err
	}
	if f.EndDate, err = optDate("endDate", q.EndDate); err != nil {
		return f, err
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return f, invalid("endDate", "endDate must not be before startDate")
	}
	if strings.TrimSpace(q.Status) != "" {
		st, err := parseStatus(q.Status)
		if err != nil {
			return f, err
		}
		f.Status = &st
	}
	if sess := strings.TrimSpace(q.Session); sess != "" {
		f.Session = &sess
	}

	// siswa hanya melihat miliknya sendiri
	if p.IsStudent() {
		if f.StudentID != nil && *f.StudentID != p.ID {
			return f, forbidden("students can only read their own attendance")
		}
		id := p.ID
		f.StudentID = &id
	}
	return f, nil
}

func (s *AttendanceService) expand(ctx context.Context, schoolID uuid.UUID, rows []model.AttendanceRecordModel, on bool) ([]dto.AttendanceRecordView, error) {
	out := make([]dto.AttendanceRecordView, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.AttendanceRecordView{AttendanceRecordModel: r})
	}
	if !on || len(rows) == 0 {
		return out, nil
	}

	var studentIDs, teacherIDs, subjectIDs, classIDs []uuid.UUID
	for _, r := range rows {
		studentIDs = append(studentIDs, r.AttendanceRecordStudentID)
		teacherIDs = append(teacherIDs, r.AttendanceRecordTeacherID)
		subjectIDs = append(subjectIDs, r.AttendanceRecordSubjectID)
		classIDs = append(classIDs, r.AttendanceRecordClassID)
	}

	students, err := s.store.ListStudentsByIDs(ctx, schoolID, uniqueIDs(studentIDs))
	if err != nil {
		return nil, dbErr("expand students", err)
	}
	teachers, err := s.store.ListTeachersByIDs(ctx, schoolID, uniqueIDs(teacherIDs))
	if err != nil {
		return nil, dbErr("expand teachers", err)
	}
	subjects, err := s.store.ListSubjectsByIDs(ctx, schoolID, uniqueIDs(subjectIDs))
	if err != nil {
		return nil, dbErr("expand subjects", err)
	}
	classes, err := s.store.ListClassesByIDs(ctx, schoolID, uniqueIDs(classIDs))
	if err != nil {
		return nil, dbErr("expand classes", err)
	}

	studentRef := map[uuid.UUID]*dto.StudentRef{}
	for _, st := range students {
		studentRef[st.StudentID] = &dto.StudentRef{ID: st.StudentID, Name: st.StudentName, RollNum: st.StudentRollNum}
	}
	teacherRef := map[uuid.UUID]*dto.NamedRef{}
	for _, t := range teachers {
		teacherRef[t.TeacherID] = &dto.NamedRef{ID: t.TeacherID, Name: t.TeacherName}
	}
	subjectRef := map[uuid.UUID]*dto.NamedRef{}
	for _, sub := range subjects {
		subjectRef[sub.SubjectID] = &dto.NamedRef{ID: sub.SubjectID, Name: sub.SubjectName, Code: sub.SubjectCode}
	}
	classRef := map[uuid.UUID]*dto.NamedRef{}
	for _, c := range classes {
		classRef[c.ClassID] = &dto.NamedRef{ID: c.ClassID, Name: c.ClassName}
	}

	for i := range out {
		r := out[i].AttendanceRecordModel
		out[i].Student = studentRef[r.AttendanceRecordStudentID]
		out[i].Teacher = teacherRef[r.AttendanceRecordTeacherID]
		out[i].Subject = subjectRef[r.AttendanceRecordSubjectID]
		out[i].Class = classRef[r.AttendanceRecordClassID]
	}
	return out, nil
}

// GetSessionSummary: hitungan per status + daftar siswa per status untuk satu sesi.
func (s *AttendanceService) GetSessionSummary(ctx context.Context, p helperAuth.Principal, classID, subjectID uuid.UUID, rawDate, session string) (*dto.SessionSummary, error) {
	if _, err := s.validation.ValidateTeacherAssignment(ctx, p, classID, subjectID); err != nil {
		return nil, err
	}
	date, err := dbtime.ParseDate(rawDate)
	if err != nil {
		return nil, invalid("date", err.Error())
	}
	session = strings.TrimSpace(session)
	if session == "" {
		return nil, invalid("session", "session is required")
	}

	groups, err := s.store.SessionStatusGroups(ctx, repository.SessionKey{
		SchoolID:  p.SchoolID,
		ClassID:   classID,
		SubjectID: subjectID,
		Date:      date,
		Session:   session,
	})
	if err != nil {
		return nil, dbErr("session summary", err)
	}

	out := &dto.SessionSummary{
		ClassID:   classID,
		SubjectID: subjectID,
		Date:      dbtime.FormatDate(date),
		Session:   session,
		Students:  make(map[string][]uuid.UUID, len(model.AllStatuses)),
	}
	for _, st := range model.AllStatuses {
		out.Students[string(st)] = []uuid.UUID{}
	}
	for _, g := range groups {
		n := len(g.StudentIDs)
		switch g.Status {
		case model.AttendancePresent:
			out.Present = n
		case model.AttendanceAbsent:
			out.Absent = n
		case model.AttendanceLate:
			out.Late = n
		case model.AttendanceExcused:
			out.Excused = n
		default:
			continue
		}
		out.Students[string(g.Status)] = g.StudentIDs
	}
	out.Total = out.Present + out.Absent + out.Late + out.Excused
	return out, nil
}

// GetSessionOptions: label sesi yang boleh dipilih untuk (kelas, mapel).
func (s *AttendanceService) GetSessionOptions(ctx context.Context, p helperAuth.Principal, classID, subjectID uuid.UUID) ([]dto.SessionOption, error) {
	if _, err := s.validation.ValidateTeacherAssignment(ctx, p, classID, subjectID); err != nil {
		return nil, err
	}
	cfgs, err := s.store.ListSessionConfigs(ctx, p.SchoolID, classID, subjectID, true)
	if err != nil {
		return nil, dbErr("list session configuration", err)
	}
	return dto.NewSessionOptions(cfgs), nil
}

// AuditTrail: riwayat audit satu record (terbaru dulu).
func (s *AttendanceService) AuditTrail(ctx context.Context, p helperAuth.Principal, recordID uuid.UUID) ([]model.AttendanceAuditLogModel, error) {
	if p.IsStudent() {
		return nil, forbidden("students cannot read audit logs")
	}
	rec, err := s.store.GetRecord(ctx, p.SchoolID, recordID)
	switch {
	case err == nil:
		if _, err := s.validation.ValidateTeacherAssignment(ctx, p, rec.AttendanceRecordClassID, rec.AttendanceRecordSubjectID); err != nil {
			return nil, err
		}
	case errors.Is(err, repository.ErrNotFound):
		// record sudah dihapus: jejaknya tetap bisa dibaca admin
		if !p.IsAdmin() {
			return nil, notFound("attendance record", recordID)
		}
	default:
		return nil, dbErr("load attendance", err)
	}

	rows, err := s.audit.Trail(ctx, p.SchoolID, recordID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound("attendance record", recordID)
	}
	return rows, nil
}

// StudentSummaries: delegasi ke SummaryService.
func (s *AttendanceService) StudentSummaries(ctx context.Context, p helperAuth.Principal, studentID uuid.UUID, subjectID *uuid.UUID) ([]dto.StudentSummaryView, error) {
	return s.summary.StudentSummaries(ctx, p, studentID, subjectID)
}

// ClassSummary: rekap roster untuk (kelas, mapel); guru wajib ditugaskan.
func (s *AttendanceService) ClassSummary(ctx context.Context, p helperAuth.Principal, classID, subjectID uuid.UUID) (*dto.ClassSummary, error) {
	if _, err := s.validation.ValidateTeacherAssignment(ctx, p, classID, subjectID); err != nil {
		return nil, err
	}
	return s.summary.ClassSummary(ctx, p.SchoolID, classID, subjectID)
}

// ExportClassRecords: baris export (urut tanggal, sesi, roll) untuk CSV.
func (s *AttendanceService) ExportClassRecords(ctx context.Context, p helperAuth.Principal, classID, subjectID uuid.UUID, startRaw, endRaw string) ([]dto.ExportRow, error) {
	asg, err := s.validation.ValidateTeacherAssignment(ctx, p, classID, subjectID)
	if err != nil {
		return nil, err
	}
	f, err := buildRecordFilter(p, dto.AttendanceRecordQuery{
		ClassID:   classID.String(),
		SubjectID: subjectID.String(),
		StartDate: startRaw,
		EndDate:   endRaw,
	})
	if err != nil {
		return nil, err
	}
	rows, _, err := s.store.ListRecords(ctx, f, repository.ListOptions{SortBy: "date"})
	if err != nil {
		return nil, dbErr("export attendance", err)
	}

	var studentIDs, markerIDs []uuid.UUID
	for _, r := range rows {
		studentIDs = append(studentIDs, r.AttendanceRecordStudentID)
		if r.AttendanceRecordMarkedByRole == string(helperAuth.KindTeacher) {
			markerIDs = append(markerIDs, r.AttendanceRecordMarkedBy)
		}
	}
	students, err := s.store.ListStudentsByIDs(ctx, p.SchoolID, uniqueIDs(studentIDs))
	if err != nil {
		return nil, dbErr("export students", err)
	}
	teachers, err := s.store.ListTeachersByIDs(ctx, p.SchoolID, uniqueIDs(markerIDs))
	if err != nil {
		return nil, dbErr("export teachers", err)
	}
	type stInfo struct {
		name, code string
		roll       int
	}
	stByID := make(map[uuid.UUID]stInfo, len(students))
	for _, st := range students {
		stByID[st.StudentID] = stInfo{st.StudentName, st.StudentCode, st.StudentRollNum}
	}
	tName := make(map[uuid.UUID]string, len(teachers))
	for _, t := range teachers {
		tName[t.TeacherID] = t.TeacherName
	}

	out := make([]dto.ExportRow, 0, len(rows))
	for _, r := range rows {
		st := stByID[r.AttendanceRecordStudentID]
		marker := "admin"
		if n, ok := tName[r.AttendanceRecordMarkedBy]; ok {
			marker = n
		}
		out = append(out, dto.ExportRow{
			Date:        r.AttendanceRecordDate,
			Session:     r.AttendanceRecordSession,
			RollNum:     st.roll,
			StudentName: st.name,
			StudentCode: st.code,
			Subject:     asg.Subject.SubjectName,
			Status:      r.AttendanceRecordStatus,
			MarkedBy:    marker,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Date.Compare(out[j].Date); c != 0 {
			return c < 0
		}
		if out[i].Session != out[j].Session {
			return out[i].Session < out[j].Session
		}
		return out[i].RollNum < out[j].RollNum
	})
	return out, nil
}

/* =========================================================
   HELPERS
========================================================= */

func parseStatus(raw string) (model.AttendanceStatus, error) {
	st := model.AttendanceStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !st.Valid() {
		return "", invalid("status", fmt.Sprintf("invalid status %q (present, absent, late, excused)", raw))
	}
	return st, nil
}

func stampModified(rec *model.AttendanceRecordModel, p helperAuth.Principal, now time.Time) {
	by := p.ID
	role := p.Role()
	rec.AttendanceRecordLastModifiedBy = &by
	rec.AttendanceRecordLastModifiedByRole = &role
	rec.AttendanceRecordLastModifiedAt = &now
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// with: salinan AuditInfo dengan satu key metadata tambahan.
func (i AuditInfo) with(key string, val any) AuditInfo {
	md := make(map[string]any, len(i.Metadata)+1)
	for k, v := range i.Metadata {
		md[k] = v
	}
	md[key] = val
	i.Metadata = md
	return i
}
