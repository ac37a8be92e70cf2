// file: internals/features/attendance/service/bulk_management_service.go
package service

import (
	"context"
	"errors"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"sekolahku_backend/internals/features/attendance/dto"
	"sekolahku_backend/internals/features/attendance/model"
	"sekolahku_backend/internals/features/attendance/repository"
	acModel "sekolahku_backend/internals/features/school/academics/model"
	helperAuth "sekolahku_backend/internals/helpers/auth"
	"sekolahku_backend/internals/helpers/dbtime"
)

// BulkManagementService: operasi roster berbasis pola kode siswa.
// Pola glob: '*' sembarang deret, '?' satu karakter, '[...]' kelas karakter.
type BulkManagementService struct {
	store   repository.Store
	summary *SummaryService
	audit   *AuditService
	now     func() time.Time
}

func NewBulkManagementService(store repository.Store, summary *SummaryService, audit *AuditService) *BulkManagementService {
	return &BulkManagementService{store: store, summary: summary, audit: audit, now: time.Now}
}

/* =========================================================
   PATTERN
========================================================= */

func normalizePattern(raw string) (string, error) {
	p := strings.ToUpper(strings.TrimSpace(raw))
	if p == "" {
		return "", invalid("pattern", "pattern is required")
	}
	if strings.Contains(p, "/") {
		return "", invalid("pattern", "pattern must not contain '/'")
	}
	if _, err := path.Match(p, ""); err != nil {
		return "", invalid("pattern", "malformed pattern")
	}
	return p, nil
}

// MatchCode: pola (sudah dinormalisasi) vs kode siswa, case-insensitive.
func MatchCode(pattern, code string) bool {
	ok, err := path.Match(pattern, strings.ToUpper(strings.TrimSpace(code)))
	return err == nil && ok
}

type assignPlan struct {
	pattern   string
	class     *acModel.ClassModel
	subjects  []acModel.SubjectModel
	matched   []acModel.StudentModel
	conflicts map[uuid.UUID]string
	preview   *dto.PatternPreview
}

func (b *BulkManagementService) plan(ctx context.Context, p helperAuth.Principal, req dto.ValidatePatternRequest) (*assignPlan, error) {
	if !p.IsAdmin() {
		return nil, forbidden("only school admins can run bulk roster operations")
	}
	pattern, err := normalizePattern(req.Pattern)
	if err != nil {
		return nil, err
	}
	classID, err := parseID("classId", req.ClassID)
	if err != nil {
		return nil, err
	}
	class, err := b.store.GetClass(ctx, p.SchoolID, classID)
	if err != nil {
		return nil, lookupErr("load class", "class", classID, err)
	}
	subjects, err := b.resolveSubjects(ctx, p.SchoolID, classID, req.SubjectIDs)
	if err != nil {
		return nil, err
	}

	all, err := b.store.ListSchoolStudents(ctx, p.SchoolID)
	if err != nil {
		return nil, dbErr("list students", err)
	}

	pl := &assignPlan{
		pattern:   pattern,
		class:     class,
		subjects:  subjects,
		conflicts: map[uuid.UUID]string{},
		preview: &dto.PatternPreview{
			Pattern:   pattern,
			Matched:   []dto.MatchedStudent{},
			Conflicts: []dto.BulkConflict{},
		},
	}
	for _, st := range all {
		if !MatchCode(pattern, st.StudentCode) {
			continue
		}
		pl.matched = append(pl.matched, st)
		pl.preview.Matched = append(pl.preview.Matched, dto.MatchedStudent{
			StudentID:      st.StudentID,
			Name:           st.StudentName,
			Code:           st.StudentCode,
			RollNum:        st.StudentRollNum,
			CurrentClassID: st.StudentClassID,
		})

		reason := ""
		switch {
		case st.InClass(classID):
			reason = dto.ConflictAlreadyInClass
		case st.StudentClassID != nil:
			reason = dto.ConflictInOtherClass
		}
		if reason != "" {
			pl.conflicts[st.StudentID] = reason
			pl.preview.Conflicts = append(pl.preview.Conflicts, dto.BulkConflict{StudentID: st.StudentID, Reason: reason})
		}
	}
	pl.preview.MatchCount = len(pl.matched)
	return pl, nil
}

// resolveSubjects: kosong → semua mapel kelas; selain itu tiap id wajib milik kelas.
func (b *BulkManagementService) resolveSubjects(ctx context.Context, schoolID, classID uuid.UUID, raw []string) ([]acModel.SubjectModel, error) {
	if len(raw) == 0 {
		subs, err := b.store.ListClassSubjects(ctx, schoolID, classID)
		if err != nil {
			return nil, dbErr("list class subjects", err)
		}
		return subs, nil
	}
	out := make([]acModel.SubjectModel, 0, len(raw))
	seen := map[uuid.UUID]bool{}
	for _, r := range raw {
		id, err := parseID("subjectIds", r)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		sub, err := b.store.GetSubject(ctx, schoolID, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, invalid("subjectIds", "unknown subject "+id.String())
			}
			return nil, dbErr("load subject", err)
		}
		if sub.SubjectClassID != classID {
			return nil, invalid("subjectIds", "subject "+id.String()+" does not belong to the class")
		}
		out = append(out, *sub)
	}
	return out, nil
}

// ValidatePattern: preview tanpa menulis apa pun.
func (b *BulkManagementService) ValidatePattern(ctx context.Context, p helperAuth.Principal, req dto.ValidatePatternRequest) (*dto.PatternPreview, error) {
	pl, err := b.plan(ctx, p, req)
	if err != nil {
		return nil, err
	}
	return pl.preview, nil
}

/* =========================================================
   ASSIGN
========================================================= */

// AssignStudents: tanpa confirm → preview saja. Dengan confirm: tiap siswa di-commit
// terisolasi (kelas + StudentSubject, idempoten); in_other_class dilewati kecuali override.
func (b *BulkManagementService) AssignStudents(ctx context.Context, p helperAuth.Principal, req dto.AssignStudentsRequest) (*dto.AssignResult, error) {
	pl, err := b.plan(ctx, p, req.ValidatePatternRequest)
	if err != nil {
		return nil, err
	}
	res := &dto.AssignResult{
		Successful: []uuid.UUID{},
		Skipped:    []dto.BulkConflict{},
		Failed:     []dto.BulkItemFailure{},
	}
	if !req.Confirm {
		res.Preview = pl.preview
		return res, nil
	}
	if len(pl.matched) == 0 {
		return nil, &BulkOperationError{Operation: "assign", Message: "pattern " + pl.pattern + " matched no students"}
	}

	classID := pl.class.ClassID
	for _, st := range pl.matched {
		if pl.conflicts[st.StudentID] == dto.ConflictInOtherClass && !req.OverrideConflicts {
			res.Skipped = append(res.Skipped, dto.BulkConflict{StudentID: st.StudentID, Reason: dto.ConflictInOtherClass})
			continue
		}
		studentID := st.StudentID
		err := b.store.WithTx(ctx, func(tx repository.Store) error {
			if err := tx.SetStudentClass(ctx, p.SchoolID, studentID, &classID); err != nil {
				return lookupErr("assign class", "student", studentID, err)
			}
			return moveEnrollment(ctx, tx, p.SchoolID, studentID, classID, pl.subjects)
		})
		if err != nil {
			res.Failed = append(res.Failed, dto.BulkItemFailure{StudentID: studentID, Error: PublicMessage(err)})
			continue
		}
		res.Successful = append(res.Successful, studentID)
	}
	res.Committed = true
	res.SuccessCount = len(res.Successful)
	res.FailureCount = len(res.Failed)

	subjectIDs := make([]uuid.UUID, 0, len(pl.subjects))
	for _, s := range pl.subjects {
		subjectIDs = append(subjectIDs, s.SubjectID)
	}
	pattern := pl.pattern
	res.JobID = b.logJob(ctx, &model.BulkJobModel{
		BulkJobSchoolID:    p.SchoolID,
		BulkJobKind:        model.BulkJobAssign,
		BulkJobPerformedBy: p.ID,
		BulkJobPattern:     &pattern,
		BulkJobClassID:     classID,
		BulkJobSubjectIDs:  toStringArray(subjectIDs),
		BulkJobSuccess:     res.SuccessCount,
		BulkJobFailure:     res.FailureCount,
	})
	return res, nil
}

/* =========================================================
   TRANSFER
========================================================= */

type transferTarget struct {
	srcCode  map[uuid.UUID]string            // subject id kelas asal → kode
	dst      map[string]acModel.SubjectModel // kode → subject kelas tujuan
	subjects []acModel.SubjectModel          // semua mapel kelas tujuan
}

func (t transferTarget) counterpart(subjectID uuid.UUID) (acModel.SubjectModel, bool) {
	code, ok := t.srcCode[subjectID]
	if !ok {
		return acModel.SubjectModel{}, false
	}
	sub, ok := t.dst[strings.ToUpper(code)]
	return sub, ok
}

// TransferStudents: pindah keanggotaan kelas. migrateRecords memindahkan record ke mapel
// berkode sama di kelas tujuan; bentrok dengan baris tujuan → siswa gagal & tidak berubah.
func (b *BulkManagementService) TransferStudents(ctx context.Context, p helperAuth.Principal, req dto.TransferStudentsRequest, info AuditInfo) (*dto.TransferResult, error) {
	if !p.IsAdmin() {
		return nil, forbidden("only school admins can run bulk roster operations")
	}
	fromID, err := parseID("fromClassId", req.FromClassID)
	if err != nil {
		return nil, err
	}
	toID, err := parseID("toClassId", req.ToClassID)
	if err != nil {
		return nil, err
	}
	if fromID == toID {
		return nil, invalid("toClassId", "target class must differ from source class")
	}
	if _, err := b.store.GetClass(ctx, p.SchoolID, fromID); err != nil {
		return nil, lookupErr("load class", "class", fromID, err)
	}
	if _, err := b.store.GetClass(ctx, p.SchoolID, toID); err != nil {
		return nil, lookupErr("load class", "class", toID, err)
	}
	if len(req.StudentIDs) == 0 {
		return nil, invalid("studentIds", "at least one student is required")
	}

	target, err := b.loadTransferTarget(ctx, p.SchoolID, fromID, toID)
	if err != nil {
		return nil, err
	}

	res := &dto.TransferResult{
		Conflicts:  []dto.BulkConflict{},
		Successful: []uuid.UUID{},
		Failed:     []dto.BulkItemFailure{},
	}

	// kumpulkan siswa valid
	var movers []acModel.StudentModel
	seen := map[uuid.UUID]bool{}
	for _, raw := range req.StudentIDs {
		id, err := parseID("studentIds", raw)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		st, err := b.store.GetStudent(ctx, p.SchoolID, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				res.Failed = append(res.Failed, dto.BulkItemFailure{StudentID: id, Error: notFound("student", id).Error()})
				continue
			}
			return nil, dbErr("load student", err)
		}
		if !st.InClass(fromID) {
			res.Conflicts = append(res.Conflicts, dto.BulkConflict{StudentID: id, Reason: dto.ConflictNotInSource})
			continue
		}
		movers = append(movers, *st)
	}

	if !req.Confirm {
		res.Preview = make([]dto.TransferPreviewItem, 0, len(movers))
		for _, st := range movers {
			recs, err := b.store.ListStudentRecords(ctx, p.SchoolID, st.StudentID, fromID)
			if err != nil {
				return nil, dbErr("list student records", err)
			}
			item := dto.TransferPreviewItem{StudentID: st.StudentID, Name: st.StudentName, Records: len(recs)}
			for _, r := range recs {
				if _, ok := target.counterpart(r.AttendanceRecordSubjectID); ok {
					item.MigratableRecs++
				}
			}
			res.Preview = append(res.Preview, item)
		}
		return res, nil
	}
	if len(movers) == 0 {
		return nil, &BulkOperationError{Operation: "transfer", Message: "no students are members of the source class"}
	}

	for _, c := range res.Conflicts {
		res.Failed = append(res.Failed, dto.BulkItemFailure{StudentID: c.StudentID, Error: "student is not in the source class"})
	}
	txInfo := info.with("operation", "transfer")
	for _, st := range movers {
		moved, err := b.transferOne(ctx, p, st.StudentID, fromID, toID, req.MigrateRecords, target, txInfo)
		if err != nil {
			res.Failed = append(res.Failed, dto.BulkItemFailure{StudentID: st.StudentID, Error: PublicMessage(err)})
			continue
		}
		res.Successful = append(res.Successful, st.StudentID)
		res.MigratedRecs += moved
	}
	res.Committed = true
	res.SuccessCount = len(res.Successful)
	res.FailureCount = len(res.Failed)

	res.JobID = b.logJob(ctx, &model.BulkJobModel{
		BulkJobSchoolID:    p.SchoolID,
		BulkJobKind:        model.BulkJobTransfer,
		BulkJobPerformedBy: p.ID,
		BulkJobClassID:     fromID,
		BulkJobTargetClass: &toID,
		BulkJobSubjectIDs:  pq.StringArray{},
		BulkJobSuccess:     res.SuccessCount,
		BulkJobFailure:     res.FailureCount,
	})
	return res, nil
}

func (b *BulkManagementService) loadTransferTarget(ctx context.Context, schoolID, fromID, toID uuid.UUID) (transferTarget, error) {
	t := transferTarget{srcCode: map[uuid.UUID]string{}, dst: map[string]acModel.SubjectModel{}}
	src, err := b.store.ListClassSubjects(ctx, schoolID, fromID)
	if err != nil {
		return t, dbErr("list class subjects", err)
	}
	dst, err := b.store.ListClassSubjects(ctx, schoolID, toID)
	if err != nil {
		return t, dbErr("list class subjects", err)
	}
	for _, s := range src {
		t.srcCode[s.SubjectID] = s.SubjectCode
	}
	for _, s := range dst {
		t.dst[strings.ToUpper(s.SubjectCode)] = s
	}
	t.subjects = dst
	return t, nil
}

func (b *BulkManagementService) transferOne(ctx context.Context, p helperAuth.Principal, studentID, fromID, toID uuid.UUID, migrate bool, target transferTarget, info AuditInfo) (int, error) {
	moved := 0
	err := b.store.WithTx(ctx, func(tx repository.Store) error {
		moved = 0
		if err := tx.SetStudentClass(ctx, p.SchoolID, studentID, &toID); err != nil {
			return lookupErr("transfer student", "student", studentID, err)
		}
		if err := moveEnrollment(ctx, tx, p.SchoolID, studentID, toID, target.subjects); err != nil {
			return err
		}
		if !migrate {
			return nil
		}

		recs, err := tx.ListStudentRecords(ctx, p.SchoolID, studentID, fromID)
		if err != nil {
			return dbErr("list student records", err)
		}
		keys := map[repository.SummaryKey]bool{}
		audit := b.audit.With(tx)
		now := b.now().UTC()
		for i := range recs {
			rec := recs[i]
			sub, ok := target.counterpart(rec.AttendanceRecordSubjectID)
			if !ok {
				continue
			}
			before := rec
			keys[repository.SummaryKeyOf(before)] = true

			rec.AttendanceRecordClassID = toID
			rec.AttendanceRecordSubjectID = sub.SubjectID
			stampModified(&rec, p, now)
			if err := tx.SaveRecord(ctx, &rec); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					return &AlreadyMarkedError{
						StudentID: studentID.String(),
						Date:      dbtime.FormatDate(rec.AttendanceRecordDate),
						Session:   rec.AttendanceRecordSession,
					}
				}
				return dbErr("migrate attendance", err)
			}
			if _, err := audit.Record(ctx, AuditEntry{
				Action: model.AuditUpdate, Before: &before, After: &rec, Actor: p, Reason: "class transfer", Info: info,
			}); err != nil {
				return err
			}
			keys[repository.SummaryKeyOf(rec)] = true
			moved++
		}

		sum := b.summary.With(tx)
		for k := range keys {
			if _, err := sum.UpdateStudentSummary(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

// moveEnrollment: StudentSubject siswa hanya untuk classID; baris kelas lama dihapus.
func moveEnrollment(ctx context.Context, tx repository.Store, schoolID, studentID, classID uuid.UUID, subjects []acModel.SubjectModel) error {
	if _, err := tx.DropOtherClassSubjects(ctx, schoolID, studentID, classID); err != nil {
		return dbErr("drop old enrollment", err)
	}
	for _, sub := range subjects {
		if _, err := tx.EnsureStudentSubject(ctx, &acModel.StudentSubjectModel{
			StudentSubjectSchoolID:  schoolID,
			StudentSubjectStudentID: studentID,
			StudentSubjectSubjectID: sub.SubjectID,
			StudentSubjectClassID:   classID,
		}); err != nil {
			return dbErr("enroll subject", err)
		}
	}
	return nil
}

/* =========================================================
   JOB LOG
========================================================= */

// logJob: kegagalan log tidak menggagalkan operasi yang sudah di-commit.
func (b *BulkManagementService) logJob(ctx context.Context, job *model.BulkJobModel) *uuid.UUID {
	if err := b.store.CreateBulkJob(ctx, job); err != nil {
		log.Printf("[WARN] bulk %s: gagal mencatat job: %v", job.BulkJobKind, err)
		return nil
	}
	id := job.BulkJobID
	return &id
}

func (b *BulkManagementService) ListJobs(ctx context.Context, p helperAuth.Principal, limit int) ([]model.BulkJobModel, error) {
	if !p.IsAdmin() {
		return nil, forbidden("only school admins can read bulk jobs")
	}
	rows, err := b.store.ListBulkJobs(ctx, p.SchoolID, limit)
	if err != nil {
		return nil, dbErr("list bulk jobs", err)
	}
	if rows == nil {
		rows = []model.BulkJobModel{}
	}
	return rows, nil
}

func toStringArray(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
