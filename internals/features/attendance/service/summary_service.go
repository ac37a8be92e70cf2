// file: internals/features/attendance/service/summary_service.go
package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/dto"
	"sekolahku_backend/internals/features/attendance/model"
	"sekolahku_backend/internals/features/attendance/repository"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

// Counts: agregat status untuk satu SummaryKey.
type Counts struct {
	Total      int
	Present    int
	Absent     int
	Late       int
	Excused    int
	Percentage float64
}

// ComputeSummary: fungsi murni dari himpunan status.
// late & excused punya counter sendiri, tidak dilipat ke present.
func ComputeSummary(byStatus map[model.AttendanceStatus]int) Counts {
	c := Counts{
		Present: byStatus[model.AttendancePresent],
		Absent:  byStatus[model.AttendanceAbsent],
		Late:    byStatus[model.AttendanceLate],
		Excused: byStatus[model.AttendanceExcused],
	}
	c.Total = c.Present + c.Absent + c.Late + c.Excused
	if c.Total > 0 {
		c.Percentage = float64(c.Present) / float64(c.Total) * 100
	}
	return c
}

type SummaryService struct {
	store repository.Store
	now   func() time.Time
}

func NewSummaryService(store repository.Store) *SummaryService {
	return &SummaryService{store: store, now: time.Now}
}

func (s *SummaryService) With(store repository.Store) *SummaryService {
	cp := *s
	cp.store = store
	return &cp
}

// UpdateStudentSummary: baca ulang SEMUA record untuk key, hitung ulang, upsert.
func (s *SummaryService) UpdateStudentSummary(ctx context.Context, key repository.SummaryKey) (*model.AttendanceSummaryModel, error) {
	byStatus, err := s.store.CountStatuses(ctx, key)
	if err != nil {
		return nil, dbErr("count attendance", err)
	}
	c := ComputeSummary(byStatus)

	row := &model.AttendanceSummaryModel{
		AttendanceSummarySchoolID:      key.SchoolID,
		AttendanceSummaryStudentID:     key.StudentID,
		AttendanceSummarySubjectID:     key.SubjectID,
		AttendanceSummaryClassID:       key.ClassID,
		AttendanceSummaryTotalSessions: c.Total,
		AttendanceSummaryPresentCount:  c.Present,
		AttendanceSummaryAbsentCount:   c.Absent,
		AttendanceSummaryLateCount:     c.Late,
		AttendanceSummaryExcusedCount:  c.Excused,
		AttendanceSummaryPercentage:    c.Percentage,
		AttendanceSummaryLastUpdated:   s.now().UTC(),
	}
	if err := s.store.UpsertSummary(ctx, row); err != nil {
		return nil, dbErr("upsert summary", err)
	}
	return row, nil
}

// ReconcileAll: hitung ulang setiap key yang punya record atau baris summary.
// Idempoten karena recompute murni dari record.
func (s *SummaryService) ReconcileAll(ctx context.Context) (int, error) {
	fromRecords, err := s.store.ListRecordKeys(ctx)
	if err != nil {
		return 0, dbErr("list record keys", err)
	}
	fromSummaries, err := s.store.ListSummaryKeys(ctx)
	if err != nil {
		return 0, dbErr("list summary keys", err)
	}

	seen := make(map[repository.SummaryKey]bool, len(fromRecords)+len(fromSummaries))
	n := 0
	for _, k := range append(fromRecords, fromSummaries...) {
		if seen[k] {
			continue
		}
		seen[k] = true
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if _, err := s.UpdateStudentSummary(ctx, k); err != nil {
			log.Printf("[WARN] reconcile summary %s/%s/%s: %v", k.StudentID, k.SubjectID, k.ClassID, err)
			continue
		}
		n++
	}
	return n, nil
}

// StudentSummaries: baris per mapel untuk satu siswa.
// Siswa hanya boleh membaca miliknya sendiri.
func (s *SummaryService) StudentSummaries(ctx context.Context, p helperAuth.Principal, studentID uuid.UUID, subjectID *uuid.UUID) ([]dto.StudentSummaryView, error) {
	if p.IsStudent() && p.ID != studentID {
		return nil, forbidden("students can only read their own attendance")
	}
	if _, err := s.store.GetStudent(ctx, p.SchoolID, studentID); err != nil {
		return nil, lookupErr("load student", "student", studentID, err)
	}

	rows, err := s.store.ListSummaries(ctx, repository.SummaryFilter{
		SchoolID:  p.SchoolID,
		StudentID: &studentID,
		SubjectID: subjectID,
	})
	if err != nil {
		return nil, dbErr("list summaries", err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.AttendanceSummarySubjectID)
	}
	subjects, err := s.store.ListSubjectsByIDs(ctx, p.SchoolID, ids)
	if err != nil {
		return nil, dbErr("load subjects", err)
	}
	byID := make(map[uuid.UUID]int, len(subjects))
	for i, sub := range subjects {
		byID[sub.SubjectID] = i
	}

	out := make([]dto.StudentSummaryView, 0, len(rows))
	for _, r := range rows {
		v := dto.StudentSummaryView{AttendanceSummaryModel: r}
		if i, ok := byID[r.AttendanceSummarySubjectID]; ok {
			v.SubjectName = subjects[i].SubjectName
			v.SubjectCode = subjects[i].SubjectCode
		}
		out = append(out, v)
	}
	return out, nil
}

// ClassSummary: satu baris per siswa roster (urut roll), termasuk siswa tanpa record.
// Otorisasi dilakukan pemanggil.
func (s *SummaryService) ClassSummary(ctx context.Context, schoolID, classID, subjectID uuid.UUID) (*dto.ClassSummary, error) {
	roster, err := s.store.ListClassStudents(ctx, schoolID, classID)
	if err != nil {
		return nil, dbErr("list class students", err)
	}
	rows, err := s.store.ListSummaries(ctx, repository.SummaryFilter{
		SchoolID:  schoolID,
		ClassID:   &classID,
		SubjectID: &subjectID,
	})
	if err != nil {
		return nil, dbErr("list summaries", err)
	}
	byStudent := make(map[uuid.UUID]model.AttendanceSummaryModel, len(rows))
	for _, r := range rows {
		byStudent[r.AttendanceSummaryStudentID] = r
	}

	out := &dto.ClassSummary{ClassID: classID, SubjectID: subjectID, Students: make([]dto.ClassSummaryRow, 0, len(roster))}
	for _, st := range roster {
		row := dto.ClassSummaryRow{StudentID: st.StudentID, Name: st.StudentName, RollNum: st.StudentRollNum}
		if sm, ok := byStudent[st.StudentID]; ok {
			row.TotalSessions = sm.AttendanceSummaryTotalSessions
			row.PresentCount = sm.AttendanceSummaryPresentCount
			row.AbsentCount = sm.AttendanceSummaryAbsentCount
			row.LateCount = sm.AttendanceSummaryLateCount
			row.ExcusedCount = sm.AttendanceSummaryExcusedCount
			row.AttendancePercentage = sm.AttendanceSummaryPercentage
			lu := sm.AttendanceSummaryLastUpdated
			row.LastUpdated = &lu
		}
		out.Students = append(out.Students, row)
	}
	return out, nil
}
