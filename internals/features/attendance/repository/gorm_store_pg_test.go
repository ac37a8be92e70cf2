package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	database "sekolahku_backend/internals/databases"
	"sekolahku_backend/internals/features/attendance/model"
)

// Test integrasi Postgres; jalan hanya kalau TEST_DATABASE_URL di-set.
func newPgStore(t *testing.T) (*GormStore, uuid.UUID) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	school := uuid.New()
	t.Cleanup(func() {
		db.Where("attendance_record_school_id = ?", school).Delete(&model.AttendanceRecordModel{})
		db.Where("attendance_summary_school_id = ?", school).Delete(&model.AttendanceSummaryModel{})
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewGormStore(db), school
}

func containsKey(keys []SummaryKey, want SummaryKey) bool {
	for _, k := range keys {
		if k == want {
			return true
		}
	}
	return false
}

func TestGormConcurrentMarkKeepsOneRow(t *testing.T) {
	s, school := newPgStore(t)
	ctx := context.Background()
	student, class, subject := uuid.New(), uuid.New(), uuid.New()
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	statuses := []model.AttendanceStatus{
		model.AttendancePresent, model.AttendanceLate, model.AttendanceAbsent, model.AttendanceExcused,
	}

	var g errgroup.Group
	for _, st := range statuses {
		g.Go(func() error {
			return s.WithTx(ctx, func(tx Store) error {
				rec := newRecord(school, student, class, subject, d, "Lecture 1", st)
				inserted, err := tx.InsertRecordIfAbsent(ctx, rec)
				if err != nil || inserted {
					return err
				}
				cur, err := tx.FindRecordByKey(ctx, KeyOf(*rec))
				if err != nil {
					return err
				}
				locked, err := tx.LockRecord(ctx, school, cur.AttendanceRecordID)
				if err != nil {
					return err
				}
				locked.AttendanceRecordStatus = st
				return tx.SaveRecord(ctx, locked)
			})
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent mark: %v", err)
	}

	rows, total, err := s.ListRecords(ctx, RecordFilter{SchoolID: school}, ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("rows = %d, want exactly 1", total)
	}
	if !rows[0].AttendanceRecordStatus.Valid() {
		t.Fatalf("unexpected status %q", rows[0].AttendanceRecordStatus)
	}
}

func TestGormSaveRecordRekeyConflict(t *testing.T) {
	s, school := newPgStore(t)
	ctx := context.Background()
	student, class, subject := uuid.New(), uuid.New(), uuid.New()
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	a := newRecord(school, student, class, subject, d, "Lecture 1", model.AttendancePresent)
	b := newRecord(school, student, class, subject, d, "Lecture 2", model.AttendancePresent)
	for _, r := range []*model.AttendanceRecordModel{a, b} {
		if ok, err := s.InsertRecordIfAbsent(ctx, r); err != nil || !ok {
			t.Fatalf("insert: ok=%v err=%v", ok, err)
		}
	}

	b.AttendanceRecordSession = "Lecture 1"
	if err := s.SaveRecord(ctx, b); !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}

	a.AttendanceRecordStatus = model.AttendanceLate
	if err := s.SaveRecord(ctx, a); err != nil {
		t.Fatalf("saving the same row must not conflict with itself: %v", err)
	}
}

func TestGormStatusAggregates(t *testing.T) {
	s, school := newPgStore(t)
	ctx := context.Background()
	class, subject := uuid.New(), uuid.New()
	s1, s2, s3 := uuid.New(), uuid.New(), uuid.New()
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	recs := []*model.AttendanceRecordModel{
		newRecord(school, s1, class, subject, d, "Lecture 1", model.AttendancePresent),
		newRecord(school, s2, class, subject, d, "Lecture 1", model.AttendancePresent),
		newRecord(school, s3, class, subject, d, "Lecture 1", model.AttendanceAbsent),
		newRecord(school, s1, class, subject, d, "Lecture 2", model.AttendanceLate),
		newRecord(school, s1, class, subject, d.AddDate(0, 0, 1), "Lecture 1", model.AttendanceLate),
	}
	for _, r := range recs {
		if _, err := s.InsertRecordIfAbsent(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	groups, err := s.SessionStatusGroups(ctx, SessionKey{
		SchoolID: school, ClassID: class, SubjectID: subject, Date: d, Session: "lecture 1",
	})
	if err != nil {
		t.Fatal(err)
	}
	got := map[model.AttendanceStatus]map[uuid.UUID]bool{}
	for _, g := range groups {
		set := map[uuid.UUID]bool{}
		for _, id := range g.StudentIDs {
			set[id] = true
		}
		got[g.Status] = set
	}
	want := map[model.AttendanceStatus]map[uuid.UUID]bool{
		model.AttendancePresent: {s1: true, s2: true},
		model.AttendanceAbsent:  {s3: true},
	}
	if len(got) != len(want) {
		t.Fatalf("groups = %v, want %v", got, want)
	}
	for st, ids := range want {
		if len(got[st]) != len(ids) {
			t.Fatalf("%s: got %v, want %v", st, got[st], ids)
		}
		for id := range ids {
			if !got[st][id] {
				t.Fatalf("%s: missing %s", st, id)
			}
		}
	}

	key := SummaryKey{SchoolID: school, StudentID: s1, SubjectID: subject, ClassID: class}
	counts, err := s.CountStatuses(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if counts[model.AttendancePresent] != 1 || counts[model.AttendanceLate] != 2 || counts[model.AttendanceAbsent] != 0 {
		t.Fatalf("counts = %v", counts)
	}

	keys, err := s.ListRecordKeys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !containsKey(keys, key) {
		t.Fatalf("record keys missing %+v", key)
	}
}

func TestGormUpsertSummaryOverwrites(t *testing.T) {
	s, school := newPgStore(t)
	ctx := context.Background()
	student, class, subject := uuid.New(), uuid.New(), uuid.New()

	for i, present := range []int{1, 3} {
		err := s.UpsertSummary(ctx, &model.AttendanceSummaryModel{
			AttendanceSummarySchoolID:      school,
			AttendanceSummaryStudentID:     student,
			AttendanceSummarySubjectID:     subject,
			AttendanceSummaryClassID:       class,
			AttendanceSummaryTotalSessions: 4,
			AttendanceSummaryPresentCount:  present,
			AttendanceSummaryAbsentCount:   4 - present,
			AttendanceSummaryPercentage:    float64(present) * 25,
			AttendanceSummaryLastUpdated:   time.Now().Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("upsert #%d: %v", i+1, err)
		}
	}

	rows, err := s.ListSummaries(ctx, SummaryFilter{SchoolID: school})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("summaries = %d, want 1", len(rows))
	}
	if rows[0].AttendanceSummaryPresentCount != 3 || rows[0].AttendanceSummaryPercentage != 75 {
		t.Fatalf("summary not overwritten: %+v", rows[0])
	}

	keys, err := s.ListSummaryKeys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := SummaryKey{SchoolID: school, StudentID: student, SubjectID: subject, ClassID: class}
	if !containsKey(keys, want) {
		t.Fatalf("summary keys missing %+v", want)
	}
}
