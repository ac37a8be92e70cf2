package service

import (
	"testing"

	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/dto"
	"sekolahku_backend/internals/features/attendance/model"
	"sekolahku_backend/internals/features/attendance/repository"
	acModel "sekolahku_backend/internals/features/school/academics/model"
)

type bulkFixture struct {
	*fixture
	bulk *BulkManagementService
	s4   uuid.UUID // belum punya kelas
	sub2 uuid.UUID // MTK di class2
}

func newBulkFixture(t *testing.T) *bulkFixture {
	f := newFixture(t)
	b := &bulkFixture{fixture: f, s4: uuid.New(), sub2: uuid.New()}
	f.store.PutStudent(acModel.StudentModel{StudentID: b.s4, StudentSchoolID: f.school, StudentName: "Dewi", StudentRollNum: 4, StudentCode: "24-ipa-201"})
	f.store.PutSubject(acModel.SubjectModel{
		SubjectID: b.sub2, SubjectSchoolID: f.school, SubjectClassID: f.class2,
		SubjectName: "Matematika", SubjectCode: "mtk",
	})
	b.bulk = NewBulkManagementService(f.store, f.svc.Summaries(), NewAuditService(f.store))
	return b
}

func (b *bulkFixture) classOf(t *testing.T, id uuid.UUID) *uuid.UUID {
	t.Helper()
	st, err := b.store.GetStudent(b.ctx, b.school, id)
	if err != nil {
		t.Fatal(err)
	}
	return st.StudentClassID
}

func TestMatchCode(t *testing.T) {
	tests := []struct {
		pattern, code string
		want          bool
	}{
		{"24-IPA-*", "24-ipa-001", true},
		{"24-IPA-00?", "24-IPA-001", true},
		{"24-IPA-00?", "24-IPA-0010", false},
		{"24-IPA-[0-1]*", "24-IPA-101", true},
		{"24-IPA-[0-1]*", "24-IPA-201", false},
		{"25-*", "24-IPA-001", false},
	}
	for _, tt := range tests {
		if got := MatchCode(tt.pattern, tt.code); got != tt.want {
			t.Errorf("MatchCode(%q, %q) = %v, want %v", tt.pattern, tt.code, got, tt.want)
		}
	}
}

func TestNormalizePatternRejects(t *testing.T) {
	for _, raw := range []string{"", "   ", "24/IPA/*", "24-IPA-["} {
		if _, err := normalizePattern(raw); err == nil {
			t.Errorf("pattern %q should be rejected", raw)
		}
	}
	got, err := normalizePattern("  24-ipa-* ")
	if err != nil || got != "24-IPA-*" {
		t.Fatalf("normalize = %q, %v", got, err)
	}
}

func TestValidatePatternPreview(t *testing.T) {
	b := newBulkFixture(t)
	prev, err := b.bulk.ValidatePattern(b.ctx, b.admin, dto.ValidatePatternRequest{Pattern: "24-ipa-*", ClassID: b.class.String()})
	if err != nil {
		t.Fatal(err)
	}
	if prev.MatchCount != 4 || len(prev.Matched) != 4 {
		t.Fatalf("matched %d, want 4", prev.MatchCount)
	}
	reasons := map[uuid.UUID]string{}
	for _, c := range prev.Conflicts {
		reasons[c.StudentID] = c.Reason
	}
	if reasons[b.s1] != dto.ConflictAlreadyInClass || reasons[b.s3] != dto.ConflictInOtherClass {
		t.Fatalf("conflicts = %v", reasons)
	}
	if _, ok := reasons[b.s4]; ok {
		t.Fatal("unassigned student is not a conflict")
	}

	_, err = b.bulk.ValidatePattern(b.ctx, b.teacher, dto.ValidatePatternRequest{Pattern: "*", ClassID: b.class.String()})
	assertErrAs[*AuthorizationError](t, err)

	_, err = b.bulk.ValidatePattern(b.ctx, b.admin, dto.ValidatePatternRequest{
		Pattern: "*", ClassID: b.class.String(), SubjectIDs: []string{b.sub2.String()},
	})
	assertErrAs[*ValidationError](t, err)
}

func TestAssignStudents(t *testing.T) {
	b := newBulkFixture(t)
	req := dto.AssignStudentsRequest{ValidatePatternRequest: dto.ValidatePatternRequest{Pattern: "24-IPA-*", ClassID: b.class.String()}}

	// tanpa confirm: preview saja
	res, err := b.bulk.AssignStudents(b.ctx, b.admin, req)
	if err != nil {
		t.Fatal(err)
	}
	if res.Committed || res.Preview == nil || res.Preview.MatchCount != 4 {
		t.Fatalf("preview result %+v", res)
	}
	if b.classOf(t, b.s4) != nil {
		t.Fatal("preview must not write")
	}

	req.Confirm = true
	res, err = b.bulk.AssignStudents(b.ctx, b.admin, req)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Committed || res.SuccessCount != 3 || res.FailureCount != 0 || len(res.Skipped) != 1 || res.Skipped[0].StudentID != b.s3 {
		t.Fatalf("commit result %+v", res)
	}
	if c := b.classOf(t, b.s4); c == nil || *c != b.class {
		t.Fatal("s4 not assigned")
	}
	if c := b.classOf(t, b.s3); c == nil || *c != b.class2 {
		t.Fatal("s3 moved without override")
	}
	if got := b.store.ListEnrollments(b.s4); len(got) != 1 || got[0].StudentSubjectSubjectID != b.subject {
		t.Fatalf("enrollments = %+v", got)
	}
	if res.JobID == nil {
		t.Fatal("job not logged")
	}

	// ulang: enrollment idempoten
	if _, err := b.bulk.AssignStudents(b.ctx, b.admin, req); err != nil {
		t.Fatal(err)
	}
	if got := b.store.ListEnrollments(b.s4); len(got) != 1 {
		t.Fatalf("enrollment duplicated: %d", len(got))
	}

	req.OverrideConflicts = true
	res, err = b.bulk.AssignStudents(b.ctx, b.admin, req)
	if err != nil {
		t.Fatal(err)
	}
	if res.SuccessCount != 4 || len(res.Skipped) != 0 {
		t.Fatalf("override result %+v", res)
	}
	if c := b.classOf(t, b.s3); c == nil || *c != b.class {
		t.Fatal("override did not move s3")
	}

	jobs, err := b.bulk.ListJobs(b.ctx, b.admin, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 3 || jobs[0].BulkJobKind != model.BulkJobAssign {
		t.Fatalf("jobs = %d", len(jobs))
	}
}

func TestAssignStudentsNoMatch(t *testing.T) {
	b := newBulkFixture(t)
	_, err := b.bulk.AssignStudents(b.ctx, b.admin, dto.AssignStudentsRequest{
		ValidatePatternRequest: dto.ValidatePatternRequest{Pattern: "99-*", ClassID: b.class.String()},
		Confirm:                true,
	})
	assertErrAs[*BulkOperationError](t, err)
}

func (b *bulkFixture) transferReq(confirm bool, ids ...uuid.UUID) dto.TransferStudentsRequest {
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}
	return dto.TransferStudentsRequest{
		StudentIDs: raw, FromClassID: b.class.String(), ToClassID: b.class2.String(),
		MigrateRecords: true, Confirm: confirm,
	}
}

func TestTransferStudentsMigratesRecords(t *testing.T) {
	b := newBulkFixture(t)
	b.mustMark(t, b.teacher, b.markReq("2024-03-01", "Lecture 1", entry(b.s1, "present"), entry(b.s2, "absent")))

	prev, err := b.bulk.TransferStudents(b.ctx, b.admin, b.transferReq(false, b.s1, b.s3), AuditInfo{})
	if err != nil {
		t.Fatal(err)
	}
	if prev.Committed || len(prev.Preview) != 1 || prev.Preview[0].Records != 1 || prev.Preview[0].MigratableRecs != 1 {
		t.Fatalf("preview %+v", prev)
	}
	if len(prev.Conflicts) != 1 || prev.Conflicts[0].Reason != dto.ConflictNotInSource {
		t.Fatalf("conflicts %+v", prev.Conflicts)
	}

	res, err := b.bulk.TransferStudents(b.ctx, b.admin, b.transferReq(true, b.s1, b.s3), AuditInfo{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Committed || res.SuccessCount != 1 || res.FailureCount != 1 || res.MigratedRecs != 1 {
		t.Fatalf("transfer result %+v", res)
	}
	if c := b.classOf(t, b.s1); c == nil || *c != b.class2 {
		t.Fatal("s1 not moved")
	}

	moved, err := b.store.FindRecordByKey(b.ctx, repository.RecordKey{
		StudentID: b.s1, ClassID: b.class2, SubjectID: b.sub2, Date: march1, Session: "Lecture 1",
	})
	if err != nil {
		t.Fatalf("migrated record not found: %v", err)
	}
	trail, err := b.svc.AuditTrail(b.ctx, b.admin, moved.AttendanceRecordID)
	if err != nil {
		t.Fatal(err)
	}
	if r := trail[0].AttendanceAuditLogReason; r == nil || *r != "class transfer" {
		t.Fatalf("transfer audit = %+v", trail[0])
	}

	if sm := b.summary(t, b.s1); sm.AttendanceSummaryTotalSessions != 0 {
		t.Fatalf("old summary should be zero: %+v", sm)
	}
	rows, err := b.store.ListSummaries(b.ctx, repository.SummaryFilter{SchoolID: b.school, StudentID: &b.s1, SubjectID: &b.sub2})
	if err != nil || len(rows) != 1 || rows[0].AttendanceSummaryPresentCount != 1 {
		t.Fatalf("new summary rows=%+v err=%v", rows, err)
	}
}

func TestTransferStudentsCollisionRollsBack(t *testing.T) {
	b := newBulkFixture(t)
	b.mustMark(t, b.teacher, b.markReq("2024-03-01", "Lecture 1", entry(b.s1, "present")))

	// baris tujuan dengan natural key yang sama sudah ada
	if _, err := b.store.InsertRecordIfAbsent(b.ctx, &model.AttendanceRecordModel{
		AttendanceRecordSchoolID:  b.school,
		AttendanceRecordStudentID: b.s1,
		AttendanceRecordClassID:   b.class2,
		AttendanceRecordSubjectID: b.sub2,
		AttendanceRecordDate:      march1,
		AttendanceRecordSession:   "Lecture 1",
		AttendanceRecordStatus:    model.AttendanceAbsent,
	}); err != nil {
		t.Fatal(err)
	}
	audits := b.store.CountAudits()

	res, err := b.bulk.TransferStudents(b.ctx, b.admin, b.transferReq(true, b.s1), AuditInfo{})
	if err != nil {
		t.Fatal(err)
	}
	if res.SuccessCount != 0 || res.FailureCount != 1 {
		t.Fatalf("want collision failure, got %+v", res)
	}
	if c := b.classOf(t, b.s1); c == nil || *c != b.class {
		t.Fatal("failed transfer must leave student in source class")
	}
	if b.record(t, b.s1, march1, "Lecture 1").AttendanceRecordStatus != model.AttendancePresent {
		t.Fatal("source record changed")
	}
	if b.store.CountAudits() != audits {
		t.Fatal("rolled back transfer left audit rows")
	}
}

func TestTransferStudentsValidation(t *testing.T) {
	b := newBulkFixture(t)

	same := b.transferReq(true, b.s1)
	same.ToClassID = b.class.String()
	_, err := b.bulk.TransferStudents(b.ctx, b.admin, same, AuditInfo{})
	assertErrAs[*ValidationError](t, err)

	_, err = b.bulk.TransferStudents(b.ctx, b.teacher, b.transferReq(true, b.s1), AuditInfo{})
	assertErrAs[*AuthorizationError](t, err)

	_, err = b.bulk.TransferStudents(b.ctx, b.admin, b.transferReq(true, b.s3), AuditInfo{})
	assertErrAs[*BulkOperationError](t, err)
}

func (b *bulkFixture) enroll(t *testing.T, studentID, subjectID, classID uuid.UUID) {
	t.Helper()
	if _, err := b.store.EnsureStudentSubject(b.ctx, &acModel.StudentSubjectModel{
		StudentSubjectSchoolID: b.school, StudentSubjectStudentID: studentID,
		StudentSubjectSubjectID: subjectID, StudentSubjectClassID: classID,
	}); err != nil {
		t.Fatal(err)
	}
}

func (b *bulkFixture) assertOnlyEnrolled(t *testing.T, studentID, subjectID, classID uuid.UUID) {
	t.Helper()
	got := b.store.ListEnrollments(studentID)
	if len(got) != 1 || got[0].StudentSubjectSubjectID != subjectID || got[0].StudentSubjectClassID != classID {
		t.Fatalf("enrollments = %+v, want only %s in class %s", got, subjectID, classID)
	}
}

func TestTransferWithoutMigrationMovesEnrollment(t *testing.T) {
	b := newBulkFixture(t)
	b.enroll(t, b.s1, b.subject, b.class)
	b.mustMark(t, b.teacher, b.markReq("2024-03-01", "Lecture 1", entry(b.s1, "present")))

	req := b.transferReq(true, b.s1)
	req.MigrateRecords = false
	res, err := b.bulk.TransferStudents(b.ctx, b.admin, req, AuditInfo{})
	if err != nil {
		t.Fatal(err)
	}
	if res.SuccessCount != 1 || res.MigratedRecs != 0 {
		t.Fatalf("transfer result %+v", res)
	}
	b.assertOnlyEnrolled(t, b.s1, b.sub2, b.class2)

	// record lama tetap di kelas asal
	if b.record(t, b.s1, march1, "Lecture 1").AttendanceRecordClassID != b.class {
		t.Fatal("record moved without migrateRecords")
	}
}

func TestTransferWithMigrationMovesEnrollment(t *testing.T) {
	b := newBulkFixture(t)
	b.enroll(t, b.s1, b.subject, b.class)

	if _, err := b.bulk.TransferStudents(b.ctx, b.admin, b.transferReq(true, b.s1), AuditInfo{}); err != nil {
		t.Fatal(err)
	}
	b.assertOnlyEnrolled(t, b.s1, b.sub2, b.class2)
}

func TestAssignOverrideDropsOldClassEnrollment(t *testing.T) {
	b := newBulkFixture(t)
	b.enroll(t, b.s3, b.sub2, b.class2)

	res, err := b.bulk.AssignStudents(b.ctx, b.admin, dto.AssignStudentsRequest{
		ValidatePatternRequest: dto.ValidatePatternRequest{Pattern: "24-IPA-101", ClassID: b.class.String()},
		Confirm:                true,
		OverrideConflicts:      true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.SuccessCount != 1 {
		t.Fatalf("assign result %+v", res)
	}
	b.assertOnlyEnrolled(t, b.s3, b.subject, b.class)
}
