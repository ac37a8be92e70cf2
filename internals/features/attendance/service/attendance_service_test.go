package service

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/dto"
	"sekolahku_backend/internals/features/attendance/model"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

var march1 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestBulkMarkThenSessionSummary(t *testing.T) {
	f := newFixture(t)

	res := f.mustMark(t, f.teacher, f.markReq("2024-03-01", "Lecture 1",
		entry(f.s1, "present"), entry(f.s2, "absent")))
	if res.SuccessCount != 2 || res.FailureCount != 0 {
		t.Fatalf("want 2/0, got %d/%d (%+v)", res.SuccessCount, res.FailureCount, res.Failed)
	}
	for _, s := range res.Successful {
		if s.Action != model.AuditCreate {
			t.Errorf("first mark should create, got %s", s.Action)
		}
	}

	sum, err := f.svc.GetSessionSummary(f.ctx, f.teacher, f.class, f.subject, "2024-03-01", "Lecture 1")
	if err != nil {
		t.Fatal(err)
	}
	if sum.Present != 1 || sum.Absent != 1 || sum.Late != 0 || sum.Excused != 0 || sum.Total != 2 {
		t.Fatalf("unexpected session summary %+v", sum)
	}
	if got := sum.Students["present"]; len(got) != 1 || got[0] != f.s1 {
		t.Fatalf("present list = %v", got)
	}
	if got := sum.Students["late"]; got == nil || len(got) != 0 {
		t.Fatalf("late list should be empty slice, got %v", got)
	}
}

func TestRemarkUpdatesSameRecord(t *testing.T) {
	f := newFixture(t)
	f.mustMark(t, f.teacher, f.markReq("2024-03-01", "Lecture 1", entry(f.s1, "present"), entry(f.s2, "absent")))
	first := f.record(t, f.s1, march1, "Lecture 1")

	res := f.mustMark(t, f.teacher, f.markReq("2024-03-01", "lecture 1", entry(f.s1, "absent")))
	if res.SuccessCount != 1 || res.Successful[0].Action != model.AuditUpdate {
		t.Fatalf("re-mark should update: %+v", res)
	}

	second := f.record(t, f.s1, march1, "Lecture 1")
	if second.AttendanceRecordID != first.AttendanceRecordID {
		t.Fatalf("record id changed: %s → %s", first.AttendanceRecordID, second.AttendanceRecordID)
	}
	if second.AttendanceRecordStatus != model.AttendanceAbsent {
		t.Fatalf("status = %s", second.AttendanceRecordStatus)
	}
	if second.AttendanceRecordLastModifiedBy == nil || *second.AttendanceRecordLastModifiedBy != f.teacher.ID {
		t.Fatal("lastModifiedBy not stamped")
	}
	if n := f.store.CountRecords(); n != 2 {
		t.Fatalf("records = %d, want 2", n)
	}

	trail, err := f.svc.AuditTrail(f.ctx, f.teacher, first.AttendanceRecordID)
	if err != nil {
		t.Fatal(err)
	}
	if len(trail) != 2 || trail[0].AttendanceAuditLogAction != model.AuditUpdate || trail[1].AttendanceAuditLogAction != model.AuditCreate {
		t.Fatalf("audit trail = %+v", trail)
	}
	if trail[0].AttendanceAuditLogOldValues["status"] != "present" || trail[0].AttendanceAuditLogNewValues["status"] != "absent" {
		t.Fatalf("update audit values: old=%v new=%v", trail[0].AttendanceAuditLogOldValues, trail[0].AttendanceAuditLogNewValues)
	}

	sm := f.summary(t, f.s1)
	if sm.AttendanceSummaryPresentCount != 0 || sm.AttendanceSummaryAbsentCount != 1 || sm.AttendanceSummaryTotalSessions != 1 {
		t.Fatalf("summary not recomputed: %+v", sm)
	}
}

func TestBulkMarkPartialFailure(t *testing.T) {
	f := newFixture(t)
	res := f.mustMark(t, f.teacher, f.markReq("2024-03-01", "Lecture 2",
		entry(f.s1, "present"), entry(f.s3, "present"), entry(f.s2, "late")))

	if res.SuccessCount != 2 || res.FailureCount != 1 {
		t.Fatalf("want 2/1, got %d/%d", res.SuccessCount, res.FailureCount)
	}
	if res.Failed[0].StudentID != f.s3.String() {
		t.Fatalf("wrong failed student %+v", res.Failed[0])
	}
	if n := f.store.CountRecords(); n != 2 {
		t.Fatalf("records = %d, want 2", n)
	}
}

func TestBulkMarkPerItemInputErrors(t *testing.T) {
	f := newFixture(t)
	res := f.mustMark(t, f.teacher, f.markReq("2024-03-01", "Lecture 1",
		entry(f.s1, "present"),
		dto.StudentAttendanceEntry{StudentID: "not-a-uuid", Status: "present"},
		entry(f.s2, "sleeping"),
		entry(f.s1, "absent"),
	))
	if res.SuccessCount != 1 || res.FailureCount != 3 {
		t.Fatalf("want 1/3, got %d/%d (%+v)", res.SuccessCount, res.FailureCount, res.Failed)
	}
	if !strings.Contains(res.Failed[2].Error, "more than once") {
		t.Fatalf("duplicate entry error = %q", res.Failed[2].Error)
	}
}

func TestBulkMarkBatchLevelGates(t *testing.T) {
	f := newFixture(t)

	t.Run("unassigned teacher", func(t *testing.T) {
		_, err := f.svc.BulkMarkAttendance(f.ctx, f.outsider, f.markReq("2024-03-01", "Lecture 1", entry(f.s1, "present")), AuditInfo{})
		assertErrAs[*AuthorizationError](t, err)
		if StatusCode(err) != fiber.StatusForbidden {
			t.Fatalf("status = %d", StatusCode(err))
		}
	})

	validation := []struct {
		name string
		req  dto.MarkAttendanceRequest
	}{
		{"unknown session", f.markReq("2024-03-01", "Lab 1", entry(f.s1, "present"))},
		{"session out of range", f.markReq("2024-03-01", "Lecture 3", entry(f.s1, "present"))},
		{"future date", f.markReq("2024-03-11", "Lecture 1", entry(f.s1, "present"))},
		{"bad date", f.markReq("01/03/2024", "Lecture 1", entry(f.s1, "present"))},
		{"empty batch", f.markReq("2024-03-01", "Lecture 1")},
	}
	for _, tt := range validation {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.BulkMarkAttendance(f.ctx, f.teacher, tt.req, AuditInfo{})
			assertErrAs[*ValidationError](t, err)
			if StatusCode(err) != fiber.StatusBadRequest {
				t.Fatalf("status = %d", StatusCode(err))
			}
		})
	}

	if n := f.store.CountRecords(); n != 0 {
		t.Fatalf("gated batches must not write, records = %d", n)
	}
	if n := f.store.CountAudits(); n != 0 {
		t.Fatalf("gated batches must not audit, audits = %d", n)
	}
}

func TestBulkMarkStudentPrincipalForbidden(t *testing.T) {
	f := newFixture(t)
	student := helperAuth.Student(f.s1, f.school)
	_, err := f.svc.BulkMarkAttendance(f.ctx, student, f.markReq("2024-03-01", "Lecture 1", entry(f.s1, "present")), AuditInfo{})
	assertErrAs[*AuthorizationError](t, err)
}

func TestBulkMarkBatchCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBatch = 1
	f := newFixtureWithConfig(t, cfg)
	_, err := f.svc.BulkMarkAttendance(f.ctx, f.teacher,
		f.markReq("2024-03-01", "Lecture 1", entry(f.s1, "present"), entry(f.s2, "present")), AuditInfo{})
	assertErrAs[*BulkOperationError](t, err)
}

func TestBulkMarkStrictOnce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrictOnce = true
	f := newFixtureWithConfig(t, cfg)

	f.mustMark(t, f.teacher, f.markReq("2024-03-01", "Lecture 1", entry(f.s1, "present")))
	res := f.mustMark(t, f.teacher, f.markReq("2024-03-01", "Lecture 1", entry(f.s1, "absent"), entry(f.s2, "present")))
	if res.SuccessCount != 1 || res.FailureCount != 1 {
		t.Fatalf("want 1/1, got %d/%d", res.SuccessCount, res.FailureCount)
	}
	if !strings.Contains(res.Failed[0].Error, "already marked") {
		t.Fatalf("error = %q", res.Failed[0].Error)
	}
	if got := f.record(t, f.s1, march1, "Lecture 1").AttendanceRecordStatus; got != model.AttendancePresent {
		t.Fatalf("strict-once must keep first status, got %s", got)
	}
}

func TestAdminMarksWithSubjectTeacher(t *testing.T) {
	f := newFixture(t)
	res := f.mustMark(t, f.admin, f.markReq("2024-03-01", "Lecture 1", entry(f.s1, "excused")))
	if res.SuccessCount != 1 {
		t.Fatalf("admin mark failed: %+v", res.Failed)
	}
	rec := f.record(t, f.s1, march1, "Lecture 1")
	if rec.AttendanceRecordTeacherID != f.teacher.ID {
		t.Fatalf("teacherId should default to subject teacher, got %s", rec.AttendanceRecordTeacherID)
	}
	if rec.AttendanceRecordMarkedBy != f.school || rec.AttendanceRecordMarkedByRole != "admin" {
		t.Fatalf("markedBy = %s/%s", rec.AttendanceRecordMarkedBy, rec.AttendanceRecordMarkedByRole)
	}

	outsider := f.outsider.ID.String()
	req := f.markReq("2024-03-01", "Lecture 2", entry(f.s1, "present"))
	req.TeacherID = &outsider
	_, err := f.svc.BulkMarkAttendance(f.ctx, f.admin, req, AuditInfo{})
	assertErrAs[*ValidationError](t, err)
}

func TestDeleteAttendance(t *testing.T) {
	f := newFixture(t)
	f.mustMark(t, f.teacher, f.markReq("2024-03-01", "Lecture 1", entry(f.s1, "present"), entry(f.s2, "absent")))
	rec := f.record(t, f.s1, march1, "Lecture 1")

	err := f.svc.DeleteAttendance(f.ctx, f.teacher, rec.AttendanceRecordID, "duplicate entry", AuditInfo{})
	assertErrAs[*AuthorizationError](t, err)

	err = f.svc.DeleteAttendance(f.ctx, f.admin, rec.AttendanceRecordID, "   ", AuditInfo{})
	assertErrAs[*ValidationError](t, err)

	err = f.svc.DeleteAttendance(f.ctx, f.admin, uuid.New(), "duplicate entry", AuditInfo{})
	assertErrAs[*NotFoundError](t, err)

	if err := f.svc.DeleteAttendance(f.ctx, f.admin, rec.AttendanceRecordID, "duplicate entry", AuditInfo{IPAddress: "10.0.0.1"}); err != nil {
		t.Fatal(err)
	}

	trail, err := f.svc.AuditTrail(f.ctx, f.admin, rec.AttendanceRecordID)
	if err != nil {
		t.Fatal(err)
	}
	del := trail[0]
	if del.AttendanceAuditLogAction != model.AuditDelete {
		t.Fatalf("newest audit should be delete, got %s", del.AttendanceAuditLogAction)
	}
	if del.AttendanceAuditLogNewValues != nil {
		t.Fatalf("newValues must be nil, got %v", del.AttendanceAuditLogNewValues)
	}
	if !reflect.DeepEqual(map[string]any(del.AttendanceAuditLogOldValues), rec.Snapshot()) {
		t.Fatalf("oldValues %v != record %v", del.AttendanceAuditLogOldValues, rec.Snapshot())
	}
	if del.AttendanceAuditLogReason == nil || *del.AttendanceAuditLogReason != "duplicate entry" {
		t.Fatal("reason not stored")
	}

	page, err := f.svc.GetAttendanceByFilters(f.ctx, f.admin, dto.AttendanceRecordQuery{ClassID: f.class.String()},
		helper.Params{Page: 1, PerPage: 25, SortBy: "date", SortOrder: "desc"})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range page.Records {
		if r.AttendanceRecordID == rec.AttendanceRecordID {
			t.Fatal("deleted record still listed")
		}
	}
	if page.Pagination.TotalRecords != 1 {
		t.Fatalf("total = %d", page.Pagination.TotalRecords)
	}

	sm := f.summary(t, f.s1)
	if sm.AttendanceSummaryTotalSessions != 0 || sm.AttendanceSummaryPercentage != 0 {
		t.Fatalf("summary after delete: %+v", sm)
	}
}

func TestUpdateAttendance(t *testing.T) {
	f := newFixture(t)
	f.mustMark(t, f.teacher, f.markReq("2024-03-01", "Lecture 1", entry(f.s1, "present")))
	f.mustMark(t, f.teacher, f.markReq("2024-03-01", "Lecture 2", entry(f.s1, "present")))
	rec := f.record(t, f.s1, march1, "Lecture 1")

	late := "late"
	reason := "datang jam 08.15"
	got, err := f.svc.UpdateAttendance(f.ctx, f.teacher, rec.AttendanceRecordID,
		dto.UpdateAttendanceRequest{Status: &late, Reason: &reason}, AuditInfo{})
	if err != nil {
		t.Fatal(err)
	}
	if got.AttendanceRecordStatus != model.AttendanceLate || got.AttendanceRecordID != rec.AttendanceRecordID {
		t.Fatalf("update result %+v", got)
	}
	sm := f.summary(t, f.s1)
	if sm.AttendanceSummaryLateCount != 1 || sm.AttendanceSummaryPresentCount != 1 || sm.AttendanceSummaryPercentage != 50 {
		t.Fatalf("summary after update: %+v", sm)
	}

	t.Run("outsider teacher", func(t *testing.T) {
		_, err := f.svc.UpdateAttendance(f.ctx, f.outsider, rec.AttendanceRecordID, dto.UpdateAttendanceRequest{Status: &late}, AuditInfo{})
		assertErrAs[*AuthorizationError](t, err)
	})
	t.Run("unknown session", func(t *testing.T) {
		bad := "Seminar 1"
		_, err := f.svc.UpdateAttendance(f.ctx, f.teacher, rec.AttendanceRecordID, dto.UpdateAttendanceRequest{Session: &bad}, AuditInfo{})
		assertErrAs[*ValidationError](t, err)
	})
	t.Run("natural key collision", func(t *testing.T) {
		other := "Lecture 2"
		_, err := f.svc.UpdateAttendance(f.ctx, f.teacher, rec.AttendanceRecordID, dto.UpdateAttendanceRequest{Session: &other}, AuditInfo{})
		assertErrAs[*AlreadyMarkedError](t, err)
		if StatusCode(err) != fiber.StatusConflict {
			t.Fatalf("status = %d", StatusCode(err))
		}
		if f.record(t, f.s1, march1, "Lecture 1").AttendanceRecordStatus != model.AttendanceLate {
			t.Fatal("failed update must roll back")
		}
	})
	t.Run("missing record", func(t *testing.T) {
		_, err := f.svc.UpdateAttendance(f.ctx, f.teacher, uuid.New(), dto.UpdateAttendanceRequest{Status: &late}, AuditInfo{})
		assertErrAs[*NotFoundError](t, err)
	})
	t.Run("empty patch", func(t *testing.T) {
		_, err := f.svc.UpdateAttendance(f.ctx, f.teacher, rec.AttendanceRecordID, dto.UpdateAttendanceRequest{}, AuditInfo{})
		assertErrAs[*ValidationError](t, err)
	})
}

func TestGetAttendanceByFilters(t *testing.T) {
	f := newFixture(t)
	for _, d := range []string{"2024-03-01", "2024-03-04", "2024-03-05"} {
		f.mustMark(t, f.teacher, f.markReq(d, "Lecture 1", entry(f.s1, "present"), entry(f.s2, "absent")))
	}
	page := helper.Params{Page: 1, PerPage: 2, SortBy: "date", SortOrder: "asc"}

	got, err := f.svc.GetAttendanceByFilters(f.ctx, f.admin, dto.AttendanceRecordQuery{
		StudentID: f.s1.String(), StartDate: "2024-03-02", Expand: true,
	}, page)
	if err != nil {
		t.Fatal(err)
	}
	if got.Pagination.TotalRecords != 2 || len(got.Records) != 2 || got.Pagination.HasNextPage {
		t.Fatalf("pagination %+v, records %d", got.Pagination, len(got.Records))
	}
	first := got.Records[0]
	if dateOf(first.AttendanceRecordDate) != "2024-03-04" {
		t.Fatalf("sort asc broken: %s", dateOf(first.AttendanceRecordDate))
	}
	if first.Student == nil || first.Student.Name != "Ani" || first.Subject == nil || first.Subject.Code != "MTK" ||
		first.Teacher == nil || first.Class == nil {
		t.Fatalf("expansion missing: %+v", first)
	}

	all, err := f.svc.GetAttendanceByFilters(f.ctx, f.admin, dto.AttendanceRecordQuery{Status: "absent"}, page)
	if err != nil {
		t.Fatal(err)
	}
	if all.Pagination.TotalRecords != 3 || all.Pagination.TotalPages != 2 || !all.Pagination.HasNextPage {
		t.Fatalf("status filter pagination %+v", all.Pagination)
	}
	if all.Records[0].Student != nil {
		t.Fatal("expansion must be opt-in")
	}

	// siswa dibatasi ke record miliknya
	studentP := helperAuth.Student(f.s2, f.school)
	own, err := f.svc.GetAttendanceByFilters(f.ctx, studentP, dto.AttendanceRecordQuery{}, helper.Params{Page: 1, PerPage: 50})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range own.Records {
		if r.AttendanceRecordStudentID != f.s2 {
			t.Fatal("student saw another student's record")
		}
	}
	_, err = f.svc.GetAttendanceByFilters(f.ctx, studentP, dto.AttendanceRecordQuery{StudentID: f.s1.String()}, page)
	assertErrAs[*AuthorizationError](t, err)

	_, err = f.svc.GetAttendanceByFilters(f.ctx, f.admin, dto.AttendanceRecordQuery{StartDate: "2024-03-05", EndDate: "2024-03-01"}, page)
	assertErrAs[*ValidationError](t, err)
}

func TestGetClassStudentsForAttendance(t *testing.T) {
	f := newFixture(t)
	got, err := f.svc.GetClassStudentsForAttendance(f.ctx, f.teacher, f.class, f.subject)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].StudentID != f.s1 || got[0].RollNum != 1 || got[1].Name != "Budi" {
		t.Fatalf("roster = %+v", got)
	}

	_, err = f.svc.GetClassStudentsForAttendance(f.ctx, f.outsider, f.class, f.subject)
	assertErrAs[*AuthorizationError](t, err)

	_, err = f.svc.GetClassStudentsForAttendance(f.ctx, f.teacher, uuid.New(), f.subject)
	assertErrAs[*NotFoundError](t, err)
}

func TestGetClassStudentsEmptyClass(t *testing.T) {
	f := newFixture(t)
	sub := uuid.New()
	f.store.PutSubject(acModelSubject(f, sub, f.class2))
	_, err := f.svc.GetClassStudentsForAttendance(f.ctx, f.admin, f.class2, sub)
	if err != nil {
		t.Fatalf("class2 has one student: %v", err)
	}

	empty := uuid.New()
	f.store.PutClass(acModelClass(f, empty))
	sub2 := uuid.New()
	f.store.PutSubject(acModelSubject(f, sub2, empty))
	_, err = f.svc.GetClassStudentsForAttendance(f.ctx, f.admin, empty, sub2)
	assertErrAs[*NotFoundError](t, err)
}

func TestSessionOptionsAndClassSummary(t *testing.T) {
	f := newFixture(t)
	opts, err := f.svc.GetSessionOptions(f.ctx, f.teacher, f.class, f.subject)
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) != 2 || opts[0].Value != "Lecture 1" || opts[1].Label != "Lecture 2" || opts[0].Duration != 90 {
		t.Fatalf("options = %+v", opts)
	}

	f.mustMark(t, f.teacher, f.markReq("2024-03-01", "Lecture 1", entry(f.s1, "present")))
	cs, err := f.svc.ClassSummary(f.ctx, f.teacher, f.class, f.subject)
	if err != nil {
		t.Fatal(err)
	}
	if len(cs.Students) != 2 {
		t.Fatalf("class summary rows = %d", len(cs.Students))
	}
	if cs.Students[0].StudentID != f.s1 || cs.Students[0].AttendancePercentage != 100 {
		t.Fatalf("row 0 = %+v", cs.Students[0])
	}
	if cs.Students[1].TotalSessions != 0 || cs.Students[1].LastUpdated != nil {
		t.Fatalf("student without records should be a zero row: %+v", cs.Students[1])
	}
}

func TestStudentSummariesOwnOnly(t *testing.T) {
	f := newFixture(t)
	f.mustMark(t, f.teacher, f.markReq("2024-03-01", "Lecture 1", entry(f.s1, "present"), entry(f.s2, "late")))

	studentP := helperAuth.Student(f.s1, f.school)
	rows, err := f.svc.StudentSummaries(f.ctx, studentP, f.s1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].SubjectCode != "MTK" || rows[0].AttendanceSummaryPresentCount != 1 {
		t.Fatalf("rows = %+v", rows)
	}
	_, err = f.svc.StudentSummaries(f.ctx, studentP, f.s2, nil)
	assertErrAs[*AuthorizationError](t, err)
}

func TestExportClassRecords(t *testing.T) {
	f := newFixture(t)
	f.mustMark(t, f.teacher, f.markReq("2024-03-04", "Lecture 1", entry(f.s2, "absent"), entry(f.s1, "present")))
	f.mustMark(t, f.admin, f.markReq("2024-03-01", "Lecture 1", entry(f.s1, "late")))

	rows, err := f.svc.ExportClassRecords(f.ctx, f.admin, f.class, f.subject, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if dateOf(rows[0].Date) != "2024-03-01" || rows[0].MarkedBy != "admin" {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	if rows[1].RollNum != 1 || rows[2].RollNum != 2 || rows[1].MarkedBy != "Bu Sari" {
		t.Fatalf("rows not ordered by roll within a session: %+v", rows[1:])
	}
}

func dateOf(t time.Time) string { return t.Format("2006-01-02") }
