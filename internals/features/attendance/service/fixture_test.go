package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/dto"
	"sekolahku_backend/internals/features/attendance/model"
	"sekolahku_backend/internals/features/attendance/repository"
	acModel "sekolahku_backend/internals/features/school/academics/model"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

var fixedNow = time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC)

type fixture struct {
	ctx     context.Context
	store   *repository.MemoryStore
	svc     *AttendanceService
	school  uuid.UUID
	class   uuid.UUID
	class2  uuid.UUID
	subject uuid.UUID
	s1, s2  uuid.UUID
	s3      uuid.UUID // di kelas lain

	admin    helperAuth.Principal
	teacher  helperAuth.Principal
	outsider helperAuth.Principal // guru tanpa penugasan
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithConfig(t, DefaultConfig())
}

func newFixtureWithConfig(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		ctx:     context.Background(),
		store:   repository.NewMemoryStore(),
		school:  uuid.New(),
		class:   uuid.New(),
		class2:  uuid.New(),
		subject: uuid.New(),
		s1:      uuid.New(),
		s2:      uuid.New(),
		s3:      uuid.New(),
	}
	teacherID, outsiderID := uuid.New(), uuid.New()

	f.store.PutSchool(acModel.SchoolModel{SchoolID: f.school, SchoolName: "SMA Harapan"})
	f.store.PutClass(acModel.ClassModel{ClassID: f.class, ClassSchoolID: f.school, ClassName: "X IPA 1"})
	f.store.PutClass(acModel.ClassModel{ClassID: f.class2, ClassSchoolID: f.school, ClassName: "X IPA 2"})
	f.store.PutSubject(acModel.SubjectModel{
		SubjectID: f.subject, SubjectSchoolID: f.school, SubjectClassID: f.class,
		SubjectName: "Matematika", SubjectCode: "MTK", SubjectTeacherID: &teacherID,
	})
	f.store.PutTeacher(acModel.TeacherModel{TeacherID: teacherID, TeacherSchoolID: f.school, TeacherName: "Bu Sari"})
	f.store.PutTeacher(acModel.TeacherModel{TeacherID: outsiderID, TeacherSchoolID: f.school, TeacherName: "Pak Budi"})
	f.store.PutAssignment(acModel.TeacherAssignmentModel{
		TeacherAssignmentSchoolID: f.school, TeacherAssignmentTeacherID: teacherID,
		TeacherAssignmentClassID: f.class, TeacherAssignmentSubjectID: f.subject,
	})

	classID, class2ID := f.class, f.class2
	f.store.PutStudent(acModel.StudentModel{StudentID: f.s2, StudentSchoolID: f.school, StudentClassID: &classID, StudentName: "Budi", StudentRollNum: 2, StudentCode: "24-IPA-002"})
	f.store.PutStudent(acModel.StudentModel{StudentID: f.s1, StudentSchoolID: f.school, StudentClassID: &classID, StudentName: "Ani", StudentRollNum: 1, StudentCode: "24-IPA-001"})
	f.store.PutStudent(acModel.StudentModel{StudentID: f.s3, StudentSchoolID: f.school, StudentClassID: &class2ID, StudentName: "Citra", StudentRollNum: 1, StudentCode: "24-IPA-101"})

	if err := f.store.CreateSessionConfig(f.ctx, &model.SessionConfigurationModel{
		SessionConfigurationSchoolID:        f.school,
		SessionConfigurationClassID:         f.class,
		SessionConfigurationSubjectID:       f.subject,
		SessionConfigurationType:            model.SessionLecture,
		SessionConfigurationSessionsPerWeek: 2,
		SessionConfigurationDuration:        90,
		SessionConfigurationIsActive:        true,
	}); err != nil {
		t.Fatalf("seed session config: %v", err)
	}

	f.admin = helperAuth.Admin(f.school)
	f.teacher = helperAuth.Teacher(teacherID, f.school)
	f.outsider = helperAuth.Teacher(outsiderID, f.school)
	f.svc = NewAttendanceService(f.store, cfg).WithClock(func() time.Time { return fixedNow })
	return f
}

func (f *fixture) markReq(date, session string, entries ...dto.StudentAttendanceEntry) dto.MarkAttendanceRequest {
	return dto.MarkAttendanceRequest{
		ClassID:           f.class.String(),
		SubjectID:         f.subject.String(),
		Date:              date,
		Session:           session,
		StudentAttendance: entries,
	}
}

func entry(id uuid.UUID, status string) dto.StudentAttendanceEntry {
	return dto.StudentAttendanceEntry{StudentID: id.String(), Status: status}
}

func (f *fixture) mustMark(t *testing.T, p helperAuth.Principal, req dto.MarkAttendanceRequest) *dto.BulkMarkResult {
	t.Helper()
	res, err := f.svc.BulkMarkAttendance(f.ctx, p, req, AuditInfo{IPAddress: "127.0.0.1", UserAgent: "test"})
	if err != nil {
		t.Fatalf("BulkMarkAttendance: %v", err)
	}
	return res
}

func (f *fixture) record(t *testing.T, student uuid.UUID, date time.Time, session string) *model.AttendanceRecordModel {
	t.Helper()
	rec, err := f.store.FindRecordByKey(f.ctx, repository.RecordKey{
		StudentID: student, ClassID: f.class, SubjectID: f.subject, Date: date, Session: session,
	})
	if err != nil {
		t.Fatalf("find record for %s: %v", student, err)
	}
	return rec
}

func (f *fixture) summary(t *testing.T, student uuid.UUID) model.AttendanceSummaryModel {
	t.Helper()
	rows, err := f.store.ListSummaries(f.ctx, repository.SummaryFilter{SchoolID: f.school, StudentID: &student, SubjectID: &f.subject})
	if err != nil || len(rows) != 1 {
		t.Fatalf("summary for %s: rows=%d err=%v", student, len(rows), err)
	}
	return rows[0]
}

func assertErrAs[T error](t *testing.T, err error) T {
	t.Helper()
	var target T
	if !errors.As(err, &target) {
		t.Fatalf("expected %T, got %v", target, err)
	}
	return target
}

func acModelClass(f *fixture, id uuid.UUID) acModel.ClassModel {
	return acModel.ClassModel{ClassID: id, ClassSchoolID: f.school, ClassName: "Kosong"}
}

func acModelSubject(f *fixture, id, classID uuid.UUID) acModel.SubjectModel {
	return acModel.SubjectModel{SubjectID: id, SubjectSchoolID: f.school, SubjectClassID: classID, SubjectName: "Fisika", SubjectCode: "FIS"}
}
