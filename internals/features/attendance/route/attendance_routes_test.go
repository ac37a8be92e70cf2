package route

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/model"
	"sekolahku_backend/internals/features/attendance/repository"
	"sekolahku_backend/internals/features/attendance/service"
	acModel "sekolahku_backend/internals/features/school/academics/model"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"
	"sekolahku_backend/internals/helpers/dbtime"
)

type apiEnv struct {
	app     *fiber.App
	store   *repository.MemoryStore
	school  uuid.UUID
	class   uuid.UUID
	subject uuid.UUID
	s1, s2  uuid.UUID
	as      map[string]helperAuth.Principal
	today   string
}

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"error_code"`
	Data      json.RawMessage `json:"data"`
	Errors    json.RawMessage `json:"errors"`
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	e := &apiEnv{
		store:   repository.NewMemoryStore(),
		school:  uuid.New(),
		class:   uuid.New(),
		subject: uuid.New(),
		s1:      uuid.New(),
		s2:      uuid.New(),
	}
	teacher, outsider := uuid.New(), uuid.New()
	classID := e.class

	e.store.PutSchool(acModel.SchoolModel{SchoolID: e.school, SchoolName: "SMP Nusantara"})
	e.store.PutClass(acModel.ClassModel{ClassID: e.class, ClassSchoolID: e.school, ClassName: "VII A"})
	e.store.PutSubject(acModel.SubjectModel{SubjectID: e.subject, SubjectSchoolID: e.school, SubjectClassID: e.class, SubjectName: "IPA", SubjectCode: "IPA", SubjectTeacherID: &teacher})
	e.store.PutTeacher(acModel.TeacherModel{TeacherID: teacher, TeacherSchoolID: e.school, TeacherName: "Pak Joko"})
	e.store.PutTeacher(acModel.TeacherModel{TeacherID: outsider, TeacherSchoolID: e.school, TeacherName: "Bu Rina"})
	e.store.PutAssignment(acModel.TeacherAssignmentModel{TeacherAssignmentSchoolID: e.school, TeacherAssignmentTeacherID: teacher, TeacherAssignmentClassID: e.class, TeacherAssignmentSubjectID: e.subject})
	e.store.PutStudent(acModel.StudentModel{StudentID: e.s1, StudentSchoolID: e.school, StudentClassID: &classID, StudentName: "Andi", StudentRollNum: 1, StudentCode: "25-7A-01"})
	e.store.PutStudent(acModel.StudentModel{StudentID: e.s2, StudentSchoolID: e.school, StudentClassID: &classID, StudentName: "Bela", StudentRollNum: 2, StudentCode: "25-7A-02"})
	if err := e.store.CreateSessionConfig(t.Context(), &model.SessionConfigurationModel{
		SessionConfigurationSchoolID: e.school, SessionConfigurationClassID: e.class, SessionConfigurationSubjectID: e.subject,
		SessionConfigurationType: model.SessionLecture, SessionConfigurationSessionsPerWeek: 2,
		SessionConfigurationDuration: 45, SessionConfigurationIsActive: true,
	}); err != nil {
		t.Fatal(err)
	}

	e.as = map[string]helperAuth.Principal{
		"admin":    helperAuth.Admin(e.school),
		"teacher":  helperAuth.Teacher(teacher, e.school),
		"outsider": helperAuth.Teacher(outsider, e.school),
		"s1":       helperAuth.Student(e.s1, e.school),
	}

	cfg := service.DefaultConfig()
	cfg.MaxBatch = 3
	e.today = dbtime.FormatDate(dbtime.TodayIn(cfg.Location, time.Now()))

	e.app = fiber.New(fiber.Config{ErrorHandler: helper.FiberErrorHandler})
	api := e.app.Group("/api", func(c *fiber.Ctx) error {
		// pengganti AuthJWT di test: principal dari header
		if p, ok := e.as[c.Get("X-Test-As")]; ok {
			helperAuth.SetPrincipal(c, p)
		}
		return c.Next()
	})
	AttendanceRoutes(api, e.store, cfg)
	return e
}

func (e *apiEnv) do(t *testing.T, method, path, as string, body any) (*http.Response, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if as != "" {
		req.Header.Set("X-Test-As", as)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	var env envelope
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return resp, env
}

func (e *apiEnv) markBody(session string, entries ...map[string]string) map[string]any {
	return map[string]any{
		"classId":           e.class.String(),
		"subjectId":         e.subject.String(),
		"date":              e.today,
		"session":           session,
		"studentAttendance": entries,
	}
}

func mark(id uuid.UUID, status string) map[string]string {
	return map[string]string{"studentId": id.String(), "status": status}
}

func TestMarkEndpoint(t *testing.T) {
	e := newAPIEnv(t)

	resp, env := e.do(t, http.MethodPost, "/api/attendance/mark", "teacher", e.markBody("Lecture 1", mark(e.s1, "present"), mark(e.s2, "absent")))
	if resp.StatusCode != fiber.StatusOK || !env.Success {
		t.Fatalf("status=%d env=%+v", resp.StatusCode, env)
	}
	var res struct {
		SuccessCount int `json:"successCount"`
		FailureCount int `json:"failureCount"`
	}
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatal(err)
	}
	if res.SuccessCount != 2 || res.FailureCount != 0 {
		t.Fatalf("result %+v", res)
	}

	tests := []struct {
		name   string
		as     string
		body   any
		status int
		code   string
	}{
		{"no principal", "", e.markBody("Lecture 1", mark(e.s1, "present")), fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"student", "s1", e.markBody("Lecture 1", mark(e.s1, "present")), fiber.StatusForbidden, "FORBIDDEN"},
		{"unassigned teacher", "outsider", e.markBody("Lecture 1", mark(e.s1, "present")), fiber.StatusForbidden, "FORBIDDEN"},
		{"unknown session", "teacher", e.markBody("Seminar 1", mark(e.s1, "present")), fiber.StatusBadRequest, "BAD_REQUEST"},
		{"missing classId", "teacher", map[string]any{"subjectId": e.subject.String(), "date": e.today, "session": "Lecture 1", "studentAttendance": []any{mark(e.s1, "present")}}, fiber.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"batch too large", "teacher", e.markBody("Lecture 1", mark(e.s1, "present"), mark(e.s2, "present"), mark(uuid.New(), "present"), mark(uuid.New(), "present")), fiber.StatusBadRequest, "BAD_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := e.do(t, http.MethodPost, "/api/attendance/mark", tt.as, tt.body)
			if resp.StatusCode != tt.status || env.Success || env.ErrorCode != tt.code {
				t.Fatalf("status=%d env=%+v", resp.StatusCode, env)
			}
		})
	}

	if n := e.store.CountRecords(); n != 2 {
		t.Fatalf("rejected requests wrote records: %d", n)
	}

	_, env = e.do(t, http.MethodPost, "/api/attendance/mark", "teacher", e.markBody("Seminar 1", mark(e.s1, "present")))
	var fields map[string][]string
	if err := json.Unmarshal(env.Errors, &fields); err != nil || len(fields["session"]) != 1 {
		t.Fatalf("session error details %s (%v)", env.Errors, err)
	}
}

func TestMarkEndpointIsolatesBadRows(t *testing.T) {
	tests := []struct {
		name string
		row  func(e *apiEnv) map[string]string
	}{
		{"blank status", func(e *apiEnv) map[string]string { return mark(e.s2, "") }},
		{"blank studentId", func(e *apiEnv) map[string]string { return map[string]string{"studentId": "", "status": "present"} }},
		{"malformed studentId", func(e *apiEnv) map[string]string { return map[string]string{"studentId": "nope", "status": "present"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newAPIEnv(t)
			resp, env := e.do(t, http.MethodPost, "/api/attendance/mark", "teacher", e.markBody("Lecture 1", mark(e.s1, "present"), tt.row(e)))
			if resp.StatusCode != fiber.StatusOK || !env.Success {
				t.Fatalf("status=%d env=%+v", resp.StatusCode, env)
			}
			var res struct {
				SuccessCount int `json:"successCount"`
				FailureCount int `json:"failureCount"`
				Failed       []struct {
					Error string `json:"error"`
				} `json:"failed"`
			}
			if err := json.Unmarshal(env.Data, &res); err != nil {
				t.Fatal(err)
			}
			if res.SuccessCount != 1 || res.FailureCount != 1 || len(res.Failed) != 1 || res.Failed[0].Error == "" {
				t.Fatalf("result %+v", res)
			}
			if n := e.store.CountRecords(); n != 1 {
				t.Fatalf("records = %d, want 1", n)
			}
		})
	}
}

func TestRecordsAndDeleteEndpoints(t *testing.T) {
	e := newAPIEnv(t)
	e.do(t, http.MethodPost, "/api/attendance/mark", "teacher", e.markBody("Lecture 1", mark(e.s1, "present"), mark(e.s2, "late")))

	resp, env := e.do(t, http.MethodGet, "/api/attendance/records?sortBy=session&limit=1", "s1", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status=%d env=%+v", resp.StatusCode, env)
	}
	var page struct {
		Records []struct {
			ID        uuid.UUID `json:"id"`
			StudentID uuid.UUID `json:"studentId"`
		} `json:"records"`
		Pagination helper.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatal(err)
	}
	if page.Pagination.TotalRecords != 1 || len(page.Records) != 1 || page.Records[0].StudentID != e.s1 {
		t.Fatalf("student page %+v", page)
	}
	recordID := page.Records[0].ID

	path := "/api/attendance/" + recordID.String()
	if resp, _ := e.do(t, http.MethodDelete, path, "teacher", map[string]string{"reason": "duplicate entry"}); resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("teacher delete status=%d", resp.StatusCode)
	}
	if resp, env := e.do(t, http.MethodDelete, path, "admin", nil); resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("delete without reason status=%d env=%+v", resp.StatusCode, env)
	}
	if resp, env := e.do(t, http.MethodDelete, path, "admin", map[string]string{"reason": "duplicate entry"}); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("delete status=%d env=%+v", resp.StatusCode, env)
	}
	if resp, _ := e.do(t, http.MethodDelete, path, "admin", map[string]string{"reason": "duplicate entry"}); resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("second delete status=%d", resp.StatusCode)
	}

	resp, env = e.do(t, http.MethodGet, path+"/audit", "admin", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("audit status=%d env=%+v", resp.StatusCode, env)
	}
	var trail []struct {
		Action    string         `json:"action"`
		NewValues map[string]any `json:"newValues"`
	}
	if err := json.Unmarshal(env.Data, &trail); err != nil {
		t.Fatal(err)
	}
	if len(trail) != 2 || trail[0].Action != "delete" || trail[0].NewValues != nil {
		t.Fatalf("trail %+v", trail)
	}

	if resp, _ := e.do(t, http.MethodGet, "/api/attendance/not-a-uuid/audit", "admin", nil); resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("bad id status=%d", resp.StatusCode)
	}
}

func TestUpdateEndpointConflict(t *testing.T) {
	e := newAPIEnv(t)
	e.do(t, http.MethodPost, "/api/attendance/mark", "teacher", e.markBody("Lecture 1", mark(e.s1, "present")))
	e.do(t, http.MethodPost, "/api/attendance/mark", "teacher", e.markBody("Lecture 2", mark(e.s1, "present")))

	rec, err := e.store.FindRecordByKey(t.Context(), repository.RecordKey{
		StudentID: e.s1, ClassID: e.class, SubjectID: e.subject, Date: mustDate(t, e.today), Session: "Lecture 1",
	})
	if err != nil {
		t.Fatal(err)
	}
	path := "/api/attendance/" + rec.AttendanceRecordID.String()

	resp, env := e.do(t, http.MethodPut, path, "teacher", map[string]string{"session": "Lecture 2"})
	if resp.StatusCode != fiber.StatusConflict || env.ErrorCode != "CONFLICT" {
		t.Fatalf("status=%d env=%+v", resp.StatusCode, env)
	}
	resp, env = e.do(t, http.MethodPatch, path, "teacher", map[string]string{"status": "excused"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status=%d env=%+v", resp.StatusCode, env)
	}
	if resp, _ := e.do(t, http.MethodPatch, path, "teacher", map[string]string{"status": "bolos"}); resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("invalid status code=%d", resp.StatusCode)
	}
}

func TestReadEndpoints(t *testing.T) {
	e := newAPIEnv(t)
	e.do(t, http.MethodPost, "/api/attendance/mark", "teacher", e.markBody("Lecture 2", mark(e.s2, "absent"), mark(e.s1, "present")))
	q := "classId=" + e.class.String() + "&subjectId=" + e.subject.String()

	resp, env := e.do(t, http.MethodGet, "/api/attendance/session-options?"+q, "teacher", nil)
	if resp.StatusCode != fiber.StatusOK || !strings.Contains(string(env.Data), `"Lecture 2"`) {
		t.Fatalf("options status=%d data=%s", resp.StatusCode, env.Data)
	}

	resp, env = e.do(t, http.MethodGet, "/api/attendance/session-summary?"+q+"&date="+e.today+"&session=lecture%202", "teacher", nil)
	var sum struct {
		Present int `json:"present"`
		Absent  int `json:"absent"`
		Total   int `json:"total"`
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("session summary status=%d env=%+v", resp.StatusCode, env)
	}
	if err := json.Unmarshal(env.Data, &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Present != 1 || sum.Absent != 1 || sum.Total != 2 {
		t.Fatalf("summary %+v", sum)
	}

	resp, env = e.do(t, http.MethodGet, "/api/attendance/class/"+e.class.String()+"/students?subjectId="+e.subject.String(), "teacher", nil)
	if resp.StatusCode != fiber.StatusOK || !strings.Contains(string(env.Data), `"Andi"`) {
		t.Fatalf("roster status=%d data=%s", resp.StatusCode, env.Data)
	}

	if resp, _ := e.do(t, http.MethodGet, "/api/attendance/summary/student/"+e.s2.String(), "s1", nil); resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("student reading other summary status=%d", resp.StatusCode)
	}
	resp, env = e.do(t, http.MethodGet, "/api/attendance/summary/student/"+e.s1.String(), "s1", nil)
	if resp.StatusCode != fiber.StatusOK || !strings.Contains(string(env.Data), `"attendancePercentage":100`) {
		t.Fatalf("own summary status=%d data=%s", resp.StatusCode, env.Data)
	}

	resp, env = e.do(t, http.MethodGet, "/api/attendance/summary/class/"+e.class.String()+"?subjectId="+e.subject.String(), "admin", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("class summary status=%d env=%+v", resp.StatusCode, env)
	}
}

func TestExportEndpoint(t *testing.T) {
	e := newAPIEnv(t)
	e.do(t, http.MethodPost, "/api/attendance/mark", "teacher", e.markBody("Lecture 1", mark(e.s2, "late"), mark(e.s1, "present")))

	req := httptest.NewRequest(http.MethodGet, "/api/attendance/reports/class/"+e.class.String()+"/export?subjectId="+e.subject.String(), nil)
	req.Header.Set("X-Test-As", "teacher")
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK || !strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), "text/csv") {
		t.Fatalf("status=%d type=%s", resp.StatusCode, resp.Header.Get(fiber.HeaderContentType))
	}
	if !strings.Contains(resp.Header.Get(fiber.HeaderContentDisposition), "attachment") {
		t.Fatal("missing attachment disposition")
	}
	body, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d:\n%s", len(lines), body)
	}
	if lines[0] != "date,session,roll_number,student_code,student_name,subject,status,marked_by" {
		t.Fatalf("header = %q", lines[0])
	}
	want := e.today + ",Lecture 1,1,25-7A-01,Andi,IPA,present,Pak Joko"
	if lines[1] != want {
		t.Fatalf("row = %q, want %q", lines[1], want)
	}
}

func TestSessionConfigAndBulkEndpoints(t *testing.T) {
	e := newAPIEnv(t)

	body := map[string]any{"classId": e.class.String(), "subjectId": e.subject.String(), "sessionType": "Lab", "sessionsPerWeek": 1}
	if resp, _ := e.do(t, http.MethodPost, "/api/attendance/session-configs", "teacher", body); resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("teacher create status=%d", resp.StatusCode)
	}
	resp, env := e.do(t, http.MethodPost, "/api/attendance/session-configs", "admin", body)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create status=%d env=%+v", resp.StatusCode, env)
	}
	resp, env = e.do(t, http.MethodGet, "/api/attendance/session-configs?classId="+e.class.String()+"&active=true", "teacher", nil)
	if resp.StatusCode != fiber.StatusOK || !strings.Contains(string(env.Data), `"sessionType":"lab"`) {
		t.Fatalf("list status=%d data=%s", resp.StatusCode, env.Data)
	}

	if resp, _ := e.do(t, http.MethodPost, "/api/attendance/bulk/validate-pattern", "teacher", map[string]any{"pattern": "*", "classId": e.class.String()}); resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("teacher bulk status=%d", resp.StatusCode)
	}
	resp, env = e.do(t, http.MethodPost, "/api/attendance/bulk/validate-pattern", "admin", map[string]any{"pattern": "25-7a-*", "classId": e.class.String()})
	if resp.StatusCode != fiber.StatusOK || !strings.Contains(string(env.Data), `"matchCount":2`) {
		t.Fatalf("validate status=%d data=%s", resp.StatusCode, env.Data)
	}
	resp, env = e.do(t, http.MethodPost, "/api/attendance/bulk/assign-students", "admin", map[string]any{"pattern": "99-*", "classId": e.class.String(), "confirm": true})
	if resp.StatusCode != fiber.StatusBadRequest || env.Success {
		t.Fatalf("empty assign status=%d env=%+v", resp.StatusCode, env)
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := dbtime.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
