// file: internals/features/attendance/service/validation_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/repository"
	acModel "sekolahku_backend/internals/features/school/academics/model"
	helperAuth "sekolahku_backend/internals/helpers/auth"
	"sekolahku_backend/internals/helpers/dbtime"
)

// ValidationService: gerbang otorisasi & prasyarat sebelum setiap tulis.
// Tidak ada cache; setiap cek membaca ulang store.
type ValidationService struct {
	store repository.Store
	cfg   Config
	now   func() time.Time
}

func NewValidationService(store repository.Store, cfg Config) *ValidationService {
	return &ValidationService{store: store, cfg: cfg, now: time.Now}
}

// With: salinan yang membaca lewat store lain (mis. tx).
func (v *ValidationService) With(store repository.Store) *ValidationService {
	cp := *v
	cp.store = store
	return &cp
}

// Assignment: hasil cek penugasan (kelas & mapel sudah dimuat).
type Assignment struct {
	Class   *acModel.ClassModel
	Subject *acModel.SubjectModel
}

// ValidateTeacherAssignment:
//   - admin: lolos bila kelas & mapel milik sekolahnya
//   - teacher: wajib punya baris teacher_assignments (teacher, class, subject)
//   - student: tidak pernah boleh menulis
func (v *ValidationService) ValidateTeacherAssignment(ctx context.Context, p helperAuth.Principal, classID, subjectID uuid.UUID) (*Assignment, error) {
	if p.IsStudent() {
		return nil, forbidden("students cannot manage attendance")
	}

	class, err := v.store.GetClass(ctx, p.SchoolID, classID)
	if err != nil {
		return nil, lookupErr("load class", "class", classID, err)
	}
	subject, err := v.store.GetSubject(ctx, p.SchoolID, subjectID)
	if err != nil {
		return nil, lookupErr("load subject", "subject", subjectID, err)
	}
	if subject.SubjectClassID != class.ClassID {
		return nil, invalid("subjectId", "subject does not belong to this class")
	}

	if p.IsTeacher() {
		ok, err := v.store.HasTeacherAssignment(ctx, p.ID, classID, subjectID)
		if err != nil {
			return nil, dbErr("check teacher assignment", err)
		}
		if !ok {
			return nil, forbidden("teacher is not assigned to this class and subject")
		}
	}
	return &Assignment{Class: class, Subject: subject}, nil
}

// ValidateSessionConfiguration: label harus cocok (case-insensitive, trim) dengan
// salah satu label konfigurasi aktif. Mengembalikan label kanonik.
func (v *ValidationService) ValidateSessionConfiguration(ctx context.Context, schoolID, classID, subjectID uuid.UUID, label string) (string, error) {
	want := strings.TrimSpace(label)
	if want == "" {
		return "", invalid("session", "session is required")
	}
	cfgs, err := v.store.ListSessionConfigs(ctx, schoolID, classID, subjectID, true)
	if err != nil {
		return "", dbErr("load session configuration", err)
	}
	if len(cfgs) == 0 {
		return "", invalid("session", "no active session configuration for this class and subject")
	}
	for _, c := range cfgs {
		for _, l := range c.Labels() {
			if strings.EqualFold(l, want) {
				return l, nil
			}
		}
	}
	return "", invalid("session", fmt.Sprintf("session %q is not configured for this class and subject", want))
}

// ParseDate + ValidateDateRange dalam satu langkah.
func (v *ValidationService) ParseAndValidateDate(raw string) (time.Time, error) {
	d, err := dbtime.ParseDate(raw)
	if err != nil {
		return time.Time{}, invalid("date", err.Error())
	}
	if err := v.ValidateDateRange(d); err != nil {
		return time.Time{}, err
	}
	return d, nil
}

// ValidateDateRange: tidak lebih dari MaxFutureDays ke depan; MaxPastDays > 0 membatasi ke belakang.
func (v *ValidationService) ValidateDateRange(date time.Time) error {
	if date.IsZero() {
		return invalid("date", "date is required")
	}
	d := dbtime.DateOnly(date)
	today := dbtime.TodayIn(v.cfg.Location, v.now())

	if latest := today.AddDate(0, 0, v.cfg.MaxFutureDays); d.After(latest) {
		return invalid("date", fmt.Sprintf("date %s is too far in the future", dbtime.FormatDate(d)))
	}
	if v.cfg.MaxPastDays > 0 {
		if earliest := today.AddDate(0, 0, -v.cfg.MaxPastDays); d.Before(earliest) {
			return invalid("date", fmt.Sprintf("date %s is older than %d days", dbtime.FormatDate(d), v.cfg.MaxPastDays))
		}
	}
	return nil
}

// ValidateStudentEnrollment: siswa ada & keanggotaan kelasnya == classID.
func (v *ValidationService) ValidateStudentEnrollment(ctx context.Context, schoolID, studentID, classID uuid.UUID) (*acModel.StudentModel, error) {
	st, err := v.store.GetStudent(ctx, schoolID, studentID)
	if err != nil {
		return nil, lookupErr("load student", "student", studentID, err)
	}
	if !st.InClass(classID) {
		return nil, &NotFoundError{Resource: "student in class", ID: studentID.String()}
	}
	return st, nil
}

// ValidateActor: principal penulis masih ada di store.
func (v *ValidationService) ValidateActor(ctx context.Context, p helperAuth.Principal) error {
	switch p.Kind {
	case helperAuth.KindAdmin:
		if _, err := v.store.GetSchool(ctx, p.SchoolID); err != nil {
			return lookupErr("load school", "school", p.SchoolID, err)
		}
	case helperAuth.KindTeacher:
		if _, err := v.store.GetTeacher(ctx, p.SchoolID, p.ID); err != nil {
			return lookupErr("load teacher", "teacher", p.ID, err)
		}
	default:
		return forbidden("students cannot manage attendance")
	}
	return nil
}

// parseID: uuid dari input mentah → ValidationError bila rusak.
func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, invalid(field, "must be a valid UUID")
	}
	return id, nil
}
