// file: internals/features/school/academics/dto/academics_dto.go
package dto

import (
	"strings"

	"github.com/google/uuid"

	"sekolahku_backend/internals/features/school/academics/model"
)

/* =========================
   CLASS
========================= */

type CreateClassRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

func (r *CreateClassRequest) Normalize() {
	r.Name = strings.Join(strings.Fields(r.Name), " ")
}

type ClassResponse struct {
	model.ClassModel
	StudentCount int64 `json:"studentCount"`
}

/* =========================
   SUBJECT
========================= */

type CreateSubjectRequest struct {
	ClassID   string  `json:"classId" validate:"required,uuid"`
	Name      string  `json:"name" validate:"required,min=1,max=120"`
	Code      string  `json:"code" validate:"required,min=1,max=40"`
	TeacherID *string `json:"teacherId" validate:"omitempty,uuid"`
}

func (r *CreateSubjectRequest) Normalize() {
	r.Name = strings.Join(strings.Fields(r.Name), " ")
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	if r.TeacherID != nil && strings.TrimSpace(*r.TeacherID) == "" {
		r.TeacherID = nil
	}
}

func (r CreateSubjectRequest) ToModel(schoolID, classID uuid.UUID, teacherID *uuid.UUID) model.SubjectModel {
	return model.SubjectModel{
		SubjectID:        uuid.New(),
		SubjectSchoolID:  schoolID,
		SubjectClassID:   classID,
		SubjectName:      r.Name,
		SubjectCode:      r.Code,
		SubjectTeacherID: teacherID,
	}
}

/* =========================
   TEACHER
========================= */

type CreateTeacherRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=120"`
	Email    string `json:"email" validate:"required,email,max=160"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (r *CreateTeacherRequest) Normalize() {
	r.Name = strings.Join(strings.Fields(r.Name), " ")
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type AssignTeacherRequest struct {
	ClassID   string `json:"classId" validate:"required,uuid"`
	SubjectID string `json:"subjectId" validate:"required,uuid"`
}

type TeacherResponse struct {
	model.TeacherModel
	Assignments []model.TeacherAssignmentModel `json:"assignments"`
}

/* =========================
   STUDENT
========================= */

type CreateStudentRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=120"`
	Code     string  `json:"code" validate:"required,min=1,max=60,excludesall=/"`
	ClassID  *string `json:"classId" validate:"omitempty,uuid"`
	RollNum  int     `json:"rollNum" validate:"min=0,max=999"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
}

func (r *CreateStudentRequest) Normalize() {
	r.Name = strings.Join(strings.Fields(r.Name), " ")
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	if r.ClassID != nil && strings.TrimSpace(*r.ClassID) == "" {
		r.ClassID = nil
	}
}

// RollNumError: siswa yang langsung masuk kelas wajib punya nomor absen.
func (r CreateStudentRequest) RollNumError() string {
	if r.ClassID != nil && r.RollNum < 1 {
		return "rollNum wajib diisi (>= 1) jika classId diisi"
	}
	return ""
}

func (r CreateStudentRequest) ToModel(schoolID uuid.UUID, classID *uuid.UUID, passwordHash string) model.StudentModel {
	roll := r.RollNum
	if classID == nil {
		roll = 0
	}
	return model.StudentModel{
		StudentID:           uuid.New(),
		StudentSchoolID:     schoolID,
		StudentClassID:      classID,
		StudentName:         r.Name,
		StudentRollNum:      roll,
		StudentCode:         r.Code,
		StudentPasswordHash: passwordHash,
	}
}
