// file: internals/features/school/academics/model/student_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type StudentModel struct {
	StudentID       uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:student_id" json:"studentId"`
	StudentSchoolID uuid.UUID  `gorm:"type:uuid;not null;index;column:student_school_id" json:"schoolId"`
	StudentClassID  *uuid.UUID `gorm:"type:uuid;index;column:student_class_id" json:"classId,omitempty"` // nil = belum punya kelas
	StudentName     string     `gorm:"type:varchar(120);not null;column:student_name" json:"name"`
	StudentRollNum  int        `gorm:"not null;default:0;column:student_roll_num" json:"rollNum"`
	// Kode siswa (NIS), dipakai untuk login & pencocokan pola bulk.
	StudentCode         string `gorm:"type:varchar(60);not null;uniqueIndex:uq_students_code;column:student_code" json:"code"`
	StudentPasswordHash string `gorm:"type:text;not null;column:student_password_hash" json:"-"`

	StudentCreatedAt time.Time `gorm:"column:student_created_at;autoCreateTime" json:"createdAt"`
	StudentUpdatedAt time.Time `gorm:"column:student_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (StudentModel) TableName() string { return "students" }

// InClass: keanggotaan kelas siswa sama dengan classID.
func (s StudentModel) InClass(classID uuid.UUID) bool {
	return s.StudentClassID != nil && *s.StudentClassID == classID
}

type StudentSubjectModel struct {
	StudentSubjectID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:student_subject_id" json:"studentSubjectId"`
	StudentSubjectSchoolID  uuid.UUID `gorm:"type:uuid;not null;index;column:student_subject_school_id" json:"schoolId"`
	StudentSubjectStudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_student_subject,priority:1;column:student_subject_student_id" json:"studentId"`
	StudentSubjectSubjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_student_subject,priority:2;column:student_subject_subject_id" json:"subjectId"`
	StudentSubjectClassID   uuid.UUID `gorm:"type:uuid;not null;index;column:student_subject_class_id" json:"classId"`

	StudentSubjectCreatedAt time.Time `gorm:"column:student_subject_created_at;autoCreateTime" json:"createdAt"`
}

func (StudentSubjectModel) TableName() string { return "student_subjects" }
