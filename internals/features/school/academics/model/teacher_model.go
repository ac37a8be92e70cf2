// file: internals/features/school/academics/model/teacher_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type TeacherModel struct {
	TeacherID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:teacher_id" json:"teacherId"`
	TeacherSchoolID     uuid.UUID `gorm:"type:uuid;not null;index;column:teacher_school_id" json:"schoolId"`
	TeacherName         string    `gorm:"type:varchar(120);not null;column:teacher_name" json:"name"`
	TeacherEmail        string    `gorm:"type:varchar(160);not null;uniqueIndex:uq_teachers_email;column:teacher_email" json:"email"`
	TeacherPasswordHash string    `gorm:"type:text;not null;column:teacher_password_hash" json:"-"`

	TeacherCreatedAt time.Time `gorm:"column:teacher_created_at;autoCreateTime" json:"createdAt"`
	TeacherUpdatedAt time.Time `gorm:"column:teacher_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (TeacherModel) TableName() string { return "teachers" }

// TeacherAssignmentModel: relasi guru → (kelas, mapel) yang boleh ia absen.
type TeacherAssignmentModel struct {
	TeacherAssignmentID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:teacher_assignment_id" json:"assignmentId"`
	TeacherAssignmentSchoolID  uuid.UUID `gorm:"type:uuid;not null;index;column:teacher_assignment_school_id" json:"schoolId"`
	TeacherAssignmentTeacherID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_teacher_assignment,priority:1;column:teacher_assignment_teacher_id" json:"teacherId"`
	TeacherAssignmentClassID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_teacher_assignment,priority:2;column:teacher_assignment_class_id" json:"classId"`
	TeacherAssignmentSubjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_teacher_assignment,priority:3;column:teacher_assignment_subject_id" json:"subjectId"`

	TeacherAssignmentCreatedAt time.Time `gorm:"column:teacher_assignment_created_at;autoCreateTime" json:"createdAt"`
}

func (TeacherAssignmentModel) TableName() string { return "teacher_assignments" }
