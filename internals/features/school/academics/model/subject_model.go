// file: internals/features/school/academics/model/subject_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type SubjectModel struct {
	SubjectID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:subject_id" json:"subjectId"`
	SubjectSchoolID  uuid.UUID  `gorm:"type:uuid;not null;index;column:subject_school_id" json:"schoolId"`
	SubjectClassID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_subjects_class_code,priority:1;column:subject_class_id" json:"classId"`
	SubjectName      string     `gorm:"type:varchar(120);not null;column:subject_name" json:"name"`
	SubjectCode      string     `gorm:"type:varchar(40);not null;uniqueIndex:uq_subjects_class_code,priority:2;column:subject_code" json:"code"`
	SubjectSlug      string     `gorm:"type:varchar(140);not null;column:subject_slug" json:"slug"`
	SubjectTeacherID *uuid.UUID `gorm:"type:uuid;index;column:subject_teacher_id" json:"teacherId,omitempty"`

	SubjectCreatedAt time.Time `gorm:"column:subject_created_at;autoCreateTime" json:"createdAt"`
	SubjectUpdatedAt time.Time `gorm:"column:subject_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (SubjectModel) TableName() string { return "subjects" }
