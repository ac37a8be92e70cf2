// file: internals/features/school/academics/model/class_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type ClassModel struct {
	ClassID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:class_id" json:"classId"`
	ClassSchoolID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_classes_school_slug,priority:1;column:class_school_id" json:"schoolId"`
	ClassName     string    `gorm:"type:varchar(120);not null;column:class_name" json:"name"`
	ClassSlug     string    `gorm:"type:varchar(140);not null;uniqueIndex:uq_classes_school_slug,priority:2;column:class_slug" json:"slug"`

	ClassCreatedAt time.Time `gorm:"column:class_created_at;autoCreateTime" json:"createdAt"`
	ClassUpdatedAt time.Time `gorm:"column:class_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (ClassModel) TableName() string { return "classes" }
