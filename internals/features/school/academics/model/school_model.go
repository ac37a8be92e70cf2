// file: internals/features/school/academics/model/school_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// SchoolModel adalah akun admin sekaligus tenant. Admin "adalah" sekolah:
// principal admin memakai SchoolID sebagai ID-nya.
type SchoolModel struct {
	SchoolID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:school_id" json:"schoolId"`
	SchoolName         string    `gorm:"type:varchar(160);not null;column:school_name" json:"schoolName"`
	SchoolAdminName    string    `gorm:"type:varchar(120);not null;column:school_admin_name" json:"adminName"`
	SchoolAdminEmail   string    `gorm:"type:varchar(160);not null;uniqueIndex:uq_schools_admin_email;column:school_admin_email" json:"email"`
	SchoolPasswordHash string    `gorm:"type:text;not null;column:school_password_hash" json:"-"`

	SchoolCreatedAt time.Time `gorm:"column:school_created_at;autoCreateTime" json:"createdAt"`
	SchoolUpdatedAt time.Time `gorm:"column:school_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (SchoolModel) TableName() string { return "schools" }
