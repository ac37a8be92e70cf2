package model

import (
	"time"

	"gorm.io/gorm"
)

// TokenBlacklistModel: access token yang sudah logout.
// Disimpan sebagai HMAC-SHA256 hex, bukan token mentah.
type TokenBlacklistModel struct {
	TokenBlacklistID        uint           `gorm:"primaryKey;column:token_blacklist_id" json:"id"`
	TokenBlacklistToken     string         `gorm:"type:text;not null;uniqueIndex:uq_token_blacklist_token;column:token_blacklist_token" json:"-"`
	TokenBlacklistExpiredAt time.Time      `gorm:"type:timestamptz;not null;index;column:token_blacklist_expired_at" json:"expiredAt"`
	TokenBlacklistCreatedAt time.Time      `gorm:"type:timestamptz;column:token_blacklist_created_at;autoCreateTime" json:"createdAt"`
	TokenBlacklistDeletedAt gorm.DeletedAt `gorm:"index;column:token_blacklist_deleted_at" json:"-"`
}

// TableName memastikan nama tabel sesuai dengan skema database
func (TokenBlacklistModel) TableName() string {
	return "token_blacklist"
}
