// internals/features/users/auth/repository/auth_repository.go
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	acModel "sekolahku_backend/internals/features/school/academics/model"
	authModel "sekolahku_backend/internals/features/users/auth/model"
)

var ErrNotFound = errors.New("account not found")

// Account: bentuk seragam dari baris school/teacher/student untuk keperluan login.
type Account struct {
	ID           uuid.UUID
	SchoolID     uuid.UUID
	Name         string
	PasswordHash string
}

type AuthRepository struct {
	DB *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{DB: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

/* ====================== SCHOOL (ADMIN) ====================== */

func (r *AuthRepository) CreateSchool(ctx context.Context, m *acModel.SchoolModel) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *AuthRepository) FindAdminByEmail(ctx context.Context, email string) (*Account, error) {
	var m acModel.SchoolModel
	if err := r.DB.WithContext(ctx).
		Where("LOWER(school_admin_email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return &Account{ID: m.SchoolID, SchoolID: m.SchoolID, Name: m.SchoolAdminName, PasswordHash: m.SchoolPasswordHash}, nil
}

/* ====================== TEACHER ====================== */

func (r *AuthRepository) FindTeacherByEmail(ctx context.Context, email string) (*Account, error) {
	var m acModel.TeacherModel
	if err := r.DB.WithContext(ctx).
		Where("LOWER(teacher_email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return &Account{ID: m.TeacherID, SchoolID: m.TeacherSchoolID, Name: m.TeacherName, PasswordHash: m.TeacherPasswordHash}, nil
}

/* ====================== STUDENT ====================== */

func (r *AuthRepository) FindStudentByCode(ctx context.Context, code string) (*Account, error) {
	var m acModel.StudentModel
	if err := r.DB.WithContext(ctx).
		Where("UPPER(student_code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return &Account{ID: m.StudentID, SchoolID: m.StudentSchoolID, Name: m.StudentName, PasswordHash: m.StudentPasswordHash}, nil
}

/* ====================== BY PRINCIPAL ====================== */

// FindAccount: cari baris sesuai kind, ID dan sekolahnya harus cocok.
func (r *AuthRepository) FindAccount(ctx context.Context, kind string, id, schoolID uuid.UUID) (*Account, error) {
	db := r.DB.WithContext(ctx)
	switch kind {
	case "admin":
		var m acModel.SchoolModel
		if err := db.Where("school_id = ?", id).First(&m).Error; err != nil {
			return nil, notFound(err)
		}
		if m.SchoolID != schoolID {
			return nil, ErrNotFound
		}
		return &Account{ID: m.SchoolID, SchoolID: m.SchoolID, Name: m.SchoolAdminName, PasswordHash: m.SchoolPasswordHash}, nil
	case "teacher":
		var m acModel.TeacherModel
		if err := db.Where("teacher_id = ? AND teacher_school_id = ?", id, schoolID).First(&m).Error; err != nil {
			return nil, notFound(err)
		}
		return &Account{ID: m.TeacherID, SchoolID: m.TeacherSchoolID, Name: m.TeacherName, PasswordHash: m.TeacherPasswordHash}, nil
	case "student":
		var m acModel.StudentModel
		if err := db.Where("student_id = ? AND student_school_id = ?", id, schoolID).First(&m).Error; err != nil {
			return nil, notFound(err)
		}
		return &Account{ID: m.StudentID, SchoolID: m.StudentSchoolID, Name: m.StudentName, PasswordHash: m.StudentPasswordHash}, nil
	}
	return nil, ErrNotFound
}

func (r *AuthRepository) UpdatePassword(ctx context.Context, kind string, id uuid.UUID, hash string) error {
	db := r.DB.WithContext(ctx)
	var res *gorm.DB
	switch kind {
	case "admin":
		res = db.Model(&acModel.SchoolModel{}).Where("school_id = ?", id).Update("school_password_hash", hash)
	case "teacher":
		res = db.Model(&acModel.TeacherModel{}).Where("teacher_id = ?", id).Update("teacher_password_hash", hash)
	case "student":
		res = db.Model(&acModel.StudentModel{}).Where("student_id = ?", id).Update("student_password_hash", hash)
	default:
		return ErrNotFound
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

/* ====================== TOKEN BLACKLIST ====================== */

// BlacklistToken: idempoten; digest yang sama cukup diperpanjang expired-nya.
func (r *AuthRepository) BlacklistToken(ctx context.Context, digest string, expiresAt time.Time) error {
	row := authModel.TokenBlacklistModel{
		TokenBlacklistToken:     digest,
		TokenBlacklistExpiredAt: expiresAt,
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "token_blacklist_token"}},
		DoUpdates: clause.Assignments(map[string]any{
			"token_blacklist_expired_at": expiresAt,
			"token_blacklist_deleted_at": nil,
		}),
	}).Create(&row).Error
}

// IsBlacklisted: ada baris aktif dan belum expired?
func (r *AuthRepository) IsBlacklisted(ctx context.Context, digest string, now time.Time) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&authModel.TokenBlacklistModel{}).
		Where("token_blacklist_token = ? AND token_blacklist_expired_at > ?", digest, now).
		Count(&n).Error
	return n > 0, err
}

// PurgeExpired: hard delete, baris yang sudah lewat tidak berguna lagi.
func (r *AuthRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Unscoped().
		Where("token_blacklist_expired_at <= ?", before).
		Delete(&authModel.TokenBlacklistModel{})
	return res.RowsAffected, res.Error
}
