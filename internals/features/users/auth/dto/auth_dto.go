package dto

import (
	"time"

	helperAuth "sekolahku_backend/internals/helpers/auth"
)

// RegisterRequest: pendaftaran sekolah sekaligus akun admin-nya.
type RegisterRequest struct {
	SchoolName string `json:"schoolName" validate:"required,min=3,max=160"`
	AdminName  string `json:"adminName" validate:"required,min=3,max=120"`
	Email      string `json:"email" validate:"required,email,max=160"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest: admin & guru pakai email, siswa pakai studentCode.
type LoginRequest struct {
	Role        string `json:"role" validate:"required,oneof=admin teacher student"`
	Email       string `json:"email" validate:"required_unless=Role student,omitempty,email"`
	StudentCode string `json:"studentCode" validate:"required_if=Role student"`
	Password    string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

type TokenResponse struct {
	AccessToken string               `json:"accessToken"`
	TokenType   string               `json:"tokenType"`
	ExpiresAt   time.Time            `json:"expiresAt"`
	User        helperAuth.Principal `json:"user"`
}
