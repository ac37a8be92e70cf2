package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	acModel "sekolahku_backend/internals/features/school/academics/model"
	"sekolahku_backend/internals/features/users/auth/dto"
	authRepo "sekolahku_backend/internals/features/users/auth/repository"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

// Accounts: akses data akun yang dibutuhkan AuthService (GORM di produksi).
type Accounts interface {
	CreateSchool(ctx context.Context, m *acModel.SchoolModel) error
	FindAdminByEmail(ctx context.Context, email string) (*authRepo.Account, error)
	FindTeacherByEmail(ctx context.Context, email string) (*authRepo.Account, error)
	FindStudentByCode(ctx context.Context, code string) (*authRepo.Account, error)
	FindAccount(ctx context.Context, kind string, id, schoolID uuid.UUID) (*authRepo.Account, error)
	UpdatePassword(ctx context.Context, kind string, id uuid.UUID, hash string) error

	BlacklistToken(ctx context.Context, digest string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, digest string, now time.Time) (bool, error)
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

var errBadCredentials = fiber.NewError(fiber.StatusUnauthorized, "Email/kode siswa atau password salah")

type AuthService struct {
	repo   Accounts
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(repo Accounts, secret string, ttl time.Duration) *AuthService {
	return &AuthService{repo: repo, secret: secret, ttl: ttl, now: time.Now}
}

// WithClock: jam tetap untuk test.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	cp := *s
	cp.now = now
	return &cp
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPasswordHash(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) issue(p helperAuth.Principal) (*dto.TokenResponse, error) {
	tok, exp, err := helperAuth.IssueAccessToken(s.secret, s.ttl, p, s.now())
	if err != nil {
		log.Printf("[ERROR] issue token %s/%s: %v", p.Kind, p.ID, err)
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat token")
	}
	return &dto.TokenResponse{AccessToken: tok, TokenType: "Bearer", ExpiresAt: exp, User: p}, nil
}

/* ==========================
   REGISTER (school + admin)
========================== */

func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Password hashing failed")
	}
	school := acModel.SchoolModel{
		SchoolID:           uuid.New(),
		SchoolName:         strings.TrimSpace(req.SchoolName),
		SchoolAdminName:    strings.TrimSpace(req.AdminName),
		SchoolAdminEmail:   strings.ToLower(strings.TrimSpace(req.Email)),
		SchoolPasswordHash: hash,
	}
	if err := s.repo.CreateSchool(ctx, &school); err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, fiber.NewError(fiber.StatusConflict, "Email sudah terdaftar")
		}
		log.Printf("[ERROR] register school: %v", err)
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal mendaftarkan sekolah")
	}

	p := helperAuth.Admin(school.SchoolID)
	p.Name = school.SchoolAdminName
	return s.issue(p)
}

/* ==========================
   LOGIN
========================== */

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	kind := helperAuth.PrincipalKind(strings.ToLower(strings.TrimSpace(req.Role)))

	var (
		acc *authRepo.Account
		err error
	)
	switch kind {
	case helperAuth.KindAdmin:
		acc, err = s.repo.FindAdminByEmail(ctx, req.Email)
	case helperAuth.KindTeacher:
		acc, err = s.repo.FindTeacherByEmail(ctx, req.Email)
	case helperAuth.KindStudent:
		acc, err = s.repo.FindStudentByCode(ctx, req.StudentCode)
	default:
		return nil, fiber.NewError(fiber.StatusBadRequest, "Role tidak dikenal")
	}
	if err != nil {
		if errors.Is(err, authRepo.ErrNotFound) {
			return nil, errBadCredentials
		}
		log.Printf("[ERROR] login lookup %s: %v", kind, err)
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal memproses login")
	}
	if err := CheckPasswordHash(acc.PasswordHash, req.Password); err != nil {
		return nil, errBadCredentials
	}

	return s.issue(helperAuth.Principal{Kind: kind, ID: acc.ID, SchoolID: acc.SchoolID, Name: acc.Name})
}

/* ==========================
   PRINCIPAL RESOLVER (AuthJWT)
========================== */

// ResolvePrincipal: principal dari token harus masih ada di tabelnya.
func (s *AuthService) ResolvePrincipal(ctx context.Context, p helperAuth.Principal) (helperAuth.Principal, error) {
	acc, err := s.repo.FindAccount(ctx, string(p.Kind), p.ID, p.SchoolID)
	if err != nil {
		return helperAuth.Principal{}, err
	}
	p.Name = acc.Name
	return p, nil
}

/* ==========================
   LOGOUT / BLACKLIST
========================== */

// Logout: blacklist access token sampai exp-nya lewat (+1 menit toleransi jam).
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if strings.TrimSpace(rawToken) == "" {
		log.Println("[INFO] Logout tanpa access token; tidak ada yang di-blacklist")
		return nil
	}
	now := s.now()
	expiresAt := now.Add(s.ttl)
	if exp, err := helperAuth.AccessTokenExpiry(s.secret, rawToken); err == nil {
		expiresAt = exp
	}
	if !expiresAt.After(now) {
		return nil
	}
	digest := helperAuth.TokenDigest(rawToken, s.secret)
	if err := s.repo.BlacklistToken(ctx, digest, expiresAt.Add(time.Minute)); err != nil {
		log.Printf("[WARN] Failed to blacklist token: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal logout")
	}
	return nil
}

// IsRevoked dipakai AuthJWT sebelum resolve principal.
func (s *AuthService) IsRevoked(ctx context.Context, rawToken string) (bool, error) {
	return s.repo.IsBlacklisted(ctx, helperAuth.TokenDigest(rawToken, s.secret), s.now())
}

// PurgeExpiredTokens dipanggil cron pembersihan.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.repo.PurgeExpired(ctx, s.now())
}

/* ==========================
   CHANGE PASSWORD
========================== */

func (s *AuthService) ChangePassword(ctx context.Context, p helperAuth.Principal, req dto.ChangePasswordRequest) error {
	acc, err := s.repo.FindAccount(ctx, string(p.Kind), p.ID, p.SchoolID)
	if err != nil {
		if errors.Is(err, authRepo.ErrNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "User not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil data user")
	}
	if err := CheckPasswordHash(acc.PasswordHash, req.CurrentPassword); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Current password incorrect")
	}
	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to hash new password")
	}
	if err := s.repo.UpdatePassword(ctx, string(p.Kind), p.ID, hash); err != nil {
		log.Printf("[ERROR] update password %s/%s: %v", p.Kind, p.ID, err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update password")
	}
	return nil
}
