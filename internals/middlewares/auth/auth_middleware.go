// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	helperAuth "sekolahku_backend/internals/helpers/auth"
)

// PrincipalResolver mencocokkan principal dari token ke tabel school/teacher/student.
// Mengembalikan principal lengkap (nama, school) atau error bila sudah tidak ada.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, p helperAuth.Principal) (helperAuth.Principal, error)
}

// RevocationChecker: token yang sudah logout (blacklist).
type RevocationChecker interface {
	IsRevoked(ctx context.Context, rawToken string) (bool, error)
}

type AuthJWTOpts struct {
	Secret              string
	Resolver            PrincipalResolver
	Revocations         RevocationChecker // opsional
	AllowCookieFallback bool              // pakai cookie access_token jika tidak ada Bearer
}

func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: Secret wajib diisi")
	}
	if o.Resolver == nil {
		panic("AuthJWT: Resolver wajib diisi")
	}

	return func(c *fiber.Ctx) error {
		// 1) Ambil token: Authorization: Bearer xxx (atau cookie jika diizinkan)
		raw, err := extractBearerToken(c, o.AllowCookieFallback)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		// 2) Parse + verifikasi algoritma (HMAC saja)
		claimed, err := helperAuth.ParseAccessToken(secret, raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		// 3) Token yang sudah logout ditolak
		if o.Revocations != nil {
			revoked, err := o.Revocations.IsRevoked(c.Context(), raw)
			if err != nil {
				log.Printf("[ERROR] AuthJWT: cek blacklist gagal: %v", err)
				return fiber.NewError(fiber.StatusServiceUnavailable, "Layanan autentikasi sedang bermasalah. Coba lagi nanti.")
			}
			if revoked {
				return fiber.NewError(fiber.StatusUnauthorized, "Sesi sudah keluar. Silakan login lagi.")
			}
		}

		// 4) Resolve ke DB: principal harus masih ada
		p, err := o.Resolver.ResolvePrincipal(c.Context(), claimed)
		if err != nil {
			log.Printf("[WARN] AuthJWT: principal %s/%s tidak valid: %v", claimed.Kind, claimed.ID, err)
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		helperAuth.SetPrincipal(c, p)
		c.Locals(helperAuth.LocRawToken, raw)
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx, cookieFallback bool) (string, error) {
	authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		if raw := strings.TrimSpace(authz[7:]); raw != "" {
			return raw, nil
		}
	}
	if cookieFallback {
		if raw := strings.TrimSpace(c.Cookies("access_token")); raw != "" {
			return raw, nil
		}
	}
	return "", errors.New("Unauthorized - Missing token")
}
