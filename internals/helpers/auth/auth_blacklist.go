package helper

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TokenDigest: HMAC(access_token) hex, ini yang disimpan di token_blacklist.
func TokenDigest(rawAccessToken, secret string) string {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(rawAccessToken))
	return hex.EncodeToString(m.Sum(nil))
}

// RawAccessToken: token yang sudah diverifikasi AuthJWT; fallback header Authorization.
func RawAccessToken(c *fiber.Ctx) string {
	if s, ok := c.Locals(LocRawToken).(string); ok && s != "" {
		return s
	}
	authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
