// file: internals/helpers/auth/token.go
package helper

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrEmptySecret  = errors.New("jwt secret kosong")
)

// IssueAccessToken: HS256, klaim id/role/school_id/iat/exp.
func IssueAccessToken(secret string, ttl time.Duration, p Principal, now time.Time) (string, time.Time, error) {
	if strings.TrimSpace(secret) == "" {
		return "", time.Time{}, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"id":        p.ID.String(),
		"role":      string(p.Kind),
		"school_id": p.SchoolID.String(),
		"iat":       now.Unix(),
		"exp":       exp.Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseAccessToken: verifikasi algoritma HMAC + exp, lalu bentuk Principal (belum di-resolve ke DB).
func ParseAccessToken(secret, raw string) (Principal, error) {
	if strings.TrimSpace(secret) == "" {
		return Principal{}, ErrEmptySecret
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Principal{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, ErrInvalidToken
	}

	id, err1 := uuid.Parse(strClaim(claims, "id"))
	schoolID, err2 := uuid.Parse(strClaim(claims, "school_id"))
	kind := PrincipalKind(strings.ToLower(strClaim(claims, "role")))
	if err1 != nil || err2 != nil || !kind.Valid() {
		return Principal{}, ErrInvalidToken
	}
	return Principal{Kind: kind, ID: id, SchoolID: schoolID}, nil
}

// util kecil untuk ambil string claim
func strClaim(m jwt.MapClaims, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// AccessTokenExpiry: exp dari token yang tanda tangannya valid (dipakai saat logout).
func AccessTokenExpiry(secret, raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return time.Time{}, ErrInvalidToken
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}, ErrInvalidToken
	}
	return time.Unix(int64(exp), 0), nil
}
