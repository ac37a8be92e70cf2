package helper

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const defaultSlugMax = 100

// Slugify: teks bebas → [a-z0-9-]. Diakritik dibuang (é → e), run non-alnum jadi satu "-".
// Hasil kosong → "item".
func Slugify(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = defaultSlugMax
	}

	var b strings.Builder
	dash := false
	for _, r := range norm.NFD.String(strings.ToLower(s)) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}

	out := b.String()
	if len(out) > maxLen {
		out = strings.TrimRight(out[:maxLen], "-")
	}
	if out == "" {
		out = "item"
	}
	return out
}

// EnsureUniqueSlugCI: cari slug yang belum dipakai (case-insensitive) di table.column.
// scopeFn opsional, untuk WHERE tambahan (mis. per sekolah). Bentrok → base-2, base-3, ...
func EnsureUniqueSlugCI(
	ctx context.Context,
	db *gorm.DB,
	table, column, baseSlug string,
	scopeFn func(*gorm.DB) *gorm.DB,
	maxLen int,
) (string, error) {
	if maxLen <= 0 {
		maxLen = defaultSlugMax
	}

	taken := func(slug string) (bool, error) {
		q := db.WithContext(ctx).Table(table)
		if scopeFn != nil {
			q = scopeFn(q)
		}
		var n int64
		err := q.Where(fmt.Sprintf("LOWER(%s) = ?", column), strings.ToLower(slug)).Count(&n).Error
		return n > 0, err
	}

	slug := baseSlug
	for i := 2; i <= 26; i++ {
		used, err := taken(slug)
		if err != nil {
			return "", err
		}
		if !used {
			return slug, nil
		}
		slug = WithSlugSuffix(baseSlug, fmt.Sprintf("-%d", i), maxLen)
	}

	// masih bentrok: suffix acak pendek
	return WithSlugSuffix(baseSlug, fmt.Sprintf("-%x", time.Now().UnixNano()&0xffff), maxLen), nil
}

// WithSlugSuffix: base dipotong supaya base+suffix muat di maxLen.
func WithSlugSuffix(base, suffix string, maxLen int) string {
	keep := maxLen - len(suffix)
	if keep <= 0 {
		return "x" + suffix
	}
	if len(base) > keep {
		base = base[:keep]
	}
	base = strings.Trim(base, "-")
	if base == "" {
		base = "x"
	}
	return base + suffix
}
