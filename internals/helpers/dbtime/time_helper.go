// file: internals/helpers/dbtime/time_helper.go
package dbtime

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// LoadLocation dengan fallback Asia/Jakarta (fixed +07:00) lalu UTC.
func LoadLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Asia/Jakarta"
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	if name == "Asia/Jakarta" {
		return time.FixedZone("Asia/Jakarta", 7*3600)
	}
	return time.UTC
}

// DateOnly: hari kalender t (jam diabaikan) sebagai 00:00 UTC, cocok dengan kolom DATE.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate menerima "YYYY-MM-DD" atau RFC3339; jam diabaikan.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("tanggal wajib diisi")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOnly(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOnly(t), nil
	}
	return time.Time{}, fmt.Errorf("format tanggal tidak valid %q, gunakan YYYY-MM-DD", s)
}

// TodayIn: tanggal hari ini menurut timezone loc (sebagai 00:00 UTC).
func TodayIn(loc *time.Location, now time.Time) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOnly(now.In(loc))
}

func FormatDate(t time.Time) string { return t.Format(DateLayout) }
