// file: internals/features/attendance/service/config.go
package service

import (
	"time"

	"sekolahku_backend/internals/configs"
	"sekolahku_backend/internals/helpers/dbtime"
)

// Config kebijakan attendance, dibangun sekali saat startup.
type Config struct {
	MaxBatch      int
	MaxFutureDays int
	MaxPastDays   int // 0 = tanpa batas
	StrictOnce    bool
	Location      *time.Location
}

func DefaultConfig() Config {
	return Config{
		MaxBatch: 500,
		Location: dbtime.LoadLocation("Asia/Jakarta"),
	}
}

// ConfigFromEnv: baca nilai yang sudah dimuat configs.LoadEnv.
func ConfigFromEnv() Config {
	cfg := Config{
		MaxBatch:      configs.AttendanceMaxBatch,
		MaxFutureDays: configs.AttendanceMaxFutureDays,
		MaxPastDays:   configs.AttendanceMaxPastDays,
		StrictOnce:    configs.AttendanceStrictOnce,
		Location:      dbtime.LoadLocation(configs.AttendanceTimeZone),
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 500
	}
	if cfg.MaxFutureDays < 0 {
		cfg.MaxFutureDays = 0
	}
	return cfg
}
