package configs

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

var (
	JWTSecret string
	JWTTTL    time.Duration

	CorsOrigins []string

	// Attendance
	AttendanceMaxBatch      int
	AttendanceMaxFutureDays int
	AttendanceMaxPastDays   int
	AttendanceStrictOnce    bool
	AttendanceTimeZone      string
	SummaryReconcileCron    string

	TokenBlacklistCleanupCron string

	// Seed demo (kosong = nonaktif)
	SeedDemoFile string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("[WARN] .env tidak ditemukan, memakai ENV dari sistem")
		} else {
			log.Println("[INFO] .env berhasil dimuat")
		}
	} else {
		log.Println("[INFO] Running in Railway, memakai ENV dari sistem")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	JWTTTL = GetEnvDuration("JWT_TTL", 24*time.Hour)
	CorsOrigins = splitList(GetEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000"))

	AttendanceMaxBatch = GetEnvInt("ATTENDANCE_MAX_BATCH", 500)
	AttendanceMaxFutureDays = GetEnvInt("ATTENDANCE_MAX_FUTURE_DAYS", 0)
	AttendanceMaxPastDays = GetEnvInt("ATTENDANCE_MAX_PAST_DAYS", 0)
	AttendanceStrictOnce = GetEnvBool("ATTENDANCE_STRICT_ONCE", false)
	AttendanceTimeZone = GetEnv("ATTENDANCE_TIMEZONE", "Asia/Jakarta")
	SummaryReconcileCron = GetEnv("SUMMARY_RECONCILE_CRON", "0 2 * * *")
	TokenBlacklistCleanupCron = GetEnv("TOKEN_BLACKLIST_CLEANUP_CRON", "@every 24h")
	SeedDemoFile = GetEnv("SEED_DEMO_FILE", "")

	if JWTSecret == "" {
		log.Println("[ERROR] JWT_SECRET belum diset!")
	} else {
		log.Println("[INFO] JWT_SECRET berhasil dimuat.")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[WARN] %s=%q bukan angka, pakai default %d", key, v, def)
		return def
	}
	return n
}

func GetEnvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "":
		return def
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func GetEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[WARN] %s=%q bukan durasi valid, pakai default %s", key, v, def)
		return def
	}
	return d
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	level := gormLogger.Warn
	if GetEnvBool("DB_LOG_QUERIES", false) {
		level = gormLogger.Info
	}
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      level,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	cp := *l
	cp.LogLevel = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	switch {
	case err != nil && err != gormLogger.ErrRecordNotFound && l.LogLevel >= gormLogger.Error:
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
