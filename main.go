package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"
	"github.com/robfig/cron/v3"

	"sekolahku_backend/internals/configs"
	database "sekolahku_backend/internals/databases"
	attendanceRepo "sekolahku_backend/internals/features/attendance/repository"
	attendanceScheduler "sekolahku_backend/internals/features/attendance/scheduler"
	attendanceService "sekolahku_backend/internals/features/attendance/service"
	authRepo "sekolahku_backend/internals/features/users/auth/repository"
	authScheduler "sekolahku_backend/internals/features/users/auth/scheduler"
	authService "sekolahku_backend/internals/features/users/auth/service"
	helper "sekolahku_backend/internals/helpers"
	middlewares "sekolahku_backend/internals/middlewares"
	routes "sekolahku_backend/internals/route"
	"sekolahku_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		ErrorHandler:            helper.FiberErrorHandler,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"}, // sesuaikan dengan CIDR proxy jika perlu
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching

	// 🔎 Request-ID + timing (observability ringan)
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		// HTTP timeout guard (selaras dengan statement_timeout di DB)
		ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		dur := time.Since(start)
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), dur)
		return err
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + migrate + warm-up
	database.ConnectDB()
	database.TunePool()
	if err := database.Migrate(database.DB); err != nil {
		log.Fatalf("❌ AutoMigrate gagal: %v", err)
	}
	database.WarmUpQueries()
	seeds.RunAllSeeds(database.DB, configs.SeedDemoFile)

	attendanceCfg := attendanceService.ConfigFromEnv()
	auth := authService.NewAuthService(authRepo.NewAuthRepository(database.DB), configs.JWTSecret, configs.JWTTTL)

	// ⏱ scheduler setelah DB siap
	var jobs []*cron.Cron
	summary := attendanceService.NewSummaryService(attendanceRepo.NewGormStore(database.DB))
	if c, err := attendanceScheduler.StartSummaryReconcileCron(configs.SummaryReconcileCron, summary); err != nil {
		log.Printf("[WARN] summary reconcile cron tidak jalan: %v", err)
	} else if c != nil {
		jobs = append(jobs, c)
	}
	if c, err := authScheduler.StartBlacklistCleanupCron(configs.TokenBlacklistCleanupCron, auth); err != nil {
		log.Printf("[WARN] token blacklist cleanup tidak jalan: %v", err)
	} else if c != nil {
		jobs = append(jobs, c)
	}

	// ✅ Routes
	routes.SetupRoutes(app, routes.Deps{
		DB:         database.DB,
		JWTSecret:  configs.JWTSecret,
		Auth:       auth,
		Attendance: attendanceCfg,
	})

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	// Start server non-blocking
	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: stop cron (tunggu job jalan), server, lalu tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[INFO] Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, j := range jobs {
		select {
		case <-j.Stop().Done():
		case <-ctx.Done():
		}
	}
	_ = app.ShutdownWithContext(ctx)
	database.Close()
}
