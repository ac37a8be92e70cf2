package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Purger: sumber pembersihan token_blacklist (AuthService di produksi).
type Purger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// RunBlacklistCleanup: satu putaran pembersihan.
func RunBlacklistCleanup(ctx context.Context, p Purger) (int64, error) {
	log.Println("[CLEANUP] Menjalankan pembersihan token_blacklist...")
	n, err := p.PurgeExpiredTokens(ctx)
	if err != nil {
		log.Printf("[CLEANUP ERROR] Gagal hapus token: %v", err)
		return 0, err
	}
	if n > 0 {
		log.Printf("[CLEANUP] %d token kadaluarsa dihapus", n)
	} else {
		log.Println("[CLEANUP] Tidak ada token yang memenuhi syarat dihapus")
	}
	return n, nil
}

// StartBlacklistCleanupCron: schedule kosong = nonaktif.
func StartBlacklistCleanupCron(schedule string, p Purger) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_, _ = RunBlacklistCleanup(ctx, p)
	}); err != nil {
		return nil, err
	}
	c.Start()
	log.Printf("[CLEANUP] token_blacklist cleanup terjadwal: %s", schedule)
	return c, nil
}
