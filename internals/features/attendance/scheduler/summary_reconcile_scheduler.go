// file: internals/features/attendance/scheduler/summary_reconcile_scheduler.go
package scheduler

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"sekolahku_backend/internals/features/attendance/service"
)

const reconcileTimeout = 10 * time.Minute

// Reconciler: cukup ReconcileAll (SummaryService memenuhi ini).
type Reconciler interface {
	ReconcileAll(ctx context.Context) (int, error)
}

// RunReconcile: satu putaran rekonsiliasi summary, dipakai cron & manual.
func RunReconcile(ctx context.Context, r Reconciler) (int, error) {
	start := time.Now()
	n, err := r.ReconcileAll(ctx)
	if err != nil {
		log.Printf("[SUMMARY-RECONCILE] error setelah %d key: %v", n, err)
		return n, err
	}
	log.Printf("[SUMMARY-RECONCILE] %d key dihitung ulang dalam %s", n, time.Since(start).Round(time.Millisecond))
	return n, nil
}

// StartSummaryReconcileCron: panggil dari main.go setelah DB siap.
// Schedule kosong → job tidak dijalankan. Caller memanggil Stop() saat shutdown.
func StartSummaryReconcileCron(schedule string, summary *service.SummaryService) (*cron.Cron, error) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		log.Println("[SUMMARY-RECONCILE] SUMMARY_RECONCILE_CRON kosong, job dimatikan")
		return nil, nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()
		_, _ = RunReconcile(ctx, summary)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[SUMMARY-RECONCILE] started schedule=%q", schedule)
	c.Start()
	return c, nil
}
