// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartReconciliationScheduler runs a periodic read-only audit comparing
// every UserXP.total_xp against the per-user ledger sum. The two are
// written in one transaction everywhere, so any drift it logs means a bug
// or out-of-band data surgery. It repairs nothing — it only reports.
func (s *ProgressionService) StartReconciliationScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			type drift struct {
				UserID    string
				TotalXP   int64
				LedgerSum int64
			}
			var rows []drift
			err := s.DB.Raw(`
				SELECT ux.user_id,
				       ux.total_xp,
				       COALESCE(SUM(ph.amount), 0) AS ledger_sum
				FROM user_xps ux
				LEFT JOIN points_histories ph ON ph.user_id = ux.user_id
				WHERE ux.deleted_at IS NULL
				GROUP BY ux.user_id, ux.total_xp
				HAVING ux.total_xp <> COALESCE(SUM(ph.amount), 0)
			`).Scan(&rows).Error
			if err != nil {
				log.Printf("[Reconcile] DB error: %v", err)
				return
			}

			if len(rows) == 0 {
				log.Println("[Reconcile] ✅ all aggregates match the ledger")
				return
			}
			for _, r := range rows {
				log.Printf("[Reconcile] ❌ user %s: cached total_xp=%d but ledger sum=%d",
					r.UserID, r.TotalXP, r.LedgerSum)
			}
		}),
	)
}
