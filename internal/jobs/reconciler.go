// Package jobs holds background maintenance tasks.
package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	"xenoxy/internal/leveling"
)

// LevelReconciler periodically sweeps all profiles and repairs stored levels
// that disagree with the level derived from total XP. It complements the
// on-read repair: rows only ever touched by manual edits or written under an
// older threshold table still converge.
type LevelReconciler struct {
	db       *sqlx.DB
	cron     *cron.Cron
	interval time.Duration
}

func NewLevelReconciler(db *sqlx.DB, interval time.Duration) *LevelReconciler {
	return &LevelReconciler{
		db:       db,
		cron:     cron.New(),
		interval: interval,
	}
}

func (r *LevelReconciler) Start() error {
	cronExpr := fmt.Sprintf("@every %s", r.interval.String())
	if _, err := r.cron.AddFunc(cronExpr, r.sweep); err != nil {
		return fmt.Errorf("failed to schedule level reconciliation: %w", err)
	}
	r.cron.Start()
	slog.Info("level reconciler started", slog.Duration("interval", r.interval))
	return nil
}

func (r *LevelReconciler) Stop() {
	r.cron.Stop()
}

func (r *LevelReconciler) sweep() {
	rows, err := r.db.Queryx(`SELECT id, total_xp, level FROM users`)
	if err != nil {
		slog.Error("level sweep query failed", slog.Any("err", err))
		return
	}
	defer rows.Close()

	repaired := 0
	for rows.Next() {
		var id, totalXP, level int
		if err := rows.Scan(&id, &totalXP, &level); err != nil {
			continue
		}
		correct := leveling.LevelForXP(totalXP)
		if correct == level {
			continue
		}
		if _, err := r.db.Exec(`UPDATE users SET level=$1 WHERE id=$2`, correct, id); err != nil {
			slog.Error("level repair failed", slog.Int("user_id", id), slog.Any("err", err))
			continue
		}
		repaired++
	}
	if repaired > 0 {
		slog.Info("level sweep repaired stale levels", slog.Int("count", repaired))
	}
}
