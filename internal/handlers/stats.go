package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jmoiron/sqlx"

	"xenoxy/internal/leveling"
	"xenoxy/internal/tracker"
	"xenoxy/internal/xp"
)

type StatsHandler struct {
	db       *sqlx.DB
	trackers *tracker.Manager
	engine   *xp.Engine
}

func NewStatsHandler(db *sqlx.DB, trackers *tracker.Manager, engine *xp.Engine) *StatsHandler {
	return &StatsHandler{db: db, trackers: trackers, engine: engine}
}

type statsResponse struct {
	ReferenceDate        string  `json:"reference_date"`
	CompletionsToday     int     `json:"completions_today"`
	CompletionsThisWeek  int     `json:"completions_this_week"`
	CompletionsThisMonth int     `json:"completions_this_month"`
	XPThisWeek           int     `json:"xp_this_week"`
	TotalCompletions     int     `json:"total_completions"`
	BestCurrentStreak    int     `json:"best_current_streak"`
	Level                int     `json:"level"`
	TotalXP              int     `json:"total_xp"`
	XPToNextLevel        int     `json:"xp_to_next_level"`
	LevelProgressPercent float64 `json:"level_progress_percent"`
}

// Get aggregates the metrics that power the dashboard. Accepts an optional
// local_date query param (YYYY-MM-DD) to use as the user's "today".
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	refDate, err := referenceDate(r)
	if err != nil {
		http.Error(w, "invalid local_date format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	weekStart := refDate.AddDate(0, 0, -int(refDate.Weekday()))

	aggQuery := `
		SELECT
			COALESCE(COUNT(*) FILTER (WHERE completed_date = $2), 0) AS completions_today,
			COALESCE(COUNT(*) FILTER (WHERE completed_date >= $3 AND completed_date <= $2), 0) AS completions_this_week,
			COALESCE(COUNT(*) FILTER (WHERE date_trunc('month', completed_date) = date_trunc('month', $2::date)), 0) AS completions_this_month,
			COALESCE(SUM(xp_earned) FILTER (WHERE completed_date >= $3 AND completed_date <= $2), 0) AS xp_this_week,
			COALESCE(COUNT(*), 0) AS total_completions
		FROM habit_completions
		WHERE user_id = $1`

	var out statsResponse
	if err := h.db.QueryRowx(aggQuery, userID, refDate, weekStart).Scan(
		&out.CompletionsToday, &out.CompletionsThisWeek, &out.CompletionsThisMonth,
		&out.XPThisWeek, &out.TotalCompletions); err != nil {
		http.Error(w, "could not fetch aggregates", http.StatusInternalServerError)
		return
	}
	out.ReferenceDate = refDate.Format("2006-01-02")

	if tr, err := h.trackers.ForUser(r.Context(), userID); err == nil {
		if view, err := tr.Habits(refDate); err == nil {
			for _, hws := range view {
				if hws.CurrentStreak > out.BestCurrentStreak {
					out.BestCurrentStreak = hws.CurrentStreak
				}
			}
		}
	}

	u, err := h.engine.LoadProfile(r.Context(), userID)
	if err != nil {
		http.Error(w, "could not load profile", http.StatusInternalServerError)
		return
	}
	out.Level = u.Level
	out.TotalXP = u.TotalXP
	out.XPToNextLevel = leveling.XPToNext(u.TotalXP, u.Level)
	out.LevelProgressPercent = leveling.ProgressPercent(u.TotalXP, u.Level)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
