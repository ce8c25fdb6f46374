package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
)

type AdminHandler struct {
	db *sqlx.DB
}

func NewAdminHandler(db *sqlx.DB) *AdminHandler { return &AdminHandler{db: db} }

type adminOverview struct {
	TotalUsers          int `json:"total_users"`
	TotalHabits         int `json:"total_habits"`
	TotalCompletions    int `json:"total_completions"`
	ActiveUsersThisWeek int `json:"active_users_this_week"`
	CompletionsThisWeek int `json:"completions_this_week"`
}

func (h *AdminHandler) mustBeAdmin(userID int) (bool, error) {
	var isAdmin bool
	if err := h.db.QueryRowx(`SELECT is_admin FROM users WHERE id=$1`, userID).Scan(&isAdmin); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return isAdmin, nil
}

// Overview returns administrative statistics (admin only).
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	if ok, err := h.mustBeAdmin(userID); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	} else if !ok {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))

	var out adminOverview
	if err := h.db.QueryRowx(`SELECT COUNT(*) FROM users`).Scan(&out.TotalUsers); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if err := h.db.QueryRowx(`SELECT COUNT(*) FROM habits WHERE is_active`).Scan(&out.TotalHabits); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if err := h.db.QueryRowx(`SELECT COUNT(*) FROM habit_completions`).Scan(&out.TotalCompletions); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if err := h.db.QueryRowx(`SELECT COUNT(DISTINCT user_id) FROM habit_completions WHERE completed_date >= $1`, weekStart).Scan(&out.ActiveUsersThisWeek); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if err := h.db.QueryRowx(`SELECT COUNT(*) FROM habit_completions WHERE completed_date >= $1`, weekStart).Scan(&out.CompletionsThisWeek); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
