package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"xenoxy/internal/models"
	"xenoxy/internal/store"
	"xenoxy/internal/streak"
	"xenoxy/internal/tracker"
	"xenoxy/internal/xp"
)

const (
	defaultXPReward = 10
	defaultColor    = "#6366f1"
	defaultIcon     = "Circle"
)

type HabitsHandler struct {
	habits   store.HabitStore
	trackers *tracker.Manager
	engine   *xp.Engine
}

func NewHabitsHandler(habits store.HabitStore, trackers *tracker.Manager, engine *xp.Engine) *HabitsHandler {
	return &HabitsHandler{habits: habits, trackers: trackers, engine: engine}
}

// referenceDate resolves the client's "today": an optional local_date query
// param (YYYY-MM-DD), falling back to the server's UTC date.
func referenceDate(r *http.Request) (time.Time, error) {
	if s := r.URL.Query().Get("local_date"); s != "" {
		return time.Parse("2006-01-02", s)
	}
	return streak.DateOf(time.Now().UTC()), nil
}

func writeToggleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrHabitNotFound):
		http.Error(w, "habit not found", http.StatusNotFound)
	case errors.Is(err, tracker.ErrAlreadyCompleted):
		http.Error(w, "habit already completed today", http.StatusConflict)
	case errors.Is(err, tracker.ErrNotCompleted):
		http.Error(w, "habit not completed today", http.StatusConflict)
	case errors.Is(err, tracker.ErrNotReady):
		http.Error(w, "habit data still loading", http.StatusServiceUnavailable)
	default:
		http.Error(w, "could not update completion", http.StatusInternalServerError)
	}
}

func (h *HabitsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	today, err := referenceDate(r)
	if err != nil {
		http.Error(w, "invalid local_date format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	tr, err := h.trackers.ForUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "could not load habits", http.StatusInternalServerError)
		return
	}
	view, err := tr.Habits(today)
	if err != nil {
		writeToggleError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

type habitRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	XPReward    *int    `json:"xp_reward"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
}

func (h *HabitsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	var req habitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	xpReward := defaultXPReward
	if req.XPReward != nil {
		xpReward = *req.XPReward
	}
	if xpReward < 1 || xpReward > 100 {
		http.Error(w, "xp_reward must be between 1 and 100", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	habit := models.Habit{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		XPReward:    xpReward,
		Color:       defaultColor,
		Icon:        defaultIcon,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Color != nil {
		habit.Color = *req.Color
	}
	if req.Icon != nil {
		habit.Icon = *req.Icon
	}

	if err := h.habits.Create(r.Context(), &habit); err != nil {
		http.Error(w, "could not create habit", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(habit)
}

func (h *HabitsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	habitID, err := uuid.Parse(chi.URLParam(r, "habitID"))
	if err != nil {
		http.Error(w, "invalid habit id", http.StatusBadRequest)
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		XPReward    *int    `json:"xp_reward"`
		Color       *string `json:"color"`
		Icon        *string `json:"icon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Name != nil && *req.Name == "" {
		http.Error(w, "name must not be empty", http.StatusBadRequest)
		return
	}
	if req.XPReward != nil && (*req.XPReward < 1 || *req.XPReward > 100) {
		http.Error(w, "xp_reward must be between 1 and 100", http.StatusBadRequest)
		return
	}

	err = h.habits.Update(r.Context(), habitID, userID, store.HabitUpdate{
		Name:        req.Name,
		Description: req.Description,
		XPReward:    req.XPReward,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "habit not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not update habit", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete soft-deletes: the habit drops out of the active set while its
// completion history stays intact.
func (h *HabitsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	habitID, err := uuid.Parse(chi.URLParam(r, "habitID"))
	if err != nil {
		http.Error(w, "invalid habit id", http.StatusBadRequest)
		return
	}
	if err := h.habits.SoftDelete(r.Context(), habitID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "habit not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not delete habit", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type toggleResponse struct {
	XPEarned      int    `json:"xp_earned,omitempty"`
	XPDeducted    int    `json:"xp_deducted,omitempty"`
	NewTotalXP    int    `json:"new_total_xp"`
	NewLevel      int    `json:"new_level"`
	LeveledUp     bool   `json:"leveled_up"`
	LeveledDown   bool   `json:"leveled_down"`
	CurrentStreak int    `json:"current_streak"`
	LocalDate     string `json:"local_date"`
}

func (h *HabitsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, true)
}

func (h *HabitsHandler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, false)
}

func (h *HabitsHandler) toggle(w http.ResponseWriter, r *http.Request, complete bool) {
	userID := r.Context().Value("userID").(int)
	habitID, err := uuid.Parse(chi.URLParam(r, "habitID"))
	if err != nil {
		http.Error(w, "invalid habit id", http.StatusBadRequest)
		return
	}
	today, err := referenceDate(r)
	if err != nil {
		http.Error(w, "invalid local_date format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	tr, err := h.trackers.ForUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "could not load habits", http.StatusInternalServerError)
		return
	}

	var delta int
	if complete {
		delta, err = tr.Complete(r.Context(), habitID, today)
	} else {
		delta, err = tr.Uncomplete(r.Context(), habitID, today)
	}
	if err != nil {
		writeToggleError(w, err)
		return
	}

	res, err := h.engine.ApplyDelta(r.Context(), userID, delta)
	if err != nil {
		// The completion write already landed; surface the failure but leave
		// it in place. The level reconciler and the next profile load keep
		// totals and level consistent with what converges in the store.
		slog.Error("xp application failed after toggle", slog.Int("user_id", userID), slog.Any("err", err))
		http.Error(w, "could not apply xp", http.StatusInternalServerError)
		return
	}

	resp := toggleResponse{
		NewTotalXP:  res.NewTotalXP,
		NewLevel:    res.NewLevel,
		LeveledUp:   res.LeveledUp,
		LeveledDown: res.LeveledDown,
		LocalDate:   today.Format("2006-01-02"),
	}
	if complete {
		resp.XPEarned = delta
	} else {
		resp.XPDeducted = -delta
	}
	if view, err := tr.Get(habitID, today); err == nil {
		resp.CurrentStreak = view.CurrentStreak
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
