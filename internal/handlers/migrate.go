package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"xenoxy/internal/models"
	"xenoxy/internal/store"
	"xenoxy/internal/streak"
)

type MigrateHandler struct {
	habits      store.HabitStore
	completions store.CompletionStore
}

func NewMigrateHandler(habits store.HabitStore, completions store.CompletionStore) *MigrateHandler {
	return &MigrateHandler{habits: habits, completions: completions}
}

type MigratedHabit struct {
	ClientID    string  `json:"client_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	XPReward    int     `json:"xp_reward"`
	Color       string  `json:"color"`
	Icon        string  `json:"icon"`
}

type MigratedCompletion struct {
	ClientHabitID string `json:"client_habit_id"`
	CompletedDate string `json:"completed_date"` // YYYY-MM-DD
	XPEarned      int    `json:"xp_earned"`
}

type MigrateRequest struct {
	Habits      []MigratedHabit      `json:"habits"`
	Completions []MigratedCompletion `json:"completions"`
}

type migrateResponse struct {
	HabitsImported      int `json:"habits_imported"`
	CompletionsImported int `json:"completions_imported"`
	CompletionsSkipped  int `json:"completions_skipped"`
}

// MigrateData imports habits and completion history exported from a client-side
// store. Completions reference habits by the client's own IDs; duplicates for
// a (habit, date) pair already present are skipped rather than rejected.
func (h *MigrateHandler) MigrateData(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	var req MigrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Habits) == 0 && len(req.Completions) == 0 {
		http.Error(w, "no habits or completions provided", http.StatusBadRequest)
		return
	}

	var resp migrateResponse
	idsByClient := make(map[string]uuid.UUID, len(req.Habits))
	now := time.Now().UTC()

	for _, mh := range req.Habits {
		if mh.ClientID == "" || mh.Name == "" {
			http.Error(w, fmt.Sprintf("invalid habit data: %+v", mh), http.StatusBadRequest)
			return
		}
		if mh.XPReward > 100 {
			http.Error(w, "xp_reward must be between 1 and 100", http.StatusBadRequest)
			return
		}
		habit := models.Habit{
			ID:        uuid.New(),
			UserID:    userID,
			Name:      mh.Name,
			XPReward:  mh.XPReward,
			Color:     mh.Color,
			Icon:      mh.Icon,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if mh.Description != nil && *mh.Description != "" {
			habit.Description = mh.Description
		}
		if habit.XPReward <= 0 {
			habit.XPReward = defaultXPReward
		}
		if habit.Color == "" {
			habit.Color = defaultColor
		}
		if habit.Icon == "" {
			habit.Icon = defaultIcon
		}
		if err := h.habits.Create(r.Context(), &habit); err != nil {
			http.Error(w, "could not save habit", http.StatusInternalServerError)
			return
		}
		idsByClient[mh.ClientID] = habit.ID
		resp.HabitsImported++
	}

	for _, mc := range req.Completions {
		habitID, ok := idsByClient[mc.ClientHabitID]
		if !ok {
			http.Error(w, fmt.Sprintf("completion references unknown habit: %s", mc.ClientHabitID), http.StatusBadRequest)
			return
		}
		parsed, err := time.Parse("2006-01-02", mc.CompletedDate)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid completed_date format: %s", mc.CompletedDate), http.StatusBadRequest)
			return
		}
		if mc.XPEarned < 0 {
			http.Error(w, "xp_earned must not be negative", http.StatusBadRequest)
			return
		}
		comp := models.HabitCompletion{
			ID:            uuid.New(),
			HabitID:       habitID,
			UserID:        userID,
			CompletedDate: streak.DateOf(parsed),
			XPEarned:      mc.XPEarned,
			CreatedAt:     now,
		}
		if err := h.completions.Create(r.Context(), &comp); err != nil {
			if errors.Is(err, store.ErrDuplicateCompletion) {
				resp.CompletionsSkipped++
				continue
			}
			http.Error(w, "could not save completion", http.StatusInternalServerError)
			return
		}
		resp.CompletionsImported++
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}
