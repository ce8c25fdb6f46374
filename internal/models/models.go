package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              int       `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`         // Encrypted in DB
	EmailBlindIndex string    `db:"email_blind_index" json:"-"` // HMAC hash for searching
	PasswordHash    string    `db:"password_hash" json:"-"`
	FullName        *string   `db:"full_name" json:"full_name,omitempty"`
	Level           int       `db:"level" json:"level"`
	TotalXP         int       `db:"total_xp" json:"total_xp"`
	CurrentPurpose  *string   `db:"current_purpose" json:"current_purpose,omitempty"` // Encrypted in DB
	IsAdmin         bool      `db:"is_admin" json:"is_admin"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type Habit struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      int       `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	XPReward    int       `db:"xp_reward" json:"xp_reward"`
	Color       string    `db:"color" json:"color"`
	Icon        string    `db:"icon" json:"icon"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// HabitCompletion records that a habit was done on a specific calendar date.
// CompletedDate carries no time-of-day component; at most one completion
// exists per (habit, date) pair.
type HabitCompletion struct {
	ID            uuid.UUID `db:"id" json:"id"`
	HabitID       uuid.UUID `db:"habit_id" json:"habit_id"`
	UserID        int       `db:"user_id" json:"user_id"`
	CompletedDate time.Time `db:"completed_date" json:"completed_date"`
	XPEarned      int       `db:"xp_earned" json:"xp_earned"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// HabitWithStats is the derived per-habit view. It is recomputed in full from
// the habit and completion collections, never patched in place.
type HabitWithStats struct {
	Habit
	CompletedToday    bool       `json:"completed_today"`
	CurrentStreak     int        `json:"current_streak"`
	TotalCompletions  int        `json:"total_completions"`
	TodayCompletionID *uuid.UUID `json:"today_completion_id,omitempty"`
}
