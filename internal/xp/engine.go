// Package xp applies experience deltas to a profile and keeps the stored
// level consistent with the leveling table.
package xp

import (
	"context"

	"xenoxy/internal/leveling"
	"xenoxy/internal/models"
	"xenoxy/internal/store"
)

type Engine struct {
	profiles store.ProfileStore
}

func NewEngine(profiles store.ProfileStore) *Engine {
	return &Engine{profiles: profiles}
}

// Result describes one XP application. A large delta can cross several level
// boundaries in a single jump; at most one of LeveledUp/LeveledDown is set.
type Result struct {
	NewTotalXP  int  `json:"new_total_xp"`
	NewLevel    int  `json:"new_level"`
	LeveledUp   bool `json:"leveled_up"`
	LeveledDown bool `json:"leveled_down"`
}

// ApplyDelta adds delta (positive or negative) to the profile's cumulative XP,
// clamped at zero, recomputes the level, and persists both.
func (e *Engine) ApplyDelta(ctx context.Context, userID, delta int) (Result, error) {
	u, err := e.LoadProfile(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	newTotal := u.TotalXP + delta
	if newTotal < 0 {
		newTotal = 0
	}
	newLevel := leveling.LevelForXP(newTotal)
	if err := e.profiles.UpdateXP(ctx, userID, newTotal, newLevel); err != nil {
		return Result{}, err
	}
	return Result{
		NewTotalXP:  newTotal,
		NewLevel:    newLevel,
		LeveledUp:   newLevel > u.Level,
		LeveledDown: newLevel < u.Level,
	}, nil
}

// LoadProfile fetches the profile and runs the level read-repair before
// returning it, so callers always see a level that matches totalXP.
func (e *Engine) LoadProfile(ctx context.Context, userID int) (*models.User, error) {
	u, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := e.ReconcileLevel(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ReconcileLevel corrects a stored level that disagrees with the level derived
// from totalXP, persisting the fix. Stale levels come from older threshold
// tables or manual data edits; the mismatch is healed silently, not reported
// as an error. Returns whether a repair was written.
func (e *Engine) ReconcileLevel(ctx context.Context, u *models.User) (bool, error) {
	correct := leveling.LevelForXP(u.TotalXP)
	if correct == u.Level {
		return false, nil
	}
	if err := e.profiles.UpdateXP(ctx, u.ID, u.TotalXP, correct); err != nil {
		return false, err
	}
	u.Level = correct
	return true, nil
}
