package xp

import (
	"context"
	"testing"

	"xenoxy/internal/models"
	"xenoxy/internal/store/memory"
)

func newEngine(t *testing.T, totalXP, level int) (*Engine, *memory.ProfileStore) {
	t.Helper()
	profiles := memory.NewProfileStore()
	profiles.Put(models.User{ID: 1, Email: "a@b.c", Level: level, TotalXP: totalXP})
	return NewEngine(profiles), profiles
}

func TestApplyDeltaLevelsUp(t *testing.T) {
	e, profiles := newEngine(t, 45, 1)

	res, err := e.ApplyDelta(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if res.NewTotalXP != 55 || res.NewLevel != 2 || !res.LeveledUp || res.LeveledDown {
		t.Errorf("got %+v, want total 55, level 2, leveled up", res)
	}

	u, err := profiles.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.TotalXP != 55 || u.Level != 2 {
		t.Errorf("persisted (%d, %d), want (55, 2)", u.TotalXP, u.Level)
	}
}

func TestApplyDeltaClampsAtZero(t *testing.T) {
	e, _ := newEngine(t, 5, 1)
	res, err := e.ApplyDelta(context.Background(), 1, -20)
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if res.NewTotalXP != 0 || res.NewLevel != 1 {
		t.Errorf("got %+v, want total clamped to 0 at level 1", res)
	}
}

func TestApplyDeltaLevelsDown(t *testing.T) {
	e, _ := newEngine(t, 55, 2)
	res, err := e.ApplyDelta(context.Background(), 1, -10)
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if res.NewTotalXP != 45 || res.NewLevel != 1 || !res.LeveledDown || res.LeveledUp {
		t.Errorf("got %+v, want total 45, level 1, leveled down", res)
	}
}

func TestApplyDeltaCanJumpSeveralLevels(t *testing.T) {
	e, _ := newEngine(t, 0, 1)
	res, err := e.ApplyDelta(context.Background(), 1, 250)
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if res.NewLevel != 5 || !res.LeveledUp || res.LeveledDown {
		t.Errorf("got %+v, want a single jump to level 5", res)
	}
}

func TestReconcileLevelRepairsStaleLevel(t *testing.T) {
	e, profiles := newEngine(t, 100, 1) // 100 XP is level 3

	u, err := e.LoadProfile(context.Background(), 1)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if u.Level != 3 {
		t.Errorf("level after load = %d, want repaired to 3", u.Level)
	}
	stored, _ := profiles.Get(context.Background(), 1)
	if stored.Level != 3 {
		t.Errorf("repair not persisted: stored level = %d", stored.Level)
	}
}

func TestReconcileLevelNoopWhenConsistent(t *testing.T) {
	e, _ := newEngine(t, 55, 2)
	u, _ := e.profiles.Get(context.Background(), 1)
	repaired, err := e.ReconcileLevel(context.Background(), u)
	if err != nil {
		t.Fatalf("ReconcileLevel: %v", err)
	}
	if repaired {
		t.Error("repair fired on a consistent profile")
	}
}
