// Package tracker maintains a per-user working set of habits and completions,
// derives the HabitWithStats view from it, and implements the daily
// completion toggle with its idempotency guards.
package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"xenoxy/internal/models"
	"xenoxy/internal/store"
	"xenoxy/internal/streak"
)

var (
	ErrNotReady         = errors.New("tracker: habit data not loaded yet")
	ErrHabitNotFound    = errors.New("tracker: habit not found")
	ErrAlreadyCompleted = errors.New("tracker: habit already completed today")
	ErrNotCompleted     = errors.New("tracker: habit not completed today")
)

// Tracker mirrors one user's habit and completion collections read-only and
// recomputes the aggregated view from scratch on demand. Mutations go through
// the stores; on success the local mirror is updated synchronously so a
// second toggle in the same session is rejected before the next store
// notification arrives. A refresh whose store read predates such a mutation
// is discarded via compsRev rather than applied over the newer mirror.
type Tracker struct {
	userID      int
	habits      store.HabitStore
	completions store.CompletionStore

	// refreshMu serializes snapshot refreshes: notifications arrive on
	// unordered goroutines, and two refreshes applied out of read order
	// would let an older snapshot win.
	refreshMu sync.Mutex

	mu                sync.Mutex
	rawHabits         []models.Habit
	comps             []models.HabitCompletion
	compsRev          uint64
	habitsLoaded      bool
	completionsLoaded bool
}

func New(userID int, habits store.HabitStore, completions store.CompletionStore) *Tracker {
	return &Tracker{userID: userID, habits: habits, completions: completions}
}

// Load fetches both collections. The tracker reports no view until both have
// arrived, so a caller never sees a flash of zero-state.
func (t *Tracker) Load(ctx context.Context) error {
	if err := t.RefreshHabits(ctx); err != nil {
		return err
	}
	return t.RefreshCompletions(ctx)
}

func (t *Tracker) RefreshHabits(ctx context.Context) error {
	t.refreshMu.Lock()
	defer t.refreshMu.Unlock()

	habits, err := t.habits.ListActiveByUser(ctx, t.userID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.rawHabits = habits
	t.habitsLoaded = true
	t.mu.Unlock()
	return nil
}

func (t *Tracker) RefreshCompletions(ctx context.Context) error {
	t.refreshMu.Lock()
	defer t.refreshMu.Unlock()

	t.mu.Lock()
	rev := t.compsRev
	t.mu.Unlock()

	comps, err := t.completions.ListByUser(ctx, t.userID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.compsRev != rev {
		// A toggle landed while this snapshot was in flight, so the mirror
		// is newer than the read. Drop the snapshot; the toggle's own
		// notification delivers a fresh one.
		return nil
	}
	t.comps = comps
	t.completionsLoaded = true
	return nil
}

func (t *Tracker) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.habitsLoaded && t.completionsLoaded
}

// Habits returns the aggregated view for the given reference date, most
// recently created habit first.
func (t *Tracker) Habits(today time.Time) ([]models.HabitWithStats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.habitsLoaded || !t.completionsLoaded {
		return nil, ErrNotReady
	}
	return t.aggregate(today), nil
}

// aggregate recomputes HabitWithStats for every habit. Callers hold t.mu.
// rawHabits arrives from the store ordered by creation time descending, and
// the order is preserved here.
func (t *Tracker) aggregate(today time.Time) []models.HabitWithStats {
	today = streak.DateOf(today)
	out := make([]models.HabitWithStats, 0, len(t.rawHabits))
	for _, h := range t.rawHabits {
		var dates []time.Time
		var todayCompletionID *uuid.UUID
		total := 0
		for i := range t.comps {
			c := &t.comps[i]
			if c.HabitID != h.ID {
				continue
			}
			total++
			d := streak.DateOf(c.CompletedDate)
			dates = append(dates, d)
			if d.Equal(today) {
				id := c.ID
				todayCompletionID = &id
			}
		}
		completedToday, current := streak.Calculate(dates, today)
		out = append(out, models.HabitWithStats{
			Habit:             h,
			CompletedToday:    completedToday,
			CurrentStreak:     current,
			TotalCompletions:  total,
			TodayCompletionID: todayCompletionID,
		})
	}
	return out
}

// Get returns the aggregated view for a single habit.
func (t *Tracker) Get(habitID uuid.UUID, today time.Time) (models.HabitWithStats, error) {
	view, err := t.Habits(today)
	if err != nil {
		return models.HabitWithStats{}, err
	}
	for _, h := range view {
		if h.ID == habitID {
			return h, nil
		}
	}
	return models.HabitWithStats{}, ErrHabitNotFound
}

// Complete marks the habit done for today and returns the XP delta the caller
// should apply to the profile. A habit already completed today is rejected
// with no state change. The XP amount recorded is the habit's current reward.
func (t *Tracker) Complete(ctx context.Context, habitID uuid.UUID, today time.Time) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.habitsLoaded || !t.completionsLoaded {
		return 0, ErrNotReady
	}

	var habit *models.Habit
	for i := range t.rawHabits {
		if t.rawHabits[i].ID == habitID {
			habit = &t.rawHabits[i]
			break
		}
	}
	if habit == nil {
		return 0, ErrHabitNotFound
	}

	today = streak.DateOf(today)
	for i := range t.comps {
		if t.comps[i].HabitID == habitID && streak.DateOf(t.comps[i].CompletedDate).Equal(today) {
			return 0, ErrAlreadyCompleted
		}
	}

	c := models.HabitCompletion{
		ID:            uuid.New(),
		HabitID:       habitID,
		UserID:        t.userID,
		CompletedDate: today,
		XPEarned:      habit.XPReward,
		CreatedAt:     time.Now().UTC(),
	}
	if err := t.completions.Create(ctx, &c); err != nil {
		if errors.Is(err, store.ErrDuplicateCompletion) {
			// Another session got there first; converge on its result.
			return 0, ErrAlreadyCompleted
		}
		return 0, err
	}

	// Reflect the write locally before any notification round-trips, closing
	// the window where a second click could pass the guard above.
	t.comps = append([]models.HabitCompletion{c}, t.comps...)
	t.compsRev++
	return c.XPEarned, nil
}

// Uncomplete removes today's completion and returns the (negative) XP delta.
// The amount deducted is what the stored event carried when it was earned,
// not the habit's current reward, which may have been edited since.
func (t *Tracker) Uncomplete(ctx context.Context, habitID uuid.UUID, today time.Time) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.habitsLoaded || !t.completionsLoaded {
		return 0, ErrNotReady
	}

	found := false
	for i := range t.rawHabits {
		if t.rawHabits[i].ID == habitID {
			found = true
			break
		}
	}
	if !found {
		return 0, ErrHabitNotFound
	}

	today = streak.DateOf(today)
	idx := -1
	for i := range t.comps {
		if t.comps[i].HabitID == habitID && streak.DateOf(t.comps[i].CompletedDate).Equal(today) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, ErrNotCompleted
	}

	c := t.comps[idx]
	if err := t.completions.Delete(ctx, c.ID, t.userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The row is already gone; another session removed it. Drop the
			// stale mirror entry so the toggle stays usable.
			t.comps = append(t.comps[:idx:idx], t.comps[idx+1:]...)
			t.compsRev++
			return 0, ErrNotCompleted
		}
		return 0, err
	}
	t.comps = append(t.comps[:idx:idx], t.comps[idx+1:]...)
	t.compsRev++
	return -c.XPEarned, nil
}
