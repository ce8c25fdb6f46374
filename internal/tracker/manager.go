package tracker

import (
	"context"
	"log/slog"
	"sync"

	"xenoxy/internal/store"
)

// Manager hands out one Tracker per user and keeps them fed from the store
// change notifications. Trackers live for the life of the process; there is
// no per-request teardown.
type Manager struct {
	habits      store.HabitStore
	completions store.CompletionStore

	mu       sync.Mutex
	trackers map[int]*Tracker
}

func NewManager(habits store.HabitStore, completions store.CompletionStore) *Manager {
	m := &Manager{
		habits:      habits,
		completions: completions,
		trackers:    make(map[int]*Tracker),
	}
	habits.Subscribe(m.onHabitsChanged)
	completions.Subscribe(m.onCompletionsChanged)
	return m
}

// ForUser returns the user's tracker, creating and loading it on first use.
func (m *Manager) ForUser(ctx context.Context, userID int) (*Tracker, error) {
	m.mu.Lock()
	t, ok := m.trackers[userID]
	if !ok {
		t = New(userID, m.habits, m.completions)
		m.trackers[userID] = t
	}
	m.mu.Unlock()

	if !t.Ready() {
		if err := t.Load(ctx); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (m *Manager) lookup(userID int) *Tracker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trackers[userID]
}

func (m *Manager) onHabitsChanged(userID int) {
	if t := m.lookup(userID); t != nil {
		if err := t.RefreshHabits(context.Background()); err != nil {
			slog.Warn("habit refresh failed", slog.Int("user_id", userID), slog.Any("err", err))
		}
	}
}

func (m *Manager) onCompletionsChanged(userID int) {
	if t := m.lookup(userID); t != nil {
		if err := t.RefreshCompletions(context.Background()); err != nil {
			slog.Warn("completion refresh failed", slog.Int("user_id", userID), slog.Any("err", err))
		}
	}
}
