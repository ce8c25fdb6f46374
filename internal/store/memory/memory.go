// Package memory provides in-memory store implementations. They back the
// engine test suites and honor the same contracts as the postgres stores,
// including the (habit, date) uniqueness guard.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"xenoxy/internal/models"
	"xenoxy/internal/store"
	"xenoxy/internal/streak"
)

type HabitStore struct {
	store.Notifier
	mu     sync.RWMutex
	habits map[uuid.UUID]models.Habit
}

func NewHabitStore() *HabitStore {
	return &HabitStore{habits: make(map[uuid.UUID]models.Habit)}
}

func (s *HabitStore) Create(ctx context.Context, h *models.Habit) error {
	s.mu.Lock()
	s.habits[h.ID] = *h
	s.mu.Unlock()
	s.Notify(h.UserID)
	return nil
}

func (s *HabitStore) Update(ctx context.Context, habitID uuid.UUID, userID int, upd store.HabitUpdate) error {
	s.mu.Lock()
	h, ok := s.habits[habitID]
	if !ok || h.UserID != userID {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	if upd.Name != nil {
		h.Name = *upd.Name
	}
	if upd.Description != nil {
		h.Description = upd.Description
	}
	if upd.XPReward != nil {
		h.XPReward = *upd.XPReward
	}
	if upd.Color != nil {
		h.Color = *upd.Color
	}
	if upd.Icon != nil {
		h.Icon = *upd.Icon
	}
	s.habits[habitID] = h
	s.mu.Unlock()
	s.Notify(userID)
	return nil
}

func (s *HabitStore) SoftDelete(ctx context.Context, habitID uuid.UUID, userID int) error {
	s.mu.Lock()
	h, ok := s.habits[habitID]
	if !ok || h.UserID != userID || !h.IsActive {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	h.IsActive = false
	s.habits[habitID] = h
	s.mu.Unlock()
	s.Notify(userID)
	return nil
}

func (s *HabitStore) ListActiveByUser(ctx context.Context, userID int) ([]models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Habit
	for _, h := range s.habits {
		if h.UserID == userID && h.IsActive {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type CompletionStore struct {
	store.Notifier
	mu          sync.RWMutex
	completions map[uuid.UUID]models.HabitCompletion

	// FailCreate forces the next Create to fail, for exercising collaborator
	// failure paths in tests.
	FailCreate error
}

func NewCompletionStore() *CompletionStore {
	return &CompletionStore{completions: make(map[uuid.UUID]models.HabitCompletion)}
}

func (s *CompletionStore) Create(ctx context.Context, c *models.HabitCompletion) error {
	s.mu.Lock()
	if err := s.FailCreate; err != nil {
		s.FailCreate = nil
		s.mu.Unlock()
		return err
	}
	date := streak.DateOf(c.CompletedDate)
	for _, existing := range s.completions {
		if existing.HabitID == c.HabitID && streak.DateOf(existing.CompletedDate).Equal(date) {
			s.mu.Unlock()
			return store.ErrDuplicateCompletion
		}
	}
	s.completions[c.ID] = *c
	s.mu.Unlock()
	s.Notify(c.UserID)
	return nil
}

func (s *CompletionStore) Delete(ctx context.Context, id uuid.UUID, userID int) error {
	s.mu.Lock()
	c, ok := s.completions[id]
	if !ok || c.UserID != userID {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	delete(s.completions, id)
	s.mu.Unlock()
	s.Notify(userID)
	return nil
}

func (s *CompletionStore) ListByUser(ctx context.Context, userID int) ([]models.HabitCompletion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.HabitCompletion
	for _, c := range s.completions {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedDate.After(out[j].CompletedDate) })
	return out, nil
}

// Count reports how many completions exist for a habit, across all dates.
func (s *CompletionStore) Count(habitID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.completions {
		if c.HabitID == habitID {
			n++
		}
	}
	return n
}

type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[int]models.User
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[int]models.User)}
}

func (s *ProfileStore) Put(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[u.ID] = u
}

func (s *ProfileStore) Get(ctx context.Context, userID int) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *ProfileStore) UpdateXP(ctx context.Context, userID, totalXP, level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.profiles[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.TotalXP = totalXP
	u.Level = level
	s.profiles[userID] = u
	return nil
}
