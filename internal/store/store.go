// Package store defines the persistence contracts the engine depends on,
// plus the change-notification fan-out that feeds per-user trackers.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"xenoxy/internal/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist or is not
	// visible to the requesting user.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateCompletion is returned when a completion already exists for
	// the same (habit, date) pair.
	ErrDuplicateCompletion = errors.New("store: completion already exists for date")
)

// HabitUpdate carries the editable habit fields; nil means "leave unchanged".
type HabitUpdate struct {
	Name        *string
	Description *string
	XPReward    *int
	Color       *string
	Icon        *string
}

type HabitStore interface {
	Create(ctx context.Context, h *models.Habit) error
	Update(ctx context.Context, habitID uuid.UUID, userID int, upd HabitUpdate) error
	// SoftDelete flips is_active off; completion history stays valid.
	SoftDelete(ctx context.Context, habitID uuid.UUID, userID int) error
	ListActiveByUser(ctx context.Context, userID int) ([]models.Habit, error)
	// Subscribe registers a callback invoked after any mutation to the
	// given user's habit set.
	Subscribe(fn func(userID int))
}

type CompletionStore interface {
	Create(ctx context.Context, c *models.HabitCompletion) error
	Delete(ctx context.Context, id uuid.UUID, userID int) error
	ListByUser(ctx context.Context, userID int) ([]models.HabitCompletion, error)
	Subscribe(fn func(userID int))
}

type ProfileStore interface {
	Get(ctx context.Context, userID int) (*models.User, error)
	UpdateXP(ctx context.Context, userID, totalXP, level int) error
}

// Notifier fans out per-user change notifications to subscribers. Callbacks
// run on their own goroutines so a mutation made under a caller-held lock
// cannot deadlock against a subscriber that takes the same lock.
type Notifier struct {
	mu   sync.RWMutex
	subs []func(userID int)
}

func (n *Notifier) Subscribe(fn func(userID int)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

func (n *Notifier) Notify(userID int) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, fn := range n.subs {
		go fn(userID)
	}
}
