package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"xenoxy/internal/models"
	"xenoxy/internal/store"
)

// uniqueViolation is the postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

type CompletionStore struct {
	store.Notifier
	db *sqlx.DB
}

func NewCompletionStore(db *sqlx.DB) *CompletionStore {
	return &CompletionStore{db: db}
}

// Create inserts one completion. The habit_completions table carries
// UNIQUE(habit_id, completed_date), so the database is the authoritative
// guard against double completion across sessions.
func (s *CompletionStore) Create(ctx context.Context, c *models.HabitCompletion) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO habit_completions (id, habit_id, user_id, completed_date, xp_earned, created_at)
	                                 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.HabitID, c.UserID, c.CompletedDate, c.XPEarned, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return store.ErrDuplicateCompletion
		}
		return err
	}
	s.Notify(c.UserID)
	return nil
}

func (s *CompletionStore) Delete(ctx context.Context, id uuid.UUID, userID int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM habit_completions WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	s.Notify(userID)
	return nil
}

func (s *CompletionStore) ListByUser(ctx context.Context, userID int) ([]models.HabitCompletion, error) {
	var completions []models.HabitCompletion
	err := s.db.SelectContext(ctx, &completions, `SELECT id, habit_id, user_id, completed_date, xp_earned, created_at
	                                              FROM habit_completions WHERE user_id=$1 ORDER BY completed_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	return completions, nil
}
