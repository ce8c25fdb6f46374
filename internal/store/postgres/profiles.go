package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"xenoxy/internal/models"
	"xenoxy/internal/store"
)

type ProfileStore struct {
	db *sqlx.DB
}

func NewProfileStore(db *sqlx.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) Get(ctx context.Context, userID int) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT id, email, email_blind_index, password_hash, full_name, level, total_xp, current_purpose, is_admin, created_at
	                                 FROM users WHERE id=$1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *ProfileStore) UpdateXP(ctx context.Context, userID, totalXP, level int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET total_xp=$1, level=$2 WHERE id=$3`, totalXP, level, userID)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}
