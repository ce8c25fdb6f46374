package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"xenoxy/internal/models"
	"xenoxy/internal/store"
)

type HabitStore struct {
	store.Notifier
	db *sqlx.DB
}

func NewHabitStore(db *sqlx.DB) *HabitStore {
	return &HabitStore{db: db}
}

func (s *HabitStore) Create(ctx context.Context, h *models.Habit) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO habits (id, user_id, name, description, xp_reward, color, icon, is_active, created_at, updated_at)
	                                 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		h.ID, h.UserID, h.Name, h.Description, h.XPReward, h.Color, h.Icon, h.IsActive, h.CreatedAt, h.UpdatedAt)
	if err != nil {
		return err
	}
	s.Notify(h.UserID)
	return nil
}

func (s *HabitStore) Update(ctx context.Context, habitID uuid.UUID, userID int, upd store.HabitUpdate) error {
	setClauses := []string{}
	args := []interface{}{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		setClauses = append(setClauses, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.XPReward != nil {
		add("xp_reward", *upd.XPReward)
	}
	if upd.Color != nil {
		add("color", *upd.Color)
	}
	if upd.Icon != nil {
		add("icon", *upd.Icon)
	}
	if len(setClauses) == 0 {
		return nil
	}
	setClauses = append(setClauses, "updated_at=NOW()")

	query := "UPDATE habits SET "
	for i, c := range setClauses {
		if i > 0 {
			query += ", "
		}
		query += c
	}
	args = append(args, habitID, userID)
	query += fmt.Sprintf(" WHERE id=$%d AND user_id=$%d", len(args)-1, len(args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	s.Notify(userID)
	return nil
}

func (s *HabitStore) SoftDelete(ctx context.Context, habitID uuid.UUID, userID int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE habits SET is_active=false, updated_at=NOW() WHERE id=$1 AND user_id=$2 AND is_active=true`, habitID, userID)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	s.Notify(userID)
	return nil
}

func (s *HabitStore) ListActiveByUser(ctx context.Context, userID int) ([]models.Habit, error) {
	var habits []models.Habit
	err := s.db.SelectContext(ctx, &habits, `SELECT id, user_id, name, description, xp_reward, color, icon, is_active, created_at, updated_at
	                                         FROM habits WHERE user_id=$1 AND is_active=true ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return habits, nil
}
