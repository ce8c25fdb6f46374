package handlers

import (
	"time"

	"xenoxy/internal/leveling"
	"xenoxy/internal/models"
)

// UserDTO is the profile shape returned to clients, enriched with the
// derived leveling figures the UI renders.
type UserDTO struct {
	ID                   int     `json:"id"`
	Email                string  `json:"email"`
	FullName             *string `json:"full_name,omitempty"`
	Level                int     `json:"level"`
	TotalXP              int     `json:"total_xp"`
	XPToNextLevel        int     `json:"xp_to_next_level"`
	LevelProgressPercent float64 `json:"level_progress_percent"`
	CurrentPurpose       *string `json:"current_purpose,omitempty"`
	IsAdmin              bool    `json:"is_admin"`
	CreatedAt            string  `json:"created_at"`
}

func ToUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:                   u.ID,
		Email:                u.Email,
		FullName:             u.FullName,
		Level:                u.Level,
		TotalXP:              u.TotalXP,
		XPToNextLevel:        leveling.XPToNext(u.TotalXP, u.Level),
		LevelProgressPercent: leveling.ProgressPercent(u.TotalXP, u.Level),
		CurrentPurpose:       u.CurrentPurpose,
		IsAdmin:              u.IsAdmin,
		CreatedAt:            u.CreatedAt.Format(time.RFC3339),
	}
}
