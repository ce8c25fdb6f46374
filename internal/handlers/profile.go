package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	"xenoxy/internal/services"
	"xenoxy/internal/xp"
)

type ProfileHandler struct {
	db     *sqlx.DB
	engine *xp.Engine
	encSvc *services.EncryptionService
}

func NewProfileHandler(db *sqlx.DB, engine *xp.Engine, encSvc *services.EncryptionService) *ProfileHandler {
	return &ProfileHandler{db: db, engine: engine, encSvc: encSvc}
}

// GetMe returns the current user's profile. The load goes through the XP
// engine so a stale stored level is repaired before the response is built.
func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	u, err := h.engine.LoadProfile(r.Context(), userID)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err := h.encSvc.DecryptUser(u); err != nil {
		http.Error(w, "could not decrypt user data", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ToUserDTO(*u))
}

// UpdateMe updates provided fields on the current user's profile.
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	var body struct {
		FullName       *string `json:"full_name"`
		CurrentPurpose *string `json:"current_purpose"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	setClauses := []string{}
	args := []interface{}{}
	if body.FullName != nil {
		args = append(args, *body.FullName)
		setClauses = append(setClauses, fmt.Sprintf("full_name=$%d", len(args)))
	}
	if body.CurrentPurpose != nil {
		encrypted, err := h.encSvc.EncryptPurpose(*body.CurrentPurpose)
		if err != nil {
			http.Error(w, "could not encrypt purpose", http.StatusInternalServerError)
			return
		}
		args = append(args, encrypted)
		setClauses = append(setClauses, fmt.Sprintf("current_purpose=$%d", len(args)))
	}
	if len(setClauses) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	query := "UPDATE users SET "
	for i, c := range setClauses {
		if i > 0 {
			query += ", "
		}
		query += c
	}
	args = append(args, userID)
	query += fmt.Sprintf(" WHERE id=$%d", len(args))

	if _, err := h.db.Exec(query, args...); err != nil {
		http.Error(w, "could not update", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
