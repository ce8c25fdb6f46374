package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"xenoxy/internal/coach"
	"xenoxy/internal/models"
	"xenoxy/internal/services"
	"xenoxy/internal/streak"
	"xenoxy/internal/tracker"
	"xenoxy/internal/xp"
)

// fallbackReply is returned when the chat backend is unreachable, so a coach
// outage never surfaces as a request failure.
const fallbackReply = "Sorry, I encountered an error while processing your request."

type CoachHandler struct {
	client   *coach.Client
	engine   *xp.Engine
	trackers *tracker.Manager
	encSvc   *services.EncryptionService
}

func NewCoachHandler(client *coach.Client, engine *xp.Engine, trackers *tracker.Manager, encSvc *services.EncryptionService) *CoachHandler {
	return &CoachHandler{client: client, engine: engine, trackers: trackers, encSvc: encSvc}
}

// Chat prepends the coach system prompt built from the user's profile and
// active habits, then forwards the conversation.
func (h *CoachHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	var body struct {
		Messages []coach.Message `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Messages) == 0 {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	u, err := h.engine.LoadProfile(r.Context(), userID)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err := h.encSvc.DecryptUser(u); err != nil {
		http.Error(w, "could not decrypt user data", http.StatusInternalServerError)
		return
	}

	var habits []models.HabitWithStats
	if tr, err := h.trackers.ForUser(r.Context(), userID); err == nil {
		if view, err := tr.Habits(streak.DateOf(time.Now().UTC())); err == nil {
			habits = view
		}
	}

	messages := append([]coach.Message{
		{Role: "system", Content: coach.SystemPrompt(u, habits)},
	}, body.Messages...)

	reply, err := h.client.Send(r.Context(), messages)
	if err != nil {
		slog.Warn("coach chat failed", slog.Int("user_id", userID), slog.Any("err", err))
		reply = fallbackReply
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"reply": reply})
}
