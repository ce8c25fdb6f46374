package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"xenoxy/internal/models"
	"xenoxy/internal/store/memory"
	"xenoxy/internal/tracker"
	"xenoxy/internal/xp"
)

var testDay = time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC)

type handlerFixture struct {
	habits      *memory.HabitStore
	completions *memory.CompletionStore
	profiles    *memory.ProfileStore
	trackers    *tracker.Manager
	engine      *xp.Engine
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	f := &handlerFixture{
		habits:      memory.NewHabitStore(),
		completions: memory.NewCompletionStore(),
		profiles:    memory.NewProfileStore(),
	}
	f.trackers = tracker.NewManager(f.habits, f.completions)
	f.engine = xp.NewEngine(f.profiles)
	f.profiles.Put(models.User{ID: 1, Email: "a@b.c", Level: 1, TotalXP: 0})
	return f
}

func (f *handlerFixture) addHabit(t *testing.T, name string, xpReward int) models.Habit {
	t.Helper()
	h := models.Habit{
		ID:        uuid.New(),
		UserID:    1,
		Name:      name,
		XPReward:  xpReward,
		Color:     defaultColor,
		Icon:      defaultIcon,
		IsActive:  true,
		CreatedAt: testDay.AddDate(0, 0, -7),
		UpdatedAt: testDay.AddDate(0, 0, -7),
	}
	if err := f.habits.Create(context.Background(), &h); err != nil {
		t.Fatalf("create habit: %v", err)
	}
	return h
}

// authedRequest builds a request carrying the authenticated user and the chi
// route params a handler reads.
func authedRequest(method, target, body string, params map[string]string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(r.Context(), "userID", 1)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

func TestCompleteEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.addHabit(t, "run", 20)
	handler := NewHabitsHandler(f.habits, f.trackers, f.engine)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/habits/"+h.ID.String()+"/complete?local_date=2025-06-03", "",
		map[string]string{"habitID": h.ID.String()})
	handler.Complete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp toggleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.XPEarned != 20 || resp.NewTotalXP != 20 || resp.NewLevel != 1 {
		t.Errorf("got %+v, want 20 XP at level 1", resp)
	}
	if resp.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1", resp.CurrentStreak)
	}
	if resp.LocalDate != "2025-06-03" {
		t.Errorf("local_date = %q", resp.LocalDate)
	}
}

func TestCompleteEndpointRejectsSecondToggle(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.addHabit(t, "run", 20)
	handler := NewHabitsHandler(f.habits, f.trackers, f.engine)

	for i, wantStatus := range []int{http.StatusOK, http.StatusConflict} {
		rec := httptest.NewRecorder()
		req := authedRequest(http.MethodPost, "/api/habits/"+h.ID.String()+"/complete?local_date=2025-06-03", "",
			map[string]string{"habitID": h.ID.String()})
		handler.Complete(rec, req)
		if rec.Code != wantStatus {
			t.Fatalf("toggle %d: status = %d, want %d", i+1, rec.Code, wantStatus)
		}
	}

	u, _ := f.profiles.Get(context.Background(), 1)
	if u.TotalXP != 20 {
		t.Errorf("total XP = %d, want 20 after rejected duplicate", u.TotalXP)
	}
}

func TestUncompleteEndpointRestoresXP(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.addHabit(t, "read", 60)
	handler := NewHabitsHandler(f.habits, f.trackers, f.engine)
	params := map[string]string{"habitID": h.ID.String()}

	rec := httptest.NewRecorder()
	handler.Complete(rec, authedRequest(http.MethodPost, "/x?local_date=2025-06-03", "", params))
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: status = %d", rec.Code)
	}
	var completed toggleResponse
	_ = json.NewDecoder(rec.Body).Decode(&completed)
	if completed.NewLevel != 2 || !completed.LeveledUp {
		t.Fatalf("complete = %+v, want level up to 2", completed)
	}

	rec = httptest.NewRecorder()
	handler.Uncomplete(rec, authedRequest(http.MethodPost, "/x?local_date=2025-06-03", "", params))
	if rec.Code != http.StatusOK {
		t.Fatalf("uncomplete: status = %d", rec.Code)
	}
	var undone toggleResponse
	_ = json.NewDecoder(rec.Body).Decode(&undone)
	if undone.XPDeducted != 60 || undone.NewTotalXP != 0 || undone.NewLevel != 1 || !undone.LeveledDown {
		t.Errorf("uncomplete = %+v, want full reversal to level 1", undone)
	}
}

func TestToggleRejectsMalformedInput(t *testing.T) {
	f := newHandlerFixture(t)
	handler := NewHabitsHandler(f.habits, f.trackers, f.engine)

	rec := httptest.NewRecorder()
	handler.Complete(rec, authedRequest(http.MethodPost, "/x", "", map[string]string{"habitID": "not-a-uuid"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad uuid: status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Complete(rec, authedRequest(http.MethodPost, "/x?local_date=June-3rd", "",
		map[string]string{"habitID": uuid.New().String()}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad local_date: status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Complete(rec, authedRequest(http.MethodPost, "/x?local_date=2025-06-03", "",
		map[string]string{"habitID": uuid.New().String()}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown habit: status = %d, want 404", rec.Code)
	}
}

func TestMigrateEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	handler := NewMigrateHandler(f.habits, f.completions)

	body := `{
		"habits": [
			{"client_id": "local-1", "name": "run", "xp_reward": 20},
			{"client_id": "local-2", "name": "read"}
		],
		"completions": [
			{"client_habit_id": "local-1", "completed_date": "2025-06-01", "xp_earned": 20},
			{"client_habit_id": "local-1", "completed_date": "2025-06-02", "xp_earned": 20},
			{"client_habit_id": "local-1", "completed_date": "2025-06-02", "xp_earned": 20},
			{"client_habit_id": "local-2", "completed_date": "2025-06-02", "xp_earned": 10}
		]
	}`
	rec := httptest.NewRecorder()
	handler.MigrateData(rec, authedRequest(http.MethodPost, "/api/migrate", body, nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp migrateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.HabitsImported != 2 || resp.CompletionsImported != 3 || resp.CompletionsSkipped != 1 {
		t.Errorf("got %+v, want 2 habits, 3 completions, 1 skipped", resp)
	}

	habits, _ := f.habits.ListActiveByUser(context.Background(), 1)
	if len(habits) != 2 {
		t.Fatalf("stored habits = %d, want 2", len(habits))
	}
	for _, h := range habits {
		if h.Name == "read" && h.XPReward != defaultXPReward {
			t.Errorf("missing reward not defaulted: %d", h.XPReward)
		}
	}
}

func TestMigrateEndpointRejectsOversizedReward(t *testing.T) {
	f := newHandlerFixture(t)
	handler := NewMigrateHandler(f.habits, f.completions)

	body := `{"habits": [{"client_id": "local-1", "name": "run", "xp_reward": 500}]}`
	rec := httptest.NewRecorder()
	handler.MigrateData(rec, authedRequest(http.MethodPost, "/api/migrate", body, nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	habits, _ := f.habits.ListActiveByUser(context.Background(), 1)
	if len(habits) != 0 {
		t.Errorf("invalid habit was stored")
	}
}

func TestMigrateEndpointRejectsUnknownHabitRef(t *testing.T) {
	f := newHandlerFixture(t)
	handler := NewMigrateHandler(f.habits, f.completions)

	body := `{"completions": [{"client_habit_id": "ghost", "completed_date": "2025-06-01", "xp_earned": 5}]}`
	rec := httptest.NewRecorder()
	handler.MigrateData(rec, authedRequest(http.MethodPost, "/api/migrate", body, nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
