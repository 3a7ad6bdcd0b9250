package mcp

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/guitardaily/internal/logging"
	"github.com/meltforce/guitardaily/internal/models"
)

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

var testNow = time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)

// fakeSource is an in-memory DataSource keyed by user.
type fakeSource struct {
	exercises map[int][]models.Exercise
	attempts  map[int][]models.Attempt
	sessions  map[int][]models.Session
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		exercises: map[int][]models.Exercise{},
		attempts:  map[int][]models.Attempt{},
		sessions:  map[int][]models.Session{},
	}
}

func (f *fakeSource) ListExercises(_ context.Context, uid int) ([]models.Exercise, error) {
	return f.exercises[uid], nil
}

func (f *fakeSource) ListAttempts(_ context.Context, uid, limit int) ([]models.Attempt, error) {
	out := append([]models.Attempt(nil), f.attempts[uid]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSource) InsertAttempt(_ context.Context, uid int, a models.Attempt) (bool, error) {
	f.attempts[uid] = append(f.attempts[uid], a)
	return true, nil
}

func (f *fakeSource) ListSessions(_ context.Context, uid, limit int) ([]models.Session, error) {
	out := f.sessions[uid]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSource) InsertSession(_ context.Context, uid int, s models.Session) (bool, error) {
	f.sessions[uid] = append([]models.Session{s}, f.sessions[uid]...)
	return true, nil
}

func exercise(id string, minutes int, updated time.Time, tags ...string) models.Exercise {
	e := models.NewExercise(updated)
	e.ID = id
	e.Title = "Drill " + id
	e.EstMinutes = minutes
	e.Tags = tags
	return e
}

func attemptOn(id, exerciseID string, ts time.Time) models.Attempt {
	return models.Attempt{ID: id, ExerciseID: exerciseID, BPMUsed: 90, Status: models.StatusDone, Timestamp: ts}
}

func newTestHandlers(ds DataSource) *handlers {
	return &handlers{
		ds:   ds,
		log:  logging.Discard(),
		now:  func() time.Time { return testNow },
		opts: Options{DefaultMinutes: 30, MaxMinutes: 240},
	}
}

func callTool(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), uid int, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := fn(WithUserID(context.Background(), uid), req)
	if err != nil {
		t.Fatalf("tool returned error: %v", err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func decodeResult(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

// TestListExercisesTagFilter filters case-insensitively and scopes by user.
func TestListExercisesTagFilter(t *testing.T) {
	ds := newFakeSource()
	ds.exercises[1] = []models.Exercise{
		exercise("a", 3, testNow, "Warmup"),
		exercise("b", 3, testNow, "scale"),
	}
	ds.exercises[2] = []models.Exercise{exercise("c", 3, testNow, "warmup")}
	h := newTestHandlers(ds)

	var got []models.Exercise
	decodeResult(t, callTool(t, h.listExercises, 1, map[string]any{"tag": "warmup"}), &got)
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("filtered = %+v", got)
	}
}

// TestPlanSession plans without saving unless asked.
func TestPlanSession(t *testing.T) {
	ds := newFakeSource()
	ds.exercises[1] = []models.Exercise{
		exercise("new", 5, testNow),
		exercise("old", 4, testNow.Add(-72*time.Hour)),
	}
	h := newTestHandlers(ds)

	var resp struct {
		Session models.Session `json:"session"`
		Saved   bool           `json:"saved"`
	}
	decodeResult(t, callTool(t, h.planSession, 1, map[string]any{"minutes": 12.0}), &resp)
	if resp.Saved || len(ds.sessions[1]) != 0 {
		t.Error("plan was saved without save=true")
	}
	if resp.Session.TotalPlanned != 12 || resp.Session.ScheduledMinutes() != 12 {
		t.Errorf("session = %+v", resp.Session)
	}
	if resp.Session.Items[0].ExerciseID != "old" {
		t.Errorf("first item = %q, want the least recently updated", resp.Session.Items[0].ExerciseID)
	}

	decodeResult(t, callTool(t, h.planSession, 1, map[string]any{"save": true}), &resp)
	if !resp.Saved || len(ds.sessions[1]) != 1 || resp.Session.TotalPlanned != 30 {
		t.Errorf("saved = %v, sessions = %d, total = %d", resp.Saved, len(ds.sessions[1]), resp.Session.TotalPlanned)
	}

	if res := callTool(t, h.planSession, 1, map[string]any{"minutes": 500.0}); !res.IsError {
		t.Error("expected error for 500 minutes")
	}
}

// TestPlanSessionConfiguredLimits follows the server's session length
// settings, including an unbounded maximum.
func TestPlanSessionConfiguredLimits(t *testing.T) {
	ds := newFakeSource()
	ds.exercises[1] = []models.Exercise{exercise("a", 5, testNow)}
	h := newTestHandlers(ds)
	h.opts = Options{DefaultMinutes: 45, MaxMinutes: 60}

	var resp struct {
		Session models.Session `json:"session"`
	}
	decodeResult(t, callTool(t, h.planSession, 1, nil), &resp)
	if resp.Session.TotalPlanned != 45 {
		t.Errorf("default total = %d, want 45", resp.Session.TotalPlanned)
	}
	res := callTool(t, h.planSession, 1, map[string]any{"minutes": 61.0})
	if !res.IsError || !strings.Contains(resultText(t, res), "between 1 and 60") {
		t.Errorf("61 minutes: %s", resultText(t, res))
	}

	h.opts.MaxMinutes = 0
	decodeResult(t, callTool(t, h.planSession, 1, map[string]any{"minutes": 500.0}), &resp)
	if resp.Session.TotalPlanned != 500 {
		t.Errorf("unbounded total = %d, want 500", resp.Session.TotalPlanned)
	}
	res = callTool(t, h.planSession, 1, map[string]any{"minutes": 0.0})
	if !res.IsError || !strings.Contains(resultText(t, res), "positive") {
		t.Errorf("0 minutes: %s", resultText(t, res))
	}
}

// TestLogAttemptAndStreak logs with the default tempo and reports the streak.
func TestLogAttemptAndStreak(t *testing.T) {
	ds := newFakeSource()
	ds.exercises[1] = []models.Exercise{exercise("a", 3, testNow)}
	ds.attempts[1] = []models.Attempt{attemptOn("y", "a", testNow.AddDate(0, 0, -1))}
	h := newTestHandlers(ds)

	var streak map[string]any
	decodeResult(t, callTool(t, h.getStreak, 1, nil), &streak)
	if streak["current"] != 0.0 || streak["at_risk"] != true {
		t.Errorf("before = %v", streak)
	}

	var logged struct {
		Attempt models.Attempt `json:"attempt"`
		Streak  struct {
			Current int `json:"current"`
			Best    int `json:"best"`
		} `json:"streak"`
	}
	decodeResult(t, callTool(t, h.logAttempt, 1, map[string]any{"exercise_id": "a", "status": "partial"}), &logged)
	if logged.Attempt.BPMUsed != 90 || logged.Attempt.Status != models.StatusPartial {
		t.Errorf("attempt = %+v", logged.Attempt)
	}
	if logged.Streak.Current != 2 || logged.Streak.Best != 2 {
		t.Errorf("streak = %+v", logged.Streak)
	}

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing exercise", map[string]any{"exercise_id": "zzz", "status": "done"}},
		{"bad status", map[string]any{"exercise_id": "a", "status": "meh"}},
		{"no status", map[string]any{"exercise_id": "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if res := callTool(t, h.logAttempt, 1, tt.args); !res.IsError {
				t.Error("expected tool error")
			}
		})
	}
}

// TestRecentAttemptsAndProgress filters by exercise and aggregates per exercise.
func TestRecentAttemptsAndProgress(t *testing.T) {
	ds := newFakeSource()
	ds.exercises[1] = []models.Exercise{exercise("a", 3, testNow), exercise("b", 3, testNow)}
	ds.attempts[1] = []models.Attempt{
		attemptOn("1", "a", testNow.Add(-3*time.Hour)),
		attemptOn("2", "b", testNow.Add(-2*time.Hour)),
		attemptOn("3", "a", testNow.Add(-1*time.Hour)),
	}
	h := newTestHandlers(ds)

	var recent []models.Attempt
	decodeResult(t, callTool(t, h.getRecentAttempts, 1, map[string]any{"exercise_id": "a", "limit": 1.0}), &recent)
	if len(recent) != 1 || recent[0].ID != "3" {
		t.Errorf("recent = %+v", recent)
	}

	var progress struct {
		Attempts int `json:"attempts"`
		Done     int `json:"done"`
	}
	decodeResult(t, callTool(t, h.getExerciseProgress, 1, map[string]any{"exercise_id": "a"}), &progress)
	if progress.Attempts != 2 || progress.Done != 2 {
		t.Errorf("progress = %+v", progress)
	}
}

// TestGetScaleNotes spells scales and rejects unknown roots.
func TestGetScaleNotes(t *testing.T) {
	h := newTestHandlers(newFakeSource())
	var resp struct {
		Notes []string `json:"notes"`
	}
	decodeResult(t, callTool(t, h.getScaleNotes, 1, map[string]any{"root": "Bb", "type": "major"}), &resp)
	if len(resp.Notes) != 7 || resp.Notes[0] != "A#" || resp.Notes[3] != "D#" {
		t.Errorf("notes = %v", resp.Notes)
	}
	if res := callTool(t, h.getScaleNotes, 1, map[string]any{"root": "X"}); !res.IsError {
		t.Error("expected error for unknown root")
	}
}

// TestPracticeSummaryResource reports today's attempts and the last session.
func TestPracticeSummaryResource(t *testing.T) {
	ds := newFakeSource()
	ds.attempts[1] = []models.Attempt{
		attemptOn("1", "a", testNow.Add(-time.Hour)),
		attemptOn("2", "a", testNow.AddDate(0, 0, -1)),
	}
	ds.sessions[1] = []models.Session{{ID: "s1", Date: "2025-06-14", TotalPlanned: 10}}
	h := newTestHandlers(ds)

	var req mcp.ReadResourceRequest
	req.Params.URI = "guitardaily://practice_summary"
	contents, err := h.practiceSummary(WithUserID(context.Background(), 1), req)
	if err != nil {
		t.Fatal(err)
	}
	text := contents[0].(mcp.TextResourceContents).Text

	var summary struct {
		AttemptsToday int `json:"attempts_today"`
		Streak        struct {
			Current int `json:"current"`
		} `json:"streak"`
		LastSession *models.Session `json:"last_session"`
	}
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		t.Fatal(err)
	}
	if summary.AttemptsToday != 1 || summary.Streak.Current != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.LastSession == nil || summary.LastSession.ID != "s1" {
		t.Errorf("last session = %+v", summary.LastSession)
	}
}
