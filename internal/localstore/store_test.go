package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/meltforce/guitardaily/internal/models"
)

var t0 = time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)

func openTest(t *testing.T) (*Store, int) {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	s.now = func() time.Time { return t0 }

	uid, err := s.GetOrCreateUser(context.Background(), "alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("GetOrCreateUser: %v", err)
	}
	return s, uid
}

func testExercise(id string, created time.Time) models.Exercise {
	return models.Exercise{
		ID: id, Title: "Drill " + id, BPMMin: 60, BPMMax: 100, Key: "E",
		EstMinutes: 4, Difficulty: models.DifficultyMedium, Tags: []string{"scale", "alt-picking"},
		CreatedAt: created, UpdatedAt: created,
	}
}

// TestUsers verifies login is the identity key and display names stick.
func TestUsers(t *testing.T) {
	s, uid := openTest(t)
	ctx := context.Background()

	again, err := s.GetOrCreateUser(ctx, "alice@example.com", "")
	if err != nil {
		t.Fatal(err)
	}
	if again != uid {
		t.Errorf("second call returned id %d, want %d", again, uid)
	}
	other, _ := s.GetOrCreateUser(ctx, "bob@example.com", "Bob")
	if other == uid {
		t.Error("different logins should get different ids")
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || users[0].DisplayName != "Alice" {
		t.Errorf("users = %+v", users)
	}
	if !users[0].LastSeen.Equal(t0) {
		t.Errorf("last seen = %v, want %v", users[0].LastSeen, t0)
	}
}

// TestExerciseCRUD covers insert, update, ordering and delete.
func TestExerciseCRUD(t *testing.T) {
	s, uid := openTest(t)
	ctx := context.Background()

	inserted, err := s.UpsertExercise(ctx, uid, testExercise("a", t0))
	if err != nil || !inserted {
		t.Fatalf("insert a: inserted=%v err=%v", inserted, err)
	}
	if _, err := s.UpsertExercise(ctx, uid, testExercise("b", t0.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListExercises(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "b" {
		t.Fatalf("list = %+v, want b first", list)
	}
	if len(list[1].Tags) != 2 || list[1].Tags[1] != "alt-picking" {
		t.Errorf("tags = %v", list[1].Tags)
	}

	upd := testExercise("a", t0)
	upd.Title = "Renamed"
	upd.UpdatedAt = t0.Add(2 * time.Hour)
	inserted, err = s.UpsertExercise(ctx, uid, upd)
	if err != nil || inserted {
		t.Fatalf("update a: inserted=%v err=%v", inserted, err)
	}
	got, err := s.GetExercise(ctx, uid, "a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Renamed" || !got.UpdatedAt.Equal(upd.UpdatedAt) || !got.CreatedAt.Equal(t0) {
		t.Errorf("after update = %+v", got)
	}

	if err := s.DeleteExercise(ctx, uid, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetExercise(ctx, uid, "a"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("get deleted = %v, want ErrNotFound", err)
	}
	if err := s.DeleteExercise(ctx, uid, "a"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("delete twice = %v, want ErrNotFound", err)
	}
}

// TestUpsertExerciseKeepsLatestUpdate writes an older copy of a practiced
// exercise. Other fields change but updated_at stays at the later time.
func TestUpsertExerciseKeepsLatestUpdate(t *testing.T) {
	s, uid := openTest(t)
	ctx := context.Background()
	if _, err := s.UpsertExercise(ctx, uid, testExercise("a", t0)); err != nil {
		t.Fatal(err)
	}
	practiced := t0.Add(5 * time.Hour)
	if _, err := s.InsertAttempt(ctx, uid, models.Attempt{
		ID: "x1", ExerciseID: "a", BPMUsed: 80, Status: models.StatusDone, Timestamp: practiced,
	}); err != nil {
		t.Fatal(err)
	}

	stale := testExercise("a", t0)
	stale.Title = "Renamed"
	if _, err := s.UpsertExercise(ctx, uid, stale); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetExercise(ctx, uid, "a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Renamed" {
		t.Errorf("title = %q, want Renamed", got.Title)
	}
	if !got.UpdatedAt.Equal(practiced) {
		t.Errorf("updatedAt = %v, want %v", got.UpdatedAt, practiced)
	}
}

// TestExercisesScopedByUser verifies one user cannot see another's catalog.
func TestExercisesScopedByUser(t *testing.T) {
	s, uid := openTest(t)
	ctx := context.Background()
	other, _ := s.GetOrCreateUser(ctx, "bob@example.com", "Bob")

	if _, err := s.UpsertExercise(ctx, uid, testExercise("a", t0)); err != nil {
		t.Fatal(err)
	}
	list, _ := s.ListExercises(ctx, other)
	if len(list) != 0 {
		t.Errorf("other user sees %d exercises", len(list))
	}
	if _, err := s.GetExercise(ctx, other, "a"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("cross-user get = %v, want ErrNotFound", err)
	}
}

// TestInsertAttemptTouchesExercise verifies the attempt advances updated_at,
// never moves it backwards, and that duplicates are reported.
func TestInsertAttemptTouchesExercise(t *testing.T) {
	s, uid := openTest(t)
	ctx := context.Background()
	if _, err := s.UpsertExercise(ctx, uid, testExercise("a", t0)); err != nil {
		t.Fatal(err)
	}

	later := models.Attempt{ID: "x1", ExerciseID: "a", BPMUsed: 80, Status: models.StatusDone, Timestamp: t0.Add(3 * time.Hour)}
	ok, err := s.InsertAttempt(ctx, uid, later)
	if err != nil || !ok {
		t.Fatalf("insert: ok=%v err=%v", ok, err)
	}
	ex, _ := s.GetExercise(ctx, uid, "a")
	if !ex.UpdatedAt.Equal(later.Timestamp) {
		t.Errorf("updatedAt = %v, want %v", ex.UpdatedAt, later.Timestamp)
	}

	earlier := models.Attempt{ID: "x0", ExerciseID: "a", BPMUsed: 70, Status: models.StatusFail, Timestamp: t0.Add(time.Hour)}
	if _, err := s.InsertAttempt(ctx, uid, earlier); err != nil {
		t.Fatal(err)
	}
	ex, _ = s.GetExercise(ctx, uid, "a")
	if !ex.UpdatedAt.Equal(later.Timestamp) {
		t.Errorf("updatedAt moved backwards to %v", ex.UpdatedAt)
	}

	ok, err = s.InsertAttempt(ctx, uid, later)
	if err != nil || ok {
		t.Errorf("duplicate insert: ok=%v err=%v, want false/nil", ok, err)
	}

	dangling := models.Attempt{ID: "x2", ExerciseID: "gone", BPMUsed: 90, Status: models.StatusPartial, Timestamp: t0.Add(4 * time.Hour)}
	if ok, err := s.InsertAttempt(ctx, uid, dangling); err != nil || !ok {
		t.Errorf("dangling attempt: ok=%v err=%v", ok, err)
	}

	attempts, err := s.ListAttempts(ctx, uid, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(attempts) != 3 || attempts[0].ID != "x2" || attempts[2].ID != "x0" {
		t.Errorf("attempts = %+v, want newest first", attempts)
	}
	limited, _ := s.ListAttempts(ctx, uid, 1)
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d", len(limited))
	}
}

// TestDeleteExerciseKeepsHistory verifies attempts survive their exercise.
func TestDeleteExerciseKeepsHistory(t *testing.T) {
	s, uid := openTest(t)
	ctx := context.Background()
	s.UpsertExercise(ctx, uid, testExercise("a", t0))
	s.InsertAttempt(ctx, uid, models.Attempt{ID: "x", ExerciseID: "a", BPMUsed: 80, Status: models.StatusDone, Timestamp: t0})

	if err := s.DeleteExercise(ctx, uid, "a"); err != nil {
		t.Fatal(err)
	}
	attempts, _ := s.ListAttempts(ctx, uid, 0)
	if len(attempts) != 1 {
		t.Errorf("got %d attempts after delete, want 1", len(attempts))
	}
}

// TestSessions covers insert, ordering and lookup.
func TestSessions(t *testing.T) {
	s, uid := openTest(t)
	ctx := context.Background()

	older := models.Session{ID: "s1", Date: "2025-03-30", TotalPlanned: 10,
		Items: []models.SessionItem{{ExerciseID: "a", PlannedMinutes: 4}, {ExerciseID: "b", PlannedMinutes: 6}}}
	newer := models.Session{ID: "s2", Date: "2025-04-01", TotalPlanned: 0}
	for _, sess := range []models.Session{older, newer} {
		if ok, err := s.InsertSession(ctx, uid, sess); err != nil || !ok {
			t.Fatalf("insert %s: ok=%v err=%v", sess.ID, ok, err)
		}
	}

	list, err := s.ListSessions(ctx, uid, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "s2" {
		t.Fatalf("list = %+v, want s2 first", list)
	}
	if list[0].Items == nil {
		t.Error("empty session should decode to an empty slice")
	}

	got, err := s.GetSession(ctx, uid, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 2 || got.Items[1].PlannedMinutes != 6 || got.Date != "2025-03-30" {
		t.Errorf("session = %+v", got)
	}
	if _, err := s.GetSession(ctx, uid, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing session = %v, want ErrNotFound", err)
	}
	if _, err := s.InsertSession(ctx, uid, models.Session{ID: "bad", Date: "yesterday"}); err == nil {
		t.Error("expected error for malformed date")
	}
}

// TestImportLogsAndStats verifies import logs round-trip and stats aggregate.
func TestImportLogsAndStats(t *testing.T) {
	s, uid := openTest(t)
	ctx := context.Background()

	dur := 42
	meta := json.RawMessage(`{"file":"export.json"}`)
	id, err := s.InsertImportLog(ctx, models.ImportLog{
		UserID: uid, Source: "browser-json", Status: "success",
		ExercisesReceived: 3, ExercisesInserted: 2, Skipped: 1, DurationMs: &dur, Metadata: &meta,
	})
	if err != nil || id == 0 {
		t.Fatalf("InsertImportLog: id=%d err=%v", id, err)
	}
	logs, err := s.QueryImportLogs(ctx, uid, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].Skipped != 1 || logs[0].DurationMs == nil || *logs[0].DurationMs != 42 {
		t.Errorf("logs = %+v", logs)
	}
	if logs[0].ErrorMessage != nil {
		t.Error("error message should be nil")
	}

	stats, err := s.GetDataStats(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalAttempts != 0 || stats.EarliestAttempt != nil {
		t.Errorf("empty stats = %+v", stats)
	}

	s.UpsertExercise(ctx, uid, testExercise("a", t0))
	s.InsertAttempt(ctx, uid, models.Attempt{ID: "1", ExerciseID: "a", BPMUsed: 80, Status: models.StatusDone, Timestamp: t0})
	s.InsertAttempt(ctx, uid, models.Attempt{ID: "2", ExerciseID: "a", BPMUsed: 85, Status: models.StatusDone, Timestamp: t0.Add(time.Hour)})
	s.InsertAttempt(ctx, uid, models.Attempt{ID: "3", ExerciseID: "a", BPMUsed: 90, Status: models.StatusFail, Timestamp: t0.Add(2 * time.Hour)})

	stats, err = s.GetDataStats(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalExercises != 1 || stats.TotalAttempts != 3 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LatestAttempt == nil || !stats.LatestAttempt.Equal(t0.Add(2*time.Hour)) {
		t.Errorf("latest = %v", stats.LatestAttempt)
	}
	if len(stats.AttemptsByStatus) != 2 || stats.AttemptsByStatus[0].Status != models.StatusDone {
		t.Errorf("by status = %+v", stats.AttemptsByStatus)
	}
}
