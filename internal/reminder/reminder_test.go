package reminder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/meltforce/guitardaily/internal/logging"
	"github.com/meltforce/guitardaily/internal/models"
)

type fakeStore struct {
	users    []models.User
	attempts map[int][]models.Attempt
	err      error
}

func (f *fakeStore) ListUsers(context.Context) ([]models.User, error) {
	return f.users, f.err
}

func (f *fakeStore) ListAttempts(_ context.Context, userID, _ int) ([]models.Attempt, error) {
	return f.attempts[userID], nil
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, u models.User, streak int) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, Message(u, streak))
	return nil
}

func attemptOn(day string) models.Attempt {
	ts, _ := time.Parse(models.DateLayout, day)
	return models.Attempt{ID: day, ExerciseID: "ex", BPMUsed: 90, Status: models.StatusDone, Timestamp: ts.Add(12 * time.Hour)}
}

func newTestScheduler(store Store, n Notifier, now time.Time) *Scheduler {
	s := New(store, n, 17, 21, logging.Discard())
	s.now = func() time.Time { return now }
	return s
}

func testStore() *fakeStore {
	return &fakeStore{
		users: []models.User{
			{ID: 1, Login: "alice@example.com", DisplayName: "Alice"},
			{ID: 2, Login: "bob@example.com"},
			{ID: 3, Login: "carol@example.com", DisplayName: "Carol"},
		},
		attempts: map[int][]models.Attempt{
			// practiced the two days before 2025-06-14, nothing today
			1: {attemptOn("2025-06-12"), attemptOn("2025-06-13")},
			// already practiced today
			2: {attemptOn("2025-06-13"), attemptOn("2025-06-14")},
			// streak already broken
			3: {attemptOn("2025-06-10")},
		},
	}
}

// TestCheckRemindsAtRiskUsers only reminds users whose streak ends today.
func TestCheckRemindsAtRiskUsers(t *testing.T) {
	n := &fakeNotifier{}
	s := newTestScheduler(testStore(), n, time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC))

	sent, err := s.Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if sent != 1 || len(n.sent) != 1 {
		t.Fatalf("sent = %d (%v), want 1", sent, n.sent)
	}
	if !strings.HasPrefix(n.sent[0], "Alice, your 2-day practice streak") {
		t.Errorf("message = %q", n.sent[0])
	}
}

// TestCheckOncePerDay sends a second reminder only on the next day.
func TestCheckOncePerDay(t *testing.T) {
	store := testStore()
	n := &fakeNotifier{}
	now := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	s := newTestScheduler(store, n, now)

	s.Check(context.Background())
	s.now = func() time.Time { return now.Add(time.Hour) }
	s.Check(context.Background())
	if len(n.sent) != 1 {
		t.Fatalf("sent %d reminders on one day, want 1", len(n.sent))
	}

	store.attempts[1] = append(store.attempts[1], attemptOn("2025-06-14"))
	store.attempts[2] = append(store.attempts[2], attemptOn("2025-06-15"))
	s.now = func() time.Time { return now.AddDate(0, 0, 1) }
	s.Check(context.Background())
	if len(n.sent) != 2 {
		t.Fatalf("sent %d reminders over two days, want 2", len(n.sent))
	}
	if !strings.HasPrefix(n.sent[1], "Alice, your 3-day") {
		t.Errorf("second message = %q", n.sent[1])
	}
}

// TestCheckOutsideWindow does nothing before or after reminder hours.
func TestCheckOutsideWindow(t *testing.T) {
	for _, hour := range []int{8, 16, 22} {
		n := &fakeNotifier{}
		s := newTestScheduler(testStore(), n, time.Date(2025, 6, 14, hour, 30, 0, 0, time.UTC))
		sent, err := s.Check(context.Background())
		if err != nil {
			t.Fatalf("hour %d: %v", hour, err)
		}
		if sent != 0 {
			t.Errorf("hour %d: sent = %d, want 0", hour, sent)
		}
	}
}

// TestCheckNotifyFailureRetries leaves a failed user unmarked so the next
// run tries again.
func TestCheckNotifyFailureRetries(t *testing.T) {
	n := &fakeNotifier{err: errors.New("offline")}
	s := newTestScheduler(testStore(), n, time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC))

	if sent, _ := s.Check(context.Background()); sent != 0 {
		t.Fatalf("sent = %d, want 0", sent)
	}
	n.err = nil
	if sent, _ := s.Check(context.Background()); sent != 1 {
		t.Fatalf("retry sent = %d, want 1", sent)
	}
}

// TestCheckStoreError surfaces a failing user query.
func TestCheckStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	s := newTestScheduler(store, &fakeNotifier{}, time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC))
	if _, err := s.Check(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

// TestMessageFallsBackToLogin uses the login when no display name is set.
func TestMessageFallsBackToLogin(t *testing.T) {
	got := Message(models.User{Login: "bob@example.com"}, 4)
	if !strings.HasPrefix(got, "bob@example.com, your 4-day") {
		t.Errorf("Message = %q", got)
	}
}

type fakeSender struct {
	msgs []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.msgs = append(f.msgs, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

// TestTelegramNotifier posts to the configured chat.
func TestTelegramNotifier(t *testing.T) {
	bot := &fakeSender{}
	n := &TelegramNotifier{bot: bot, chatID: 4242}
	if err := n.Notify(context.Background(), models.User{DisplayName: "Alice"}, 5); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(bot.msgs) != 1 {
		t.Fatalf("sent %d messages, want 1", len(bot.msgs))
	}
	if bot.msgs[0].ChatID != 4242 {
		t.Errorf("chat = %d, want 4242", bot.msgs[0].ChatID)
	}
	if !strings.Contains(bot.msgs[0].Text, "Alice, your 5-day") {
		t.Errorf("text = %q", bot.msgs[0].Text)
	}
}
