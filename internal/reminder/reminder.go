// Package reminder runs the hourly streak-at-risk check and sends one
// reminder per user per day through a Notifier.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/meltforce/guitardaily/internal/models"
	"github.com/meltforce/guitardaily/internal/practice"
)

// Store is the subset of the gateway the reminder job reads.
type Store interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListAttempts(ctx context.Context, userID, limit int) ([]models.Attempt, error)
}

// Notifier delivers a reminder that user's streak of streak days is at risk.
type Notifier interface {
	Notify(ctx context.Context, user models.User, streak int) error
}

// Scheduler checks every hour, inside the [startHour, endHour] UTC window,
// for users who practiced yesterday but not yet today.
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     Store
	notifier  Notifier
	log       *slog.Logger
	startHour int
	endHour   int
	now       practice.Clock

	mu   sync.Mutex
	sent map[int]string // user id -> UTC day already reminded
}

// New creates a new scheduler instance.
func New(store Store, notifier Notifier, startHour, endHour int, log *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     store,
		notifier:  notifier,
		log:       log,
		startHour: startHour,
		endHour:   endHour,
		now:       time.Now,
		sent:      map[int]string{},
	}
}

// Start schedules the hourly check and runs it in the background.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Hour().Do(s.run); err != nil {
		return fmt.Errorf("scheduling reminder job: %w", err)
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates the scheduled job.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := s.Check(ctx)
	if err != nil {
		s.log.Error("reminder check failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("reminders sent", "count", n)
	}
}

// Check sends due reminders and returns how many went out. Outside the hour
// window it does nothing. A failed notification is logged and retried on the
// next run.
func (s *Scheduler) Check(ctx context.Context) (int, error) {
	now := s.now().UTC()
	if h := now.Hour(); h < s.startHour || h > s.endHour {
		s.log.Debug("outside reminder hours", "hour", h, "start", s.startHour, "end", s.endHour)
		return 0, nil
	}
	today := now.Format(models.DateLayout)

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing users: %w", err)
	}

	sent := 0
	for _, u := range users {
		if s.alreadySent(u.ID, today) {
			continue
		}
		attempts, err := s.store.ListAttempts(ctx, u.ID, 0)
		if err != nil {
			s.log.Error("listing attempts", "user", u.ID, "error", err)
			continue
		}
		streak, atRisk := practice.AtRisk(attempts, now)
		if !atRisk {
			continue
		}
		if err := s.notifier.Notify(ctx, u, streak); err != nil {
			s.log.Error("sending reminder", "user", u.ID, "error", err)
			continue
		}
		s.markSent(u.ID, today)
		sent++
	}
	return sent, nil
}

func (s *Scheduler) alreadySent(userID int, day string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[userID] == day
}

func (s *Scheduler) markSent(userID int, day string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[userID] = day
}

// Message is the reminder text for user.
func Message(user models.User, streak int) string {
	name := user.DisplayName
	if name == "" {
		name = user.Login
	}
	return fmt.Sprintf("%s, your %d-day practice streak ends tonight. A few minutes on any exercise keeps it going.", name, streak)
}
