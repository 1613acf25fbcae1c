package reminder

import (
	"context"
	"fmt"
	"time"

	botpkg "github.com/hyenabot/HyenaBot-Go/bot"
)

// SendFunc delivers a reminder text to a chat.
type SendFunc func(ctx context.Context, chatID int64, text string) error

// Scheduler polls the reminder store and delivers due reminders.
type Scheduler struct {
	repo     botpkg.ReminderRepository
	pool     botpkg.WorkerPool
	logger   botpkg.Logger
	send     SendFunc
	interval time.Duration
	batch    int
}

// New creates a reminder scheduler. The poll interval and batch size
// come from configuration; zero values fall back to sane defaults.
func New(repo botpkg.ReminderRepository, pool botpkg.WorkerPool, send SendFunc, interval time.Duration, batch int, logger botpkg.Logger) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if batch <= 0 {
		batch = 20
	}
	return &Scheduler{
		repo:     repo,
		pool:     pool,
		logger:   logger,
		send:     send,
		interval: interval,
		batch:    batch,
	}
}

// Run polls until the context is cancelled. It delivers one batch
// immediately on startup so reminders missed during downtime fire
// without waiting a full interval.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.deliverDue(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.deliverDue(ctx)
		}
	}
}

func (s *Scheduler) deliverDue(ctx context.Context) {
	due, err := s.repo.DueReminders(ctx, time.Now(), s.batch)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("poll due reminders failed", "error", err)
		}
		return
	}

	for _, reminder := range due {
		reminder := reminder
		task := func() {
			if err := s.deliver(ctx, reminder); err != nil && s.logger != nil {
				s.logger.Error("deliver reminder failed",
					"reminder_id", reminder.ID, "chat_id", reminder.ChatID, "error", err)
			}
		}
		if s.pool != nil {
			if err := s.pool.Submit(task); err != nil {
				if s.logger != nil {
					s.logger.Warn("reminder task rejected", "reminder_id", reminder.ID, "error", err)
				}
				return
			}
		} else {
			task()
		}
	}
}

// deliver marks the reminder triggered before sending so a send that
// crashes mid-flight cannot produce repeated deliveries on restart.
func (s *Scheduler) deliver(ctx context.Context, reminder *botpkg.Reminder) error {
	if err := s.repo.MarkReminderTriggered(ctx, reminder.ID); err != nil {
		return fmt.Errorf("mark reminder %d triggered: %w", reminder.ID, err)
	}
	if err := s.send(ctx, reminder.ChatID, fmt.Sprintf("Reminder: %s", reminder.Text)); err != nil {
		return fmt.Errorf("send reminder %d: %w", reminder.ID, err)
	}
	if s.logger != nil {
		s.logger.Info("reminder delivered", "reminder_id", reminder.ID, "chat_id", reminder.ChatID)
	}
	return nil
}
