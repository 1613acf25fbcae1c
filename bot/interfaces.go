package bot

import (
	"context"
	"time"
)

// Logger is the minimal logging abstraction used across modules.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Config provides typed access to configuration values.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetFloat64(key string) float64
	GetBool(key string) bool
	GetIntSlice(key string) []int
}

// AliasRepository defines storage operations for guild-scoped aliases.
// SearchAlias returns (nil, nil) when no alias matches.
type AliasRepository interface {
	CreateAlias(ctx context.Context, alias *Alias) error
	SearchAlias(ctx context.Context, guildID int64, rawName string) (*Alias, error)
	DeleteAlias(ctx context.Context, alias *Alias) error
	CountAliases(ctx context.Context) (int64, error)
}

// UserRepository defines storage operations for bot-known users.
type UserRepository interface {
	GetOrCreateUser(ctx context.Context, userID int64) (*User, error)
	SetUserTimezone(ctx context.Context, userID int64, zone string) error
}

// ReminderRepository defines storage operations for scheduled reminders.
type ReminderRepository interface {
	CreateReminder(ctx context.Context, reminder *Reminder) error
	DueReminders(ctx context.Context, now time.Time, limit int) ([]*Reminder, error)
	MarkReminderTriggered(ctx context.Context, reminderID int64) error
	CountPendingReminders(ctx context.Context) (int64, error)
}

// StatRepository stores per-command usage counters.
type StatRepository interface {
	IncrementCommandCount(ctx context.Context, command string) error
	CommandCounts(ctx context.Context) (map[string]int64, error)
}

// WorkerPool limits concurrency for background tasks.
type WorkerPool interface {
	Submit(task func()) error
	SubmitWait(task func() error) error
	Shutdown(ctx context.Context) error
	Size() int
}
