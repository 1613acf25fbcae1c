package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/hyenabot/HyenaBot-Go/bot"
	"github.com/hyenabot/HyenaBot-Go/bot/casefold"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Repository provides access to the bot database.
type Repository struct {
	db *gorm.DB
}

// NewSQLiteRepository creates a repository backed by SQLite.
func NewSQLiteRepository(dsn string, gormLogger logger.Interface) (*Repository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("dsn required")
	}

	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	dbDir := filepath.Dir(dsn)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 gormLogger,
	})
	if err != nil {
		return nil, err
	}

	if err := applySQLitePragmas(db); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&UserModel{}, &AliasModel{}, &ReminderModel{}, &BotStatModel{}); err != nil {
		return nil, err
	}

	// The pool defaults to a single connection; callers widen it via
	// ConfigurePool once config is loaded.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Repository{db: db}, nil
}

// ConfigurePool updates the database connection pool settings.
func (r *Repository) ConfigurePool(maxOpen, maxIdle int, maxLifetime time.Duration) error {
	if r == nil || r.db == nil {
		return errors.New("repository not configured")
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	if maxOpen >= 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle >= 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime >= 0 {
		sqlDB.SetConnMaxLifetime(maxLifetime)
	}
	return nil
}

func applySQLitePragmas(db *gorm.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, stmt := range pragmas {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// CreateAlias persists a new alias and assigns its identity. A duplicate
// (guild, folded name) pair is rejected with bot.ErrAliasExists.
func (r *Repository) CreateAlias(ctx context.Context, alias *bot.Alias) error {
	if alias == nil {
		return errors.New("alias required")
	}
	model := AliasModel{
		UserID:      alias.UserID,
		GuildID:     alias.GuildID,
		CommandName: alias.Name,
		NameFolded:  casefold.Fold(alias.Name),
		CommandText: alias.Text,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create alias %q in guild %d: %w", alias.Name, alias.GuildID, bot.ErrAliasExists)
		}
		return fmt.Errorf("create alias %q in guild %d: %w", alias.Name, alias.GuildID, err)
	}
	alias.ID = model.AliasID
	alias.CreatedAt = model.CreatedAt
	return nil
}

// SearchAlias folds rawName and looks the alias up within the guild.
// Returns (nil, nil) when no alias matches.
func (r *Repository) SearchAlias(ctx context.Context, guildID int64, rawName string) (*bot.Alias, error) {
	var model AliasModel
	err := r.db.WithContext(ctx).
		Where("guild_id = ? AND name_folded = ?", guildID, casefold.Fold(rawName)).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("search alias %q in guild %d: %w", rawName, guildID, err)
	}
	return aliasToInternal(model), nil
}

// DeleteAlias removes the row matching the alias identity. An alias that
// was never persisted cannot be deleted; a delete affecting zero rows
// reports bot.ErrAliasNotFound.
func (r *Repository) DeleteAlias(ctx context.Context, alias *bot.Alias) error {
	if alias == nil || alias.ID == 0 {
		return bot.ErrAliasNoIdentity
	}
	res := r.db.WithContext(ctx).Delete(&AliasModel{}, "alias_id = ?", alias.ID)
	if res.Error != nil {
		return fmt.Errorf("delete alias %d: %w", alias.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return bot.ErrAliasNotFound
	}
	return nil
}

// CountAliases returns the total number of stored aliases.
func (r *Repository) CountAliases(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&AliasModel{}).Count(&count).Error
	return count, err
}

// GetOrCreateUser returns the stored user, inserting a default record on
// first contact. The insert uses ON CONFLICT DO NOTHING so concurrent
// first-time calls for the same id cannot duplicate the row.
func (r *Repository) GetOrCreateUser(ctx context.Context, userID int64) (*bot.User, error) {
	var model UserModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		defaults := UserModel{UserID: userID}
		if createErr := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&defaults).Error; createErr != nil {
			return nil, fmt.Errorf("create user %d: %w", userID, createErr)
		}
		err = r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return userToInternal(model), nil
}

// SetUserTimezone stores an IANA zone name for the user, creating the
// user record if needed. An empty zone clears it.
func (r *Repository) SetUserTimezone(ctx context.Context, userID int64, zone string) error {
	if _, err := r.GetOrCreateUser(ctx, userID); err != nil {
		return err
	}
	var value *string
	if strings.TrimSpace(zone) != "" {
		value = &zone
	}
	return r.db.WithContext(ctx).Model(&UserModel{}).
		Where("user_id = ?", userID).
		Update("timezone", value).Error
}

// CreateReminder persists a reminder and assigns its identity.
func (r *Repository) CreateReminder(ctx context.Context, reminder *bot.Reminder) error {
	if reminder == nil {
		return errors.New("reminder required")
	}
	model := ReminderModel{
		UserID:       reminder.UserID,
		ChatID:       reminder.ChatID,
		ReminderTime: reminder.RemindAt,
		ReminderText: reminder.Text,
		Triggered:    reminder.Triggered,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("create reminder for user %d: %w", reminder.UserID, err)
	}
	reminder.ID = model.ReminderID
	reminder.CreatedAt = model.CreatedAt
	return nil
}

// DueReminders returns untriggered reminders whose time has passed.
func (r *Repository) DueReminders(ctx context.Context, now time.Time, limit int) ([]*bot.Reminder, error) {
	if limit <= 0 {
		limit = 20
	}
	var models []ReminderModel
	err := r.db.WithContext(ctx).
		Where("triggered = ? AND reminder_time <= ?", false, now).
		Order("reminder_time").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("due reminders: %w", err)
	}
	reminders := make([]*bot.Reminder, 0, len(models))
	for _, model := range models {
		reminders = append(reminders, reminderToInternal(model))
	}
	return reminders, nil
}

// MarkReminderTriggered flags a reminder so it is not delivered again.
func (r *Repository) MarkReminderTriggered(ctx context.Context, reminderID int64) error {
	return r.db.WithContext(ctx).Model(&ReminderModel{}).
		Where("reminder_id = ?", reminderID).
		Update("triggered", true).Error
}

// CountPendingReminders returns the number of untriggered reminders.
func (r *Repository) CountPendingReminders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ReminderModel{}).
		Where("triggered = ?", false).
		Count(&count).Error
	return count, err
}

// IncrementCommandCount bumps the usage counter for a command.
func (r *Repository) IncrementCommandCount(ctx context.Context, command string) error {
	key := "cmd:" + command
	res := r.db.WithContext(ctx).Model(&BotStatModel{}).
		Where("key = ?", key).
		UpdateColumn("value", gorm.Expr("value + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{"value": gorm.Expr("value + 1")}),
	}).Create(&BotStatModel{Key: key, Value: 1}).Error
	return err
}

// CommandCounts returns all command usage counters keyed by command name.
func (r *Repository) CommandCounts(ctx context.Context) (map[string]int64, error) {
	var rows []BotStatModel
	err := r.db.WithContext(ctx).
		Where("key LIKE ?", "cmd:%").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[strings.TrimPrefix(row.Key, "cmd:")] = row.Value
	}
	return counts, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
