package db

import (
	"time"

	"github.com/hyenabot/HyenaBot-Go/bot"
)

// AliasModel mirrors the aliases schema. NameFolded carries the
// compatibility-folded command name; the unique index on
// (guild_id, name_folded) rejects duplicates at the storage layer.
type AliasModel struct {
	AliasID     int64  `gorm:"column:alias_id;primaryKey;autoIncrement"`
	UserID      int64  `gorm:"column:user_id;not null;index"`
	GuildID     int64  `gorm:"column:guild_id;not null;index:idx_guild_name_folded,unique"`
	CommandName string `gorm:"column:command_name;not null"`
	NameFolded  string `gorm:"column:name_folded;not null;index:idx_guild_name_folded,unique"`
	CommandText string `gorm:"column:command_text;not null"`
	CreatedAt   time.Time
}

func (AliasModel) TableName() string {
	return "aliases"
}

// UserModel mirrors the users schema. Timezone holds an IANA zone name
// and is nullable.
type UserModel struct {
	UserID    int64   `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	Timezone  *string `gorm:"column:timezone"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserModel) TableName() string {
	return "users"
}

// ReminderModel mirrors the reminders schema.
type ReminderModel struct {
	ReminderID   int64     `gorm:"column:reminder_id;primaryKey;autoIncrement"`
	UserID       int64     `gorm:"column:user_id;not null;index"`
	ChatID       int64     `gorm:"column:chat_id;not null"`
	ReminderTime time.Time `gorm:"column:reminder_time;not null;index"`
	ReminderText string    `gorm:"column:reminder_text;not null"`
	Triggered    bool      `gorm:"column:triggered;not null;default:false"`
	CreatedAt    time.Time
}

func (ReminderModel) TableName() string {
	return "reminders"
}

// BotStatModel stores aggregated usage counters keyed by name.
type BotStatModel struct {
	Key       string `gorm:"column:key;primaryKey"`
	Value     int64  `gorm:"column:value;not null;default:0"`
	UpdatedAt time.Time
}

func (BotStatModel) TableName() string {
	return "bot_stats"
}

func aliasToInternal(model AliasModel) *bot.Alias {
	return &bot.Alias{
		ID:        model.AliasID,
		UserID:    model.UserID,
		GuildID:   model.GuildID,
		Name:      model.CommandName,
		Text:      model.CommandText,
		CreatedAt: model.CreatedAt,
	}
}

func userToInternal(model UserModel) *bot.User {
	user := &bot.User{
		ID:        model.UserID,
		CreatedAt: model.CreatedAt,
	}
	if model.Timezone != nil {
		// An unparseable stored zone degrades to "no timezone".
		if loc, err := time.LoadLocation(*model.Timezone); err == nil {
			user.Timezone = loc
		}
	}
	return user
}

func reminderToInternal(model ReminderModel) *bot.Reminder {
	return &bot.Reminder{
		ID:        model.ReminderID,
		UserID:    model.UserID,
		ChatID:    model.ChatID,
		RemindAt:  model.ReminderTime,
		Text:      model.ReminderText,
		Triggered: model.Triggered,
		CreatedAt: model.CreatedAt,
	}
}
