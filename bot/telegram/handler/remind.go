package handler

import (
	"context"
	"fmt"
	"time"

	botpkg "github.com/hyenabot/HyenaBot-Go/bot"
	"github.com/hyenabot/HyenaBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// RemindHandler handles /remind, scheduling a message back to the chat.
type RemindHandler struct {
	Users       botpkg.UserRepository
	Reminders   botpkg.ReminderRepository
	Logger      botpkg.Logger
	RateLimiter *telegram.RateLimiter

	// Now is overridable for tests, defaults to time.Now.
	Now func() time.Time
}

func (h *RemindHandler) Handle(ctx context.Context, b telegram.API, update *telego.Update) error {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return nil
	}
	message := update.Message

	when, text := splitQuoted(commandArguments(message.Text))
	if when == "" || text == "" {
		return reply(ctx, h.RateLimiter, b, message, remindUsage)
	}

	user, err := h.Users.GetOrCreateUser(ctx, message.From.ID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	remindAt, ok := parseRemindTime(when, now, user.Timezone)
	if !ok {
		return reply(ctx, h.RateLimiter, b, message, remindBadTime)
	}

	reminder := &botpkg.Reminder{
		UserID:   message.From.ID,
		ChatID:   message.Chat.ID,
		RemindAt: remindAt,
		Text:     text,
	}
	if err := h.Reminders.CreateReminder(ctx, reminder); err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}

	display := remindAt.UTC()
	if user.Timezone != nil {
		display = remindAt.In(user.Timezone)
	}
	return reply(ctx, h.RateLimiter, b, message, fmt.Sprintf(remindSet, display.Format("2006-01-02 15:04 MST")))
}
