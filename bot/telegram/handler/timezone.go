package handler

import (
	"context"
	"fmt"
	"time"

	botpkg "github.com/hyenabot/HyenaBot-Go/bot"
	"github.com/hyenabot/HyenaBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// TimezoneHandler handles /timezone, storing a per-user IANA zone used
// when interpreting clock times in reminders.
type TimezoneHandler struct {
	Users       botpkg.UserRepository
	Logger      botpkg.Logger
	RateLimiter *telegram.RateLimiter
}

func (h *TimezoneHandler) Handle(ctx context.Context, b telegram.API, update *telego.Update) error {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return nil
	}
	message := update.Message
	arg := commandArguments(message.Text)

	if arg == "" {
		user, err := h.Users.GetOrCreateUser(ctx, message.From.ID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if user.Timezone == nil {
			return reply(ctx, h.RateLimiter, b, message, timezoneNone)
		}
		return reply(ctx, h.RateLimiter, b, message, fmt.Sprintf(timezoneCurrent, user.TimezoneName()))
	}

	loc, err := time.LoadLocation(arg)
	if err != nil || loc == time.Local {
		return reply(ctx, h.RateLimiter, b, message, timezoneUnknown)
	}

	if err := h.Users.SetUserTimezone(ctx, message.From.ID, loc.String()); err != nil {
		return fmt.Errorf("set timezone: %w", err)
	}
	return reply(ctx, h.RateLimiter, b, message, fmt.Sprintf(timezoneSet, loc.String()))
}
