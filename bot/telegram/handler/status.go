package handler

import (
	"context"
	"fmt"

	botpkg "github.com/hyenabot/HyenaBot-Go/bot"
	"github.com/hyenabot/HyenaBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// StatusHandler handles /status with storage counters.
type StatusHandler struct {
	Aliases     botpkg.AliasRepository
	Reminders   botpkg.ReminderRepository
	Stats       botpkg.StatRepository
	Logger      botpkg.Logger
	RateLimiter *telegram.RateLimiter
}

func (h *StatusHandler) Handle(ctx context.Context, b telegram.API, update *telego.Update) error {
	if update == nil || update.Message == nil {
		return nil
	}
	message := update.Message

	aliases, err := h.Aliases.CountAliases(ctx)
	if err != nil {
		return fmt.Errorf("count aliases: %w", err)
	}
	pending, err := h.Reminders.CountPendingReminders(ctx)
	if err != nil {
		return fmt.Errorf("count pending reminders: %w", err)
	}

	var served int64
	counts, err := h.Stats.CommandCounts(ctx)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("command counts unavailable", "error", err)
		}
	} else {
		for _, n := range counts {
			served += n
		}
	}

	return reply(ctx, h.RateLimiter, b, message, fmt.Sprintf(statusInfo, aliases, pending, served))
}
