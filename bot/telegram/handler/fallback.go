package handler

import (
	"context"

	botpkg "github.com/hyenabot/HyenaBot-Go/bot"
	"github.com/hyenabot/HyenaBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// FallbackHandler resolves command invocations that match no registered
// command against the alias store. The stored text is replied verbatim;
// it is a literal substitution, never re-parsed as a further command.
type FallbackHandler struct {
	Aliases     botpkg.AliasRepository
	Logger      botpkg.Logger
	RateLimiter *telegram.RateLimiter
	BotName     string
}

func (h *FallbackHandler) Handle(ctx context.Context, b telegram.API, update *telego.Update) error {
	if update == nil || update.Message == nil {
		return nil
	}
	message := update.Message

	name := commandName(message.Text, h.BotName)
	if name == "" {
		return nil
	}

	gid, ok := guildID(message)
	if !ok {
		// No guild, no alias lookup.
		return nil
	}

	alias, err := h.Aliases.SearchAlias(ctx, gid, name)
	if err != nil {
		// Unrecognized commands are dropped quietly; the failure is
		// only logged.
		if h.Logger != nil {
			h.Logger.Error("alias lookup failed",
				"guild_id", gid, "name", name, "error", err)
		}
		return nil
	}
	if alias == nil {
		return nil
	}

	return reply(ctx, h.RateLimiter, b, message, alias.Text)
}
