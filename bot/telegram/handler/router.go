package handler

import (
	"context"
	"errors"

	botpkg "github.com/hyenabot/HyenaBot-Go/bot"
	"github.com/hyenabot/HyenaBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// Router dispatches incoming updates to command handlers. Commands that
// match no registered handler fall through to Fallback for alias
// resolution.
type Router struct {
	Handlers    map[string]MessageHandler
	Fallback    MessageHandler
	Logger      botpkg.Logger
	Pool        botpkg.WorkerPool
	Stats       botpkg.StatRepository
	RateLimiter *telegram.RateLimiter
	BotName     string
}

// Run consumes the update channel until it closes or ctx is done.
func (r *Router) Run(ctx context.Context, b telegram.API, updates <-chan telego.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			r.dispatch(ctx, b, &update)
		}
	}
}

func (r *Router) dispatch(ctx context.Context, b telegram.API, update *telego.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	message := update.Message

	name := commandName(message.Text, r.BotName)
	if name == "" {
		return
	}

	handler, registered := r.Handlers[name]
	if !registered {
		handler = r.Fallback
	}
	if handler == nil {
		return
	}

	var userID int64
	if message.From != nil {
		userID = message.From.ID
	}
	if registered && r.Logger != nil {
		r.Logger.Info("calling command", "command", name, "user_id", userID, "chat_id", message.Chat.ID)
	}
	if registered && r.Stats != nil {
		if err := r.Stats.IncrementCommandCount(ctx, name); err != nil && r.Logger != nil {
			r.Logger.Warn("command counter update failed", "command", name, "error", err)
		}
	}

	task := func() {
		if err := handler.Handle(ctx, b, update); err != nil {
			r.reportError(ctx, b, message, name, userID, err)
		}
	}
	if r.Pool == nil {
		task()
		return
	}
	if err := r.Pool.Submit(task); err != nil && r.Logger != nil {
		r.Logger.Error("command dropped, pool unavailable", "command", name, "error", err)
	}
}

// reportError logs a command failure and sends a best-effort reply. Raw
// error text never reaches the chat; a failed reply is logged and not
// retried.
func (r *Router) reportError(ctx context.Context, b telegram.API, message *telego.Message, name string, userID int64, err error) {
	text := commandFailedText
	if errors.Is(err, botpkg.ErrNoGuild) {
		// User mistake, not a failure.
		text = mustUseInGroup
		if r.Logger != nil {
			r.Logger.Debug("guild command used outside group",
				"command", name, "user_id", userID)
		}
	} else if r.Logger != nil {
		r.Logger.Error("command returned error",
			"command", name, "user_id", userID, "error", err)
	}
	if sendErr := reply(ctx, r.RateLimiter, b, message, text); sendErr != nil && r.Logger != nil {
		r.Logger.Error("failed to send error reply",
			"command", name, "error", sendErr)
	}
}
