package handler

import (
	"context"

	"github.com/hyenabot/HyenaBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// PingHandler handles /ping.
type PingHandler struct {
	RateLimiter *telegram.RateLimiter
}

func (h *PingHandler) Handle(ctx context.Context, b telegram.API, update *telego.Update) error {
	if update == nil || update.Message == nil {
		return nil
	}
	return reply(ctx, h.RateLimiter, b, update.Message, pongText)
}
