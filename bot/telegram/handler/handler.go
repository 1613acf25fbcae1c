package handler

import (
	"context"

	"github.com/hyenabot/HyenaBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// MessageHandler handles message-based commands. A returned error is a
// command-level failure: the router logs it and sends a best-effort
// generic reply. Domain outcomes (not found, denied) are replied by the
// handler itself and are not errors.
type MessageHandler interface {
	Handle(ctx context.Context, b telegram.API, update *telego.Update) error
}

// AdminChecker reports whether a user holds administrator rights in a
// chat. Implementations must fail closed: any lookup error is "no".
type AdminChecker interface {
	IsAdministrator(ctx context.Context, chatID, userID int64) bool
}
