package handler

import (
	"context"

	"github.com/hyenabot/HyenaBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// ChatAdminChecker queries the Telegram gateway for a user's effective
// member status in a chat.
type ChatAdminChecker struct {
	b telegram.API
}

func NewChatAdminChecker(b telegram.API) *ChatAdminChecker {
	return &ChatAdminChecker{b: b}
}

// IsAdministrator reports whether the user is an administrator or the
// owner of the chat. Any gateway failure counts as not-administrator.
func (c *ChatAdminChecker) IsAdministrator(ctx context.Context, chatID, userID int64) bool {
	if c == nil || c.b == nil {
		return false
	}
	member, err := c.b.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: telego.ChatID{ID: chatID},
		UserID: userID,
	})
	if err != nil || member == nil {
		return false
	}
	status := member.MemberStatus()
	return status == telego.MemberStatusCreator || status == telego.MemberStatusAdministrator
}
