package handler

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/hyenabot/HyenaBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

func commandName(text, botName string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	parts := strings.SplitN(text, " ", 2)
	command := strings.TrimPrefix(parts[0], "/")
	if command == "" {
		return ""
	}
	if strings.Contains(command, "@") {
		seg := strings.SplitN(command, "@", 2)
		command = seg[0]
		if botName != "" && len(seg) > 1 && seg[1] != "" && seg[1] != botName {
			return ""
		}
	}
	return command
}

func commandArguments(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	parts := strings.SplitN(text, " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// splitQuoted splits off the first argument, honoring a double-quoted
// leading token, and returns it together with the remaining text.
func splitQuoted(s string) (string, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	if s[0] == '"' {
		if end := strings.IndexByte(s[1:], '"'); end >= 0 {
			return s[1 : end+1], strings.TrimSpace(s[end+2:])
		}
		// unterminated quote: fall back to whitespace splitting
	}
	if idx := strings.IndexFunc(s, unicode.IsSpace); idx >= 0 {
		return s[:idx], strings.TrimSpace(s[idx+1:])
	}
	return s, ""
}

// guildID returns the chat id when the message was sent in a group or
// supergroup chat. Aliases and other guild-scoped state only exist there.
func guildID(message *telego.Message) (int64, bool) {
	if message == nil {
		return 0, false
	}
	switch message.Chat.Type {
	case telego.ChatTypeGroup, telego.ChatTypeSupergroup:
		return message.Chat.ID, true
	}
	return 0, false
}

func reply(ctx context.Context, rl *telegram.RateLimiter, b telegram.API, message *telego.Message, text string) error {
	params := &telego.SendMessageParams{
		ChatID:          telego.ChatID{ID: message.Chat.ID},
		Text:            text,
		ReplyParameters: &telego.ReplyParameters{MessageID: message.MessageID},
	}
	if rl != nil {
		_, err := telegram.SendMessageWithRetry(ctx, rl, b, params)
		return err
	}
	_, err := b.SendMessage(ctx, params)
	return err
}

// parseRemindTime interprets the first /remind argument as either a
// duration from now or a clock time in the user's timezone (today, or
// tomorrow when already past).
func parseRemindTime(arg string, now time.Time, loc *time.Location) (time.Time, bool) {
	if d, err := time.ParseDuration(arg); err == nil && d > 0 {
		return now.Add(d), true
	}

	if loc == nil {
		loc = time.UTC
	}
	clock, err := time.Parse("15:04", arg)
	if err != nil {
		return time.Time{}, false
	}
	local := now.In(loc)
	at := time.Date(local.Year(), local.Month(), local.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at, true
}
