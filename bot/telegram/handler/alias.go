package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	botpkg "github.com/hyenabot/HyenaBot-Go/bot"
	"github.com/hyenabot/HyenaBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// AliasHandler handles the /alias command with add and remove
// subcommands.
type AliasHandler struct {
	Aliases     botpkg.AliasRepository
	Users       botpkg.UserRepository
	Admins      AdminChecker
	Logger      botpkg.Logger
	RateLimiter *telegram.RateLimiter
}

func (h *AliasHandler) Handle(ctx context.Context, b telegram.API, update *telego.Update) error {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return nil
	}
	message := update.Message

	sub, rest := splitQuoted(commandArguments(message.Text))
	switch strings.ToLower(sub) {
	case "add":
		return h.add(ctx, b, message, rest)
	case "remove", "rm":
		return h.remove(ctx, b, message, rest)
	default:
		return reply(ctx, h.RateLimiter, b, message, aliasUsage)
	}
}

func (h *AliasHandler) add(ctx context.Context, b telegram.API, message *telego.Message, args string) error {
	gid, ok := guildID(message)
	if !ok {
		return botpkg.ErrNoGuild
	}

	name, text := splitQuoted(args)
	if name == "" || text == "" {
		return reply(ctx, h.RateLimiter, b, message, aliasUsage)
	}

	user, err := h.Users.GetOrCreateUser(ctx, message.From.ID)
	if err != nil {
		return fmt.Errorf("get or create user %d: %w", message.From.ID, err)
	}

	alias := &botpkg.Alias{
		UserID:  user.ID,
		GuildID: gid,
		Name:    name,
		Text:    text,
	}
	if err := h.Aliases.CreateAlias(ctx, alias); err != nil {
		if errors.Is(err, botpkg.ErrAliasExists) {
			return reply(ctx, h.RateLimiter, b, message, aliasExistsText)
		}
		// Persistence details are logged, never echoed to the chat.
		if h.Logger != nil {
			h.Logger.Error("add alias failed",
				"user_id", user.ID, "guild_id", gid, "name", name, "error", err)
		}
		return reply(ctx, h.RateLimiter, b, message, aliasAddFailed)
	}

	if h.Logger != nil {
		h.Logger.Info("alias added",
			"alias_id", alias.ID, "user_id", user.ID, "guild_id", gid, "name", name)
	}
	return reply(ctx, h.RateLimiter, b, message, aliasAdded)
}

func (h *AliasHandler) remove(ctx context.Context, b telegram.API, message *telego.Message, args string) error {
	gid, ok := guildID(message)
	if !ok {
		return botpkg.ErrNoGuild
	}

	name, extra := splitQuoted(args)
	if name == "" {
		return reply(ctx, h.RateLimiter, b, message, aliasUsage)
	}
	if extra != "" && h.Logger != nil {
		h.Logger.Debug("ignoring extra text in alias remove", "extra", extra)
	}

	alias, err := h.Aliases.SearchAlias(ctx, gid, name)
	if err != nil {
		return fmt.Errorf("search alias %q in guild %d: %w", name, gid, err)
	}
	if alias == nil {
		return reply(ctx, h.RateLimiter, b, message, aliasNotFoundText)
	}

	if !authorizedToRemove(ctx, message.From.ID, gid, alias, h.Admins) {
		return reply(ctx, h.RateLimiter, b, message, aliasNotOwner)
	}

	if err := h.Aliases.DeleteAlias(ctx, alias); err != nil {
		if errors.Is(err, botpkg.ErrAliasNotFound) {
			// Deleted concurrently between search and delete.
			return reply(ctx, h.RateLimiter, b, message, aliasNotFoundText)
		}
		return fmt.Errorf("delete alias %d: %w", alias.ID, err)
	}

	if h.Logger != nil {
		h.Logger.Info("alias deleted",
			"alias_id", alias.ID, "by_user_id", message.From.ID, "guild_id", gid)
	}
	return reply(ctx, h.RateLimiter, b, message, aliasDeleted)
}

// authorizedToRemove implements the two-tier ownership rule: the alias
// must live in the guild the request came from, and the actor must be
// either its owner or a confirmed administrator of that guild. A failed
// or absent permission lookup is never treated as administrator.
func authorizedToRemove(ctx context.Context, actorID, chatID int64, alias *botpkg.Alias, admins AdminChecker) bool {
	if alias == nil || alias.GuildID != chatID {
		return false
	}
	if alias.UserID == actorID {
		return true
	}
	if admins == nil {
		return false
	}
	return admins.IsAdministrator(ctx, chatID, actorID)
}
