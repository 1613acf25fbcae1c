package bot

import "errors"

var (
	// ErrAliasNotFound is returned when a delete matched no stored row.
	ErrAliasNotFound = errors.New("alias not found")

	// ErrAliasExists is returned when an alias with the same folded name
	// already exists in the guild.
	ErrAliasExists = errors.New("alias already exists in this guild")

	// ErrAliasNoIdentity is returned when deleting an alias that was
	// never persisted. Reaching it through the command surface is a bug.
	ErrAliasNoIdentity = errors.New("alias has no persisted identity")

	// ErrNoGuild marks a guild-scoped command invoked outside a group chat.
	ErrNoGuild = errors.New("must be used in a group chat")
)
