package bot

import "time"

// Alias represents a guild-scoped text macro owned by a user.
// ID is zero until the alias has been persisted.
type Alias struct {
	ID        int64
	UserID    int64
	GuildID   int64
	Name      string // command name as originally typed
	Text      string // substitution payload, replied verbatim
	CreatedAt time.Time
}

// User represents a bot-known account. Timezone is nil until the user
// sets one; that is a valid state, not an error.
type User struct {
	ID        int64
	Timezone  *time.Location
	CreatedAt time.Time
}

// TimezoneName returns the IANA zone name, or "" when none is stored.
func (u *User) TimezoneName() string {
	if u == nil || u.Timezone == nil {
		return ""
	}
	return u.Timezone.String()
}

// Reminder represents a scheduled one-shot message back to a chat.
type Reminder struct {
	ID        int64
	UserID    int64
	ChatID    int64
	RemindAt  time.Time
	Text      string
	Triggered bool
	CreatedAt time.Time
}
