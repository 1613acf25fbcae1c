package handler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	botpkg "github.com/hyenabot/HyenaBot-Go/bot"
	"github.com/hyenabot/HyenaBot-Go/bot/casefold"
	"github.com/mymmrac/telego"
)

// stubSender implements telegram.API, recording every outgoing message.
type stubSender struct {
	mu       sync.Mutex
	messages []*telego.SendMessageParams
	photos   []*telego.SendPhotoParams
	sendErr  error
}

func (s *stubSender) SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	s.messages = append(s.messages, params)
	return &telego.Message{MessageID: len(s.messages), Text: params.Text}, nil
}

func (s *stubSender) SendPhoto(ctx context.Context, params *telego.SendPhotoParams) (*telego.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	s.photos = append(s.photos, params)
	return &telego.Message{MessageID: len(s.photos)}, nil
}

func (s *stubSender) GetChatMember(ctx context.Context, params *telego.GetChatMemberParams) (telego.ChatMember, error) {
	return nil, errors.New("not supported by stub")
}

func (s *stubSender) GetFile(ctx context.Context, params *telego.GetFileParams) (*telego.File, error) {
	return nil, errors.New("not supported by stub")
}

func (s *stubSender) FileDownloadURL(filepath string) string {
	return ""
}

func (s *stubSender) sentTexts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	texts := make([]string, len(s.messages))
	for i, params := range s.messages {
		texts[i] = params.Text
	}
	return texts
}

func (s *stubSender) lastText() string {
	texts := s.sentTexts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// stubAliasRepo implements botpkg.AliasRepository with the same folded
// uniqueness semantics as the sqlite repository.
type stubAliasRepo struct {
	mu        sync.Mutex
	byKey     map[string]*botpkg.Alias // "guildID:foldedName"
	nextID    int64
	createErr error
	searchErr error
}

func newStubAliasRepo() *stubAliasRepo {
	return &stubAliasRepo{byKey: make(map[string]*botpkg.Alias)}
}

func aliasKey(guildID int64, rawName string) string {
	return fmt.Sprintf("%d:%s", guildID, casefold.Fold(rawName))
}

func (r *stubAliasRepo) CreateAlias(ctx context.Context, alias *botpkg.Alias) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	key := aliasKey(alias.GuildID, alias.Name)
	if _, exists := r.byKey[key]; exists {
		return botpkg.ErrAliasExists
	}
	r.nextID++
	alias.ID = r.nextID
	clone := *alias
	r.byKey[key] = &clone
	return nil
}

func (r *stubAliasRepo) SearchAlias(ctx context.Context, guildID int64, rawName string) (*botpkg.Alias, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	if alias, ok := r.byKey[aliasKey(guildID, rawName)]; ok {
		clone := *alias
		return &clone, nil
	}
	return nil, nil
}

func (r *stubAliasRepo) DeleteAlias(ctx context.Context, alias *botpkg.Alias) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if alias.ID == 0 {
		return botpkg.ErrAliasNoIdentity
	}
	for key, stored := range r.byKey {
		if stored.ID == alias.ID {
			delete(r.byKey, key)
			return nil
		}
	}
	return botpkg.ErrAliasNotFound
}

func (r *stubAliasRepo) CountAliases(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byKey)), nil
}

// stubUserRepo implements botpkg.UserRepository in memory.
type stubUserRepo struct {
	mu    sync.Mutex
	users map[int64]*botpkg.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*botpkg.User)}
}

func (r *stubUserRepo) GetOrCreateUser(ctx context.Context, userID int64) (*botpkg.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[userID]; ok {
		clone := *user
		return &clone, nil
	}
	user := &botpkg.User{ID: userID}
	r.users[userID] = user
	clone := *user
	return &clone, nil
}

func (r *stubUserRepo) SetUserTimezone(ctx context.Context, userID int64, zone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		user = &botpkg.User{ID: userID}
		r.users[userID] = user
	}
	if zone == "" {
		user.Timezone = nil
		return nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return err
	}
	user.Timezone = loc
	return nil
}

func groupUpdate(chatID, userID int64, text string) *telego.Update {
	return &telego.Update{Message: &telego.Message{
		MessageID: 1,
		Text:      text,
		Chat:      telego.Chat{ID: chatID, Type: telego.ChatTypeSupergroup},
		From:      &telego.User{ID: userID},
	}}
}

func privateUpdate(chatID, userID int64, text string) *telego.Update {
	return &telego.Update{Message: &telego.Message{
		MessageID: 1,
		Text:      text,
		Chat:      telego.Chat{ID: chatID, Type: telego.ChatTypePrivate},
		From:      &telego.User{ID: userID},
	}}
}
