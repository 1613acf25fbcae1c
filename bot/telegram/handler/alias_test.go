package handler

import (
	"context"
	"errors"
	"strings"
	"testing"

	botpkg "github.com/hyenabot/HyenaBot-Go/bot"
)

// stubAdminChecker answers administrator lookups from a fixed set.
type stubAdminChecker struct {
	admins map[int64]bool
	calls  int
}

func (s *stubAdminChecker) IsAdministrator(ctx context.Context, chatID, userID int64) bool {
	s.calls++
	return s.admins[userID]
}

func TestAuthorizedToRemove(t *testing.T) {
	alias := &botpkg.Alias{ID: 1, UserID: 100, GuildID: -500, Name: "greet", Text: "hi"}

	tests := []struct {
		name    string
		actorID int64
		chatID  int64
		alias   *botpkg.Alias
		admins  AdminChecker
		want    bool
	}{
		{
			name:    "owner in same guild",
			actorID: 100,
			chatID:  -500,
			alias:   alias,
			admins:  &stubAdminChecker{},
			want:    true,
		},
		{
			name:    "non-owner non-admin",
			actorID: 200,
			chatID:  -500,
			alias:   alias,
			admins:  &stubAdminChecker{},
			want:    false,
		},
		{
			name:    "non-owner admin",
			actorID: 200,
			chatID:  -500,
			alias:   alias,
			admins:  &stubAdminChecker{admins: map[int64]bool{200: true}},
			want:    true,
		},
		{
			name:    "owner but alias from another guild",
			actorID: 100,
			chatID:  -999,
			alias:   alias,
			admins:  &stubAdminChecker{admins: map[int64]bool{100: true}},
			want:    false,
		},
		{
			name:    "nil alias",
			actorID: 100,
			chatID:  -500,
			alias:   nil,
			admins:  &stubAdminChecker{admins: map[int64]bool{100: true}},
			want:    false,
		},
		{
			name:    "non-owner with nil checker fails closed",
			actorID: 200,
			chatID:  -500,
			alias:   alias,
			admins:  nil,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := authorizedToRemove(context.Background(), tt.actorID, tt.chatID, tt.alias, tt.admins)
			if got != tt.want {
				t.Errorf("authorizedToRemove() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthorizedToRemoveOwnerSkipsAdminLookup(t *testing.T) {
	alias := &botpkg.Alias{ID: 1, UserID: 100, GuildID: -500}
	checker := &stubAdminChecker{}

	if !authorizedToRemove(context.Background(), 100, -500, alias, checker) {
		t.Fatal("owner should be authorized")
	}
	if checker.calls != 0 {
		t.Errorf("admin lookup called %d times for owner, want 0", checker.calls)
	}
}

func TestAuthorizedToRemoveCrossGuildSkipsAdminLookup(t *testing.T) {
	alias := &botpkg.Alias{ID: 1, UserID: 100, GuildID: -500}
	checker := &stubAdminChecker{admins: map[int64]bool{200: true}}

	if authorizedToRemove(context.Background(), 200, -999, alias, checker) {
		t.Fatal("cross-guild removal should be denied")
	}
	if checker.calls != 0 {
		t.Errorf("admin lookup called %d times for cross-guild alias, want 0", checker.calls)
	}
}

func newAliasHandler(aliases *stubAliasRepo, admins AdminChecker) *AliasHandler {
	return &AliasHandler{
		Aliases: aliases,
		Users:   newStubUserRepo(),
		Admins:  admins,
	}
}

func TestAliasHandlerAddAndResolve(t *testing.T) {
	aliases := newStubAliasRepo()
	h := newAliasHandler(aliases, &stubAdminChecker{})
	sender := &stubSender{}
	ctx := context.Background()

	err := h.Handle(ctx, sender, groupUpdate(-500, 100, "/alias add greet hello there"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := sender.lastText(); got != aliasAdded {
		t.Errorf("reply = %q, want %q", got, aliasAdded)
	}

	stored, err := aliases.SearchAlias(ctx, -500, "greet")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if stored == nil {
		t.Fatal("alias was not persisted")
	}
	if stored.Text != "hello there" || stored.UserID != 100 || stored.GuildID != -500 {
		t.Errorf("stored alias = %+v", stored)
	}
}

func TestAliasHandlerAddQuotedName(t *testing.T) {
	aliases := newStubAliasRepo()
	h := newAliasHandler(aliases, &stubAdminChecker{})
	sender := &stubSender{}
	ctx := context.Background()

	err := h.Handle(ctx, sender, groupUpdate(-500, 100, `/alias add "two words" some text`))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	stored, err := aliases.SearchAlias(ctx, -500, "two words")
	if err != nil || stored == nil {
		t.Fatalf("quoted alias not found (err=%v)", err)
	}
	if stored.Name != "two words" || stored.Text != "some text" {
		t.Errorf("stored alias = %+v", stored)
	}
}

func TestAliasHandlerAddDuplicateReplies(t *testing.T) {
	aliases := newStubAliasRepo()
	h := newAliasHandler(aliases, &stubAdminChecker{})
	sender := &stubSender{}
	ctx := context.Background()

	if err := h.Handle(ctx, sender, groupUpdate(-500, 100, "/alias add GREET hi")); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := h.Handle(ctx, sender, groupUpdate(-500, 200, "/alias add greet other")); err != nil {
		t.Fatalf("second add: %v", err)
	}
	if got := sender.lastText(); got != aliasExistsText {
		t.Errorf("reply = %q, want %q", got, aliasExistsText)
	}
}

func TestAliasHandlerAddOutsideGroup(t *testing.T) {
	h := newAliasHandler(newStubAliasRepo(), &stubAdminChecker{})
	sender := &stubSender{}

	err := h.Handle(context.Background(), sender, privateUpdate(300, 100, "/alias add greet hi"))
	if !errors.Is(err, botpkg.ErrNoGuild) {
		t.Fatalf("err = %v, want ErrNoGuild", err)
	}
	if len(sender.sentTexts()) != 0 {
		t.Errorf("handler replied itself, router owns this reply")
	}
}

func TestAliasHandlerAddFailureNeverLeaksError(t *testing.T) {
	aliases := newStubAliasRepo()
	aliases.createErr = errors.New("database disk image is malformed")
	h := newAliasHandler(aliases, &stubAdminChecker{})
	sender := &stubSender{}

	err := h.Handle(context.Background(), sender, groupUpdate(-500, 100, "/alias add greet hi"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	got := sender.lastText()
	if got != aliasAddFailed {
		t.Errorf("reply = %q, want %q", got, aliasAddFailed)
	}
	if strings.Contains(got, "malformed") {
		t.Errorf("raw persistence error leaked into reply: %q", got)
	}
}

func TestAliasHandlerRemoveByOwner(t *testing.T) {
	aliases := newStubAliasRepo()
	h := newAliasHandler(aliases, &stubAdminChecker{})
	sender := &stubSender{}
	ctx := context.Background()

	if err := aliases.CreateAlias(ctx, &botpkg.Alias{UserID: 100, GuildID: -500, Name: "greet", Text: "hi"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := h.Handle(ctx, sender, groupUpdate(-500, 100, "/alias remove greet")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := sender.lastText(); got != aliasDeleted {
		t.Errorf("reply = %q, want %q", got, aliasDeleted)
	}
	stored, _ := aliases.SearchAlias(ctx, -500, "greet")
	if stored != nil {
		t.Error("alias still present after owner removal")
	}
}

func TestAliasHandlerRemoveUnauthorized(t *testing.T) {
	aliases := newStubAliasRepo()
	h := newAliasHandler(aliases, &stubAdminChecker{})
	sender := &stubSender{}
	ctx := context.Background()

	if err := aliases.CreateAlias(ctx, &botpkg.Alias{UserID: 100, GuildID: -500, Name: "greet", Text: "hi"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := h.Handle(ctx, sender, groupUpdate(-500, 200, "/alias remove greet")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := sender.lastText(); got != aliasNotOwner {
		t.Errorf("reply = %q, want %q", got, aliasNotOwner)
	}
	stored, _ := aliases.SearchAlias(ctx, -500, "greet")
	if stored == nil {
		t.Error("alias removed despite denied authorization")
	}
}

func TestAliasHandlerRemoveByAdmin(t *testing.T) {
	aliases := newStubAliasRepo()
	h := newAliasHandler(aliases, &stubAdminChecker{admins: map[int64]bool{200: true}})
	sender := &stubSender{}
	ctx := context.Background()

	if err := aliases.CreateAlias(ctx, &botpkg.Alias{UserID: 100, GuildID: -500, Name: "greet", Text: "hi"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := h.Handle(ctx, sender, groupUpdate(-500, 200, "/alias remove greet")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := sender.lastText(); got != aliasDeleted {
		t.Errorf("reply = %q, want %q", got, aliasDeleted)
	}
}

func TestAliasHandlerRemoveMissing(t *testing.T) {
	h := newAliasHandler(newStubAliasRepo(), &stubAdminChecker{})
	sender := &stubSender{}

	if err := h.Handle(context.Background(), sender, groupUpdate(-500, 100, "/alias remove nothing")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := sender.lastText(); got != aliasNotFoundText {
		t.Errorf("reply = %q, want %q", got, aliasNotFoundText)
	}
}

func TestAliasHandlerUsageReply(t *testing.T) {
	h := newAliasHandler(newStubAliasRepo(), &stubAdminChecker{})
	sender := &stubSender{}

	if err := h.Handle(context.Background(), sender, groupUpdate(-500, 100, "/alias frobnicate")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := sender.lastText(); got != aliasUsage {
		t.Errorf("reply = %q, want %q", got, aliasUsage)
	}
}
