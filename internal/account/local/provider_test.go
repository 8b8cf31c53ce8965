package local

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bornholm/breathe/internal/account"
	"github.com/bornholm/breathe/internal/authn"
	"github.com/bornholm/breathe/internal/authn/oauth2"
	"github.com/bornholm/breathe/internal/store"
	"github.com/pkg/errors"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()

	s := store.NewStore(filepath.Join(t.TempDir(), "profiles.db"))
	t.Cleanup(func() {
		s.Close()
	})

	return NewProvider(s)
}

func TestProviderAnonymous(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	user, err := provider.Me(ctx)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if user != nil {
		t.Errorf("user: expected nil, got '%+v'", user)
	}

	name := "Ada"
	if _, err := provider.UpdateMe(ctx, account.Changes{FullName: &name}); !errors.Is(err, account.ErrUnauthenticated) {
		t.Errorf("UpdateMe(): expected '%v', got '%v'", account.ErrUnauthenticated, err)
	}
}

func TestProviderAuthenticated(t *testing.T) {
	provider := newTestProvider(t)

	ctx := authn.WithContextUser(context.Background(), &oauth2.User{
		Subject:  "1",
		Provider: "github",
		Nickname: "Ada",
		Email:    "ada@example.com",
	})

	user, err := provider.Me(ctx)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if user == nil {
		t.Fatalf("user: expected a user, got nil")
	}

	if e, g := "Ada", user.FullName; e != g {
		t.Errorf("user.FullName: expected '%v', got '%v'", e, g)
	}

	if e, g := "ada@example.com", user.Email; e != g {
		t.Errorf("user.Email: expected '%v', got '%v'", e, g)
	}

	name := "Ada Lovelace"

	updated, err := provider.UpdateMe(ctx, account.Changes{FullName: &name})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := name, updated.FullName; e != g {
		t.Errorf("updated.FullName: expected '%v', got '%v'", e, g)
	}

	again, err := provider.Me(ctx)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := name, again.FullName; e != g {
		t.Errorf("again.FullName: expected '%v', got '%v'", e, g)
	}
}

func TestCreateProviderFromOptions(t *testing.T) {
	if _, err := account.New(Type, map[string]any{}); err == nil {
		t.Errorf("expected an error without path, got nil")
	}

	provider, err := account.New(Type, map[string]any{
		"path": filepath.Join(t.TempDir(), "breathe.db"),
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	user, err := provider.Me(context.Background())
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if user != nil {
		t.Errorf("user: expected nil, got '%+v'", user)
	}
}
