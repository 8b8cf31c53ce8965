// Package local serves profiles persisted in the local SQLite store, keyed
// by the identity of the authenticated visitor.
package local

import (
	"context"

	"github.com/bornholm/breathe/internal/account"
	"github.com/bornholm/breathe/internal/authn"
	"github.com/bornholm/breathe/internal/store"
	"github.com/pkg/errors"
)

const Type account.Type = "local"

type Provider struct {
	store *store.Store
}

// Me implements account.Provider.
func (p *Provider) Me(ctx context.Context) (*account.User, error) {
	storeUser, err := p.findOrCreate(ctx)
	if err != nil {
		if errors.Is(err, authn.ErrNoUser) {
			return nil, nil
		}

		return nil, errors.WithStack(err)
	}

	return toAccountUser(storeUser), nil
}

// UpdateMe implements account.Provider.
func (p *Provider) UpdateMe(ctx context.Context, changes account.Changes) (*account.User, error) {
	storeUser, err := p.findOrCreate(ctx)
	if err != nil {
		if errors.Is(err, authn.ErrNoUser) {
			return nil, errors.WithStack(account.ErrUnauthenticated)
		}

		return nil, errors.WithStack(err)
	}

	updated, err := p.store.UpdateProfile(ctx, storeUser.ID, store.ProfileChanges{
		FullName: changes.FullName,
		Avatar:   changes.Avatar,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return toAccountUser(updated), nil
}

func (p *Provider) findOrCreate(ctx context.Context) (*store.User, error) {
	identity, err := authn.ContextUser(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	defaults := store.UserDefaults{}
	if profile, ok := identity.(authn.Profile); ok {
		defaults.Email = profile.UserEmail()
		defaults.FullName = profile.UserDisplayName()
	}

	storeUser, err := p.store.FindOrCreateUser(ctx, identity.UserSubject(), identity.UserProvider(), defaults)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return storeUser, nil
}

func toAccountUser(u *store.User) *account.User {
	return &account.User{
		ID:          u.Provider + "-" + u.Subject,
		Email:       u.Email,
		FullName:    u.FullName,
		Avatar:      u.Avatar,
		UpdatedDate: account.Timestamp{Time: u.UpdatedAt},
	}
}

func NewProvider(store *store.Store) *Provider {
	return &Provider{store: store}
}

var _ account.Provider = &Provider{}
