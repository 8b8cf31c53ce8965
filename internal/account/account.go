package account

import (
	"context"

	"github.com/pkg/errors"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// User is the current visitor's profile as known by the account provider.
// Every attribute is optional.
type User struct {
	ID          string    `json:"id,omitempty"`
	Email       string    `json:"email,omitempty"`
	FullName    string    `json:"full_name,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	Role        string    `json:"role,omitempty"`
	UpdatedDate Timestamp `json:"updated_date,omitzero"`
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	copy := *u

	return &copy
}

// Changes lists the attributes a profile update sets. Nil fields are left
// untouched by the provider.
type Changes struct {
	FullName *string `json:"full_name,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

func (c Changes) Empty() bool {
	return c.FullName == nil && c.Avatar == nil
}

type Provider interface {
	// Me returns the user associated with ctx, or nil when the visitor is
	// unknown to the provider.
	Me(ctx context.Context) (*User, error)

	// UpdateMe applies changes to the user associated with ctx and returns
	// the user as stored after the update.
	UpdateMe(ctx context.Context, changes Changes) (*User, error)
}
