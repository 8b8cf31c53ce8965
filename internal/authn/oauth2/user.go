package oauth2

import (
	"encoding/gob"

	"github.com/bornholm/breathe/internal/authn"
)

func init() {
	gob.Register(&User{})
}

type User struct {
	Subject  string
	Provider string

	Nickname string
	Email    string

	AccessToken string
	IDToken     string
}

// UserProvider implements authn.User.
func (u *User) UserProvider() string {
	return u.Provider
}

// UserSubject implements authn.User.
func (u *User) UserSubject() string {
	return u.Subject
}

// UserDisplayName implements authn.Profile.
func (u *User) UserDisplayName() string {
	return u.Nickname
}

// UserEmail implements authn.Profile.
func (u *User) UserEmail() string {
	return u.Email
}

// UserAccessToken implements authn.TokenHolder.
func (u *User) UserAccessToken() string {
	return u.AccessToken
}

var (
	_ authn.User        = &User{}
	_ authn.Profile     = &User{}
	_ authn.TokenHolder = &User{}
)
