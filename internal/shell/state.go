package shell

import (
	"github.com/bornholm/breathe/internal/account"
)

// State is the UI state owned by a shell.
type State struct {
	MobileMenuOpen bool
	ProfileOpen    bool
	User           *account.User
	Fetch          FetchResult
}

func (s State) clone() State {
	s.User = s.User.Clone()
	s.Fetch.User = s.Fetch.User.Clone()
	return s
}

// Event is a state transition, applied by Shell.Dispatch.
type Event interface {
	apply(s *State)
}

type ToggleMobileMenu struct{}

func (ToggleMobileMenu) apply(s *State) {
	s.MobileMenuOpen = !s.MobileMenuOpen
}

// SelectMobileNav is emitted when a mobile navigation entry is followed.
type SelectMobileNav struct {
	Page string
}

func (SelectMobileNav) apply(s *State) {
	s.MobileMenuOpen = false
}

type OpenProfile struct{}

func (OpenProfile) apply(s *State) {
	s.ProfileOpen = true
}

type CloseProfile struct{}

func (CloseProfile) apply(s *State) {
	s.ProfileOpen = false
}

// ReplaceUser substitutes the held user with User, as is. Absent attributes
// are not merged from the previous value.
type ReplaceUser struct {
	User *account.User
}

func (e ReplaceUser) apply(s *State) {
	s.User = e.User.Clone()
}

// UserLoaded carries the result of the mount-time fetch. A failed fetch
// leaves the held user untouched.
type UserLoaded struct {
	Result FetchResult
}

func (e UserLoaded) apply(s *State) {
	s.Fetch = e.Result
	s.Fetch.User = e.Result.User.Clone()

	if e.Result.Outcome == OutcomeFailed {
		return
	}

	s.User = e.Result.User.Clone()
}

var (
	_ Event = ToggleMobileMenu{}
	_ Event = SelectMobileNav{}
	_ Event = OpenProfile{}
	_ Event = CloseProfile{}
	_ Event = ReplaceUser{}
	_ Event = UserLoaded{}
)
