package shell

import (
	"strings"
	"unicode/utf8"

	"github.com/bornholm/breathe/internal/account"
)

const (
	DefaultTriggerLabel   = "Profile"
	DefaultTriggerInitial = "U"
)

// ProfileTrigger is what the header's profile button displays.
type ProfileTrigger struct {
	Label     string
	Initial   string
	AvatarURL string
}

func NewProfileTrigger(user *account.User) ProfileTrigger {
	trigger := ProfileTrigger{
		Label:   DefaultTriggerLabel,
		Initial: DefaultTriggerInitial,
	}

	if user == nil {
		return trigger
	}

	trigger.AvatarURL = user.Avatar

	if user.FullName != "" {
		trigger.Label = user.FullName

		first, _ := utf8.DecodeRuneInString(user.FullName)
		trigger.Initial = strings.ToUpper(string(first))
	}

	return trigger
}
