package shell

import (
	"fmt"
	"testing"

	"github.com/bornholm/breathe/internal/account"
)

func TestNewProfileTrigger(t *testing.T) {
	type testCase struct {
		User     *account.User
		Expected ProfileTrigger
	}

	testCases := []testCase{
		{
			User:     nil,
			Expected: ProfileTrigger{Label: "Profile", Initial: "U"},
		},
		{
			User:     &account.User{},
			Expected: ProfileTrigger{Label: "Profile", Initial: "U"},
		},
		{
			User:     &account.User{FullName: "Ada"},
			Expected: ProfileTrigger{Label: "Ada", Initial: "A"},
		},
		{
			User:     &account.User{FullName: "élodie", Avatar: "https://cdn.example.com/e.png"},
			Expected: ProfileTrigger{Label: "élodie", Initial: "É", AvatarURL: "https://cdn.example.com/e.png"},
		},
		{
			User:     &account.User{Avatar: "https://cdn.example.com/anon.png"},
			Expected: ProfileTrigger{Label: "Profile", Initial: "U", AvatarURL: "https://cdn.example.com/anon.png"},
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("Case #%d", idx), func(t *testing.T) {
			if e, g := tc.Expected, NewProfileTrigger(tc.User); e != g {
				t.Errorf("NewProfileTrigger(): expected '%+v', got '%+v'", e, g)
			}
		})
	}
}
