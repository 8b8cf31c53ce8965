package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bornholm/breathe/internal/account"
	"github.com/bornholm/breathe/internal/account/local"
	"github.com/bornholm/breathe/internal/account/remote"
	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

type Account struct {
	Type    InterpolatedString `yaml:"type"`
	Options *InterpolatedMap   `yaml:"options"`
}

func NewDefaultAccountConfig() Account {
	return Account{
		Type: InterpolatedString(fmt.Sprintf("${BREATHE_ACCOUNT_TYPE:-%s}", string(local.Type))),
		Options: &InterpolatedMap{
			Data: map[string]any{},
		},
	}
}

func NewAccountConfigCommentMap() yaml.CommentMap {
	return yaml.CommentMap{
		"":      []*yaml.Comment{yaml.HeadComment(" Account provider, source of the current user")},
		".type": []*yaml.Comment{yaml.HeadComment(" Provider type", fmt.Sprintf(" Available: %v", account.Registered()))},
		".options": []*yaml.Comment{
			yaml.HeadComment(" Provider options"),
			getOptionsComment("Local provider (defaults to the store path)", local.Options{}),
			getOptionsComment("Remote backend provider", remote.NewDefaultOptions()),
		},
	}
}

func getOptionsComment(message string, opts any) *yaml.Comment {
	rawOpts, err := yaml.Marshal(opts)
	if err != nil {
		panic(errors.WithStack(err))
	}

	comments := []string{message, "options:"}
	comments = append(comments, slices.Collect(func(yield func(string) bool) {
		for _, str := range strings.Split(strings.TrimSpace(string(rawOpts)), "\n") {
			if !yield("  " + str) {
				return
			}
		}
	})...)

	return yaml.FootComment(comments...)
}
