package config

import (
	"time"

	"github.com/goccy/go-yaml"
)

type UI struct {
	FetchWait   *InterpolatedDuration `yaml:"fetchWait"`
	IdleTimeout *InterpolatedDuration `yaml:"idleTimeout"`
	RateLimit   RateLimit             `yaml:"rateLimit"`
}

type RateLimit struct {
	Rate  InterpolatedFloat `yaml:"rate"`
	Burst InterpolatedInt   `yaml:"burst"`
}

func NewDefaultUIConfig() UI {
	return UI{
		FetchWait:   NewInterpolatedDuration(250 * time.Millisecond),
		IdleTimeout: NewInterpolatedDuration(30 * time.Minute),
		RateLimit: RateLimit{
			Rate:  10,
			Burst: 20,
		},
	}
}

func NewUIConfigCommentMap() yaml.CommentMap {
	return yaml.CommentMap{
		"":             []*yaml.Comment{yaml.HeadComment(" Page shell configuration")},
		".fetchWait":   []*yaml.Comment{yaml.HeadComment(" How long a page render waits for the current user before showing placeholders")},
		".idleTimeout": []*yaml.Comment{yaml.HeadComment(" Idle delay after which a visitor's shell state is discarded")},
		".rateLimit":   []*yaml.Comment{yaml.HeadComment(" Per visitor limit on shell interactions (menu, profile panel)")},
	}
}
