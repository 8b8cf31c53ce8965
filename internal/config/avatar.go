package config

import (
	"fmt"

	"github.com/bornholm/breathe/internal/avatar"
	"github.com/bornholm/breathe/internal/avatar/s3"
	"github.com/goccy/go-yaml"
)

type Avatar struct {
	Type    InterpolatedString `yaml:"type"`
	Options *InterpolatedMap   `yaml:"options"`
	MaxSize InterpolatedInt    `yaml:"maxSize"`
}

func NewDefaultAvatarConfig() Avatar {
	return Avatar{
		Type: InterpolatedString(fmt.Sprintf("${BREATHE_AVATAR_TYPE:-%s}", avatar.TypeNone)),
		Options: &InterpolatedMap{
			Data: map[string]any{},
		},
		MaxSize: 2 << 20,
	}
}

func NewAvatarConfigCommentMap() yaml.CommentMap {
	return yaml.CommentMap{
		"":      []*yaml.Comment{yaml.HeadComment(" Avatar uploads storage")},
		".type": []*yaml.Comment{yaml.HeadComment(" Storage type", fmt.Sprintf(" Available: %v", avatar.Registered()))},
		".options": []*yaml.Comment{
			yaml.HeadComment(" Storage options"),
			getOptionsComment("S3 storage", s3.Options{}),
		},
		".maxSize": []*yaml.Comment{yaml.HeadComment(" Maximum size of an uploaded avatar, in bytes")},
	}
}
