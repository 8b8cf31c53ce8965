package config

import "github.com/goccy/go-yaml"

type Debug struct {
	Address InterpolatedString `yaml:"address"`
}

func NewDefaultDebugConfig() Debug {
	return Debug{
		Address: "${BREATHE_DEBUG_ADDRESS}",
	}
}

func NewDebugConfigCommentMap() yaml.CommentMap {
	return yaml.CommentMap{
		"":         []*yaml.Comment{yaml.HeadComment(" Debug server (pprof profiles and expvar counters)")},
		".address": []*yaml.Comment{yaml.HeadComment(" Listening address, the debug server is disabled when empty")},
	}
}
