package config

import "github.com/goccy/go-yaml"

type Auth struct {
	Providers AuthProviders `yaml:"providers"`
}

type AuthProviders struct {
	Google OAuth2Provider `yaml:"google"`
	Github OAuth2Provider `yaml:"github"`
	Gitea  GiteaProvider  `yaml:"gitea"`
	OIDC   OIDCProvider   `yaml:"oidc"`
}

type OAuth2Provider struct {
	Key    InterpolatedString      `yaml:"key"`
	Secret InterpolatedString      `yaml:"secret"`
	Scopes InterpolatedStringSlice `yaml:"scopes"`
}

func (p OAuth2Provider) Enabled() bool {
	return p.Key != "" && p.Secret != ""
}

type OIDCProvider struct {
	OAuth2Provider `yaml:",inline"`
	DiscoveryURL   InterpolatedString `yaml:"discoveryUrl"`
	Icon           InterpolatedString `yaml:"icon"`
	Label          InterpolatedString `yaml:"label"`
}

type GiteaProvider struct {
	OAuth2Provider `yaml:",inline"`
	TokenURL       InterpolatedString `yaml:"tokenUrl"`
	AuthURL        InterpolatedString `yaml:"authUrl"`
	ProfileURL     InterpolatedString `yaml:"profileUrl"`
	Label          InterpolatedString `yaml:"label"`
}

func NewDefaultAuthConfig() Auth {
	return Auth{
		Providers: AuthProviders{
			Google: OAuth2Provider{
				Key:    "${BREATHE_AUTH_GOOGLE_KEY}",
				Secret: "${BREATHE_AUTH_GOOGLE_SECRET}",
				Scopes: InterpolatedStringSlice{"email", "profile"},
			},
			Github: OAuth2Provider{
				Key:    "${BREATHE_AUTH_GITHUB_KEY}",
				Secret: "${BREATHE_AUTH_GITHUB_SECRET}",
				Scopes: InterpolatedStringSlice{"user:email"},
			},
		},
	}
}

func NewAuthConfigCommentMap() yaml.CommentMap {
	return yaml.CommentMap{
		"":           []*yaml.Comment{yaml.HeadComment(" Visitors authentication", " Anonymous visitors are always allowed, a login only identifies them")},
		".providers": []*yaml.Comment{yaml.HeadComment(" OAuth2 identity providers, enabled when both key and secret are set")},
	}
}
