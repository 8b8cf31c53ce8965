package oauth2

import (
	"strings"

	"github.com/bornholm/breathe/internal/ui"
)

type Options struct {
	Providers   []Provider
	SessionName string
	Prefix      string
	// HomeURL is where visitors land after signing in or out, and where the
	// login page sends those continuing anonymously.
	HomeURL string
}

type OptionFunc func(opts *Options)

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		Providers:   make([]Provider, 0),
		SessionName: "breathe_auth",
		Prefix:      "",
		HomeURL:     ui.PageURL(ui.HomePage),
	}

	for _, fn := range funcs {
		fn(opts)
	}

	return opts
}

func WithProviders(providers ...Provider) OptionFunc {
	return func(opts *Options) {
		opts.Providers = providers
	}
}

func WithSessionName(sessionName string) OptionFunc {
	return func(opts *Options) {
		opts.SessionName = sessionName
	}
}

// WithPrefix sets the path the handler is mounted on, e.g. "/auth".
func WithPrefix(prefix string) OptionFunc {
	return func(opts *Options) {
		opts.Prefix = strings.TrimSuffix(prefix, "/")
	}
}

func WithHomeURL(url string) OptionFunc {
	return func(opts *Options) {
		opts.HomeURL = url
	}
}
