package web

import (
	"time"

	"github.com/bornholm/breathe/internal/avatar"
	"github.com/bornholm/breathe/internal/shell"
)

type Options struct {
	SessionName   string
	FetchWait     time.Duration
	Avatars       avatar.Storage
	MaxAvatarSize int64
	SignIn        bool
	LoadWrappers  []func(shell.LoadFunc) shell.LoadFunc
}

type OptionFunc func(opts *Options)

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		SessionName:   "breathe_shell",
		FetchWait:     250 * time.Millisecond,
		MaxAvatarSize: 2 << 20,
	}

	for _, fn := range funcs {
		fn(opts)
	}

	return opts
}

func WithSessionName(sessionName string) OptionFunc {
	return func(opts *Options) {
		opts.SessionName = sessionName
	}
}

// WithFetchWait sets how long a page render waits for the current user
// before rendering placeholders.
func WithFetchWait(wait time.Duration) OptionFunc {
	return func(opts *Options) {
		opts.FetchWait = wait
	}
}

func WithAvatarStorage(storage avatar.Storage, maxSize int64) OptionFunc {
	return func(opts *Options) {
		opts.Avatars = storage
		opts.MaxAvatarSize = maxSize
	}
}

// WithSignIn enables the sign in and sign out links of the profile panel.
func WithSignIn(enabled bool) OptionFunc {
	return func(opts *Options) {
		opts.SignIn = enabled
	}
}

// WithLoadWrapper decorates the current user fetch of every shell.
func WithLoadWrapper(wrap func(shell.LoadFunc) shell.LoadFunc) OptionFunc {
	return func(opts *Options) {
		opts.LoadWrappers = append(opts.LoadWrappers, wrap)
	}
}
