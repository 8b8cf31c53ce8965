package local

import (
	"context"
	"time"

	"github.com/bornholm/breathe/internal/account"
	"github.com/bornholm/breathe/internal/registry"
	"github.com/bornholm/breathe/internal/store"
	"github.com/pkg/errors"
)

func init() {
	account.Register(Type, CreateProviderFromOptions)
}

type Options struct {
	Path string `mapstructure:"path" yaml:"path"`
}

func CreateProviderFromOptions(options any) (account.Provider, error) {
	opts := Options{}

	if err := registry.DecodeOptions(options, &opts); err != nil {
		return nil, errors.Wrapf(err, "could not parse '%s' account provider options", Type)
	}

	if opts.Path == "" {
		return nil, errors.Errorf("'%s' account provider: missing 'path' option", Type)
	}

	s := store.NewStore(opts.Path)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.HealthCheck(ctx); err != nil {
		return nil, errors.Wrapf(err, "could not open store '%s'", opts.Path)
	}

	return NewProvider(s), nil
}
