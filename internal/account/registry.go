package account

import (
	"github.com/bornholm/breathe/internal/registry"
	"github.com/pkg/errors"
)

type Type string

type CreateProviderFunc func(options any) (Provider, error)

var providers registry.Registry[Provider]

func Register(providerType Type, fn CreateProviderFunc) {
	providers.Register(string(providerType), registry.Factory[Provider](fn))
}

func New(providerType Type, options any) (Provider, error) {
	provider, err := providers.New(string(providerType), options)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create account provider '%s'", providerType)
	}

	return provider, nil
}

func Registered() []Type {
	names := providers.Names()

	types := make([]Type, 0, len(names))
	for _, n := range names {
		types = append(types, Type(n))
	}

	return types
}
