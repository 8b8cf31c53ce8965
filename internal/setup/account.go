package setup

import (
	"context"
	"maps"

	"github.com/bornholm/breathe/internal/account"
	"github.com/bornholm/breathe/internal/account/local"
	"github.com/bornholm/breathe/internal/config"
	"github.com/pkg/errors"

	_ "github.com/bornholm/breathe/internal/account/remote"
)

var NewAccountProviderFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (account.Provider, error) {
	providerType := account.Type(conf.Account.Type)

	options := map[string]any{}
	if conf.Account.Options != nil {
		maps.Copy(options, conf.Account.Options.Data)
	}

	if providerType == local.Type {
		if _, exists := options["path"]; !exists {
			options["path"] = string(conf.Store.Path)
		}
	}

	provider, err := account.New(providerType, options)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return provider, nil
})
