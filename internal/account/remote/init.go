package remote

import (
	"net/http"
	"net/url"

	"github.com/bornholm/breathe/internal/account"
	"github.com/bornholm/breathe/internal/registry"
	"github.com/pkg/errors"
)

func init() {
	account.Register(Type, CreateProviderFromOptions)
}

func CreateProviderFromOptions(options any) (account.Provider, error) {
	opts := NewDefaultOptions()

	if err := registry.DecodeOptions(options, &opts); err != nil {
		return nil, errors.Wrapf(err, "could not parse '%s' account provider options", Type)
	}

	if opts.BaseURL == "" {
		return nil, errors.Errorf("'%s' account provider: missing 'baseUrl' option", Type)
	}

	if opts.AppID == "" {
		return nil, errors.Errorf("'%s' account provider: missing 'appId' option", Type)
	}

	baseURL, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse '%s' account provider base url", Type)
	}

	client := &http.Client{
		Timeout: opts.Timeout,
	}

	return NewProvider(client, baseURL, opts.AppID, opts.Token), nil
}
