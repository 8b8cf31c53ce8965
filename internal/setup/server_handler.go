package setup

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/bornholm/breathe/internal/authn"
	"github.com/bornholm/breathe/internal/config"
	"github.com/bornholm/breathe/internal/web"
	"github.com/pkg/errors"

	sloghttp "github.com/samber/slog-http"
)

func NewHandlerFromConfig(ctx context.Context, conf *config.Config) (http.Handler, error) {
	mux := &http.ServeMux{}

	slogMiddleware := sloghttp.New(slog.Default())

	oauth2Handler, err := NewOAuth2HandlerFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	mux.Handle("/auth/", slogMiddleware(oauth2Handler))

	sessionStore, err := NewSessionStoreFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	accounts, err := NewAccountProviderFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	avatars, err := NewAvatarStorageFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	registry, err := NewShellRegistryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	rateLimiter, err := NewRateLimiterFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	metrics, err := NewMetricsFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	webHandler := web.NewHandler(
		registry, sessionStore, accounts,
		web.WithFetchWait(time.Duration(*conf.UI.FetchWait)),
		web.WithAvatarStorage(avatars, int64(conf.Avatar.MaxSize)),
		web.WithSignIn(len(oauth2Handler.Providers()) > 0),
		web.WithLoadWrapper(metrics.ObserveLoad),
	)

	// Visitors are never required to sign in, the identity only selects
	// the profile served by the account provider.
	uiAuth := authn.Chain(
		authn.WithAuthenticators(
			oauth2Handler.Authenticator(false),
		),
		authn.WithAnonymous(true),
	)

	rateLimiterMiddleware := rateLimiter.Middleware(webHandler.VisitorKey)

	mux.Handle("/ui/", uiAuth(slogMiddleware(rateLimiterMiddleware(webHandler))))
	mux.Handle("/", uiAuth(slogMiddleware(webHandler)))

	return mux, nil
}
