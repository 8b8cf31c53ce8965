package setup

import (
	"context"
	"time"

	"github.com/bornholm/breathe/internal/config"
	"github.com/bornholm/breathe/internal/debug"
	"github.com/bornholm/breathe/internal/ratelimit"
	"github.com/bornholm/breathe/internal/shell"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

var NewShellRegistryFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*shell.Registry, error) {
	return shell.NewRegistry(time.Duration(*conf.UI.IdleTimeout)), nil
})

var NewRateLimiterFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*ratelimit.RateLimiter, error) {
	limiter := ratelimit.New(rate.Limit(conf.UI.RateLimit.Rate), int(conf.UI.RateLimit.Burst))

	registry, err := NewShellRegistryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	registry.OnClose(limiter.Forget)

	return limiter, nil
})

var NewMetricsFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*debug.Metrics, error) {
	registry, err := NewShellRegistryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return debug.NewMetrics(registry), nil
})
