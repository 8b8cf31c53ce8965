// Package ratelimit throttles requests per visitor.
package ratelimit

import (
	"log/slog"
	"net/http"

	"github.com/bornholm/breathe/internal/syncx"
	"github.com/bornholm/breathe/pkg/log"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

type RateLimiter struct {
	rate     rate.Limit
	burst    int
	visitors syncx.Map[string, *rate.Limiter]
}

// GetVisitorKeyFunc identifies the visitor a request is accounted to.
// Requests with an empty key are not throttled.
type GetVisitorKeyFunc func(r *http.Request) (string, error)

func (l *RateLimiter) Middleware(getVisitorKey GetVisitorKeyFunc) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			visitorKey, err := getVisitorKey(r)
			if err != nil {
				slog.ErrorContext(ctx, "could not retrieve visitor key", log.Error(errors.WithStack(err)))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			if visitorKey != "" && !l.Allow(visitorKey) {
				slog.WarnContext(ctx, "visitor rate limited", slog.String("visitor", visitorKey))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (l *RateLimiter) Allow(visitorKey string) bool {
	limiter, _ := l.visitors.LoadOrStore(visitorKey, rate.NewLimiter(l.rate, l.burst))
	return limiter.Allow()
}

// Forget drops the limiter of the given visitor.
func (l *RateLimiter) Forget(visitorKey string) {
	l.visitors.Delete(visitorKey)
}

func New(rate rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		rate:  rate,
		burst: burst,
	}
}
