package log

import (
	"log/slog"
	"net/url"
)

var scrubbedParams = []string{"access_token", "token", "api_key"}

// ScrubbedURL returns an attribute holding rawURL with its credentials
// replaced, both in the user info and in well known query parameters.
func ScrubbedURL(name string, rawURL string) slog.Attr {
	u, err := url.Parse(rawURL)
	if err != nil {
		return slog.String(name, rawURL)
	}

	scrubbed := u.JoinPath()

	if u.User != nil {
		scrubbed.User = url.UserPassword("xxx", "xxx")
	}

	query := scrubbed.Query()
	changed := false
	for _, p := range scrubbedParams {
		if query.Has(p) {
			query.Set(p, "xxx")
			changed = true
		}
	}

	if changed {
		scrubbed.RawQuery = query.Encode()
	}

	return slog.String(name, scrubbed.String())
}
