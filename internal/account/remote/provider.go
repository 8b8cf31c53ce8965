// Package remote reads and updates the current user through the REST API of
// a hosted backend-as-a-service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/bornholm/breathe/internal/account"
	"github.com/bornholm/breathe/internal/authn"
	"github.com/bornholm/breathe/pkg/log"
	"github.com/pkg/errors"
)

const Type account.Type = "remote"

type Provider struct {
	client  *http.Client
	baseURL *url.URL
	appID   string
	token   string
}

// Me implements account.Provider.
func (p *Provider) Me(ctx context.Context) (*account.User, error) {
	token := p.resolveToken(ctx)
	if token == "" {
		return nil, nil
	}

	if tokenExpired(token, time.Now()) {
		slog.DebugContext(ctx, "access token expired, skipping account backend")
		return nil, nil
	}

	res, err := p.do(ctx, http.MethodGet, token, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return nil, nil
	default:
		return nil, errors.WithStack(newStatusError(res))
	}

	user, err := decodeUser(res.Body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return user, nil
}

// UpdateMe implements account.Provider.
func (p *Provider) UpdateMe(ctx context.Context, changes account.Changes) (*account.User, error) {
	// The service token is never used to write: it would let every visitor
	// update the account it belongs to.
	token := visitorToken(ctx)
	if token == "" || tokenExpired(token, time.Now()) {
		return nil, errors.WithStack(account.ErrUnauthenticated)
	}

	body, err := json.Marshal(changes)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	res, err := p.do(ctx, http.MethodPut, token, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, errors.WithStack(account.ErrUnauthenticated)
	default:
		return nil, errors.WithStack(newStatusError(res))
	}

	user, err := decodeUser(res.Body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return user, nil
}

func (p *Provider) meURL() string {
	return p.baseURL.JoinPath("api", "apps", p.appID, "entities", "User", "me").String()
}

func (p *Provider) do(ctx context.Context, method string, token string, body io.Reader) (*http.Response, error) {
	endpoint := p.meURL()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-App-Id", p.appID)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.DebugContext(ctx, "calling account backend", slog.String("method", method), log.ScrubbedURL("url", endpoint))

	res, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "could not call '%s %s'", method, endpoint)
	}

	return res, nil
}

// resolveToken prefers the visitor's own access token to the configured
// service token.
func (p *Provider) resolveToken(ctx context.Context) string {
	if token := visitorToken(ctx); token != "" {
		return token
	}

	return p.token
}

// visitorToken returns the access token of the authenticated visitor, if any.
func visitorToken(ctx context.Context) string {
	identity, err := authn.ContextUser(ctx)
	if err != nil {
		return ""
	}

	holder, ok := identity.(authn.TokenHolder)
	if !ok {
		return ""
	}

	return holder.UserAccessToken()
}

func decodeUser(r io.Reader) (*account.User, error) {
	var user *account.User

	if err := json.NewDecoder(r).Decode(&user); err != nil {
		return nil, errors.Wrap(err, "could not decode user")
	}

	return user, nil
}

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected backend response status %d: %s", e.StatusCode, e.Body)
}

func newStatusError(res *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 512))

	return &StatusError{
		StatusCode: res.StatusCode,
		Body:       string(bytes.TrimSpace(body)),
	}
}

func NewProvider(client *http.Client, baseURL *url.URL, appID string, token string) *Provider {
	return &Provider{
		client:  client,
		baseURL: baseURL,
		appID:   appID,
		token:   token,
	}
}

var _ account.Provider = &Provider{}
