package oauth2

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bornholm/breathe/internal/authn"
	"github.com/bornholm/breathe/pkg/log"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth/gothic"
	"github.com/pkg/errors"
)

type Provider struct {
	ID    string
	Label string
	Icon  string
}

type Handler struct {
	mux          *http.ServeMux
	sessionStore sessions.Store
	sessionName  string
	providers    []Provider
	prefix       string
	homeURL      string
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) Providers() []Provider {
	return h.providers
}

func NewHandler(sessionStore sessions.Store, funcs ...OptionFunc) *Handler {
	opts := NewOptions(funcs...)
	h := &Handler{
		mux:          http.NewServeMux(),
		sessionStore: sessionStore,
		sessionName:  opts.SessionName,
		providers:    opts.Providers,
		prefix:       opts.Prefix,
		homeURL:      opts.HomeURL,
	}

	h.mux.HandleFunc(fmt.Sprintf("GET %s/login", h.prefix), h.getLoginPage)
	h.mux.Handle(fmt.Sprintf("GET %s/providers/{provider}", h.prefix), withContextProvider(http.HandlerFunc(h.handleProvider)))
	h.mux.Handle(fmt.Sprintf("GET %s/providers/{provider}/callback", h.prefix), withContextProvider(http.HandlerFunc(h.handleProviderCallback)))
	h.mux.HandleFunc(fmt.Sprintf("GET %s/logout", h.prefix), h.handleLogout)
	h.mux.Handle(fmt.Sprintf("GET %s/providers/{provider}/logout", h.prefix), withContextProvider(http.HandlerFunc(h.handleProviderLogout)))

	return h
}

// Authenticator returns the session based authenticator. An authoritative
// authenticator redirects visitors without session to the login page,
// otherwise they are left anonymous.
func (h *Handler) Authenticator(authoritative bool) authn.Authenticator {
	return authn.AuthenticateFunc(func(w http.ResponseWriter, r *http.Request) (authn.User, error) {
		user, err := h.retrieveSessionUser(r)
		if err != nil {
			if !errors.Is(err, errSessionNotFound) {
				slog.WarnContext(r.Context(), "could not retrieve user from session", log.Error(errors.WithStack(err)))
			}

			if authoritative {
				http.Redirect(w, r, fmt.Sprintf("%s/login", h.prefix), http.StatusTemporaryRedirect)
				return nil, errors.WithStack(authn.ErrCancel)
			}

			return nil, nil
		}

		return user, nil
	})
}

var _ http.Handler = &Handler{}

func withContextProvider(h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		provider := r.PathValue("provider")
		r = gothic.GetContextWithProvider(r, provider)
		h.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
