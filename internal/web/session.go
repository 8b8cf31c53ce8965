package web

import (
	"context"
	"net/http"

	"github.com/bornholm/breathe/internal/account"
	"github.com/bornholm/breathe/internal/authn"
	"github.com/bornholm/breathe/internal/shell"
	"github.com/pkg/errors"
)

const sessionKeyShell = "shell"

// openShell returns the shell of the visitor, mounting a new one when the
// session has none or when the visitor's identity changed.
//
// Requests without a shell id only receive one in their session cookie and
// are served by a detached shell that is neither registered nor mounted: the
// shell is mounted by the first request carrying the cookie back. The
// returned boolean reports whether the shell is mounted.
func (h *Handler) openShell(w http.ResponseWriter, r *http.Request) (*shell.Shell, bool, error) {
	sess, err := h.sessionStore.Get(r, h.sessionName)
	if err != nil && sess == nil {
		return nil, false, errors.WithStack(err)
	}

	var identity string
	if user, err := authn.ContextUser(r.Context()); err == nil {
		identity = authn.Key(user)
	}

	id, _ := sess.Values[sessionKeyShell].(string)
	if id == "" {
		id = shell.NewID()
		sess.Values[sessionKeyShell] = id

		if err := sess.Save(r, w); err != nil {
			return nil, false, errors.WithStack(err)
		}

		return shell.New(id, identity, h.load), false, nil
	}

	return h.registry.Open(r.Context(), id, identity, h.load), true, nil
}

func (h *Handler) loadUser(ctx context.Context) (*account.User, error) {
	user, err := h.accounts.Me(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return user, nil
}

// VisitorKey returns the shell id carried by the request session, or an
// empty string for visitors without one.
func (h *Handler) VisitorKey(r *http.Request) (string, error) {
	sess, err := h.sessionStore.Get(r, h.sessionName)
	if err != nil && sess == nil {
		return "", errors.WithStack(err)
	}

	id, _ := sess.Values[sessionKeyShell].(string)

	return id, nil
}
