package oauth2

import (
	"net/http"

	"github.com/pkg/errors"
)

var errSessionNotFound = errors.New("session not found")

const sessionKeyUser = "user"

func (h *Handler) storeSessionUser(w http.ResponseWriter, r *http.Request, user *User) error {
	sess, err := h.sessionStore.Get(r, h.sessionName)
	if err != nil {
		return errors.WithStack(err)
	}

	sess.Values[sessionKeyUser] = user

	if err := sess.Save(r, w); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (h *Handler) retrieveSessionUser(r *http.Request) (*User, error) {
	sess, err := h.sessionStore.Get(r, h.sessionName)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	user, ok := sess.Values[sessionKeyUser].(*User)
	if !ok || user == nil {
		return nil, errors.WithStack(errSessionNotFound)
	}

	return user, nil
}

func (h *Handler) clearSession(w http.ResponseWriter, r *http.Request) error {
	sess, err := h.sessionStore.Get(r, h.sessionName)
	if err != nil {
		return errors.WithStack(err)
	}

	if _, exists := sess.Values[sessionKeyUser]; !exists {
		return errors.WithStack(errSessionNotFound)
	}

	delete(sess.Values, sessionKeyUser)
	sess.Options.MaxAge = -1

	if err := sess.Save(r, w); err != nil {
		return errors.WithStack(err)
	}

	return nil
}
