package oauth2

import (
	"log/slog"
	"net/http"

	"github.com/bornholm/breathe/pkg/log"
	"github.com/pkg/errors"
)

func (h *Handler) getLoginPage(w http.ResponseWriter, r *http.Request) {
	data := newLoginPageTemplateData(h.prefix, h.providers, h.homeURL)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := renderLogin(w, data); err != nil {
		slog.ErrorContext(r.Context(), "could not render login page", log.Error(errors.WithStack(err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
