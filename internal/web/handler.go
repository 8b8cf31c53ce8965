// Package web serves the pages of the application inside the shared page
// shell, and the small interactions updating the shell.
package web

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bornholm/breathe/internal/account"
	"github.com/bornholm/breathe/internal/avatar"
	"github.com/bornholm/breathe/internal/shell"
	"github.com/bornholm/breathe/internal/ui"
	"github.com/bornholm/breathe/pkg/log"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
)

// MobileNavParam marks the navigations triggered from the mobile menu.
const MobileNavParam = "via"

type Handler struct {
	mux           *http.ServeMux
	registry      *shell.Registry
	sessionStore  sessions.Store
	sessionName   string
	accounts      account.Provider
	avatars       avatar.Storage
	maxAvatarSize int64
	fetchWait     time.Duration
	signIn        bool
	load          shell.LoadFunc
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func NewHandler(registry *shell.Registry, sessionStore sessions.Store, accounts account.Provider, funcs ...OptionFunc) *Handler {
	opts := NewOptions(funcs...)

	h := &Handler{
		mux:           http.NewServeMux(),
		registry:      registry,
		sessionStore:  sessionStore,
		sessionName:   opts.SessionName,
		accounts:      accounts,
		avatars:       opts.Avatars,
		maxAvatarSize: opts.MaxAvatarSize,
		fetchWait:     opts.FetchWait,
		signIn:        opts.SignIn,
	}

	h.load = h.loadUser
	for _, wrap := range opts.LoadWrappers {
		h.load = wrap(h.load)
	}

	h.mux.HandleFunc("GET /{$}", h.redirectHome)
	h.mux.HandleFunc("GET /{page}", h.getPage)
	h.mux.HandleFunc("GET /ui/header", h.getHeader)
	h.mux.HandleFunc("POST /ui/menu/toggle", h.handleMenuToggle)
	h.mux.HandleFunc("POST /ui/profile/open", h.handleProfileOpen)
	h.mux.HandleFunc("POST /ui/profile/close", h.handleProfileClose)
	h.mux.HandleFunc("POST /ui/profile", h.handleProfileUpdate)

	return h
}

func (h *Handler) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, ui.PageURL(ui.HomePage), http.StatusSeeOther)
}

func (h *Handler) getPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	item, exists := ui.LookupPage("/" + r.PathValue("page"))
	if !exists {
		http.NotFound(w, r)
		return
	}

	sh, mounted, err := h.openShell(w, r)
	if err != nil {
		h.handleError(w, r, errors.WithStack(err))
		return
	}

	if r.URL.Query().Get(MobileNavParam) == "mobile-nav" {
		sh.Dispatch(shell.SelectMobileNav{Page: item.Page})
	}

	if mounted {
		sh.Wait(ctx, h.fetchWait)
	}

	state := sh.Snapshot()

	var content bytes.Buffer

	pageData := PageTemplateData{
		Page: item.Page,
		User: state.User,
		Nav:  ui.Navigation(item.Page),
	}

	if err := templates.ExecuteTemplate(&content, "page-"+strings.ToLower(item.Page), pageData); err != nil {
		h.handleError(w, r, errors.WithStack(err))
		return
	}

	data := ShellTemplateData{
		HeadTemplateData: ui.HeadTemplateData{
			PageTitle: item.Label,
		},
		Header:  newHeaderTemplateData(item.Page, state),
		Content: template.HTML(content.String()),
		Panel:   h.newPanelTemplateData(item.Page, state),
	}

	h.render(w, r, "shell", data)
}

func (h *Handler) getHeader(w http.ResponseWriter, r *http.Request) {
	sh, _, err := h.openShell(w, r)
	if err != nil {
		h.handleError(w, r, errors.WithStack(err))
		return
	}

	h.render(w, r, "header", newHeaderTemplateData(currentPage(r), sh.Snapshot()))
}

func (h *Handler) handleMenuToggle(w http.ResponseWriter, r *http.Request) {
	sh, _, err := h.openShell(w, r)
	if err != nil {
		h.handleError(w, r, errors.WithStack(err))
		return
	}

	sh.Dispatch(shell.ToggleMobileMenu{})

	h.render(w, r, "header", newHeaderTemplateData(currentPage(r), sh.Snapshot()))
}

func (h *Handler) handleProfileOpen(w http.ResponseWriter, r *http.Request) {
	h.dispatchPanel(w, r, shell.OpenProfile{})
}

func (h *Handler) handleProfileClose(w http.ResponseWriter, r *http.Request) {
	h.dispatchPanel(w, r, shell.CloseProfile{})
}

func (h *Handler) dispatchPanel(w http.ResponseWriter, r *http.Request, event shell.Event) {
	sh, _, err := h.openShell(w, r)
	if err != nil {
		h.handleError(w, r, errors.WithStack(err))
		return
	}

	sh.Dispatch(event)

	h.render(w, r, "profile-panel", h.newPanelTemplateData(currentPage(r), sh.Snapshot()))
}

func (h *Handler) newPanelTemplateData(currentPage string, state shell.State) PanelTemplateData {
	return PanelTemplateData{
		CurrentPage:     currentPage,
		IsOpen:          state.ProfileOpen,
		User:            state.User,
		Trigger:         shell.NewProfileTrigger(state.User),
		CanUploadAvatar: avatar.Enabled(h.avatars),
		CanSignIn:       h.signIn,
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buff bytes.Buffer

	if err := templates.ExecuteTemplate(&buff, name, data); err != nil {
		h.handleError(w, r, errors.Wrapf(err, "could not execute template '%s'", name))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if _, err := buff.WriteTo(w); err != nil {
		slog.ErrorContext(r.Context(), "could not write response", log.Error(errors.WithStack(err)))
	}
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "could not handle request", log.Error(errors.WithStack(err)))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func currentPage(r *http.Request) string {
	return r.URL.Query().Get("page")
}

var _ http.Handler = &Handler{}
