package web

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/bornholm/breathe/internal/account"
	"github.com/bornholm/breathe/internal/avatar"
	"github.com/bornholm/breathe/internal/shell"
	"github.com/bornholm/breathe/pkg/log"
	"github.com/pkg/errors"
)

const (
	errMessageUnauthenticated = "Sign in to update your profile."
	errMessageInvalidAvatar   = "Avatars must be PNG, JPEG, GIF or WebP images."
	errMessageAvatarTooLarge  = "This image is too large."
	errMessageUpdateFailed    = "Your profile could not be updated. Please try again."
)

// handleProfileUpdate saves the profile form and hands the user returned by
// the account provider to the shell, which replaces its current user.
func (h *Handler) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sh, _, err := h.openShell(w, r)
	if err != nil {
		h.handleError(w, r, errors.WithStack(err))
		return
	}

	page := currentPage(r)

	renderError := func(message string) {
		data := h.newPanelTemplateData(page, sh.Snapshot())
		data.Error = message
		h.render(w, r, "profile-panel", data)
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxAvatarSize+(1<<20))

	if err := r.ParseMultipartForm(h.maxAvatarSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			renderError(errMessageAvatarTooLarge)
			return
		}

		if !errors.Is(err, http.ErrNotMultipart) {
			slog.WarnContext(ctx, "could not parse profile form", log.Error(errors.WithStack(err)))
			renderError(errMessageUpdateFailed)
			return
		}

		if err := r.ParseForm(); err != nil {
			slog.WarnContext(ctx, "could not parse profile form", log.Error(errors.WithStack(err)))
			renderError(errMessageUpdateFailed)
			return
		}
	}

	changes := account.Changes{}

	if r.Form.Has("full_name") {
		fullName := r.Form.Get("full_name")
		changes.FullName = &fullName
	}

	if avatar.Enabled(h.avatars) {
		avatarURL, message, err := h.storeAvatar(r, sh)
		if err != nil {
			slog.ErrorContext(ctx, "could not store avatar", log.Error(errors.WithStack(err)))
			renderError(errMessageUpdateFailed)
			return
		}

		if message != "" {
			renderError(message)
			return
		}

		if avatarURL != "" {
			changes.Avatar = &avatarURL
		}
	}

	if changes.Empty() {
		h.render(w, r, "profile-panel", h.newPanelTemplateData(page, sh.Snapshot()))
		return
	}

	user, err := h.accounts.UpdateMe(ctx, changes)
	if err != nil {
		if errors.Is(err, account.ErrUnauthenticated) {
			renderError(errMessageUnauthenticated)
			return
		}

		slog.ErrorContext(ctx, "could not update profile", log.Error(errors.WithStack(err)))
		renderError(errMessageUpdateFailed)
		return
	}

	sh.Dispatch(shell.ReplaceUser{User: user})

	state := sh.Snapshot()

	header := newHeaderTemplateData(page, state)
	header.OOB = true

	h.render(w, r, "profile-update", ProfileUpdateTemplateData{
		Panel:  h.newPanelTemplateData(page, state),
		Header: header,
	})
}

// storeAvatar stores the uploaded avatar, if any, and returns its URL or a
// message explaining why the upload was refused.
func (h *Handler) storeAvatar(r *http.Request, sh *shell.Shell) (string, string, error) {
	file, fileHeader, err := r.FormFile("avatar")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", "", nil
		}

		return "", "", errors.WithStack(err)
	}

	defer file.Close()

	if fileHeader.Size == 0 {
		return "", "", nil
	}

	if fileHeader.Size > h.maxAvatarSize {
		return "", errMessageAvatarTooLarge, nil
	}

	contentType, err := sniffContentType(file)
	if err != nil {
		return "", "", errors.WithStack(err)
	}

	if _, allowed := avatar.Extension(contentType); !allowed {
		return "", errMessageInvalidAvatar, nil
	}

	owner := sh.ID()
	if user := sh.Snapshot().User; user != nil && user.ID != "" {
		owner = user.ID
	}

	avatarURL, err := h.avatars.Put(r.Context(), owner, file, fileHeader.Size, contentType)
	if err != nil {
		return "", "", errors.WithStack(err)
	}

	return avatarURL, "", nil
}

func sniffContentType(file multipart.File) (string, error) {
	head := make([]byte, 512)

	read, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", errors.WithStack(err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", errors.WithStack(err)
	}

	return http.DetectContentType(head[:read]), nil
}
