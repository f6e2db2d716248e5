// Package settings serves the profile card and password change.
package settings

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/shared"
	"github.com/hawi-pms/console/internal/view"
)

const basePath = "/settings"

// MessagePasswordUpdated confirms a password change.
const MessagePasswordUpdated = "Password updated."

// API is the slice of the backend the settings page uses.
type API interface {
	ChangePassword(ctx context.Context, change backend.PasswordChange) error
}

// Handler serves the settings page.
type Handler struct {
	logger    *slog.Logger
	api       API
	responder *view.Responder
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, api API, responder *view.Responder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, api: api, responder: responder}
}

// MountRoutes registers settings routes. Every signed-in role may open them.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Post("/password", h.changePassword)
}

type passwordForm struct {
	CurrentPassword string `validate:"required" label:"Current password"`
	NewPassword     string `validate:"required,min=6,max=128" label:"New password"`
	ConfirmPassword string `validate:"eqfield=NewPassword" label:"Confirmation"`
}

type settingsPage struct {
	Profile *shared.User
	Errors  view.FormErrors
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, nil, http.StatusOK)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, errs view.FormErrors, status int) {
	page := settingsPage{Profile: shared.UserFromContext(r.Context()), Errors: errs}
	h.responder.Render(w, r, "pages/settings.html", "Settings", page, status)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := passwordForm{
		CurrentPassword: r.PostFormValue("current_password"),
		NewPassword:     r.PostFormValue("new_password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
	if errs := view.CheckForm(form, nil); errs.Any() {
		h.render(w, r, errs, http.StatusBadRequest)
		return
	}
	change := backend.PasswordChange{CurrentPassword: form.CurrentPassword, NewPassword: form.NewPassword}
	if err := h.api.ChangePassword(r.Context(), change); err != nil {
		h.responder.Fail(w, r, basePath, "change password", err)
		return
	}
	if user := shared.UserFromContext(r.Context()); user != nil {
		h.logger.Info("password changed", slog.Int64("user_id", user.ID))
	}
	h.responder.Success(w, r, basePath, MessagePasswordUpdated)
}
