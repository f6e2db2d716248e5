package auth

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/hawi-pms/console/internal/shared"
	"github.com/hawi-pms/console/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	responder      *view.Responder
	sessionManager *shared.SessionManager
	repo           Repository
	loginLimiter   func(http.Handler) http.Handler
}

// NewHandler constructs a Handler instance. loginLimit caps login attempts
// per client IP and minute; zero disables the limit.
func NewHandler(logger *slog.Logger, responder *view.Responder, sessions *shared.SessionManager, repo Repository, loginLimit int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if repo == nil {
		repo = NopRepository{}
	}
	h := &Handler{
		logger:         logger,
		responder:      responder,
		sessionManager: sessions,
		repo:           repo,
	}
	if loginLimit > 0 {
		h.loginLimiter = httprate.Limit(loginLimit, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(h.tooManyAttempts))
	}
	return h
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Group(func(r chi.Router) {
		if h.loginLimiter != nil {
			r.Use(h.loginLimiter)
		}
		r.Post("/login", h.handleLogin)
	})
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Username string
	Next     string
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if FromContext(r.Context()).Authenticated() {
		http.Redirect(w, r, SafeNext(next), http.StatusSeeOther)
		return
	}
	h.responder.Render(w, r, "pages/login.html", "Sign in", loginPageData{Form: loginForm{Next: next}}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Next:     r.PostFormValue("next"),
	}
	sc := FromContext(r.Context())
	if sc == nil {
		h.logger.Error("session context missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	result := sc.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if !result.OK {
		status := http.StatusUnauthorized
		if result.Message == MessageCredentialsRequired {
			status = http.StatusBadRequest
		}
		data := loginPageData{Form: form, Errors: map[string]string{"general": result.Message}}
		h.responder.Render(w, r, "pages/login.html", "Sign in", data, status)
		return
	}

	user := sc.User()
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.sessionManager.Renew(sess)
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back, " + user.DisplayName() + "."})
		rec := SessionRecord{
			ID:        sess.ID,
			UserID:    user.ID,
			Username:  user.Username,
			Role:      user.Role,
			IP:        r.RemoteAddr,
			UserAgent: r.UserAgent(),
			ExpiresAt: time.Now().Add(h.sessionManager.TTL()),
		}
		if err := h.repo.CreateSession(r.Context(), rec); err != nil {
			h.logger.Warn("record login", slog.Any("error", err))
		}
	} else {
		h.logger.Error("session missing during login")
	}
	h.logger.Info("user signed in", slog.Int64("user_id", user.ID), slog.String("role", user.Role))
	http.Redirect(w, r, SafeNext(form.Next), http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sc := FromContext(r.Context()); sc != nil {
		sc.Logout()
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		if err := h.repo.EndSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("record logout", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) tooManyAttempts(w http.ResponseWriter, r *http.Request) {
	data := loginPageData{
		Form:   loginForm{Username: strings.TrimSpace(r.PostFormValue("username")), Next: r.PostFormValue("next")},
		Errors: map[string]string{"general": "Too many sign-in attempts. Try again in a minute."},
	}
	h.responder.Render(w, r, "pages/login.html", "Sign in", data, http.StatusTooManyRequests)
}
