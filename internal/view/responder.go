package view

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/hawi-pms/console/internal/rbac"
	"github.com/hawi-pms/console/internal/shared"
)

// Responder renders pages and flash redirects for handlers. It fills the
// chrome every page shares: CSRF token, flash, user and navigation.
type Responder struct {
	Templates *Engine
	CSRF      *shared.CSRFManager
	Policy    rbac.Policy
	Logger    *slog.Logger
	Exports   ExportObserver
}

// NewResponder constructs a Responder.
func NewResponder(templates *Engine, csrf *shared.CSRFManager, policy rbac.Policy, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{Templates: templates, CSRF: csrf, Policy: policy, Logger: logger}
}

// Render executes tpl with data and writes it with status. Output is
// buffered so a template failure yields a clean 500.
func (rs *Responder) Render(w http.ResponseWriter, r *http.Request, tpl, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	var csrfToken string
	if rs.CSRF != nil {
		csrfToken = rs.CSRF.EnsureToken(sess)
	}
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	user := shared.UserFromContext(r.Context())
	var nav []rbac.NavItem
	if user != nil {
		nav = rs.Policy.Navigation(user.Role, r.URL.Path)
	}
	viewData := TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		User:        user,
		Nav:         nav,
		Data:        data,
	}

	var buf bytes.Buffer
	if err := rs.Templates.Execute(&buf, tpl, viewData); err != nil {
		rs.Logger.Error("render template", slog.String("template", tpl), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// RedirectWithFlash queues a flash message and redirects.
func (rs *Responder) RedirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && message != "" {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
