package auth

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hawi-pms/console/internal/shared"
)

// DefaultLanding is where a login returns without a usable destination.
const DefaultLanding = "/dashboard"

// Middleware builds the per-request SessionContext and guards routes.
type Middleware struct {
	Authenticator Authenticator
	Logger        *slog.Logger
}

// Load attaches a SessionContext, built from the request session, to the
// request context.
func (m Middleware) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var store Store
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			store = sess
		}
		sc := NewSessionContext(store, m.Authenticator, m.Logger)
		next.ServeHTTP(w, r.WithContext(WithSessionContext(r.Context(), sc)))
	})
}

// RequireAuth redirects anonymous requests to the login page, carrying the
// requested location in the next parameter.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()).Authenticated() {
			next.ServeHTTP(w, r)
			return
		}
		http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusSeeOther)
	})
}

// LoginURL links to the login page returning to next afterwards.
func LoginURL(next string) string {
	if next == "" || next == "/" || !isLocal(next) {
		return "/login"
	}
	return "/login?" + url.Values{"next": {next}}.Encode()
}

// SafeNext returns next when it is a path on this site, else the landing
// page.
func SafeNext(next string) string {
	if next == "" || next == "/" || !isLocal(next) || strings.HasPrefix(next, "/login") {
		return DefaultLanding
	}
	return next
}

func isLocal(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return false
	}
	u, err := url.Parse(target)
	return err == nil && u.Scheme == "" && u.Host == ""
}
