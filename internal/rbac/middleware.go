package rbac

import (
	"log/slog"
	"net/http"

	"github.com/hawi-pms/console/internal/shared"
)

// LandingPath is where users are sent when a page is not for their role.
const LandingPath = "/dashboard"

// Middleware wires role checks for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// RequireRoles lets through users whose role is in roles and redirects
// everyone else to the landing page. Anonymous requests are expected to be
// stopped earlier by the auth guard; here they are redirected to login.
func (m Middleware) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	allowed := append([]string(nil), roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := shared.UserFromContext(r.Context())
			if user == nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if !Allowed(user.Role, allowed) {
				if m.Logger != nil {
					m.Logger.Info("role not allowed",
						slog.String("path", r.URL.Path),
						slog.String("role", user.Role),
						slog.Int64("user_id", user.ID))
				}
				http.Redirect(w, r, LandingPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
