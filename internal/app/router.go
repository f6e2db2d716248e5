package app

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hawi-pms/console/internal/auth"
	"github.com/hawi-pms/console/internal/dashboard"
	"github.com/hawi-pms/console/internal/medicines"
	"github.com/hawi-pms/console/internal/observability"
	"github.com/hawi-pms/console/internal/platform/httpx"
	"github.com/hawi-pms/console/internal/purchases"
	"github.com/hawi-pms/console/internal/rbac"
	"github.com/hawi-pms/console/internal/reports"
	"github.com/hawi-pms/console/internal/sales"
	"github.com/hawi-pms/console/internal/settings"
	"github.com/hawi-pms/console/internal/shared"
	"github.com/hawi-pms/console/internal/stock"
	"github.com/hawi-pms/console/internal/suppliers"
	"github.com/hawi-pms/console/internal/users"
	"github.com/hawi-pms/console/internal/view"
	"github.com/hawi-pms/console/web"
)

const readyTimeout = 3 * time.Second

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Responder      *view.Responder
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Authenticator  auth.Authenticator
	Metrics        *observability.Metrics
	ReadyChecks    []httpx.Check

	AuthHandler      *auth.Handler
	DashboardHandler *dashboard.Handler
	MedicineHandler  *medicines.Handler
	SupplierHandler  *suppliers.Handler
	StockHandler     *stock.Handler
	PurchaseHandler  *purchases.Handler
	SalesHandler     *sales.Handler
	ReportHandler    *reports.Handler
	UsersHandler     *users.Handler
	SettingsHandler  *settings.Handler
}

// NewRouter constructs the chi.Router with console defaults. Probes, metrics
// and static assets bypass sessions; every page runs the full stack.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	r.Get("/healthz", httpx.Health)
	r.Get("/readyz", httpx.Ready(readyTimeout, params.ReadyChecks...))
	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	authMW := auth.Middleware{Authenticator: params.Authenticator, Logger: logger}
	rbacMW := rbac.Middleware{Logger: logger}

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(MiddlewareConfig{
			Logger:         logger,
			Config:         params.Config,
			SessionManager: params.SessionManager,
			CSRFManager:    params.CSRFManager,
			Metrics:        params.Metrics,
		}) {
			r.Use(mw)
		}
		r.Use(requestLogger(logger))
		r.Use(authMW.Load)

		r.NotFound(func(w http.ResponseWriter, req *http.Request) {
			params.Responder.Render(w, req, "pages/not_found.html", "Not found", nil, http.StatusNotFound)
		})

		if params.AuthHandler != nil {
			params.AuthHandler.MountRoutes(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Get("/", func(w http.ResponseWriter, req *http.Request) {
				http.Redirect(w, req, rbac.LandingPath, http.StatusSeeOther)
			})
			if params.DashboardHandler != nil {
				r.Route(rbac.SectionDashboard, func(r chi.Router) {
					r.Use(rbacMW.RequireRoles(rbac.Everyone...))
					params.DashboardHandler.MountRoutes(r)
				})
			}
			if params.MedicineHandler != nil {
				r.Route(rbac.SectionMedicines, func(r chi.Router) {
					r.Use(rbacMW.RequireRoles(rbac.CatalogRead...))
					params.MedicineHandler.MountRoutes(r)
				})
			}
			if params.SupplierHandler != nil {
				r.Route(rbac.SectionSuppliers, func(r chi.Router) {
					r.Use(rbacMW.RequireRoles(rbac.CatalogRead...))
					params.SupplierHandler.MountRoutes(r)
				})
			}
			if params.StockHandler != nil {
				r.Route(rbac.SectionStock, func(r chi.Router) {
					r.Use(rbacMW.RequireRoles(rbac.StockKeepers...))
					params.StockHandler.MountRoutes(r)
				})
			}
			if params.PurchaseHandler != nil {
				r.Route(rbac.SectionPurchases, func(r chi.Router) {
					r.Use(rbacMW.RequireRoles(rbac.StockKeepers...))
					params.PurchaseHandler.MountRoutes(r)
				})
			}
			if params.SalesHandler != nil {
				r.Route(rbac.SectionSales, func(r chi.Router) {
					r.Use(rbacMW.RequireRoles(rbac.Sellers...))
					params.SalesHandler.MountRoutes(r)
				})
			}
			if params.ReportHandler != nil {
				r.Route(rbac.SectionReports, func(r chi.Router) {
					r.Use(rbacMW.RequireRoles(rbac.ReportViewers...))
					params.ReportHandler.MountRoutes(r)
				})
			}
			if params.UsersHandler != nil {
				r.Route(rbac.SectionUsers, func(r chi.Router) {
					r.Use(rbacMW.RequireRoles(rbac.UserAdmins...))
					params.UsersHandler.MountRoutes(r)
				})
			}
			if params.SettingsHandler != nil {
				r.Route(rbac.SectionSettings, func(r chi.Router) {
					r.Use(rbacMW.RequireRoles(rbac.Everyone...))
					params.SettingsHandler.MountRoutes(r)
				})
			}
		})
	})

	return r
}

// requestLogger writes one structured line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("request_id", chimw.GetReqID(r.Context())))
		})
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
