// Package dashboard serves the landing page: counters, readiness and the
// sales, stock and expiry insights derived from the catalogue.
package dashboard

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/format"
	"github.com/hawi-pms/console/internal/svg"
	"github.com/hawi-pms/console/internal/view"
)

// API is the slice of the backend the dashboard reads.
type API interface {
	Stats(ctx context.Context) (backend.DashboardStats, error)
	ListSales(ctx context.Context) ([]backend.Sale, error)
	ListMedicines(ctx context.Context) ([]backend.Medicine, error)
	ListSuppliers(ctx context.Context) ([]backend.Supplier, error)
}

// Options tunes the dashboard insights.
type Options struct {
	ExpiryDays int
	Location   *time.Location
}

// Handler serves the dashboard.
type Handler struct {
	logger    *slog.Logger
	api       API
	responder *view.Responder
	opts      Options
	now       func() time.Time
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, api API, responder *view.Responder, opts Options) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ExpiryDays <= 0 {
		opts.ExpiryDays = DefaultExpiryDays
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Handler{logger: logger, api: api, responder: responder, opts: opts, now: time.Now}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// MountRoutes registers dashboard routes. Every signed-in role may open them.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
}

type dashboardData struct {
	stats     backend.DashboardStats
	sales     []backend.Sale
	medicines []backend.Medicine
	suppliers []backend.Supplier
}

func (h *Handler) load(ctx context.Context) (dashboardData, error) {
	var data dashboardData
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.stats, err = h.api.Stats(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.sales, err = h.api.ListSales(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.medicines, err = h.api.ListMedicines(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.suppliers, err = h.api.ListSuppliers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return dashboardData{}, err
	}
	return data, nil
}

type dashboardPage struct {
	Stats      backend.DashboardStats
	Readiness  int
	SalesChart template.HTML
	StockChart template.HTML
	Weekly     float64
	TopSelling []TopItem
	Expiring   []Expiring
	ExpiryDays int
	LoadError  *view.LoadError
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	page := dashboardPage{ExpiryDays: h.opts.ExpiryDays}
	data, err := h.load(r.Context())
	if err != nil {
		h.logger.Warn("load dashboard", slog.Any("error", err))
		page.LoadError = view.NewLoadError(r, err)
		h.responder.Render(w, r, "pages/dashboard.html", "Dashboard", page, http.StatusOK)
		return
	}

	now := h.now()
	page.Stats = data.stats
	page.Readiness = Readiness(data.stats)
	page.TopSelling = TopSelling(data.sales, data.medicines, TopSellingLimit)
	page.Expiring = ExpiringSoon(data.medicines, now, h.opts.ExpiryDays, ExpiringLimit, h.opts.Location)

	series := SalesSeries(data.sales, now, SalesDays, h.opts.Location)
	values := make([]float64, len(series))
	labels := make([]string, len(series))
	for i, day := range series {
		values[i] = day.Value
		labels[i] = day.Label
		page.Weekly += day.Value
	}
	if page.SalesChart, err = svg.Line(svg.DefaultWidth, svg.DefaultHeight, values, labels, svg.LineOpts{
		Title:       "Sales, last 7 days",
		Description: "Daily sales revenue in ETB",
		ShowDots:    true,
		TickFormat:  format.ETBPlain,
	}); err != nil {
		h.logger.Error("render sales chart", slog.Any("error", err))
	}

	if bars := StockBySupplier(data.medicines, data.suppliers, SupplierBarsLimit); len(bars) > 0 {
		units := make([]float64, len(bars))
		names := make([]string, len(bars))
		for i, bar := range bars {
			units[i] = float64(bar.Units)
			names[i] = bar.Label
		}
		if page.StockChart, err = svg.Bars(svg.DefaultWidth, svg.DefaultHeight, units, names, svg.BarOpts{
			Title:       "Stock by supplier",
			Description: "Units in stock per supplier",
			SeriesLabel: "Units",
		}); err != nil {
			h.logger.Error("render stock chart", slog.Any("error", err))
		}
	}
	h.responder.Render(w, r, "pages/dashboard.html", "Dashboard", page, http.StatusOK)
}
