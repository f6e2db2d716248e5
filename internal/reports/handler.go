// Package reports serves the sales report with seller attribution.
package reports

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/format"
	"github.com/hawi-pms/console/internal/rbac"
	"github.com/hawi-pms/console/internal/table"
	"github.com/hawi-pms/console/internal/view"
)

const (
	basePath   = "/reports"
	exportFile = "sales-report.csv"
)

// API is the slice of the backend the report uses.
type API interface {
	ListSales(ctx context.Context) ([]backend.Sale, error)
}

// Handler serves the sales report.
type Handler struct {
	logger    *slog.Logger
	api       API
	responder *view.Responder
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, api API, responder *view.Responder, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, api: api, responder: responder, rbac: rbac}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.RequireRoles(rbac.ReportViewers...))
	r.Get("/", h.show)
	r.Get("/export.csv", h.export)
}

var searchFields = table.Names[backend.Sale]("id", "customer_name", "seller_name", "seller_username", "sold_at", "total_amount")

var csvColumns = []table.Column[backend.Sale]{
	table.Col[backend.Sale]("Sale ID", "id"),
	table.Col[backend.Sale]("Receipt", "sale_code"),
	table.Col[backend.Sale]("Sold At", "sold_at"),
	table.ColFunc("Seller", func(s backend.Sale) any { return s.Seller() }),
	table.ColFunc("Customer", func(s backend.Sale) any { return s.Customer() }),
	table.ColFunc("Items", func(s backend.Sale) any { return s.Quantity() }),
	table.ColFunc("Total", func(s backend.Sale) any { return format.ETBPlain(s.TotalAmount) }),
}

// Totals summarises the sales matched by the current search.
type Totals struct {
	Sales     int
	Items     int
	Revenue   float64
	Average   float64
	Sellers   int
	Customers int
}

// Summarize totals sales. Walk-in sales do not count as named customers.
func Summarize(sales []backend.Sale) Totals {
	var t Totals
	sellers := map[string]struct{}{}
	for _, s := range sales {
		t.Sales++
		t.Items += s.Quantity()
		t.Revenue += s.TotalAmount
		sellers[s.Seller()] = struct{}{}
		if s.CustomerName != nil && *s.CustomerName != "" {
			t.Customers++
		}
	}
	t.Sellers = len(sellers)
	if t.Sales > 0 {
		t.Average = t.Revenue / float64(t.Sales)
	}
	return t
}

type reportPage struct {
	View      table.View[backend.Sale]
	Totals    Totals
	LoadError *view.LoadError
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	q := table.ParseQuery(r.URL.Query())
	var page reportPage
	sales, err := h.api.ListSales(r.Context())
	if err != nil {
		h.logger.Warn("load sales report", slog.Any("error", err))
		page.LoadError = view.NewLoadError(r, err)
	}
	filtered := table.FilterByQuery(sales, q.Text, searchFields...)
	page.Totals = Summarize(filtered)
	page.View = table.NewView(basePath, q, table.Paginate(filtered, q.Page, q.PageSize), nil)
	h.responder.Render(w, r, "pages/reports.html", "Reports", page, http.StatusOK)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	sales, err := h.api.ListSales(r.Context())
	if err != nil {
		h.responder.Fail(w, r, basePath, "export sales report", err)
		return
	}
	q := table.ParseQuery(r.URL.Query())
	h.responder.CSV(w, r, exportFile, table.BuildCSV(table.FilterByQuery(sales, q.Text, searchFields...), csvColumns))
}
