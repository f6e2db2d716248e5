package stock

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/rbac"
	"github.com/hawi-pms/console/internal/table"
	"github.com/hawi-pms/console/internal/view"
)

const (
	basePath   = "/stock"
	exportFile = "stock-report.csv"
)

// API is the slice of the backend the stock report uses.
type API interface {
	ListMedicines(ctx context.Context) ([]backend.Medicine, error)
	ListSuppliers(ctx context.Context) ([]backend.Supplier, error)
}

// Handler serves the stock report.
type Handler struct {
	logger    *slog.Logger
	api       API
	responder *view.Responder
	rbac      rbac.Middleware
	threshold int
}

// NewHandler builds Handler instance. A non-positive threshold uses
// DefaultLowStockThreshold.
func NewHandler(logger *slog.Logger, api API, responder *view.Responder, rbac rbac.Middleware, threshold int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return &Handler{logger: logger, api: api, responder: responder, rbac: rbac, threshold: threshold}
}

// MountRoutes registers stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.RequireRoles(rbac.StockKeepers...))
	r.Get("/", h.report)
	r.Get("/export.csv", h.export)
}

func (h *Handler) load(ctx context.Context) ([]Row, error) {
	var (
		medicines []backend.Medicine
		suppliers []backend.Supplier
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		medicines, err = h.api.ListMedicines(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		suppliers, err = h.api.ListSuppliers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return BuildRows(medicines, suppliers), nil
}

type reportPage struct {
	View      table.View[Row]
	Summary   Summary
	LoadError *view.LoadError
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	q := table.ParseQuery(r.URL.Query())
	var page reportPage
	rows, err := h.load(r.Context())
	if err != nil {
		h.logger.Warn("load stock", slog.Any("error", err))
		page.LoadError = view.NewLoadError(r, err)
	}
	page.Summary = Summarize(rows, h.threshold)
	filtered := table.FilterByQuery(rows, q.Text, SearchFields...)
	page.View = table.NewView(basePath, q, table.Paginate(filtered, q.Page, q.PageSize), nil)
	h.responder.Render(w, r, "pages/stock.html", "Stock", page, http.StatusOK)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	rows, err := h.load(r.Context())
	if err != nil {
		h.responder.Fail(w, r, basePath, "export stock", err)
		return
	}
	q := table.ParseQuery(r.URL.Query())
	h.responder.CSV(w, r, exportFile, table.BuildCSV(table.FilterByQuery(rows, q.Text, SearchFields...), CSVColumns))
}
