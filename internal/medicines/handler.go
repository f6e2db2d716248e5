// Package medicines serves the medicine inventory pages.
package medicines

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/platform/httpx"
	"github.com/hawi-pms/console/internal/rbac"
	"github.com/hawi-pms/console/internal/table"
	"github.com/hawi-pms/console/internal/view"
)

const (
	basePath      = "/medicines"
	exportFile    = "medicines.csv"
	defaultDelta  = 10
	supplierAll   = ""
	supplierNone  = "none"
	supplierParam = "supplier"
)

// API is the slice of the backend the medicine pages use.
type API interface {
	ListMedicines(ctx context.Context) ([]backend.Medicine, error)
	GetMedicine(ctx context.Context, id int64) (backend.Medicine, error)
	CreateMedicine(ctx context.Context, in backend.MedicineInput) (backend.Medicine, error)
	UpdateMedicine(ctx context.Context, id int64, in backend.MedicineInput) (backend.Medicine, error)
	DeleteMedicine(ctx context.Context, id int64) error
	AdjustMedicineStock(ctx context.Context, id int64, delta int) (backend.Medicine, error)
	ListSuppliers(ctx context.Context) ([]backend.Supplier, error)
}

// Handler manages medicine endpoints.
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

// MountRoutes registers medicine routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRoles(rbac.CatalogRead...))
		r.Get("/", h.list)
		r.Get("/export.csv", h.export)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRoles(rbac.CatalogWrite...))
		r.Post("/", h.create)
		r.Get("/{id}/edit", h.edit)
		r.Post("/{id}", h.update)
		r.Post("/{id}/delete", h.delete)
		r.Post("/{id}/stock", h.adjustStock)
	})
}

type catalog struct {
	medicines []backend.Medicine
	suppliers []backend.Supplier
}

func (c catalog) supplierNames() map[int64]string {
	names := make(map[int64]string, len(c.suppliers))
	for _, s := range c.suppliers {
		names[s.ID] = s.Name
	}
	return names
}

func (h *Handler) load(ctx context.Context) (catalog, error) {
	var c catalog
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		c.medicines, err = h.api.ListMedicines(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		c.suppliers, err = h.api.ListSuppliers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return catalog{}, err
	}
	return c, nil
}

// filterMedicines applies the search text and the supplier selector.
func filterMedicines(items []backend.Medicine, text, supplier string) []backend.Medicine {
	list := table.FilterByQuery(items, text, table.Names[backend.Medicine]("name", "generic_name", "batch_number", "expiry_date")...)
	switch supplier {
	case supplierAll:
		return list
	case supplierNone:
		return table.Where(list, func(m backend.Medicine) bool { return m.SupplierID == nil })
	}
	id, err := strconv.ParseInt(supplier, 10, 64)
	if err != nil {
		return list
	}
	return table.Where(list, func(m backend.Medicine) bool { return m.SupplierID != nil && *m.SupplierID == id })
}

func csvColumns(names map[int64]string) []table.Column[backend.Medicine] {
	return []table.Column[backend.Medicine]{
		table.Col[backend.Medicine]("Name", "name"),
		table.Col[backend.Medicine]("Generic", "generic_name"),
		table.Col[backend.Medicine]("Batch", "batch_number"),
		table.Col[backend.Medicine]("Expiry", "expiry_date"),
		table.Col[backend.Medicine]("Unit Price", "unit_price"),
		table.Col[backend.Medicine]("Stock", "stock_qty"),
		table.ColFunc("Supplier", func(m backend.Medicine) any {
			if m.SupplierID == nil {
				return ""
			}
			return names[*m.SupplierID]
		}),
	}
}

type listPage struct {
	View           table.View[backend.Medicine]
	Suppliers      []backend.Supplier
	SupplierNames  map[int64]string
	SupplierFilter string
	Form           medicineForm
	Errors         view.FormErrors
	LoadError      *view.LoadError
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, medicineForm{}, nil, http.StatusOK)
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, form medicineForm, errs view.FormErrors, status int) {
	q := table.ParseQuery(r.URL.Query())
	supplier := r.URL.Query().Get(supplierParam)
	page := listPage{SupplierFilter: supplier, Form: form, Errors: errs}

	c, err := h.load(r.Context())
	if err != nil {
		h.logger.Warn("load medicines", slog.Any("error", err))
		page.LoadError = view.NewLoadError(r, err)
		page.View = table.NewView(basePath, q, table.Paginate[backend.Medicine](nil, 1, q.PageSize), nil)
		h.responder.Render(w, r, "pages/medicines.html", "Medicines", page, status)
		return
	}

	filtered := filterMedicines(c.medicines, q.Text, supplier)
	page.View = table.NewView(basePath, q, table.Paginate(filtered, q.Page, q.PageSize), url.Values{supplierParam: {supplier}})
	page.Suppliers = c.suppliers
	page.SupplierNames = c.supplierNames()
	h.responder.Render(w, r, "pages/medicines.html", "Medicines", page, status)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	c, err := h.load(r.Context())
	if err != nil {
		h.responder.Fail(w, r, basePath, "export medicines", err)
		return
	}
	q := table.ParseQuery(r.URL.Query())
	filtered := filterMedicines(c.medicines, q.Text, r.URL.Query().Get(supplierParam))
	h.responder.CSV(w, r, exportFile, table.BuildCSV(filtered, csvColumns(c.supplierNames())))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := formFromRequest(r)
	in, errs := form.input()
	if errs.Any() {
		h.renderList(w, r, form, errs, http.StatusBadRequest)
		return
	}
	med, err := h.api.CreateMedicine(r.Context(), in)
	if err != nil {
		h.responder.Fail(w, r, basePath, "create medicine", err)
		return
	}
	h.responder.Success(w, r, basePath, "Medicine "+med.Name+" added.")
}

type editPage struct {
	ID        int64
	Form      medicineForm
	Errors    view.FormErrors
	Suppliers []backend.Supplier
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid medicine ID", http.StatusBadRequest)
		return
	}
	var (
		med       backend.Medicine
		suppliers []backend.Supplier
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		med, err = h.api.GetMedicine(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		suppliers, err = h.api.ListSuppliers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.responder.Fail(w, r, basePath, "load medicine", err)
		return
	}
	h.responder.Render(w, r, "pages/medicine_edit.html", "Edit medicine", editPage{
		ID:        id,
		Form:      formFromMedicine(med),
		Suppliers: suppliers,
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid medicine ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := formFromRequest(r)
	in, errs := form.input()
	if errs.Any() {
		suppliers, err := h.api.ListSuppliers(r.Context())
		if err != nil {
			h.logger.Warn("load suppliers", slog.Any("error", err))
		}
		h.responder.Render(w, r, "pages/medicine_edit.html", "Edit medicine", editPage{
			ID: id, Form: form, Errors: errs, Suppliers: suppliers,
		}, http.StatusBadRequest)
		return
	}
	if _, err := h.api.UpdateMedicine(r.Context(), id, in); err != nil {
		h.responder.Fail(w, r, basePath+"/"+strconv.FormatInt(id, 10)+"/edit", "update medicine", err)
		return
	}
	h.responder.Success(w, r, basePath, "Medicine updated.")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid medicine ID", http.StatusBadRequest)
		return
	}
	if err := h.api.DeleteMedicine(r.Context(), id); err != nil {
		h.responder.Fail(w, r, basePath, "delete medicine", err)
		return
	}
	h.responder.Success(w, r, basePath, "Medicine deleted.")
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid medicine ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	delta := defaultDelta
	if raw := r.PostFormValue("delta"); raw != "" {
		parsed, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || parsed == 0 {
			h.responder.RedirectWithFlash(w, r, view.ReturnTo(r, basePath), "error", "Stock change must be a non-zero whole number.")
			return
		}
		delta = parsed
	}
	med, err := h.api.AdjustMedicineStock(r.Context(), id, delta)
	if err != nil {
		h.responder.Fail(w, r, view.ReturnTo(r, basePath), "adjust stock", err)
		return
	}
	h.responder.Success(w, r, view.ReturnTo(r, basePath), "Stock for "+med.Name+" is now "+strconv.Itoa(med.StockQty)+".")
}

