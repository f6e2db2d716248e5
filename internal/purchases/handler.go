// Package purchases serves stock intake from suppliers.
package purchases

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/format"
	"github.com/hawi-pms/console/internal/platform/httpx"
	"github.com/hawi-pms/console/internal/rbac"
	"github.com/hawi-pms/console/internal/table"
	"github.com/hawi-pms/console/internal/view"
)

const (
	basePath   = "/purchases"
	exportFile = "purchases.csv"
)

// API is the slice of the backend the purchase pages use.
type API interface {
	ListPurchases(ctx context.Context) ([]backend.Purchase, error)
	GetPurchase(ctx context.Context, id int64) (backend.Purchase, error)
	CreatePurchase(ctx context.Context, in backend.PurchaseInput) (backend.Purchase, error)
	UpdatePurchase(ctx context.Context, id int64, in backend.PurchaseUpdate) (backend.Purchase, error)
	DeletePurchase(ctx context.Context, id int64) error
	ListMedicines(ctx context.Context) ([]backend.Medicine, error)
	ListSuppliers(ctx context.Context) ([]backend.Supplier, error)
}

// Handler manages purchase endpoints.
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

// MountRoutes registers purchase routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.RequireRoles(rbac.StockKeepers...))
	r.Get("/", h.list)
	r.Get("/export.csv", h.export)
	r.Post("/", h.create)
	r.Get("/{id}/edit", h.edit)
	r.Post("/{id}", h.update)
	r.Post("/{id}/delete", h.delete)
}

var searchFields = []table.Field[backend.Purchase]{
	table.ByName[backend.Purchase]("id"),
	table.ByName[backend.Purchase]("invoice_number"),
	table.ByName[backend.Purchase]("note"),
	table.ByName[backend.Purchase]("purchased_at"),
	table.ByFunc(func(p backend.Purchase) any { return p.TotalAmount }),
	table.ByFunc(func(p backend.Purchase) any { return len(p.Items) }),
}

var csvColumns = []table.Column[backend.Purchase]{
	table.Col[backend.Purchase]("Purchase ID", "id"),
	table.Col[backend.Purchase]("Invoice", "invoice_number"),
	table.Col[backend.Purchase]("Items", "item_count"),
	table.ColFunc("Total", func(p backend.Purchase) any { return format.ETBPlain(p.TotalAmount) }),
	table.Col[backend.Purchase]("Purchased At", "purchased_at"),
}

type data struct {
	purchases []backend.Purchase
	medicines []backend.Medicine
	suppliers []backend.Supplier
}

func (h *Handler) load(ctx context.Context) (data, error) {
	var d data
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.suppliers, err = h.api.ListSuppliers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.medicines, err = h.api.ListMedicines(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.purchases, err = h.api.ListPurchases(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return data{}, err
	}
	return d, nil
}

func medicineNames(medicines []backend.Medicine) map[int64]string {
	names := make(map[int64]string, len(medicines))
	for _, m := range medicines {
		names[m.ID] = m.Name
	}
	return names
}

type listPage struct {
	View          table.View[backend.Purchase]
	Form          purchaseForm
	Errors        view.FormErrors
	Medicines     []backend.Medicine
	Suppliers     []backend.Supplier
	SupplierNames map[int64]string
	LoadError     *view.LoadError
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, emptyForm(), nil, http.StatusOK)
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, form purchaseForm, errs view.FormErrors, status int) {
	q := table.ParseQuery(r.URL.Query())
	page := listPage{Form: form, Errors: errs}
	d, err := h.load(r.Context())
	if err != nil {
		h.logger.Warn("load purchases", slog.Any("error", err))
		page.LoadError = view.NewLoadError(r, err)
	}
	page.Medicines = d.medicines
	page.Suppliers = d.suppliers
	page.SupplierNames = make(map[int64]string, len(d.suppliers))
	for _, s := range d.suppliers {
		page.SupplierNames[s.ID] = s.Name
	}
	filtered := table.FilterByQuery(d.purchases, q.Text, searchFields...)
	page.View = table.NewView(basePath, q, table.Paginate(filtered, q.Page, q.PageSize), nil)
	h.responder.Render(w, r, "pages/purchases.html", "Purchases", page, status)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.api.ListPurchases(r.Context())
	if err != nil {
		h.responder.Fail(w, r, basePath, "export purchases", err)
		return
	}
	q := table.ParseQuery(r.URL.Query())
	h.responder.CSV(w, r, exportFile, table.BuildCSV(table.FilterByQuery(purchases, q.Text, searchFields...), csvColumns))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := formFromRequest(r)
	medicines, err := h.api.ListMedicines(r.Context())
	if err != nil {
		h.responder.Fail(w, r, basePath, "load medicines", err)
		return
	}
	in, errs := form.input(medicineNames(medicines))
	if errs.Any() {
		h.renderList(w, r, form, errs, http.StatusBadRequest)
		return
	}
	if _, err := h.api.CreatePurchase(r.Context(), in); err != nil {
		h.responder.Fail(w, r, basePath, "create purchase", err)
		return
	}
	h.responder.Success(w, r, basePath, MessageCreated)
}

type editPage struct {
	Purchase      backend.Purchase
	Form          headerForm
	Errors        view.FormErrors
	Suppliers     []backend.Supplier
	MedicineNames map[int64]string
}

func (h *Handler) loadEdit(ctx context.Context, id int64) (editPage, error) {
	var page editPage
	var medicines []backend.Medicine
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page.Purchase, err = h.api.GetPurchase(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		page.Suppliers, err = h.api.ListSuppliers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		medicines, err = h.api.ListMedicines(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return editPage{}, err
	}
	page.MedicineNames = medicineNames(medicines)
	return page, nil
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid purchase ID", http.StatusBadRequest)
		return
	}
	page, err := h.loadEdit(r.Context(), id)
	if err != nil {
		h.responder.Fail(w, r, basePath, "load purchase", err)
		return
	}
	p := page.Purchase
	if p.SupplierID != nil {
		page.Form.SupplierID = strconv.FormatInt(*p.SupplierID, 10)
	}
	if p.InvoiceNumber != nil {
		page.Form.InvoiceNumber = *p.InvoiceNumber
	}
	if p.Note != nil {
		page.Form.Note = *p.Note
	}
	h.responder.Render(w, r, "pages/purchase_edit.html", "Edit purchase", page, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid purchase ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := headerFromRequest(r)
	up, errs := form.update()
	if errs.Any() {
		page, err := h.loadEdit(r.Context(), id)
		if err != nil {
			h.responder.Fail(w, r, basePath, "load purchase", err)
			return
		}
		page.Form, page.Errors = form, errs
		h.responder.Render(w, r, "pages/purchase_edit.html", "Edit purchase", page, http.StatusBadRequest)
		return
	}
	if _, err := h.api.UpdatePurchase(r.Context(), id, up); err != nil {
		h.responder.Fail(w, r, basePath+"/"+strconv.FormatInt(id, 10)+"/edit", "update purchase", err)
		return
	}
	h.responder.Success(w, r, basePath, "Purchase updated.")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid purchase ID", http.StatusBadRequest)
		return
	}
	if err := h.api.DeletePurchase(r.Context(), id); err != nil {
		h.responder.Fail(w, r, basePath, "delete purchase", err)
		return
	}
	h.responder.Success(w, r, basePath, "Purchase deleted.")
}
