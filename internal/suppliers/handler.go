// Package suppliers serves the supplier directory pages.
package suppliers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/platform/httpx"
	"github.com/hawi-pms/console/internal/rbac"
	"github.com/hawi-pms/console/internal/table"
	"github.com/hawi-pms/console/internal/view"
)

const (
	basePath   = "/suppliers"
	exportFile = "suppliers.csv"
)

// API is the slice of the backend the supplier pages use.
type API interface {
	ListSuppliers(ctx context.Context) ([]backend.Supplier, error)
	GetSupplier(ctx context.Context, id int64) (backend.Supplier, error)
	CreateSupplier(ctx context.Context, in backend.SupplierInput) (backend.Supplier, error)
	UpdateSupplier(ctx context.Context, id int64, in backend.SupplierInput) (backend.Supplier, error)
	DeleteSupplier(ctx context.Context, id int64) error
}

// Handler manages supplier endpoints.
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

// MountRoutes registers supplier routes.
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
	})
}

var searchFields = table.Names[backend.Supplier]("name", "phone", "address")

var csvColumns = []table.Column[backend.Supplier]{
	table.Col[backend.Supplier]("Name", "name"),
	table.Col[backend.Supplier]("Phone", "phone"),
	table.Col[backend.Supplier]("Address", "address"),
}

type supplierForm struct {
	Name    string `validate:"required,min=2,max=120" label:"Name"`
	Phone   string `validate:"max=40" label:"Phone"`
	Address string `validate:"max=255" label:"Address"`
}

func formFromRequest(r *http.Request) supplierForm {
	return supplierForm{
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		Phone:   strings.TrimSpace(r.PostFormValue("phone")),
		Address: strings.TrimSpace(r.PostFormValue("address")),
	}
}

func (f supplierForm) input() (backend.SupplierInput, view.FormErrors) {
	in := backend.SupplierInput{Name: f.Name}
	if f.Phone != "" {
		phone := f.Phone
		in.Phone = &phone
	}
	if f.Address != "" {
		address := f.Address
		in.Address = &address
	}
	return in, view.CheckForm(f, nil)
}

type listPage struct {
	View      table.View[backend.Supplier]
	Form      supplierForm
	Errors    view.FormErrors
	LoadError *view.LoadError
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, supplierForm{}, nil, http.StatusOK)
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, form supplierForm, errs view.FormErrors, status int) {
	q := table.ParseQuery(r.URL.Query())
	page := listPage{Form: form, Errors: errs}
	suppliers, err := h.api.ListSuppliers(r.Context())
	if err != nil {
		h.logger.Warn("load suppliers", slog.Any("error", err))
		page.LoadError = view.NewLoadError(r, err)
		suppliers = nil
	}
	filtered := table.FilterByQuery(suppliers, q.Text, searchFields...)
	page.View = table.NewView(basePath, q, table.Paginate(filtered, q.Page, q.PageSize), nil)
	h.responder.Render(w, r, "pages/suppliers.html", "Suppliers", page, status)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.api.ListSuppliers(r.Context())
	if err != nil {
		h.responder.Fail(w, r, basePath, "export suppliers", err)
		return
	}
	q := table.ParseQuery(r.URL.Query())
	h.responder.CSV(w, r, exportFile, table.BuildCSV(table.FilterByQuery(suppliers, q.Text, searchFields...), csvColumns))
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
	supplier, err := h.api.CreateSupplier(r.Context(), in)
	if err != nil {
		h.responder.Fail(w, r, basePath, "create supplier", err)
		return
	}
	h.responder.Success(w, r, basePath, "Supplier "+supplier.Name+" added.")
}

type editPage struct {
	ID     int64
	Form   supplierForm
	Errors view.FormErrors
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}
	supplier, err := h.api.GetSupplier(r.Context(), id)
	if err != nil {
		h.responder.Fail(w, r, basePath, "load supplier", err)
		return
	}
	form := supplierForm{Name: supplier.Name}
	if supplier.Phone != nil {
		form.Phone = *supplier.Phone
	}
	if supplier.Address != nil {
		form.Address = *supplier.Address
	}
	h.responder.Render(w, r, "pages/supplier_edit.html", "Edit supplier", editPage{ID: id, Form: form}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := formFromRequest(r)
	in, errs := form.input()
	if errs.Any() {
		h.responder.Render(w, r, "pages/supplier_edit.html", "Edit supplier", editPage{ID: id, Form: form, Errors: errs}, http.StatusBadRequest)
		return
	}
	if _, err := h.api.UpdateSupplier(r.Context(), id, in); err != nil {
		h.responder.Fail(w, r, basePath+"/"+strconv.FormatInt(id, 10)+"/edit", "update supplier", err)
		return
	}
	h.responder.Success(w, r, basePath, "Supplier updated.")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}
	if err := h.api.DeleteSupplier(r.Context(), id); err != nil {
		h.responder.Fail(w, r, basePath, "delete supplier", err)
		return
	}
	h.responder.Success(w, r, basePath, "Supplier deleted.")
}
