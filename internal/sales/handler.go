// Package sales serves checkout, sale history and receipts.
package sales

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/platform/httpx"
	"github.com/hawi-pms/console/internal/rbac"
	"github.com/hawi-pms/console/internal/receipt"
	"github.com/hawi-pms/console/internal/table"
	"github.com/hawi-pms/console/internal/view"
)

const (
	basePath   = "/sales"
	exportFile = "sales.csv"
)

// API is the slice of the backend the sales pages use.
type API interface {
	ListSales(ctx context.Context) ([]backend.Sale, error)
	GetSale(ctx context.Context, id int64) (backend.Sale, error)
	CreateSale(ctx context.Context, in backend.SaleInput) (backend.Sale, error)
	UpdateSale(ctx context.Context, id int64, in backend.SaleUpdate) (backend.Sale, error)
	DeleteSale(ctx context.Context, id int64) error
	ListMedicines(ctx context.Context) ([]backend.Medicine, error)
}

// ReceiptObserver counts receipt print attempts per surface.
type ReceiptObserver interface {
	ObserveReceipt(surface string, ok bool)
}

// Receipts configures receipt rendering.
type Receipts struct {
	Options  receipt.Options
	PDF      receipt.PDFRenderer
	Observer ReceiptObserver
}

// Handler manages sales endpoints.
type Handler struct {
	logger    *slog.Logger
	api       API
	responder *view.Responder
	rbac      rbac.Middleware
	receipts  Receipts
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, api API, responder *view.Responder, rbac rbac.Middleware, receipts Receipts) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, api: api, responder: responder, rbac: rbac, receipts: receipts}
}

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRoles(rbac.Sellers...))
		r.Get("/", h.list)
		r.Get("/export.csv", h.export)
		r.Post("/", h.create)
		r.Get("/{id}/edit", h.edit)
		r.Post("/{id}", h.update)
		r.Get("/{id}/receipt", h.printReceipt)
		r.Get("/{id}/receipt.pdf", h.receiptPDF)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRoles(rbac.SaleDeleters...))
		r.Post("/{id}/delete", h.delete)
	})
}

var searchFields = table.Names[backend.Sale]("id", "sale_code", "customer_name", "sold_at", "total_amount")

var csvColumns = []table.Column[backend.Sale]{
	table.Col[backend.Sale]("Sale ID", "id"),
	table.Col[backend.Sale]("Customer", "customer_name"),
	table.Col[backend.Sale]("Total", "total_amount"),
	table.Col[backend.Sale]("Sold At", "sold_at"),
}

func medicineIndex(medicines []backend.Medicine) (map[int64]backend.Medicine, map[int64]string) {
	byID := make(map[int64]backend.Medicine, len(medicines))
	names := make(map[int64]string, len(medicines))
	for _, m := range medicines {
		byID[m.ID] = m
		names[m.ID] = m.Name
	}
	return byID, names
}

func (h *Handler) load(ctx context.Context) ([]backend.Sale, []backend.Medicine, error) {
	var (
		sales     []backend.Sale
		medicines []backend.Medicine
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		medicines, err = h.api.ListMedicines(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = h.api.ListSales(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return sales, medicines, nil
}

type listPage struct {
	View      table.View[backend.Sale]
	Form      saleForm
	Errors    view.FormErrors
	Medicines []backend.Medicine
	LoadError  *view.LoadError
	DraftTotal float64
	PDF        bool
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, emptyForm(), nil, http.StatusOK)
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, form saleForm, errs view.FormErrors, status int) {
	q := table.ParseQuery(r.URL.Query())
	page := listPage{Form: form, Errors: errs, PDF: h.receipts.PDF != nil}
	sales, medicines, err := h.load(r.Context())
	if err != nil {
		h.logger.Warn("load sales", slog.Any("error", err))
		page.LoadError = view.NewLoadError(r, err)
	}
	page.Medicines = medicines
	stock, _ := medicineIndex(medicines)
	page.DraftTotal = form.draftTotal(stock)
	filtered := table.FilterByQuery(sales, q.Text, searchFields...)
	page.View = table.NewView(basePath, q, table.Paginate(filtered, q.Page, q.PageSize), nil)
	h.responder.Render(w, r, "pages/sales.html", "Sales", page, status)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	sales, err := h.api.ListSales(r.Context())
	if err != nil {
		h.responder.Fail(w, r, basePath, "export sales", err)
		return
	}
	q := table.ParseQuery(r.URL.Query())
	h.responder.CSV(w, r, exportFile, table.BuildCSV(table.FilterByQuery(sales, q.Text, searchFields...), csvColumns))
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
	stock, _ := medicineIndex(medicines)
	in, errs := form.input(stock)
	if errs.Any() {
		h.renderList(w, r, form, errs, http.StatusBadRequest)
		return
	}
	sale, err := h.api.CreateSale(r.Context(), in)
	if err != nil {
		h.responder.Fail(w, r, basePath, "create sale", err)
		return
	}
	h.logger.Info("sale recorded", slog.Int64("sale_id", sale.ID), slog.Int("items", len(sale.Items)))
	h.responder.Success(w, r, basePath, MessageRecorded+" Receipt "+sale.Code()+".")
}

type editPage struct {
	Sale          backend.Sale
	Form          updateForm
	Errors        view.FormErrors
	MedicineNames map[int64]string
}

func (h *Handler) loadSale(ctx context.Context, id int64) (backend.Sale, map[int64]string, error) {
	var (
		sale      backend.Sale
		medicines []backend.Medicine
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sale, err = h.api.GetSale(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		medicines, err = h.api.ListMedicines(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return backend.Sale{}, nil, err
	}
	_, names := medicineIndex(medicines)
	return sale, names, nil
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid sale ID", http.StatusBadRequest)
		return
	}
	sale, names, err := h.loadSale(r.Context(), id)
	if err != nil {
		h.responder.Fail(w, r, basePath, "load sale", err)
		return
	}
	page := editPage{Sale: sale, MedicineNames: names}
	if sale.CustomerName != nil {
		page.Form.CustomerName = *sale.CustomerName
	}
	h.responder.Render(w, r, "pages/sale_edit.html", "Sale "+sale.Code(), page, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid sale ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := updateForm{CustomerName: strings.TrimSpace(r.PostFormValue("customer_name"))}
	up, errs := form.update()
	if errs.Any() {
		sale, names, err := h.loadSale(r.Context(), id)
		if err != nil {
			h.responder.Fail(w, r, basePath, "load sale", err)
			return
		}
		h.responder.Render(w, r, "pages/sale_edit.html", "Sale "+sale.Code(), editPage{Sale: sale, Form: form, Errors: errs, MedicineNames: names}, http.StatusBadRequest)
		return
	}
	if _, err := h.api.UpdateSale(r.Context(), id, up); err != nil {
		h.responder.Fail(w, r, basePath+"/"+strconv.FormatInt(id, 10)+"/edit", "update sale", err)
		return
	}
	h.responder.Success(w, r, basePath, "Sale updated.")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid sale ID", http.StatusBadRequest)
		return
	}
	if err := h.api.DeleteSale(r.Context(), id); err != nil {
		h.responder.Fail(w, r, view.ReturnTo(r, basePath), "delete sale", err)
		return
	}
	h.responder.Success(w, r, view.ReturnTo(r, basePath), "Sale deleted and stock restored.")
}

func (h *Handler) printReceipt(w http.ResponseWriter, r *http.Request) {
	h.present(w, r, "window", receipt.WindowPresenter{W: w, R: r})
}

func (h *Handler) receiptPDF(w http.ResponseWriter, r *http.Request) {
	h.present(w, r, "pdf", receipt.PDFPresenter{Renderer: h.receipts.PDF, W: w, Filename: "receipt-" + chi.URLParam(r, "id") + ".pdf"})
}

// present loads the sale and hands its receipt to p. When p refuses, the
// user is sent back with the result message.
func (h *Handler) present(w http.ResponseWriter, r *http.Request, surface string, p receipt.Presenter) {
	back := view.LocalPath(r.URL.Query().Get("from"), basePath)
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid sale ID", http.StatusBadRequest)
		return
	}
	sale, names, err := h.loadSale(r.Context(), id)
	if err != nil {
		h.responder.Fail(w, r, back, "load receipt", err)
		return
	}
	result := receipt.OpenSaleReceiptPrint(r.Context(), p, sale, names, h.receipts.Options)
	if h.receipts.Observer != nil {
		h.receipts.Observer.ObserveReceipt(surface, result.OK)
	}
	if !result.OK {
		h.logger.Warn("receipt not shown", slog.Int64("sale_id", id), slog.String("surface", surface), slog.String("reason", result.Message))
		h.responder.RedirectWithFlash(w, r, back, "error", result.Message)
	}
}
