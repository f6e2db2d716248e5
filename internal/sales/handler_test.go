package sales

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/rbac"
	"github.com/hawi-pms/console/internal/receipt"
	"github.com/hawi-pms/console/internal/testing/webtest"
)

func strPtr(s string) *string { return &s }

type stubAPI struct {
	sales     []backend.Sale
	medicines []backend.Medicine
	created   []backend.SaleInput
	updated   map[int64]backend.SaleUpdate
	deleted   []int64
	createErr error
}

func (s *stubAPI) ListSales(context.Context) ([]backend.Sale, error) { return s.sales, nil }

func (s *stubAPI) GetSale(_ context.Context, id int64) (backend.Sale, error) {
	for _, sale := range s.sales {
		if sale.ID == id {
			return sale, nil
		}
	}
	return backend.Sale{}, &backend.Error{Status: http.StatusNotFound, Detail: "Sale not found"}
}

func (s *stubAPI) CreateSale(_ context.Context, in backend.SaleInput) (backend.Sale, error) {
	if s.createErr != nil {
		return backend.Sale{}, s.createErr
	}
	s.created = append(s.created, in)
	return backend.Sale{ID: 90, SaleCode: strPtr("S-0090")}, nil
}

func (s *stubAPI) UpdateSale(_ context.Context, id int64, in backend.SaleUpdate) (backend.Sale, error) {
	s.updated[id] = in
	return backend.Sale{ID: id}, nil
}

func (s *stubAPI) DeleteSale(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubAPI) ListMedicines(context.Context) ([]backend.Medicine, error) { return s.medicines, nil }

type pdfStub struct {
	html string
	err  error
}

func (p *pdfStub) RenderHTML(_ context.Context, html string) ([]byte, error) {
	p.html = html
	return []byte("%PDF-1.7"), p.err
}

type receiptCounter map[string]int

func (c receiptCounter) ObserveReceipt(surface string, ok bool) {
	if ok {
		c[surface]++
	}
}

func setup(t *testing.T, receipts Receipts) (*webtest.Env, *stubAPI, func(chi.Router)) {
	t.Helper()
	env := webtest.New(t)
	api := &stubAPI{
		sales: []backend.Sale{
			{ID: 21, SaleCode: strPtr("S-0021"), SoldAt: "2024-06-01T10:15:00", CustomerName: strPtr("Abebe"), SellerName: strPtr("Sara"), TotalAmount: 150,
				Items: []backend.SaleItem{{ID: 1, MedicineID: 1, Quantity: 3, UnitPrice: 50, LineTotal: 150}}},
			{ID: 22, SoldAt: "2024-06-02T12:00:00", TotalAmount: 30},
		},
		medicines: []backend.Medicine{
			{ID: 1, Name: "Amoxicillin", UnitPrice: 50, StockQty: 4},
			{ID: 2, Name: "Zinc", UnitPrice: 10, StockQty: 20},
		},
		updated: map[int64]backend.SaleUpdate{},
	}
	h := NewHandler(nil, api, env.Responder, rbac.Middleware{}, receipts)
	return env, api, func(r chi.Router) { r.Route("/sales", h.MountRoutes) }
}

func cart(ids, qtys []string) url.Values {
	return url.Values{"medicine_id": ids, "quantity": qtys}
}

func TestFormInput(t *testing.T) {
	stock := map[int64]backend.Medicine{1: {ID: 1, StockQty: 4}, 2: {ID: 2, StockQty: 20}}

	form := saleForm{CustomerName: "Abebe", Lines: []cartLine{{MedicineID: "2", Quantity: "5"}, {}, {MedicineID: "2", Quantity: "3"}}}
	in, errs := form.input(stock)
	assert.False(t, errs.Any())
	assert.Equal(t, []backend.SaleItemInput{{MedicineID: 2, Quantity: 8}}, in.Items)
	assert.Equal(t, "Abebe", *in.CustomerName)

	_, errs = emptyForm().input(stock)
	assert.Equal(t, MessageEmptyCart, errs["general"])

	_, errs = saleForm{Lines: []cartLine{{MedicineID: "1", Quantity: "3"}, {MedicineID: "1", Quantity: "2"}}}.input(stock)
	assert.Equal(t, MessageOverStock, errs["Line1"])
	assert.NotContains(t, errs, "Line0")

	_, errs = saleForm{Lines: []cartLine{{MedicineID: "1"}, {MedicineID: "9", Quantity: "1"}}}.input(stock)
	assert.Equal(t, MessageIncompleteLine, errs["Line0"])
	assert.Equal(t, MessageUnknownMedicine, errs["Line1"])
}

func TestDraftTotal(t *testing.T) {
	stock := map[int64]backend.Medicine{1: {ID: 1, UnitPrice: 50}, 2: {ID: 2, UnitPrice: 10}}
	form := saleForm{Lines: []cartLine{{MedicineID: "1", Quantity: "2"}, {MedicineID: "2", Quantity: "x"}, {MedicineID: "2", Quantity: "3"}}}
	assert.Equal(t, 130.0, form.draftTotal(stock))
}

func TestCreate(t *testing.T) {
	env, api, mount := setup(t, Receipts{})

	call := env.Do(t, mount, webtest.User(rbac.Cashier), http.MethodPost, "/sales", cart([]string{"1", "2"}, []string{"2", "1"}))
	assert.Equal(t, http.StatusSeeOther, call.Recorder.Code)
	require.Len(t, api.created, 1)
	assert.Nil(t, api.created[0].CustomerName)
	assert.Len(t, api.created[0].Items, 2)
	assert.Equal(t, "Sale recorded. Receipt S-0090.", call.Flash())
}

func TestCreateRejectsEmptyCart(t *testing.T) {
	env, api, mount := setup(t, Receipts{})

	call := env.Do(t, mount, webtest.User(rbac.Cashier), http.MethodPost, "/sales", url.Values{"customer_name": {"Hana"}})
	assert.Equal(t, http.StatusBadRequest, call.Recorder.Code)
	assert.Contains(t, call.Body(), MessageEmptyCart)
	assert.Contains(t, call.Body(), `value="Hana"`)
	assert.Empty(t, api.created)
}

func TestCreateShowsBackendDetail(t *testing.T) {
	env, api, mount := setup(t, Receipts{})
	api.createErr = &backend.Error{Status: http.StatusBadRequest, Detail: "Insufficient stock for Amoxicillin"}

	call := env.Do(t, mount, webtest.User(rbac.Cashier), http.MethodPost, "/sales", cart([]string{"1"}, []string{"1"}))
	assert.Equal(t, http.StatusSeeOther, call.Recorder.Code)
	assert.Equal(t, basePath, call.Recorder.Header().Get("Location"))
	assert.Equal(t, "Insufficient stock for Amoxicillin", call.Flash())
}

func TestListAndExport(t *testing.T) {
	env, _, mount := setup(t, Receipts{})

	call := env.Do(t, mount, webtest.User(rbac.Pharmacist), http.MethodGet, "/sales?q=abebe", nil)
	assert.Contains(t, call.Body(), "S-0021")
	assert.NotContains(t, call.Body(), "#22")
	assert.NotContains(t, call.Body(), "/sales/21/delete")

	call = env.Do(t, mount, webtest.User(rbac.Admin), http.MethodGet, "/sales", nil)
	assert.Contains(t, call.Body(), "/sales/21/delete")
	assert.NotContains(t, call.Body(), "receipt.pdf")

	call = env.Do(t, mount, webtest.User(rbac.Pharmacist), http.MethodGet, "/sales/export.csv", nil)
	assert.Equal(t, "Sale ID,Customer,Total,Sold At\n21,Abebe,150,2024-06-01T10:15:00\n22,,30,2024-06-02T12:00:00", call.Body())
	assert.Equal(t, []string{exportFile}, env.Exports.Files)
}

func TestUpdateAndDelete(t *testing.T) {
	env, api, mount := setup(t, Receipts{})

	call := env.Do(t, mount, webtest.User(rbac.Cashier), http.MethodGet, "/sales/21/edit", nil)
	require.Equal(t, http.StatusOK, call.Recorder.Code)
	assert.Contains(t, call.Body(), "Amoxicillin")
	assert.Contains(t, call.Body(), `value="Abebe"`)

	call = env.Do(t, mount, webtest.User(rbac.Cashier), http.MethodPost, "/sales/21", url.Values{"customer_name": {"  "}})
	assert.Equal(t, http.StatusSeeOther, call.Recorder.Code)
	assert.Nil(t, api.updated[21].CustomerName)

	call = env.Do(t, mount, webtest.User(rbac.Cashier), http.MethodPost, "/sales/21/delete", url.Values{})
	assert.Equal(t, rbac.LandingPath, call.Recorder.Header().Get("Location"))
	assert.Empty(t, api.deleted)

	call = env.Do(t, mount, webtest.User(rbac.Admin), http.MethodPost, "/sales/21/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, call.Recorder.Code)
	assert.Equal(t, []int64{21}, api.deleted)
}

func TestReceiptWindow(t *testing.T) {
	counter := receiptCounter{}
	env, _, mount := setup(t, Receipts{Observer: counter})

	call := env.Do(t, mount, webtest.User(rbac.Cashier), http.MethodGet, "/sales/21/receipt", nil)
	require.Equal(t, http.StatusOK, call.Recorder.Code)
	assert.Contains(t, call.Body(), "S-0021")
	assert.Contains(t, call.Body(), "window.print()")
	assert.Equal(t, receipt.ContentSecurityPolicy(), call.Recorder.Header().Get("Content-Security-Policy"))
	assert.Equal(t, 1, counter["window"])
}

func TestReceiptPDFBlockedWithoutRenderer(t *testing.T) {
	env, _, mount := setup(t, Receipts{})

	call := env.Do(t, mount, webtest.User(rbac.Cashier), http.MethodGet, "/sales/21/receipt.pdf?from=/reports", nil)
	assert.Equal(t, http.StatusSeeOther, call.Recorder.Code)
	assert.Equal(t, "/reports", call.Recorder.Header().Get("Location"))
	assert.Equal(t, receipt.BlockedMessage, call.Flash())
}

func TestReceiptPDF(t *testing.T) {
	pdf := &pdfStub{}
	env, _, mount := setup(t, Receipts{PDF: pdf})

	call := env.Do(t, mount, webtest.User(rbac.Cashier), http.MethodGet, "/sales/21/receipt.pdf", nil)
	require.Equal(t, http.StatusOK, call.Recorder.Code)
	assert.Equal(t, "application/pdf", call.Recorder.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.7", call.Body())
	assert.NotContains(t, pdf.html, "window.print()")

	pdf.err = errors.New("gotenberg down")
	call = env.Do(t, mount, webtest.User(rbac.Cashier), http.MethodGet, "/sales/21/receipt.pdf?from=//evil.example", nil)
	assert.Equal(t, basePath, call.Recorder.Header().Get("Location"))
	assert.Equal(t, receipt.FailedMessage, call.Flash())
}
