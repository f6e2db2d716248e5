package reports

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/rbac"
	"github.com/hawi-pms/console/internal/testing/webtest"
)

func strPtr(s string) *string { return &s }

type stubAPI struct {
	sales []backend.Sale
	err   error
}

func (s *stubAPI) ListSales(context.Context) ([]backend.Sale, error) { return s.sales, s.err }

func fixtures() []backend.Sale {
	return []backend.Sale{
		{ID: 1, SoldAt: "2024-06-01T09:00:00", SellerName: strPtr("Sara"), CustomerName: strPtr("Abebe"), TotalAmount: 120,
			Items: []backend.SaleItem{{MedicineID: 1, Quantity: 2}, {MedicineID: 2, Quantity: 1}}},
		{ID: 2, SoldAt: "2024-06-01T11:00:00", SellerUsername: strPtr("dawit"), TotalAmount: 80,
			Items: []backend.SaleItem{{MedicineID: 1, Quantity: 4}}},
		{ID: 3, SoldAt: "2024-06-02T08:30:00", SellerName: strPtr("Sara"), TotalAmount: 40},
	}
}

func setup(t *testing.T, api *stubAPI) (*webtest.Env, func(chi.Router)) {
	t.Helper()
	env := webtest.New(t)
	h := NewHandler(nil, api, env.Responder, rbac.Middleware{})
	return env, func(r chi.Router) { r.Route("/reports", h.MountRoutes) }
}

func TestSummarize(t *testing.T) {
	totals := Summarize(fixtures())
	assert.Equal(t, Totals{Sales: 3, Items: 7, Revenue: 240, Average: 80, Sellers: 2, Customers: 1}, totals)
	assert.Equal(t, Totals{}, Summarize(nil))
}

func TestReportFiltersBySeller(t *testing.T) {
	env, mount := setup(t, &stubAPI{sales: fixtures()})

	call := env.Do(t, mount, webtest.User(rbac.Pharmacist), http.MethodGet, "/reports?q=dawit", nil)
	require.Equal(t, http.StatusOK, call.Recorder.Code)
	body := call.Body()
	assert.Contains(t, body, "/sales/2/receipt?from=/reports")
	assert.NotContains(t, body, "/sales/1/receipt")
	assert.Contains(t, body, "Walk-in customer")
}

func TestReportLoadError(t *testing.T) {
	env, mount := setup(t, &stubAPI{err: &backend.Error{Unreachable: true}})

	call := env.Do(t, mount, webtest.User(rbac.Admin), http.MethodGet, "/reports", nil)
	assert.Equal(t, http.StatusOK, call.Recorder.Code)
	assert.Contains(t, call.Body(), "Cannot reach API server.")
	assert.Contains(t, call.Body(), "No sales found.")
}

func TestExport(t *testing.T) {
	env, mount := setup(t, &stubAPI{sales: fixtures()})

	call := env.Do(t, mount, webtest.User(rbac.Admin), http.MethodGet, "/reports/export.csv?q=sara", nil)
	assert.Equal(t, "Sale ID,Receipt,Sold At,Seller,Customer,Items,Total\n"+
		"1,,2024-06-01T09:00:00,Sara,Abebe,3,120 ETB\n"+
		"3,,2024-06-02T08:30:00,Sara,Walk-in customer,0,40 ETB", call.Body())
	assert.Equal(t, []string{exportFile}, env.Exports.Files)

	env, mount = setup(t, &stubAPI{err: errors.New("boom")})
	call = env.Do(t, mount, webtest.User(rbac.Admin), http.MethodGet, "/reports/export.csv", nil)
	assert.Equal(t, http.StatusSeeOther, call.Recorder.Code)
	assert.Equal(t, "Request failed", call.Flash())
}

func TestCashierCannotOpenReports(t *testing.T) {
	env, mount := setup(t, &stubAPI{sales: fixtures()})
	call := env.Do(t, mount, webtest.User(rbac.Cashier), http.MethodGet, "/reports", nil)
	assert.Equal(t, rbac.LandingPath, call.Recorder.Header().Get("Location"))
}
