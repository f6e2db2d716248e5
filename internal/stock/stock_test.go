package stock

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/rbac"
	"github.com/hawi-pms/console/internal/table"
	"github.com/hawi-pms/console/internal/testing/webtest"
)

func idPtr(id int64) *int64 { return &id }

func sample() ([]backend.Medicine, []backend.Supplier) {
	return []backend.Medicine{
			{ID: 1, Name: "zinc", BatchNumber: "Z1", ExpiryDate: "2026-01-01", UnitPrice: 2, StockQty: 50, SupplierID: idPtr(3)},
			{ID: 2, Name: "Amoxicillin", BatchNumber: "A1", ExpiryDate: "2025-05-01", UnitPrice: 12.5, StockQty: 4},
			{ID: 3, Name: "Bisacodyl", BatchNumber: "B1", ExpiryDate: "2025-08-01", UnitPrice: 1.25, StockQty: 10, SupplierID: idPtr(42)},
		}, []backend.Supplier{
			{ID: 3, Name: "Ethio Pharma"},
		}
}

func TestBuildRows(t *testing.T) {
	rows := BuildRows(sample())
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Amoxicillin", "Bisacodyl", "zinc"}, []string{rows[0].Name, rows[1].Name, rows[2].Name})
	assert.Equal(t, Unassigned, rows[0].SupplierName)
	assert.Equal(t, Unassigned, rows[1].SupplierName, "unknown supplier ids are unassigned")
	assert.Equal(t, "Ethio Pharma", rows[2].SupplierName)
	assert.Equal(t, 50.0, rows[0].StockValue)
}

func TestSummarize(t *testing.T) {
	s := Summarize(BuildRows(sample()), DefaultLowStockThreshold)
	assert.Equal(t, Summary{Medicines: 3, Units: 64, Value: 162.5, LowStock: 2, Threshold: 10}, s)
	assert.Equal(t, Summary{Threshold: 10}, Summarize(nil, 10))
}

func TestSearchIncludesSupplierName(t *testing.T) {
	rows := BuildRows(sample())
	got := table.FilterByQuery(rows, "unassigned", SearchFields...)
	assert.Len(t, got, 2)
}

type stubAPI struct {
	medicines []backend.Medicine
	suppliers []backend.Supplier
	err       error
}

func (s stubAPI) ListMedicines(context.Context) ([]backend.Medicine, error) { return s.medicines, s.err }
func (s stubAPI) ListSuppliers(context.Context) ([]backend.Supplier, error) { return s.suppliers, s.err }

func TestHandler(t *testing.T) {
	env := webtest.New(t)
	medicines, suppliers := sample()
	h := NewHandler(nil, stubAPI{medicines: medicines, suppliers: suppliers}, env.Responder, rbac.Middleware{}, 0)
	mount := func(r chi.Router) { r.Route("/stock", h.MountRoutes) }

	call := env.Do(t, mount, webtest.User(rbac.Inventory), http.MethodGet, "/stock?q=ethio", nil)
	require.Equal(t, http.StatusOK, call.Recorder.Code)
	assert.Contains(t, call.Body(), "zinc")
	assert.NotContains(t, call.Body(), "Bisacodyl")
	assert.Contains(t, call.Body(), "Low stock items: 2")

	call = env.Do(t, mount, webtest.User(rbac.Inventory), http.MethodGet, "/stock/export.csv?q=zinc", nil)
	assert.Equal(t, "Medicine,Generic Name,Batch,Expiry Date,Supplier,Unit Price (ETB),Stock Qty,Stock Value (ETB)\nzinc,,Z1,2026-01-01,Ethio Pharma,2,50,100.00", call.Body())

	call = env.Do(t, mount, webtest.User(rbac.Cashier), http.MethodGet, "/stock", nil)
	assert.Equal(t, rbac.LandingPath, call.Recorder.Header().Get("Location"))
}
