// Package stock builds the stock report: medicines joined with their
// supplier and valued at unit price.
package stock

import (
	"sort"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/table"
)

// Unassigned names the supplier of medicines without one.
const Unassigned = "Unassigned"

// DefaultLowStockThreshold marks rows at or below it as low stock.
const DefaultLowStockThreshold = 10

// Row is one medicine in the stock report.
type Row struct {
	backend.Medicine
	SupplierName string
	StockValue   float64
}

// Field implements table.Row.
func (r Row) Field(name string) any {
	switch name {
	case "supplier_name":
		return r.SupplierName
	case "stock_value":
		return r.StockValue
	}
	return r.Medicine.Field(name)
}

// Summary aggregates the whole report, independent of any filter.
type Summary struct {
	Medicines int
	Units     int
	Value     float64
	LowStock  int
	Threshold int
}

// BuildRows joins medicines with supplier names and sorts them by name.
func BuildRows(medicines []backend.Medicine, suppliers []backend.Supplier) []Row {
	names := make(map[int64]string, len(suppliers))
	for _, s := range suppliers {
		names[s.ID] = s.Name
	}
	rows := make([]Row, 0, len(medicines))
	for _, m := range medicines {
		supplier := Unassigned
		if m.SupplierID != nil {
			if name, ok := names[*m.SupplierID]; ok && name != "" {
				supplier = name
			}
		}
		rows = append(rows, Row{Medicine: m, SupplierName: supplier, StockValue: m.UnitPrice * float64(m.StockQty)})
	}
	col := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(rows, func(i, j int) bool {
		return col.CompareString(rows[i].Name, rows[j].Name) < 0
	})
	return rows
}

// Summarize totals rows. Rows with stock at or below threshold count as low.
func Summarize(rows []Row, threshold int) Summary {
	s := Summary{Medicines: len(rows), Threshold: threshold}
	for _, r := range rows {
		s.Units += r.StockQty
		s.Value += r.StockValue
		if r.StockQty <= threshold {
			s.LowStock++
		}
	}
	return s
}

// SearchFields are the columns the stock search looks at.
var SearchFields = table.Names[Row]("name", "generic_name", "batch_number", "supplier_name", "expiry_date", "stock_qty")

// CSVColumns are the stock-report.csv columns.
var CSVColumns = []table.Column[Row]{
	table.Col[Row]("Medicine", "name"),
	table.Col[Row]("Generic Name", "generic_name"),
	table.Col[Row]("Batch", "batch_number"),
	table.Col[Row]("Expiry Date", "expiry_date"),
	table.Col[Row]("Supplier", "supplier_name"),
	table.Col[Row]("Unit Price (ETB)", "unit_price"),
	table.Col[Row]("Stock Qty", "stock_qty"),
	table.ColFunc("Stock Value (ETB)", func(r Row) any { return strconv.FormatFloat(r.StockValue, 'f', 2, 64) }),
}
