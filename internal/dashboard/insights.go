package dashboard

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/stock"
)

// Dashboard window defaults.
const (
	SalesDays         = 7
	DefaultExpiryDays = 183
	TopSellingLimit   = 5
	ExpiringLimit     = 5
	SupplierBarsLimit = 6
	dayLabelLayout    = "Jan 2"
	dayKeyLayout      = "2006-01-02"
	hoursPerDay       = 24
)

// Readiness is the share of medicines not running low, as a whole percent.
// An empty catalogue is fully ready.
func Readiness(stats backend.DashboardStats) int {
	if stats.MedicineCount <= 0 {
		return 100
	}
	healthy := float64(stats.MedicineCount-stats.LowStockCount) / float64(stats.MedicineCount) * 100
	pct := int(math.Floor(healthy + 0.5))
	return min(max(pct, 0), 100)
}

// DayTotal is the sales revenue of one calendar day.
type DayTotal struct {
	Key   string
	Label string
	Value float64
}

// SalesSeries buckets sale totals into the days calendar days ending today
// in loc. Sales outside the window or with unreadable timestamps are
// skipped.
func SalesSeries(sales []backend.Sale, now time.Time, days int, loc *time.Location) []DayTotal {
	if loc == nil {
		loc = time.Local
	}
	if days <= 0 {
		days = SalesDays
	}
	today := now.In(loc)
	series := make([]DayTotal, days)
	index := make(map[string]int, days)
	for i := range series {
		day := today.AddDate(0, 0, i-days+1)
		key := day.Format(dayKeyLayout)
		series[i] = DayTotal{Key: key, Label: day.Format(dayLabelLayout)}
		index[key] = i
	}
	for _, sale := range sales {
		soldAt, ok := backend.ParseTimeIn(sale.SoldAt, loc)
		if !ok {
			continue
		}
		if i, ok := index[soldAt.In(loc).Format(dayKeyLayout)]; ok {
			series[i].Value += sale.TotalAmount
		}
	}
	return series
}

// TopItem is a medicine ranked by units sold.
type TopItem struct {
	MedicineID int64
	Name       string
	Quantity   int
	Revenue    float64
}

// TopSelling ranks medicines by quantity sold across sales. Ties keep the
// lower medicine id first.
func TopSelling(sales []backend.Sale, medicines []backend.Medicine, limit int) []TopItem {
	names := make(map[int64]string, len(medicines))
	for _, m := range medicines {
		names[m.ID] = m.Name
	}
	totals := map[int64]*TopItem{}
	for _, sale := range sales {
		for _, item := range sale.Items {
			t, ok := totals[item.MedicineID]
			if !ok {
				name := names[item.MedicineID]
				if name == "" {
					name = "#" + strconv.FormatInt(item.MedicineID, 10)
				}
				t = &TopItem{MedicineID: item.MedicineID, Name: name}
				totals[item.MedicineID] = t
			}
			t.Quantity += item.Quantity
			t.Revenue += item.LineTotal
		}
	}
	items := make([]TopItem, 0, len(totals))
	for _, t := range totals {
		items = append(items, *t)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Quantity != items[j].Quantity {
			return items[i].Quantity > items[j].Quantity
		}
		return items[i].MedicineID < items[j].MedicineID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// Expiring is a medicine nearing its expiry date.
type Expiring struct {
	backend.Medicine
	DaysLeft int
}

// ExpiringSoon lists medicines expiring within horizonDays of now, soonest
// first. Expired medicines are left out.
func ExpiringSoon(medicines []backend.Medicine, now time.Time, horizonDays, limit int, loc *time.Location) []Expiring {
	if loc == nil {
		loc = time.Local
	}
	var out []Expiring
	for _, m := range medicines {
		expiry, ok := backend.ParseTimeIn(m.ExpiryDate, loc)
		if !ok {
			continue
		}
		days := int(math.Ceil(expiry.Sub(now).Hours() / hoursPerDay))
		if days < 0 || days > horizonDays {
			continue
		}
		out = append(out, Expiring{Medicine: m, DaysLeft: days})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysLeft < out[j].DaysLeft })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SupplierStock is the number of units held per supplier.
type SupplierStock struct {
	Label string
	Units int
}

// StockBySupplier totals units per supplier name, largest first. Medicines
// without a known supplier count as unassigned.
func StockBySupplier(medicines []backend.Medicine, suppliers []backend.Supplier, limit int) []SupplierStock {
	names := make(map[int64]string, len(suppliers))
	for _, s := range suppliers {
		names[s.ID] = s.Name
	}
	totals := map[string]int{}
	var order []string
	for _, m := range medicines {
		label := stock.Unassigned
		if m.SupplierID != nil {
			if name, ok := names[*m.SupplierID]; ok {
				label = name
			}
		}
		if _, seen := totals[label]; !seen {
			order = append(order, label)
		}
		totals[label] += m.StockQty
	}
	bars := make([]SupplierStock, 0, len(order))
	for _, label := range order {
		bars = append(bars, SupplierStock{Label: label, Units: totals[label]})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Units > bars[j].Units })
	if limit > 0 && len(bars) > limit {
		bars = bars[:limit]
	}
	return bars
}
