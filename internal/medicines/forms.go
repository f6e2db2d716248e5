package medicines

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/view"
)

type medicineForm struct {
	Name        string `validate:"required,min=2,max=150" label:"Name"`
	GenericName string
	BatchNumber string `validate:"required" label:"Batch"`
	ExpiryDate  string `validate:"required,datetime=2006-01-02" label:"Expiry date"`
	UnitPrice   string `validate:"required" label:"Unit price"`
	StockQty    string `validate:"required" label:"Stock"`
	SupplierID  string
}

func formFromRequest(r *http.Request) medicineForm {
	return medicineForm{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		GenericName: strings.TrimSpace(r.PostFormValue("generic_name")),
		BatchNumber: strings.TrimSpace(r.PostFormValue("batch_number")),
		ExpiryDate:  strings.TrimSpace(r.PostFormValue("expiry_date")),
		UnitPrice:   strings.TrimSpace(r.PostFormValue("unit_price")),
		StockQty:    strings.TrimSpace(r.PostFormValue("stock_qty")),
		SupplierID:  strings.TrimSpace(r.PostFormValue("supplier_id")),
	}
}

func formFromMedicine(m backend.Medicine) medicineForm {
	form := medicineForm{
		Name:        m.Name,
		BatchNumber: m.BatchNumber,
		ExpiryDate:  m.ExpiryDate,
		UnitPrice:   cast.ToString(m.UnitPrice),
		StockQty:    cast.ToString(m.StockQty),
	}
	if m.GenericName != nil {
		form.GenericName = *m.GenericName
	}
	if m.SupplierID != nil {
		form.SupplierID = cast.ToString(*m.SupplierID)
	}
	return form
}

// input validates the form and converts it to the backend payload.
func (f medicineForm) input() (backend.MedicineInput, view.FormErrors) {
	errs := view.CheckForm(f, nil)
	in := backend.MedicineInput{
		Name:        f.Name,
		BatchNumber: f.BatchNumber,
		ExpiryDate:  f.ExpiryDate,
	}
	if f.GenericName != "" {
		generic := f.GenericName
		in.GenericName = &generic
	}
	if f.UnitPrice != "" {
		price, err := cast.ToFloat64E(f.UnitPrice)
		switch {
		case err != nil:
			errs.Add("UnitPrice", "Unit price must be a number.")
		case price <= 0:
			errs.Add("UnitPrice", "Unit price must be greater than 0.")
		}
		in.UnitPrice = price
	}
	if f.StockQty != "" {
		qty, err := strconv.Atoi(f.StockQty)
		switch {
		case err != nil:
			errs.Add("StockQty", "Stock must be a whole number.")
		case qty < 0:
			errs.Add("StockQty", "Stock must be 0 or more.")
		}
		in.StockQty = qty
	}
	if f.SupplierID != "" {
		id, err := strconv.ParseInt(f.SupplierID, 10, 64)
		if err != nil || id <= 0 {
			errs.Add("SupplierID", "Choose a supplier from the list.")
		} else {
			in.SupplierID = &id
		}
	}
	return in, errs
}
