package purchases

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/view"
)

// MaxLines is the number of item rows on the create form.
const MaxLines = 5

// Messages shown for purchase forms.
const (
	MessageIncompleteLine  = "Select medicine, quantity, and unit cost before adding item."
	MessageUnknownMedicine = "Selected medicine not found."
	MessageNoItems         = "Add at least one item to create a purchase."
	MessageCreated         = "Purchase recorded and stock updated."
)

type lineForm struct {
	MedicineID string
	Quantity   string
	UnitCost   string
}

func (l lineForm) blank() bool {
	return l.MedicineID == "" && l.Quantity == "" && l.UnitCost == ""
}

type headerForm struct {
	SupplierID    string
	InvoiceNumber string `validate:"max=64" label:"Invoice number"`
	Note          string `validate:"max=500" label:"Note"`
}

type purchaseForm struct {
	headerForm
	Lines []lineForm
}

func emptyForm() purchaseForm {
	return purchaseForm{Lines: make([]lineForm, MaxLines)}
}

func headerFromRequest(r *http.Request) headerForm {
	return headerForm{
		SupplierID:    strings.TrimSpace(r.PostFormValue("supplier_id")),
		InvoiceNumber: strings.TrimSpace(r.PostFormValue("invoice_number")),
		Note:          strings.TrimSpace(r.PostFormValue("note")),
	}
}

func formFromRequest(r *http.Request) purchaseForm {
	form := purchaseForm{headerForm: headerFromRequest(r), Lines: make([]lineForm, MaxLines)}
	ids, qtys, costs := r.PostForm["medicine_id"], r.PostForm["quantity"], r.PostForm["unit_cost"]
	for i := range form.Lines {
		form.Lines[i] = lineForm{
			MedicineID: strings.TrimSpace(at(ids, i)),
			Quantity:   strings.TrimSpace(at(qtys, i)),
			UnitCost:   strings.TrimSpace(at(costs, i)),
		}
	}
	return form
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func (f headerForm) update() (backend.PurchaseUpdate, view.FormErrors) {
	errs := view.CheckForm(f, nil)
	var up backend.PurchaseUpdate
	up.SupplierID = parseSupplier(f.SupplierID, errs)
	if f.InvoiceNumber != "" {
		invoice := f.InvoiceNumber
		up.InvoiceNumber = &invoice
	}
	if f.Note != "" {
		note := f.Note
		up.Note = &note
	}
	return up, errs
}

func parseSupplier(raw string, errs view.FormErrors) *int64 {
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		errs.Add("SupplierID", "Choose a supplier from the list.")
		return nil
	}
	return &id
}

// input validates the form against the known medicines. Fully blank lines
// are skipped; at least one complete line is required.
func (f purchaseForm) input(known map[int64]string) (backend.PurchaseInput, view.FormErrors) {
	up, errs := f.headerForm.update()
	in := backend.PurchaseInput{SupplierID: up.SupplierID, InvoiceNumber: up.InvoiceNumber, Note: up.Note}
	for i, line := range f.Lines {
		if line.blank() {
			continue
		}
		key := "Line" + strconv.Itoa(i)
		id, idErr := strconv.ParseInt(line.MedicineID, 10, 64)
		qty, qtyErr := strconv.Atoi(line.Quantity)
		cost, costErr := cast.ToFloat64E(line.UnitCost)
		if idErr != nil || qtyErr != nil || costErr != nil || qty <= 0 || cost <= 0 {
			errs.Add(key, MessageIncompleteLine)
			continue
		}
		if _, ok := known[id]; !ok {
			errs.Add(key, MessageUnknownMedicine)
			continue
		}
		in.Items = append(in.Items, backend.PurchaseItemInput{MedicineID: id, Quantity: qty, UnitCost: cost})
	}
	if len(in.Items) == 0 && !errs.Any() {
		errs.Add("general", MessageNoItems)
	}
	return in, errs
}

// DraftTotal sums the complete lines of the form.
func (f purchaseForm) DraftTotal() float64 {
	total := 0.0
	for _, line := range f.Lines {
		qty, err := strconv.Atoi(line.Quantity)
		if err != nil {
			continue
		}
		cost, err := cast.ToFloat64E(line.UnitCost)
		if err != nil {
			continue
		}
		total += float64(qty) * cost
	}
	return total
}
