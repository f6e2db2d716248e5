package sales

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/view"
)

// CartLines is the number of item rows on the checkout form.
const CartLines = 5

// Messages shown for sale forms.
const (
	MessageEmptyCart       = "Add at least one item to the cart."
	MessageIncompleteLine  = "Select a medicine and a quantity of at least 1."
	MessageUnknownMedicine = "Selected medicine not found."
	MessageOverStock       = "Quantity exceeds available stock."
	MessageRecorded        = "Sale recorded."
)

type cartLine struct {
	MedicineID string
	Quantity   string
}

func (l cartLine) blank() bool {
	return l.MedicineID == "" && l.Quantity == ""
}

type saleForm struct {
	CustomerName string `validate:"max=120" label:"Customer name"`
	Lines        []cartLine
}

func emptyForm() saleForm {
	return saleForm{Lines: make([]cartLine, CartLines)}
}

func formFromRequest(r *http.Request) saleForm {
	form := saleForm{CustomerName: strings.TrimSpace(r.PostFormValue("customer_name")), Lines: make([]cartLine, CartLines)}
	ids, qtys := r.PostForm["medicine_id"], r.PostForm["quantity"]
	for i := range form.Lines {
		if i < len(ids) {
			form.Lines[i].MedicineID = strings.TrimSpace(ids[i])
		}
		if i < len(qtys) {
			form.Lines[i].Quantity = strings.TrimSpace(qtys[i])
		}
	}
	return form
}

// input validates the cart against the medicine catalogue. Lines for the
// same medicine are merged; an empty cart is rejected.
func (f saleForm) input(stock map[int64]backend.Medicine) (backend.SaleInput, view.FormErrors) {
	errs := view.CheckForm(f, nil)
	var in backend.SaleInput
	if f.CustomerName != "" {
		name := f.CustomerName
		in.CustomerName = &name
	}
	index := map[int64]int{}
	for i, line := range f.Lines {
		if line.blank() {
			continue
		}
		key := "Line" + strconv.Itoa(i)
		id, idErr := strconv.ParseInt(line.MedicineID, 10, 64)
		qty, qtyErr := strconv.Atoi(line.Quantity)
		if idErr != nil || qtyErr != nil || qty <= 0 {
			errs.Add(key, MessageIncompleteLine)
			continue
		}
		med, ok := stock[id]
		if !ok {
			errs.Add(key, MessageUnknownMedicine)
			continue
		}
		if pos, seen := index[id]; seen {
			in.Items[pos].Quantity += qty
			qty = in.Items[pos].Quantity
		} else {
			index[id] = len(in.Items)
			in.Items = append(in.Items, backend.SaleItemInput{MedicineID: id, Quantity: qty})
		}
		if qty > med.StockQty {
			errs.Add(key, MessageOverStock)
		}
	}
	if len(in.Items) == 0 && !errs.Any() {
		errs.Add("general", MessageEmptyCart)
	}
	return in, errs
}

type updateForm struct {
	CustomerName string `validate:"max=120" label:"Customer name"`
}

func (f updateForm) update() (backend.SaleUpdate, view.FormErrors) {
	var up backend.SaleUpdate
	if f.CustomerName != "" {
		name := f.CustomerName
		up.CustomerName = &name
	}
	return up, view.CheckForm(f, nil)
}

// draftTotal prices the filled cart lines at the current unit prices.
func (f saleForm) draftTotal(stock map[int64]backend.Medicine) float64 {
	total := 0.0
	for _, line := range f.Lines {
		id, err := strconv.ParseInt(line.MedicineID, 10, 64)
		if err != nil {
			continue
		}
		qty, err := strconv.Atoi(line.Quantity)
		if err != nil || qty <= 0 {
			continue
		}
		total += float64(qty) * stock[id].UnitPrice
	}
	return total
}
