// Package receipt renders printable sale receipts and hands them to a
// presentation surface.
package receipt

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/format"
)

//go:embed templates/receipt.html
var templateFS embed.FS

var receiptTemplate = template.Must(template.ParseFS(templateFS, "templates/receipt.html"))

// printScript is the inline script that opens the print dialog. Its hash is
// the only script source allowed on the receipt page.
const printScript = "window.onload = function () { window.print(); };"

// DateLayout formats the sale time on the receipt.
const DateLayout = "02 Jan 2006 15:04"

// Options controls receipt rendering.
type Options struct {
	// AutoPrint opens the print dialog once the document loads.
	AutoPrint bool
	// Pharmacy is printed in the header.
	Pharmacy string
	// Location converts zoned timestamps; defaults to time.Local.
	Location *time.Location
	// Formatter renders amounts; defaults to the package formatter.
	Formatter *format.Formatter
}

// Line is one rendered item row.
type Line struct {
	Name      string
	Quantity  int
	UnitPrice string
	LineTotal string
}

type model struct {
	Pharmacy  string
	Code      string
	Date      string
	Seller    string
	Customer  string
	Lines     []Line
	Total     string
	AutoPrint bool
}

// Document is a self-contained receipt page.
type Document struct {
	Title string
	HTML  string

	model model
}

// Build renders the receipt of sale. medicineByID supplies display names;
// items without one are shown as "Medicine #<id>". Every interpolated value
// is escaped for its HTML context.
func Build(sale backend.Sale, medicineByID map[int64]string, opts Options) (Document, error) {
	if opts.Pharmacy == "" {
		opts.Pharmacy = "Hawi Pharmacy"
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	formatter := opts.Formatter
	if formatter == nil {
		formatter = format.Default()
	}

	m := model{
		Pharmacy:  opts.Pharmacy,
		Code:      sale.Code(),
		Date:      formatDate(sale.SoldAt, opts.Location),
		Seller:    sale.Seller(),
		Customer:  sale.Customer(),
		Lines:     make([]Line, 0, len(sale.Items)),
		Total:     formatter.Plain(sale.TotalAmount),
		AutoPrint: opts.AutoPrint,
	}
	for _, item := range sale.Items {
		name := medicineByID[item.MedicineID]
		if name == "" {
			name = "Medicine #" + strconv.FormatInt(item.MedicineID, 10)
		}
		m.Lines = append(m.Lines, Line{
			Name:      name,
			Quantity:  item.Quantity,
			UnitPrice: formatter.Plain(item.UnitPrice),
			LineTotal: formatter.Plain(item.LineTotal),
		})
	}
	return render(m)
}

// WithoutAutoPrint returns the same receipt without the print script.
func (d Document) WithoutAutoPrint() (Document, error) {
	if !d.model.AutoPrint {
		return d, nil
	}
	m := d.model
	m.AutoPrint = false
	return render(m)
}

// AutoPrint reports whether the document opens the print dialog.
func (d Document) AutoPrint() bool { return d.model.AutoPrint }

func render(m model) (Document, error) {
	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, m); err != nil {
		return Document{}, fmt.Errorf("receipt: render %s: %w", m.Code, err)
	}
	return Document{Title: "Receipt " + m.Code, HTML: buf.String(), model: m}, nil
}

func formatDate(raw string, loc *time.Location) string {
	t, ok := backend.ParseTimeIn(raw, loc)
	if !ok {
		return raw
	}
	return t.In(loc).Format(DateLayout)
}

// ContentSecurityPolicy allows the receipt's inline style and exactly its
// print script, nothing else.
func ContentSecurityPolicy() string {
	sum := sha256.Sum256([]byte(printScript))
	return "default-src 'none'; style-src 'unsafe-inline'; script-src 'sha256-" +
		base64.StdEncoding.EncodeToString(sum[:]) + "'; base-uri 'none'; form-action 'none'"
}
