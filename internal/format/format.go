// Package format renders money amounts for the console and its receipts.
package format

import (
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Birr is the unit every amount in the console is expressed in.
var Birr = currency.MustParseISO("ETB")

// Formatter formats amounts using locale-aware digit grouping.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// New returns a Formatter for the given locale.
func New(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag), unit: Birr}
}

// Currency renders v with two fraction digits, prefixed by the currency code.
func (f *Formatter) Currency(v float64) string {
	return f.unit.String() + " " + f.printer.Sprint(number.Decimal(finite(v), number.Scale(2)))
}

// Plain renders v rounded to a whole amount, suffixed by the currency code.
func (f *Formatter) Plain(v float64) string {
	return f.printer.Sprint(number.Decimal(finite(v), number.Scale(0))) + " " + f.unit.String()
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

var std = New(language.English)

// SetDefault replaces the formatter behind ETB and ETBPlain.
func SetDefault(f *Formatter) {
	if f != nil {
		std = f
	}
}

// Default returns the formatter behind ETB and ETBPlain.
func Default() *Formatter { return std }

// ETB formats v with the default formatter.
func ETB(v float64) string { return std.Currency(v) }

// ETBPlain formats v without fraction digits with the default formatter.
func ETBPlain(v float64) string { return std.Plain(v) }
