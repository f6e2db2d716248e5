package table

import "net/url"

// View bundles what list templates need to render the table controls.
type View[T any] struct {
	Base   string
	Query  Query
	Page   Page[T]
	Extra  url.Values
	Sizes  []int
	Export bool
}

// NewView assembles a View for base.
func NewView[T any](base string, q Query, page Page[T], extra url.Values) View[T] {
	return View[T]{Base: base, Query: q, Page: page, Extra: extra, Sizes: PageSizes, Export: true}
}

// PrevURL links to the previous page.
func (v View[T]) PrevURL() string { return v.Query.URL(v.Base, v.Page.Page-1, v.Extra) }

// NextURL links to the next page.
func (v View[T]) NextURL() string { return v.Query.URL(v.Base, v.Page.Page+1, v.Extra) }

// ExportURL links to the CSV export.
func (v View[T]) ExportURL() string { return v.Query.ExportURL(v.Base, v.Extra) }
