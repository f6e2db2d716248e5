package table

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPageSize is used when a request carries no valid page size.
const DefaultPageSize = 10

// PageSizes lists the page sizes offered by list pages.
var PageSizes = []int{10, 25, 50}

// Query is the filter and pagination state of one list view.
type Query struct {
	Text     string
	Page     int
	PageSize int
}

// ParseQuery reads q, page and size from URL values. Forms that change the
// search text or page size omit page, which resets the view to page 1.
func ParseQuery(values url.Values) Query {
	q := Query{Text: strings.TrimSpace(values.Get("q")), Page: 1, PageSize: DefaultPageSize}
	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		q.Page = page
	}
	if size, err := strconv.Atoi(values.Get("size")); err == nil {
		for _, allowed := range PageSizes {
			if size == allowed {
				q.PageSize = size
				break
			}
		}
	}
	return q
}

// Values encodes the query for links, keeping extra filters.
func (q Query) Values(extra url.Values) url.Values {
	values := url.Values{}
	for key, v := range extra {
		if len(v) > 0 && v[0] != "" {
			values[key] = v
		}
	}
	if q.Text != "" {
		values.Set("q", q.Text)
	}
	if q.PageSize != DefaultPageSize && q.PageSize > 0 {
		values.Set("size", strconv.Itoa(q.PageSize))
	}
	return values
}

// URL links base to page of the current query.
func (q Query) URL(base string, page int, extra url.Values) string {
	values := q.Values(extra)
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	return withQuery(base, values)
}

// ExportURL links to the CSV export of the filtered list.
func (q Query) ExportURL(base string, extra url.Values) string {
	values := q.Values(extra)
	values.Del("size")
	return withQuery(strings.TrimSuffix(base, "/")+"/export.csv", values)
}

func withQuery(base string, values url.Values) string {
	if len(values) == 0 {
		return base
	}
	return base + "?" + values.Encode()
}
