package table

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuery(t *testing.T) {
	q := ParseQuery(url.Values{"q": {"  amox "}, "page": {"3"}, "size": {"25"}})
	assert.Equal(t, Query{Text: "amox", Page: 3, PageSize: 25}, q)

	q = ParseQuery(url.Values{"page": {"-2"}, "size": {"7"}})
	assert.Equal(t, Query{Page: 1, PageSize: DefaultPageSize}, q)
}

func TestQueryURLs(t *testing.T) {
	q := Query{Text: "para", Page: 2, PageSize: 25}
	extra := url.Values{"supplier": {"4"}, "role": {""}}

	assert.Equal(t, "/medicines?page=3&q=para&size=25&supplier=4", q.URL("/medicines", 3, extra))
	assert.Equal(t, "/medicines?q=para&size=25&supplier=4", q.URL("/medicines", 1, extra))
	assert.Equal(t, "/medicines/export.csv?q=para&supplier=4", q.ExportURL("/medicines", extra))
	assert.Equal(t, "/sales", Query{PageSize: DefaultPageSize}.URL("/sales", 1, nil))
}
