package table

// Page is one window over a filtered list.
type Page[T any] struct {
	Items     []T
	Page      int
	PageCount int
	Total     int
}

// Paginate slices items into the requested page. Out-of-range pages are
// clamped and an empty list yields a single empty page.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	pageCount := (total + pageSize - 1) / pageSize
	if pageCount < 1 {
		pageCount = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	pageItems := make([]T, 0, end-start)
	pageItems = append(pageItems, items[start:end]...)
	return Page[T]{Items: pageItems, Page: page, PageCount: pageCount, Total: total}
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool { return p.Page < p.PageCount }
