package table

import "strings"

// FilterByQuery keeps the items for which any of fields contains query as a
// case-insensitive substring. A blank query returns items unchanged. Nil
// values never match and the original order is preserved.
func FilterByQuery[T Row](items []T, query string, fields ...Field[T]) []T {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return items
	}
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range fields {
			if contains(field.Value(item), needle) {
				filtered = append(filtered, item)
				break
			}
		}
	}
	return filtered
}

// Where keeps the items accepted by keep, preserving order.
func Where[T any](items []T, keep func(T) bool) []T {
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
