package table

import "strings"

// Column maps a row to one CSV field.
type Column[T Row] struct {
	Header   string
	Accessor Field[T]
}

// Col is shorthand for a column reading the named field.
func Col[T Row](header, field string) Column[T] {
	return Column[T]{Header: header, Accessor: ByName[T](field)}
}

// ColFunc is shorthand for a column computed by fn.
func ColFunc[T Row](header string, fn func(T) any) Column[T] {
	return Column[T]{Header: header, Accessor: ByFunc(fn)}
}

// BuildCSV renders rows as CSV text: a header line followed by one line per
// row, joined with "\n" and without a trailing newline.
func BuildCSV[T Row](rows []T, columns []Column[T]) string {
	var b strings.Builder
	for i, col := range columns {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(csvValue(col.Header))
	}
	b.WriteByte('\n')
	for r, row := range rows {
		if r > 0 {
			b.WriteByte('\n')
		}
		for i, col := range columns {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(csvValue(col.Accessor.Value(row)))
		}
	}
	return b.String()
}

func csvValue(v any) string {
	text := Stringify(v)
	if strings.ContainsAny(text, "\",\n") {
		return `"` + strings.ReplaceAll(text, `"`, `""`) + `"`
	}
	return text
}
