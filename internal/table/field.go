// Package table holds the list processing shared by the console pages:
// free-text filtering, pagination and CSV export of backend rows.
package table

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Row is a record fetched from the backend. Field reports the value stored
// under name, or nil when the row has no value for it.
type Row interface {
	Field(name string) any
}

// Record is a loosely typed row, keyed by backend field name.
type Record map[string]any

// Field implements Row.
func (r Record) Field(name string) any {
	return r[name]
}

// Field selects a value from a row, either by field name or through a pure
// extractor function. Extractors must not have side effects.
type Field[T Row] struct {
	name string
	fn   func(T) any
}

// ByName selects the named field of a row.
func ByName[T Row](name string) Field[T] {
	return Field[T]{name: name}
}

// ByFunc selects the value computed by fn.
func ByFunc[T Row](fn func(T) any) Field[T] {
	return Field[T]{fn: fn}
}

// Names builds one ByName field per name.
func Names[T Row](names ...string) []Field[T] {
	fields := make([]Field[T], 0, len(names))
	for _, name := range names {
		fields = append(fields, ByName[T](name))
	}
	return fields
}

// Value resolves the field against row.
func (f Field[T]) Value(row T) any {
	if f.fn != nil {
		return f.fn(row)
	}
	if f.name == "" {
		return nil
	}
	return row.Field(f.name)
}

// Stringify renders a field value the way it is matched and exported.
// Floats use plain decimal notation; nil renders empty.
func Stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case time.Time:
		if value.IsZero() {
			return ""
		}
		return value.Format(time.RFC3339)
	case bool:
		if value {
			return "true"
		}
		return "false"
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

func contains(v any, needle string) bool {
	if v == nil {
		return false
	}
	return strings.Contains(strings.ToLower(Stringify(v)), needle)
}
