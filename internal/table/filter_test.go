package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleRecords() []Record {
	return []Record{
		{"id": 1, "name": "Amoxicillin", "generic_name": nil, "stock_qty": 40},
		{"id": 2, "name": "Paracetamol", "generic_name": "Acetaminophen", "stock_qty": 5},
		{"id": 3, "name": "Ibuprofen", "generic_name": "Ibuprofen", "stock_qty": 12.5},
	}
}

func TestFilterByQueryBlankReturnsInput(t *testing.T) {
	items := sampleRecords()
	for _, q := range []string{"", "   ", "\t\n"} {
		got := FilterByQuery(items, q, Names[Record]("name")...)
		assert.Equal(t, items, got)
	}
}

func TestFilterByQueryCaseInsensitive(t *testing.T) {
	got := FilterByQuery([]Record{{"name": "Amoxicillin"}}, "amox", ByName[Record]("name"))
	assert.Len(t, got, 1)
	assert.Equal(t, "Amoxicillin", got[0]["name"])
}

func TestFilterByQueryTrimsNeedle(t *testing.T) {
	got := FilterByQuery(sampleRecords(), "  PARA ", Names[Record]("name", "generic_name")...)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, got[0]["id"])
}

func TestFilterByQueryNilNeverMatches(t *testing.T) {
	items := []Record{{"name": nil}, {"name": "nil"}}
	got := FilterByQuery(items, "nil", ByName[Record]("name"), ByName[Record]("missing"))
	assert.Equal(t, []Record{{"name": "nil"}}, got)
}

func TestFilterByQueryExtractor(t *testing.T) {
	low := ByFunc(func(r Record) any {
		if qty, ok := r["stock_qty"].(int); ok && qty < 10 {
			return "low"
		}
		return nil
	})
	got := FilterByQuery(sampleRecords(), "low", low)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, got[0]["id"])
}

func TestFilterByQueryMatchesNumbersInPlainNotation(t *testing.T) {
	got := FilterByQuery(sampleRecords(), "12.5", ByName[Record]("stock_qty"))
	assert.Len(t, got, 1)

	big := []Record{{"total": 1500000.0}}
	assert.Len(t, FilterByQuery(big, "1500000", ByName[Record]("total")), 1)
}

func TestFilterByQueryUniqueValueSelectsSingleRow(t *testing.T) {
	items := []Record{
		{"name": "Cetirizine", "batch": "B-100"},
		{"name": "Loratadine", "batch": "B-200"},
		{"name": "Omeprazole", "batch": "Z-731"},
	}
	got := FilterByQuery(items, "z-73", Names[Record]("name", "batch")...)
	assert.Equal(t, []Record{items[2]}, got)
}

func TestFilterByQueryPreservesOrder(t *testing.T) {
	items := []Record{{"name": "b1"}, {"name": "a"}, {"name": "b2"}, {"name": "b3"}}
	got := FilterByQuery(items, "b", ByName[Record]("name"))
	assert.Equal(t, []Record{{"name": "b1"}, {"name": "b2"}, {"name": "b3"}}, got)
}

func TestWhere(t *testing.T) {
	got := Where([]int{1, 2, 3, 4}, func(v int) bool { return v%2 == 0 })
	assert.Equal(t, []int{2, 4}, got)
}
