package table

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCSVQuotesSpecialCells(t *testing.T) {
	rows := []Record{{"name": `A"B`, "note": "x,y"}}
	cols := []Column[Record]{Col[Record]("Name", "name"), Col[Record]("Note", "note")}
	assert.Equal(t, "Name,Note\n\"A\"\"B\",\"x,y\"", BuildCSV(rows, cols))
}

func TestBuildCSVNoRows(t *testing.T) {
	cols := []Column[Record]{Col[Record]("Name", "name")}
	assert.Equal(t, "Name\n", BuildCSV(nil, cols))
}

func TestBuildCSVNilAndNumbers(t *testing.T) {
	rows := []Record{{"name": "Zinc", "generic": nil, "price": 12.5, "qty": 3}}
	cols := []Column[Record]{
		Col[Record]("Name", "name"),
		Col[Record]("Generic", "generic"),
		Col[Record]("Price", "price"),
		ColFunc("Value", func(r Record) any { return r["price"].(float64) * float64(r["qty"].(int)) }),
	}
	assert.Equal(t, "Name,Generic,Price,Value\nZinc,,12.5,37.5", BuildCSV(rows, cols))
}

func TestBuildCSVRoundTrip(t *testing.T) {
	rows := []Record{
		{"name": "Plain", "note": "simple"},
		{"name": "Comma, inside", "note": `He said "hi"`},
		{"name": "Multi\nline", "note": "a,\"b\"\nc"},
		{"name": "", "note": nil},
	}
	cols := []Column[Record]{
		Col[Record]("Name, full", "name"),
		Col[Record]("Note", "note"),
		ColFunc("Length", func(r Record) any { return len(Stringify(r["name"])) }),
	}

	out := BuildCSV(rows, cols)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(rows)+1)

	assert.Equal(t, []string{"Name, full", "Note", "Length"}, records[0])
	for i, row := range rows {
		want := make([]string, len(cols))
		for c, col := range cols {
			want[c] = Stringify(col.Accessor.Value(row))
		}
		assert.Equal(t, want, records[i+1], "row %d", i)
	}
}
