package xls

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSheetGrowsDense(t *testing.T) {
	s := newSheet("grow")
	assert.Equal(t, 0, s.RowsCount())
	assert.Equal(t, 0, s.ColumnsCount())

	s.setDouble(2, 0, 1)
	assert.Equal(t, 3, s.RowsCount())
	assert.Equal(t, 1, s.ColumnsCount())

	s.setString(0, 5, "wide")
	assert.Equal(t, 3, s.RowsCount())
	assert.Equal(t, 6, s.ColumnsCount())
	for r := 0; r < s.RowsCount(); r++ {
		assert.Len(t, s.Row(r), 6, "row %d", r)
	}
	assert.Equal(t, 1.0, s.Cell(2, 0).Double())
	assert.Equal(t, "wide", s.Cell(0, 5).String())
	assert.True(t, s.Cell(1, 3).IsNull())

	// Later writes replace earlier ones.
	s.setFormula(Formula{Row: 2, Column: 0, ValueType: BooleanValue, Bool: true})
	assert.Equal(t, CellFormula, s.Cell(2, 0).CType)
	assert.Equal(t, 0.0, s.Cell(2, 0).Double())
	assert.Equal(t, "TRUE", s.Cell(2, 0).Formula().Text())

	s.setDouble(-1, 0, 3)
	assert.Equal(t, 3, s.RowsCount())
}

func TestSheetFullHeight(t *testing.T) {
	const rows = 65536
	const last = rows - 1
	b := NewBook()
	b.OnSheet(0, "tall")
	for r := 0; r < rows; r++ {
		b.OnCellNumber(0, r, 0, float64(r))
		b.OnCellNumber(0, r, 1, float64(-r))
	}
	b.OnCellText(0, last, 255, "last")

	s, err := b.Sheet(0)
	if err != nil {
		t.Fatalf("Sheet(0) error = %v", err)
	}
	assert.Equal(t, rows, s.RowsCount())
	assert.Equal(t, 256, s.ColumnsCount())
	assert.Equal(t, 40000.0, s.Cell(40000, 0).Double())
	assert.Equal(t, -12.0, s.Cell(12, 1).Double())
	assert.True(t, s.Cell(12, 255).IsNull())
	assert.Len(t, s.Row(0), 256)
	assert.Equal(t, "last", s.Row(last)[255].String())
}

func TestFormulaText(t *testing.T) {
	tests := []struct {
		f    Formula
		want string
	}{
		{Formula{ValueType: DoubleValue, Double: 0.5}, "0.5"},
		{Formula{ValueType: BooleanValue}, "FALSE"},
		{Formula{ValueType: ErrorValue, Error: ErrorNA}, "#N/A"},
		{Formula{ValueType: ErrorValue, Error: ErrorUnknown}, "#UNKNOWN!"},
		{Formula{ValueType: ErrorValue, Error: ErrorValueCode}, "#VALUE!"},
		{Formula{ValueType: StringValue, Str: "s"}, "s"},
		{Formula{ValueType: EmptyValue}, ""},
		{Formula{}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.f.Text(), "%+v", tt.f)
	}
	assert.Equal(t, "Formula", CellFormula.String())
	assert.Equal(t, "Empty", CellEmpty.String())
}
