package xls

import (
	"strconv"

	"github.com/yamitzky/xlsreader/internal/biff"
)

// CellType is the kind of data held by a Cell.
type CellType int

const (
	CellEmpty CellType = iota
	CellString
	CellDouble
	CellFormula
)

func (t CellType) String() string {
	switch t {
	case CellString:
		return "String"
	case CellDouble:
		return "Double"
	case CellFormula:
		return "Formula"
	default:
		return "Empty"
	}
}

// ValueType is the kind of result cached for a formula.
type ValueType = biff.ResultType

const (
	UnknownValue = biff.ResultUnknown
	DoubleValue  = biff.ResultDouble
	BooleanValue = biff.ResultBoolean
	ErrorValue   = biff.ResultError
	StringValue  = biff.ResultString
	EmptyValue   = biff.ResultEmpty
)

// ErrorCode is a cell error such as #DIV/0!. Its String method returns the
// text Excel displays.
type ErrorCode = biff.ErrorCode

const (
	ErrorNull      = biff.ErrNull
	ErrorDivZero   = biff.ErrDivZero
	ErrorValueCode = biff.ErrValue
	ErrorRef       = biff.ErrRef
	ErrorName      = biff.ErrName
	ErrorNum       = biff.ErrNum
	ErrorNA        = biff.ErrNA
	ErrorUnknown   = biff.ErrUnknown
)

// Formula is the last value Excel calculated for a formula cell. Formulas
// are never evaluated.
type Formula struct {
	// Row and Column locate the cell, counting from zero.
	Row    int
	Column int

	// ValueType tells which of the fields below holds the result.
	ValueType ValueType

	Double float64
	Bool   bool
	Error  ErrorCode
	Str    string
}

// Text renders the cached result the way a spreadsheet shows it.
func (f Formula) Text() string {
	switch f.ValueType {
	case DoubleValue:
		return strconv.FormatFloat(f.Double, 'g', -1, 64)
	case BooleanValue:
		if f.Bool {
			return "TRUE"
		}
		return "FALSE"
	case ErrorValue:
		return f.Error.String()
	case StringValue:
		return f.Str
	default:
		return ""
	}
}

func newFormula(f biff.Formula) Formula {
	return Formula{
		Row:       f.Row,
		Column:    f.Column,
		ValueType: f.Result.Type,
		Double:    f.Result.Double,
		Bool:      f.Result.Bool,
		Error:     f.Result.Error,
	}
}

// Cell represents a cell in a worksheet.
type Cell struct {
	// CType is the type of the cell.
	CType CellType

	// Value is a string for CellString, a float64 for CellDouble and a
	// Formula for CellFormula. It is nil for empty cells.
	Value interface{}
}

// emptyCell is returned for every coordinate outside a sheet.
var emptyCell = &Cell{CType: CellEmpty}

// IsNull reports whether nothing was stored in the cell.
func (c *Cell) IsNull() bool {
	return c.CType == CellEmpty
}

// String returns the text of a string cell, or "" for other types.
func (c *Cell) String() string {
	if s, ok := c.Value.(string); ok {
		return s
	}
	return ""
}

// Double returns the number in a double cell, or 0 for other types.
func (c *Cell) Double() float64 {
	if v, ok := c.Value.(float64); ok {
		return v
	}
	return 0
}

// Formula returns the formula in a formula cell. The zero Formula has
// ValueType UnknownValue.
func (c *Cell) Formula() Formula {
	if f, ok := c.Value.(Formula); ok {
		return f
	}
	return Formula{}
}
