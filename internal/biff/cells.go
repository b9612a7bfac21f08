package biff

import (
	"github.com/yamitzky/xlsreader/internal/stream"
	"github.com/yamitzky/xlsreader/internal/xlerr"
)

// Smallest encoded SST string: a two byte count and the options byte.
const minSSTString = 3

// Cell coordinates common to every cell record.
type Cell struct {
	Row    int
	Column int
}

func readCell(s stream.ByteStream) (Cell, error) {
	row, err := stream.Uint16(s)
	if err != nil {
		return Cell{}, err
	}
	col, err := stream.Uint16(s)
	if err != nil {
		return Cell{}, err
	}
	return Cell{Row: int(row), Column: int(col)}, nil
}

// readCellXF reads the coordinates and skips the XF index.
func readCellXF(s stream.ByteStream) (Cell, error) {
	c, err := readCell(s)
	if err != nil {
		return c, err
	}
	return c, stream.Skip(s, 2)
}

// LabelSST is a cell referring to an SST entry.
type LabelSST struct {
	Cell
	XF       uint16
	SSTIndex int
}

// ParseLabelSST decodes a LABELSST record.
func ParseLabelSST(r *Record) (LabelSST, error) {
	s := r.Data()
	var l LabelSST
	var err error
	if l.Cell, err = readCell(s); err != nil {
		return l, err
	}
	if l.XF, err = stream.Uint16(s); err != nil {
		return l, err
	}
	idx, err := stream.Int32(s)
	if err != nil {
		return l, err
	}
	l.SSTIndex = int(idx)
	return l, nil
}

// Label is a cell holding inline text.
type Label struct {
	Cell
	Text string
}

// ParseLabel decodes a LABEL record. Its count field is a single byte.
func ParseLabel(r *Record) (Label, error) {
	s := r.Data()
	var l Label
	var err error
	if l.Cell, err = readCellXF(s); err != nil {
		return l, err
	}
	l.Text, err = LoadString(s, r.Borders(), 1, BIFF8)
	return l, err
}

// Number is a cell holding a double.
type Number struct {
	Cell
	Value float64
}

// ParseRK decodes an RK record.
func ParseRK(r *Record) (Number, error) {
	s := r.Data()
	var n Number
	var err error
	if n.Cell, err = readCellXF(s); err != nil {
		return n, err
	}
	rk, err := stream.Uint32(s)
	if err != nil {
		return n, err
	}
	n.Value = DoubleFromRK(rk)
	return n, nil
}

// ParseMulRK decodes a MULRK record into one number per column. The last
// column index sits in the final two bytes of the record and is read before
// the values.
func ParseMulRK(r *Record) ([]Number, error) {
	s := r.Data()
	row, err := stream.Uint16(s)
	if err != nil {
		return nil, err
	}
	colFirst, err := stream.Uint16(s)
	if err != nil {
		return nil, err
	}

	pos := s.Pos()
	if err := s.Seek(-2, stream.FromEnd); err != nil {
		return nil, err
	}
	colLast, err := stream.Uint16(s)
	if err != nil {
		return nil, err
	}
	if err := s.Seek(pos, stream.FromBeginning); err != nil {
		return nil, err
	}

	count := int(colLast) - int(colFirst) + 1
	if count <= 0 {
		return nil, nil
	}
	out := make([]Number, 0, count)
	for i := 0; i < count; i++ {
		if err := stream.Skip(s, 2); err != nil {
			return nil, err
		}
		rk, err := stream.Uint32(s)
		if err != nil {
			return nil, err
		}
		out = append(out, Number{
			Cell:  Cell{Row: int(row), Column: int(colFirst) + i},
			Value: DoubleFromRK(rk),
		})
	}
	return out, nil
}

// ParseNumber decodes a NUMBER record.
func ParseNumber(r *Record) (Number, error) {
	s := r.Data()
	var n Number
	var err error
	if n.Cell, err = readCellXF(s); err != nil {
		return n, err
	}
	n.Value, err = stream.Float64(s)
	return n, err
}

// Formula is a FORMULA record's cached result.
type Formula struct {
	Cell
	Result FormulaResult
}

// ParseFormula decodes the coordinates and result field of a FORMULA record.
// The parsed expression that follows is not read.
func ParseFormula(r *Record) (Formula, error) {
	s := r.Data()
	var f Formula
	var err error
	if f.Cell, err = readCellXF(s); err != nil {
		return f, err
	}
	v, err := stream.Uint64(s)
	if err != nil {
		return f, err
	}
	f.Result = DecodeFormulaResult(v)
	return f, nil
}

// ParseString decodes the text of a STRING record that follows a FORMULA
// with a string result. Borders are not consulted.
func ParseString(r *Record) (string, error) {
	return LoadString(r.Data(), nil, 2, BIFF8)
}

// ParseSST decodes a shared string table and calls fn for each unique string
// in order. fn receives the number of unique strings, the index and the text.
// A unique count the payload cannot hold fails before fn is called.
func ParseSST(r *Record, fn func(unique, idx int, text string)) error {
	s := r.Data()
	if _, err := stream.Int32(s); err != nil {
		return err
	}
	unique, err := stream.Int32(s)
	if err != nil {
		return err
	}
	room := int64(len(r.data)) - 8
	if unique < 0 || int64(unique)*minSSTString > room {
		return xlerr.Format("Wrong SST record: %d strings declared in %d bytes.", unique, room)
	}
	for i := 0; i < int(unique); i++ {
		text, err := LoadString(s, r.Borders(), 2, BIFF8)
		if err != nil {
			return err
		}
		fn(int(unique), i, text)
	}
	return nil
}
