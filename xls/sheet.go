package xls

// Sheet contains the data for one worksheet.
//
// Cells are kept per row and rows grow as cells are stored. Every row reads
// as ColumnsCount cells wide, and cells never written are empty. Row and
// column indexes count from zero.
//
// You don't instantiate this type yourself. You access Sheet objects via
// the Book object that was returned when you called OpenWorkbook.
type Sheet struct {
	name    string
	cells   [][]Cell
	columns int
}

func newSheet(name string) *Sheet {
	return &Sheet{name: name}
}

// Name is the name of the sheet.
func (s *Sheet) Name() string {
	return s.name
}

// RowsCount is one more than the largest row index stored.
func (s *Sheet) RowsCount() int {
	return len(s.cells)
}

// ColumnsCount is one more than the largest column index stored.
func (s *Sheet) ColumnsCount() int {
	return s.columns
}

// Cell returns the cell at the given row and column. Coordinates outside the
// sheet yield an empty cell.
func (s *Sheet) Cell(row, column int) *Cell {
	if row < 0 || column < 0 || row >= len(s.cells) || column >= len(s.cells[row]) {
		return emptyCell
	}
	return &s.cells[row][column]
}

// Row returns the ColumnsCount cells of one row, or nil if the row is out of
// range.
func (s *Sheet) Row(row int) []Cell {
	if row < 0 || row >= len(s.cells) {
		return nil
	}
	r := s.cells[row]
	if len(r) < s.columns {
		r = append(r[:len(r):len(r)], make([]Cell, s.columns-len(r))...)
	}
	return r
}

// initCell grows the table so that (row, column) exists. Only the target row
// is widened; shorter rows are padded when read.
func (s *Sheet) initCell(row, column int) {
	if n := row + 1 - len(s.cells); n > 0 {
		s.cells = append(s.cells, make([][]Cell, n)...)
	}
	if n := column + 1 - len(s.cells[row]); n > 0 {
		s.cells[row] = append(s.cells[row], make([]Cell, n)...)
	}
	if column+1 > s.columns {
		s.columns = column + 1
	}
}

func (s *Sheet) setCell(row, column int, c Cell) {
	if row < 0 || column < 0 {
		return
	}
	s.initCell(row, column)
	s.cells[row][column] = c
}

func (s *Sheet) setString(row, column int, v string) {
	s.setCell(row, column, Cell{CType: CellString, Value: v})
}

func (s *Sheet) setDouble(row, column int, v float64) {
	s.setCell(row, column, Cell{CType: CellDouble, Value: v})
}

func (s *Sheet) setFormula(f Formula) {
	s.setCell(f.Row, f.Column, Cell{CType: CellFormula, Value: f})
}
