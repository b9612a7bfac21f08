package xls

// Storage receives everything the parser decodes from a workbook. Book is
// the standard implementation; callers that only need a few events can
// embed EmptyStorage and override the rest.
//
// Callbacks arrive in stream order: the date mode and shared strings while
// the globals are read, then OnSheet for each worksheet followed by its
// cells.
type Storage interface {
	// OnDateMode receives the raw DATEMODE value: 0 for the 1900 epoch,
	// anything else for 1904.
	OnDateMode(mode uint16)
	// OnSharedString is called once per string of the shared string table.
	// sstSize is the number of unique strings declared by the table.
	OnSharedString(sstSize, idx int, value string)
	// OnSheet announces worksheet idx, counted over BOUNDSHEET records.
	OnSheet(idx int, name string)
	OnCellSharedString(sheetIdx, row, column, sstIdx int)
	OnCellText(sheetIdx, row, column int, value string)
	OnCellNumber(sheetIdx, row, column int, value float64)
	OnCellFormula(sheetIdx int, value Formula)
}

// EmptyStorage ignores every event.
type EmptyStorage struct{}

var _ Storage = EmptyStorage{}

func (EmptyStorage) OnDateMode(uint16) {}
func (EmptyStorage) OnSharedString(int, int, string) {}
func (EmptyStorage) OnSheet(int, string) {}
func (EmptyStorage) OnCellSharedString(int, int, int, int) {}
func (EmptyStorage) OnCellText(int, int, int, string) {}
func (EmptyStorage) OnCellNumber(int, int, int, float64) {}
func (EmptyStorage) OnCellFormula(int, Formula) {}
