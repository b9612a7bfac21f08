package xls

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/yamitzky/xlsreader/internal/mmfile"
	"github.com/yamitzky/xlsreader/internal/xlerr"
)

// DateMode is the base date for date values. All dates are stored as a count
// of days past this base date.
type DateMode int

const (
	// DateModeUnknown means the workbook had no DATEMODE record.
	DateModeUnknown DateMode = -1
	// Dec31_1899 is the 1900 date system: 1 represents 1900-01-01.
	Dec31_1899 DateMode = 0
	// Jan01_1904 is the 1904 date system: 1 represents 1904-01-02.
	Jan01_1904 DateMode = 1
)

func (m DateMode) String() string {
	switch m {
	case Dec31_1899:
		return "1900"
	case Jan01_1904:
		return "1904"
	default:
		return "unknown"
	}
}

// Book represents the contents of a "workbook".
//
// You should not instantiate this type yourself. You use the Book
// object that was returned when you called OpenWorkbook.
type Book struct {
	sheets   []*Sheet
	sst      []string
	dateMode DateMode
}

var _ Storage = (*Book)(nil)

// NewBook returns an empty book, ready to be filled by Parse.
func NewBook() *Book {
	return &Book{dateMode: DateModeUnknown}
}

// DateMode returns the date system of the workbook.
func (b *Book) DateMode() DateMode {
	return b.dateMode
}

// SheetsCount returns the number of sheet slots. Slots of bound sheets that
// are not worksheets hold no sheet.
func (b *Book) SheetsCount() int {
	return len(b.sheets)
}

// Sheet returns the sheet with the given index.
func (b *Book) Sheet(index int) (*Sheet, error) {
	if index >= 0 && index < len(b.sheets) && b.sheets[index] != nil {
		return b.sheets[index], nil
	}
	return nil, xlerr.OutOfRange("There is no such sheet with index : %d", index)
}

// SheetByName returns the first worksheet with the given name.
func (b *Book) SheetByName(sheetName string) (*Sheet, error) {
	for _, sh := range b.sheets {
		if sh != nil && sh.name == sheetName {
			return sh, nil
		}
	}
	return nil, xlerr.NotFound("No sheet named <%s>", sheetName)
}

// SheetNames returns the names of all sheet slots, "" for empty ones.
func (b *Book) SheetNames() []string {
	names := make([]string, len(b.sheets))
	for i, sh := range b.sheets {
		if sh != nil {
			names[i] = sh.name
		}
	}
	return names
}

// Clear drops the sheets and the shared string table. The date mode is kept.
func (b *Book) Clear() {
	b.sheets = nil
	b.sst = nil
}

// Time converts a date serial to a time in UTC using the book's date mode.
// Books without a DATEMODE record use the 1900 system.
func (b *Book) Time(serial float64) (time.Time, error) {
	mode := b.dateMode
	if mode == DateModeUnknown {
		mode = Dec31_1899
	}
	return XldateAsDatetime(serial, mode)
}

func (b *Book) OnDateMode(mode uint16) {
	if mode != 0 {
		b.dateMode = Jan01_1904
	} else {
		b.dateMode = Dec31_1899
	}
}

func (b *Book) OnSharedString(sstSize, idx int, value string) {
	if len(b.sst) != sstSize {
		sst := make([]string, sstSize)
		copy(sst, b.sst)
		b.sst = sst
	}
	if idx >= 0 && idx < len(b.sst) {
		b.sst[idx] = value
	}
}

func (b *Book) OnSheet(idx int, name string) {
	if idx < 0 {
		return
	}
	for len(b.sheets) <= idx {
		b.sheets = append(b.sheets, nil)
	}
	b.sheets[idx] = newSheet(name)
}

// OnCellSharedString stores the shared string as text. An index past the
// table stores an empty string.
func (b *Book) OnCellSharedString(sheetIdx, row, column, sstIdx int) {
	var text string
	if sstIdx >= 0 && sstIdx < len(b.sst) {
		text = b.sst[sstIdx]
	}
	b.OnCellText(sheetIdx, row, column, text)
}

func (b *Book) OnCellText(sheetIdx, row, column int, value string) {
	if sh := b.sheet(sheetIdx); sh != nil {
		sh.setString(row, column, value)
	}
}

func (b *Book) OnCellNumber(sheetIdx, row, column int, value float64) {
	if sh := b.sheet(sheetIdx); sh != nil {
		sh.setDouble(row, column, value)
	}
}

func (b *Book) OnCellFormula(sheetIdx int, value Formula) {
	if sh := b.sheet(sheetIdx); sh != nil {
		sh.setFormula(value)
	}
}

func (b *Book) sheet(idx int) *Sheet {
	if idx < 0 || idx >= len(b.sheets) {
		return nil
	}
	return b.sheets[idx]
}

var discardLogger = slog.New(slog.DiscardHandler)

// OpenWorkbookOptions contains options for opening a workbook.
type OpenWorkbookOptions struct {
	// Logfile is an open file to which messages and diagnostics are written.
	Logfile io.Writer

	// Verbosity increases the volume of trace material written to the logfile.
	// Anything above zero enables debug output.
	Verbosity int

	// Logger, when set, receives all diagnostics and Logfile and Verbosity
	// are ignored.
	Logger *slog.Logger

	// FileContents is the file contents as bytes.
	// If FileContents is supplied, the filename is only used in messages.
	FileContents []byte

	// UseMmap maps the file into memory instead of reading it through the
	// file descriptor.
	UseMmap bool
}

func (o *OpenWorkbookOptions) logger() *slog.Logger {
	if o == nil {
		return discardLogger
	}
	if o.Logger != nil {
		return o.Logger
	}
	if o.Logfile == nil {
		return discardLogger
	}
	level := slog.LevelInfo
	if o.Verbosity > 0 {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(o.Logfile, &slog.HandlerOptions{Level: level}))
}

// OpenWorkbook opens an xls file for data extraction.
//
// filename: The path to the spreadsheet file to be opened.
// options: Optional parameters for opening the workbook.
//
// Returns: An instance of the Book class.
func OpenWorkbook(filename string, options *OpenWorkbookOptions) (*Book, error) {
	if options != nil && options.FileContents != nil {
		if err := checkFormat("", options.FileContents); err != nil {
			return nil, err
		}
		return OpenWorkbookReader(bytes.NewReader(options.FileContents), options)
	}

	if err := checkFormat(filename, nil); err != nil {
		return nil, err
	}

	if options != nil && options.UseMmap {
		data, release, err := mmfile.Map(filename)
		if err != nil {
			return nil, xlerr.IO("Unable to open file : %s", filename)
		}
		defer release()
		return OpenWorkbookReader(bytes.NewReader(data), options)
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, xlerr.IO("Unable to open file : %s", filename)
	}
	defer f.Close()
	return OpenWorkbookReader(f, options)
}

// OpenWorkbookReader reads a workbook from r. options may be nil.
func OpenWorkbookReader(r io.ReaderAt, options *OpenWorkbookOptions) (*Book, error) {
	b := NewBook()
	if err := Parse(r, b, options); err != nil {
		return nil, err
	}
	return b, nil
}

// checkFormat rejects files recognised as another spreadsheet format.
// Unrecognised content is left for the compound file loader to report.
func checkFormat(path string, content []byte) error {
	format, err := InspectFormat(path, content)
	if err != nil {
		return xlerr.IO("Unable to open file : %s", path)
	}
	if format != "" && format != "xls" {
		return xlerr.Format("%s; not supported", FileFormatDescriptions[format])
	}
	return nil
}
