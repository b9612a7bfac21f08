package xls

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/yamitzky/xlsreader/internal/biff"
	"github.com/yamitzky/xlsreader/internal/cfb"
	"github.com/yamitzky/xlsreader/internal/stream"
	"github.com/yamitzky/xlsreader/internal/xlerr"
)

// Workbook stream names, in the order they are tried.
var workbookStreamNames = []string{"Workbook", "Book"}

// Parser decodes the workbook stream of a compound file and reports what it
// finds to a Storage.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger discards all output.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = discardLogger
	}
	return &Parser{logger: logger}
}

// Parse reads the workbook in r and feeds it to storage. options may be nil.
func Parse(r io.ReaderAt, storage Storage, options *OpenWorkbookOptions) error {
	return NewParser(options.logger()).LoadBook(r, storage)
}

// LoadBook opens r as a compound file, locates the workbook stream and loads
// the globals followed by every worksheet.
func (p *Parser) LoadBook(r io.ReaderAt, storage Storage) error {
	f, err := cfb.Open(r, cfb.WithLogger(p.logger))
	if err != nil {
		return err
	}
	s, err := p.workbookStream(f)
	if err != nil {
		return err
	}
	boundSheets, err := p.loadGlobals(s, storage)
	if err != nil {
		return err
	}
	return p.loadWorkSheets(s, boundSheets, storage)
}

func (p *Parser) workbookStream(f *cfb.File) (*cfb.Stream, error) {
	name := workbookStreamNames[len(workbookStreamNames)-1]
	for _, n := range workbookStreamNames {
		if f.HasDirectory(n) {
			name = n
			break
		}
	}
	dir, err := f.Directory(name)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("workbook stream", "name", name, "size", dir.StreamSize)
	return f.Stream(dir)
}

// loadGlobals reads the globals substream up to its EOF record and returns
// the BOUNDSHEET records in order.
func (p *Parser) loadGlobals(s stream.ByteStream, storage Storage) ([]biff.BoundSheet, error) {
	var boundSheets []biff.BoundSheet
	skipped := make(map[uint16]int)
	for {
		r, err := biff.ReadRecord(s)
		if err != nil {
			return nil, err
		}
		switch r.Code {
		case biff.XL_SST:
			err = biff.ParseSST(r, storage.OnSharedString)
		case biff.XL_BOUNDSHEET:
			var bs biff.BoundSheet
			if bs, err = biff.ParseBoundSheet(r); err == nil {
				boundSheets = append(boundSheets, bs)
			}
		case biff.XL_DATEMODE:
			var mode uint16
			if mode, err = biff.ParseDateMode(r); err == nil {
				storage.OnDateMode(mode)
			}
		case biff.XL_EOF:
			p.logSkipped("globals", skipped)
			return boundSheets, nil
		default:
			skipped[r.Code]++
		}
		if err != nil {
			return nil, err
		}
	}
}

// loadWorkSheets loads every bound sheet of type worksheet. Sheet indexes
// count all BOUNDSHEET records, so charts and macro sheets leave gaps.
func (p *Parser) loadWorkSheets(s stream.ByteStream, boundSheets []biff.BoundSheet, storage Storage) error {
	for i, bs := range boundSheets {
		if bs.Type != biff.SheetWorkSheet {
			p.logger.Debug("skip sheet", "sheet", i, "name", bs.Name, "type", bs.Type.String())
			continue
		}
		storage.OnSheet(i, bs.Name)
		if err := p.loadSheet(i, bs, s, storage); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) loadSheet(idx int, bs biff.BoundSheet, s stream.ByteStream, storage Storage) error {
	if err := s.Seek(bs.BOFPosition, stream.FromBeginning); err != nil {
		return err
	}
	r, err := biff.ReadRecord(s)
	if err != nil {
		return err
	}
	bof, err := biff.ParseBOF(r)
	if err != nil {
		return err
	}
	if bof.Version != biff.BIFF8 {
		return xlerr.Unsupported("Unsupported BIFF version. BIFF8 is supported only.")
	}

	skipped := make(map[uint16]int)
	for {
		r, err := biff.ReadRecord(s)
		if err != nil {
			return err
		}
		switch r.Code {
		case biff.XL_LABELSST:
			var l biff.LabelSST
			if l, err = biff.ParseLabelSST(r); err == nil {
				storage.OnCellSharedString(idx, l.Row, l.Column, l.SSTIndex)
			}
		case biff.XL_LABEL:
			var l biff.Label
			if l, err = biff.ParseLabel(r); err == nil {
				storage.OnCellText(idx, l.Row, l.Column, l.Text)
			}
		case biff.XL_RK, biff.XL_RK2:
			var n biff.Number
			if n, err = biff.ParseRK(r); err == nil {
				storage.OnCellNumber(idx, n.Row, n.Column, n.Value)
			}
		case biff.XL_MULRK:
			var ns []biff.Number
			if ns, err = biff.ParseMulRK(r); err == nil {
				for _, n := range ns {
					storage.OnCellNumber(idx, n.Row, n.Column, n.Value)
				}
			}
		case biff.XL_NUMBER:
			var n biff.Number
			if n, err = biff.ParseNumber(r); err == nil {
				storage.OnCellNumber(idx, n.Row, n.Column, n.Value)
			}
		case biff.XL_FORMULA:
			err = p.handleFormula(r, s, idx, storage)
		case biff.XL_EOF:
			p.logSkipped(fmt.Sprintf("sheet %d", idx), skipped)
			return nil
		default:
			skipped[r.Code]++
		}
		if err != nil {
			return err
		}
	}
}

// handleFormula reports a FORMULA record. A string result is stored in the
// record that follows, which is consumed here whatever its code.
func (p *Parser) handleFormula(r *biff.Record, s stream.ByteStream, idx int, storage Storage) error {
	bf, err := biff.ParseFormula(r)
	if err != nil {
		return err
	}
	f := newFormula(bf)
	if f.ValueType == StringValue {
		next, err := biff.ReadRecord(s)
		if err != nil {
			return err
		}
		if next.Code != biff.XL_STRING {
			p.logger.Debug("formula string result", "expected", biff.Name(biff.XL_STRING), "got", biff.Name(next.Code))
		}
		if f.Str, err = biff.ParseString(next); err != nil {
			return err
		}
	}
	storage.OnCellFormula(idx, f)
	return nil
}

func (p *Parser) logSkipped(substream string, skipped map[uint16]int) {
	if len(skipped) == 0 {
		return
	}
	codes := make([]int, 0, len(skipped))
	for code := range skipped {
		codes = append(codes, int(code))
	}
	sort.Ints(codes)
	attrs := make([]any, 0, 2*len(codes)+2)
	attrs = append(attrs, "substream", substream)
	for _, code := range codes {
		attrs = append(attrs, biff.Name(uint16(code)), skipped[uint16(code)])
	}
	p.logger.Debug("skipped records", attrs...)
}
