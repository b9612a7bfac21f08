package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yamitzky/xlsreader/xls"
)

type quotingMode int

const (
	quoteNone quotingMode = iota
	quoteMinimal
	quoteNonNumeric
	quoteAll
)

var quotingModes = map[string]quotingMode{
	"none":       quoteNone,
	"minimal":    quoteMinimal,
	"nonnumeric": quoteNonNumeric,
	"all":        quoteAll,
}

func parseQuoting(value string) (quotingMode, error) {
	if q, ok := quotingModes[strings.ToLower(value)]; ok {
		return q, nil
	}
	return quoteMinimal, fmt.Errorf("unsupported quoting: %s", value)
}

// field is one formatted cell. numeric fields stay bare with nonnumeric quoting.
type field struct {
	text    string
	numeric bool
}

var escaper = strings.NewReplacer("\r", "\\r", "\n", "\\n", "\t", "\\t")

// rowWriter writes delimited rows. Quoted fields double their quotes.
type rowWriter struct {
	w          io.Writer
	delimiter  rune
	terminator string
	quoting    quotingMode
	buf        []byte
}

func (rw *rowWriter) writeRow(fields []field) error {
	rw.buf = rw.buf[:0]
	for i, f := range fields {
		if i > 0 {
			rw.buf = utf8.AppendRune(rw.buf, rw.delimiter)
		}
		if rw.quoted(f) {
			rw.buf = append(rw.buf, '"')
			rw.buf = append(rw.buf, strings.ReplaceAll(f.text, `"`, `""`)...)
			rw.buf = append(rw.buf, '"')
		} else {
			rw.buf = append(rw.buf, f.text...)
		}
	}
	rw.buf = append(rw.buf, rw.terminator...)
	_, err := rw.w.Write(rw.buf)
	return err
}

func (rw *rowWriter) quoted(f field) bool {
	switch rw.quoting {
	case quoteAll:
		return true
	case quoteNonNumeric:
		return !f.numeric
	case quoteMinimal:
		return strings.ContainsRune(f.text, rw.delimiter) || strings.ContainsAny(f.text, "\"\r\n")
	}
	return false
}

// writeSheets writes each sheet as rows, separated by the sheet delimiter line.
func writeSheets(w io.Writer, cfg *config, book *xls.Book, sheets []*xls.Sheet) error {
	rw := &rowWriter{
		w:          w,
		delimiter:  cfg.delimiter,
		terminator: cfg.lineTerminator,
		quoting:    cfg.quoting,
	}
	for i, sheet := range sheets {
		if i > 0 && cfg.sheetDelimiter != "" {
			if _, err := io.WriteString(w, cfg.sheetDelimiter+cfg.lineTerminator); err != nil {
				return err
			}
		}
		for r := 0; r < sheet.RowsCount(); r++ {
			row := sheet.Row(r)
			fields := make([]field, len(row))
			empty := true
			for c := range row {
				fields[c] = formatCell(cfg, book, &row[c], c)
				empty = empty && fields[c].text == ""
			}
			if empty && cfg.ignoreEmpty {
				continue
			}
			if err := rw.writeRow(fields); err != nil {
				return err
			}
		}
	}
	return nil
}

// formatCell renders a cell. Numbers in date columns are written as dates;
// formulas are written as their cached result.
func formatCell(cfg *config, book *xls.Book, cell *xls.Cell, column int) field {
	var text string
	switch cell.CType {
	case xls.CellDouble:
		return formatNumber(cfg, book, cell.Double(), column)
	case xls.CellFormula:
		f := cell.Formula()
		if f.ValueType == xls.DoubleValue {
			return formatNumber(cfg, book, f.Double, column)
		}
		text = f.Text()
	case xls.CellString:
		text = cell.String()
	}
	if cfg.escape {
		text = escaper.Replace(text)
	}
	return field{text: text}
}

func formatNumber(cfg *config, book *xls.Book, v float64, column int) field {
	if cfg.dateColumns[column] {
		if text, ok := formatDate(book, v, cfg.dateFormat); ok {
			return field{text: text}
		}
	}
	if cfg.floatFormat != "" {
		return field{text: fmt.Sprintf(cfg.floatFormat, v), numeric: true}
	}
	return field{text: strconv.FormatFloat(v, 'g', -1, 64), numeric: true}
}
