package xls

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/yamitzky/xlsreader/internal/biff"
	"github.com/yamitzky/xlsreader/internal/cfb"
	"github.com/yamitzky/xlsreader/internal/stream"
)

// HexCharDump writes data[ofs:ofs+dlen] sixteen bytes per line as hex and as
// characters. NUL shows as ~ and other unprintable bytes as ?. Unless
// unnumbered, each line starts with its offset plus base.
func HexCharDump(data []byte, ofs, dlen int, base int, w io.Writer, unnumbered bool) {
	end := min(ofs+dlen, len(data))
	for pos := ofs; pos < end; pos += 16 {
		line := data[pos:min(pos+16, end)]
		hex := make([]string, len(line))
		var chars strings.Builder
		for i, c := range line {
			hex[i] = fmt.Sprintf("%02x", c)
			switch {
			case c == 0:
				chars.WriteByte('~')
			case c >= 0x20 && c < 0x7F:
				chars.WriteByte(c)
			default:
				chars.WriteByte('?')
			}
		}
		if unnumbered {
			fmt.Fprintf(w, "     %-48s %s\n", strings.Join(hex, " "), chars.String())
		} else {
			fmt.Fprintf(w, "%5d: %-48s %s\n", base+pos-ofs, strings.Join(hex, " "), chars.String())
		}
	}
}

// physicalRecord is one record header and payload as stored, CONTINUE
// records included.
type physicalRecord struct {
	pos  int64
	code uint16
	data []byte
}

// eachRecord walks the records of the workbook stream of f.
func eachRecord(f *cfb.File, fn func(physicalRecord)) error {
	s, err := NewParser(nil).workbookStream(f)
	if err != nil {
		return err
	}
	for !s.EOF() {
		rec := physicalRecord{pos: s.Pos()}
		if rec.code, err = stream.Uint16(s); err != nil {
			return err
		}
		length, err := stream.Uint16(s)
		if err != nil {
			return err
		}
		if rec.data, err = stream.ReadBytes(s, int(length)); err != nil {
			return err
		}
		fn(rec)
	}
	return nil
}

// Dump writes every BIFF record of an xls file in char & hex format for
// debugging.
//
// filename: The path to the file to be dumped.
// outfile: An open file, to which the dump is written.
// unnumbered: If true, omit offsets (for meaningful diffs).
func Dump(filename string, outfile io.Writer, unnumbered bool) error {
	f, err := cfb.OpenFile(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return dumpFile(f, outfile, unnumbered)
}

// DumpReader is Dump for a file already in memory.
func DumpReader(r io.ReaderAt, outfile io.Writer, unnumbered bool) error {
	f, err := cfb.Open(r)
	if err != nil {
		return err
	}
	return dumpFile(f, outfile, unnumbered)
}

func dumpFile(f *cfb.File, w io.Writer, unnumbered bool) error {
	return eachRecord(f, func(rec physicalRecord) {
		if unnumbered {
			fmt.Fprintf(w, "%04x %s len = %04x (%d)\n", rec.code, biff.Name(rec.code), len(rec.data), len(rec.data))
		} else {
			fmt.Fprintf(w, "%5d: %04x %s len = %04x (%d)\n", rec.pos, rec.code, biff.Name(rec.code), len(rec.data), len(rec.data))
		}
		HexCharDump(rec.data, 0, len(rec.data), int(rec.pos)+4, w, unnumbered)
	})
}

// CountRecords summarises the file's BIFF records as lines of count and
// record name, sorted by name.
//
// filename: The path to the file to be summarised.
// outfile: An open file, to which the summary is written.
func CountRecords(filename string, outfile io.Writer) error {
	f, err := cfb.OpenFile(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return countFile(f, outfile)
}

// CountRecordsReader is CountRecords for a file already in memory.
func CountRecordsReader(r io.ReaderAt, outfile io.Writer) error {
	f, err := cfb.Open(r)
	if err != nil {
		return err
	}
	return countFile(f, outfile)
}

func countFile(f *cfb.File, w io.Writer) error {
	counts := make(map[string]int)
	err := eachRecord(f, func(rec physicalRecord) {
		counts[biff.Name(rec.code)]++
	})
	if err != nil {
		return err
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%8d %s\n", counts[name], name)
	}
	return nil
}
