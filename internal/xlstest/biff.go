package xlstest

import (
	"encoding/binary"
	"math"
	"unicode/utf16"
)

// Record codes written by the builders.
const (
	codeFormula    = 0x0006
	codeEOF        = 0x000A
	codeDateMode   = 0x0022
	codeContinue   = 0x003C
	codeBoundSheet = 0x0085
	codeMulRK      = 0x00BD
	codeSST        = 0x00FC
	codeLabelSST   = 0x00FD
	codeNumber     = 0x0203
	codeLabel      = 0x0204
	codeString     = 0x0207
	codeRK         = 0x027E
	codeBOF        = 0x0809
)

// BOF versions and substream types.
const (
	BIFF7 = 0x0500
	BIFF8 = 0x0600

	Globals   = 0x0005
	Worksheet = 0x0010
	Chart     = 0x0020
)

var le = binary.LittleEndian

func u16(v uint16) []byte {
	return le.AppendUint16(nil, v)
}

func u32(v uint32) []byte {
	return le.AppendUint32(nil, v)
}

func u64(v uint64) []byte {
	return le.AppendUint64(nil, v)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Record frames payload as one physical record with the given code.
func Record(code uint16, payload ...[]byte) []byte {
	body := concat(payload...)
	return concat(u16(code), u16(uint16(len(body))), body)
}

// Continue frames payload as a CONTINUE record.
func Continue(payload ...[]byte) []byte {
	return Record(codeContinue, payload...)
}

// BOF returns a BOF record with the given version and substream type.
func BOF(version, typ uint16) []byte {
	// build, year, file history flags, lowest version
	return Record(codeBOF, u16(version), u16(typ), u16(0x0DBB), u16(0x07CC), u32(0x000100C1), u32(0x00000406))
}

// EOF returns an EOF record.
func EOF() []byte {
	return Record(codeEOF)
}

// DateMode returns a DATEMODE record.
func DateMode(mode uint16) []byte {
	return Record(codeDateMode, u16(mode))
}

// String encodes s as an unformatted BIFF8 string with a lenSize-byte
// character count. Text that fits in Latin-1 is stored compressed.
func String(s string, lenSize int) []byte {
	units := utf16.Encode([]rune(s))
	wide := false
	for _, r := range s {
		if r > 0xFF {
			wide = true
			break
		}
	}

	var out []byte
	if lenSize == 1 {
		out = append(out, byte(len(units)))
	} else {
		out = append(out, u16(uint16(len(units)))...)
	}
	if !wide {
		out = append(out, 0x00)
		for _, r := range s {
			out = append(out, byte(r))
		}
		return out
	}
	out = append(out, 0x01)
	for _, u := range units {
		out = append(out, u16(u)...)
	}
	return out
}

// BoundSheet returns a BOUNDSHEET record for a sheet whose BOF is at pos.
func BoundSheet(pos uint32, typ uint16, name string) []byte {
	return Record(codeBoundSheet, u32(pos), u16(typ), String(name, 1))
}

// SST returns a single SST record holding strs.
func SST(strs ...string) []byte {
	body := concat(u32(uint32(len(strs))), u32(uint32(len(strs))))
	for _, s := range strs {
		body = append(body, String(s, 2)...)
	}
	return Record(codeSST, body)
}

// LabelSST returns a LABELSST cell record.
func LabelSST(row, col uint16, idx uint32) []byte {
	return Record(codeLabelSST, u16(row), u16(col), u16(0x0F), u32(idx))
}

// Label returns a LABEL cell record.
func Label(row, col uint16, s string) []byte {
	return Record(codeLabel, u16(row), u16(col), u16(0x0F), String(s, 1))
}

// RK returns an RK cell record holding the packed value rk.
func RK(row, col uint16, rk uint32) []byte {
	return Record(codeRK, u16(row), u16(col), u16(0x0F), u32(rk))
}

// MulRK returns a MULRK record with one packed value per column from colFirst.
func MulRK(row, colFirst uint16, rks ...uint32) []byte {
	body := concat(u16(row), u16(colFirst))
	for _, rk := range rks {
		body = append(body, u16(0x0F)...)
		body = append(body, u32(rk)...)
	}
	body = append(body, u16(colFirst+uint16(len(rks))-1)...)
	return Record(codeMulRK, body)
}

// Number returns a NUMBER cell record.
func Number(row, col uint16, v float64) []byte {
	return Record(codeNumber, u16(row), u16(col), u16(0x0F), u64(math.Float64bits(v)))
}

// Formula returns a FORMULA record whose cached result field is result.
// The parsed expression is left empty.
func Formula(row, col uint16, result uint64) []byte {
	return Record(codeFormula, u16(row), u16(col), u16(0x0F), u64(result), u16(0), u32(0), u16(0))
}

// FormulaNumber returns a FORMULA record caching the double v.
func FormulaNumber(row, col uint16, v float64) []byte {
	return Formula(row, col, math.Float64bits(v))
}

// StringResult is the result field of a formula whose text follows in a STRING record.
const StringResult uint64 = 0xFFFF000000000000

// StringRecord returns the STRING record carrying a formula's text result.
func StringRecord(s string) []byte {
	return Record(codeString, String(s, 2))
}

// IntRK packs n as an integer RK value.
func IntRK(n int32) uint32 {
	return uint32(n<<2) | 0x02
}

// Sheet is one bound sheet of a generated workbook.
type Sheet struct {
	Name string
	// Type is the BOUNDSHEET type field; zero is a worksheet.
	Type uint16
	// Version overrides the substream BOF version. Zero means BIFF8.
	Version uint16
	Records [][]byte
}

func (s Sheet) bofType() uint16 {
	switch s.Type & 0xFF00 {
	case 0x0200:
		return Chart
	case 0x0100:
		return 0x0040
	case 0x0600:
		return 0x0006
	}
	return Worksheet
}

// WorkbookStream lays out a workbook globals substream followed by the sheet
// substreams. globals are written between the globals BOF and the BOUNDSHEET
// records, whose BOF positions are filled in to match the layout.
func WorkbookStream(globals [][]byte, sheets ...Sheet) []byte {
	head := concat(BOF(BIFF8, Globals), concat(globals...))
	boundSize := 0
	for _, s := range sheets {
		boundSize += len(BoundSheet(0, s.Type, s.Name))
	}
	pos := len(head) + boundSize + len(EOF())

	var bound, bodies []byte
	for _, s := range sheets {
		bound = append(bound, BoundSheet(uint32(pos+len(bodies)), s.Type, s.Name)...)
		version := s.Version
		if version == 0 {
			version = BIFF8
		}
		bodies = append(bodies, BOF(version, s.bofType())...)
		bodies = append(bodies, concat(s.Records...)...)
		bodies = append(bodies, EOF()...)
	}
	return concat(head, bound, EOF(), bodies)
}

// WorkbookFile wraps a workbook stream in a compound file under the given
// stream name ("Workbook" or "Book").
func WorkbookFile(name string, stream []byte) []byte {
	return CompoundFile(Options{}, Stream{Name: name, Data: stream})
}

// SampleWorkbook returns a compound file with one sheet named "Sheet" of three
// rows: a shared string, an integer, a fraction and a cached formula result.
func SampleWorkbook() []byte {
	var records [][]byte
	for r := uint16(0); r < 3; r++ {
		records = append(records,
			LabelSST(r, 0, uint32(r)),
			RK(r, 1, IntRK(int32(r)+1)),
			Number(r, 2, float64(r+1)/10),
			FormulaNumber(r, 3, float64(r+1)*1.1),
		)
	}
	stream := WorkbookStream(
		[][]byte{DateMode(0), SST("String #1", "String #2", "String #3")},
		Sheet{Name: "Sheet", Records: records},
	)
	return WorkbookFile("Workbook", stream)
}
