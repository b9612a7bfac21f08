package biff

import (
	"fmt"

	"github.com/yamitzky/xlsreader/internal/stream"
)

// Version is the BIFF version declared by a BOF record.
type Version uint16

const (
	UnknownVersion Version = 0x0000
	BIFF7          Version = 0x0500
	BIFF8          Version = 0x0600
)

func (v Version) String() string {
	switch v {
	case BIFF7:
		return "BIFF7"
	case BIFF8:
		return "BIFF8"
	default:
		return "Unknown"
	}
}

// SubstreamType is the kind of substream a BOF record opens.
type SubstreamType uint16

const (
	UnknownType       SubstreamType = 0x0000
	WorkBookGlobals   SubstreamType = 0x0005
	VisualBasicModule SubstreamType = 0x0006
	WorkSheet         SubstreamType = 0x0010
	Chart             SubstreamType = 0x0020
	MacroSheet        SubstreamType = 0x0040
	WorkSpace         SubstreamType = 0x0100
)

func (t SubstreamType) String() string {
	switch t {
	case WorkBookGlobals:
		return "WorkBookGlobals"
	case VisualBasicModule:
		return "VisualBasicModule"
	case WorkSheet:
		return "WorkSheet"
	case Chart:
		return "Chart"
	case MacroSheet:
		return "MacroSheet"
	case WorkSpace:
		return "WorkSpace"
	default:
		return "Unknown"
	}
}

// BOF is the header of a substream.
type BOF struct {
	Version Version
	Type    SubstreamType
}

// ParseBOF decodes a BOF record. Versions and types other than the known
// ones map to UnknownVersion and UnknownType.
func ParseBOF(r *Record) (BOF, error) {
	var bof BOF
	s := r.Data()
	version, err := stream.Uint16(s)
	if err != nil {
		return bof, err
	}
	typ, err := stream.Uint16(s)
	if err != nil {
		return bof, err
	}

	switch v := Version(version); v {
	case BIFF7, BIFF8:
		bof.Version = v
	default:
		bof.Version = UnknownVersion
	}
	switch t := SubstreamType(typ); t {
	case WorkBookGlobals, VisualBasicModule, WorkSheet, Chart, MacroSheet, WorkSpace:
		bof.Type = t
	default:
		bof.Type = UnknownType
	}
	return bof, nil
}

// SheetType is the kind of sheet listed by a BOUNDSHEET record.
type SheetType uint16

const (
	SheetWorkSheet         SheetType = 0x0000
	SheetMacroSheet        SheetType = 0x0100
	SheetChart             SheetType = 0x0200
	SheetVisualBasicModule SheetType = 0x0600
)

func (t SheetType) String() string {
	switch t {
	case SheetWorkSheet:
		return "WorkSheet"
	case SheetMacroSheet:
		return "MacroSheet"
	case SheetChart:
		return "Chart"
	case SheetVisualBasicModule:
		return "VisualBasicModule"
	default:
		return fmt.Sprintf("SheetType(0x%04X)", uint16(t))
	}
}

// BoundSheet describes one sheet of the workbook and where its substream starts.
type BoundSheet struct {
	BOFPosition int64
	Type        SheetType
	Name        string
}

// ParseBoundSheet decodes a BOUNDSHEET record. The low byte of the type field
// holds the visibility and is dropped.
func ParseBoundSheet(r *Record) (BoundSheet, error) {
	var bs BoundSheet
	s := r.Data()
	pos, err := stream.Int32(s)
	if err != nil {
		return bs, err
	}
	typ, err := stream.Uint16(s)
	if err != nil {
		return bs, err
	}
	name, err := LoadString(s, r.Borders(), 1, BIFF8)
	if err != nil {
		return bs, err
	}
	bs.BOFPosition = int64(pos)
	bs.Type = SheetType(typ & 0xFF00)
	bs.Name = name
	return bs, nil
}

// ParseDateMode decodes a DATEMODE record.
func ParseDateMode(r *Record) (uint16, error) {
	return stream.Uint16(r.Data())
}
