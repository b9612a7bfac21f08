// Package cfb reads OLE2 compound files: the sector allocation tables, the
// directory tree and the streams stored in large or short sectors.
package cfb

import (
	"encoding/binary"
	"io"
	"strconv"

	"github.com/yamitzky/xlsreader/internal/xlerr"
)

// SecID identifies a sector. Non-negative values are sector indexes; the
// negative values below are markers with a special meaning in the tables.
type SecID int32

const (
	Free       SecID = -1
	EndOfChain SecID = -2
	SATSector  SecID = -3
	MSATSector SecID = -4
)

// HeaderSize is the size of the compound file header block.
const HeaderSize = 512

// IsSector reports whether id refers to a sector rather than a marker.
func (id SecID) IsSector() bool {
	return id >= 0
}

// Offset returns the file offset of the sector for the given sector size.
func (id SecID) Offset(sectorSize int) int64 {
	return HeaderSize + int64(id)*int64(sectorSize)
}

func (id SecID) String() string {
	switch id {
	case Free:
		return "Free"
	case EndOfChain:
		return "EndOfChain"
	case SATSector:
		return "SATSector"
	case MSATSector:
		return "MSATSector"
	}
	if id < 0 {
		return "Invalid"
	}
	return strconv.Itoa(int(id))
}

// readSector fills buf with the contents of sector id. A sector cut short by
// the end of the file is zero padded.
func readSector(r io.ReaderAt, id SecID, buf []byte) error {
	if !id.IsSector() {
		return xlerr.OutOfRange("There is no such sector with id: %d", int32(id))
	}
	n, err := r.ReadAt(buf, id.Offset(len(buf)))
	if err != nil && err != io.EOF {
		return xlerr.IO("Unable to read sector %d: %v", int32(id), err)
	}
	if n == 0 {
		return xlerr.UnexpectedEOF()
	}
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
	return nil
}

// decodeSecIDs appends the int32 sector ids packed in buf.
func decodeSecIDs(dst []SecID, buf []byte, order binary.ByteOrder) []SecID {
	for i := 0; i+4 <= len(buf); i += 4 {
		dst = append(dst, SecID(int32(order.Uint32(buf[i:]))))
	}
	return dst
}
