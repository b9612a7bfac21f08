package cfb

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/yamitzky/xlsreader/internal/xlerr"
)

// Signature is the magic cookie in the first 8 bytes of every compound file.
var Signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

var littleEndianMarker = []byte{0xFE, 0xFF}

// Header field offsets.
const (
	byteOrderOffset     = 28
	sectorPowerOffset   = 30
	shortPowerOffset    = 32
	sectorsInSATOffset  = 44
	dirStreamOffset     = 48
	streamMinSizeOffset = 56
	ssatFirstOffset     = 60
	sectorsInSSATOffset = 64
	msatFirstOffset     = 68
	sectorsInMSATOffset = 72
	msatHeadOffset      = 76
	msatHeadCount       = 109
	minSectorPower      = 7
	maxSectorPower      = 16
)

// Header is the parsed 512-byte compound file header. It is immutable once loaded.
type Header struct {
	ByteOrder       binary.ByteOrder
	SectorSize      int
	ShortSectorSize int
	SectorsInSAT    int32
	DirStreamSecID  SecID
	StreamMinSize   int32
	SSATFirstSecID  SecID
	SectorsInSSAT   int32
	MSATFirstSecID  SecID
	SectorsInMSAT   int32

	// msatHead holds the 109 SAT sector slots stored in the header itself.
	msatHead [msatHeadCount]SecID
}

// ParseHeader reads and validates the header at the start of r.
func ParseHeader(r io.ReaderAt) (*Header, error) {
	buf := make([]byte, HeaderSize)
	n, err := r.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return nil, xlerr.IO("Unable to read header: %v", err)
	}
	if n < len(Signature) || !bytes.Equal(buf[:len(Signature)], Signature) {
		return nil, xlerr.Format("Wrong file identifier. It isn't a compound file.")
	}
	if n < HeaderSize {
		return nil, xlerr.UnexpectedEOF()
	}
	return parseHeaderBlock(buf)
}

func parseHeaderBlock(buf []byte) (*Header, error) {
	h := &Header{ByteOrder: binary.BigEndian}
	if bytes.Equal(buf[byteOrderOffset:byteOrderOffset+2], littleEndianMarker) {
		h.ByteOrder = binary.LittleEndian
	}
	order := h.ByteOrder

	sectorPower := int16(order.Uint16(buf[sectorPowerOffset:]))
	shortPower := int16(order.Uint16(buf[shortPowerOffset:]))
	if sectorPower < minSectorPower || sectorPower > maxSectorPower ||
		shortPower < 1 || shortPower > sectorPower {
		return nil, xlerr.Format("Wrong sector size. Sector power %d, short sector power %d.",
			sectorPower, shortPower)
	}
	h.SectorSize = 1 << uint(sectorPower)
	h.ShortSectorSize = 1 << uint(shortPower)

	i32 := func(off int) int32 { return int32(order.Uint32(buf[off:])) }
	h.SectorsInSAT = i32(sectorsInSATOffset)
	h.DirStreamSecID = SecID(i32(dirStreamOffset))
	h.StreamMinSize = i32(streamMinSizeOffset)
	h.SSATFirstSecID = SecID(i32(ssatFirstOffset))
	h.SectorsInSSAT = i32(sectorsInSSATOffset)
	h.MSATFirstSecID = SecID(i32(msatFirstOffset))
	h.SectorsInMSAT = i32(sectorsInMSATOffset)
	for i := range h.msatHead {
		h.msatHead[i] = SecID(i32(msatHeadOffset + i*4))
	}
	return h, nil
}

// ShortSectorsPerSector returns how many short sectors fit in one large sector.
func (h *Header) ShortSectorsPerSector() int {
	return h.SectorSize / h.ShortSectorSize
}
