package cfb

import (
	"encoding/binary"
	"io"

	"github.com/yamitzky/xlsreader/internal/stream"
	"github.com/yamitzky/xlsreader/internal/xlerr"
)

type streamMode int

const (
	largeStream streamMode = iota
	shortStream
)

// Stream presents the contents of one directory entry as a flat byte
// sequence. Large streams walk their SAT chain directly. Short streams walk
// their SSAT chain, where each short sector lives inside a large sector of the
// root entry's chain.
//
// The buffer always holds one large sector and is refilled only when the
// large sector under the cursor changes.
type Stream struct {
	r      io.ReaderAt
	header *Header
	mode   streamMode

	size            int64
	bytesRead       int64
	sectorSize      int64
	sectorBytesRead int64

	largeChain []SecID
	shortChain []SecID
	largeIdx   int
	shortIdx   int

	current SecID
	buf     []byte
	pos     int64
}

// newChainStream opens the large-sector chain starting at first. Its size is
// the whole chain; the directory stream is read this way.
func newChainStream(r io.ReaderAt, h *Header, sat *SAT, first SecID) (*Stream, error) {
	chain, err := sat.Sectors(first)
	if err != nil {
		return nil, err
	}
	s := &Stream{
		r:          r,
		header:     h,
		mode:       largeStream,
		sectorSize: int64(h.SectorSize),
		largeChain: chain,
		current:    Free,
		buf:        make([]byte, h.SectorSize),
	}
	s.size = int64(len(chain)) * s.sectorSize
	if err := s.load(chain[0]); err != nil {
		return nil, err
	}
	return s, nil
}

// newEntryStream opens the stream of a directory entry. Entries smaller than
// the header's stream min size are read through the short sector chain.
func newEntryStream(r io.ReaderAt, h *Header, sat, ssat *SAT, dir Directory, shortStreamFirst SecID) (*Stream, error) {
	s := &Stream{
		r:       r,
		header:  h,
		mode:    largeStream,
		size:    int64(dir.StreamSize),
		current: Free,
		buf:     make([]byte, h.SectorSize),
	}
	if s.size <= 0 {
		s.size = 0
		s.sectorSize = int64(h.SectorSize)
		return s, nil
	}

	var err error
	if dir.StreamSize < h.StreamMinSize {
		s.mode = shortStream
		s.sectorSize = int64(h.ShortSectorSize)
		if s.largeChain, err = sat.Sectors(shortStreamFirst); err != nil {
			return nil, err
		}
		if s.shortChain, err = ssat.Sectors(dir.StreamSecID); err != nil {
			return nil, err
		}
		large, offset, err := s.whereIsShortSector(dir.StreamSecID)
		if err != nil {
			return nil, err
		}
		if err := s.load(large); err != nil {
			return nil, err
		}
		s.pos = offset * int64(h.ShortSectorSize)
		return s, nil
	}

	s.sectorSize = int64(h.SectorSize)
	if s.largeChain, err = sat.Sectors(dir.StreamSecID); err != nil {
		return nil, err
	}
	if err := s.load(s.largeChain[0]); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads a large sector into the buffer unless it is already there.
func (s *Stream) load(id SecID) error {
	if id == s.current {
		return nil
	}
	if err := readSector(s.r, id, s.buf); err != nil {
		return err
	}
	s.current = id
	return nil
}

// whereIsShortSector returns the large sector holding a short sector and the
// short sector's index within it.
func (s *Stream) whereIsShortSector(short SecID) (SecID, int64, error) {
	perLarge := int64(s.header.ShortSectorsPerSector())
	offset := int64(short) % perLarge
	idx := int64(short) / perLarge
	if idx < 0 || idx >= int64(len(s.largeChain)) {
		return 0, 0, xlerr.OutOfRange("There is no such sector with id: %d", int32(short))
	}
	return s.largeChain[idx], offset, nil
}

func (s *Stream) seekToNextSector() error {
	if s.mode == largeStream {
		s.largeIdx++
		if s.largeIdx >= len(s.largeChain) {
			return xlerr.UnexpectedEOF()
		}
		if err := s.load(s.largeChain[s.largeIdx]); err != nil {
			return err
		}
		s.pos = 0
		return nil
	}

	s.shortIdx++
	if s.shortIdx >= len(s.shortChain) {
		return xlerr.UnexpectedEOF()
	}
	large, offset, err := s.whereIsShortSector(s.shortChain[s.shortIdx])
	if err != nil {
		return err
	}
	if err := s.load(large); err != nil {
		return err
	}
	s.pos = offset * int64(s.header.ShortSectorSize)
	return nil
}

// GetByte returns the next byte, or 0xFF once the end has been reached.
func (s *Stream) GetByte() (byte, error) {
	if s.EOF() {
		return 0xFF, nil
	}
	if s.sectorBytesRead == s.sectorSize {
		s.sectorBytesRead = 0
		if err := s.seekToNextSector(); err != nil {
			return 0, err
		}
	}
	b := s.buf[s.pos]
	s.sectorBytesRead++
	s.bytesRead++
	s.pos++
	return b, nil
}

// EOF reports whether every byte of the stream has been read.
func (s *Stream) EOF() bool {
	return s.bytesRead >= s.size
}

// Seek moves the cursor.
//
// FromCurrent offsets that land before the start wrap around by the stream
// size. FromEnd treats a positive offset as the distance back from the end
// and a negative one as an absolute position. A negative FromBeginning
// offset counts past the end. Any position at or past the end leaves the
// cursor at the end.
func (s *Stream) Seek(offset int64, mode stream.SeekMode) error {
	pos := offset
	switch {
	case mode == stream.FromCurrent:
		pos += s.bytesRead
		if pos < 0 {
			pos += s.size
		}
	case mode == stream.FromEnd && pos > 0:
		pos = s.size - pos
	case mode == stream.FromEnd && pos < 0:
		pos = -pos
	case mode == stream.FromBeginning && pos < 0:
		pos = s.size - pos
	}
	if pos < 0 {
		pos = 0
	}
	if pos >= s.size {
		s.bytesRead = s.size
		return nil
	}

	offsetInSector := pos % s.sectorSize
	idx := int(pos / s.sectorSize)
	s.bytesRead = pos
	s.sectorBytesRead = offsetInSector

	if s.mode == largeStream {
		if idx >= len(s.largeChain) {
			return xlerr.OutOfRange("There is no such sector with id: %d", idx)
		}
		s.largeIdx = idx
		if err := s.load(s.largeChain[idx]); err != nil {
			return err
		}
		s.pos = offsetInSector
		return nil
	}

	if idx >= len(s.shortChain) {
		return xlerr.OutOfRange("There is no such sector with id: %d", idx)
	}
	large, offsetInLarge, err := s.whereIsShortSector(s.shortChain[idx])
	if err != nil {
		return err
	}
	s.shortIdx = idx
	if err := s.load(large); err != nil {
		return err
	}
	s.pos = offsetInLarge*int64(s.header.ShortSectorSize) + offsetInSector
	return nil
}

// Pos returns the number of bytes read so far, or -1 at EOF.
func (s *Stream) Pos() int64 {
	if s.EOF() {
		return -1
	}
	return s.bytesRead
}

func (s *Stream) ByteOrder() binary.ByteOrder {
	return s.header.ByteOrder
}

// Size returns the stream length in bytes.
func (s *Stream) Size() int64 {
	return s.size
}

// Short reports whether the stream is stored in short sectors.
func (s *Stream) Short() bool {
	return s.mode == shortStream
}

var _ stream.ByteStream = (*Stream)(nil)
