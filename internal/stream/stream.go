// Package stream contains the byte-order aware random access stream used by
// the compound file and BIFF record layers.
package stream

import (
	"encoding/binary"
	"math"

	"github.com/yamitzky/xlsreader/internal/xlerr"
)

// SeekMode selects the origin of a Seek.
type SeekMode int

const (
	FromBeginning SeekMode = iota
	FromCurrent
	FromEnd
)

func (m SeekMode) String() string {
	switch m {
	case FromBeginning:
		return "FromBeginning"
	case FromCurrent:
		return "FromCurrent"
	case FromEnd:
		return "FromEnd"
	default:
		return "SeekMode(?)"
	}
}

// ByteStream is a seekable sequence of bytes with a fixed byte order.
type ByteStream interface {
	// GetByte returns the next byte. Past the end it returns 0xFF and a nil error;
	// the error is reserved for failures of the underlying storage.
	GetByte() (byte, error)

	// EOF reports whether the cursor is at or past the end of the stream.
	EOF() bool

	// Seek moves the cursor. Positions past the end clamp to the end.
	Seek(offset int64, mode SeekMode) error

	// Pos returns the cursor position, or -1 at EOF.
	Pos() int64

	// ByteOrder returns the order used for multi-byte reads.
	ByteOrder() binary.ByteOrder
}

// Uint reads an n-byte unsigned integer (n <= 8) in the stream's byte order.
func Uint(s ByteStream, n int) (uint64, error) {
	bigEndian := s.ByteOrder() == binary.BigEndian
	var v uint64
	for i := 0; i < n; i++ {
		if s.EOF() {
			return 0, xlerr.UnexpectedEOF()
		}
		b, err := s.GetByte()
		if err != nil {
			return 0, err
		}
		if bigEndian {
			v |= uint64(b) << (8 * uint(n-i-1))
		} else {
			v |= uint64(b) << (8 * uint(i))
		}
	}
	return v, nil
}

func Uint8(s ByteStream) (uint8, error) {
	v, err := Uint(s, 1)
	return uint8(v), err
}

func Uint16(s ByteStream) (uint16, error) {
	v, err := Uint(s, 2)
	return uint16(v), err
}

func Int16(s ByteStream) (int16, error) {
	v, err := Uint(s, 2)
	return int16(uint16(v)), err
}

func Uint32(s ByteStream) (uint32, error) {
	v, err := Uint(s, 4)
	return uint32(v), err
}

func Int32(s ByteStream) (int32, error) {
	v, err := Uint(s, 4)
	return int32(uint32(v)), err
}

func Uint64(s ByteStream) (uint64, error) {
	return Uint(s, 8)
}

// Float64 reads eight bytes and reinterprets them as an IEEE-754 double.
func Float64(s ByteStream) (float64, error) {
	v, err := Uint(s, 8)
	return math.Float64frombits(v), err
}

// Skip moves the cursor n bytes forward.
func Skip(s ByteStream, n int64) error {
	return s.Seek(n, FromCurrent)
}

// Discard consumes n bytes without keeping them, failing like Uint once the
// end is reached.
func Discard(s ByteStream, n int64) error {
	for ; n > 0; n-- {
		if s.EOF() {
			return xlerr.UnexpectedEOF()
		}
		if _, err := s.GetByte(); err != nil {
			return err
		}
	}
	return nil
}

// ReadBytes reads n bytes one at a time, failing like Uint once the end is reached.
func ReadBytes(s ByteStream, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		if s.EOF() {
			return nil, xlerr.UnexpectedEOF()
		}
		b, err := s.GetByte()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
