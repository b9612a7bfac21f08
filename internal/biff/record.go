package biff

import (
	"encoding/binary"

	"github.com/yamitzky/xlsreader/internal/stream"
)

// Record is one logical BIFF record. The payloads of any CONTINUE records
// that follow it are appended to its data, and the offset where each of them
// starts is kept in Borders.
type Record struct {
	Code   uint16
	Length uint32

	data    []byte
	order   binary.ByteOrder
	borders []int64
}

// NewRecord builds a record from an already assembled payload.
func NewRecord(code uint16, data []byte, borders []int64, order binary.ByteOrder) *Record {
	return &Record{
		Code:    code,
		Length:  uint32(len(data)),
		data:    data,
		order:   order,
		borders: borders,
	}
}

// ReadRecord reads the record at the cursor of s together with its CONTINUE
// records. The cursor is left at the header of the next record.
func ReadRecord(s stream.ByteStream) (*Record, error) {
	code, err := stream.Uint16(s)
	if err != nil {
		return nil, err
	}
	length, err := stream.Uint16(s)
	if err != nil {
		return nil, err
	}
	data, err := stream.ReadBytes(s, int(length))
	if err != nil {
		return nil, err
	}
	r := &Record{
		Code:   code,
		Length: uint32(length),
		data:   data,
		order:  s.ByteOrder(),
	}

	if s.EOF() {
		return r, nil
	}
	next, err := peekCode(s)
	if err != nil {
		return nil, err
	}
	for next == XL_CONTINUE {
		r.borders = append(r.borders, int64(r.Length))
		n, err := stream.Uint16(s)
		if err != nil {
			return nil, err
		}
		more, err := stream.ReadBytes(s, int(n))
		if err != nil {
			return nil, err
		}
		r.data = append(r.data, more...)
		r.Length += uint32(n)
		if s.EOF() {
			return r, nil
		}
		if next, err = peekCode(s); err != nil {
			return nil, err
		}
	}

	if !s.EOF() {
		if err := s.Seek(-2, stream.FromCurrent); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// peekCode reads the code of the following record. Bytes past the end read
// as 0xFF, so a code cut short by the end of the stream is never CONTINUE.
func peekCode(s stream.ByteStream) (uint16, error) {
	var b [2]byte
	for i := range b {
		v, err := s.GetByte()
		if err != nil {
			return 0, err
		}
		b[i] = v
	}
	return s.ByteOrder().Uint16(b[:]), nil
}

// Data returns a fresh stream over the record payload, in the byte order of
// the stream the record was read from.
func (r *Record) Data() *stream.Memory {
	return stream.NewMemory(r.data, r.order)
}

// Bytes returns the raw payload.
func (r *Record) Bytes() []byte {
	return r.data
}

// Borders returns the payload offsets where CONTINUE data begins.
func (r *Record) Borders() []int64 {
	return r.borders
}
