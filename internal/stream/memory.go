package stream

import "encoding/binary"

// Memory is a ByteStream over a byte slice.
type Memory struct {
	data  []byte
	pos   int64
	order binary.ByteOrder
}

// NewMemory returns a stream reading data in the given byte order.
// A nil order means little endian.
func NewMemory(data []byte, order binary.ByteOrder) *Memory {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Memory{data: data, order: order}
}

func (m *Memory) GetByte() (byte, error) {
	if m.EOF() {
		return 0xFF, nil
	}
	b := m.data[m.pos]
	m.pos++
	return b, nil
}

func (m *Memory) EOF() bool {
	return m.pos >= int64(len(m.data))
}

func (m *Memory) Seek(offset int64, mode SeekMode) error {
	switch mode {
	case FromCurrent:
		offset += m.pos
	case FromEnd:
		offset += int64(len(m.data))
	}
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(m.data)) {
		offset = int64(len(m.data))
	}
	m.pos = offset
	return nil
}

func (m *Memory) Pos() int64 {
	if m.EOF() {
		return -1
	}
	return m.pos
}

func (m *Memory) ByteOrder() binary.ByteOrder {
	return m.order
}

// Len returns the total number of bytes in the stream.
func (m *Memory) Len() int {
	return len(m.data)
}

// Bytes returns the underlying data.
func (m *Memory) Bytes() []byte {
	return m.data
}
