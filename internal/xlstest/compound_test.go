package xlstest

import (
	"bytes"
	"io"
	"testing"

	"github.com/richardlehane/mscfb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readAll opens data with an independent compound file reader and returns the
// contents of every stream by name.
func readAll(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	doc, err := mscfb.New(bytes.NewReader(data))
	require.NoError(t, err)

	got := make(map[string][]byte)
	for {
		entry, err := doc.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		buf := make([]byte, entry.Size)
		if entry.Size > 0 {
			_, err = io.ReadFull(entry, buf)
			require.NoError(t, err)
		}
		got[entry.Name] = buf
	}
	return got
}

func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i*7)
	}
	return b
}

func TestCompoundFileOracle(t *testing.T) {
	small := pattern(300, 1)
	large := pattern(9000, 3)
	data := CompoundFile(Options{},
		Stream{Name: "Workbook", Data: large},
		Stream{Name: "Summary", Data: small},
		Stream{Name: "Tiny", Data: []byte("abc")},
	)

	assert.Equal(t, 0, (len(data)-headerSize)%512)
	got := readAll(t, data)
	assert.Equal(t, large, got["Workbook"])
	assert.Equal(t, small, got["Summary"])
	assert.Equal(t, []byte("abc"), got["Tiny"])
}

func TestSampleWorkbookOracle(t *testing.T) {
	got := readAll(t, SampleWorkbook())
	stream, ok := got["Workbook"]
	require.True(t, ok)
	assert.Equal(t, BOF(BIFF8, Globals), stream[:20])
}

func TestWorkbookStreamBoundSheetPositions(t *testing.T) {
	sheets := []Sheet{
		{Name: "First", Records: [][]byte{Number(0, 0, 1)}},
		{Name: "Second"},
	}
	stream := WorkbookStream(nil, sheets...)

	// Globals: BOF, two BOUNDSHEET records, EOF.
	off := len(BOF(BIFF8, Globals))
	for range sheets {
		rec := stream[off:]
		require.Equal(t, uint16(codeBoundSheet), le.Uint16(rec))
		pos := le.Uint32(rec[4:])
		assert.Equal(t, BOF(BIFF8, Worksheet), stream[pos:pos+20])
		off += 4 + int(le.Uint16(rec[2:]))
	}
	assert.Equal(t, EOF(), stream[off:off+4])
}

func TestString(t *testing.T) {
	assert.Equal(t, []byte{0x02, 0x00, 'h', 'i'}, String("hi", 1))
	assert.Equal(t, []byte{0x01, 0x00, 0x01, 0x42, 0x04}, String("т", 2))
}
