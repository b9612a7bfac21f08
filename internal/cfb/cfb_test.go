package cfb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamitzky/xlsreader/internal/stream"
	"github.com/yamitzky/xlsreader/internal/xlerr"
	"github.com/yamitzky/xlsreader/internal/xlstest"
)

func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i*7)
	}
	return b
}

func openStreams(t *testing.T, opts xlstest.Options, streams ...xlstest.Stream) *File {
	t.Helper()
	f, err := Open(bytes.NewReader(xlstest.CompoundFile(opts, streams...)))
	require.NoError(t, err)
	return f
}

func readStream(t *testing.T, s *Stream) []byte {
	t.Helper()
	var out []byte
	for !s.EOF() {
		b, err := s.GetByte()
		require.NoError(t, err)
		out = append(out, b)
	}
	return out
}

func TestParseHeader(t *testing.T) {
	data := xlstest.CompoundFile(xlstest.Options{}, xlstest.Stream{Name: "Workbook", Data: pattern(5000, 0)})
	h, err := ParseHeader(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, binary.LittleEndian, h.ByteOrder)
	assert.Equal(t, 512, h.SectorSize)
	assert.Equal(t, 64, h.ShortSectorSize)
	assert.Equal(t, int32(4096), h.StreamMinSize)
	assert.Equal(t, int32(1), h.SectorsInSAT)
	assert.Equal(t, SecID(1), h.DirStreamSecID)
	assert.Equal(t, EndOfChain, h.SSATFirstSecID)
	assert.Equal(t, EndOfChain, h.MSATFirstSecID)
	assert.Equal(t, int32(0), h.SectorsInMSAT)
	assert.Equal(t, 8, h.ShortSectorsPerSector())
}

func TestParseHeaderRejectsSignature(t *testing.T) {
	data := xlstest.CompoundFile(xlstest.Options{}, xlstest.Stream{Name: "Workbook", Data: []byte("x")})
	data[0] = 'P'

	_, err := ParseHeader(bytes.NewReader(data))
	require.Error(t, err)
	assert.True(t, errors.Is(err, xlerr.ErrFormat))
	assert.Equal(t, "Wrong file identifier. It isn't a compound file.", err.Error())

	_, err = Open(bytes.NewReader([]byte("PK\x03\x04")))
	assert.True(t, errors.Is(err, xlerr.ErrFormat))
}

func TestParseHeaderTruncated(t *testing.T) {
	_, err := ParseHeader(bytes.NewReader(Signature))
	require.Error(t, err)
	assert.True(t, errors.Is(err, xlerr.ErrFormat))
	assert.Equal(t, "Unexpected end of file.", err.Error())
}

func TestParseHeaderBadSectorPower(t *testing.T) {
	data := xlstest.CompoundFile(xlstest.Options{}, xlstest.Stream{Name: "Workbook", Data: []byte("x")})
	binary.LittleEndian.PutUint16(data[sectorPowerOffset:], 40)

	_, err := ParseHeader(bytes.NewReader(data))
	assert.True(t, errors.Is(err, xlerr.ErrFormat))
}

func TestSATSectors(t *testing.T) {
	sat := NewSAT([]SecID{1, 2, EndOfChain, 4, EndOfChain, Free})

	chain, err := sat.Sectors(0)
	require.NoError(t, err)
	assert.Equal(t, []SecID{0, 1, 2}, chain)

	again, err := sat.Sectors(0)
	require.NoError(t, err)
	assert.Equal(t, chain, again)

	chain, err = sat.Sectors(3)
	require.NoError(t, err)
	assert.Equal(t, []SecID{3, 4}, chain)

	chain, err = sat.Sectors(5)
	require.NoError(t, err)
	assert.Equal(t, []SecID{5}, chain)
}

func TestSATSectorsOutOfRange(t *testing.T) {
	sat := NewSAT([]SecID{1, 7, EndOfChain})

	_, err := sat.Sectors(3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, xlerr.ErrOutOfRange))
	assert.Equal(t, "There is no such sector with id: 3", err.Error())

	_, err = sat.Sectors(EndOfChain)
	assert.True(t, errors.Is(err, xlerr.ErrOutOfRange))

	// A link pointing outside the table.
	_, err = sat.Sectors(0)
	assert.True(t, errors.Is(err, xlerr.ErrOutOfRange))
	assert.Equal(t, "There is no such sector with id: 7", err.Error())
}

func TestSATSectorsCycle(t *testing.T) {
	sat := NewSAT([]SecID{1, 2, 0})
	_, err := sat.Sectors(0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, xlerr.ErrFormat))
}

func TestOpenDirectories(t *testing.T) {
	f := openStreams(t, xlstest.Options{},
		xlstest.Stream{Name: "A", Data: []byte("a")},
		xlstest.Stream{Name: "B", Data: []byte("bb")},
		xlstest.Stream{Name: "C", Data: []byte("ccc")},
		xlstest.Stream{Name: "D", Data: []byte("dddd")},
		xlstest.Stream{Name: "E", Data: []byte("eeeee")},
	)

	// The generated tree is balanced on C; pre-order visits the left
	// subtree (A, B) before the right one (D, E).
	var names []string
	for _, d := range f.Directories() {
		names = append(names, d.Name)
		assert.Equal(t, UserStream, d.Type)
	}
	assert.Equal(t, []string{"C", "A", "B", "D", "E"}, names)

	d, err := f.Directory("D")
	require.NoError(t, err)
	assert.Equal(t, int32(4), d.StreamSize)
	assert.True(t, f.HasDirectory("E"))
	assert.False(t, f.HasDirectory("Workbook"))

	_, err = f.Directory("Workbook")
	require.Error(t, err)
	assert.True(t, errors.Is(err, xlerr.ErrNotFound))
	assert.Equal(t, "There is no such directory : Workbook", err.Error())
}

func TestLoadDirectoriesCycle(t *testing.T) {
	entry := func(name string, left, right int32) []byte {
		b := make([]byte, DirEntrySize)
		for i, r := range name {
			binary.LittleEndian.PutUint16(b[i*2:], uint16(r))
		}
		b[66] = byte(UserStream)
		binary.LittleEndian.PutUint32(b[68:], uint32(left))
		binary.LittleEndian.PutUint32(b[72:], uint32(right))
		binary.LittleEndian.PutUint32(b[76:], 0xFFFFFFFF)
		return b
	}
	var data []byte
	data = append(data, entry("Root", NoEntry, NoEntry)...)
	data = append(data, entry("X", 2, NoEntry)...)
	data = append(data, entry("Y", 1, 1)...)

	dirs, err := loadDirectories(stream.NewMemory(data, nil), Directory{RootNode: 1})
	require.NoError(t, err)
	require.Len(t, dirs, 2)
	assert.Equal(t, "X", dirs[0].Name)
	assert.Equal(t, "Y", dirs[1].Name)

	dirs, err = loadDirectories(stream.NewMemory(data, nil), Directory{RootNode: NoEntry})
	require.NoError(t, err)
	assert.Empty(t, dirs)
}

func TestStreamLargeAndShort(t *testing.T) {
	large := pattern(5000, 3)
	short := pattern(700, 11)
	f := openStreams(t, xlstest.Options{},
		xlstest.Stream{Name: "Workbook", Data: large},
		xlstest.Stream{Name: "Small", Data: short},
		xlstest.Stream{Name: "Empty"},
	)

	d, err := f.Directory("Workbook")
	require.NoError(t, err)
	s, err := f.Stream(d)
	require.NoError(t, err)
	assert.False(t, s.Short())
	assert.Equal(t, int64(5000), s.Size())
	assert.Equal(t, large, readStream(t, s))

	d, err = f.Directory("Small")
	require.NoError(t, err)
	s, err = f.Stream(d)
	require.NoError(t, err)
	assert.True(t, s.Short())
	assert.Equal(t, short, readStream(t, s))

	d, err = f.Directory("Empty")
	require.NoError(t, err)
	s, err = f.Stream(d)
	require.NoError(t, err)
	assert.True(t, s.EOF())
	assert.Equal(t, int64(-1), s.Pos())
}

func TestStreamEOF(t *testing.T) {
	f := openStreams(t, xlstest.Options{}, xlstest.Stream{Name: "S", Data: []byte{1, 2}})
	d, err := f.Directory("S")
	require.NoError(t, err)
	s, err := f.Stream(d)
	require.NoError(t, err)

	v, err := stream.Uint16(s)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v)
	assert.True(t, s.EOF())

	b, err := s.GetByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), b)

	_, err = stream.Uint8(s)
	require.Error(t, err)
	assert.Equal(t, "Unexpected end of file.", err.Error())
}

func TestStreamSeek(t *testing.T) {
	for _, tc := range []struct {
		name string
		size int
	}{
		{"large", 5000},
		{"short", 1000},
	} {
		t.Run(tc.name, func(t *testing.T) {
			data := pattern(tc.size, 5)
			f := openStreams(t, xlstest.Options{}, xlstest.Stream{Name: "S", Data: data})
			d, err := f.Directory("S")
			require.NoError(t, err)
			s, err := f.Stream(d)
			require.NoError(t, err)
			size := int64(tc.size)

			at := func(want int64) {
				t.Helper()
				require.Equal(t, want, s.Pos())
				b, err := s.GetByte()
				require.NoError(t, err)
				require.Equal(t, data[want], b)
			}

			require.NoError(t, s.Seek(700, stream.FromBeginning))
			at(700)
			require.NoError(t, s.Seek(99, stream.FromCurrent))
			at(800)
			require.NoError(t, s.Seek(-801, stream.FromCurrent))
			at(0)
			require.NoError(t, s.Seek(-2, stream.FromCurrent))
			at(size - 1)

			require.NoError(t, s.Seek(10, stream.FromEnd))
			at(size - 10)
			require.NoError(t, s.Seek(-10, stream.FromEnd))
			at(10)

			require.NoError(t, s.Seek(size+5, stream.FromBeginning))
			assert.True(t, s.EOF())
			require.NoError(t, s.Seek(-1, stream.FromBeginning))
			assert.True(t, s.EOF())

			require.NoError(t, s.Seek(0, stream.FromBeginning))
			assert.Equal(t, data, readStream(t, s))
		})
	}
}

func TestStreamsInterleaved(t *testing.T) {
	a := pattern(2000, 1)
	b := pattern(600, 2)
	f := openStreams(t, xlstest.Options{},
		xlstest.Stream{Name: "A", Data: a},
		xlstest.Stream{Name: "B", Data: b},
	)
	da, err := f.Directory("A")
	require.NoError(t, err)
	db, err := f.Directory("B")
	require.NoError(t, err)
	sa, err := f.Stream(da)
	require.NoError(t, err)
	sb, err := f.Stream(db)
	require.NoError(t, err)

	var gotA, gotB []byte
	for !sa.EOF() || !sb.EOF() {
		if !sa.EOF() {
			v, err := sa.GetByte()
			require.NoError(t, err)
			gotA = append(gotA, v)
		}
		if !sb.EOF() {
			v, err := sb.GetByte()
			require.NoError(t, err)
			gotB = append(gotB, v)
		}
	}
	assert.Equal(t, a, gotA)
	assert.Equal(t, b, gotB)
}

func TestMSATSectors(t *testing.T) {
	// 128-byte sectors hold 32 ids, so this stream needs more SAT sectors
	// than the 109 header slots can list.
	data := pattern(500*1024, 9)
	f := openStreams(t, xlstest.Options{SectorShift: 7, ShortSectorShift: 6, MiniStreamCutoff: -1},
		xlstest.Stream{Name: "Workbook", Data: data})

	assert.Greater(t, f.Header().SectorsInMSAT, int32(0))
	assert.Greater(t, len(f.MSAT().SecIDs()), 109)

	d, err := f.Directory("Workbook")
	require.NoError(t, err)
	s, err := f.Stream(d)
	require.NoError(t, err)
	assert.False(t, s.Short())
	require.NoError(t, s.Seek(int64(len(data)-3), stream.FromBeginning))
	assert.Equal(t, data[len(data)-3:], readStream(t, s))
	require.NoError(t, s.Seek(0, stream.FromBeginning))
	assert.Equal(t, data, readStream(t, s))
}

func TestBigEndian(t *testing.T) {
	data := pattern(900, 4)
	f := openStreams(t, xlstest.Options{ByteOrder: binary.BigEndian},
		xlstest.Stream{Name: "Workbook", Data: data},
		xlstest.Stream{Name: "Large", Data: pattern(5000, 1)},
	)
	assert.Equal(t, binary.BigEndian, f.Header().ByteOrder)

	d, err := f.Directory("Workbook")
	require.NoError(t, err)
	s, err := f.Stream(d)
	require.NoError(t, err)
	assert.Equal(t, binary.BigEndian, s.ByteOrder())

	v, err := stream.Uint16(s)
	require.NoError(t, err)
	assert.Equal(t, uint16(data[0])<<8|uint16(data[1]), v)

	d, err = f.Directory("Large")
	require.NoError(t, err)
	s, err = f.Stream(d)
	require.NoError(t, err)
	assert.Equal(t, pattern(5000, 1), readStream(t, s))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xls")
	data := pattern(5000, 6)
	require.NoError(t, os.WriteFile(path, xlstest.WorkbookFile("Workbook", data), 0o644))

	f, err := OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	d, err := f.Directory("Workbook")
	require.NoError(t, err)
	s, err := f.Stream(d)
	require.NoError(t, err)
	assert.Equal(t, data, readStream(t, s))

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing.xls"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, xlerr.ErrIO))
}
