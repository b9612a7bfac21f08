// Package xlstest builds compound files and BIFF8 workbooks in memory for tests.
package xlstest

import (
	"encoding/binary"
	"unicode/utf16"
)

// Sector markers as written to the allocation tables.
const (
	freeSecID  int32 = -1
	endOfChain int32 = -2
	satSecID   int32 = -3
	msatSecID  int32 = -4
	noEntry    int32 = -1
)

const (
	headerSize   = 512
	dirEntrySize = 128
)

var signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Stream is a named stream stored in the root storage.
type Stream struct {
	Name string
	Data []byte
}

// Options controls the geometry of a generated compound file. The zero value
// gives the usual 512-byte sectors, 64-byte short sectors, a 4096-byte short
// stream cutoff and little-endian fields.
type Options struct {
	SectorShift      uint16
	ShortSectorShift uint16
	// MiniStreamCutoff is the stream min size written to the header. Negative
	// means zero, so that every stream goes to large sectors.
	MiniStreamCutoff int32
	ByteOrder        binary.ByteOrder
}

func (o Options) withDefaults() Options {
	if o.SectorShift == 0 {
		o.SectorShift = 9
	}
	if o.ShortSectorShift == 0 {
		o.ShortSectorShift = 6
	}
	switch {
	case o.MiniStreamCutoff == 0:
		o.MiniStreamCutoff = 4096
	case o.MiniStreamCutoff < 0:
		o.MiniStreamCutoff = 0
	}
	if o.ByteOrder == nil {
		o.ByteOrder = binary.LittleEndian
	}
	return o
}

// CompoundFile lays out the given streams in a compound file and returns its bytes.
func CompoundFile(opts Options, streams ...Stream) []byte {
	b := newBuilder(opts.withDefaults())
	return b.build(streams)
}

type builder struct {
	opts      Options
	order     binary.ByteOrder
	ss        int
	shortSize int
}

func newBuilder(opts Options) *builder {
	return &builder{
		opts:      opts,
		order:     opts.ByteOrder,
		ss:        1 << opts.SectorShift,
		shortSize: 1 << opts.ShortSectorShift,
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

type placement struct {
	short bool
	start int32
	size  int
}

func (b *builder) build(streams []Stream) []byte {
	idsPerSector := b.ss / 4

	// Short streams are packed into the mini stream, one short sector chain each.
	var mini []byte
	var ssat []int32
	places := make([]placement, len(streams))
	var largeStreams []int
	for i, st := range streams {
		places[i].size = len(st.Data)
		switch {
		case len(st.Data) == 0:
			places[i].start = endOfChain
		case int32(len(st.Data)) < b.opts.MiniStreamCutoff:
			n := ceilDiv(len(st.Data), b.shortSize)
			first := len(ssat)
			for k := 0; k < n; k++ {
				if k == n-1 {
					ssat = append(ssat, endOfChain)
				} else {
					ssat = append(ssat, int32(first+k+1))
				}
			}
			padded := make([]byte, n*b.shortSize)
			copy(padded, st.Data)
			mini = append(mini, padded...)
			places[i] = placement{short: true, start: int32(first), size: len(st.Data)}
		default:
			largeStreams = append(largeStreams, i)
		}
	}

	entries := len(streams) + 1
	nDir := ceilDiv(entries*dirEntrySize, b.ss)
	nSSAT := ceilDiv(len(ssat), idsPerSector)
	nMini := ceilDiv(len(mini), b.ss)
	data := nDir + nSSAT + nMini
	for _, i := range largeStreams {
		data += ceilDiv(len(streams[i].Data), b.ss)
	}

	nSAT, nMSAT := 0, 0
	for {
		total := data + nSAT + nMSAT
		satNeeded := ceilDiv(total, idsPerSector)
		msatNeeded := 0
		if satNeeded > 109 {
			msatNeeded = ceilDiv(satNeeded-109, idsPerSector-1)
		}
		if satNeeded == nSAT && msatNeeded == nMSAT {
			break
		}
		nSAT, nMSAT = satNeeded, msatNeeded
	}

	total := nSAT + nMSAT + data
	sat := make([]int32, nSAT*idsPerSector)
	for i := range sat {
		sat[i] = freeSecID
	}
	next := 0
	alloc := func(n int, marker int32) int32 {
		if n == 0 {
			return endOfChain
		}
		first := next
		for k := 0; k < n; k++ {
			switch {
			case marker != 0:
				sat[next] = marker
			case k == n-1:
				sat[next] = endOfChain
			default:
				sat[next] = int32(next + 1)
			}
			next++
		}
		return int32(first)
	}
	satStart := alloc(nSAT, satSecID)
	msatStart := alloc(nMSAT, msatSecID)
	dirStart := alloc(nDir, 0)
	ssatStart := alloc(nSSAT, 0)
	miniStart := alloc(nMini, 0)
	for _, i := range largeStreams {
		places[i].start = alloc(ceilDiv(len(streams[i].Data), b.ss), 0)
	}

	out := make([]byte, headerSize+total*b.ss)
	sector := func(id int32) []byte {
		off := headerSize + int(id)*b.ss
		return out[off : off+b.ss]
	}
	writeChain := func(first int32, payload []byte) {
		for k := 0; k*b.ss < len(payload); k++ {
			end := (k + 1) * b.ss
			if end > len(payload) {
				end = len(payload)
			}
			copy(sector(first+int32(k)), payload[k*b.ss:end])
		}
	}

	// Header.
	h := out[:headerSize]
	copy(h, signature)
	b.order.PutUint16(h[24:], 0x003E)
	b.order.PutUint16(h[26:], 0x0003)
	if b.order == binary.LittleEndian {
		h[28], h[29] = 0xFE, 0xFF
	} else {
		h[28], h[29] = 0xFF, 0xFE
	}
	b.order.PutUint16(h[30:], b.opts.SectorShift)
	b.order.PutUint16(h[32:], b.opts.ShortSectorShift)
	b.put32(h[44:], int32(nSAT))
	b.put32(h[48:], dirStart)
	b.put32(h[56:], b.opts.MiniStreamCutoff)
	if nSSAT == 0 {
		b.put32(h[60:], endOfChain)
	} else {
		b.put32(h[60:], ssatStart)
	}
	b.put32(h[64:], int32(nSSAT))
	if nMSAT == 0 {
		b.put32(h[68:], endOfChain)
	} else {
		b.put32(h[68:], msatStart)
	}
	b.put32(h[72:], int32(nMSAT))
	for i := 0; i < 109; i++ {
		v := freeSecID
		if i < nSAT {
			v = satStart + int32(i)
		}
		b.put32(h[76+i*4:], v)
	}

	// MSAT sectors list the SAT sectors beyond the first 109.
	rest := nSAT - 109
	for m := 0; m < nMSAT; m++ {
		sec := sector(msatStart + int32(m))
		for k := 0; k < idsPerSector-1; k++ {
			v := freeSecID
			idx := 109 + m*(idsPerSector-1) + k
			if idx-109 < rest {
				v = satStart + int32(idx)
			}
			b.put32(sec[k*4:], v)
		}
		nextMSAT := endOfChain
		if m < nMSAT-1 {
			nextMSAT = msatStart + int32(m+1)
		}
		b.put32(sec[(idsPerSector-1)*4:], nextMSAT)
	}

	// SAT.
	satBytes := make([]byte, len(sat)*4)
	for i, v := range sat {
		b.put32(satBytes[i*4:], v)
	}
	writeChain(satStart, satBytes)

	// SSAT.
	if nSSAT > 0 {
		ssatBytes := make([]byte, nSSAT*b.ss)
		for i := range ssatBytes {
			ssatBytes[i] = 0xFF
		}
		for i, v := range ssat {
			b.put32(ssatBytes[i*4:], v)
		}
		writeChain(ssatStart, ssatBytes)
	}

	// Mini stream and large streams.
	writeChain(miniStart, mini)
	for _, i := range largeStreams {
		writeChain(places[i].start, streams[i].Data)
	}

	// Directory: root entry followed by the streams as a balanced tree.
	dir := make([]byte, nDir*b.ss)
	for slot := 0; slot < nDir*b.ss/dirEntrySize; slot++ {
		b.writeEntry(dir[slot*dirEntrySize:], dirEntry{left: noEntry, right: noEntry, child: noEntry, start: endOfChain})
	}
	rootStart := endOfChain
	if len(mini) > 0 {
		rootStart = miniStart
	}
	children := make([]dirEntry, len(streams))
	for i, st := range streams {
		children[i] = dirEntry{
			name:  st.Name,
			typ:   2,
			left:  noEntry,
			right: noEntry,
			child: noEntry,
			start: places[i].start,
			size:  uint32(places[i].size),
		}
	}
	top := linkTree(children, 0, len(children)-1)
	b.writeEntry(dir, dirEntry{
		name:  "Root Entry",
		typ:   5,
		left:  noEntry,
		right: noEntry,
		child: top,
		start: rootStart,
		size:  uint32(len(mini)),
	})
	for i, e := range children {
		b.writeEntry(dir[(i+1)*dirEntrySize:], e)
	}
	writeChain(dirStart, dir)

	return out
}

// linkTree links entries lo..hi into a balanced binary tree and returns the
// directory slot of its root. Slot numbers are the entry index plus one.
func linkTree(entries []dirEntry, lo, hi int) int32 {
	if lo > hi {
		return noEntry
	}
	mid := (lo + hi) / 2
	entries[mid].left = linkTree(entries, lo, mid-1)
	entries[mid].right = linkTree(entries, mid+1, hi)
	return int32(mid + 1)
}

type dirEntry struct {
	name               string
	typ                byte
	left, right, child int32
	start              int32
	size               uint32
}

func (b *builder) writeEntry(dst []byte, e dirEntry) {
	units := utf16.Encode([]rune(e.name))
	if len(units) > 31 {
		units = units[:31]
	}
	for i, u := range units {
		b.order.PutUint16(dst[i*2:], u)
	}
	nameLen := 0
	if e.name != "" {
		nameLen = (len(units) + 1) * 2
	}
	b.order.PutUint16(dst[64:], uint16(nameLen))
	dst[66] = e.typ
	dst[67] = 1 // black
	b.put32(dst[68:], e.left)
	b.put32(dst[72:], e.right)
	b.put32(dst[76:], e.child)
	b.put32(dst[116:], e.start)
	b.order.PutUint32(dst[120:], e.size)
}

func (b *builder) put32(dst []byte, v int32) {
	b.order.PutUint32(dst, uint32(v))
}
