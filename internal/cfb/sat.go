package cfb

import (
	"io"

	"github.com/yamitzky/xlsreader/internal/xlerr"
)

// SAT maps each sector to the next sector of its chain. The short sector
// table (SSAT) has the same shape and is represented by the same type.
type SAT struct {
	ids []SecID
}

// NewSAT wraps an already decoded table.
func NewSAT(ids []SecID) *SAT {
	return &SAT{ids: ids}
}

// Len returns the number of entries.
func (t *SAT) Len() int {
	return len(t.ids)
}

// IDs returns the raw table.
func (t *SAT) IDs() []SecID {
	return t.ids
}

// Sectors returns the chain that starts at first. The chain ends at the first
// entry that is not a sector index. A chain that revisits more sectors than the
// table holds is reported as a format error instead of looping forever.
func (t *SAT) Sectors(first SecID) ([]SecID, error) {
	if !t.valid(first) {
		return nil, xlerr.OutOfRange("There is no such sector with id: %d", int32(first))
	}
	chain := []SecID{first}
	id := t.ids[first]
	for id.IsSector() {
		if !t.valid(id) {
			return nil, xlerr.OutOfRange("There is no such sector with id: %d", int32(id))
		}
		if len(chain) >= len(t.ids) {
			return nil, xlerr.Format("Sector chain starting at %d is cyclic.", int32(first))
		}
		chain = append(chain, id)
		id = t.ids[id]
	}
	return chain, nil
}

func (t *SAT) valid(id SecID) bool {
	return id >= 0 && int(id) < len(t.ids)
}

// LoadSSAT reads the short sector allocation table. Its sectors are chained
// through the SAT and always have the large sector size.
func LoadSSAT(r io.ReaderAt, h *Header, sat *SAT) (*SAT, error) {
	var ids []SecID
	if h.SSATFirstSecID == EndOfChain {
		return NewSAT(ids), nil
	}
	chain, err := sat.Sectors(h.SSATFirstSecID)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, h.SectorSize)
	for _, id := range chain {
		if err := readSector(r, id, buf); err != nil {
			return nil, err
		}
		ids = decodeSecIDs(ids, buf, h.ByteOrder)
	}
	return NewSAT(ids), nil
}
