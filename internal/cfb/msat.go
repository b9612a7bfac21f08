package cfb

import (
	"io"
)

// MSAT lists the sectors that hold the SAT.
type MSAT struct {
	header *Header
	ids    []SecID
}

// LoadMSAT collects the SAT sector ids: the header slots first, with Free
// slots dropped, then the ids of every MSAT sector, kept verbatim.
func LoadMSAT(r io.ReaderAt, h *Header) (*MSAT, error) {
	m := &MSAT{header: h}
	for _, id := range h.msatHead {
		if id != Free {
			m.ids = append(m.ids, id)
		}
	}

	buf := make([]byte, h.SectorSize)
	perSector := (h.SectorSize - 4) / 4
	id := h.MSATFirstSecID
	for i := int32(0); i < h.SectorsInMSAT; i++ {
		if err := readSector(r, id, buf); err != nil {
			return nil, err
		}
		m.ids = decodeSecIDs(m.ids, buf[:perSector*4], h.ByteOrder)
		id = SecID(int32(h.ByteOrder.Uint32(buf[perSector*4:])))
	}
	return m, nil
}

// SecIDs returns the collected SAT sector ids.
func (m *MSAT) SecIDs() []SecID {
	return m.ids
}

// BuildSAT reads every SAT sector named by the MSAT. Unused MSAT slots hold
// markers instead of sector ids and are passed over.
func (m *MSAT) BuildSAT(r io.ReaderAt) (*SAT, error) {
	buf := make([]byte, m.header.SectorSize)
	ids := make([]SecID, 0, len(m.ids)*m.header.SectorSize/4)
	for _, id := range m.ids {
		if !id.IsSector() {
			continue
		}
		if err := readSector(r, id, buf); err != nil {
			return nil, err
		}
		ids = decodeSecIDs(ids, buf, m.header.ByteOrder)
	}
	return NewSAT(ids), nil
}
