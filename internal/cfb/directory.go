package cfb

import (
	"fmt"
	"unicode/utf16"

	"github.com/yamitzky/xlsreader/internal/stream"
	"github.com/yamitzky/xlsreader/internal/xlerr"
)

// DirectoryType is the kind of a directory entry.
type DirectoryType uint8

const (
	Empty       DirectoryType = 0x00
	UserStorage DirectoryType = 0x01
	UserStream  DirectoryType = 0x02
	LockBytes   DirectoryType = 0x03
	Property    DirectoryType = 0x04
	RootStorage DirectoryType = 0x05
)

func (t DirectoryType) String() string {
	switch t {
	case Empty:
		return "Empty"
	case UserStorage:
		return "UserStorage"
	case UserStream:
		return "UserStream"
	case LockBytes:
		return "LockBytes"
	case Property:
		return "Property"
	case RootStorage:
		return "RootStorage"
	default:
		return fmt.Sprintf("DirectoryType(%d)", uint8(t))
	}
}

const (
	// DirEntrySize is the size of one directory entry.
	DirEntrySize = 128
	// NoEntry marks an absent child slot.
	NoEntry int32 = -1

	maxNameUnits = 32
)

// Directory is one entry of the directory stream.
type Directory struct {
	Name        string
	Type        DirectoryType
	LeftChild   int32
	RightChild  int32
	RootNode    int32
	StreamSecID SecID
	StreamSize  int32
}

// LoadDirectory parses one 128-byte entry at the cursor of s.
func LoadDirectory(s stream.ByteStream) (Directory, error) {
	var d Directory

	units := make([]uint16, 0, maxNameUnits-1)
	i := 1
	for ; i <= maxNameUnits; i++ {
		u, err := stream.Uint16(s)
		if err != nil {
			return d, err
		}
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	d.Name = string(utf16.Decode(units))
	if i < maxNameUnits {
		if err := stream.Skip(s, int64(maxNameUnits-i)*2); err != nil {
			return d, err
		}
	}

	// Name length.
	if err := stream.Skip(s, 2); err != nil {
		return d, err
	}
	t, err := s.GetByte()
	if err != nil {
		return d, err
	}
	if s.EOF() {
		return d, xlerr.UnexpectedEOF()
	}
	d.Type = DirectoryType(t)
	// Node colour.
	if err := stream.Skip(s, 1); err != nil {
		return d, err
	}

	if d.LeftChild, err = stream.Int32(s); err != nil {
		return d, err
	}
	if d.RightChild, err = stream.Int32(s); err != nil {
		return d, err
	}
	if d.RootNode, err = stream.Int32(s); err != nil {
		return d, err
	}
	// CLSID, state bits and timestamps.
	if err := stream.Skip(s, 36); err != nil {
		return d, err
	}
	sec, err := stream.Int32(s)
	if err != nil {
		return d, err
	}
	d.StreamSecID = SecID(sec)
	if d.StreamSize, err = stream.Int32(s); err != nil {
		return d, err
	}
	return d, stream.Skip(s, 4)
}

// loadDirectories flattens the sibling tree hanging off the root entry. The
// walk is pre-order: each entry is followed by its whole left subtree and then
// by its right subtree. Slots already visited are not entered again.
func loadDirectories(s stream.ByteStream, root Directory) ([]Directory, error) {
	if root.RootNode == NoEntry {
		return nil, nil
	}

	var dirs []Directory
	visited := make(map[int32]bool)
	stack := []int32{root.RootNode}
	for len(stack) > 0 {
		slot := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[slot] {
			continue
		}
		visited[slot] = true

		if err := s.Seek(int64(slot)*DirEntrySize, stream.FromBeginning); err != nil {
			return nil, err
		}
		d, err := LoadDirectory(s)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, d)

		if d.RightChild != NoEntry {
			stack = append(stack, d.RightChild)
		}
		if d.LeftChild != NoEntry {
			stack = append(stack, d.LeftChild)
		}
	}
	return dirs, nil
}
