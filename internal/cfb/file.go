package cfb

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/yamitzky/xlsreader/internal/mmfile"
	"github.com/yamitzky/xlsreader/internal/xlerr"
)

// File is an opened compound file.
type File struct {
	r      io.ReaderAt
	header *Header
	msat   *MSAT
	sat    *SAT
	ssat   *SAT
	dirs   []Directory

	shortStreamFirstSector SecID

	logger *slog.Logger
	closer func() error
}

// Option configures Open.
type Option func(*File)

// WithLogger sets the logger that receives loading diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *File) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Open loads the header, the allocation tables and the directory tree of the
// compound file in r.
func Open(r io.ReaderAt, opts ...Option) (*File, error) {
	f := &File{
		r:      r,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

// OpenFile memory maps the file at path and opens it. Close releases the mapping.
func OpenFile(path string, opts ...Option) (*File, error) {
	data, release, err := mmfile.Map(path)
	if err != nil {
		return nil, xlerr.IO("Unable to open file : %s", path)
	}
	f, err := Open(bytes.NewReader(data), opts...)
	if err != nil {
		_ = release()
		return nil, err
	}
	f.closer = release
	return f, nil
}

// Close releases resources held by a file opened with OpenFile.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	closer := f.closer
	f.closer = nil
	return closer()
}

func (f *File) load() error {
	var err error
	if f.header, err = ParseHeader(f.r); err != nil {
		return err
	}
	f.logger.Debug("compound file header",
		"sectorSize", f.header.SectorSize,
		"shortSectorSize", f.header.ShortSectorSize,
		"streamMinSize", f.header.StreamMinSize,
		"sectorsInMSAT", f.header.SectorsInMSAT)

	if f.msat, err = LoadMSAT(f.r, f.header); err != nil {
		return err
	}
	if f.sat, err = f.msat.BuildSAT(f.r); err != nil {
		return err
	}
	if f.ssat, err = LoadSSAT(f.r, f.header, f.sat); err != nil {
		return err
	}
	f.logger.Debug("allocation tables loaded", "sat", f.sat.Len(), "ssat", f.ssat.Len())

	s, err := newChainStream(f.r, f.header, f.sat, f.header.DirStreamSecID)
	if err != nil {
		return err
	}
	root, err := LoadDirectory(s)
	if err != nil {
		return err
	}
	f.shortStreamFirstSector = root.StreamSecID
	if f.dirs, err = loadDirectories(s, root); err != nil {
		return err
	}
	f.logger.Debug("directory loaded", "entries", len(f.dirs))
	return nil
}

// Header returns the parsed header.
func (f *File) Header() *Header {
	return f.header
}

// MSAT returns the master sector allocation table.
func (f *File) MSAT() *MSAT {
	return f.msat
}

// SAT returns the sector allocation table.
func (f *File) SAT() *SAT {
	return f.sat
}

// SSAT returns the short sector allocation table.
func (f *File) SSAT() *SAT {
	return f.ssat
}

// Directories returns the flattened directory entries.
func (f *File) Directories() []Directory {
	return f.dirs
}

// Directory returns the entry with the given name.
func (f *File) Directory(name string) (Directory, error) {
	for _, d := range f.dirs {
		if d.Name == name {
			return d, nil
		}
	}
	return Directory{}, xlerr.NotFound("There is no such directory : %s", name)
}

// HasDirectory reports whether an entry with the given name exists.
func (f *File) HasDirectory(name string) bool {
	for _, d := range f.dirs {
		if d.Name == name {
			return true
		}
	}
	return false
}

// Stream opens the contents of dir. Streams keep their own cursor and buffer,
// so several of them may be read interleaved.
func (f *File) Stream(dir Directory) (*Stream, error) {
	return newEntryStream(f.r, f.header, f.sat, f.ssat, dir, f.shortStreamFirstSector)
}
