// Package arc reads ARC archives: a 32-byte header pointing at a table of 32-byte records,
// each naming a slice of the archive stored verbatim.
package arc

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cybroslabs/libalz-go/base"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

const (
	HeaderSize = 32
	EntrySize  = 32

	offCount    = 0x04
	offTable    = 0x08
	offEntryPos = 0x00
	offEntryLen = 0x04
	offEntryNam = 0x08

	nameBase = 8  // bytes before the implied dot
	nameSize = 24 // base and extension together
)

type Entry struct {
	Offset uint32
	Size   uint32
	Name   string
}

type Archive struct {
	Entries []Entry

	r      io.ReaderAt
	size   int64
	table  int64
	logger *zap.SugaredLogger
}

// Open reads the header and the entry table of an archive of the given size.
func Open(r io.ReaderAt, size int64) (*Archive, error) {
	var header [HeaderSize]byte
	if size < HeaderSize {
		return nil, base.NewError(base.ErrTruncatedInput, int(size), 0, "archive is %d bytes, header needs %d", size, HeaderSize)
	}
	if err := readfull(r, header[:], 0); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	count := int64(binary.BigEndian.Uint32(header[offCount:]))
	table := int64(binary.BigEndian.Uint32(header[offTable:]))
	if end := table + count*EntrySize; end > size {
		return nil, base.NewError(base.ErrTruncatedInput, int(table), 0, "table of %d entries ends at %d, archive is %d bytes", count, end, size)
	}

	raw := make([]byte, count*EntrySize)
	if err := readfull(r, raw, table); err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}

	a := &Archive{
		Entries: make([]Entry, count),
		r:       r,
		size:    size,
		table:   table,
		logger:  nil,
	}
	for i := range a.Entries {
		rec := raw[i*EntrySize : (i+1)*EntrySize]
		a.Entries[i] = Entry{
			Offset: binary.BigEndian.Uint32(rec[offEntryPos:]),
			Size:   binary.BigEndian.Uint32(rec[offEntryLen:]),
			Name:   parsename(rec[offEntryNam : offEntryNam+nameSize]),
		}
	}
	return a, nil
}

func readfull(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil // io.ReaderAt may report io.EOF along with a full read
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// parsename joins the 8-byte base and the 16-byte extension with a dot, each stops at NUL
func parsename(b []byte) string {
	var sb strings.Builder
	for i := 0; i < nameBase && b[i] != 0; i++ {
		sb.WriteByte(b[i])
	}
	if b[nameBase] != 0 {
		sb.WriteByte('.')
		for i := nameBase; i < nameSize && b[i] != 0; i++ {
			sb.WriteByte(b[i])
		}
	}
	return sb.String()
}

func (a *Archive) SetLogger(logger *zap.SugaredLogger) {
	a.logger = logger
}

func (a *Archive) logf(format string, v ...any) {
	if a.logger != nil {
		a.logger.Infof(format, v...)
	}
}

// Validate reports every entry whose data lies outside the archive or whose name is not a plain file name.
func (a *Archive) Validate() error {
	var result *multierror.Error
	for i, e := range a.Entries {
		pos := int(a.table) + i*EntrySize
		if end := int64(e.Offset) + int64(e.Size); end > a.size {
			result = multierror.Append(result, base.NewError(base.ErrSizeTooLarge, pos+offEntryLen, 0, "entry %d (%q) ends at %d, archive is %d bytes", i, e.Name, end, a.size))
		}
		if reason := checkname(e.Name); reason != "" {
			result = multierror.Append(result, base.NewError(base.ErrInvalidName, pos+offEntryNam, 0, "entry %d (%q) %s", i, e.Name, reason))
		}
	}
	return result.ErrorOrNil()
}

func checkname(name string) string {
	switch {
	case name == "":
		return "is empty"
	case name == "." || name == "..":
		return "is a directory reference"
	case strings.ContainsAny(name, `/\`):
		return "contains a path separator"
	}
	return ""
}

// Reader returns the data of e.
func (a *Archive) Reader(e Entry) io.Reader {
	return io.NewSectionReader(a.r, int64(e.Offset), int64(e.Size))
}

// Extract validates the archive and copies every entry to its own file in dir.
func (a *Archive) Extract(dir string) error {
	if err := a.Validate(); err != nil {
		return err
	}
	for _, e := range a.Entries {
		if err := a.extract(dir, e); err != nil {
			return err
		}
	}
	return nil
}

func (a *Archive) extract(dir string, e Entry) error {
	path := filepath.Join(dir, e.Name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	n, err := io.Copy(f, a.Reader(e))
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("extract %s: %w", e.Name, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	a.logf("Extracted %s: %d bytes from 0x%08X", e.Name, n, e.Offset)
	return nil
}
