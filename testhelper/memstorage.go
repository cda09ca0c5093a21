// Package testhelper provides stub backend.Storage implementations for
// engine tests, so tests need no backing image file on the host.
package testhelper

import (
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/go-zosfs/zosfs/backend"
)

// MemStorage is an in-memory backend.Storage backed by a growable byte
// slice, standing in for a real backing image file in tests.
type MemStorage struct {
	data   []byte
	pos    int64
	closed bool
}

// NewMemStorage returns a zeroed in-memory store of the given size.
func NewMemStorage(size int64) *MemStorage {
	return &MemStorage{data: make([]byte, size)}
}

var _ backend.Storage = (*MemStorage)(nil)

func (m *MemStorage) Stat() (fs.FileInfo, error) {
	return memFileInfo{size: int64(len(m.data))}, nil
}

func (m *MemStorage) Read(b []byte) (int, error) {
	n, err := m.ReadAt(b, m.pos)
	m.pos += int64(n)
	return n, err
}

func (m *MemStorage) ReadAt(b []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(m.data)) {
		if len(b) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(b, m.data[off:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MemStorage) WriteAt(b []byte, off int64) (int, error) {
	need := off + int64(len(b))
	if need > int64(len(m.data)) {
		grown := make([]byte, need)
		copy(grown, m.data)
		m.data = grown
	}
	copy(m.data[off:], b)
	return len(b), nil
}

func (m *MemStorage) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.data)) + offset
	}
	return m.pos, nil
}

func (m *MemStorage) Close() error {
	m.closed = true
	return nil
}

func (m *MemStorage) Sys() (*os.File, error) {
	return nil, backend.ErrNotSuitable
}

func (m *MemStorage) Writable() (backend.WritableFile, error) {
	return m, nil
}

func (m *MemStorage) Sync() error {
	return nil
}

// Truncate resizes the store, used by tests that exercise Format directly
// against a MemStorage rather than through the CLI's os.File path.
func (m *MemStorage) Truncate(size int64) error {
	if size < 0 {
		size = 0
	}
	if int64(len(m.data)) == size {
		return nil
	}
	grown := make([]byte, size)
	copy(grown, m.data)
	m.data = grown
	return nil
}

type memFileInfo struct {
	size int64
}

func (m memFileInfo) Name() string       { return "memstorage" }
func (m memFileInfo) Size() int64        { return m.size }
func (m memFileInfo) Mode() fs.FileMode  { return 0o600 }
func (m memFileInfo) ModTime() time.Time { return time.Time{} }
func (m memFileInfo) IsDir() bool        { return false }
func (m memFileInfo) Sys() any           { return nil }
