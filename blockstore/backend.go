// Package blockstore implements the content-addressed block storage
// layer of spec.md §4.1: a bounded in-memory node cache backed by a
// pluggable durable Backend, with an uncommitted-write delta buffer in
// front of both, grounded on the teacher's disk-LRU-in-front-of-a-gateway
// shape in _examples/orbas1-Synnergy/synnergy-network/core/storage.go —
// generalized here to a Blake3-addressed block backend instead of an IPFS
// gateway client, and using hashicorp/golang-lru/v2 in place of the
// teacher's hand-rolled disk LRU.
package blockstore

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/dialog-db/dialog-db-sub004/codec"
	"github.com/dialog-db/dialog-db-sub004/dialogerr"
)

// Backend is the durable tier a Store flushes committed blocks to.
type Backend interface {
	Get(hash codec.Hash) ([]byte, error)
	Put(hash codec.Hash, data []byte) error
}

// MemoryBackend is an in-process Backend, useful for tests and for the
// transient branch state spec.md §5 describes before a site is attached.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[codec.Hash][]byte
}

// NewMemoryBackend constructs an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[codec.Hash][]byte)}
}

func (m *MemoryBackend) Get(hash codec.Hash) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[hash]
	if !ok {
		return nil, dialogerr.New(dialogerr.NotFound, "MemoryBackend.Get", "block not found")
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryBackend) Put(hash codec.Hash, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[hash] = append([]byte(nil), data...)
	return nil
}

// FileBackend persists blocks as individual files under a root directory,
// one file per hash, named with its lowercase hex digest.
type FileBackend struct {
	dir string
}

// NewFileBackend wires a FileBackend rooted at dir, creating it if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, dialogerr.Wrap(dialogerr.IoError, "NewFileBackend", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) path(hash codec.Hash) string {
	return filepath.Join(f.dir, hexDigest(hash))
}

func (f *FileBackend) Get(hash codec.Hash) ([]byte, error) {
	b, err := os.ReadFile(f.path(hash))
	if os.IsNotExist(err) {
		return nil, dialogerr.New(dialogerr.NotFound, "FileBackend.Get", "block not found")
	}
	if err != nil {
		return nil, dialogerr.Wrap(dialogerr.IoError, "FileBackend.Get", err)
	}
	return b, nil
}

func (f *FileBackend) Put(hash codec.Hash, data []byte) error {
	tmp := f.path(hash) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return dialogerr.Wrap(dialogerr.IoError, "FileBackend.Put", err)
	}
	if err := os.Rename(tmp, f.path(hash)); err != nil {
		return dialogerr.Wrap(dialogerr.IoError, "FileBackend.Put", err)
	}
	return nil
}

func hexDigest(hash codec.Hash) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(hash)*2)
	for i, b := range hash {
		out[i*2] = hextable[b>>4]
		out[i*2+1] = hextable[b&0x0f]
	}
	return string(out)
}
