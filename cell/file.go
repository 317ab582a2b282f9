package cell

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/dialog-db/dialog-db-sub004/dialogerr"
	"github.com/dialog-db/dialog-db-sub004/internal/contenthash"
)

// FileBackend persists a single cell's bytes at one path on disk, its
// Edition the hex Blake3 digest of the file's last-written contents —
// the same content-addressed Edition convention MemoryBackend uses, so a
// Cell can move between the two backends without its callers noticing.
// Grounded on blockstore.FileBackend's write-to-temp-then-rename shape,
// adapted here to a single fixed path instead of one file per hash.
type FileBackend struct {
	mu   sync.Mutex
	path string
}

// NewFileBackend wires a FileBackend at path, creating its parent
// directory if needed. The file itself need not exist yet.
func NewFileBackend(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, dialogerr.Wrap(dialogerr.IoError, "NewFileBackend", err)
	}
	return &FileBackend{path: path}, nil
}

func (f *FileBackend) Read(ctx context.Context) ([]byte, Edition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, "", dialogerr.New(dialogerr.NotFound, "FileBackend.Read", "cell has never been written")
	}
	if err != nil {
		return nil, "", dialogerr.Wrap(dialogerr.IoError, "FileBackend.Read", err)
	}
	return data, editionOf(data), nil
}

func (f *FileBackend) Write(ctx context.Context, data []byte, expected Edition) (Edition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, err := os.ReadFile(f.path)
	switch {
	case os.IsNotExist(err):
		if expected != "" {
			return "", dialogerr.New(dialogerr.CasConflict, "FileBackend.Write", "cell does not exist yet")
		}
	case err != nil:
		return "", dialogerr.Wrap(dialogerr.IoError, "FileBackend.Write", err)
	default:
		if expected != editionOf(existing) {
			return "", dialogerr.New(dialogerr.CasConflict, "FileBackend.Write", "edition mismatch")
		}
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", dialogerr.Wrap(dialogerr.IoError, "FileBackend.Write", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return "", dialogerr.Wrap(dialogerr.IoError, "FileBackend.Write", err)
	}
	return editionOf(data), nil
}

func editionOf(data []byte) Edition {
	sum := contenthash.Sum(data)
	return Edition(hex.EncodeToString(sum[:]))
}
