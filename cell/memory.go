package cell

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/dialog-db/dialog-db-sub004/dialogerr"
	"github.com/dialog-db/dialog-db-sub004/internal/contenthash"
)

// MemoryBackend is an in-process Backend whose Edition is the hex Blake3
// digest of its stored bytes, matching the content-addressed convention
// the rest of the storage engine uses.
type MemoryBackend struct {
	mu      sync.Mutex
	data    []byte
	edition Edition
	present bool
}

// NewMemoryBackend constructs an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Read(ctx context.Context) ([]byte, Edition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.present {
		return nil, "", dialogerr.New(dialogerr.NotFound, "MemoryBackend.Read", "cell has never been written")
	}
	return append([]byte(nil), m.data...), m.edition, nil
}

func (m *MemoryBackend) Write(ctx context.Context, data []byte, expected Edition) (Edition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.present && expected != m.edition {
		return "", dialogerr.New(dialogerr.CasConflict, "MemoryBackend.Write", "edition mismatch")
	}
	if !m.present && expected != "" {
		return "", dialogerr.New(dialogerr.CasConflict, "MemoryBackend.Write", "cell does not exist yet")
	}
	sum := contenthash.Sum(data)
	edition := Edition(hex.EncodeToString(sum[:]))
	m.data = append([]byte(nil), data...)
	m.edition = edition
	m.present = true
	return edition, nil
}
