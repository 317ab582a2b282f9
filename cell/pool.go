package cell

import (
	"context"
	"sync"
)

// Pool deduplicates concurrent Open calls for the same (subject, address)
// pair within one process, per spec.md §5's process-wide cell pool: two
// callers opening the same branch cell get the same *Cell and therefore
// see each other's Replace calls immediately instead of racing two
// independent backends.
type Pool struct {
	mu    sync.Mutex
	cells map[string]any
}

// NewPool constructs an empty pool.
func NewPool() *Pool {
	return &Pool{cells: make(map[string]any)}
}

func poolKey(subject, address string) string {
	return subject + "\x00" + address
}

// OpenShared returns the pooled Cell for (subject, address), opening it
// against backend on first use. Later calls with the same key return the
// same *Cell regardless of the backend/codec passed, since pooling exists
// precisely so only the first caller's Open does any I/O.
func OpenShared[T any](ctx context.Context, pool *Pool, subject, address string, backend Backend, codec Codec[T]) (*Cell[T], error) {
	key := poolKey(subject, address)

	pool.mu.Lock()
	if existing, ok := pool.cells[key]; ok {
		pool.mu.Unlock()
		return existing.(*Cell[T]), nil
	}
	pool.mu.Unlock()

	c, err := Open(ctx, backend, codec)
	if err != nil {
		return nil, err
	}

	pool.mu.Lock()
	defer pool.mu.Unlock()
	if existing, ok := pool.cells[key]; ok {
		return existing.(*Cell[T]), nil
	}
	pool.cells[key] = c
	return c, nil
}

// Evict removes (subject, address) from the pool, if present, so a later
// OpenShared call re-opens it from the backend.
func (p *Pool) Evict(subject, address string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cells, poolKey(subject, address))
}
