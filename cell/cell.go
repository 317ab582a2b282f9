// Package cell implements the transactional memory cell of spec.md §5: a
// single mutable slot guarded by compare-and-swap, identified by an opaque
// edition token rather than a version counter so memory- and
// remote-backed cells share one contract.
package cell

import (
	"context"
	"sync"

	"github.com/dialog-db/dialog-db-sub004/dialogerr"
)

// Edition is an opaque token identifying one write to a cell: a hex
// Blake3 digest for the memory backend, an ETag for a remote one. Callers
// never construct or parse an Edition, only compare it with ==.
type Edition string

// Backend is the storage contract a Cell reads and CAS-writes through.
type Backend interface {
	Read(ctx context.Context) (data []byte, edition Edition, err error)
	Write(ctx context.Context, data []byte, expected Edition) (edition Edition, err error)
}

// Codec encodes and decodes a Cell's value type to and from the bytes a
// Backend stores.
type Codec[T any] struct {
	Encode func(T) ([]byte, error)
	Decode func([]byte) (T, error)
}

// Cell is a process-local handle on one backend slot: Read never touches
// the backend, Reload and Replace do.
type Cell[T any] struct {
	mu      sync.RWMutex
	backend Backend
	codec   Codec[T]
	value   T
	edition Edition
	opened  bool
}

// Open reads the cell's current value from its backend. A cell whose
// backend has never been written to starts with the zero value of T and
// an empty Edition, which Replace treats as "create".
func Open[T any](ctx context.Context, backend Backend, codec Codec[T]) (*Cell[T], error) {
	c := &Cell[T]{backend: backend, codec: codec}
	if err := c.Reload(ctx); err != nil && !dialogerr.Is(err, dialogerr.NotFound) {
		return nil, err
	}
	c.opened = true
	return c, nil
}

// Read returns the cell's last-loaded value without touching the backend.
func (c *Cell[T]) Read() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Edition returns the edition the cell last observed.
func (c *Cell[T]) Edition() Edition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.edition
}

// Reload re-reads the backend, refreshing the cached value and edition so
// a caller can observe writes made by another process or goroutine.
func (c *Cell[T]) Reload(ctx context.Context) error {
	data, edition, err := c.backend.Read(ctx)
	if err != nil {
		if dialogerr.Is(err, dialogerr.NotFound) {
			c.mu.Lock()
			var zero T
			c.value, c.edition = zero, ""
			c.mu.Unlock()
			return err
		}
		return err
	}
	value, err := c.codec.Decode(data)
	if err != nil {
		return dialogerr.Wrap(dialogerr.CorruptBlock, "Cell.Reload", err)
	}
	c.mu.Lock()
	c.value, c.edition = value, edition
	c.mu.Unlock()
	return nil
}

// Replace performs a compare-and-swap write: it succeeds only if the
// backend's edition still matches what this cell last observed. On
// success the cell's cached value and edition move forward; on conflict
// it returns a dialogerr.CasConflict without mutating the cell, so the
// caller can Reload and retry.
func (c *Cell[T]) Replace(ctx context.Context, next T) error {
	data, err := c.codec.Encode(next)
	if err != nil {
		return dialogerr.Wrap(dialogerr.InvalidValue, "Cell.Replace", err)
	}
	c.mu.RLock()
	expected := c.edition
	c.mu.RUnlock()

	newEdition, err := c.backend.Write(ctx, data, expected)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.value, c.edition = next, newEdition
	c.mu.Unlock()
	return nil
}
