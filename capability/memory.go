package capability

// Memory is the root attenuation for transactional memory cell operations,
// grounded on the Memory unit struct in
// _examples/original_source/rust/dialog-s3-credentials/src/capability/memory.rs.
type Memory struct{}

func (Memory) Segment() string            { return "memory" }
func (Memory) Parameters() map[string]any { return nil }

// Space scopes memory operations to a named space, typically a DID.
type Space struct{ Name string }

func (s Space) Parameters() map[string]any { return map[string]any{"space": s.Name} }

// Cell scopes memory operations to a specific cell within a space.
type Cell struct{ Name string }

func (c Cell) Parameters() map[string]any { return map[string]any{"cell": c.Name} }

// MemoryResolve reads the current value and edition of a cell.
type MemoryResolve struct{}

func (MemoryResolve) Name() string            { return "memory/resolve" }
func (MemoryResolve) Parameters() map[string]any { return nil }

// MemoryPublish writes a cell's content, conditioned on its current
// edition: When nil means the cell is expected to not exist yet.
type MemoryPublish struct {
	Checksum string
	When     *string
}

func (MemoryPublish) Name() string { return "memory/publish" }
func (p MemoryPublish) Parameters() map[string]any {
	params := map[string]any{"checksum": p.Checksum}
	if p.When != nil {
		params["when"] = *p.When
	}
	return params
}

// MemoryRetract deletes a cell, conditioned on its current edition
// matching When; a mismatch is a CAS conflict, not a no-op, per
// remote/client.go's classifyStatus mapping HTTP 412 to
// dialogerr.CasConflict.
type MemoryRetract struct{ When string }

func (MemoryRetract) Name() string { return "memory/retract" }
func (r MemoryRetract) Parameters() map[string]any {
	return map[string]any{"when": r.When}
}
