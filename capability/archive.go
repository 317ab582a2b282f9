package capability

import (
	"github.com/dialog-db/dialog-db-sub004/codec"
)

// Archive is the root attenuation for content-addressed block storage
// operations, grounded on the Archive unit struct in
// _examples/original_source/rust/dialog-s3-credentials/src/capability/archive.rs.
type Archive struct{}

func (Archive) Segment() string              { return "archive" }
func (Archive) Parameters() map[string]any   { return nil }

// Catalog scopes archive operations to a named catalog, e.g. "blocks".
type Catalog struct{ Name string }

func (c Catalog) Parameters() map[string]any { return map[string]any{"catalog": c.Name} }

// ArchiveGet retrieves content by its block hash.
type ArchiveGet struct{ Digest codec.Hash }

func (ArchiveGet) Name() string { return "archive/get" }
func (g ArchiveGet) Parameters() map[string]any {
	return map[string]any{"digest": HashBase58(g.Digest)}
}

// ArchivePut stores content under its block hash, with a checksum the
// provider can use as an integrity precondition.
type ArchivePut struct {
	Digest   codec.Hash
	Checksum string
}

func (ArchivePut) Name() string { return "archive/put" }
func (p ArchivePut) Parameters() map[string]any {
	return map[string]any{"digest": HashBase58(p.Digest), "checksum": p.Checksum}
}
