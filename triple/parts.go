// Package triple implements the data model of spec.md §3: artifacts
// (entity/attribute/value triples), their stored Datum projection, the
// three fixed-width composite key orderings, and the index trio that
// maintains them atomically.
package triple

import (
	"bytes"
	"fmt"

	"github.com/dialog-db/dialog-db-sub004/dialogerr"
	"github.com/dialog-db/dialog-db-sub004/internal/contenthash"
)

const (
	// EntityPartSize is the fixed width of an entity key part.
	EntityPartSize = 64
	// AttributePartSize is the fixed width of an attribute key part.
	AttributePartSize = 64
	// ValueReferencePartSize is the fixed width of a value reference part.
	ValueReferencePartSize = 32
)

// EntityPart is the 64-byte fixed-width representation of an entity,
// constructed per spec.md §6: the first 32 bytes are the first 32 bytes of
// the entity's UTF-8 form, and the last 32 bytes are the Blake3 hash of the
// remainder (or all zeros if the UTF-8 form is 32 bytes or shorter).
type EntityPart [EntityPartSize]byte

// NewEntityPart compresses an arbitrary entity identifier (typically a
// URI/DID-shaped string) into its fixed-width key representation.
func NewEntityPart(entity string) EntityPart {
	var p EntityPart
	b := []byte(entity)
	if len(b) <= 32 {
		copy(p[:32], b)
		return p
	}
	copy(p[:32], b[:32])
	h := contenthash.Sum(b[32:])
	copy(p[32:], h[:])
	return p
}

// Bytes returns the raw 64 bytes of the part.
func (p EntityPart) Bytes() []byte { return p[:] }

// AttributePart is the 64-byte, UTF-8, null-padded fixed-width
// representation of a namespaced attribute symbol.
type AttributePart [AttributePartSize]byte

// NewAttributePart validates and right-pads attr with NUL bytes to the
// fixed width. Attributes longer than the part width are rejected.
func NewAttributePart(attr string) (AttributePart, error) {
	var p AttributePart
	b := []byte(attr)
	if len(b) > AttributePartSize {
		return p, dialogerr.New(dialogerr.InvalidKey, "NewAttributePart",
			fmt.Sprintf("attribute %q exceeds %d bytes", attr, AttributePartSize))
	}
	copy(p[:], b)
	return p, nil
}

// String returns the attribute with its NUL padding trimmed.
func (p AttributePart) String() string {
	return string(bytes.TrimRight(p[:], "\x00"))
}

// Bytes returns the raw 64 bytes of the part.
func (p AttributePart) Bytes() []byte { return p[:] }

// ValueReferencePart is the 32-byte Blake3 hash of a value's canonical
// encoding (type tag plus raw bytes), excluding any cause — per the Open
// Question in spec.md §9, resolved in SPEC_FULL.md §13.1.
type ValueReferencePart [ValueReferencePartSize]byte

// NewValueReferencePart hashes a value's canonical, cause-free encoding.
func NewValueReferencePart(v Value) ValueReferencePart {
	buf := append([]byte{byte(v.DataType())}, v.encode()...)
	return ValueReferencePart(contenthash.Sum(buf))
}

// Bytes returns the raw 32 bytes of the part.
func (p ValueReferencePart) Bytes() []byte { return p[:] }
