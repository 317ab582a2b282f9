package triple

import (
	"github.com/dialog-db/dialog-db-sub004/codec"
	"github.com/dialog-db/dialog-db-sub004/internal/contenthash"
)

// Artifact is a semantic triple (entity, attribute, value), per spec.md §3.
// Artifacts are immutable; Update produces a new Artifact whose Cause
// points at the predecessor's content hash.
type Artifact struct {
	The   string // attribute: a namespaced symbol
	Of    EntityPart
	Is    Value
	Cause *codec.Hash // content hash of the predecessor version, if any
}

// ContentHash returns the Blake3 content hash of a's cause-free canonical
// form: this is what a later Artifact's Cause points at, and deliberately
// excludes Cause itself so the hash is stable across the lineage.
func (a Artifact) ContentHash() codec.Hash {
	return contenthash.Sum(encodeArtifactCore(a.The, a.Of, a.Is))
}

// encodeArtifactCore serializes the cause-free fields of an artifact for
// hashing: attribute, entity, value type tag, and canonical value bytes.
func encodeArtifactCore(attribute string, entity EntityPart, value Value) []byte {
	buf := make([]byte, 0, 128)
	buf = appendLenPrefixed(buf, []byte(attribute))
	buf = append(buf, entity.Bytes()...)
	buf = append(buf, byte(value.DataType()))
	buf = appendLenPrefixed(buf, value.encode())
	return buf
}

func appendLenPrefixed(buf, b []byte) []byte {
	n := len(b)
	buf = append(buf,
		byte(n), byte(n>>8), byte(n>>16), byte(n>>24),
		byte(n>>32), byte(n>>40), byte(n>>48), byte(n>>56))
	return append(buf, b...)
}

// Update produces a new Artifact with the same entity and attribute, a new
// value, and Cause set to a's content hash — per spec.md §3 ("'updating'
// yields a new artifact whose cause points to the predecessor's content
// hash") and testable property 4 (causal chain).
func (a Artifact) Update(value Value) Artifact {
	cause := a.ContentHash()
	return Artifact{The: a.The, Of: a.Of, Is: value, Cause: &cause}
}

// ValueDatum is the value-side payload stored in E-A-V and A-E-V entries:
// entity and attribute are already encoded in the key, so only the value's
// type, raw bytes, and cause need to travel in the stored value.
type ValueDatum struct {
	ValueType ValueDataType
	ValueRaw  []byte
	Cause     *codec.Hash
}

// EntityDatum is the entity-side payload stored in V-A-E entries: attribute
// and entity are already in the key and the key's ValueReferencePart only
// carries the value's hash, so the raw value bytes and cause travel here.
type EntityDatum struct {
	ValueRaw []byte
	Cause    *codec.Hash
}

// ToDatum decomposes an artifact into its three index-specific payloads
// plus the fixed-width key parts needed to build all three composite keys.
func ToDatum(a Artifact) (attr AttributePart, entity EntityPart, vref ValueReferencePart, vd ValueDatum, ed EntityDatum, err error) {
	attr, err = NewAttributePart(a.The)
	if err != nil {
		return
	}
	entity = a.Of
	vref = NewValueReferencePart(a.Is)
	raw := a.Is.encode()
	vd = ValueDatum{ValueType: a.Is.DataType(), ValueRaw: raw, Cause: a.Cause}
	ed = EntityDatum{ValueRaw: raw, Cause: a.Cause}
	return
}

// RehydrateFromValueDatum reconstructs the Artifact matched by an E-A-V or
// A-E-V lookup.
func RehydrateFromValueDatum(attribute string, entity EntityPart, vd ValueDatum) (Artifact, error) {
	v, err := DecodeValue(vd.ValueType, vd.ValueRaw)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{The: attribute, Of: entity, Is: v, Cause: vd.Cause}, nil
}

// RehydrateFromEntityDatum reconstructs the Artifact matched by a V-A-E
// lookup, where the value's type tag comes from the key itself.
func RehydrateFromEntityDatum(attribute string, entity EntityPart, valueType ValueDataType, ed EntityDatum) (Artifact, error) {
	v, err := DecodeValue(valueType, ed.ValueRaw)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{The: attribute, Of: entity, Is: v, Cause: ed.Cause}, nil
}
