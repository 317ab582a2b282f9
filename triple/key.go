package triple

import "github.com/dialog-db/dialog-db-sub004/dialogerr"

// EntityKeySize, AttributeKeySize and ValueKeySize are the fixed widths of
// the three composite key orderings defined in spec.md §4.4.
const (
	EntityKeySize    = EntityPartSize + AttributePartSize + 1
	AttributeKeySize = AttributePartSize + EntityPartSize + 1
	ValueKeySize     = 1 + ValueReferencePartSize + AttributePartSize + EntityPartSize
)

// EntityKey orders the E-A-V index: entity, then attribute, then the
// value's data type. Values sharing an (entity, attribute) pair but
// differing in type sort adjacently.
type EntityKey [EntityKeySize]byte

// NewEntityKey builds an E-A-V key.
func NewEntityKey(entity EntityPart, attribute AttributePart, valueType ValueDataType) EntityKey {
	var k EntityKey
	copy(k[:EntityPartSize], entity.Bytes())
	copy(k[EntityPartSize:], attribute.Bytes())
	k[EntityKeySize-1] = byte(valueType)
	return k
}

// Entity, Attribute and ValueType extract the key's fields.
func (k EntityKey) Entity() EntityPart {
	var e EntityPart
	copy(e[:], k[:EntityPartSize])
	return e
}
func (k EntityKey) Attribute() AttributePart {
	var a AttributePart
	copy(a[:], k[EntityPartSize:EntityPartSize+AttributePartSize])
	return a
}
func (k EntityKey) ValueType() ValueDataType { return ValueDataType(k[EntityKeySize-1]) }

// Bytes returns the raw key bytes in sort order.
func (k EntityKey) Bytes() []byte { return k[:] }

// AttributeKey orders the A-E-V index: attribute, then entity, then the
// value's data type.
type AttributeKey [AttributeKeySize]byte

// NewAttributeKey builds an A-E-V key.
func NewAttributeKey(attribute AttributePart, entity EntityPart, valueType ValueDataType) AttributeKey {
	var k AttributeKey
	copy(k[:AttributePartSize], attribute.Bytes())
	copy(k[AttributePartSize:], entity.Bytes())
	k[AttributeKeySize-1] = byte(valueType)
	return k
}

func (k AttributeKey) Attribute() AttributePart {
	var a AttributePart
	copy(a[:], k[:AttributePartSize])
	return a
}
func (k AttributeKey) Entity() EntityPart {
	var e EntityPart
	copy(e[:], k[AttributePartSize:AttributePartSize+EntityPartSize])
	return e
}
func (k AttributeKey) ValueType() ValueDataType { return ValueDataType(k[AttributeKeySize-1]) }

func (k AttributeKey) Bytes() []byte { return k[:] }

// ValueKey orders the V-A-E index: the value's data type, then its
// reference hash, then attribute, then entity. Leading with the data type
// keeps same-typed values contiguous for range scans over a value prefix.
type ValueKey [ValueKeySize]byte

// NewValueKey builds a V-A-E key.
func NewValueKey(valueType ValueDataType, vref ValueReferencePart, attribute AttributePart, entity EntityPart) ValueKey {
	var k ValueKey
	k[0] = byte(valueType)
	copy(k[1:1+ValueReferencePartSize], vref.Bytes())
	copy(k[1+ValueReferencePartSize:1+ValueReferencePartSize+AttributePartSize], attribute.Bytes())
	copy(k[1+ValueReferencePartSize+AttributePartSize:], entity.Bytes())
	return k
}

func (k ValueKey) ValueType() ValueDataType { return ValueDataType(k[0]) }
func (k ValueKey) ValueReference() ValueReferencePart {
	var v ValueReferencePart
	copy(v[:], k[1:1+ValueReferencePartSize])
	return v
}
func (k ValueKey) Attribute() AttributePart {
	var a AttributePart
	copy(a[:], k[1+ValueReferencePartSize:1+ValueReferencePartSize+AttributePartSize])
	return a
}
func (k ValueKey) Entity() EntityPart {
	var e EntityPart
	copy(e[:], k[1+ValueReferencePartSize+AttributePartSize:])
	return e
}

func (k ValueKey) Bytes() []byte { return k[:] }

// KeysForArtifact derives the three composite keys an artifact occupies,
// one per index, so a commit can update all three trees from a single
// Artifact value.
func KeysForArtifact(a Artifact) (EntityKey, AttributeKey, ValueKey, error) {
	attr, entity, vref, vd, _, err := ToDatum(a)
	if err != nil {
		return EntityKey{}, AttributeKey{}, ValueKey{}, dialogerr.Wrap(dialogerr.InvalidKey, "KeysForArtifact", err)
	}
	ek := NewEntityKey(entity, attr, vd.ValueType)
	ak := NewAttributeKey(attr, entity, vd.ValueType)
	vk := NewValueKey(vd.ValueType, vref, attr, entity)
	return ek, ak, vk, nil
}
