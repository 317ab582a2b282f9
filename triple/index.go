package triple

import (
	"github.com/dialog-db/dialog-db-sub004/codec"
	"github.com/dialog-db/dialog-db-sub004/dialogerr"
	"github.com/dialog-db/dialog-db-sub004/prolly"
)

// Roots holds the three tree root hashes that together represent one
// consistent snapshot of the triple store, per spec.md §4.4.
type Roots struct {
	EntityRoot    *codec.Hash
	AttributeRoot *codec.Hash
	ValueRoot     *codec.Hash
}

// Index ties the E-A-V, A-E-V and V-A-E trees together so a caller updates
// and queries the triple store as a single unit instead of three.
type Index struct {
	store        prolly.BlockSource
	branchFactor int
	roots        Roots
}

// NewIndex wires an Index over store at the given roots (all nil for an
// empty store) using branchFactor for any tree it rebuilds.
func NewIndex(store prolly.BlockSource, branchFactor int, roots Roots) *Index {
	return &Index{store: store, branchFactor: branchFactor, roots: roots}
}

// Roots returns the index's current snapshot.
func (x *Index) Roots() Roots { return x.roots }

// Assert writes a live artifact into all three trees, returning the index
// at its new roots. Per spec.md §4.4 a commit updates all three together;
// Assert performs that atomically from the caller's point of view by
// computing all three next roots before returning.
func (x *Index) Assert(a Artifact) (*Index, error) {
	return x.write(a, false)
}

// Retract tombstones an artifact across all three trees.
func (x *Index) Retract(a Artifact) (*Index, error) {
	return x.write(a, true)
}

func (x *Index) write(a Artifact, tombstone bool) (*Index, error) {
	attr, entity, vref, vd, ed, err := ToDatum(a)
	if err != nil {
		return nil, dialogerr.Wrap(dialogerr.InvalidKey, "Index.write", err)
	}
	ek := NewEntityKey(entity, attr, vd.ValueType)
	ak := NewAttributeKey(attr, entity, vd.ValueType)
	vk := NewValueKey(vd.ValueType, vref, attr, entity)

	var vdState State[ValueDatum]
	var edState State[EntityDatum]
	if tombstone {
		vdState, edState = Tombstone(vd), Tombstone(ed)
	} else {
		vdState, edState = Added(vd), Added(ed)
	}
	vdBytes := EncodeValueDatumState(vdState)
	edBytes := EncodeEntityDatumState(edState)

	newEntityRoot, err := prolly.Apply(x.store, x.roots.EntityRoot,
		[]prolly.Entry{{Key: ek.Bytes(), Value: vdBytes}}, x.branchFactor)
	if err != nil {
		return nil, err
	}
	newAttributeRoot, err := prolly.Apply(x.store, x.roots.AttributeRoot,
		[]prolly.Entry{{Key: ak.Bytes(), Value: vdBytes}}, x.branchFactor)
	if err != nil {
		return nil, err
	}
	newValueRoot, err := prolly.Apply(x.store, x.roots.ValueRoot,
		[]prolly.Entry{{Key: vk.Bytes(), Value: edBytes}}, x.branchFactor)
	if err != nil {
		return nil, err
	}

	return &Index{
		store:        x.store,
		branchFactor: x.branchFactor,
		roots: Roots{
			EntityRoot:    &newEntityRoot,
			AttributeRoot: &newAttributeRoot,
			ValueRoot:     &newValueRoot,
		},
	}, nil
}

// Select routes sel to whichever tree its leading constraint fits best
// and returns every live (non-tombstoned) artifact matching every
// constraint sel sets.
func (x *Index) Select(sel Selector) ([]Artifact, error) {
	switch sel.Route() {
	case IndexEntity:
		return x.selectEntity(sel)
	case IndexValue:
		return x.selectValue(sel)
	default:
		return x.selectAttribute(sel)
	}
}

func (x *Index) selectEntity(sel Selector) ([]Artifact, error) {
	if x.roots.EntityRoot == nil {
		return nil, nil
	}
	prefix := NewEntityPart(sel.Entity).Bytes()
	if sel.Attribute != "" {
		attr, err := NewAttributePart(sel.Attribute)
		if err != nil {
			return nil, err
		}
		prefix = append(append([]byte(nil), prefix...), attr.Bytes()...)
	}
	start, end := prefixBounds(prefix)
	entries, err := prolly.Range(x.store, *x.roots.EntityRoot, start, end)
	if err != nil {
		return nil, err
	}
	var out []Artifact
	for _, e := range entries {
		if len(e.Key) != EntityKeySize {
			return nil, dialogerr.New(dialogerr.CorruptBlock, "Index.selectEntity", "unexpected key width")
		}
		var k EntityKey
		copy(k[:], e.Key)
		state, err := DecodeValueDatumState(e.Value)
		if err != nil {
			return nil, err
		}
		if !state.IsAdded() {
			continue
		}
		art, err := RehydrateFromValueDatum(k.Attribute().String(), k.Entity(), state.Value)
		if err != nil {
			return nil, err
		}
		if sel.Matches(art) {
			out = append(out, art)
		}
	}
	return out, nil
}

func (x *Index) selectAttribute(sel Selector) ([]Artifact, error) {
	if x.roots.AttributeRoot == nil {
		return nil, nil
	}
	var prefix []byte
	if sel.Attribute != "" {
		attr, err := NewAttributePart(sel.Attribute)
		if err != nil {
			return nil, err
		}
		prefix = attr.Bytes()
	}
	start, end := prefixBounds(prefix)
	entries, err := prolly.Range(x.store, *x.roots.AttributeRoot, start, end)
	if err != nil {
		return nil, err
	}
	var out []Artifact
	for _, e := range entries {
		if len(e.Key) != AttributeKeySize {
			return nil, dialogerr.New(dialogerr.CorruptBlock, "Index.selectAttribute", "unexpected key width")
		}
		var k AttributeKey
		copy(k[:], e.Key)
		state, err := DecodeValueDatumState(e.Value)
		if err != nil {
			return nil, err
		}
		if !state.IsAdded() {
			continue
		}
		art, err := RehydrateFromValueDatum(k.Attribute().String(), k.Entity(), state.Value)
		if err != nil {
			return nil, err
		}
		if sel.Matches(art) {
			out = append(out, art)
		}
	}
	return out, nil
}

func (x *Index) selectValue(sel Selector) ([]Artifact, error) {
	if x.roots.ValueRoot == nil {
		return nil, nil
	}
	// A fully decoded Value lets the V-A-E key be prefix-bounded (it begins
	// with the value's data type byte, which a bare ValueReference doesn't
	// carry), so only that case narrows the range scan; a ValueReference-only
	// selector falls back to a full scan filtered by Matches.
	var start, end []byte
	if sel.Value != nil {
		prefix := append([]byte{byte(sel.Value.DataType())}, NewValueReferencePart(sel.Value).Bytes()...)
		if sel.Attribute != "" {
			attr, err := NewAttributePart(sel.Attribute)
			if err != nil {
				return nil, err
			}
			prefix = append(prefix, attr.Bytes()...)
		}
		start, end = prefixBounds(prefix)
	}
	entries, err := prolly.Range(x.store, *x.roots.ValueRoot, start, end)
	if err != nil {
		return nil, err
	}
	var out []Artifact
	for _, e := range entries {
		if len(e.Key) != ValueKeySize {
			return nil, dialogerr.New(dialogerr.CorruptBlock, "Index.selectValue", "unexpected key width")
		}
		var k ValueKey
		copy(k[:], e.Key)
		state, err := DecodeEntityDatumState(e.Value)
		if err != nil {
			return nil, err
		}
		if !state.IsAdded() {
			continue
		}
		art, err := RehydrateFromEntityDatum(k.Attribute().String(), k.Entity(), k.ValueType(), state.Value)
		if err != nil {
			return nil, err
		}
		if sel.Matches(art) {
			out = append(out, art)
		}
	}
	return out, nil
}

// prefixBounds turns an exact key prefix into a [start, end) range: end is
// the prefix incremented as a big-endian integer, or nil (unbounded above)
// if the prefix is empty or entirely 0xFF bytes.
func prefixBounds(prefix []byte) (start, end []byte) {
	start = append([]byte(nil), prefix...)
	if len(prefix) == 0 {
		return start, nil
	}
	end = append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return start, end[:i+1]
		}
		end[i] = 0
	}
	return start, nil
}
