package triple

// IndexKind names one of the three composite-key trees a Selector can be
// routed to.
type IndexKind int

const (
	// IndexEntity is the E-A-V tree, best for "given this entity" lookups.
	IndexEntity IndexKind = iota
	// IndexAttribute is the A-E-V tree, best for "given this attribute"
	// scans across many entities.
	IndexAttribute
	// IndexValue is the V-A-E tree, best for "given this value" reverse
	// lookups.
	IndexValue
)

func (k IndexKind) String() string {
	switch k {
	case IndexEntity:
		return "E-A-V"
	case IndexAttribute:
		return "A-E-V"
	case IndexValue:
		return "V-A-E"
	default:
		return "unknown"
	}
}

// Selector describes a query over the triple store: each field left nil
// (or empty string for Entity/Attribute) is unconstrained. Per spec.md
// §4.4 this is a concrete struct rather than a closure so routing can
// inspect it statically instead of probing each tree in turn. ValueReference
// constrains by a value's 32-byte content hash (the same hash the V-A-E
// key is built from) without requiring the caller to hold a fully decoded
// Value — useful when a value reference was captured independently, e.g.
// from a ValueKey read off another selector's results.
type Selector struct {
	Entity         string              // empty means unconstrained
	Attribute      string              // empty means unconstrained
	Value          Value               // nil means unconstrained
	ValueReference *ValueReferencePart // nil means unconstrained
}

// Route picks the tree whose leading key field the selector constrains
// most tightly: an entity constraint always wins since E-A-V keys begin
// with the entity; failing that a value or value-reference constraint
// routes to V-A-E, whose keys begin with the value's data type and
// reference; an attribute-only selector (or a fully open one) falls back
// to A-E-V.
func (s Selector) Route() IndexKind {
	if s.Entity != "" {
		return IndexEntity
	}
	if s.Value != nil || s.ValueReference != nil {
		return IndexValue
	}
	return IndexAttribute
}

// Matches reports whether an artifact satisfies every constraint the
// selector sets. Used to filter an index's range-scan results down to
// exact matches once routing has picked the index to scan.
func (s Selector) Matches(a Artifact) bool {
	if s.Entity != "" && NewEntityPart(s.Entity) != a.Of {
		return false
	}
	if s.Attribute != "" && s.Attribute != a.The {
		return false
	}
	if s.Value != nil && (s.Value.DataType() != a.Is.DataType() || string(s.Value.encode()) != string(a.Is.encode())) {
		return false
	}
	if s.ValueReference != nil && NewValueReferencePart(a.Is) != *s.ValueReference {
		return false
	}
	return true
}
