package main

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/dialog-db/dialog-db-sub004/triple"
)

// valueJSON is the on-disk shape of an artifact's value in a commit or
// selector file passed to dialogctl: {"type": "...", "data": ...}. Only
// the value variants an operator is likely to author by hand are
// supported here; every triple.Value variant remains reachable through
// the library itself.
type valueJSON struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func valueFromJSON(v valueJSON) (triple.Value, error) {
	switch v.Type {
	case "string":
		var s string
		if err := json.Unmarshal(v.Data, &s); err != nil {
			return nil, err
		}
		return triple.StringValue(s), nil
	case "symbol":
		var s string
		if err := json.Unmarshal(v.Data, &s); err != nil {
			return nil, err
		}
		return triple.SymbolValue(s), nil
	case "bool":
		var b bool
		if err := json.Unmarshal(v.Data, &b); err != nil {
			return nil, err
		}
		return triple.BoolValue(b), nil
	case "int64":
		var n int64
		if err := json.Unmarshal(v.Data, &n); err != nil {
			return nil, err
		}
		return triple.Int64Value(n), nil
	case "uint64":
		var n uint64
		if err := json.Unmarshal(v.Data, &n); err != nil {
			return nil, err
		}
		return triple.Uint64Value(n), nil
	case "float64":
		var f float64
		if err := json.Unmarshal(v.Data, &f); err != nil {
			return nil, err
		}
		return triple.Float64Value(f), nil
	case "bytes":
		var encoded string
		if err := json.Unmarshal(v.Data, &encoded); err != nil {
			return nil, err
		}
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode base64 bytes value: %w", err)
		}
		return triple.BytesValue(raw), nil
	default:
		return nil, fmt.Errorf("unsupported value type %q", v.Type)
	}
}

func valueToJSON(v triple.Value) valueJSON {
	switch tv := v.(type) {
	case triple.StringValue:
		return jsonOf("string", string(tv))
	case triple.SymbolValue:
		return jsonOf("symbol", string(tv))
	case triple.BoolValue:
		return jsonOf("bool", bool(tv))
	case triple.Int64Value:
		return jsonOf("int64", int64(tv))
	case triple.Uint64Value:
		return jsonOf("uint64", uint64(tv))
	case triple.Float64Value:
		return jsonOf("float64", float64(tv))
	case triple.BytesValue:
		return jsonOf("bytes", base64.StdEncoding.EncodeToString(tv))
	default:
		return valueJSON{Type: fmt.Sprintf("%T", v)}
	}
}

func jsonOf(kind string, data any) valueJSON {
	raw, _ := json.Marshal(data)
	return valueJSON{Type: kind, Data: raw}
}

// artifactJSON is the on-disk shape of one triple in a commit file.
type artifactJSON struct {
	Entity    string    `json:"entity"`
	Attribute string    `json:"attribute"`
	Value     valueJSON `json:"value"`
}

func (a artifactJSON) toArtifact() (triple.Artifact, error) {
	value, err := valueFromJSON(a.Value)
	if err != nil {
		return triple.Artifact{}, fmt.Errorf("artifact %s/%s: %w", a.Entity, a.Attribute, err)
	}
	return triple.Artifact{The: a.Attribute, Of: triple.NewEntityPart(a.Entity), Is: value}, nil
}

func artifactToJSON(a triple.Artifact) artifactJSON {
	return artifactJSON{Entity: entityPartDisplay(a.Of), Attribute: a.The, Value: valueToJSON(a.Is)}
}

// entityPartDisplay best-effort recovers an EntityPart's original string
// form: NewEntityPart is lossless for entities of 32 bytes or fewer (the
// tail is all zero padding) and lossy (Blake3-compressed) beyond that, so
// longer entities are shown as hex instead of a garbled partial string.
func entityPartDisplay(p triple.EntityPart) string {
	raw := p.Bytes()
	tail := raw[32:]
	for _, b := range tail {
		if b != 0 {
			return "0x" + hex.EncodeToString(raw)
		}
	}
	head := raw[:32]
	end := len(head)
	for end > 0 && head[end-1] == 0 {
		end--
	}
	return string(head[:end])
}

// commitFile is the shape of the JSON file dialogctl branch commit reads:
// a batch of assertions and retractions for one revision.
type commitFile struct {
	Assert  []artifactJSON `json:"assert"`
	Retract []artifactJSON `json:"retract"`
}

// selectorFile is the shape of the JSON file dialogctl branch select
// reads: every field left out is unconstrained, per triple.Selector.
// ValueReference is a hex-encoded 32-byte value reference, for querying by
// a value's content hash without supplying the decoded value itself.
type selectorFile struct {
	Entity         string     `json:"entity"`
	Attribute      string     `json:"attribute"`
	Value          *valueJSON `json:"value"`
	ValueReference string     `json:"valueReference"`
}

func (s selectorFile) toSelector() (triple.Selector, error) {
	sel := triple.Selector{Entity: s.Entity, Attribute: s.Attribute}
	if s.Value != nil {
		value, err := valueFromJSON(*s.Value)
		if err != nil {
			return triple.Selector{}, err
		}
		sel.Value = value
	}
	if s.ValueReference != "" {
		raw, err := hex.DecodeString(s.ValueReference)
		if err != nil {
			return triple.Selector{}, fmt.Errorf("parse valueReference: %w", err)
		}
		if len(raw) != triple.ValueReferencePartSize {
			return triple.Selector{}, fmt.Errorf("valueReference must be %d bytes, got %d", triple.ValueReferencePartSize, len(raw))
		}
		var vref triple.ValueReferencePart
		copy(vref[:], raw)
		sel.ValueReference = &vref
	}
	return sel, nil
}
