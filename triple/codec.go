package triple

import (
	"github.com/dialog-db/dialog-db-sub004/codec"
	"github.com/dialog-db/dialog-db-sub004/dialogerr"
)

// EncodeValueDatumState serializes State[ValueDatum] for storage as a
// Segment entry's value: a leading tombstone byte, the value's data type
// tag, then the LEB128-length-prefixed raw bytes and optional cause hash
// (codec.EncodeValuePayload's layout, shared with EntityDatum).
func EncodeValueDatumState(s State[ValueDatum]) []byte {
	buf := make([]byte, 0, 2+len(s.Value.ValueRaw)+codec.HashSize)
	buf = append(buf, tombstoneByte(s.Removed), byte(s.Value.ValueType))
	buf = append(buf, codec.EncodeValuePayload(s.Value.ValueRaw, s.Value.Cause)...)
	return buf
}

// DecodeValueDatumState parses bytes produced by EncodeValueDatumState.
func DecodeValueDatumState(data []byte) (State[ValueDatum], error) {
	if len(data) < 2 {
		return State[ValueDatum]{}, dialogerr.New(dialogerr.CorruptBlock, "DecodeValueDatumState", "truncated state")
	}
	removed, err := decodeTombstoneByte(data[0])
	if err != nil {
		return State[ValueDatum]{}, err
	}
	dt := ValueDataType(data[1])
	raw, cause, err := codec.DecodeValuePayload(data[2:])
	if err != nil {
		return State[ValueDatum]{}, err
	}
	vd := ValueDatum{ValueType: dt, ValueRaw: raw, Cause: cause}
	if removed {
		return Tombstone(vd), nil
	}
	return Added(vd), nil
}

// EncodeEntityDatumState serializes State[EntityDatum] for storage as a
// V-A-E Segment entry's value: a leading tombstone byte followed by the
// same length-prefixed raw/cause layout as EncodeValuePayload. The value's
// data type is not repeated here; it already lives in the V-A-E key.
func EncodeEntityDatumState(s State[EntityDatum]) []byte {
	buf := make([]byte, 0, 1+len(s.Value.ValueRaw)+codec.HashSize)
	buf = append(buf, tombstoneByte(s.Removed))
	buf = append(buf, codec.EncodeValuePayload(s.Value.ValueRaw, s.Value.Cause)...)
	return buf
}

// DecodeEntityDatumState parses bytes produced by EncodeEntityDatumState.
func DecodeEntityDatumState(data []byte) (State[EntityDatum], error) {
	if len(data) < 1 {
		return State[EntityDatum]{}, dialogerr.New(dialogerr.CorruptBlock, "DecodeEntityDatumState", "truncated state")
	}
	removed, err := decodeTombstoneByte(data[0])
	if err != nil {
		return State[EntityDatum]{}, err
	}
	raw, cause, err := codec.DecodeValuePayload(data[1:])
	if err != nil {
		return State[EntityDatum]{}, err
	}
	ed := EntityDatum{ValueRaw: raw, Cause: cause}
	if removed {
		return Tombstone(ed), nil
	}
	return Added(ed), nil
}

func tombstoneByte(removed bool) byte {
	if removed {
		return 1
	}
	return 0
}

func decodeTombstoneByte(b byte) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, dialogerr.New(dialogerr.CorruptBlock, "decodeTombstoneByte", "tombstone byte must be 0 or 1")
	}
}
