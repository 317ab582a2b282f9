package triple

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dialog-db/dialog-db-sub004/dialogerr"
)

// ValueDataType tags the variant of a Value, per spec.md §3. It is stored
// as the 1-byte ValueDataType field of every composite key.
type ValueDataType byte

const (
	TypeBytes ValueDataType = iota + 1
	TypeBool
	TypeString
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeFloat32
	TypeFloat64
	TypeSymbol
	TypeEntityRef
	TypeRecord
)

// Value is the tagged-union payload of an Artifact's `is` field.
// Canonical encoding rules (spec.md §4.2): booleans as a single byte,
// integers little-endian of their declared width, strings as UTF-8 without
// BOM, records as length-prefixed opaque bytes (the length prefix is
// supplied by the enclosing Datum value payload, not by encode() itself).
type Value interface {
	DataType() ValueDataType
	encode() []byte
}

// DecodeValue reconstructs a typed Value from its data type tag and raw
// canonical bytes (as produced by encode()).
func DecodeValue(dt ValueDataType, raw []byte) (Value, error) {
	switch dt {
	case TypeBytes:
		return BytesValue(append([]byte(nil), raw...)), nil
	case TypeBool:
		if len(raw) != 1 {
			return nil, dialogerr.New(dialogerr.InvalidValue, "DecodeValue", "bool value must be 1 byte")
		}
		return BoolValue(raw[0] != 0), nil
	case TypeString:
		return StringValue(string(raw)), nil
	case TypeSymbol:
		return SymbolValue(string(raw)), nil
	case TypeRecord:
		return RecordValue(append([]byte(nil), raw...)), nil
	case TypeInt8:
		if len(raw) != 1 {
			return nil, sizeErr(dt, 1, len(raw))
		}
		return Int8Value(int8(raw[0])), nil
	case TypeUint8:
		if len(raw) != 1 {
			return nil, sizeErr(dt, 1, len(raw))
		}
		return Uint8Value(raw[0]), nil
	case TypeInt16:
		if len(raw) != 2 {
			return nil, sizeErr(dt, 2, len(raw))
		}
		return Int16Value(int16(binary.LittleEndian.Uint16(raw))), nil
	case TypeUint16:
		if len(raw) != 2 {
			return nil, sizeErr(dt, 2, len(raw))
		}
		return Uint16Value(binary.LittleEndian.Uint16(raw)), nil
	case TypeInt32:
		if len(raw) != 4 {
			return nil, sizeErr(dt, 4, len(raw))
		}
		return Int32Value(int32(binary.LittleEndian.Uint32(raw))), nil
	case TypeUint32:
		if len(raw) != 4 {
			return nil, sizeErr(dt, 4, len(raw))
		}
		return Uint32Value(binary.LittleEndian.Uint32(raw)), nil
	case TypeInt64:
		if len(raw) != 8 {
			return nil, sizeErr(dt, 8, len(raw))
		}
		return Int64Value(int64(binary.LittleEndian.Uint64(raw))), nil
	case TypeUint64:
		if len(raw) != 8 {
			return nil, sizeErr(dt, 8, len(raw))
		}
		return Uint64Value(binary.LittleEndian.Uint64(raw)), nil
	case TypeFloat32:
		if len(raw) != 4 {
			return nil, sizeErr(dt, 4, len(raw))
		}
		return Float32Value(math.Float32frombits(binary.LittleEndian.Uint32(raw))), nil
	case TypeFloat64:
		if len(raw) != 8 {
			return nil, sizeErr(dt, 8, len(raw))
		}
		return Float64Value(math.Float64frombits(binary.LittleEndian.Uint64(raw))), nil
	case TypeEntityRef:
		if len(raw) != EntityPartSize {
			return nil, sizeErr(dt, EntityPartSize, len(raw))
		}
		var e EntityPart
		copy(e[:], raw)
		return EntityRefValue(e), nil
	default:
		return nil, dialogerr.New(dialogerr.InvalidValue, "DecodeValue", fmt.Sprintf("unknown value data type %d", dt))
	}
}

func sizeErr(dt ValueDataType, want, got int) error {
	return dialogerr.New(dialogerr.InvalidValue, "DecodeValue",
		fmt.Sprintf("value type %d expects %d bytes, got %d", dt, want, got))
}

type BytesValue []byte

func (v BytesValue) DataType() ValueDataType { return TypeBytes }
func (v BytesValue) encode() []byte          { return v }

type BoolValue bool

func (v BoolValue) DataType() ValueDataType { return TypeBool }
func (v BoolValue) encode() []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

type StringValue string

func (v StringValue) DataType() ValueDataType { return TypeString }
func (v StringValue) encode() []byte          { return []byte(v) }

type SymbolValue string

func (v SymbolValue) DataType() ValueDataType { return TypeSymbol }
func (v SymbolValue) encode() []byte          { return []byte(v) }

type RecordValue []byte

func (v RecordValue) DataType() ValueDataType { return TypeRecord }
func (v RecordValue) encode() []byte          { return v }

type Int8Value int8

func (v Int8Value) DataType() ValueDataType { return TypeInt8 }
func (v Int8Value) encode() []byte          { return []byte{byte(v)} }

type Uint8Value uint8

func (v Uint8Value) DataType() ValueDataType { return TypeUint8 }
func (v Uint8Value) encode() []byte          { return []byte{byte(v)} }

type Int16Value int16

func (v Int16Value) DataType() ValueDataType { return TypeInt16 }
func (v Int16Value) encode() []byte {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, uint16(v))
	return buf
}

type Uint16Value uint16

func (v Uint16Value) DataType() ValueDataType { return TypeUint16 }
func (v Uint16Value) encode() []byte {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, uint16(v))
	return buf
}

type Int32Value int32

func (v Int32Value) DataType() ValueDataType { return TypeInt32 }
func (v Int32Value) encode() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	return buf
}

type Uint32Value uint32

func (v Uint32Value) DataType() ValueDataType { return TypeUint32 }
func (v Uint32Value) encode() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	return buf
}

type Int64Value int64

func (v Int64Value) DataType() ValueDataType { return TypeInt64 }
func (v Int64Value) encode() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	return buf
}

type Uint64Value uint64

func (v Uint64Value) DataType() ValueDataType { return TypeUint64 }
func (v Uint64Value) encode() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	return buf
}

type Float32Value float32

func (v Float32Value) DataType() ValueDataType { return TypeFloat32 }
func (v Float32Value) encode() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
	return buf
}

type Float64Value float64

func (v Float64Value) DataType() ValueDataType { return TypeFloat64 }
func (v Float64Value) encode() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(float64(v)))
	return buf
}

// EntityRefValue is a value that itself references another entity.
type EntityRefValue EntityPart

func (v EntityRefValue) DataType() ValueDataType { return TypeEntityRef }
func (v EntityRefValue) encode() []byte          { return EntityPart(v).Bytes() }
