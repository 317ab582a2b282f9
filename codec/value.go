package codec

import (
	"bytes"
	"fmt"

	"github.com/dialog-db/dialog-db-sub004/dialogerr"
)

// EncodeValuePayload serializes a Datum's raw value and optional cause hash
// per spec.md §6: LEB128 length of raw value + raw value bytes + optional
// 32-byte cause hash.
func EncodeValuePayload(raw []byte, cause *Hash) []byte {
	buf := appendBytes(nil, raw)
	if cause != nil {
		buf = append(buf, cause[:]...)
	}
	return buf
}

// DecodeValuePayload parses bytes produced by EncodeValuePayload. Cause
// presence is inferred from the remaining buffer length after the value:
// 0 bytes means no cause, 32 bytes means a cause is present, anything else
// is a decode error.
func DecodeValuePayload(data []byte) (raw []byte, cause *Hash, err error) {
	r := bytes.NewReader(data)
	raw, err = readBytes(r)
	if err != nil {
		return nil, nil, err
	}
	switch remaining := r.Len(); remaining {
	case 0:
		return raw, nil, nil
	case HashSize:
		var h Hash
		if _, err := r.Read(h[:]); err != nil {
			return nil, nil, dialogerr.Wrap(dialogerr.CorruptBlock, "DecodeValuePayload", err)
		}
		return raw, &h, nil
	default:
		return nil, nil, dialogerr.New(dialogerr.CorruptBlock, "DecodeValuePayload",
			fmt.Sprintf("unexpected trailing %d bytes (want 0 or %d)", remaining, HashSize))
	}
}
