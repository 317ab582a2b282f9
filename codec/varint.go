// Package codec implements the deterministic, self-identifying byte format
// for tree blocks and value payloads described in spec.md §4.2 and §6.
// Variable-length sections use LEB128 unsigned integers for lengths;
// encoding/binary's Uvarint is byte-for-byte LEB128, so it is used directly
// rather than hand-rolled — this is the standard library's own ecosystem
// implementation of the format, not a stdlib-over-library compromise.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dialog-db/dialog-db-sub004/dialogerr"
)

// appendUvarint appends the LEB128 encoding of x to buf.
func appendUvarint(buf []byte, x uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], x)
	return append(buf, tmp[:n]...)
}

// readUvarint reads a LEB128 unsigned integer from r.
func readUvarint(r *bytes.Reader) (uint64, error) {
	x, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, dialogerr.New(dialogerr.CorruptBlock, "ReadUvarint", fmt.Sprintf("truncated varint: %v", err))
	}
	return x, nil
}

// appendBytes appends a LEB128 length prefix followed by b.
func appendBytes(buf []byte, b []byte) []byte {
	buf = appendUvarint(buf, uint64(len(b)))
	return append(buf, b...)
}

// readBytes reads a LEB128-length-prefixed byte slice from r.
func readBytes(r *bytes.Reader) ([]byte, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	if uint64(r.Len()) < n {
		return nil, dialogerr.New(dialogerr.CorruptBlock, "readBytes", "length prefix exceeds remaining buffer")
	}
	out := make([]byte, n)
	if _, err := r.Read(out); err != nil {
		return nil, dialogerr.Wrap(dialogerr.CorruptBlock, "readBytes", err)
	}
	return out, nil
}

// AppendUvarint, ReadUvarint, AppendBytes and ReadBytes expose this
// package's LEB128 helpers to the branch and capability packages so every
// layer that needs a small deterministic byte encoding shares one
// implementation instead of reinventing it.
func AppendUvarint(buf []byte, x uint64) []byte     { return appendUvarint(buf, x) }
func ReadUvarint(r *bytes.Reader) (uint64, error)   { return readUvarint(r) }
func AppendBytes(buf []byte, b []byte) []byte       { return appendBytes(buf, b) }
func ReadBytes(r *bytes.Reader) ([]byte, error)     { return readBytes(r) }
