// Package contenthash centralizes the one hash function every layer of the
// storage engine is built on: 32-byte Blake3, per spec.md §4.1 ("Hashes are
// 32-byte Blake3 of the serialized block bytes") and §3 (entity/value
// reference parts).
package contenthash

import (
	"lukechampine.com/blake3"

	"github.com/dialog-db/dialog-db-sub004/codec"
)

// Sum returns the 32-byte Blake3 digest of data.
func Sum(data []byte) codec.Hash {
	return codec.Hash(blake3.Sum256(data))
}
