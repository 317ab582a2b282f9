// Package prolly implements the ranked prolly tree described in spec.md
// §4.3-§4.4: a content-addressed, deterministic search tree whose shape
// depends only on the set of keys it holds, not on insertion order.
//
// Node boundaries are derived from a geometric distribution over each
// key's Blake3 hash, grounded on
// _examples/original_source/rust/dialog-prolly-tree/src/distribution/geometric.rs.
// That file implements Rank exactly as ported here; it does not include the
// boundary-selection rule that turns ranks into segment/branch splits, so
// promotionHeight below is this package's own construction, chosen to match
// the well-known content-defined-chunking technique real prolly tree
// implementations use (a key is promoted past level L only when its rank
// exceeds L+1), which reproduces the paper's expected-chunk-size-proportional-
// to-branch-factor behavior.
package prolly

import "github.com/dialog-db/dialog-db-sub004/internal/contenthash"

// DefaultBranchFactor is the branching factor used when one is not
// configured, per spec.md §4.3 ("m in the low hundreds in practice").
const DefaultBranchFactor = 254

// bitsPerGroup returns k = ceil(log2(m+1)), the number of hash bits
// consumed per trial when simulating a 1/m-probability coin flip out of
// fair (1/2) bits.
func bitsPerGroup(m int) int {
	n := m + 1
	k := 0
	v := 1
	for v < n {
		v <<= 1
		k++
	}
	if k == 0 {
		k = 1
	}
	return k
}

// Rank computes the geometric-distribution rank of a key under branching
// factor m: one plus the number of leading all-zero k-bit groups of
// Blake3(key) before the first nonzero group, capped at (256/k)+1 groups.
func Rank(key []byte, m int) int {
	h := contenthash.Sum(key)
	k := bitsPerGroup(m)
	batchCount := 256 / k
	mask := uint32(1)<<uint(k) - 1
	for i := 0; i < batchCount; i++ {
		bitPos := k * i
		byteIndex := bitPos / 8
		bitIndex := uint(bitPos % 8)
		// A group may straddle a byte boundary, so gather up to three bytes
		// (least significant first) before shifting the group into place.
		var word uint32
		for j := 0; j < 3 && byteIndex+j < len(h); j++ {
			word |= uint32(h[byteIndex+j]) << (8 * uint(j))
		}
		batch := (word >> bitIndex) & mask
		if batch != 0 {
			return i + 1
		}
	}
	return batchCount + 1
}

// promotionHeight returns how many branch levels above the leaf a key with
// the given rank is promoted into as a delimiter. Rank 1 (the overwhelming
// common case) promotes zero levels: the key is an ordinary leaf entry.
// Rank 2 ends the current leaf segment and becomes a level-1 delimiter.
// Rank r in general ends segments at levels 0..r-2 and is promoted through
// level r-1.
func promotionHeight(rank int) int {
	if rank <= 1 {
		return 0
	}
	return rank - 1
}

// isBoundary reports whether a key with the given rank terminates the
// current run of entries at tree level (0 = leaf, 1 = first branch level
// above the leaf, and so on).
func isBoundary(rank, level int) bool {
	return promotionHeight(rank) > level
}
