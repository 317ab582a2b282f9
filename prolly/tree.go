package prolly

import (
	"bytes"
	"sort"

	"github.com/dialog-db/dialog-db-sub004/codec"
	"github.com/dialog-db/dialog-db-sub004/dialogerr"
)

// BlockSource is the minimal storage contract the tree needs: content
// addressed read and write of codec.Block. blockstore.Store satisfies this
// structurally.
type BlockSource interface {
	ReadBlock(hash codec.Hash) (*codec.Block, error)
	WriteBlock(block *codec.Block) (codec.Hash, error)
}

// Entry is a raw key/value pair as stored in a Segment block.
type Entry struct {
	Key   []byte
	Value []byte
}

// child is an internal bookkeeping record produced while building a level:
// the upper-bound key, the written block's hash, and the rank of the key
// that closed the run, carried up so the parent level can decide whether
// to promote it further.
type child struct {
	UpperBound []byte
	Hash       codec.Hash
	Rank       int
}

// Build constructs a tree from an arbitrary (not necessarily sorted or
// deduplicated) slice of entries and returns its root hash. Because
// chunk boundaries are a pure function of each key's content, the result
// is identical regardless of the order entries were supplied in, and
// identical to any other tree built from the same final key set — this is
// the determinism invariant spec.md §8 requires.
func Build(store BlockSource, entries []Entry, branchFactor int) (codec.Hash, error) {
	if len(entries) == 0 {
		return codec.Hash{}, dialogerr.New(dialogerr.InvalidState, "Build", "cannot build a tree with zero entries")
	}
	deduped := dedupeLastWins(entries)
	sort.Slice(deduped, func(i, j int) bool { return bytes.Compare(deduped[i].Key, deduped[j].Key) < 0 })

	level, err := buildLeafLevel(store, deduped, branchFactor)
	if err != nil {
		return codec.Hash{}, err
	}
	for height := 1; len(level) > 1; height++ {
		level, err = buildBranchLevel(store, level, height, branchFactor)
		if err != nil {
			return codec.Hash{}, err
		}
	}
	return level[0].Hash, nil
}

func dedupeLastWins(entries []Entry) []Entry {
	last := make(map[string]Entry, len(entries))
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		k := string(e.Key)
		if _, seen := last[k]; !seen {
			order = append(order, k)
		}
		last[k] = e
	}
	out := make([]Entry, 0, len(order))
	for _, k := range order {
		out = append(out, last[k])
	}
	return out
}

func buildLeafLevel(store BlockSource, entries []Entry, m int) ([]child, error) {
	var out []child
	var run []codec.SegmentEntry
	for i, e := range entries {
		run = append(run, codec.SegmentEntry{Key: e.Key, Value: e.Value})
		rank := Rank(e.Key, m)
		if i == len(entries)-1 || isBoundary(rank, 0) {
			h, err := store.WriteBlock(&codec.Block{Tag: codec.TagSegment, Segment: run})
			if err != nil {
				return nil, err
			}
			out = append(out, child{UpperBound: e.Key, Hash: h, Rank: rank})
			run = nil
		}
	}
	return out, nil
}

func buildBranchLevel(store BlockSource, children []child, level, m int) ([]child, error) {
	var out []child
	var run []codec.BranchChild
	for i, c := range children {
		run = append(run, codec.BranchChild{UpperBound: c.UpperBound, ChildHash: c.Hash})
		if i == len(children)-1 || isBoundary(c.Rank, level) {
			h, err := store.WriteBlock(&codec.Block{Tag: codec.TagBranch, Branch: run})
			if err != nil {
				return nil, err
			}
			out = append(out, child{UpperBound: c.UpperBound, Hash: h, Rank: c.Rank})
			run = nil
		}
	}
	return out, nil
}

// Get looks up a single key, descending the tree with a binary search at
// each branch level.
func Get(store BlockSource, root codec.Hash, key []byte) ([]byte, bool, error) {
	h := root
	for {
		blk, err := store.ReadBlock(h)
		if err != nil {
			return nil, false, err
		}
		switch blk.Tag {
		case codec.TagSegment:
			for _, e := range blk.Segment {
				if bytes.Equal(e.Key, key) {
					return e.Value, true, nil
				}
			}
			return nil, false, nil
		case codec.TagBranch:
			idx := sort.Search(len(blk.Branch), func(i int) bool {
				return bytes.Compare(blk.Branch[i].UpperBound, key) >= 0
			})
			if idx == len(blk.Branch) {
				return nil, false, nil
			}
			h = blk.Branch[idx].ChildHash
		default:
			return nil, false, dialogerr.New(dialogerr.CorruptBlock, "Get", "unknown block tag")
		}
	}
}

// Range streams every entry with key in [start, end). A nil start means
// unbounded below; a nil end means unbounded above.
func Range(store BlockSource, root codec.Hash, start, end []byte) ([]Entry, error) {
	var out []Entry
	if err := walkRange(store, root, start, end, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func walkRange(store BlockSource, h codec.Hash, start, end []byte, out *[]Entry) error {
	blk, err := store.ReadBlock(h)
	if err != nil {
		return err
	}
	switch blk.Tag {
	case codec.TagSegment:
		for _, e := range blk.Segment {
			if keyInRange(e.Key, start, end) {
				*out = append(*out, Entry{Key: e.Key, Value: e.Value})
			}
		}
		return nil
	case codec.TagBranch:
		var lowerExclusive []byte
		for _, c := range blk.Branch {
			if rangesOverlap(lowerExclusive, c.UpperBound, start, end) {
				if err := walkRange(store, c.ChildHash, start, end, out); err != nil {
					return err
				}
			}
			lowerExclusive = c.UpperBound
			if end != nil && bytes.Compare(c.UpperBound, end) >= 0 {
				break
			}
		}
		return nil
	default:
		return dialogerr.New(dialogerr.CorruptBlock, "Range", "unknown block tag")
	}
}

func keyInRange(key, start, end []byte) bool {
	if start != nil && bytes.Compare(key, start) < 0 {
		return false
	}
	if end != nil && bytes.Compare(key, end) >= 0 {
		return false
	}
	return true
}

// rangesOverlap reports whether a child covering keys in (lowerExclusive,
// upperInclusive] can contain anything in [start, end). nil bounds are
// unbounded on that side.
func rangesOverlap(lowerExclusive, upperInclusive, start, end []byte) bool {
	if start != nil && bytes.Compare(upperInclusive, start) < 0 {
		return false
	}
	if end != nil && lowerExclusive != nil && bytes.Compare(lowerExclusive, end) >= 0 {
		return false
	}
	return true
}

// Apply rebuilds the tree with changes merged in: every entry present in
// changes overwrites (or introduces) the same key in the existing tree.
// Deletion is represented by the caller writing a tombstone-tagged value,
// not by omission — the tree itself has no notion of removing a key.
// A nil root builds a fresh tree from changes alone.
func Apply(store BlockSource, root *codec.Hash, changes []Entry, branchFactor int) (codec.Hash, error) {
	existing := map[string][]byte{}
	if root != nil {
		all, err := Range(store, *root, nil, nil)
		if err != nil {
			return codec.Hash{}, err
		}
		for _, e := range all {
			existing[string(e.Key)] = e.Value
		}
	}
	for _, c := range changes {
		existing[string(c.Key)] = c.Value
	}
	if len(existing) == 0 {
		return codec.Hash{}, dialogerr.New(dialogerr.InvalidState, "Apply", "tree cannot become empty")
	}
	merged := make([]Entry, 0, len(existing))
	for k, v := range existing {
		merged = append(merged, Entry{Key: []byte(k), Value: v})
	}
	return Build(store, merged, branchFactor)
}
