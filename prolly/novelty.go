package prolly

import (
	"bytes"

	"github.com/dialog-db/dialog-db-sub004/codec"
)

// Novelty computes the entries added and removed between two tree
// revisions, per spec.md §4.7. Where both nodes are branches with the same
// child upper bounds it compares them child by child, skips every pair of
// children that share a hash, and only descends into the pairs that differ.
// Where the shapes differ (a segment against a branch, or branches whose
// child counts or upper bounds differ) it flattens both subtrees and diffs
// the full entry sets, with no pruning below that point. A key whose value
// changed is reported in added only.
func Novelty(store BlockSource, from, to codec.Hash) (added, removed []Entry, err error) {
	return novelty(store, from, to)
}

func novelty(store BlockSource, from, to codec.Hash) (added, removed []Entry, err error) {
	if from == to {
		return nil, nil, nil
	}
	a, err := store.ReadBlock(from)
	if err != nil {
		return nil, nil, err
	}
	b, err := store.ReadBlock(to)
	if err != nil {
		return nil, nil, err
	}

	if a.Tag == codec.TagSegment && b.Tag == codec.TagSegment {
		added, removed = diffEntrySlices(toEntries(a.Segment), toEntries(b.Segment))
		return added, removed, nil
	}
	if a.Tag == codec.TagBranch && b.Tag == codec.TagBranch && sameBoundaries(a.Branch, b.Branch) {
		for i := range a.Branch {
			ad, rm, err := novelty(store, a.Branch[i].ChildHash, b.Branch[i].ChildHash)
			if err != nil {
				return nil, nil, err
			}
			added = append(added, ad...)
			removed = append(removed, rm...)
		}
		return added, removed, nil
	}

	// Shapes diverge (branch grew/shrank a level, or boundaries shifted):
	// fall back to flattening both subtrees and diffing the full entry
	// sets. Correct in all cases, just without the pruning above.
	oldAll, err := Range(store, from, nil, nil)
	if err != nil {
		return nil, nil, err
	}
	newAll, err := Range(store, to, nil, nil)
	if err != nil {
		return nil, nil, err
	}
	added, removed = diffEntrySlices(oldAll, newAll)
	return added, removed, nil
}

func sameBoundaries(a, b []codec.BranchChild) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i].UpperBound, b[i].UpperBound) {
			return false
		}
	}
	return true
}

func toEntries(s []codec.SegmentEntry) []Entry {
	out := make([]Entry, len(s))
	for i, e := range s {
		out[i] = Entry{Key: e.Key, Value: e.Value}
	}
	return out
}

func diffEntrySlices(oldEntries, newEntries []Entry) (added, removed []Entry) {
	oldMap := make(map[string][]byte, len(oldEntries))
	for _, e := range oldEntries {
		oldMap[string(e.Key)] = e.Value
	}
	newMap := make(map[string][]byte, len(newEntries))
	for _, e := range newEntries {
		newMap[string(e.Key)] = e.Value
	}
	for k, v := range newMap {
		if ov, ok := oldMap[k]; !ok || !bytes.Equal(ov, v) {
			added = append(added, Entry{Key: []byte(k), Value: v})
		}
	}
	for k, v := range oldMap {
		if _, ok := newMap[k]; !ok {
			removed = append(removed, Entry{Key: []byte(k), Value: v})
		}
	}
	return added, removed
}
