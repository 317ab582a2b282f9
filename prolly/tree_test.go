package prolly_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dialog-db/dialog-db-sub004/blockstore"
	"github.com/dialog-db/dialog-db-sub004/prolly"
)

func newStore(t *testing.T) *blockstore.Store {
	t.Helper()
	store, err := blockstore.NewStore(blockstore.NewMemoryBackend(), 0, nil)
	require.NoError(t, err)
	return store
}

func sampleEntries(n int) []prolly.Entry {
	entries := make([]prolly.Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = prolly.Entry{
			Key:   []byte(fmt.Sprintf("key-%05d", i)),
			Value: []byte(fmt.Sprintf("value-%05d", i)),
		}
	}
	return entries
}

func TestBuildAndGetRoundTrip(t *testing.T) {
	store := newStore(t)
	entries := sampleEntries(500)

	root, err := prolly.Build(store, entries, prolly.DefaultBranchFactor)
	require.NoError(t, err)

	for _, e := range entries {
		got, ok, err := prolly.Get(store, root, e.Key)
		require.NoError(t, err)
		require.True(t, ok, "key %s should be found", e.Key)
		require.Equal(t, e.Value, got)
	}

	_, ok, err := prolly.Get(store, root, []byte("does-not-exist"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBuildIsOrderIndependent(t *testing.T) {
	store := newStore(t)
	entries := sampleEntries(300)

	rootA, err := prolly.Build(store, entries, prolly.DefaultBranchFactor)
	require.NoError(t, err)

	shuffled := append([]prolly.Entry(nil), entries...)
	rng := rand.New(rand.NewSource(42))
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	rootB, err := prolly.Build(store, shuffled, prolly.DefaultBranchFactor)
	require.NoError(t, err)

	require.Equal(t, rootA, rootB, "tree shape must be a pure function of content, not insertion order")
}

func TestRangeIsBoundedAndSorted(t *testing.T) {
	store := newStore(t)
	entries := sampleEntries(200)

	root, err := prolly.Build(store, entries, prolly.DefaultBranchFactor)
	require.NoError(t, err)

	got, err := prolly.Range(store, root, []byte("key-00050"), []byte("key-00060"))
	require.NoError(t, err)
	require.Len(t, got, 10)
	for i, e := range got {
		require.Equal(t, fmt.Sprintf("key-%05d", 50+i), string(e.Key))
	}
}

func TestApplyInsertUpdateAndRebuild(t *testing.T) {
	store := newStore(t)
	root, err := prolly.Build(store, sampleEntries(50), prolly.DefaultBranchFactor)
	require.NoError(t, err)

	updated, err := prolly.Apply(store, &root, []prolly.Entry{
		{Key: []byte("key-00010"), Value: []byte("updated")},
		{Key: []byte("key-99999"), Value: []byte("new")},
	}, prolly.DefaultBranchFactor)
	require.NoError(t, err)

	v, ok, err := prolly.Get(store, updated, []byte("key-00010"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "updated", string(v))

	v, ok, err = prolly.Get(store, updated, []byte("key-99999"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "new", string(v))

	// Everything untouched should still resolve against the old root too.
	v, ok, err = prolly.Get(store, root, []byte("key-00020"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value-00020", string(v))
}

func TestNoveltyFindsAddedAndRemoved(t *testing.T) {
	store := newStore(t)
	base := sampleEntries(100)
	rootA, err := prolly.Build(store, base, prolly.DefaultBranchFactor)
	require.NoError(t, err)

	changed, err := prolly.Apply(store, &rootA, []prolly.Entry{
		{Key: []byte("key-00042"), Value: []byte("changed")},
		{Key: []byte("key-brand-new"), Value: []byte("fresh")},
	}, prolly.DefaultBranchFactor)
	require.NoError(t, err)

	added, removed, err := prolly.Novelty(store, rootA, changed)
	require.NoError(t, err)
	require.Empty(t, removed)

	byKey := map[string]string{}
	for _, e := range added {
		byKey[string(e.Key)] = string(e.Value)
	}
	require.Equal(t, "changed", byKey["key-00042"])
	require.Equal(t, "fresh", byKey["key-brand-new"])
}

func TestNoveltyIsEmptyForIdenticalRoots(t *testing.T) {
	store := newStore(t)
	root, err := prolly.Build(store, sampleEntries(40), prolly.DefaultBranchFactor)
	require.NoError(t, err)

	added, removed, err := prolly.Novelty(store, root, root)
	require.NoError(t, err)
	require.Empty(t, added)
	require.Empty(t, removed)
}
