package blockstore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dialog-db/dialog-db-sub004/blockstore"
	"github.com/dialog-db/dialog-db-sub004/codec"
)

func sampleBlock() *codec.Block {
	return &codec.Block{
		Tag: codec.TagSegment,
		Segment: []codec.SegmentEntry{
			{Key: []byte("a"), Value: []byte("1")},
		},
	}
}

func TestWriteThenReadFromDelta(t *testing.T) {
	store, err := blockstore.NewStore(blockstore.NewMemoryBackend(), 4, nil)
	require.NoError(t, err)

	hash, err := store.WriteBlock(sampleBlock())
	require.NoError(t, err)

	got, err := store.ReadBlock(hash)
	require.NoError(t, err)
	require.Equal(t, codec.TagSegment, got.Tag)
	require.Equal(t, "a", string(got.Segment[0].Key))
}

func TestFlushPersistsToBackend(t *testing.T) {
	backend := blockstore.NewMemoryBackend()
	store, err := blockstore.NewStore(backend, 4, nil)
	require.NoError(t, err)

	hash, err := store.WriteBlock(sampleBlock())
	require.NoError(t, err)
	require.NoError(t, store.Flush())

	raw, err := backend.Get(hash)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	decoded, err := codec.DecodeBlock(raw)
	require.NoError(t, err)
	require.Equal(t, codec.TagSegment, decoded.Tag)
}

func TestReadMissingBlockReturnsNotFound(t *testing.T) {
	store, err := blockstore.NewStore(blockstore.NewMemoryBackend(), 4, nil)
	require.NoError(t, err)

	var missing codec.Hash
	_, err = store.ReadBlock(missing)
	require.Error(t, err)
}

func TestFileBackendRoundTrip(t *testing.T) {
	dir := t.TempDir()
	backend, err := blockstore.NewFileBackend(dir)
	require.NoError(t, err)

	store, err := blockstore.NewStore(backend, 4, nil)
	require.NoError(t, err)

	hash, err := store.WriteBlock(sampleBlock())
	require.NoError(t, err)
	require.NoError(t, store.Flush())

	store2, err := blockstore.NewStore(backend, 4, nil)
	require.NoError(t, err)
	got, err := store2.ReadBlock(hash)
	require.NoError(t, err)
	require.Equal(t, codec.TagSegment, got.Tag)
}
