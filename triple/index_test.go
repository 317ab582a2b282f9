package triple_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dialog-db/dialog-db-sub004/blockstore"
	"github.com/dialog-db/dialog-db-sub004/prolly"
	"github.com/dialog-db/dialog-db-sub004/triple"
)

func newTestIndex(t *testing.T) *triple.Index {
	t.Helper()
	store, err := blockstore.NewStore(blockstore.NewMemoryBackend(), 0, nil)
	require.NoError(t, err)
	return triple.NewIndex(store, prolly.DefaultBranchFactor, triple.Roots{})
}

func TestAssertThenSelectByEntity(t *testing.T) {
	idx := newTestIndex(t)
	entity := triple.NewEntityPart("did:key:zGrace")
	art := triple.Artifact{The: "name", Of: entity, Is: triple.StringValue("Grace")}

	idx, err := idx.Assert(art)
	require.NoError(t, err)

	got, err := idx.Select(triple.Selector{Entity: "did:key:zGrace"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, art, got[0])
}

func TestAssertIsVisibleAcrossAllThreeIndexes(t *testing.T) {
	idx := newTestIndex(t)
	entity := triple.NewEntityPart("did:key:zHeidi")
	art := triple.Artifact{The: "status", Of: entity, Is: triple.StringValue("active")}

	idx, err := idx.Assert(art)
	require.NoError(t, err)

	byEntity, err := idx.Select(triple.Selector{Entity: "did:key:zHeidi"})
	require.NoError(t, err)
	require.Len(t, byEntity, 1)

	byAttribute, err := idx.Select(triple.Selector{Attribute: "status"})
	require.NoError(t, err)
	require.Len(t, byAttribute, 1)

	byValue, err := idx.Select(triple.Selector{Value: triple.StringValue("active")})
	require.NoError(t, err)
	require.Len(t, byValue, 1)
	require.Equal(t, art, byValue[0])
}

func TestRetractTombstonesAcrossAllIndexes(t *testing.T) {
	idx := newTestIndex(t)
	entity := triple.NewEntityPart("did:key:zIvan")
	art := triple.Artifact{The: "status", Of: entity, Is: triple.StringValue("active")}

	idx, err := idx.Assert(art)
	require.NoError(t, err)
	idx, err = idx.Retract(art)
	require.NoError(t, err)

	byEntity, err := idx.Select(triple.Selector{Entity: "did:key:zIvan"})
	require.NoError(t, err)
	require.Empty(t, byEntity)

	byValue, err := idx.Select(triple.Selector{Value: triple.StringValue("active")})
	require.NoError(t, err)
	require.Empty(t, byValue)
}

func TestUpdateChangesValueButKeepsCausalChain(t *testing.T) {
	idx := newTestIndex(t)
	entity := triple.NewEntityPart("did:key:zJudy")
	art := triple.Artifact{The: "age", Of: entity, Is: triple.Uint8Value(20)}

	idx, err := idx.Assert(art)
	require.NoError(t, err)

	updated := art.Update(triple.Uint8Value(21))
	idx, err = idx.Assert(updated)
	require.NoError(t, err)

	got, err := idx.Select(triple.Selector{Entity: "did:key:zJudy"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, triple.Uint8Value(21), got[0].Is)
	require.NotNil(t, got[0].Cause)
	require.Equal(t, art.ContentHash(), *got[0].Cause)
}

func TestSelectWithMultipleArtifactsOnSameEntity(t *testing.T) {
	idx := newTestIndex(t)
	entity := triple.NewEntityPart("did:key:zKevin")

	idx, err := idx.Assert(triple.Artifact{The: "name", Of: entity, Is: triple.StringValue("Kevin")})
	require.NoError(t, err)
	idx, err = idx.Assert(triple.Artifact{The: "age", Of: entity, Is: triple.Uint8Value(40)})
	require.NoError(t, err)

	got, err := idx.Select(triple.Selector{Entity: "did:key:zKevin"})
	require.NoError(t, err)
	require.Len(t, got, 2)
}
