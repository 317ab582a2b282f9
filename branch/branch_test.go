package branch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dialog-db/dialog-db-sub004/blockstore"
	"github.com/dialog-db/dialog-db-sub004/branch"
	"github.com/dialog-db/dialog-db-sub004/cell"
	"github.com/dialog-db/dialog-db-sub004/codec"
	"github.com/dialog-db/dialog-db-sub004/dialogerr"
	"github.com/dialog-db/dialog-db-sub004/prolly"
	"github.com/dialog-db/dialog-db-sub004/triple"
)

func newTestBranch(t *testing.T) *branch.Branch {
	t.Helper()
	store, err := blockstore.NewStore(blockstore.NewMemoryBackend(), 0, nil)
	require.NoError(t, err)
	b, err := branch.Open(context.Background(), "test-branch", cell.NewMemoryBackend(), store, prolly.DefaultBranchFactor, nil)
	require.NoError(t, err)
	return b
}

func TestCommitIsQueryableImmediately(t *testing.T) {
	ctx := context.Background()
	b := newTestBranch(t)
	entity := triple.NewEntityPart("did:key:zLeo")
	art := triple.Artifact{The: "name", Of: entity, Is: triple.StringValue("Leo")}

	rev, err := b.Commit(ctx, "alice", []triple.Artifact{art}, nil)
	require.NoError(t, err)
	require.Equal(t, "alice", rev.Issuer)
	require.Equal(t, uint64(0), rev.Period)
	require.Equal(t, uint64(0), rev.Moment)
	require.Nil(t, rev.Cause)

	got, err := b.Select(triple.Selector{Entity: "did:key:zLeo"})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSecondCommitBySameIssuerAdvancesMomentOnly(t *testing.T) {
	ctx := context.Background()
	b := newTestBranch(t)
	entity := triple.NewEntityPart("did:key:zMia")

	_, err := b.Commit(ctx, "alice", []triple.Artifact{
		{The: "name", Of: entity, Is: triple.StringValue("Mia")},
	}, nil)
	require.NoError(t, err)

	rev2, err := b.Commit(ctx, "alice", []triple.Artifact{
		{The: "age", Of: entity, Is: triple.Uint8Value(5)},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), rev2.Period)
	require.Equal(t, uint64(1), rev2.Moment)
	require.Len(t, rev2.Cause, 1)
}

func TestCommitByDifferentIssuerAdvancesPeriod(t *testing.T) {
	ctx := context.Background()
	b := newTestBranch(t)
	entity := triple.NewEntityPart("did:key:zNoah")

	_, err := b.Commit(ctx, "alice", []triple.Artifact{
		{The: "name", Of: entity, Is: triple.StringValue("Noah")},
	}, nil)
	require.NoError(t, err)

	rev2, err := b.Commit(ctx, "bob", []triple.Artifact{
		{The: "age", Of: entity, Is: triple.Uint8Value(9)},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(1), rev2.Period)
	require.Equal(t, uint64(0), rev2.Moment)
}

// Commit never moves the branch's pull base: base stays pinned at the last
// synced position so the next pull can still see everything committed
// locally since then as novelty.
func TestCommitDoesNotAdvanceBase(t *testing.T) {
	ctx := context.Background()
	b := newTestBranch(t)
	entity := triple.NewEntityPart("did:key:zTed")

	before := b.State().Base
	_, err := b.Commit(ctx, "alice", []triple.Artifact{
		{The: "name", Of: entity, Is: triple.StringValue("Ted")},
	}, nil)
	require.NoError(t, err)

	require.Equal(t, before, b.State().Base)
}

func TestPullFastForwardsOnDirectDescendant(t *testing.T) {
	ctx := context.Background()
	store, err := blockstore.NewStore(blockstore.NewMemoryBackend(), 0, nil)
	require.NoError(t, err)
	backend := cell.NewMemoryBackend()

	source, err := branch.Open(ctx, "source", backend, store, prolly.DefaultBranchFactor, nil)
	require.NoError(t, err)
	entity := triple.NewEntityPart("did:key:zOwen")
	rev1, err := source.Commit(ctx, "alice", []triple.Artifact{
		{The: "name", Of: entity, Is: triple.StringValue("Owen")},
	}, nil)
	require.NoError(t, err)
	rev2, err := source.Commit(ctx, "alice", []triple.Artifact{
		{The: "title", Of: entity, Is: triple.StringValue("Dr")},
	}, nil)
	require.NoError(t, err)

	// The mirror shares source's block store (as two branches at the same
	// site would), so it already has the blocks rev2's roots point at; it
	// only needs its cell advanced to rev1 before rev2 can fast-forward.
	mirror, err := branch.Open(ctx, "mirror", cell.NewMemoryBackend(), store, prolly.DefaultBranchFactor, nil)
	require.NoError(t, err)
	require.NoError(t, mirror.Advance(ctx, rev1, rev1.Roots))

	require.NoError(t, mirror.Pull(ctx, rev2))
	require.Equal(t, rev2, mirror.Current())
}

// TestPullMergesDivergentHistories pins the three-way merge scenario: two
// branches commit independently from a shared ancestor, and pulling one
// side's head into the other produces a merge revision whose cause names
// both diverged heads and whose tree carries both sides' writes.
func TestPullMergesDivergentHistories(t *testing.T) {
	ctx := context.Background()
	store, err := blockstore.NewStore(blockstore.NewMemoryBackend(), 0, nil)
	require.NoError(t, err)
	entity := triple.NewEntityPart("did:key:zOwen")

	source, err := branch.Open(ctx, "source", cell.NewMemoryBackend(), store, prolly.DefaultBranchFactor, nil)
	require.NoError(t, err)
	common, err := source.Commit(ctx, "alice", []triple.Artifact{
		{The: "name", Of: entity, Is: triple.StringValue("Owen")},
	}, nil)
	require.NoError(t, err)

	// mirror shares source's block store and starts out synced at common,
	// then the two diverge: source gains "title", mirror gains "age".
	mirror, err := branch.Open(ctx, "mirror", cell.NewMemoryBackend(), store, prolly.DefaultBranchFactor, nil)
	require.NoError(t, err)
	require.NoError(t, mirror.Advance(ctx, common, common.Roots))

	remoteRev, err := source.Commit(ctx, "alice", []triple.Artifact{
		{The: "title", Of: entity, Is: triple.StringValue("Dr")},
	}, nil)
	require.NoError(t, err)

	localRev, err := mirror.Commit(ctx, "bob", []triple.Artifact{
		{The: "age", Of: entity, Is: triple.Uint8Value(42)},
	}, nil)
	require.NoError(t, err)

	require.NoError(t, mirror.Pull(ctx, remoteRev))

	merged := mirror.Current()
	require.Len(t, merged.Cause, 2)
	require.ElementsMatch(t, []codec.Hash{localRev.ContentHash(), remoteRev.ContentHash()}, merged.Cause)
	require.Equal(t, localRev.Period+1, merged.Period)
	require.Equal(t, uint64(0), merged.Moment)

	got, err := mirror.Select(triple.Selector{Entity: "did:key:zOwen"})
	require.NoError(t, err)
	require.Len(t, got, 3, "merge must carry both the local (age) and remote (title) novelty onto the shared name fact")

	// base now tracks the tree just synced from the remote, not the merged
	// tree the branch actually holds.
	require.Equal(t, remoteRev.Roots, mirror.State().Base)
}

// TestPullReturnsCasConflictOnConcurrentWrite exercises Pull's failure
// path: another writer advances the same backend between this branch's
// last read and the merge's install, so the final compare-and-swap fails.
func TestPullReturnsCasConflictOnConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	store, err := blockstore.NewStore(blockstore.NewMemoryBackend(), 0, nil)
	require.NoError(t, err)
	backend := cell.NewMemoryBackend()
	entity := triple.NewEntityPart("did:key:zRia")

	writer, err := branch.Open(ctx, "writer", backend, store, prolly.DefaultBranchFactor, nil)
	require.NoError(t, err)
	_, err = writer.Commit(ctx, "alice", []triple.Artifact{
		{The: "name", Of: entity, Is: triple.StringValue("Ria")},
	}, nil)
	require.NoError(t, err)

	// stale observes the backend after writer's first commit but before
	// its second, so stale's cached edition is out of date by the time it
	// tries to install a pull.
	stale, err := branch.Open(ctx, "stale-view", backend, store, prolly.DefaultBranchFactor, nil)
	require.NoError(t, err)

	_, err = writer.Commit(ctx, "alice", []triple.Artifact{
		{The: "age", Of: entity, Is: triple.Uint8Value(30)},
	}, nil)
	require.NoError(t, err)

	remote := branch.Revision{Issuer: "mallory", Period: 99, Moment: 0}
	err = stale.Pull(ctx, remote)
	require.Error(t, err)
	require.True(t, dialogerr.Is(err, dialogerr.CasConflict))
}
