package branch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dialog-db/dialog-db-sub004/branch"
	"github.com/dialog-db/dialog-db-sub004/codec"
)

// TestNextHLCSameIssuerAdvancesMomentOnly pins the per-field clock rule
// that SPEC_FULL.md §13.2 builds on: consecutive commits from the same
// issuer only advance the moment; the period only advances when the issuer
// changes.
func TestNextHLCSameIssuerAdvancesMomentOnly(t *testing.T) {
	period, moment := branch.NextHLC("alice", 3, 7, "alice")
	require.Equal(t, uint64(3), period)
	require.Equal(t, uint64(8), moment)

	period, moment = branch.NextHLC("alice", 3, 7, "bob")
	require.Equal(t, uint64(4), period)
	require.Equal(t, uint64(0), moment)
}

func TestRevisionContentHashIncludesCause(t *testing.T) {
	a := branch.Revision{Issuer: "alice", Period: 1, Moment: 0}
	withCause := a
	cause := a.ContentHash()
	withCause.Cause = []codec.Hash{cause}

	require.NotEqual(t, a.ContentHash(), withCause.ContentHash())
}

func TestRevisionEncodeDecodeRoundTrip(t *testing.T) {
	rev := branch.Revision{Issuer: "alice", Period: 2, Moment: 5}
	encoded, err := branch.EncodeRevision(rev)
	require.NoError(t, err)

	decoded, err := branch.DecodeRevision(encoded)
	require.NoError(t, err)
	require.Equal(t, rev, decoded)
}
