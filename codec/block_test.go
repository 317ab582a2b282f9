package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dialog-db/dialog-db-sub004/codec"
)

func TestSegmentBlockRoundTrip(t *testing.T) {
	blk := &codec.Block{
		Tag: codec.TagSegment,
		Segment: []codec.SegmentEntry{
			{Key: []byte("alpha"), Value: []byte("1")},
			{Key: []byte("beta"), Value: []byte("2")},
		},
	}
	raw, err := blk.Encode()
	require.NoError(t, err)

	decoded, err := codec.DecodeBlock(raw)
	require.NoError(t, err)
	require.Equal(t, blk, decoded)
}

func TestBranchBlockRoundTrip(t *testing.T) {
	var h codec.Hash
	h[0] = 0xAB
	blk := &codec.Block{
		Tag: codec.TagBranch,
		Branch: []codec.BranchChild{
			{UpperBound: []byte("m"), ChildHash: h},
		},
	}
	raw, err := blk.Encode()
	require.NoError(t, err)

	decoded, err := codec.DecodeBlock(raw)
	require.NoError(t, err)
	require.Equal(t, blk, decoded)
}

func TestEncodeIsDeterministic(t *testing.T) {
	blk := &codec.Block{
		Tag:     codec.TagSegment,
		Segment: []codec.SegmentEntry{{Key: []byte("k"), Value: []byte("v")}},
	}
	a, err := blk.Encode()
	require.NoError(t, err)
	b, err := blk.Encode()
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestEmptyBlocksAreRejected(t *testing.T) {
	_, err := (&codec.Block{Tag: codec.TagSegment}).Encode()
	require.Error(t, err)
	_, err = (&codec.Block{Tag: codec.TagBranch}).Encode()
	require.Error(t, err)
}

func TestDecodeUnknownTagFails(t *testing.T) {
	_, err := codec.DecodeBlock([]byte{0x7F, 0x00})
	require.Error(t, err)
}

func TestDecodeEmptyBufferFails(t *testing.T) {
	_, err := codec.DecodeBlock(nil)
	require.Error(t, err)
}
