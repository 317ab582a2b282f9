package codec

import (
	"bytes"
	"fmt"

	"github.com/dialog-db/dialog-db-sub004/dialogerr"
)

// HashSize is the width of a content hash: 32-byte Blake3 digest.
const HashSize = 32

// Hash is a content hash: Blake3 of a block's or value's serialized bytes.
type Hash [HashSize]byte

// Tag identifies a block's variant on the wire: the leading byte of every
// encoded block, per spec.md §6.
type Tag byte

const (
	// TagBranch marks a Branch block: a non-empty list of (upper_bound, child hash).
	TagBranch Tag = 0x00
	// TagSegment marks a Segment block: a non-empty list of (key, value).
	TagSegment Tag = 0x01
)

// BranchChild is one entry of a Branch block: the maximum key reachable in
// the child subtree, and the child's content hash.
type BranchChild struct {
	UpperBound []byte
	ChildHash  Hash
}

// SegmentEntry is one entry of a Segment block: an exact key and its value
// bytes (an encoded Datum state, see the triple package).
type SegmentEntry struct {
	Key   []byte
	Value []byte
}

// Block is a tree node as stored: either Branch or Segment, never both.
// Node invariants (spec.md §4.3) are enforced by the prolly package that
// constructs blocks, not by the codec, which only serializes whatever
// shape it is given.
type Block struct {
	Tag     Tag
	Branch  []BranchChild
	Segment []SegmentEntry
}

// Encode serializes b deterministically: identical blocks produce
// byte-identical output, which is required for content addressing.
func (b *Block) Encode() ([]byte, error) {
	switch b.Tag {
	case TagBranch:
		if len(b.Branch) == 0 {
			return nil, dialogerr.New(dialogerr.InvalidState, "Block.Encode", "branch block must be non-empty")
		}
		buf := []byte{byte(TagBranch)}
		buf = appendUvarint(buf, uint64(len(b.Branch)))
		for _, c := range b.Branch {
			buf = appendBytes(buf, c.UpperBound)
			buf = append(buf, c.ChildHash[:]...)
		}
		return buf, nil
	case TagSegment:
		if len(b.Segment) == 0 {
			return nil, dialogerr.New(dialogerr.InvalidState, "Block.Encode", "segment block must be non-empty")
		}
		buf := []byte{byte(TagSegment)}
		buf = appendUvarint(buf, uint64(len(b.Segment)))
		for _, e := range b.Segment {
			buf = appendBytes(buf, e.Key)
			buf = appendBytes(buf, e.Value)
		}
		return buf, nil
	default:
		return nil, dialogerr.New(dialogerr.InvalidState, "Block.Encode", fmt.Sprintf("unknown tag %d", b.Tag))
	}
}

// DecodeBlock decodes bytes produced by Block.Encode, validating the leading
// tag and every length prefix. Unknown tags are a decode error per spec.md §4.2.
func DecodeBlock(data []byte) (*Block, error) {
	if len(data) == 0 {
		return nil, dialogerr.New(dialogerr.CorruptBlock, "DecodeBlock", "empty buffer")
	}
	tag := Tag(data[0])
	r := bytes.NewReader(data[1:])
	switch tag {
	case TagBranch:
		n, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, dialogerr.New(dialogerr.CorruptBlock, "DecodeBlock", "branch block with zero children")
		}
		children := make([]BranchChild, 0, n)
		for i := uint64(0); i < n; i++ {
			ub, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			var h Hash
			if _, err := r.Read(h[:]); err != nil {
				return nil, dialogerr.Wrap(dialogerr.CorruptBlock, "DecodeBlock", err)
			}
			children = append(children, BranchChild{UpperBound: ub, ChildHash: h})
		}
		if r.Len() != 0 {
			return nil, dialogerr.New(dialogerr.CorruptBlock, "DecodeBlock", "trailing bytes after branch block")
		}
		return &Block{Tag: TagBranch, Branch: children}, nil
	case TagSegment:
		n, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, dialogerr.New(dialogerr.CorruptBlock, "DecodeBlock", "segment block with zero entries")
		}
		entries := make([]SegmentEntry, 0, n)
		for i := uint64(0); i < n; i++ {
			k, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			v, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			entries = append(entries, SegmentEntry{Key: k, Value: v})
		}
		if r.Len() != 0 {
			return nil, dialogerr.New(dialogerr.CorruptBlock, "DecodeBlock", "trailing bytes after segment block")
		}
		return &Block{Tag: TagSegment, Segment: entries}, nil
	default:
		return nil, dialogerr.New(dialogerr.CorruptBlock, "DecodeBlock", fmt.Sprintf("unknown block tag %d", tag))
	}
}
