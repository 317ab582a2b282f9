// Package branch implements the branch coordinator of spec.md §5: a
// hybrid-logical-clock-ordered chain of revisions, each pointing at a
// snapshot of the triple package's three index roots, stored behind a
// cell.Cell so updates are compare-and-swap. Grounded on the teacher's
// append-only audit trail in
// _examples/orbas1-Synnergy/synnergy-network/core/ledger.go, generalized
// from a blockchain ledger's sequential block numbers to this system's
// (period, moment) hybrid logical clock.
package branch

import (
	"bytes"

	"github.com/dialog-db/dialog-db-sub004/codec"
	"github.com/dialog-db/dialog-db-sub004/dialogerr"
	"github.com/dialog-db/dialog-db-sub004/internal/contenthash"
	"github.com/dialog-db/dialog-db-sub004/triple"
)

// Revision is one committed snapshot of a branch: the three index roots
// current at that point, who committed it, what it followed, and its
// position in the branch's hybrid logical clock. Cause is a set of parent
// content hashes rather than a single optional one: a plain commit has
// exactly one parent, a pull's merge revision has two (the local and
// remote heads it reconciled), and genesis has none, per spec.md §3.
type Revision struct {
	Issuer string
	Roots  triple.Roots
	Cause  []codec.Hash
	Period uint64
	Moment uint64
}

// NextHLC computes the (period, moment) pair for a new revision issued by
// issuer following a revision last issued by prevIssuer at (prevPeriod,
// prevMoment), per spec.md §3: the period only advances when the issuer
// changes; the moment only advances within a run by the same issuer.
func NextHLC(prevIssuer string, prevPeriod, prevMoment uint64, issuer string) (period, moment uint64) {
	if issuer == prevIssuer {
		return prevPeriod, prevMoment + 1
	}
	return prevPeriod + 1, 0
}

// ContentHash hashes every field of r, including Cause: unlike an
// Artifact's content hash (which deliberately excludes Cause to keep a
// value reference stable across updates), a revision's identity is its
// whole position in history, so two revisions with the same roots but
// different causes are different revisions.
func (r Revision) ContentHash() codec.Hash {
	buf, _ := EncodeRevision(r)
	return contenthash.Sum(buf)
}

func appendOptionalHash(buf []byte, h *codec.Hash) []byte {
	if h == nil {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	return append(buf, h[:]...)
}

func readOptionalHash(r *bytes.Reader) (*codec.Hash, error) {
	present, err := r.ReadByte()
	if err != nil {
		return nil, dialogerr.Wrap(dialogerr.CorruptBlock, "readOptionalHash", err)
	}
	if present == 0 {
		return nil, nil
	}
	var h codec.Hash
	if _, err := r.Read(h[:]); err != nil {
		return nil, dialogerr.Wrap(dialogerr.CorruptBlock, "readOptionalHash", err)
	}
	return &h, nil
}

// appendHashSet and readHashSet encode a revision's cause set: a uvarint
// count followed by that many raw hashes. An empty set (genesis) encodes
// as a zero count.
func appendHashSet(buf []byte, hashes []codec.Hash) []byte {
	buf = codec.AppendUvarint(buf, uint64(len(hashes)))
	for _, h := range hashes {
		buf = append(buf, h[:]...)
	}
	return buf
}

func readHashSet(r *bytes.Reader) ([]codec.Hash, error) {
	n, err := codec.ReadUvarint(r)
	if err != nil {
		return nil, dialogerr.Wrap(dialogerr.CorruptBlock, "readHashSet", err)
	}
	if n == 0 {
		return nil, nil
	}
	hashes := make([]codec.Hash, n)
	for i := range hashes {
		if _, err := r.Read(hashes[i][:]); err != nil {
			return nil, dialogerr.Wrap(dialogerr.CorruptBlock, "readHashSet", err)
		}
	}
	return hashes, nil
}

// EncodeRevision serializes a Revision for storage behind a cell.Cell.
func EncodeRevision(r Revision) ([]byte, error) {
	buf := []byte{}
	buf = codec.AppendBytes(buf, []byte(r.Issuer))
	buf = appendOptionalHash(buf, r.Roots.EntityRoot)
	buf = appendOptionalHash(buf, r.Roots.AttributeRoot)
	buf = appendOptionalHash(buf, r.Roots.ValueRoot)
	buf = appendHashSet(buf, r.Cause)
	buf = codec.AppendUvarint(buf, r.Period)
	buf = codec.AppendUvarint(buf, r.Moment)
	return buf, nil
}

// DecodeRevision parses bytes produced by EncodeRevision.
func DecodeRevision(data []byte) (Revision, error) {
	r := bytes.NewReader(data)
	issuer, err := codec.ReadBytes(r)
	if err != nil {
		return Revision{}, err
	}
	entityRoot, err := readOptionalHash(r)
	if err != nil {
		return Revision{}, err
	}
	attributeRoot, err := readOptionalHash(r)
	if err != nil {
		return Revision{}, err
	}
	valueRoot, err := readOptionalHash(r)
	if err != nil {
		return Revision{}, err
	}
	cause, err := readHashSet(r)
	if err != nil {
		return Revision{}, err
	}
	period, err := codec.ReadUvarint(r)
	if err != nil {
		return Revision{}, err
	}
	moment, err := codec.ReadUvarint(r)
	if err != nil {
		return Revision{}, err
	}
	return Revision{
		Issuer: string(issuer),
		Roots: triple.Roots{
			EntityRoot:    entityRoot,
			AttributeRoot: attributeRoot,
			ValueRoot:     valueRoot,
		},
		Cause:  cause,
		Period: period,
		Moment: moment,
	}, nil
}
