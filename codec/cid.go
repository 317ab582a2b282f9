package codec

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CID renders h as a CIDv1 (raw codec, blake3 multihash), giving every
// block and cell hash in this codebase an interoperable, displayable form
// for diagnostics, per SPEC_FULL.md §11's wiring note for
// go-cid/go-multihash. Remote object keys do not use it: they are built
// from the digest string the caller supplies.
func (h Hash) CID() (cid.Cid, error) {
	mh, err := multihash.Encode(h[:], multihash.BLAKE3)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// String renders h as a CIDv1 string, falling back to hex if CID encoding
// ever fails (it shouldn't: BLAKE3 is a registered multicodec).
func (h Hash) String() string {
	c, err := h.CID()
	if err != nil {
		return fmt.Sprintf("%x", h[:])
	}
	return c.String()
}
