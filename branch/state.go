package branch

import (
	"bytes"

	"github.com/dialog-db/dialog-db-sub004/cell"
	"github.com/dialog-db/dialog-db-sub004/codec"
	"github.com/dialog-db/dialog-db-sub004/dialogerr"
	"github.com/dialog-db/dialog-db-sub004/triple"
)

// Site identifies a remote S3-compatible endpoint a branch can sync with,
// per spec.md §3's upstream record.
type Site struct {
	Endpoint string
	Region   string
	Bucket   string
}

// RemoteState pairs a Site with the credentials needed to reach it and the
// subject DID of the branch mirrored there -- spec.md §3's upstream
// record. This is the runtime record a BranchState holds, distinct from
// pkg/config.SiteConfig, which is the on-disk Viper shape `dialogctl site
// add` writes; loading a SiteConfig into a RemoteState is the CLI's job,
// not this package's.
type RemoteState struct {
	Site            Site
	Subject         string
	AccessKeyID     string
	SecretAccessKey string
	UCANDelegation  string
}

// BranchState is the full persisted record of one branch per spec.md §3:
// its identity, its current revision, the tree the revision last diverged
// from (used to scope novelty on the next pull), and, if it mirrors a
// remote, the site and credentials it pulls from.
type BranchState struct {
	ID          string
	Description string
	Revision    Revision
	Base        triple.Roots
	Upstream    *RemoteState
}

// EncodeBranchState serializes a BranchState for storage behind a
// cell.Cell.
func EncodeBranchState(s BranchState) ([]byte, error) {
	revBytes, err := EncodeRevision(s.Revision)
	if err != nil {
		return nil, err
	}
	buf := []byte{}
	buf = codec.AppendBytes(buf, []byte(s.ID))
	buf = codec.AppendBytes(buf, []byte(s.Description))
	buf = codec.AppendBytes(buf, revBytes)
	buf = appendOptionalHash(buf, s.Base.EntityRoot)
	buf = appendOptionalHash(buf, s.Base.AttributeRoot)
	buf = appendOptionalHash(buf, s.Base.ValueRoot)
	if s.Upstream == nil {
		return append(buf, 0), nil
	}
	buf = append(buf, 1)
	buf = codec.AppendBytes(buf, []byte(s.Upstream.Site.Endpoint))
	buf = codec.AppendBytes(buf, []byte(s.Upstream.Site.Region))
	buf = codec.AppendBytes(buf, []byte(s.Upstream.Site.Bucket))
	buf = codec.AppendBytes(buf, []byte(s.Upstream.Subject))
	buf = codec.AppendBytes(buf, []byte(s.Upstream.AccessKeyID))
	buf = codec.AppendBytes(buf, []byte(s.Upstream.SecretAccessKey))
	buf = codec.AppendBytes(buf, []byte(s.Upstream.UCANDelegation))
	return buf, nil
}

// DecodeBranchState parses bytes produced by EncodeBranchState.
func DecodeBranchState(data []byte) (BranchState, error) {
	r := bytes.NewReader(data)
	id, err := codec.ReadBytes(r)
	if err != nil {
		return BranchState{}, err
	}
	description, err := codec.ReadBytes(r)
	if err != nil {
		return BranchState{}, err
	}
	revBytes, err := codec.ReadBytes(r)
	if err != nil {
		return BranchState{}, err
	}
	revision, err := DecodeRevision(revBytes)
	if err != nil {
		return BranchState{}, err
	}
	entityRoot, err := readOptionalHash(r)
	if err != nil {
		return BranchState{}, err
	}
	attributeRoot, err := readOptionalHash(r)
	if err != nil {
		return BranchState{}, err
	}
	valueRoot, err := readOptionalHash(r)
	if err != nil {
		return BranchState{}, err
	}
	present, err := r.ReadByte()
	if err != nil {
		return BranchState{}, dialogerr.Wrap(dialogerr.CorruptBlock, "DecodeBranchState", err)
	}

	state := BranchState{
		ID:          string(id),
		Description: string(description),
		Revision:    revision,
		Base: triple.Roots{
			EntityRoot:    entityRoot,
			AttributeRoot: attributeRoot,
			ValueRoot:     valueRoot,
		},
	}
	if present == 0 {
		return state, nil
	}

	endpoint, err := codec.ReadBytes(r)
	if err != nil {
		return BranchState{}, err
	}
	region, err := codec.ReadBytes(r)
	if err != nil {
		return BranchState{}, err
	}
	bucket, err := codec.ReadBytes(r)
	if err != nil {
		return BranchState{}, err
	}
	subject, err := codec.ReadBytes(r)
	if err != nil {
		return BranchState{}, err
	}
	accessKeyID, err := codec.ReadBytes(r)
	if err != nil {
		return BranchState{}, err
	}
	secretAccessKey, err := codec.ReadBytes(r)
	if err != nil {
		return BranchState{}, err
	}
	ucanDelegation, err := codec.ReadBytes(r)
	if err != nil {
		return BranchState{}, err
	}
	state.Upstream = &RemoteState{
		Site:            Site{Endpoint: string(endpoint), Region: string(region), Bucket: string(bucket)},
		Subject:         string(subject),
		AccessKeyID:     string(accessKeyID),
		SecretAccessKey: string(secretAccessKey),
		UCANDelegation:  string(ucanDelegation),
	}
	return state, nil
}

// BranchStateCodec adapts Encode/DecodeBranchState to cell.Codec[BranchState].
func BranchStateCodec() cell.Codec[BranchState] {
	return cell.Codec[BranchState]{Encode: EncodeBranchState, Decode: DecodeBranchState}
}
