package capability

import (
	"context"
	"fmt"

	"github.com/dialog-db/dialog-db-sub004/dialogerr"
)

// ArchiveProvider dispatches archive effects into RequestDescriptors,
// generalizing the S3Request impls for Capability<Get>/Capability<Put> in
// dialog-s3-credentials/src/capability/archive.rs: the path is
// "{subject}/{catalog}/{base58-digest}".
type ArchiveProvider struct{}

func (ArchiveProvider) Execute(_ context.Context, authorized Authorized) (RequestDescriptor, error) {
	params := authorized.Capability.Parameters()
	catalog, _ := params["catalog"].(string)
	digest, _ := params["digest"].(string)
	path := fmt.Sprintf("%s/%s/%s", authorized.Capability.Subject(), catalog, digest)

	switch authorized.Capability.EffectName() {
	case "archive/get":
		return RequestDescriptor{Method: "GET", Path: path, Params: params}, nil
	case "archive/put":
		return RequestDescriptor{Method: "PUT", Path: path, Params: params}, nil
	default:
		return RequestDescriptor{}, dialogerr.New(dialogerr.Unauthorized, "ArchiveProvider.Execute", "unsupported archive effect")
	}
}

// MemoryProvider dispatches memory effects into RequestDescriptors,
// generalizing the S3Request impls in
// dialog-s3-credentials/src/capability/memory.rs: the path is
// "{subject}/memory/{space}/{cell}", and Publish/Retract carry a CAS
// precondition derived from the cell's expected edition.
type MemoryProvider struct{}

func (MemoryProvider) Execute(_ context.Context, authorized Authorized) (RequestDescriptor, error) {
	params := authorized.Capability.Parameters()
	space, _ := params["space"].(string)
	cell, _ := params["cell"].(string)
	path := fmt.Sprintf("%s/memory/%s/%s", authorized.Capability.Subject(), space, cell)

	switch e := authorized.Capability.Effect().(type) {
	case MemoryResolve:
		return RequestDescriptor{Method: "GET", Path: path, Params: params}, nil
	case MemoryPublish:
		desc := RequestDescriptor{Method: "PUT", Path: path, Params: params}
		if e.When != nil {
			desc.Precondition = PreconditionIfMatch
			desc.IfMatch = *e.When
		} else {
			desc.Precondition = PreconditionIfNoneMatch
		}
		return desc, nil
	case MemoryRetract:
		return RequestDescriptor{
			Method:       "DELETE",
			Path:         path,
			Params:       params,
			Precondition: PreconditionIfMatch,
			IfMatch:      e.When,
		}, nil
	default:
		return RequestDescriptor{}, dialogerr.New(dialogerr.Unauthorized, "MemoryProvider.Execute", "unsupported memory effect")
	}
}
