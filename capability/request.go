package capability

import (
	"context"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/dialog-db/dialog-db-sub004/codec"
	"github.com/dialog-db/dialog-db-sub004/dialogerr"
)

// HashBase58 base58-encodes a block hash the way archive paths embed a
// digest in _examples/original_source/rust/dialog-s3-credentials/src/capability/archive.rs
// (`digest.as_bytes().to_base58()`).
func HashBase58(h codec.Hash) string { return base58.Encode(h[:]) }

// Precondition mirrors the S3 CAS precondition enum in
// _examples/original_source/rust/dialog-s3-credentials/src/access.rs.
type Precondition int

const (
	PreconditionNone Precondition = iota
	PreconditionIfMatch
	PreconditionIfNoneMatch
)

// RequestDescriptor is a Provider's normalized description of the backend
// operation an Authorized effect maps to; the remote package turns this
// into a concrete presigned HTTP request.
type RequestDescriptor struct {
	Method       string
	Path         string
	Params       map[string]any
	Precondition Precondition
	IfMatch      string
}

// Provider executes an Authorized capability, producing the request that
// performs it. Grounded on Provider<I> from dialog-common/src/capability.rs
// and the S3Request trait implementations in dialog-s3-credentials.
type Provider interface {
	Execute(ctx context.Context, authorized Authorized) (RequestDescriptor, error)
}

// Perform executes the already-authorized capability on p; it does no
// authorization of its own.
func (a Authorized) Perform(ctx context.Context, p Provider) (RequestDescriptor, error) {
	return p.Execute(ctx, a)
}

// Router dispatches an Authorized capability to the Provider registered for
// its root command segment ("archive", "memory"), mirroring the "static
// provider router" role described for this package: a fixed table, not a
// generic plugin registry, since the set of effect families is closed.
type Router struct {
	providers map[string]Provider
}

// NewRouter returns a Router with no providers registered.
func NewRouter() *Router {
	return &Router{providers: map[string]Provider{}}
}

// Register wires a Provider to handle capabilities whose command path
// begins with the given root segment.
func (r *Router) Register(segment string, p Provider) {
	r.providers[segment] = p
}

// Execute dispatches authorized to its registered provider.
func (r *Router) Execute(ctx context.Context, authorized Authorized) (RequestDescriptor, error) {
	segment := rootSegment(authorized.Capability.Command())
	p, ok := r.providers[segment]
	if !ok {
		return RequestDescriptor{}, dialogerr.New(dialogerr.Unauthorized, "Router.Execute", fmt.Sprintf("no provider registered for %q", segment))
	}
	return p.Execute(ctx, authorized)
}

func rootSegment(command string) string {
	i := 1
	for i < len(command) && command[i] != '/' {
		i++
	}
	if len(command) <= 1 {
		return ""
	}
	return command[1:i]
}
