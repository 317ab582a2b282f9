// Package capability implements the capability-gated effect router described
// in spec.md §6: a subject (DID) is attenuated through a chain of policies
// down to a concrete effect, and an effect can only be performed once a
// delegation chain proves the invoker was granted it.
//
// Grounded on the hierarchy documented in
// _examples/original_source/rust/dialog-common/src/capability.rs's module
// doc comment: Subject -> Policy (parameters only) -> Attenuation (policy
// plus a command path segment) -> Effect (attenuation plus an invocable).
// The Rust implementation represents that chain as a nested generic
// Constrained<P, Of> walked at compile time via a type-level Selector
// (_examples/original_source/rust/dialog-capability/src/{constrained,selector}.rs).
// Go has no type-level list recursion, so this package flattens the same
// chain into one Capability value that accumulates command segments and
// parameters as it is built, rather than nesting a nd generic struct per
// constraint. The externally observable shape -- a DID, a command path, and
// a parameter set -- is the same; only the internal representation differs.
package capability

import (
	"fmt"
	"strings"
)

// Subject is the DID that owns or is granted a capability.
type Subject string

// Policy contributes parameters to a capability without extending its
// command path, mirroring types like archive.Catalog and memory.Space in
// _examples/original_source/rust/dialog-s3-credentials/src/capability/*.rs.
type Policy interface {
	Parameters() map[string]any
}

// Attenuation is a Policy that also names a command path segment, mirroring
// the root attenuations Archive and Memory in the same files.
type Attenuation interface {
	Policy
	Segment() string
}

// Effect is the terminal, invocable node of a capability chain: a command
// together with whatever parameters it needs to execute, such as
// archive.Get or memory.Publish.
type Effect interface {
	Policy
	Name() string
}

// Capability is a flattened Subject -> Attenuation -> ... -> Effect chain.
// Segments records the command path contributed by every Attenuation, and
// finally by the Effect, in the order they were applied; Params accumulates every Policy's (and the
// Effect's) parameters, later constraints taking precedence on key
// collision, matching Settings::parametrize's field-by-field overwrite
// semantics in settings.rs.
type Capability struct {
	subject Subject
	segment []string
	params  map[string]any
	effect  Effect
}

// New starts a capability chain rooted at subject.
func New(subject Subject) Capability {
	return Capability{subject: subject, params: map[string]any{}}
}

// Attenuate extends the chain with an Attenuation, appending its command
// segment and merging its parameters.
func (c Capability) Attenuate(a Attenuation) Capability {
	next := c.clone()
	next.segment = append(next.segment, a.Segment())
	mergeParams(next.params, a.Parameters())
	return next
}

// Constrain extends the chain with a Policy that narrows the capability
// without adding a command segment, e.g. scoping Archive down to a named
// Catalog.
func (c Capability) Constrain(p Policy) Capability {
	next := c.clone()
	mergeParams(next.params, p.Parameters())
	return next
}

// Invoke attaches the terminal Effect, completing the chain, and appends the
// last segment of the effect's Name (e.g. "get" for "archive/get") to the
// command path.
func (c Capability) Invoke(e Effect) Capability {
	next := c.clone()
	name := e.Name()
	next.segment = append(next.segment, name[strings.LastIndex(name, "/")+1:])
	mergeParams(next.params, e.Parameters())
	next.effect = e
	return next
}

func (c Capability) clone() Capability {
	params := make(map[string]any, len(c.params))
	for k, v := range c.params {
		params[k] = v
	}
	segment := make([]string, len(c.segment))
	copy(segment, c.segment)
	return Capability{subject: c.subject, segment: segment, params: params, effect: c.effect}
}

func mergeParams(dst, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}

// Subject returns the DID this capability is scoped to.
func (c Capability) Subject() Subject { return c.subject }

// Command returns the command path, e.g. "/archive/get".
func (c Capability) Command() string {
	if len(c.segment) == 0 {
		return "/"
	}
	return "/" + strings.Join(c.segment, "/")
}

// Parameters returns the merged parameter set contributed by every
// constraint in the chain.
func (c Capability) Parameters() map[string]any {
	out := make(map[string]any, len(c.params))
	for k, v := range c.params {
		out[k] = v
	}
	return out
}

// Effect returns the terminal effect, or nil if Invoke has not been called.
func (c Capability) Effect() Effect { return c.effect }

// EffectName returns the empty string if no effect has been attached.
func (c Capability) EffectName() string {
	if c.effect == nil {
		return ""
	}
	return c.effect.Name()
}

func (c Capability) String() string {
	return fmt.Sprintf("%s %s%s", c.subject, c.Command(), formatParams(c.params))
}

func formatParams(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	return fmt.Sprintf(" %v", params)
}
