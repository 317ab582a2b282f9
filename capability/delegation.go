package capability

import (
	"crypto/ed25519"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dialog-db/dialog-db-sub004/codec"
	"github.com/dialog-db/dialog-db-sub004/dialogerr"
)

// Delegation is a signed grant from Issuer to Audience, scoping whatever it
// grants to a command path prefix and an optional set of fixed parameters.
// Grounded on the Delegation<C, A> / Claim types named in
// dialog-common/src/capability.rs's supporting type list, and on UCAN
// delegation semantics generally: a chain of these, unbroken from a
// capability's subject down to an invoker, is what Access verifies.
type Delegation struct {
	Issuer    Subject
	Audience  Subject
	Command   string
	Params    map[string]any
	Expires   *time.Time
	Signature []byte
}

// Delegate has issuer sign a new delegation to audience.
func Delegate(issuer *Authority, audience Subject, command string, params map[string]any, expires *time.Time) (Delegation, error) {
	d := Delegation{Issuer: issuer.DID(), Audience: audience, Command: command, Params: params, Expires: expires}
	sig, err := issuer.Sign(d.signingBytes())
	if err != nil {
		return Delegation{}, dialogerr.Wrap(dialogerr.AuthorizationFailed, "Delegate", err)
	}
	d.Signature = sig
	return d, nil
}

// signingBytes produces the canonical bytes a Delegation's signature covers.
// Parameter keys are sorted so two delegations built from the same fields in
// a different map iteration order still sign identical bytes.
func (d Delegation) signingBytes() []byte {
	buf := []byte{}
	buf = codec.AppendBytes(buf, []byte(d.Issuer))
	buf = codec.AppendBytes(buf, []byte(d.Audience))
	buf = codec.AppendBytes(buf, []byte(d.Command))
	keys := make([]string, 0, len(d.Params))
	for k := range d.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	buf = codec.AppendUvarint(buf, uint64(len(keys)))
	for _, k := range keys {
		buf = codec.AppendBytes(buf, []byte(k))
		buf = codec.AppendBytes(buf, []byte(fmt.Sprintf("%v", d.Params[k])))
	}
	if d.Expires != nil {
		buf = append(buf, 1)
		buf = codec.AppendUvarint(buf, uint64(d.Expires.Unix()))
	} else {
		buf = append(buf, 0)
	}
	return buf
}

// Verify checks the delegation's signature against the public key embedded
// in its issuer's DID.
func (d Delegation) Verify() error {
	pub, err := PublicKeyFromDID(d.Issuer)
	if err != nil {
		return dialogerr.Wrap(dialogerr.AuthorizationFailed, "Delegation.Verify", err)
	}
	if !ed25519.Verify(pub, d.signingBytes(), d.Signature) {
		return dialogerr.New(dialogerr.AuthorizationFailed, "Delegation.Verify", "signature does not match issuer")
	}
	return nil
}

// Expired reports whether the delegation's Expires time is in the past
// relative to now. A nil Expires never expires.
func (d Delegation) Expired(now time.Time) bool {
	return d.Expires != nil && now.After(*d.Expires)
}

// Grants reports whether this delegation's scope covers cap: its command
// must be a path prefix of cap's command, and every parameter it fixes must
// match cap's corresponding parameter exactly.
func (d Delegation) Grants(cap Capability) bool {
	if !commandCovers(d.Command, cap.Command()) {
		return false
	}
	params := cap.Parameters()
	for k, v := range d.Params {
		got, ok := params[k]
		if !ok || fmt.Sprintf("%v", got) != fmt.Sprintf("%v", v) {
			return false
		}
	}
	return true
}

// commandCovers reports whether prefix is a path-segment prefix of command,
// e.g. "/archive" covers "/archive/get" but not "/archives/get".
func commandCovers(prefix, command string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" || prefix == "/" {
		return true
	}
	return command == prefix || strings.HasPrefix(command, prefix+"/")
}

// Access is the proof chain offered alongside a capability invocation: a
// sequence of delegations that must run unbroken from the capability's
// subject down to the invoker, each one granting what the next requires.
type Access struct {
	Chain []Delegation
}

// Verify checks that access forms an unbroken, unexpired, correctly signed
// chain from subject to invoker. It does not check that the chain actually
// grants a particular capability; call Authorizes for that.
func (a Access) Verify(subject, invoker Subject, now time.Time) error {
	if len(a.Chain) == 0 {
		return dialogerr.New(dialogerr.Unauthorized, "Access.Verify", "no delegation chain presented")
	}
	if a.Chain[0].Issuer != subject {
		return dialogerr.New(dialogerr.Unauthorized, "Access.Verify", "chain root is not issued by the capability's subject")
	}
	for i, d := range a.Chain {
		if err := d.Verify(); err != nil {
			return err
		}
		if d.Expired(now) {
			return dialogerr.New(dialogerr.AuthorizationFailed, "Access.Verify", "delegation expired")
		}
		if i > 0 && a.Chain[i-1].Audience != d.Issuer {
			return dialogerr.New(dialogerr.AuthorizationFailed, "Access.Verify", "delegation chain is broken")
		}
	}
	if a.Chain[len(a.Chain)-1].Audience != invoker {
		return dialogerr.New(dialogerr.Unauthorized, "Access.Verify", "chain does not terminate at the invoker")
	}
	return nil
}

// Authorizes reports whether every delegation in the chain grants cap. A
// chain narrows as it runs from subject to invoker, so if any link fails to
// grant cap, the whole chain fails to.
func (a Access) Authorizes(cap Capability) bool {
	for _, d := range a.Chain {
		if !d.Grants(cap) {
			return false
		}
	}
	return true
}

// Authorized pairs a Capability with the Access proof that validated it, per
// Authorized<C, A> in dialog-capability/src/authorized.rs. Only Authorize
// can construct one, so a Provider can trust any Authorized it receives.
type Authorized struct {
	Capability Capability
	Access     Access
	Invoker    Subject
}

// Authorize verifies access against cap's subject and invoker and, if the
// chain both validates and grants cap, returns an Authorized value a
// Provider can execute.
func Authorize(cap Capability, access Access, invoker Subject, now time.Time) (Authorized, error) {
	if err := access.Verify(cap.Subject(), invoker, now); err != nil {
		return Authorized{}, err
	}
	if !access.Authorizes(cap) {
		return Authorized{}, dialogerr.New(dialogerr.Unauthorized, "Authorize", "delegation chain does not grant this capability")
	}
	return Authorized{Capability: cap, Access: access, Invoker: invoker}, nil
}
