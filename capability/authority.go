package capability

import (
	"crypto/ed25519"

	"github.com/multiformats/go-multibase"

	"github.com/dialog-db/dialog-db-sub004/dialogerr"
)

// ed25519MulticodecPrefix is the multicodec varint for "ed25519-pub"
// (0xed01), prepended to a raw public key before multibase-encoding it into
// a did:key identifier, per the did:key method specification.
var ed25519MulticodecPrefix = []byte{0xed, 0x01}

// Authority signs on behalf of a Subject. Grounded on UcanAuthority in
// _examples/original_source/rust/dialog-s3-credentials/src/ucan/authority.rs,
// which wraps an Ed25519 signing key and exposes a secret_key_bytes method
// that returns None for authorities backed by non-extractable key material
// (e.g. a WebAuthn authenticator, per dialog-credentials/src/webauthn/signer.rs).
type Authority struct {
	did        Subject
	publicKey  ed25519.PublicKey
	privateKey ed25519.PrivateKey // nil when the key is not extractable
	signFn     func(payload []byte) ([]byte, error)
}

// Generate creates a fresh Authority from a random Ed25519 keypair. The
// private key is extractable: SecretKeyBytes returns it.
func Generate() (*Authority, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, dialogerr.Wrap(dialogerr.InvalidState, "capability.Generate", err)
	}
	return newExtractableAuthority(pub, priv)
}

// FromSeed derives a deterministic Authority from a 32-byte seed, mirroring
// UcanAuthority::from_secret.
func FromSeed(seed []byte) (*Authority, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, dialogerr.New(dialogerr.InvalidValue, "capability.FromSeed", "seed must be 32 bytes")
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return newExtractableAuthority(pub, priv)
}

func newExtractableAuthority(pub ed25519.PublicKey, priv ed25519.PrivateKey) (*Authority, error) {
	did, err := DIDFromEd25519(pub)
	if err != nil {
		return nil, err
	}
	return &Authority{
		did:        did,
		publicKey:  pub,
		privateKey: priv,
		signFn:     func(payload []byte) ([]byte, error) { return ed25519.Sign(priv, payload), nil },
	}, nil
}

// FromExternalSigner wraps an Authority around a DID and a sign callback
// whose key material never leaves its backend, modeling a hardware-backed
// or WebAuthn authority that can produce signatures but not raw key bytes.
func FromExternalSigner(did Subject, publicKey ed25519.PublicKey, sign func(payload []byte) ([]byte, error)) *Authority {
	return &Authority{did: did, publicKey: publicKey, signFn: sign}
}

// DID returns the authority's DID.
func (a *Authority) DID() Subject { return a.did }

// PublicKey returns the authority's Ed25519 public key.
func (a *Authority) PublicKey() ed25519.PublicKey { return a.publicKey }

// Sign signs payload, delegating to whatever backend this Authority wraps.
func (a *Authority) Sign(payload []byte) ([]byte, error) {
	sig, err := a.signFn(payload)
	if err != nil {
		return nil, dialogerr.Wrap(dialogerr.InvalidState, "Authority.Sign", err)
	}
	return sig, nil
}

// SecretKeyBytes returns the raw private key and true if this authority's
// key material is extractable, or (nil, false) for an authority backed by
// non-extractable key material, mirroring secret_key_bytes() -> Option<...>
// in ucan/authority.rs.
func (a *Authority) SecretKeyBytes() ([]byte, bool) {
	if a.privateKey == nil {
		return nil, false
	}
	out := make([]byte, len(a.privateKey))
	copy(out, a.privateKey)
	return out, true
}

// DIDFromEd25519 encodes an Ed25519 public key as a did:key identifier.
func DIDFromEd25519(pub ed25519.PublicKey) (Subject, error) {
	payload := append(append([]byte{}, ed25519MulticodecPrefix...), pub...)
	encoded, err := multibase.Encode(multibase.Base58BTC, payload)
	if err != nil {
		return "", dialogerr.Wrap(dialogerr.InvalidState, "DIDFromEd25519", err)
	}
	return Subject("did:key:" + encoded), nil
}

// PublicKeyFromDID reverses DIDFromEd25519, recovering the Ed25519 public
// key embedded in a did:key identifier. This lets a delegation chain verify
// signatures from the DIDs it already carries, with no separate key
// registry.
func PublicKeyFromDID(did Subject) (ed25519.PublicKey, error) {
	const prefix = "did:key:"
	s := string(did)
	if len(s) <= len(prefix) || s[:len(prefix)] != prefix {
		return nil, dialogerr.New(dialogerr.InvalidValue, "PublicKeyFromDID", "not a did:key identifier")
	}
	_, payload, err := multibase.Decode(s[len(prefix):])
	if err != nil {
		return nil, dialogerr.Wrap(dialogerr.InvalidValue, "PublicKeyFromDID", err)
	}
	if len(payload) != len(ed25519MulticodecPrefix)+ed25519.PublicKeySize {
		return nil, dialogerr.New(dialogerr.InvalidValue, "PublicKeyFromDID", "unexpected did:key payload length")
	}
	for i, b := range ed25519MulticodecPrefix {
		if payload[i] != b {
			return nil, dialogerr.New(dialogerr.InvalidValue, "PublicKeyFromDID", "unsupported multicodec prefix")
		}
	}
	return ed25519.PublicKey(payload[len(ed25519MulticodecPrefix):]), nil
}
