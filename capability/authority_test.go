package capability_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dialog-db/dialog-db-sub004/capability"
)

func TestFromSeedIsDeterministic(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = 42
	}
	a1, err := capability.FromSeed(seed)
	require.NoError(t, err)
	a2, err := capability.FromSeed(seed)
	require.NoError(t, err)
	require.Equal(t, a1.DID(), a2.DID())
	require.True(t, strings.HasPrefix(string(a1.DID()), "did:key:z"))
}

func TestDifferentSeedsProduceDifferentDIDs(t *testing.T) {
	seed1 := make([]byte, 32)
	seed2 := make([]byte, 32)
	seed2[0] = 1
	a1, err := capability.FromSeed(seed1)
	require.NoError(t, err)
	a2, err := capability.FromSeed(seed2)
	require.NoError(t, err)
	require.NotEqual(t, a1.DID(), a2.DID())
}

func TestSignIsDeterministicForExtractableKey(t *testing.T) {
	seed := make([]byte, 32)
	a, err := capability.FromSeed(seed)
	require.NoError(t, err)

	payload := []byte("test payload")
	sig1, err := a.Sign(payload)
	require.NoError(t, err)
	sig2, err := a.Sign(payload)
	require.NoError(t, err)
	require.Equal(t, sig1, sig2)
	require.Len(t, sig1, 64)
}

func TestSecretKeyBytesExtractable(t *testing.T) {
	a, err := capability.Generate()
	require.NoError(t, err)
	secret, ok := a.SecretKeyBytes()
	require.True(t, ok)
	require.NotEmpty(t, secret)
}

func TestSecretKeyBytesNotExtractableForExternalSigner(t *testing.T) {
	inner, err := capability.Generate()
	require.NoError(t, err)
	external := capability.FromExternalSigner(inner.DID(), inner.PublicKey(), inner.Sign)

	_, ok := external.SecretKeyBytes()
	require.False(t, ok)
}

func TestPublicKeyFromDIDRoundTrips(t *testing.T) {
	a, err := capability.Generate()
	require.NoError(t, err)
	pub, err := capability.PublicKeyFromDID(a.DID())
	require.NoError(t, err)
	require.Equal(t, []byte(a.PublicKey()), []byte(pub))
}

func TestPublicKeyFromDIDRejectsNonDIDKey(t *testing.T) {
	_, err := capability.PublicKeyFromDID("did:web:example.com")
	require.Error(t, err)
}
