package triple_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dialog-db/dialog-db-sub004/triple"
)

func TestEntityPartShortStringIsZeroPadded(t *testing.T) {
	p := triple.NewEntityPart("short")
	require.Equal(t, "short", strings.TrimRight(string(p.Bytes()[:32]), "\x00"))
	for _, b := range p.Bytes()[32:] {
		require.Zero(t, b)
	}
}

func TestEntityPartLongStringHashesRemainder(t *testing.T) {
	long := "did:key:" + strings.Repeat("z", 80)
	p := triple.NewEntityPart(long)
	require.Equal(t, []byte(long)[:32], p.Bytes()[:32])

	var zero [32]byte
	require.NotEqual(t, zero[:], p.Bytes()[32:])
}

func TestAttributePartRejectsOversizedInput(t *testing.T) {
	_, err := triple.NewAttributePart(strings.Repeat("a", triple.AttributePartSize+1))
	require.Error(t, err)
}

func TestAttributePartStringTrimsPadding(t *testing.T) {
	p, err := triple.NewAttributePart("person/name")
	require.NoError(t, err)
	require.Equal(t, "person/name", p.String())
}
