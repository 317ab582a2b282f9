package remote_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dialog-db/dialog-db-sub004/remote"
)

func TestBuildObjectKeyPassesSafeComponentsThrough(t *testing.T) {
	key := remote.BuildObjectKey("did-key-zAlice/blocks/abc123")
	require.Equal(t, "did-key-zAlice/blocks/abc123", key)
}

func TestBuildObjectKeyEscapesUnsafeComponents(t *testing.T) {
	key := remote.BuildObjectKey("did:key:zAlice/blocks/abc123")
	require.Regexp(t, `^!\S+/blocks/abc123$`, key)
	require.NotContains(t, key, ":")
}

func TestBuildObjectKeyPreservesHierarchySlashes(t *testing.T) {
	key := remote.BuildObjectKey("did:key:zAlice/memory/did:key:zSpace/profile")
	parts := 0
	for _, c := range key {
		if c == '/' {
			parts++
		}
	}
	require.Equal(t, 3, parts)
}
