package remote_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dialog-db/dialog-db-sub004/remote"
)

func TestBuildURLUsesVirtualHostedStyleForAWS(t *testing.T) {
	addr := remote.NewAddress("https://s3.us-east-1.amazonaws.com", "us-east-1", "my-bucket")
	u, err := addr.BuildURL("alice/blocks/abc")
	require.NoError(t, err)
	require.Equal(t, "my-bucket.s3.us-east-1.amazonaws.com", u.Host)
	require.Equal(t, "/alice/blocks/abc", u.Path)
}

func TestBuildURLUsesPathStyleForMinIO(t *testing.T) {
	addr := remote.NewAddress("http://localhost:9000", "us-east-1", "my-bucket")
	u, err := addr.BuildURL("alice/blocks/abc")
	require.NoError(t, err)
	require.Equal(t, "localhost:9000", u.Host)
	require.Equal(t, "/my-bucket/alice/blocks/abc", u.Path)
}

func TestBuildURLRejectsMalformedEndpoint(t *testing.T) {
	addr := remote.NewAddress("not a url", "us-east-1", "my-bucket")
	_, err := addr.BuildURL("alice/blocks/abc")
	require.Error(t, err)
}
