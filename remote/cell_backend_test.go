package remote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dialog-db/dialog-db-sub004/capability"
	"github.com/dialog-db/dialog-db-sub004/remote"
)

func TestCellBackendReadReturnsContentAndEdition(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", "edition-1")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("cell content"))
	}))
	defer server.Close()

	subject, err := capability.Generate()
	require.NoError(t, err)
	invoker, err := capability.Generate()
	require.NoError(t, err)
	delegation, err := capability.Delegate(subject, invoker.DID(), "/memory", nil, nil)
	require.NoError(t, err)

	client := remote.NewClient(remote.NewAddress(server.URL, "us-east-1", "my-bucket"), "AKID", "SECRET")
	backend := remote.NewCellBackend(client, subject.DID(), string(subject.DID()), "profile",
		capability.Access{Chain: []capability.Delegation{delegation}}, invoker.DID())

	data, edition, err := backend.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, "cell content", string(data))
	require.Equal(t, "edition-1", string(edition))
}

func TestCellBackendWriteSendsIfNoneMatchWhenEmpty(t *testing.T) {
	var sawIfNoneMatch bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawIfNoneMatch = r.Header.Get("If-None-Match") == "*"
		w.Header().Set("ETag", "edition-1")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	subject, err := capability.Generate()
	require.NoError(t, err)
	invoker, err := capability.Generate()
	require.NoError(t, err)
	delegation, err := capability.Delegate(subject, invoker.DID(), "/memory", nil, nil)
	require.NoError(t, err)

	client := remote.NewClient(remote.NewAddress(server.URL, "us-east-1", "my-bucket"), "AKID", "SECRET")
	backend := remote.NewCellBackend(client, subject.DID(), string(subject.DID()), "profile",
		capability.Access{Chain: []capability.Delegation{delegation}}, invoker.DID())

	edition, err := backend.Write(context.Background(), []byte("new content"), "")
	require.NoError(t, err)
	require.Equal(t, "edition-1", string(edition))
	require.True(t, sawIfNoneMatch)
}

func TestCellBackendAuthorizationFailsWithoutDelegation(t *testing.T) {
	subject, err := capability.Generate()
	require.NoError(t, err)
	invoker, err := capability.Generate()
	require.NoError(t, err)

	client := remote.NewClient(remote.NewAddress("http://localhost:9000", "us-east-1", "my-bucket"), "AKID", "SECRET")
	backend := remote.NewCellBackend(client, subject.DID(), string(subject.DID()), "profile", capability.Access{}, invoker.DID())

	_, _, err = backend.Read(context.Background())
	require.Error(t, err)
}
