package remote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dialog-db/dialog-db-sub004/capability"
	"github.com/dialog-db/dialog-db-sub004/dialogerr"
	"github.com/dialog-db/dialog-db-sub004/remote"
)

func TestDispatchSucceedsOn200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", "abc123")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	client := remote.NewClient(remote.NewAddress(server.URL, "us-east-1", "my-bucket"), "AKID", "SECRET")
	resp, err := client.Dispatch(context.Background(), capability.RequestDescriptor{
		Method: "GET",
		Path:   "alice/blocks/abc",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestDispatchMapsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := remote.NewClient(remote.NewAddress(server.URL, "us-east-1", "my-bucket"), "AKID", "SECRET")
	resp, err := client.Dispatch(context.Background(), capability.RequestDescriptor{
		Method: "GET",
		Path:   "alice/blocks/abc",
	}, nil)
	if resp != nil {
		resp.Body.Close()
	}
	require.Error(t, err)
	require.True(t, dialogerr.Is(err, dialogerr.NotFound))
}

func TestDispatchMapsPreconditionFailedToCasConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPreconditionFailed)
	}))
	defer server.Close()

	client := remote.NewClient(remote.NewAddress(server.URL, "us-east-1", "my-bucket"), "AKID", "SECRET")
	resp, err := client.Dispatch(context.Background(), capability.RequestDescriptor{
		Method:       "PUT",
		Path:         "alice/memory/profile",
		Precondition: capability.PreconditionIfMatch,
		IfMatch:      "rev1",
	}, nil)
	if resp != nil {
		resp.Body.Close()
	}
	require.Error(t, err)
	require.True(t, dialogerr.Is(err, dialogerr.CasConflict))
}
