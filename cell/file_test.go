package cell_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dialog-db/dialog-db-sub004/cell"
)

func TestFileBackendReadBeforeWriteIsNotFound(t *testing.T) {
	ctx := context.Background()
	backend, err := cell.NewFileBackend(filepath.Join(t.TempDir(), "cell"))
	require.NoError(t, err)

	_, _, err = backend.Read(ctx)
	require.Error(t, err)
}

func TestFileBackendWriteThenReadRoundTrips(t *testing.T) {
	ctx := context.Background()
	backend, err := cell.NewFileBackend(filepath.Join(t.TempDir(), "cell"))
	require.NoError(t, err)

	edition, err := backend.Write(ctx, []byte("v1"), "")
	require.NoError(t, err)
	require.NotEqual(t, cell.Edition(""), edition)

	data, readEdition, err := backend.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), data)
	require.Equal(t, edition, readEdition)
}

func TestFileBackendWriteRejectsStaleEdition(t *testing.T) {
	ctx := context.Background()
	backend, err := cell.NewFileBackend(filepath.Join(t.TempDir(), "cell"))
	require.NoError(t, err)

	_, err = backend.Write(ctx, []byte("v1"), "")
	require.NoError(t, err)

	_, err = backend.Write(ctx, []byte("v2"), "")
	require.Error(t, err)
}

func TestFileBackendSurvivesAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sub", "cell")

	first, err := cell.NewFileBackend(path)
	require.NoError(t, err)
	edition, err := first.Write(ctx, []byte("persisted"), "")
	require.NoError(t, err)

	second, err := cell.NewFileBackend(path)
	require.NoError(t, err)
	data, readEdition, err := second.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("persisted"), data)
	require.Equal(t, edition, readEdition)
}
