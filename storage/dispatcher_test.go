package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lessuseless-systems/infinite-storage-glitch/block"
	"github.com/lessuseless-systems/infinite-storage-glitch/isgerr"
)

func TestDispatcherUploadToAndDownload(t *testing.T) {
	backend, err := NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	d := NewDispatcher(backend)
	ctx := context.Background()

	b := block.FromData([]byte("dispatch me"))
	loc, err := d.UploadTo(ctx, 0, b)
	require.NoError(t, err)

	data, err := d.Download(ctx, loc)
	require.NoError(t, err)
	require.Equal(t, b.Bytes, data)
}

func TestDispatcherUploadToMissingIndex(t *testing.T) {
	d := NewDispatcher()
	_, err := d.UploadTo(context.Background(), 0, block.FromData([]byte("x")))
	require.Error(t, err)
	require.True(t, isgerr.Is(err, isgerr.CodeStorageRouteMissing))
}

func TestDispatcherDownloadRouteMissing(t *testing.T) {
	d := NewDispatcher()
	_, err := d.Download(context.Background(), block.Location{Platform: "nonexistent"})
	require.Error(t, err)
	require.True(t, isgerr.Is(err, isgerr.CodeStorageRouteMissing))
}
