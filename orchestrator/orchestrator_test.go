package orchestrator

import (
	"context"
	"crypto/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lessuseless-systems/infinite-storage-glitch/block"
	"github.com/lessuseless-systems/infinite-storage-glitch/index"
	"github.com/lessuseless-systems/infinite-storage-glitch/storage"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "isg.db")
	store, err := index.Open(dbPath, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	backend, err := storage.NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	dispatcher := storage.NewDispatcher(backend)

	return New(store, dispatcher, zerolog.Nop())
}

func TestUploadDownloadPlainRoundTrip(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()

	_, err := o.Upload(ctx, "/abc.txt", []byte("abc"), UploadOptions{})
	require.NoError(t, err)

	data, err := o.Download(ctx, "/abc.txt", DownloadOptions{})
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), data)
}

func TestUploadDownloadEncryptedRoundTrip(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()

	plaintext := []byte("Hello, world!")
	_, err := o.Upload(ctx, "/secret.txt", plaintext, UploadOptions{Encrypt: true, Password: "pw"})
	require.NoError(t, err)

	data, err := o.Download(ctx, "/secret.txt", DownloadOptions{Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, plaintext, data)

	// Without the password, the caller gets the raw nonce||ciphertext blob.
	raw, err := o.Download(ctx, "/secret.txt", DownloadOptions{})
	require.NoError(t, err)
	require.Len(t, raw, len(plaintext)+12)
}

func TestUploadDownloadWrongPasswordFails(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()

	_, err := o.Upload(ctx, "/secret.txt", []byte("Hello, world!"), UploadOptions{Encrypt: true, Password: "pw"})
	require.NoError(t, err)

	_, err = o.Download(ctx, "/secret.txt", DownloadOptions{Password: "wrong"})
	require.Error(t, err)
}

func TestUploadDownloadPixelEncodingRoundTrip(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()

	data := make([]byte, 10_000)
	_, err := rand.Read(data)
	require.NoError(t, err)

	_, err = o.Upload(ctx, "/blob.bin", data, UploadOptions{Encoding: EncodingPixel})
	require.NoError(t, err)

	got, err := o.Download(ctx, "/blob.bin", DownloadOptions{})
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestUploadDownloadCompressedRoundTrip(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()

	data := []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	_, err := o.Upload(ctx, "/compressed.txt", data, UploadOptions{Compress: true})
	require.NoError(t, err)

	got, err := o.Download(ctx, "/compressed.txt", DownloadOptions{})
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestUploadDownloadCompressedAndEncryptedRoundTrip(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()

	data := []byte("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	_, err := o.Upload(ctx, "/both.txt", data, UploadOptions{Compress: true, Encrypt: true, Password: "pw"})
	require.NoError(t, err)

	got, err := o.Download(ctx, "/both.txt", DownloadOptions{Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestUploadWithErasureSurvivesMissingBackendFile(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()

	data := []byte("data that gets erasure coded across several shards for resilience")
	_, err := o.Upload(ctx, "/resilient.bin", data, UploadOptions{DataShards: 4, ParityShards: 2})
	require.NoError(t, err)

	// Remove the backend file of data shard 1; 5 of 6 shards remain.
	rec, err := o.store.GetFileByPath("/resilient.bin")
	require.NoError(t, err)
	fps, err := o.store.GetFileBlocks(rec.ID)
	require.NoError(t, err)
	require.Len(t, fps, 1)
	chunks, err := o.store.GetChunksForBlock(fps[0])
	require.NoError(t, err)
	require.Len(t, chunks, 6)
	require.NoError(t, o.dispatcher.Delete(ctx, block.Location{Platform: chunks[1].Platform, Identifier: chunks[1].Identifier}))

	got, err := o.Download(ctx, "/resilient.bin", DownloadOptions{})
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestUploadWithErasureAggregatesShardUploadErrors(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()

	data := []byte("data that gets erasure coded across several shards for resilience")
	_, err := o.Upload(ctx, "/unreachable.bin", data, UploadOptions{DataShards: 4, ParityShards: 2, BackendIndex: 7})
	require.Error(t, err)
	// Every one of the 6 shards hits the same missing-backend-index failure;
	// the composed message should report more than one of them rather than
	// bailing out after the first.
	require.Greater(t, strings.Count(err.Error(), "shard "), 1)
}

func TestDeleteRemovesFileRecord(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()

	_, err := o.Upload(ctx, "/gone.txt", []byte("bye"), UploadOptions{})
	require.NoError(t, err)

	require.NoError(t, o.Delete(ctx, "/gone.txt"))

	_, err = o.Download(ctx, "/gone.txt", DownloadOptions{})
	require.Error(t, err)
}

func TestUploadEmptyFile(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()

	_, err := o.Upload(ctx, "/empty.bin", []byte{}, UploadOptions{})
	require.NoError(t, err)

	got, err := o.Download(ctx, "/empty.bin", DownloadOptions{})
	require.NoError(t, err)
	require.Empty(t, got)
}
