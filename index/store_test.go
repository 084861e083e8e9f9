package index

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "isg.db")
	store, err := Open(dbPath, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestInsertAndGetFileByPath(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	fp1 := []byte("01234567890123456789012345678901")
	fp2 := []byte("abcdefghijabcdefghijabcdefghijab")

	rec := &FileRecord{
		Path:            "/docs/report.txt",
		RootFingerprint: fp1,
		Salt:            []byte("0123456789abcdef"),
		Size:            42,
		CreatedAt:       now,
		ModifiedAt:      now,
		AccessedAt:      now,
	}
	require.NoError(t, store.InsertFile(rec, [][]byte{fp1, fp2}))
	require.NotZero(t, rec.ID)

	got, err := store.GetFileByPath("/docs/report.txt")
	require.NoError(t, err)
	require.Equal(t, uint64(42), got.Size)

	blocks, err := store.GetFileBlocks(got.ID)
	require.NoError(t, err)
	require.Equal(t, [][]byte{fp1, fp2}, blocks)
}

func TestTouchAccessedAt(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()
	rec := &FileRecord{
		Path: "/touch", RootFingerprint: []byte("0123456789012345678901234567890a"),
		Salt: []byte("0123456789abcdef"), Size: 1,
		CreatedAt: now, ModifiedAt: now, AccessedAt: now,
	}
	require.NoError(t, store.InsertFile(rec, nil))

	later := now.Add(time.Hour)
	require.NoError(t, store.TouchAccessedAt(rec.ID, later))

	got, err := store.GetFileByPath("/touch")
	require.NoError(t, err)
	require.WithinDuration(t, later, got.AccessedAt, time.Second)
}

func TestGetFileByPathNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetFileByPath("/missing")
	require.Error(t, err)
}

func TestListFiles(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	for _, p := range []string{"/b.txt", "/a.txt"} {
		rec := &FileRecord{
			Path: p, RootFingerprint: []byte("0123456789012345678901234567890a"),
			Salt: []byte("0123456789abcdef"), Size: 1,
			CreatedAt: now, ModifiedAt: now, AccessedAt: now,
		}
		require.NoError(t, store.InsertFile(rec, nil))
	}

	files, err := store.ListFiles()
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Equal(t, "/a.txt", files[0].Path)
	require.Equal(t, "/b.txt", files[1].Path)
}

func TestDeleteFile(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()
	rec := &FileRecord{
		Path: "/x", RootFingerprint: []byte("0123456789012345678901234567890a"),
		Salt: []byte("0123456789abcdef"), Size: 1,
		CreatedAt: now, ModifiedAt: now, AccessedAt: now,
	}
	require.NoError(t, store.InsertFile(rec, nil))
	require.NoError(t, store.DeleteFile("/x"))

	_, err := store.GetFileByPath("/x")
	require.Error(t, err)

	require.Error(t, store.DeleteFile("/x"))
}

func TestInsertBlockIdempotent(t *testing.T) {
	store := newTestStore(t)
	fp := []byte("01234567890123456789012345678901")
	now := time.Now().UTC()

	rec := &BlockRecord{Fingerprint: fp, Size: 10, Encoding: "raw", CreatedAt: now}
	require.NoError(t, store.InsertBlock(rec))
	require.NoError(t, store.InsertBlock(rec))

	got, err := store.GetBlock(fp)
	require.NoError(t, err)
	require.Equal(t, 10, got.Size)
}

func TestGetBlockNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetBlock([]byte("doesnotexist00000000000000000000"))
	require.Error(t, err)
}

func TestInsertAndGetChunksForBlock(t *testing.T) {
	store := newTestStore(t)
	fp := []byte("01234567890123456789012345678901")
	now := time.Now().UTC()

	require.NoError(t, store.InsertBlock(&BlockRecord{Fingerprint: fp, Size: 10, Encoding: "raw", CreatedAt: now}))
	require.NoError(t, store.InsertChunk(&ChunkRecord{BlockFingerprint: fp, Platform: "local", Identifier: "id-1", UploadedAt: now}))
	require.NoError(t, store.InsertChunk(&ChunkRecord{BlockFingerprint: fp, Platform: "local", Identifier: "id-2", UploadedAt: now}))

	chunks, err := store.GetChunksForBlock(fp)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	require.Equal(t, "id-1", chunks[0].Identifier)
	require.Equal(t, "id-2", chunks[1].Identifier)
}

func TestComputeStats(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()
	fp := []byte("01234567890123456789012345678901")

	rec := &FileRecord{
		Path: "/f", RootFingerprint: fp,
		Salt: []byte("0123456789abcdef"), Size: 100,
		CreatedAt: now, ModifiedAt: now, AccessedAt: now,
	}
	require.NoError(t, store.InsertFile(rec, [][]byte{fp}))
	require.NoError(t, store.InsertBlock(&BlockRecord{Fingerprint: fp, Size: 100, Encoding: "raw", CreatedAt: now}))
	require.NoError(t, store.InsertChunk(&ChunkRecord{BlockFingerprint: fp, Platform: "local", Identifier: "id-1", UploadedAt: now}))

	stats, err := store.ComputeStats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.FileCount)
	require.Equal(t, uint64(100), stats.TotalLogical)
	require.Equal(t, int64(100), stats.TotalStored)
	require.Equal(t, int64(100), stats.StoredByPlatform["local"])
}
