package storage

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lessuseless-systems/infinite-storage-glitch/block"
	"github.com/lessuseless-systems/infinite-storage-glitch/crypto"
	"github.com/lessuseless-systems/infinite-storage-glitch/isgerr"
)

// LocalBackend stores block bytes on the local filesystem, one file per
// block, addressed by a freshly generated UUID laid out in a two-level
// directory tree so no single directory accumulates millions of entries.
type LocalBackend struct {
	root string
}

// NewLocalBackend creates root (and any missing parents) if necessary and
// returns a LocalBackend rooted there.
func NewLocalBackend(root string) (*LocalBackend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, isgerr.Wrap(isgerr.CodeIO, "creating local backend root", err)
	}
	return &LocalBackend{root: root}, nil
}

func (l *LocalBackend) pathFor(id string) string {
	prefix1, prefix2 := id, ""
	if len(id) >= 2 {
		prefix1 = id[:2]
	}
	if len(id) >= 4 {
		prefix2 = id[2:4]
	}
	return filepath.Join(l.root, prefix1, prefix2, id)
}

func (l *LocalBackend) Name() string { return "local" }
func (l *LocalBackend) Tier() Tier   { return TierHot }

// Upload writes b.Bytes under a freshly generated UUID. Two uploads of
// identical bytes produce two distinct locations, matching (P8).
func (l *LocalBackend) Upload(ctx context.Context, b *block.Block) (block.Location, error) {
	id := uuid.NewString()
	path := l.pathFor(id)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return block.Location{}, isgerr.Wrap(isgerr.CodeIO, "creating block directory", err)
	}
	if err := os.WriteFile(path, b.Bytes, 0o644); err != nil {
		return block.Location{}, isgerr.Wrap(isgerr.CodeIO, "writing block file", err)
	}

	return block.Location{
		Platform:   l.Name(),
		Identifier: id,
		Metadata: block.StorageMetadata{
			UploadedAt: time.Now().UTC(),
			StoredSize: b.Size,
		},
	}, nil
}

func (l *LocalBackend) Download(ctx context.Context, loc block.Location) ([]byte, error) {
	data, err := os.ReadFile(l.pathFor(loc.Identifier))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, isgerr.Wrap(isgerr.CodeStorageNotFound, "block file missing", err)
		}
		return nil, isgerr.Wrap(isgerr.CodeIO, "reading block file", err)
	}
	return data, nil
}

func (l *LocalBackend) Delete(ctx context.Context, loc block.Location) error {
	if err := os.Remove(l.pathFor(loc.Identifier)); err != nil && !os.IsNotExist(err) {
		return isgerr.Wrap(isgerr.CodeIO, "deleting block file", err)
	}
	return nil
}

// List walks the backend's directory tree, returning every stored block as
// a Location.
func (l *LocalBackend) List(ctx context.Context) ([]block.Location, error) {
	var locations []block.Location
	err := filepath.WalkDir(l.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		locations = append(locations, block.Location{
			Platform:   l.Name(),
			Identifier: d.Name(),
			Metadata: block.StorageMetadata{
				UploadedAt: info.ModTime().UTC(),
				StoredSize: int(info.Size()),
			},
		})
		return nil
	})
	if err != nil {
		return nil, isgerr.Wrap(isgerr.CodeIO, "walking local backend root", err)
	}
	return locations, nil
}

func (l *LocalBackend) Exists(ctx context.Context, loc block.Location) (bool, error) {
	return Exists(ctx, l, loc)
}

func (l *LocalBackend) Verify(ctx context.Context, loc block.Location, expected crypto.Fingerprint) (bool, error) {
	return Verify(ctx, l, loc, expected)
}
