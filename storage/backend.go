// Package storage defines the storage-backend abstraction every block
// lands in, plus two reference implementations (a local filesystem store
// and an HTTP webhook "attachment" store) and a dispatcher that routes
// between an ordered collection of backends.
package storage

import (
	"context"

	"github.com/lessuseless-systems/infinite-storage-glitch/block"
	"github.com/lessuseless-systems/infinite-storage-glitch/crypto"
	"github.com/lessuseless-systems/infinite-storage-glitch/isgerr"
)

// Tier is a coarse, static classification of a backend's latency/cost
// profile.
type Tier string

const (
	TierHot  Tier = "hot"
	TierWarm Tier = "warm"
	TierCold Tier = "cold"
)

// Backend is the capability every storage implementation must provide.
// Download must return exactly the bytes a prior Upload was given; Delete
// may be a best-effort no-op on write-only platforms, but must not error in
// that case. List may fail with isgerr.CodeStorageUnsupported where
// enumeration is impossible.
type Backend interface {
	Name() string
	Tier() Tier
	Upload(ctx context.Context, b *block.Block) (block.Location, error)
	Download(ctx context.Context, loc block.Location) ([]byte, error)
	Delete(ctx context.Context, loc block.Location) error
	List(ctx context.Context) ([]block.Location, error)
	Exists(ctx context.Context, loc block.Location) (bool, error)
	Verify(ctx context.Context, loc block.Location, expected crypto.Fingerprint) (bool, error)
}

// Exists is the default implementation shared by backends: a location
// exists iff it can be downloaded without error.
func Exists(ctx context.Context, b Backend, loc block.Location) (bool, error) {
	_, err := b.Download(ctx, loc)
	if err != nil {
		if isgerr.Is(err, isgerr.CodeStorageNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Verify is the default implementation shared by backends: a location's
// contents are verified by re-downloading and comparing fingerprints.
func Verify(ctx context.Context, b Backend, loc block.Location, expected crypto.Fingerprint) (bool, error) {
	data, err := b.Download(ctx, loc)
	if err != nil {
		return false, err
	}
	return crypto.Sum(data) == expected, nil
}
