package storage

import (
	"context"
	"fmt"

	"github.com/lessuseless-systems/infinite-storage-glitch/block"
	"github.com/lessuseless-systems/infinite-storage-glitch/isgerr"
)

// Dispatcher holds an ordered collection of backends and routes uploads by
// index and downloads by matching a Location's platform to a backend's
// Name(). It performs no retry or tier selection of its own.
type Dispatcher struct {
	backends []Backend
}

// NewDispatcher returns a Dispatcher over the given ordered backends.
func NewDispatcher(backends ...Backend) *Dispatcher {
	return &Dispatcher{backends: backends}
}

// Backends returns the ordered backend collection.
func (d *Dispatcher) Backends() []Backend {
	return d.backends
}

// UploadTo routes b to the backend at index, failing
// isgerr.CodeStorageRouteMissing if index is out of range.
func (d *Dispatcher) UploadTo(ctx context.Context, index int, b *block.Block) (block.Location, error) {
	if index < 0 || index >= len(d.backends) {
		return block.Location{}, isgerr.New(isgerr.CodeStorageRouteMissing, fmt.Sprintf("no backend registered at index %d", index))
	}
	return d.backends[index].Upload(ctx, b)
}

// Download selects the backend whose Name() matches loc.Platform and
// downloads from it, failing isgerr.CodeStorageRouteMissing if none
// matches.
func (d *Dispatcher) Download(ctx context.Context, loc block.Location) ([]byte, error) {
	backend, err := d.backendFor(loc.Platform)
	if err != nil {
		return nil, err
	}
	return backend.Download(ctx, loc)
}

// Delete routes a delete to the backend owning loc.Platform.
func (d *Dispatcher) Delete(ctx context.Context, loc block.Location) error {
	backend, err := d.backendFor(loc.Platform)
	if err != nil {
		return err
	}
	return backend.Delete(ctx, loc)
}

func (d *Dispatcher) backendFor(platform string) (Backend, error) {
	for _, b := range d.backends {
		if b.Name() == platform {
			return b, nil
		}
	}
	return nil, isgerr.New(isgerr.CodeStorageRouteMissing, fmt.Sprintf("no backend registered for platform %q", platform))
}
