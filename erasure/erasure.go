// Package erasure wraps Reed-Solomon erasure coding over GF(2^8), splitting
// a byte buffer into N data shards plus K parity shards so that any N of
// the N+K shards suffice to reconstruct the original bytes.
package erasure

import (
	"github.com/klauspost/reedsolomon"

	"github.com/lessuseless-systems/infinite-storage-glitch/isgerr"
)

// Coder encodes and reconstructs byte buffers using a fixed (data, parity)
// shard configuration.
type Coder struct {
	dataShards   int
	parityShards int
	enc          reedsolomon.Encoder
}

// New constructs a Coder for the given number of data and parity shards.
func New(dataShards, parityShards int) (*Coder, error) {
	enc, err := reedsolomon.New(dataShards, parityShards)
	if err != nil {
		return nil, isgerr.Wrap(isgerr.CodeErasureInternal, "constructing reed-solomon encoder", err)
	}
	return &Coder{dataShards: dataShards, parityShards: parityShards, enc: enc}, nil
}

// DataShards returns the configured number of data shards (N).
func (c *Coder) DataShards() int { return c.dataShards }

// ParityShards returns the configured number of parity shards (K).
func (c *Coder) ParityShards() int { return c.parityShards }

// TotalShards returns N+K.
func (c *Coder) TotalShards() int { return c.dataShards + c.parityShards }

// Encode splits data into DataShards() equal-length data shards (zero-padded
// in the final shard if necessary) and computes ParityShards() parity
// shards, returning all N+K shards in order.
func (c *Coder) Encode(data []byte) ([][]byte, error) {
	shards, err := c.enc.Split(data)
	if err != nil {
		return nil, isgerr.Wrap(isgerr.CodeErasureInternal, "splitting data into shards", err)
	}
	if err := c.enc.Encode(shards); err != nil {
		return nil, isgerr.Wrap(isgerr.CodeErasureInternal, "computing parity shards", err)
	}
	return shards, nil
}

// Reconstruct rebuilds the original data from a possibly incomplete set of
// shards. A nil entry in shards marks that shard as missing. originalSize is
// the length of the pre-encoding buffer, used to truncate the zero-padding
// applied by Encode. Reconstruction fails with CodeErasureInsufficient if
// fewer than DataShards() shards are present.
func (c *Coder) Reconstruct(shards [][]byte, originalSize int) ([]byte, error) {
	available := 0
	for _, s := range shards {
		if s != nil {
			available++
		}
	}
	if available < c.dataShards {
		return nil, isgerr.New(isgerr.CodeErasureInsufficient, "not enough shards to reconstruct")
	}

	if err := c.enc.Reconstruct(shards); err != nil {
		return nil, isgerr.Wrap(isgerr.CodeErasureInternal, "reconstructing shards", err)
	}

	result := make([]byte, 0, originalSize)
	for i := 0; i < c.dataShards; i++ {
		result = append(result, shards[i]...)
	}
	if len(result) < originalSize {
		return nil, isgerr.New(isgerr.CodeErasureInternal, "reconstructed data shorter than original size")
	}
	return result[:originalSize], nil
}
