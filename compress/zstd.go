// Package compress provides optional zstd compression of plaintext buffers
// before they are encrypted and/or encoded, recorded in a Block's
// Descriptor.Compression field.
package compress

import (
	"github.com/klauspost/compress/zstd"

	"github.com/lessuseless-systems/infinite-storage-glitch/isgerr"
)

// Name is the Descriptor.Compression value recorded for zstd-compressed
// blocks.
const Name = "zstd"

// Compress returns the zstd-compressed form of data at the default
// compression level.
func Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, isgerr.Wrap(isgerr.CodeOther, "constructing zstd encoder", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data))), nil
}

// Decompress inverts Compress.
func Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, isgerr.Wrap(isgerr.CodeOther, "constructing zstd decoder", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, isgerr.Wrap(isgerr.CodeCodecDecode, "zstd decompression failed", err)
	}
	return out, nil
}
