// Package codec implements the lossless byte-to-image-frame-sequence
// transforms: a bi-level pixel/raster codec, a tri-channel color variant,
// and a 2D barcode-grid codec. All three share one container layout so the
// orchestrator can treat any encoded buffer identically regardless of which
// codec produced it.
package codec

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"

	"github.com/lessuseless-systems/infinite-storage-glitch/isgerr"
)

// containerHeaderSize is the byte length of the frame_count + original_size
// prefix that precedes the per-frame blobs.
const containerHeaderSize = 4 + 8

// writeContainer serializes frameCount, originalSize, and a sequence of
// already-PNG-encoded frame blobs into the shared container layout:
// [frame_count u32 LE][original_size u64 LE]{[length u32 LE][png bytes]}*.
func writeContainer(originalSize uint64, frames [][]byte) []byte {
	var buf bytes.Buffer
	var hdr [containerHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(len(frames)))
	binary.LittleEndian.PutUint64(hdr[4:12], originalSize)
	buf.Write(hdr[:])

	for _, frame := range frames {
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(frame)))
		buf.Write(lenBuf[:])
		buf.Write(frame)
	}
	return buf.Bytes()
}

// readContainer parses the shared container layout, returning the declared
// original size and the raw PNG bytes of each frame in order.
func readContainer(encoded []byte) (originalSize uint64, frames [][]byte, err error) {
	if len(encoded) < containerHeaderSize {
		return 0, nil, isgerr.New(isgerr.CodeCodecTruncated, "container shorter than header")
	}

	frameCount := binary.LittleEndian.Uint32(encoded[0:4])
	originalSize = binary.LittleEndian.Uint64(encoded[4:12])
	cursor := containerHeaderSize

	frames = make([][]byte, 0, frameCount)
	for i := uint32(0); i < frameCount; i++ {
		if cursor+4 > len(encoded) {
			return 0, nil, isgerr.New(isgerr.CodeCodecTruncated, "frame length prefix overruns buffer")
		}
		frameLen := int(binary.LittleEndian.Uint32(encoded[cursor : cursor+4]))
		cursor += 4

		if frameLen < 0 || cursor+frameLen > len(encoded) {
			return 0, nil, isgerr.New(isgerr.CodeCodecTruncated, "frame blob overruns buffer")
		}
		frames = append(frames, encoded[cursor:cursor+frameLen])
		cursor += frameLen
	}
	return originalSize, frames, nil
}

// encodePNG renders img as a lossless PNG.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, isgerr.Wrap(isgerr.CodeCodecFormat, "encoding frame as PNG", err)
	}
	return buf.Bytes(), nil
}

// decodePNG parses a frame blob as a PNG image, failing codec-format on any
// decode error (including a blob that is not a PNG at all).
func decodePNG(blob []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(blob))
	if err != nil {
		return nil, isgerr.Wrap(isgerr.CodeCodecFormat, "decoding frame PNG", err)
	}
	return img, nil
}

// getBit returns the bit at bitIndex of data, MSB-first, or false (zero
// padding) past the end of data.
func getBit(data []byte, bitIndex int) bool {
	byteIndex := bitIndex / 8
	if byteIndex >= len(data) {
		return false
	}
	bitOffset := 7 - uint(bitIndex%8)
	return (data[byteIndex]>>bitOffset)&1 == 1
}

// bitsToBytes reassembles a sequence of MSB-first bits into bytes, truncated
// to originalSize.
func bitsToBytes(bits []bool, originalSize uint64) []byte {
	out := make([]byte, 0, originalSize)
	var cur byte
	var count int
	for _, bit := range bits {
		cur <<= 1
		if bit {
			cur |= 1
		}
		count++
		if count == 8 {
			out = append(out, cur)
			cur, count = 0, 0
			if uint64(len(out)) >= originalSize {
				break
			}
		}
	}
	if uint64(len(out)) > originalSize {
		out = out[:originalSize]
	}
	return out
}
