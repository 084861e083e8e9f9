package codec

import (
	"image"
	"image/color"

	"github.com/lessuseless-systems/infinite-storage-glitch/isgerr"
)

// PixelCodec encodes a byte buffer as a deterministic sequence of bi-level
// raster frames: one macropixel (a blockSize x blockSize square) carries one
// bit, black for 1 and white for 0, laid out row-major within each frame.
type PixelCodec struct {
	BlockSize  int
	Width      int
	Height     int
	Threshold  uint8
}

// NewPixelCodec returns a PixelCodec at the reference defaults: 4-pixel
// macropixels on a 1920x1080 canvas, decoder threshold 128.
func NewPixelCodec() *PixelCodec {
	return &PixelCodec{BlockSize: 4, Width: 1920, Height: 1080, Threshold: 128}
}

func (c *PixelCodec) blocksPerSide() (bx, by int) {
	return c.Width / c.BlockSize, c.Height / c.BlockSize
}

func (c *PixelCodec) bitsPerFrame() int {
	bx, by := c.blocksPerSide()
	return bx * by
}

// Encode renders data into the shared container format of length-prefixed
// PNG frames.
func (c *PixelCodec) Encode(data []byte) ([]byte, error) {
	bitsPerFrame := c.bitsPerFrame()
	totalBits := len(data) * 8
	frameCount := (totalBits + bitsPerFrame - 1) / bitsPerFrame
	if frameCount == 0 {
		frameCount = 1
	}

	bx, by := c.blocksPerSide()
	frames := make([][]byte, 0, frameCount)
	bitIndex := 0

	for f := 0; f < frameCount; f++ {
		img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
		for by_ := 0; by_ < by; by_++ {
			for bx_ := 0; bx_ < bx; bx_++ {
				bit := getBit(data, bitIndex)
				bitIndex++

				var shade uint8 = 255
				if bit {
					shade = 0
				}
				fillBlock(img, bx_, by_, c.BlockSize, color.RGBA{R: shade, G: shade, B: shade, A: 255})
			}
		}

		blob, err := encodePNG(img)
		if err != nil {
			return nil, err
		}
		frames = append(frames, blob)
	}

	return writeContainer(uint64(len(data)), frames), nil
}

// Decode parses the container, decodes each frame, and reassembles the
// original bytes by averaging each macropixel's RGB channels and comparing
// against Threshold.
func (c *PixelCodec) Decode(encoded []byte) ([]byte, error) {
	originalSize, frameBlobs, err := readContainer(encoded)
	if err != nil {
		return nil, err
	}

	bx, by := c.blocksPerSide()
	var bits []bool

	for _, blob := range frameBlobs {
		img, err := decodePNG(blob)
		if err != nil {
			return nil, err
		}
		bounds := img.Bounds()
		if bounds.Dx() != c.Width || bounds.Dy() != c.Height {
			return nil, isgerr.New(isgerr.CodeCodecFormat, "frame dimensions do not match codec parameters")
		}

		for by_ := 0; by_ < by; by_++ {
			for bx_ := 0; bx_ < bx; bx_++ {
				bits = append(bits, readBlockBit(img, bx_, by_, c.BlockSize, c.Threshold))
			}
		}
	}

	out := bitsToBytes(bits, originalSize)
	if uint64(len(out)) < originalSize {
		return nil, isgerr.New(isgerr.CodeCodecTruncated, "reassembled stream shorter than original_size")
	}
	return out, nil
}

func fillBlock(img *image.RGBA, blockX, blockY, blockSize int, c color.RGBA) {
	startX, startY := blockX*blockSize, blockY*blockSize
	for dy := 0; dy < blockSize; dy++ {
		for dx := 0; dx < blockSize; dx++ {
			x, y := startX+dx, startY+dy
			if x < img.Bounds().Dx() && y < img.Bounds().Dy() {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// readBlockBit averages RGB across a macropixel and reports whether the
// average falls strictly below threshold (black, bit 1).
func readBlockBit(img image.Image, blockX, blockY, blockSize int, threshold uint8) bool {
	startX, startY := blockX*blockSize, blockY*blockSize
	bounds := img.Bounds()

	var sum, count uint64
	for dy := 0; dy < blockSize; dy++ {
		for dx := 0; dx < blockSize; dx++ {
			x, y := startX+dx, startY+dy
			if x >= bounds.Dx() || y >= bounds.Dy() {
				continue
			}
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA() returns 16-bit-scaled channels; reduce to 8-bit.
			sum += uint64(r>>8) + uint64(g>>8) + uint64(b>>8)
			count += 3
		}
	}
	if count == 0 {
		return false
	}
	avg := sum / count
	return avg < uint64(threshold)
}
