package codec

import (
	"image"
	"image/color"

	"github.com/lessuseless-systems/infinite-storage-glitch/isgerr"
)

// ColorCodec is the supplemented three-bits-per-macropixel variant of
// PixelCodec: each macropixel's red, green, and blue channels are
// thresholded independently, each carrying one bit, tripling throughput per
// frame relative to the bi-level pixel codec. Container framing is
// identical to PixelCodec.
type ColorCodec struct {
	BlockSize int
	Width     int
	Height    int
	Threshold uint8
}

// NewColorCodec returns a ColorCodec at the same canvas defaults as
// NewPixelCodec.
func NewColorCodec() *ColorCodec {
	return &ColorCodec{BlockSize: 4, Width: 1920, Height: 1080, Threshold: 128}
}

func (c *ColorCodec) blocksPerSide() (bx, by int) {
	return c.Width / c.BlockSize, c.Height / c.BlockSize
}

func (c *ColorCodec) bitsPerFrame() int {
	bx, by := c.blocksPerSide()
	return 3 * bx * by
}

func channelShade(bit bool) uint8 {
	if bit {
		return 0
	}
	return 255
}

// Encode packs 3 bits per macropixel, one per RGB channel.
func (c *ColorCodec) Encode(data []byte) ([]byte, error) {
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
				rBit := getBit(data, bitIndex)
				bitIndex++
				gBit := getBit(data, bitIndex)
				bitIndex++
				bBit := getBit(data, bitIndex)
				bitIndex++

				px := color.RGBA{
					R: channelShade(rBit),
					G: channelShade(gBit),
					B: channelShade(bBit),
					A: 255,
				}
				fillBlock(img, bx_, by_, c.BlockSize, px)
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

// Decode reads each macropixel's three channels independently, thresholding
// each against Threshold, and reassembles the original bytes.
func (c *ColorCodec) Decode(encoded []byte) ([]byte, error) {
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
				r, g, b := readBlockChannels(img, bx_, by_, c.BlockSize)
				bits = append(bits, r < uint64(c.Threshold), g < uint64(c.Threshold), b < uint64(c.Threshold))
			}
		}
	}

	out := bitsToBytes(bits, originalSize)
	if uint64(len(out)) < originalSize {
		return nil, isgerr.New(isgerr.CodeCodecTruncated, "reassembled stream shorter than original_size")
	}
	return out, nil
}

// readBlockChannels averages each RGB channel independently across a
// macropixel.
func readBlockChannels(img image.Image, blockX, blockY, blockSize int) (r, g, b uint64) {
	startX, startY := blockX*blockSize, blockY*blockSize
	bounds := img.Bounds()

	var sumR, sumG, sumB, count uint64
	for dy := 0; dy < blockSize; dy++ {
		for dx := 0; dx < blockSize; dx++ {
			x, y := startX+dx, startY+dy
			if x >= bounds.Dx() || y >= bounds.Dy() {
				continue
			}
			cr, cg, cb, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			sumR += uint64(cr >> 8)
			sumG += uint64(cg >> 8)
			sumB += uint64(cb >> 8)
			count++
		}
	}
	if count == 0 {
		return 255, 255, 255
	}
	return sumR / count, sumG / count, sumB / count
}
