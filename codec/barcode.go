package codec

import (
	"image"
	"image/color"

	"github.com/boombuler/barcode/qr"

	"github.com/lessuseless-systems/infinite-storage-glitch/isgerr"
)

// BarcodeCodec encodes bytes as a sequence of 2D barcodes (QR symbols), each
// carrying a chunk of the input plus its own Reed-Solomon error-correction
// codewords, framed with the same container layout as PixelCodec.
//
// Scope: the decoder supports exactly QR version 1 at error-correction
// level M, byte mode. boombuler/barcode can encode any version the content
// requires, but writing an interleaving-table-correct decoder for all 40
// versions and 4 ECC levels is out of proportion with the rest of this
// system; MaxBytesPerCode is fixed at the version-1/level-M byte-mode
// capacity (14 bytes) so every chunk always fits a single un-interleaved
// block, keeping the decode path exact rather than approximate. Content
// that would need a larger symbol is simply split into more, smaller
// chunks — throughput suffers, correctness does not.
type BarcodeCodec struct {
	ECCLevel qr.ErrorCorrectionLevel
}

// MaxBytesPerCode is the byte-mode data capacity of a version-1, level-M QR
// symbol (16 data codewords, minus a 4-bit mode indicator and an 8-bit
// count indicator, floored to whole bytes).
const MaxBytesPerCode = 14

const (
	qrSize        = 21 // version 1 module grid side length
	qrTotalCW     = 26 // total codewords (data + EC) for version 1, level M
	qrDataCW      = 16
	qrECCW        = 10
	formatInfoXOR = 0x5412
)

// NewBarcodeCodec returns a BarcodeCodec fixed at error-correction level M,
// matching the format-info level the decoder expects.
func NewBarcodeCodec() *BarcodeCodec {
	return &BarcodeCodec{ECCLevel: qr.M}
}

// Encode splits data into MaxBytesPerCode chunks, renders each as a QR
// symbol, and serializes the sequence using the shared container format.
func (c *BarcodeCodec) Encode(data []byte) ([]byte, error) {
	var chunks [][]byte
	if len(data) == 0 {
		chunks = [][]byte{{}}
	}
	for i := 0; i < len(data); i += MaxBytesPerCode {
		end := i + MaxBytesPerCode
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, data[i:end])
	}

	frames := make([][]byte, 0, len(chunks))
	for _, chunk := range chunks {
		bc, err := qr.Encode(string(chunk), c.ECCLevel, qr.Unicode)
		if err != nil {
			return nil, isgerr.Wrap(isgerr.CodeCodecFormat, "generating QR symbol", err)
		}
		bounds := bc.Bounds()
		if bounds.Dx() != qrSize || bounds.Dy() != qrSize {
			return nil, isgerr.New(isgerr.CodeCodecFormat, "QR symbol exceeded the supported version-1 grid size")
		}

		scale := 512/qrSize + 1
		img := image.NewGray(image.Rect(0, 0, qrSize*scale, qrSize*scale))
		for row := 0; row < qrSize; row++ {
			for col := 0; col < qrSize; col++ {
				dark := isDarkModule(bc, col, row)
				shade := uint8(255)
				if dark {
					shade = 0
				}
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						img.SetGray(col*scale+dx, row*scale+dy, color.Gray{Y: shade})
					}
				}
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

// isDarkModule reports whether the module at (x, y) in a freshly-generated
// QR image is painted dark (binary 1 in QR's convention).
func isDarkModule(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(img.Bounds().Min.X+x, img.Bounds().Min.Y+y).RGBA()
	avg := (r>>8 + g>>8 + b>>8) / 3
	return avg < 128
}

// Decode parses the container, decodes each QR frame back to its chunk of
// bytes, and concatenates the chunks in order.
func (c *BarcodeCodec) Decode(encoded []byte) ([]byte, error) {
	originalSize, frameBlobs, err := readContainer(encoded)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, originalSize)
	for _, blob := range frameBlobs {
		img, err := decodePNG(blob)
		if err != nil {
			return nil, err
		}
		chunk, err := decodeQRSymbol(img)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}

	if uint64(len(out)) < originalSize {
		return nil, isgerr.New(isgerr.CodeCodecTruncated, "reassembled stream shorter than original_size")
	}
	return out[:originalSize], nil
}

// decodeQRSymbol recovers the payload bytes encoded in a single version-1,
// level-M QR image, regardless of its rendered pixel size, by sampling each
// module's center pixel.
func decodeQRSymbol(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w != h || w%qrSize != 0 {
		return nil, isgerr.New(isgerr.CodeCodecFormat, "QR image is not a square multiple of the version-1 grid size")
	}
	scale := w / qrSize

	modules := make([][]bool, qrSize)
	for row := 0; row < qrSize; row++ {
		modules[row] = make([]bool, qrSize)
		for col := 0; col < qrSize; col++ {
			px := col*scale + scale/2
			py := row*scale + scale/2
			modules[row][col] = isDarkModule(img, px, py)
		}
	}

	reserved := buildReservedMask()

	maskPattern, eccLevel, err := readFormatInfo(modules)
	if err != nil {
		return nil, err
	}
	if eccLevel != 0 { // 00 == level M
		return nil, isgerr.New(isgerr.CodeCodecFormat, "QR symbol is not error-correction level M")
	}

	bits := make([]bool, 0, qrTotalCW*8)
	for _, p := range zigzagPositions(reserved) {
		raw := modules[p.row][p.col]
		bits = append(bits, raw != applyMask(maskPattern, p.row, p.col))
	}
	if len(bits) != qrTotalCW*8 {
		return nil, isgerr.New(isgerr.CodeCodecFormat, "unexpected data-bit count for version-1 grid")
	}

	codewords := make([]byte, qrTotalCW)
	for i := range codewords {
		var b byte
		for j := 0; j < 8; j++ {
			b <<= 1
			if bits[i*8+j] {
				b |= 1
			}
		}
		codewords[i] = b
	}

	if !verifySyndromes(codewords) {
		return nil, isgerr.New(isgerr.CodeCodecDecode, "QR Reed-Solomon syndrome check failed")
	}

	return parseByteModePayload(codewords[:qrDataCW])
}

// verifySyndromes reports whether codewords (data+EC) evaluate to zero at
// the first qrECCW powers of the primitive element, i.e. the block is a
// valid Reed-Solomon codeword. Actual error correction (Berlekamp-Massey,
// Chien search, Forney) is out of scope: this only detects corruption.
func verifySyndromes(codewords []byte) bool {
	for i := 0; i < qrECCW; i++ {
		if polyEval(codewords, gf256Pow(2, i)) != 0 {
			return false
		}
	}
	return true
}

// parseByteModePayload reads a 4-bit byte-mode indicator, an 8-bit count
// indicator, and that many payload bytes from the data codewords.
func parseByteModePayload(dataCodewords []byte) ([]byte, error) {
	br := &bitReader{data: dataCodewords}
	mode := br.readBits(4)
	if mode != 0b0100 {
		return nil, isgerr.New(isgerr.CodeCodecFormat, "unsupported QR mode indicator (only byte mode is supported)")
	}
	count := br.readBits(8)
	if count > MaxBytesPerCode {
		return nil, isgerr.New(isgerr.CodeCodecFormat, "QR count indicator exceeds supported chunk size")
	}

	payload := make([]byte, count)
	for i := range payload {
		payload[i] = byte(br.readBits(8))
	}
	return payload, nil
}

type bitReader struct {
	data []byte
	pos  int
}

func (br *bitReader) readBits(n int) int {
	v := 0
	for i := 0; i < n; i++ {
		v <<= 1
		byteIdx := br.pos / 8
		bitIdx := 7 - (br.pos % 8)
		if byteIdx < len(br.data) && (br.data[byteIdx]>>uint(bitIdx))&1 == 1 {
			v |= 1
		}
		br.pos++
	}
	return v
}

type point struct{ row, col int }

// buildReservedMask marks every function module (finder patterns,
// separators, timing patterns, format-info strips, and the dark module)
// for the fixed version-1 (21x21) grid.
func buildReservedMask() [][]bool {
	reserved := make([][]bool, qrSize)
	for i := range reserved {
		reserved[i] = make([]bool, qrSize)
	}
	mark := func(r0, r1, c0, c1 int) {
		for r := r0; r <= r1; r++ {
			for c := c0; c <= c1; c++ {
				reserved[r][c] = true
			}
		}
	}
	mark(0, 7, 0, 7)               // top-left finder + separator
	mark(0, 7, qrSize-8, qrSize-1) // top-right finder + separator
	mark(qrSize-8, qrSize-1, 0, 7) // bottom-left finder + separator
	for i := 0; i < qrSize; i++ {  // timing patterns
		reserved[6][i] = true
		reserved[i][6] = true
	}
	for i := 0; i < 9; i++ { // format info, top-left strips
		reserved[8][i] = true
		reserved[i][8] = true
	}
	for i := 0; i < 8; i++ { // format info, top-right/bottom-left strips (+ dark module)
		reserved[8][qrSize-1-i] = true
		reserved[qrSize-1-i][8] = true
	}
	return reserved
}

// formatInfoPositions lists the 15 format-info module coordinates near the
// top-left finder in MSB-first reading order.
var formatInfoPositions = []point{
	{8, 0}, {8, 1}, {8, 2}, {8, 3}, {8, 4}, {8, 5},
	{8, 7}, {8, 8}, {7, 8},
	{5, 8}, {4, 8}, {3, 8}, {2, 8}, {1, 8}, {0, 8},
}

// readFormatInfo reads and demasks the format-info strip, returning the
// 3-bit mask pattern and the 2-bit ECC-level indicator.
func readFormatInfo(modules [][]bool) (maskPattern, eccLevel int, err error) {
	raw := 0
	for _, p := range formatInfoPositions {
		raw <<= 1
		if modules[p.row][p.col] {
			raw |= 1
		}
	}
	demasked := raw ^ formatInfoXOR
	eccLevel = (demasked >> 13) & 0x3
	maskPattern = (demasked >> 10) & 0x7
	return maskPattern, eccLevel, nil
}

// applyMask evaluates one of the 8 standard QR data-masking formulas.
func applyMask(pattern, row, col int) bool {
	switch pattern {
	case 0:
		return (row+col)%2 == 0
	case 1:
		return row%2 == 0
	case 2:
		return col%3 == 0
	case 3:
		return (row+col)%3 == 0
	case 4:
		return (row/2+col/3)%2 == 0
	case 5:
		return (row*col)%2+(row*col)%3 == 0
	case 6:
		return ((row*col)%2+(row*col)%3)%2 == 0
	case 7:
		return ((row+col)%2+(row*col)%3)%2 == 0
	default:
		return false
	}
}

// zigzagPositions walks the module grid in the standard QR right-to-left,
// two-columns-at-a-time, alternating vertical direction pattern, skipping
// the vertical timing column and any reserved (function) module, yielding
// exactly the positions that carry data+EC codeword bits.
func zigzagPositions(reserved [][]bool) []point {
	var positions []point
	col := qrSize - 1
	upward := true
	for col > 0 {
		if col == 6 {
			col--
		}
		for i := 0; i < qrSize; i++ {
			row := qrSize - 1 - i
			if !upward {
				row = i
			}
			for _, cc := range [2]int{col, col - 1} {
				if !reserved[row][cc] {
					positions = append(positions, point{row, cc})
				}
			}
		}
		upward = !upward
		col -= 2
	}
	return positions
}
