package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBarcodeCodecRoundTripSingleChunk(t *testing.T) {
	c := NewBarcodeCodec()
	data := []byte("hello qr")

	encoded, err := c.Encode(data)
	require.NoError(t, err)

	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, data, decoded)
}

func TestBarcodeCodecRoundTripMultipleChunks(t *testing.T) {
	c := NewBarcodeCodec()
	data := make([]byte, MaxBytesPerCode*3+5)
	for i := range data {
		data[i] = byte(i * 7)
	}

	encoded, err := c.Encode(data)
	require.NoError(t, err)

	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, data, decoded)
}

func TestBarcodeCodecEmptyInput(t *testing.T) {
	c := NewBarcodeCodec()
	encoded, err := c.Encode(nil)
	require.NoError(t, err)

	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	require.Empty(t, decoded)
}

func TestBarcodeCodecRejectsTruncatedContainer(t *testing.T) {
	c := NewBarcodeCodec()
	_, err := c.Decode([]byte{9, 9})
	require.Error(t, err)
}

func TestMaskFormulasAreDistinct(t *testing.T) {
	// A cheap sanity check that the 8 mask formulas don't collapse into
	// fewer than 8 distinct functions over a small grid.
	seen := make(map[string]bool)
	for pattern := 0; pattern < 8; pattern++ {
		var sig string
		for row := 0; row < 6; row++ {
			for col := 0; col < 6; col++ {
				if applyMask(pattern, row, col) {
					sig += "1"
				} else {
					sig += "0"
				}
			}
		}
		require.False(t, seen[sig], "mask pattern %d collides with another pattern", pattern)
		seen[sig] = true
	}
}
