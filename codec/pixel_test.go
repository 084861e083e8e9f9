package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPixelCodecRoundTrip(t *testing.T) {
	c := NewPixelCodec()
	data := []byte("Hello, ISG World! This is a test of the pixel encoder.")

	encoded, err := c.Encode(data)
	require.NoError(t, err)

	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, data, decoded)
}

func TestPixelCodecEmptyInput(t *testing.T) {
	c := NewPixelCodec()
	encoded, err := c.Encode(nil)
	require.NoError(t, err)

	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	require.Empty(t, decoded)
}

func TestPixelCodecSmallBlockSize(t *testing.T) {
	c := NewPixelCodec()
	c.BlockSize = 2
	data := []byte("Small blocks!")

	encoded, err := c.Encode(data)
	require.NoError(t, err)
	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, data, decoded)
}

func TestPixelCodecNonByteAlignedLength(t *testing.T) {
	c := NewPixelCodec()
	c.Width, c.Height, c.BlockSize = 64, 64, 8 // bits_per_frame = 64, not a multiple of data length in bits
	data := []byte("odd")

	encoded, err := c.Encode(data)
	require.NoError(t, err)
	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, data, decoded)
}

func TestPixelCodecRejectsTruncatedContainer(t *testing.T) {
	c := NewPixelCodec()
	_, err := c.Decode([]byte{1, 2, 3})
	require.Error(t, err)
}
