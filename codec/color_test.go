package codec

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColorCodecRoundTrip(t *testing.T) {
	c := NewColorCodec()
	data := []byte("Color codecs pack three bits per macropixel.")

	encoded, err := c.Encode(data)
	require.NoError(t, err)

	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, data, decoded)
}

func TestColorCodecSmallerThanPixelEncoding(t *testing.T) {
	// 40000 bytes is 320000 bits: three pixel frames at the defaults
	// (129600 bits per frame) but a single color frame (388800 bits).
	data := make([]byte, 40000)
	for i := range data {
		data[i] = byte(i)
	}

	pixelEncoded, err := NewPixelCodec().Encode(data)
	require.NoError(t, err)
	colorEncoded, err := NewColorCodec().Encode(data)
	require.NoError(t, err)

	// Three bits per macropixel means fewer frames for the same canvas; the
	// frame count is the first field of the container header.
	require.Equal(t, uint32(3), binary.LittleEndian.Uint32(pixelEncoded[0:4]))
	require.Equal(t, uint32(1), binary.LittleEndian.Uint32(colorEncoded[0:4]))
}

func TestColorCodecEmptyInput(t *testing.T) {
	c := NewColorCodec()
	encoded, err := c.Encode(nil)
	require.NoError(t, err)
	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	require.Empty(t, decoded)
}
