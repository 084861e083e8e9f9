package block

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAndVerify(t *testing.T) {
	data := []byte("test data")
	b := FromData(data)

	require.Equal(t, data, b.Bytes)
	require.Equal(t, len(data), b.Size)
	require.True(t, b.Verify())
}

func TestVerifyDetectsCorruption(t *testing.T) {
	b := FromData([]byte("test data"))
	require.True(t, b.Verify())

	b.Bytes[0] ^= 1
	require.False(t, b.Verify())
}

func TestAddLocationIdempotent(t *testing.T) {
	b := FromData([]byte("x"))
	loc := Location{Platform: "local", Identifier: "abc"}

	b.AddLocation(loc)
	b.AddLocation(loc)
	require.Len(t, b.Locations, 1)

	b.AddLocation(Location{Platform: "local", Identifier: "def"})
	require.Len(t, b.Locations, 2)
}

func TestDescriptorDefaults(t *testing.T) {
	d := NewDescriptor()
	require.Equal(t, "raw", d.Encoding)
	require.False(t, d.IsParity)
	require.Empty(t, d.Compression)
	require.Empty(t, d.Encryption)
	require.False(t, d.CreatedAt.IsZero())
}
