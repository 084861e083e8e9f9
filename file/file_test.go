package file

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lessuseless-systems/infinite-storage-glitch/crypto"
)

func TestMerkleRootSingleBlock(t *testing.T) {
	fp := crypto.Sum([]byte("test"))
	f := New("/test/file.txt", []crypto.Fingerprint{fp}, NewMetadata(4))
	require.Equal(t, fp, f.RootFingerprint)
}

func TestMerkleRootMultipleBlocks(t *testing.T) {
	fp1 := crypto.Sum([]byte("block1"))
	fp2 := crypto.Sum([]byte("block2"))
	f := New("/test/file.txt", []crypto.Fingerprint{fp1, fp2}, NewMetadata(12))

	require.NotEqual(t, fp1, f.RootFingerprint)
	require.NotEqual(t, fp2, f.RootFingerprint)

	root2 := New("/test/file.txt", []crypto.Fingerprint{fp1, fp2}, NewMetadata(12))
	require.Equal(t, f.RootFingerprint, root2.RootFingerprint)
}

func TestFileVerify(t *testing.T) {
	fp1 := crypto.Sum([]byte("block1"))
	fp2 := crypto.Sum([]byte("block2"))
	f := New("/test/file.txt", []crypto.Fingerprint{fp1, fp2}, NewMetadata(12))
	require.True(t, f.Verify())

	f.RootFingerprint = crypto.Sum([]byte("wrong"))
	require.False(t, f.Verify())
}

func TestSizeAndBlockCount(t *testing.T) {
	fp1 := crypto.Sum([]byte("block1"))
	fp2 := crypto.Sum([]byte("block2"))
	f := New("/test/file.txt", []crypto.Fingerprint{fp1, fp2}, NewMetadata(12))
	require.EqualValues(t, 12, f.Size())
	require.Equal(t, 2, f.BlockCount())
}
