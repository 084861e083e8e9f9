// Package file models the logical file stored in the system: a path, an
// ordered manifest of block fingerprints, and the Merkle root that binds
// them together.
package file

import (
	"time"

	"github.com/lessuseless-systems/infinite-storage-glitch/crypto"
)

// Metadata carries descriptive information about a stored file. UserMetadata
// is a free-form bag for caller-supplied tags.
type Metadata struct {
	Size         uint64            `json:"size"`
	MimeType     string            `json:"mime_type,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	ModifiedAt   time.Time         `json:"modified_at"`
	AccessedAt   time.Time         `json:"accessed_at"`
	Permissions  *uint32           `json:"permissions,omitempty"`
	OriginalPath string            `json:"original_path,omitempty"`
	UserMetadata map[string]string `json:"user_metadata,omitempty"`
}

// NewMetadata returns Metadata stamped with the current time for all three
// timestamp fields, matching a freshly ingested file.
func NewMetadata(size uint64) Metadata {
	now := time.Now().UTC()
	return Metadata{Size: size, CreatedAt: now, ModifiedAt: now, AccessedAt: now}
}

// File is the logical record of a stored file: its path, the ordered
// sequence of block fingerprints that reconstruct its bytes, and the Merkle
// root of that sequence.
type File struct {
	Path              string
	RootFingerprint   crypto.Fingerprint
	BlockFingerprints []crypto.Fingerprint
	Metadata          Metadata
}

// New constructs a File, computing its root fingerprint from the ordered
// block fingerprint manifest.
func New(path string, blockFingerprints []crypto.Fingerprint, meta Metadata) *File {
	return &File{
		Path:              path,
		RootFingerprint:   crypto.MerkleRoot(blockFingerprints),
		BlockFingerprints: blockFingerprints,
		Metadata:          meta,
	}
}

// Verify reports whether RootFingerprint still matches the recomputed
// Merkle root of BlockFingerprints.
func (f *File) Verify() bool {
	return crypto.MerkleRoot(f.BlockFingerprints) == f.RootFingerprint
}

// Size returns the file's logical byte size.
func (f *File) Size() uint64 {
	return f.Metadata.Size
}

// BlockCount returns the number of blocks composing the file.
func (f *File) BlockCount() int {
	return len(f.BlockFingerprints)
}
