// Package index persists the catalog of files, blocks, and chunk locations
// so a later session can locate, verify, and reassemble what was uploaded.
// It wraps gorm.io/gorm over a pure-Go SQLite driver (glebarez/sqlite) and
// exposes CRUD operations over four tables matching the relational index
// described for this system: FileRecord, the file_blocks manifest join
// table, BlockRecord, and ChunkRecord.
package index

import (
	"time"
)

// FileRecord is the top-level catalog entry for a stored file. Path is
// unique (I5): re-uploading the same path is a caller-level decision, not
// one the index makes for them. Salt is the per-file random KDF salt
// (resolving the hardcoded-salt defect), generated once at upload time and
// reused verbatim on every subsequent download.
type FileRecord struct {
	ID              uint      `gorm:"primaryKey"`
	Path            string    `gorm:"uniqueIndex;not null"`
	RootFingerprint []byte    `gorm:"size:32;not null"`
	Salt            []byte    `gorm:"size:16;not null"`
	Size            uint64    `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
	ModifiedAt      time.Time `gorm:"not null"`
	AccessedAt      time.Time `gorm:"not null"`

	Blocks []FileBlock `gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE"`
}

// FileBlock is the ordered manifest binding a File to its sequence of block
// fingerprints: row (file_id, sequence) is the file's position-i block.
// Persisting this table (rather than deriving order from a single
// file-to-block foreign key) is what lets a multi-block file's manifest
// round-trip through the index — see §9's flagged single-block bug in the
// original design.
type FileBlock struct {
	ID               uint   `gorm:"primaryKey"`
	FileID           uint   `gorm:"not null;index:idx_file_blocks_file_seq,unique"`
	Sequence         int    `gorm:"not null;index:idx_file_blocks_file_seq,unique"`
	BlockFingerprint []byte `gorm:"size:32;not null;index"`
}

func (FileBlock) TableName() string { return "file_blocks" }

// BlockRecord is a content-addressed block: write-once (I4), keyed by its
// fingerprint rather than a surrogate ID. Encoding names the codec that
// produced the bytes ("none" when the upload ran no codec); Compression names the pre-encryption compression
// stage applied (empty if none); IsParity marks an erasure-coded parity
// shard rather than a data shard.
type BlockRecord struct {
	Fingerprint []byte    `gorm:"primaryKey;size:32"`
	Size        int       `gorm:"not null"`
	Encoding    string    `gorm:"not null"`
	Compression string
	IsParity    bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`

	Chunks []ChunkRecord `gorm:"foreignKey:BlockFingerprint;references:Fingerprint;constraint:OnDelete:CASCADE"`
}

// ChunkRecord is one storage copy of a block: a (platform, identifier) pair
// a Backend can resolve back to bytes. A block with N+K erasure shards has
// N+K chunk rows, each IsParity-tagged per its shard's role.
type ChunkRecord struct {
	ID               uint      `gorm:"primaryKey"`
	BlockFingerprint []byte    `gorm:"not null;index"`
	Platform         string    `gorm:"not null"`
	Identifier       string    `gorm:"not null"`
	IsParity         bool      `gorm:"not null"`
	UploadedAt       time.Time `gorm:"not null"`
}
