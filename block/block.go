// Package block defines the content-addressable Block, the unit of storage
// that every backend, codec, and index entry in this system operates on.
package block

import (
	"time"

	"github.com/lessuseless-systems/infinite-storage-glitch/crypto"
)

// Location is a single place a Block's bytes can be retrieved from: a
// backend name plus whatever identifier that backend needs to find the
// bytes again (a UUID for the local store, a CDN URL for the attachment
// store).
type Location struct {
	Platform   string         `json:"platform"`
	Identifier string         `json:"identifier"`
	Metadata   StorageMetadata `json:"metadata"`
}

// StorageMetadata records what a backend observed about a particular upload.
type StorageMetadata struct {
	UploadedAt time.Time      `json:"uploaded_at"`
	URL        string         `json:"url,omitempty"`
	StoredSize int            `json:"stored_size"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// Descriptor records how a Block's bytes were produced: which codec wrote
// them, whether they are erasure-coded parity, and any compression or
// encryption layered underneath.
type Descriptor struct {
	Encoding    string    `json:"encoding"`
	IsParity    bool      `json:"is_parity"`
	Compression string    `json:"compression,omitempty"`
	Encryption  string    `json:"encryption,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDescriptor returns a Descriptor for a plain, unencoded block.
func NewDescriptor() Descriptor {
	return Descriptor{Encoding: "raw", CreatedAt: time.Now().UTC()}
}

// Block is an immutable byte range identified by the fingerprint of its
// contents. Bytes may already be compressed and/or encrypted by the time
// they reach a Block; the Fingerprint is always computed over exactly what
// is stored in Bytes.
type Block struct {
	Fingerprint crypto.Fingerprint `json:"fingerprint"`
	Bytes       []byte             `json:"-"`
	Size        int                `json:"size"`
	Descriptor  Descriptor         `json:"descriptor"`
	Locations   []Location         `json:"locations"`
}

// New constructs a Block from bytes, computing its fingerprint.
func New(data []byte, desc Descriptor) *Block {
	return &Block{
		Fingerprint: crypto.Sum(data),
		Bytes:       data,
		Size:        len(data),
		Descriptor:  desc,
	}
}

// FromData constructs a Block from bytes using a default raw Descriptor.
func FromData(data []byte) *Block {
	return New(data, NewDescriptor())
}

// AddLocation records a storage location, skipping the insert if an
// identical (platform, identifier) pair is already present.
func (b *Block) AddLocation(loc Location) {
	for _, existing := range b.Locations {
		if existing.Platform == loc.Platform && existing.Identifier == loc.Identifier {
			return
		}
	}
	b.Locations = append(b.Locations, loc)
}

// Verify reports whether Fingerprint still matches Bytes, catching silent
// corruption of the in-memory buffer.
func (b *Block) Verify() bool {
	return crypto.Sum(b.Bytes) == b.Fingerprint
}
