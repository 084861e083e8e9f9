package crypto

// hash.go supplies the content fingerprint used to identify blocks, using
// the same BLAKE2b-256 digest the teacher's own crypto.NewHash() builds on.

import (
	"encoding/hex"
	"encoding/json"
	"errors"

	"golang.org/x/crypto/blake2b"
)

const (
	// FingerprintSize is the length in bytes of a Fingerprint.
	FingerprintSize = 32
)

type (
	// Fingerprint is a 256-bit content hash. Two byte strings with the same
	// Fingerprint are treated as equal throughout the system.
	Fingerprint [FingerprintSize]byte

	// FingerprintSlice is used for sorting.
	FingerprintSlice []Fingerprint
)

var (
	// ErrFingerprintWrongLen is returned when decoding a value that cannot
	// possibly be a Fingerprint.
	ErrFingerprintWrongLen = errors.New("encoded value has the wrong length to be a fingerprint")
)

// Sum computes the Fingerprint of data.
func Sum(data []byte) Fingerprint {
	return Fingerprint(blake2b.Sum256(data))
}

// Hex renders the Fingerprint as lowercase hex, the canonical text form.
func (f Fingerprint) Hex() string {
	return hex.EncodeToString(f[:])
}

// String prints the fingerprint in hex.
func (f Fingerprint) String() string {
	return f.Hex()
}

// FromHex parses the canonical hex rendering of a Fingerprint, rejecting
// non-hex input and any length other than 2*FingerprintSize characters.
func FromHex(s string) (Fingerprint, error) {
	var f Fingerprint
	if len(s) != FingerprintSize*2 {
		return f, ErrFingerprintWrongLen
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return f, err
	}
	copy(f[:], b)
	return f, nil
}

// IsZero reports whether f is the zero-value fingerprint.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// These methods implement sort.Interface, allowing fingerprints to be sorted.
func (fs FingerprintSlice) Len() int      { return len(fs) }
func (fs FingerprintSlice) Swap(i, j int) { fs[i], fs[j] = fs[j], fs[i] }
func (fs FingerprintSlice) Less(i, j int) bool {
	return fs[i].Hex() < fs[j].Hex()
}

// MarshalJSON marshals a fingerprint as a hex string.
func (f Fingerprint) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON decodes the JSON hex string of the fingerprint.
func (f *Fingerprint) UnmarshalJSON(b []byte) error {
	// *2 because there are 2 hex characters per byte.
	// +2 because the encoded JSON string has a `"` added at the beginning and end.
	if len(b) != FingerprintSize*2+2 {
		return ErrFingerprintWrongLen
	}
	decoded, err := hex.DecodeString(string(b[1 : len(b)-1]))
	if err != nil {
		return errors.New("could not unmarshal crypto.Fingerprint: " + err.Error())
	}
	copy(f[:], decoded)
	return nil
}
