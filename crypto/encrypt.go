package crypto

// encrypt.go contains the authenticated-encryption layer and the
// password-based key derivation function. The cipher is AES-256-GCM; keys
// are derived from a password and a caller-supplied salt via Argon2id.

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"

	"golang.org/x/crypto/argon2"
)

const (
	// KeySize is the length in bytes of an encryption key (AES-256).
	KeySize = 32

	// NonceSize is the length in bytes of a GCM nonce.
	NonceSize = 12

	// SaltSize is the length in bytes of a per-file KDF salt.
	SaltSize = 16
)

var (
	// ErrInsufficientLen is returned when a ciphertext is too short to
	// contain a nonce.
	ErrInsufficientLen = errors.New("crypto: supplied ciphertext is not long enough to contain a nonce")

	// ErrKeyLength is returned when a byte slice cannot be used as a Key.
	ErrKeyLength = errors.New("crypto: key must be exactly KeySize bytes")
)

type (
	// Key is a 256-bit AES key.
	Key [KeySize]byte

	// Ciphertext is the nonce-prefixed output of Seal.
	Ciphertext []byte
)

// NewKey validates and wraps a raw byte slice as a Key.
func NewKey(b []byte) (Key, error) {
	var k Key
	if len(b) != KeySize {
		return k, ErrKeyLength
	}
	copy(k[:], b)
	return k, nil
}

// argon2Params mirrors the source's Argon2id defaults (isg-crypto), tuned
// for an interactive CLI rather than a server request path.
var argon2Params = struct {
	time    uint32
	memory  uint32
	threads uint8
}{time: 3, memory: 64 * 1024, threads: 4}

// DeriveKey derives a 32-byte key from a password and salt using Argon2id.
// The same (password, salt) pair always yields the same key byte-for-byte,
// independent of platform.
func DeriveKey(password string, salt []byte) (Key, error) {
	if len(salt) == 0 {
		return Key{}, errors.New("crypto: salt must not be empty")
	}
	raw := argon2.IDKey([]byte(password), salt, argon2Params.time, argon2Params.memory, argon2Params.threads, KeySize)
	return NewKey(raw)
}

// NewSalt generates a fresh random per-file salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// Seal encrypts plaintext under key with a freshly generated random nonce,
// prepending the nonce (NonceSize bytes) to the returned ciphertext. No
// additional authenticated data is used.
func (k Key) Seal(plaintext []byte) (Ciphertext, error) {
	aead, err := newAEAD(k)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a Ciphertext produced by Seal. The nonce is expected to be
// the first NonceSize bytes. Open fails if the authentication tag does not
// match (wrong key or corrupted ciphertext).
func (k Key) Open(ct Ciphertext) ([]byte, error) {
	aead, err := newAEAD(k)
	if err != nil {
		return nil, err
	}

	if len(ct) < aead.NonceSize() {
		return nil, ErrInsufficientLen
	}

	nonce, sealed := ct[:aead.NonceSize()], ct[aead.NonceSize():]
	return aead.Open(nil, nonce, sealed, nil)
}

func newAEAD(k Key) (cipher.AEAD, error) {
	block, err := aes.NewCipher(k[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// MarshalJSON marshals a ciphertext as a base64 byte array, matching the
// default encoding/json behaviour for []byte.
func (c Ciphertext) MarshalJSON() ([]byte, error) {
	return json.Marshal([]byte(c))
}

// UnmarshalJSON decodes a ciphertext previously marshaled by MarshalJSON.
func (c *Ciphertext) UnmarshalJSON(b []byte) error {
	var raw []byte
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*c = Ciphertext(raw)
	return nil
}
