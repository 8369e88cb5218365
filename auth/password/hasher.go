// Package password hashes user passwords and generates opaque secrets.
//
// Digests are PBKDF2-SHA512, serialized as
//
//	[salt_length:uint32BE][iterations:uint32BE][salt][derived_key]
//
// and hex-encoded for storage. Verification reads salt and iteration count
// back out of the digest, so changing the configuration does not invalidate
// stored passwords.
package password

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const headerLen = 8

// ErrMalformedDigest is returned by Verify when the stored digest cannot be decoded.
var ErrMalformedDigest = errors.New("password: malformed digest")

// Hasher hashes and verifies passwords.
type Hasher interface {
	// Hash returns the encoded digest of plain.
	Hash(plain string) (string, error)

	// Verify reports whether plain matches digest.
	Verify(plain, digest string) (bool, error)
}

// Pbkdf2Hasher implements Hasher with PBKDF2-SHA512.
type Pbkdf2Hasher struct {
	hashLen    int
	saltLen    int
	iterations int
}

// NewPbkdf2Hasher validates cfg and returns a hasher.
func NewPbkdf2Hasher(cfg Config) (*Pbkdf2Hasher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pbkdf2Hasher{
		hashLen:    cfg.HashLength,
		saltLen:    cfg.SaltLength,
		iterations: cfg.Iterations,
	}, nil
}

func (h *Pbkdf2Hasher) Hash(plain string) (string, error) {
	salt, err := generateRandomBytes(h.saltLen)
	if err != nil {
		return "", fmt.Errorf("password: generate salt: %w", err)
	}
	dk := pbkdf2.Key([]byte(plain), salt, h.iterations, h.hashLen, sha512.New)

	buf := make([]byte, headerLen, headerLen+len(salt)+len(dk))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(salt)))
	binary.BigEndian.PutUint32(buf[4:8], uint32(h.iterations))
	buf = append(buf, salt...)
	buf = append(buf, dk...)
	return hex.EncodeToString(buf), nil
}

func (h *Pbkdf2Hasher) Verify(plain, digest string) (bool, error) {
	raw, err := hex.DecodeString(digest)
	if err != nil || len(raw) < headerLen {
		return false, ErrMalformedDigest
	}
	saltLen := int(binary.BigEndian.Uint32(raw[0:4]))
	iterations := int(binary.BigEndian.Uint32(raw[4:8]))
	if iterations == 0 || saltLen > len(raw)-headerLen {
		return false, ErrMalformedDigest
	}
	salt := raw[headerLen : headerLen+saltLen]
	expected := raw[headerLen+saltLen:]
	if len(expected) == 0 {
		return false, ErrMalformedDigest
	}

	dk := pbkdf2.Key([]byte(plain), salt, iterations, len(expected), sha512.New)
	return subtle.ConstantTimeCompare(dk, expected) == 1, nil
}
