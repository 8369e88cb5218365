package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Strength selects the digest used for a generated secret.
type Strength int

const (
	// Short secrets are SHA-256 digests, 64 hex characters.
	Short Strength = iota
	// Long secrets are SHA-512 digests, 128 hex characters.
	Long
)

// RandomSecret returns an unguessable hex secret. Uniqueness is not
// guaranteed here; callers persist secrets behind unique constraints.
func RandomSecret(s Strength) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("password: generate secret: %w", err)
	}
	extra, err := generateRandomBytes(32)
	if err != nil {
		return "", fmt.Errorf("password: generate secret: %w", err)
	}
	input := append(id[:], extra...)

	if s == Short {
		sum := sha256.Sum256(input)
		return hex.EncodeToString(sum[:]), nil
	}
	sum := sha512.Sum512(input)
	return hex.EncodeToString(sum[:]), nil
}

// ClientSecret generates a confidential client secret.
func ClientSecret() (string, error) { return RandomSecret(Short) }

// AdminKey generates a client admin key.
func AdminKey() (string, error) { return RandomSecret(Long) }

// GrantCode generates a grant code.
func GrantCode() (string, error) { return RandomSecret(Long) }

// TokenSecret generates an access or refresh token.
func TokenSecret() (string, error) { return RandomSecret(Long) }

func generateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}
