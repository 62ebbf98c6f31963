package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/you/authstarter/domain"
)

// SHA256TokenHasher implements domain.TokenHasher. Refresh and one-time
// tokens already carry their entropy, so a fast deterministic digest is
// enough; only the digest is ever persisted.
type SHA256TokenHasher struct{}

// NewTokenHasher creates a new token hasher.
func NewTokenHasher() domain.TokenHasher {
	return &SHA256TokenHasher{}
}

// Hash implements domain.TokenHasher.
func (h *SHA256TokenHasher) Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Equals implements domain.TokenHasher.
func (h *SHA256TokenHasher) Equals(token, storedHash string) bool {
	computed := h.Hash(token)
	if len(computed) != len(storedHash) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
