package service

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashService converts plaintext passwords to their stored digest form.
// The transform is deterministic, so verification is digest equality and
// credential lookups can match on the digest itself.
type HashService struct{}

func NewHashService() *HashService {
	return &HashService{}
}

// Hash returns the hex-encoded SHA-256 digest of the plaintext
func (s *HashService) Hash(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether the plaintext hashes to the stored digest
func (s *HashService) Verify(plaintext, digest string) bool {
	return s.Hash(plaintext) == digest
}
