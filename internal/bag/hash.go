package bag

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows a future algorithm migration.
const (
	DomainPipeline = "sansstate/pipeline/v1"
	DomainState    = "sansstate/state/v1"
)

// Hash computes a content address for v: SHA256(domain + 0x00 + canonical).
// The null separator prevents domain/data boundary ambiguity.
func Hash(domain string, v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MustHash is like Hash but panics on error.
// Use only in tests or when v is known to be finite.
func MustHash(domain string, v Value) string {
	h, err := Hash(domain, v)
	if err != nil {
		panic(err)
	}
	return h
}
