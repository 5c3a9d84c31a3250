package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"ciphera-lobby/internal/domain"
)

// Fingerprint returns a short hex fingerprint of a public key.
//
// It hashes with SHA-256 and truncates to 10 bytes (20 hex chars).
func Fingerprint(pub []byte) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:10])
}

// FingerprintKey fingerprints an identity key as users see it. Invalid keys
// are fingerprinted over their raw text so logs stay distinguishable.
func FingerprintKey(k domain.IdentityKey) domain.Fingerprint {
	b := k.Bytes()
	if b == nil {
		b = []byte(k)
	}
	return domain.Fingerprint(Fingerprint(b))
}
