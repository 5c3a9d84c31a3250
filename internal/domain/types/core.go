package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// IdentityKeyBytes is the decoded size of an identity key.
const IdentityKeyBytes = 32

// IdentityKey is a hex-encoded Ed25519 public key identifying a user. It is
// the primary key of the lobby directory.
type IdentityKey string

// ParseIdentityKey validates s and returns it as a lower-case IdentityKey.
// The input may use either hex case.
func ParseIdentityKey(s string) (IdentityKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if len(b) != IdentityKeyBytes {
		return "", fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidIdentity, IdentityKeyBytes, len(b))
	}
	return IdentityKey(strings.ToLower(s)), nil
}

// Valid reports whether k decodes to exactly 32 bytes.
func (k IdentityKey) Valid() bool {
	b, err := hex.DecodeString(string(k))
	return err == nil && len(b) == IdentityKeyBytes
}

// Bytes returns the decoded key. It returns nil if k is not valid hex.
func (k IdentityKey) Bytes() []byte {
	b, err := hex.DecodeString(string(k))
	if err != nil {
		return nil
	}
	return b
}

// String returns the string form of the key.
func (k IdentityKey) String() string { return string(k) }

// Short returns the first 8 hex characters, for logs.
func (k IdentityKey) Short() string {
	if len(k) <= 8 {
		return string(k)
	}
	return string(k[:8])
}

// ConnID identifies a single accepted connection. A reconnection of the same
// identity always gets a fresh ConnID.
type ConnID string

// String returns the string form of the connection identifier.
func (id ConnID) String() string { return string(id) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }
