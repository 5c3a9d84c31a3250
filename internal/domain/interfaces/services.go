package interfaces

import (
	domaintypes "ciphera-lobby/internal/domain/types"
)

// Verifier is the signature capability the lobby consumes. It reports whether
// sig is a valid signature of msg under pub and must never panic on
// malformed input.
type Verifier interface {
	Verify(pub, msg, sig []byte) bool
}

// Signer signs on behalf of one identity. Only clients and tests sign.
type Signer interface {
	Sign(msg []byte) []byte
}

// Directory tracks which identities are online and where to reach them.
type Directory interface {
	Add(key domaintypes.IdentityKey, m domaintypes.Member) (domaintypes.AddOutcome, error)
	Remove(key domaintypes.IdentityKey) bool
	Release(key domaintypes.IdentityKey, conn domaintypes.ConnID) bool
	Lookup(key domaintypes.IdentityKey) (domaintypes.Member, bool)
	Snapshot() []domaintypes.IdentityKey
	Len() int
}

// AuthService admits a new connection into the directory.
type AuthService interface {
	Handshake(
		raw []byte,
		conn domaintypes.ConnID,
		out domaintypes.Outbound,
	) (domaintypes.Admission, error)
}

// MessageService validates and routes signed messages between members.
type MessageService interface {
	Validate(sender domaintypes.IdentityKey, raw []byte) (domaintypes.ValidatedMessage, error)
	Route(msg domaintypes.ValidatedMessage) error
	Handle(sender domaintypes.IdentityKey, raw []byte) error
}

// IdentityService creates, retrieves, and inspects a client's identity keys.
type IdentityService interface {
	GenerateIdentity(passphrase string) (
		domaintypes.Identity,
		domaintypes.Fingerprint,
		error,
	)
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
	FingerprintIdentity(passphrase string) (domaintypes.Fingerprint, error)
}
