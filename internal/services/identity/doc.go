// Package identity manages creation, encryption and loading of the local identity.
//
// It enforces passphrase policy, generates the Ed25519 key pair the lobby
// knows a client by, and persists it via the domain.IdentityStore.
package identity
