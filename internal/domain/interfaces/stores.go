package interfaces

import domaintypes "ciphera-lobby/internal/domain/types"

// IdentityStore persists a client's long-term identity keys.
type IdentityStore interface {
	SaveIdentity(passphrase string, id domaintypes.Identity) error
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
}
