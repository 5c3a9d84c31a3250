package store

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"

	"ciphera-lobby/internal/crypto"
	"ciphera-lobby/internal/domain"
)

const idFilename = "identity.json.enc"

// ErrNoIdentity is returned by LoadIdentity before any identity was saved.
var ErrNoIdentity = errors.New("store: no identity, run init first")

// IdentityFileStore persists the local identity to disk.
type IdentityFileStore struct {
	dir string
	kdf KDF
	mu  sync.Mutex
}

// Option configures an IdentityFileStore.
type Option func(*IdentityFileStore)

// WithKDF overrides the scrypt cost used when saving.
func WithKDF(kdf KDF) Option {
	return func(s *IdentityFileStore) { s.kdf = kdf }
}

// NewIdentityFileStore returns an IdentityFileStore rooted at dir.
func NewIdentityFileStore(dir string, opts ...Option) *IdentityFileStore {
	s := &IdentityFileStore{dir: dir, kdf: DefaultKDF}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path is the sealed identity file.
func (s *IdentityFileStore) Path() string { return filepath.Join(s.dir, idFilename) }

// SaveIdentity seals the identity with passphrase and replaces any previous
// file atomically.
func (s *IdentityFileStore) SaveIdentity(passphrase string, id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	defer crypto.Wipe(raw)

	ct, err := seal(passphrase, raw, s.kdf)
	if err != nil {
		return err
	}
	return writeFile(s.Path(), ct, 0o600)
}

// LoadIdentity reads and decrypts the identity.
func (s *IdentityFileStore) LoadIdentity(passphrase string) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.Path())
	if err != nil {
		return domain.Identity{}, err
	}
	if b == nil {
		return domain.Identity{}, ErrNoIdentity
	}
	pt, err := open(passphrase, b)
	if err != nil {
		return domain.Identity{}, err
	}
	defer crypto.Wipe(pt)

	var id domain.Identity
	if err := json.Unmarshal(pt, &id); err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}

// Compile-time assertion that IdentityFileStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityFileStore)(nil)
