package store_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ciphera-lobby/internal/crypto"
	"ciphera-lobby/internal/domain"
	"ciphera-lobby/internal/store"
)

// fastKDF keeps tests quick; production uses store.DefaultKDF.
var fastKDF = store.KDF{N: 1 << 10, R: 8, P: 1}

func newIdentity(t *testing.T) domain.Identity {
	t.Helper()
	priv, pub, err := crypto.GenerateEd25519()
	require.NoError(t, err)
	return domain.Identity{EdPub: pub, EdPriv: priv}
}

func TestIdentity_SaveLoad(t *testing.T) {
	s := store.NewIdentityFileStore(t.TempDir(), store.WithKDF(fastKDF))
	id := newIdentity(t)

	require.NoError(t, s.SaveIdentity("pass", id))
	got, err := s.LoadIdentity("pass")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestIdentity_WrongPassphrase(t *testing.T) {
	s := store.NewIdentityFileStore(t.TempDir(), store.WithKDF(fastKDF))
	require.NoError(t, s.SaveIdentity("correct", newIdentity(t)))

	_, err := s.LoadIdentity("wrong")
	assert.ErrorIs(t, err, store.ErrWrongPassphrase)
}

func TestIdentity_Missing(t *testing.T) {
	s := store.NewIdentityFileStore(t.TempDir())
	_, err := s.LoadIdentity("pass")
	assert.ErrorIs(t, err, store.ErrNoIdentity)
}

func TestIdentity_TamperedFile(t *testing.T) {
	s := store.NewIdentityFileStore(t.TempDir(), store.WithKDF(fastKDF))
	require.NoError(t, s.SaveIdentity("pass", newIdentity(t)))

	b, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	// Flip a byte inside the base64 ciphertext near the end of the file.
	i := len(b) - 4
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	require.NoError(t, os.WriteFile(s.Path(), b, 0o600))

	_, err = s.LoadIdentity("pass")
	assert.Error(t, err)
}

func TestIdentity_OverwriteIsAtomic(t *testing.T) {
	dir := t.TempDir()
	s := store.NewIdentityFileStore(dir, store.WithKDF(fastKDF))
	first, second := newIdentity(t), newIdentity(t)

	require.NoError(t, s.SaveIdentity("pass", first))
	require.NoError(t, s.SaveIdentity("pass", second))

	got, err := s.LoadIdentity("pass")
	require.NoError(t, err)
	assert.Equal(t, second.EdPub, got.EdPub)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}
