package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ciphera-lobby/internal/domain"
)

func TestParseIdentityKey(t *testing.T) {
	lower := strings.Repeat("ab", 32)

	k, err := domain.ParseIdentityKey(lower)
	require.NoError(t, err)
	assert.Equal(t, domain.IdentityKey(lower), k)
	assert.Len(t, k.Bytes(), domain.IdentityKeyBytes)

	k, err = domain.ParseIdentityKey(strings.ToUpper(lower))
	require.NoError(t, err)
	assert.Equal(t, domain.IdentityKey(lower), k, "keys are normalised to lower case")

	for _, bad := range []string{"", "zz", strings.Repeat("ab", 31), strings.Repeat("ab", 33), lower + "a"} {
		_, err := domain.ParseIdentityKey(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidIdentity, bad)
		assert.False(t, domain.IdentityKey(bad).Valid())
	}
}

func TestIdentityKey_Short(t *testing.T) {
	assert.Equal(t, "abababab", domain.IdentityKey(strings.Repeat("ab", 32)).Short())
	assert.Equal(t, "abc", domain.IdentityKey("abc").Short())
}

func TestDelta(t *testing.T) {
	k := domain.IdentityKey(strings.Repeat("0", 64))
	assert.Equal(t, []domain.IdentityKey{k}, domain.Joined(k).Joined)
	assert.Empty(t, domain.Joined(k).Left)
	assert.Equal(t, []domain.IdentityKey{k}, domain.Left(k).Left)
	assert.True(t, domain.Delta{}.Empty())
	assert.False(t, domain.Left(k).Empty())
}

func TestAddOutcome_String(t *testing.T) {
	assert.Equal(t, "fresh_join", domain.FreshJoin.String())
	assert.Equal(t, "reconnect", domain.Reconnect.String())
}

func TestErrors(t *testing.T) {
	k := domain.IdentityKey(strings.Repeat("c", 64))

	rej := &domain.RejectionError{Reason: "offline", Recipient: k, Err: domain.ErrRecipientOffline}
	assert.ErrorIs(t, rej, domain.ErrRecipientOffline)
	assert.Contains(t, rej.Error(), k.String())

	del := &domain.DeliveryError{Recipient: k, Err: domain.ErrOutboundFull}
	assert.ErrorIs(t, del, domain.ErrDeliveryFailed)
	assert.ErrorIs(t, del, domain.ErrOutboundFull)
	assert.False(t, errors.Is(del, domain.ErrRecipientOffline))
}

func TestIdentity_PublicKey(t *testing.T) {
	var id domain.Identity
	id.EdPub[0] = 0xff
	k := id.PublicKey()
	assert.True(t, k.Valid())
	assert.True(t, strings.HasPrefix(k.String(), "ff00"))
}
