package app_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ciphera-lobby/internal/app"
	"ciphera-lobby/internal/store"
)

func TestClientWire_Connect(t *testing.T) {
	srv := app.NewServer(app.DefaultConfig(), nil)
	hs := httptest.NewServer(srv.Relay)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Relay.Shutdown(ctx)
		hs.Close()
	})

	w, err := app.NewClientWire(app.ClientConfig{
		Home:     t.TempDir(),
		RelayURL: "ws" + strings.TrimPrefix(hs.URL, "http") + "/ws",
	})
	require.NoError(t, err)

	const pass = "Correct-Horse-9"
	id, _, err := w.IDs.GenerateIdentity(pass)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, roster, err := w.Connect(ctx, pass)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, id.PublicKey(), c.Key())
	assert.Len(t, roster, 1)
	assert.Equal(t, 1, srv.Directory.Len())

	_, _, err = w.Connect(ctx, "Wrong-Horse-99")
	assert.ErrorIs(t, err, store.ErrWrongPassphrase)
}

func TestNewClientWire_DefaultRelay(t *testing.T) {
	w, err := app.NewClientWire(app.ClientConfig{Home: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, app.DefaultRelayURL, w.RelayURL)
}
