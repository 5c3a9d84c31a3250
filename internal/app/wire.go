package app

import (
	"context"
	"os"

	"ciphera-lobby/internal/domain"
	"ciphera-lobby/internal/relay"
	"ciphera-lobby/internal/services/identity"
	"ciphera-lobby/internal/store"
)

// DefaultRelayURL is dialled when the CLI is given no --relay.
const DefaultRelayURL = "ws://127.0.0.1:8080/ws"

// ClientConfig holds runtime wiring options for the CLI.
type ClientConfig struct {
	Home     string // config directory, e.g. $HOME/.ciphera
	RelayURL string // relay WebSocket URL, e.g. ws://127.0.0.1:8080/ws
}

// ClientWire bundles the stores and services the CLI commands use.
type ClientWire struct {
	Identity domain.IdentityStore
	IDs      domain.IdentityService
	RelayURL string
}

// NewClientWire constructs the CLI dependency graph from cfg.
func NewClientWire(cfg ClientConfig) (*ClientWire, error) {
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}
	url := cfg.RelayURL
	if url == "" {
		url = DefaultRelayURL
	}
	identityStore := store.NewIdentityFileStore(cfg.Home)
	return &ClientWire{
		Identity: identityStore,
		IDs:      identity.New(identityStore),
		RelayURL: url,
	}, nil
}

// Connect loads the identity, dials the relay and authenticates. It returns
// the live client and the roster at admission.
func (w *ClientWire) Connect(ctx context.Context, passphrase string) (*relay.Client, []domain.IdentityKey, error) {
	id, err := w.IDs.LoadIdentity(passphrase)
	if err != nil {
		return nil, nil, err
	}
	c, err := relay.Dial(ctx, w.RelayURL, id)
	if err != nil {
		return nil, nil, err
	}
	roster, err := c.Authenticate(ctx)
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	return c, roster, nil
}
