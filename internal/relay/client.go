package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ciphera-lobby/internal/crypto"
	"ciphera-lobby/internal/domain"
	"ciphera-lobby/internal/protocol/wire"
)

// ErrUnexpectedReply is returned when the relay answers auth with something
// other than auth_success or error.
var ErrUnexpectedReply = errors.New("relay: unexpected reply")

// RemoteError is an error frame received from the relay.
type RemoteError struct {
	Reason    string
	Details   string
	PublicKey string
}

func (e *RemoteError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("relay error %s: %s", e.Reason, e.Details)
	}
	return "relay error " + e.Reason
}

// Client is one authenticated lobby connection.
type Client struct {
	conn   *websocket.Conn
	key    domain.IdentityKey
	signer domain.Signer

	writeMu sync.Mutex
}

// Dial opens a WebSocket connection to url for id. Call Authenticate next.
func Dial(ctx context.Context, url string, id domain.Identity) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{conn: conn, key: id.PublicKey(), signer: crypto.IdentitySigner{ID: id}}, nil
}

// Key returns the identity key this client authenticates as.
func (c *Client) Key() domain.IdentityKey { return c.key }

// Authenticate signs the auth challenge and waits for the verdict. It returns
// the roster on success and a *RemoteError on rejection.
func (c *Client) Authenticate(ctx context.Context) ([]domain.IdentityKey, error) {
	req := wire.AuthRequest{
		PublicKey: c.key.String(),
		Signature: crypto.HexEncode(c.signer.Sign(wire.AuthChallenge)),
	}
	if err := c.write(req); err != nil {
		return nil, err
	}
	f, err := c.Next(ctx)
	if err != nil {
		return nil, err
	}
	switch f := f.(type) {
	case *wire.AuthSuccess:
		roster := make([]domain.IdentityKey, len(f.Users))
		for i, u := range f.Users {
			roster[i] = domain.IdentityKey(u)
		}
		return roster, nil
	case *wire.Error:
		return nil, &RemoteError{Reason: f.Reason, Details: f.Details, PublicKey: f.PublicKey}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedReply, f.FrameType())
	}
}

// Send signs text with a fresh RFC3339 timestamp and sends it to recipient.
func (c *Client) Send(recipient domain.IdentityKey, text string) error {
	ts := time.Now().UTC().Format(time.RFC3339)
	return c.write(wire.SendRequest{
		Recipient: recipient.String(),
		Message:   text,
		Sender:    c.key.String(),
		Signature: crypto.HexEncode(c.signer.Sign(wire.CanonicalPayload(text, ts))),
		Timestamp: ts,
	})
}

// Next reads the next frame. The ctx deadline, if any, bounds the read; a
// read that times out leaves the connection unusable.
func (c *Client) Next(ctx context.Context) (domain.Frame, error) {
	deadline, _ := ctx.Deadline()
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	_, raw, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return wire.Decode(raw)
}

// Close sends a normal close frame and closes the connection.
func (c *Client) Close() error {
	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}

func (c *Client) write(f domain.Frame) error {
	b, err := wire.Encode(f)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// VerifyMessage checks a delivered message's signature against the sender
// key it names.
func VerifyMessage(m *wire.Message) bool {
	pub, err := crypto.HexDecode(m.Sender)
	if err != nil {
		return false
	}
	sig, err := crypto.HexDecode(m.Signature)
	if err != nil {
		return false
	}
	return crypto.Ed25519Verifier{}.Verify(pub, wire.CanonicalPayload(m.Message, m.Timestamp), sig)
}
