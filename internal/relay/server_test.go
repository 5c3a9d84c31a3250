package relay_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ciphera-lobby/internal/crypto"
	"ciphera-lobby/internal/domain"
	"ciphera-lobby/internal/lobby"
	"ciphera-lobby/internal/protocol/wire"
	"ciphera-lobby/internal/relay"
	"ciphera-lobby/internal/services/auth"
	"ciphera-lobby/internal/services/message"
	"ciphera-lobby/internal/telemetry"
)

type harness struct {
	t   *testing.T
	dir *lobby.Directory
	srv *httptest.Server
	ws  string
}

func newHarness(t *testing.T, opts relay.Options) *harness {
	t.Helper()
	metrics := telemetry.New()
	dir := lobby.New(lobby.WithMetrics(metrics))
	verifier := crypto.Ed25519Verifier{}
	rs := relay.NewServer(dir,
		auth.New(dir, verifier, nil, metrics),
		message.New(dir, verifier, nil, metrics),
		nil, metrics, opts)
	srv := httptest.NewServer(rs)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = rs.Shutdown(ctx)
		srv.Close()
	})
	return &harness{t: t, dir: dir, srv: srv, ws: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"}
}

func newIdentity(t *testing.T) domain.Identity {
	t.Helper()
	priv, pub, err := crypto.GenerateEd25519()
	require.NoError(t, err)
	return domain.Identity{EdPub: pub, EdPriv: priv}
}

func (h *harness) dial(id domain.Identity) *relay.Client {
	h.t.Helper()
	c, err := relay.Dial(context.Background(), h.ws, id)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { _ = c.Close() })
	return c
}

func (h *harness) join(id domain.Identity) (*relay.Client, []domain.IdentityKey) {
	h.t.Helper()
	c := h.dial(id)
	roster, err := c.Authenticate(ctxT(h.t))
	require.NoError(h.t, err)
	return c, roster
}

func ctxT(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func next[T domain.Frame](t *testing.T, c *relay.Client) T {
	t.Helper()
	f, err := c.Next(ctxT(t))
	require.NoError(t, err)
	got, ok := f.(T)
	require.True(t, ok, "got %T", f)
	return got
}

func TestRelay_JoinAndMessage(t *testing.T) {
	h := newHarness(t, relay.Options{})
	aliceID, bobID := newIdentity(t), newIdentity(t)

	alice, roster := h.join(aliceID)
	assert.Equal(t, []domain.IdentityKey{aliceID.PublicKey()}, roster)

	bob, roster := h.join(bobID)
	assert.ElementsMatch(t, []domain.IdentityKey{aliceID.PublicKey(), bobID.PublicKey()}, roster)

	update := next[*wire.LobbyUpdate](t, alice)
	assert.Equal(t, domain.Joined(bobID.PublicKey()), update.Delta())

	require.NoError(t, alice.Send(bobID.PublicKey(), "hello bob"))
	msg := next[*wire.Message](t, bob)
	assert.Equal(t, "hello bob", msg.Message)
	assert.Equal(t, aliceID.PublicKey().String(), msg.Sender)
	assert.True(t, relay.VerifyMessage(msg))

	require.NoError(t, bob.Close())
	update = next[*wire.LobbyUpdate](t, alice)
	assert.Equal(t, domain.Left(bobID.PublicKey()), update.Delta())
}

func TestRelay_Rejections(t *testing.T) {
	h := newHarness(t, relay.Options{})
	aliceID, bobID, carolID := newIdentity(t), newIdentity(t), newIdentity(t)
	alice, _ := h.join(aliceID)
	bob, _ := h.join(bobID)
	next[*wire.LobbyUpdate](t, alice)

	require.NoError(t, alice.Send(carolID.PublicKey(), "anyone?"))
	e := next[*wire.Error](t, alice)
	assert.Equal(t, wire.ReasonOffline, e.Reason)
	assert.Equal(t, carolID.PublicKey().String(), e.PublicKey)

	require.NoError(t, alice.Send(aliceID.PublicKey(), "me"))
	e = next[*wire.Error](t, alice)
	assert.Equal(t, wire.ReasonInvalidRecipient, e.Reason)

	// Mallory joins on a raw connection and forges a message to Bob.
	malloryID := newIdentity(t)
	mallory := rawJoin(t, h, malloryID)
	next[*wire.LobbyUpdate](t, alice)
	assert.Equal(t, domain.Joined(malloryID.PublicKey()), next[*wire.LobbyUpdate](t, bob).Delta())

	raw := `{"type":"message","recipientPublicKey":"` + bobID.PublicKey().String() +
		`","message":"forged","senderPublicKey":"` + aliceID.PublicKey().String() +
		`","signature":"` + strings.Repeat("00", 64) + `","timestamp":"2025-01-01T00:00:00Z"}`
	require.NoError(t, mallory.WriteMessage(websocket.TextMessage, []byte(raw)))
	assert.Equal(t, wire.ReasonSignatureInvalid, readError(t, mallory).Reason)

	// The rejection never reaches the recipient; the next thing Bob sees is
	// a real message.
	require.NoError(t, alice.Send(bobID.PublicKey(), "real"))
	msg := next[*wire.Message](t, bob)
	assert.Equal(t, "real", msg.Message)
}

// rawJoin authenticates id on a bare WebSocket connection.
func rawJoin(t *testing.T, h *harness, id domain.Identity) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(h.ws, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	sig := crypto.SignEd25519(id.EdPriv, wire.AuthChallenge)
	b, err := wire.Encode(wire.AuthRequest{PublicKey: id.PublicKey().String(), Signature: crypto.HexEncode(sig)})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, b))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err = conn.ReadMessage()
	require.NoError(t, err)
	typ, err := wire.PeekType(b)
	require.NoError(t, err)
	require.Equal(t, wire.TypeAuthSuccess, typ)
	return conn
}

func readError(t *testing.T, conn *websocket.Conn) wire.Error {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	var e wire.Error
	require.NoError(t, json.Unmarshal(b, &e))
	require.Equal(t, wire.TypeError, e.Type)
	return e
}

func TestRelay_AuthFailureClosesConnection(t *testing.T) {
	h := newHarness(t, relay.Options{})
	conn, _, err := websocket.DefaultDialer.Dial(h.ws, nil)
	require.NoError(t, err)
	defer conn.Close()

	id := newIdentity(t)
	bad := wire.AuthRequest{
		PublicKey: id.PublicKey().String(),
		Signature: crypto.HexEncode(crypto.SignEd25519(id.EdPriv, []byte("not the challenge"))),
	}
	b, err := wire.Encode(bad)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, b))

	assert.Equal(t, wire.ReasonAuthFailed, readError(t, conn).Reason)

	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Zero(t, h.dir.Len())
}

func TestRelay_AuthTimeout(t *testing.T) {
	h := newHarness(t, relay.Options{AuthTimeout: 50 * time.Millisecond})
	conn, _, err := websocket.DefaultDialer.Dial(h.ws, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.Zero(t, h.dir.Len())
}

func TestRelay_ReconnectReplacesConnection(t *testing.T) {
	h := newHarness(t, relay.Options{})
	aliceID, bobID := newIdentity(t), newIdentity(t)

	first, _ := h.join(aliceID)
	bob, _ := h.join(bobID)
	next[*wire.LobbyUpdate](t, first)

	second, roster := h.join(aliceID)
	assert.ElementsMatch(t, []domain.IdentityKey{aliceID.PublicKey(), bobID.PublicKey()}, roster)

	assert.Equal(t, domain.Left(aliceID.PublicKey()), next[*wire.LobbyUpdate](t, bob).Delta())
	assert.Equal(t, domain.Joined(aliceID.PublicKey()), next[*wire.LobbyUpdate](t, bob).Delta())

	_, err := first.Next(ctxT(t))
	var ce *websocket.CloseError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, "replaced", ce.Text)

	// The superseded connection's teardown must not evict the live one.
	require.NoError(t, bob.Send(aliceID.PublicKey(), "still there?"))
	msg := next[*wire.Message](t, second)
	assert.Equal(t, "still there?", msg.Message)
	assert.Equal(t, 2, h.dir.Len())
}

func TestRelay_UnsupportedFrame(t *testing.T) {
	h := newHarness(t, relay.Options{})
	conn := rawJoin(t, h, newIdentity(t))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, wire.ReasonUnsupportedType, readError(t, conn).Reason)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	assert.Equal(t, wire.ReasonMalformedJSON, readError(t, conn).Reason)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"auth","publicKey":"aa","signature":"bb"}`)))
	assert.Equal(t, wire.ReasonUnsupportedType, readError(t, conn).Reason)
}

func TestRelay_EvictedSenderIsNotAuthenticated(t *testing.T) {
	h := newHarness(t, relay.Options{})
	id := newIdentity(t)
	conn := rawJoin(t, h, id)

	require.True(t, h.dir.Remove(id.PublicKey()))

	for _, frame := range []string{`not json`, `{"type":"ping"}`, `{"type":"message","to":"aa"}`} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		assert.Equal(t, wire.ReasonNotAuthenticated, readError(t, conn).Reason, frame)
	}
}

func TestRelay_RateLimited(t *testing.T) {
	h := newHarness(t, relay.Options{RatePerSecond: 0.001, RateBurst: 1})
	aliceID, bobID := newIdentity(t), newIdentity(t)
	alice, _ := h.join(aliceID)
	bob, _ := h.join(bobID)
	next[*wire.LobbyUpdate](t, alice)

	require.NoError(t, alice.Send(bobID.PublicKey(), "one"))
	require.NoError(t, alice.Send(bobID.PublicKey(), "two"))

	assert.Equal(t, "one", next[*wire.Message](t, bob).Message)
	assert.Equal(t, wire.ReasonRateLimited, next[*wire.Error](t, alice).Reason)
}

func TestRelay_HealthAndMetrics(t *testing.T) {
	h := newHarness(t, relay.Options{})
	h.join(newIdentity(t))

	resp, err := http.Get(h.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Status  string `json:"status"`
		Members int    `json:"members"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.Members)

	resp, err = http.Get(h.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRelay_ShutdownClosesClients(t *testing.T) {
	metrics := telemetry.New()
	dir := lobby.New()
	rs := relay.NewServer(dir,
		auth.New(dir, crypto.Ed25519Verifier{}, nil, nil),
		message.New(dir, crypto.Ed25519Verifier{}, nil, nil),
		nil, metrics, relay.Options{})
	srv := httptest.NewServer(rs)
	defer srv.Close()

	c, err := relay.Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", newIdentity(t))
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Authenticate(ctxT(t))
	require.NoError(t, err)

	require.NoError(t, rs.Shutdown(ctxT(t)))
	_, err = c.Next(ctxT(t))
	require.Error(t, err)
	assert.Zero(t, dir.Len())
	assert.ErrorIs(t, rs.Shutdown(ctxT(t)), relay.ErrServerClosed)
}
