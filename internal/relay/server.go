package relay

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"ciphera-lobby/internal/crypto"
	"ciphera-lobby/internal/domain"
	"ciphera-lobby/internal/protocol/wire"
	"ciphera-lobby/internal/telemetry"
)

// Defaults used for zero Options fields.
const (
	DefaultAuthTimeout   = 10 * time.Second
	DefaultMaxFrameBytes = 64 << 10
	DefaultOutboundQueue = 64
	DefaultWriteTimeout  = 10 * time.Second
	DefaultPingInterval  = 30 * time.Second
	DefaultMetricsPath   = "/metrics"
)

// ErrServerClosed is returned by Shutdown when called twice.
var ErrServerClosed = errors.New("relay: server closed")

// Options tunes per-connection behaviour.
type Options struct {
	AuthTimeout   time.Duration
	MaxFrameBytes int64
	OutboundQueue int
	WriteTimeout  time.Duration
	// PingInterval of zero disables keepalive pings and the idle read
	// deadline that goes with them.
	PingInterval time.Duration
	// RatePerSecond of zero disables inbound rate limiting.
	RatePerSecond float64
	RateBurst     int
	MetricsPath   string
}

func (o *Options) setDefaults() {
	if o.AuthTimeout <= 0 {
		o.AuthTimeout = DefaultAuthTimeout
	}
	if o.MaxFrameBytes <= 0 {
		o.MaxFrameBytes = DefaultMaxFrameBytes
	}
	if o.OutboundQueue <= 0 {
		o.OutboundQueue = DefaultOutboundQueue
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
	if o.RatePerSecond > 0 && o.RateBurst <= 0 {
		o.RateBurst = 1
	}
	if o.MetricsPath == "" {
		o.MetricsPath = DefaultMetricsPath
	}
}

// Server accepts lobby connections over WebSocket.
type Server struct {
	dir      domain.Directory
	auth     domain.AuthService
	messages domain.MessageService
	logger   *zap.Logger
	metrics  *telemetry.Metrics
	opts     Options

	upgrader websocket.Upgrader
	mux      *http.ServeMux

	mu     sync.Mutex
	conns  map[domain.ConnID]*connSink
	closed bool
	wg     sync.WaitGroup
}

// NewServer builds a server over an existing directory and services. A nil
// logger is replaced by a no-op one; nil metrics disables the metrics
// endpoint.
func NewServer(
	dir domain.Directory,
	auth domain.AuthService,
	messages domain.MessageService,
	logger *zap.Logger,
	metrics *telemetry.Metrics,
	opts Options,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.setDefaults()
	s := &Server{
		dir:      dir,
		auth:     auth,
		messages: messages,
		logger:   logger.Named("relay"),
		metrics:  metrics,
		opts:     opts,
		conns:    make(map[domain.ConnID]*connSink),
		upgrader: websocket.Upgrader{
			HandshakeTimeout: opts.AuthTimeout,
			// Clients are CLIs rather than browsers; identity is proven by
			// the auth frame, not by origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.mux = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Shutdown closes every live connection and waits for their handlers to
// finish, or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServerClosed
	}
	s.closed = true
	for _, sink := range s.conns {
		sink.Close(closeShutdown)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}

	id := domain.ConnID(uuid.NewString())
	sink := newConnSink(conn, s.opts.OutboundQueue, s.opts.WriteTimeout, s.opts.PingInterval,
		s.logger.With(zap.String("conn_id", string(id))))
	if !s.track(id, sink) {
		sink.Close(closeShutdown)
		_ = conn.Close()
		return
	}
	defer s.untrack(id)

	s.metrics.ConnOpened()
	defer s.metrics.ConnClosed()

	s.serveConn(id, conn, sink)
}

func (s *Server) track(id domain.ConnID, sink *connSink) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[id] = sink
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(id domain.ConnID) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Server) serveConn(id domain.ConnID, conn *websocket.Conn, sink *connSink) {
	log := s.logger.With(zap.String("conn_id", string(id)))
	defer func() {
		sink.Close(closeDisconnect)
		sink.wait()
		_ = conn.Close()
	}()

	conn.SetReadLimit(s.opts.MaxFrameBytes)

	key, ok := s.admit(id, conn, sink, log)
	if !ok {
		return
	}
	defer func() {
		if s.dir.Release(key, id) {
			log.Debug("released on disconnect", zap.Stringer("fingerprint", crypto.FingerprintKey(key)))
		}
	}()

	s.keepalive(conn)
	s.readLoop(key, conn, sink, log)
}

// admit runs the handshake on the first frame. The auth_success reply is
// written before any lobby update already queued for the new member.
func (s *Server) admit(id domain.ConnID, conn *websocket.Conn, sink *connSink, log *zap.Logger) (domain.IdentityKey, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(s.opts.AuthTimeout))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		log.Debug("no auth frame", zap.Error(err))
		return "", false
	}

	adm, err := s.auth.Handshake(raw, id, sink)
	if err != nil {
		_ = sink.Deliver(wire.ErrorFrom(err))
		sink.start(nil)
		sink.Close(closeAuthFailed)
		return "", false
	}

	sink.start(wire.AuthSuccess{Users: keysToStrings(adm.Roster)})
	log.Debug("handshake complete",
		zap.Stringer("fingerprint", crypto.FingerprintKey(adm.Key)),
		zap.Stringer("outcome", adm.Outcome),
	)
	return adm.Key, true
}

// keepalive replaces the auth deadline with an idle deadline refreshed by
// pongs, or clears it when pings are disabled.
func (s *Server) keepalive(conn *websocket.Conn) {
	if s.opts.PingInterval <= 0 {
		_ = conn.SetReadDeadline(time.Time{})
		return
	}
	wait := 2 * s.opts.PingInterval
	_ = conn.SetReadDeadline(time.Now().Add(wait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wait))
	})
}

func (s *Server) readLoop(key domain.IdentityKey, conn *websocket.Conn, sink *connSink, log *zap.Logger) {
	var limiter *rate.Limiter
	if s.opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.opts.RatePerSecond), s.opts.RateBurst)
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("read failed", zap.Error(err))
			}
			return
		}
		if limiter != nil && !limiter.Allow() {
			_ = sink.Deliver(wire.Error{Reason: wire.ReasonRateLimited})
			continue
		}
		if err := s.dispatch(key, raw); err != nil {
			_ = sink.Deliver(wire.ErrorFrom(err))
		}
	}
}

// dispatch checks that key is still present before looking at the frame, so
// a sender evicted mid-connection is refused the same way whatever it sends.
func (s *Server) dispatch(key domain.IdentityKey, raw []byte) error {
	if _, ok := s.dir.Lookup(key); !ok {
		return &domain.RejectionError{Reason: wire.ReasonNotAuthenticated, Err: domain.ErrNotAuthenticated}
	}
	typ, err := wire.PeekType(raw)
	if err != nil {
		return &domain.RejectionError{Reason: wire.ReasonMalformedJSON, Err: domain.ErrMalformedFrame}
	}
	if typ != wire.TypeMessage {
		return &domain.RejectionError{Reason: wire.ReasonUnsupportedType, Err: domain.ErrUnsupportedFrame}
	}
	return s.messages.Handle(key, raw)
}

func keysToStrings(keys []domain.IdentityKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
