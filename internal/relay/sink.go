package relay

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ciphera-lobby/internal/domain"
	"ciphera-lobby/internal/protocol/wire"
)

// Close reasons sent in the WebSocket close frame.
const (
	closeDisconnect  = "disconnect"
	closeAuthFailed  = "auth_failed"
	closeShutdown    = "shutdown"
	closeWriteFailed = "write_failed"
)

// connSink is the outbound side of one connection. Deliver never blocks: a
// full queue or a closed sink fails immediately.
type connSink struct {
	conn         *websocket.Conn
	queue        chan domain.Frame
	done         chan struct{}
	finished     chan struct{}
	writeTimeout time.Duration
	pingInterval time.Duration
	logger       *zap.Logger

	closeOnce sync.Once
	startOnce sync.Once
	mu        sync.Mutex
	reason    string
}

func newConnSink(conn *websocket.Conn, size int, writeTimeout, pingInterval time.Duration, logger *zap.Logger) *connSink {
	return &connSink{
		conn:         conn,
		queue:        make(chan domain.Frame, size),
		done:         make(chan struct{}),
		finished:     make(chan struct{}),
		writeTimeout: writeTimeout,
		pingInterval: pingInterval,
		logger:       logger,
	}
}

func (s *connSink) Deliver(f domain.Frame) error {
	select {
	case <-s.done:
		return domain.ErrOutboundClosed
	default:
	}
	select {
	case s.queue <- f:
		return nil
	case <-s.done:
		return domain.ErrOutboundClosed
	default:
		return domain.ErrOutboundFull
	}
}

func (s *connSink) Close(reason string) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.reason = reason
		s.mu.Unlock()
		close(s.done)
	})
}

func (s *connSink) closeReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// start launches the writer. first, when non-nil, is written before anything
// already queued.
func (s *connSink) start(first domain.Frame) {
	s.startOnce.Do(func() { go s.run(first) })
}

// wait blocks until the writer has exited. It returns at once if the writer
// was never started.
func (s *connSink) wait() {
	started := true
	s.startOnce.Do(func() {
		started = false
		close(s.finished)
	})
	if started {
		<-s.finished
	}
}

func (s *connSink) run(first domain.Frame) {
	defer close(s.finished)
	defer s.conn.Close()

	if first != nil {
		if err := s.write(first); err != nil {
			s.fail(err)
			return
		}
	}

	var tick <-chan time.Time
	if s.pingInterval > 0 {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case f := <-s.queue:
			if err := s.write(f); err != nil {
				s.fail(err)
				return
			}
		case <-tick:
			deadline := time.Now().Add(s.writeTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.fail(err)
				return
			}
		case <-s.done:
			s.drain()
			return
		}
	}
}

// drain flushes frames queued before Close and sends the close frame.
func (s *connSink) drain() {
	for {
		select {
		case f := <-s.queue:
			if err := s.write(f); err != nil {
				return
			}
		default:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, s.closeReason())
			_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.writeTimeout))
			return
		}
	}
}

func (s *connSink) write(f domain.Frame) error {
	b, err := wire.Encode(f)
	if err != nil {
		s.logger.Error("encode frame", zap.String("type", f.FrameType()), zap.Error(err))
		return nil
	}
	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	return s.conn.WriteMessage(websocket.TextMessage, b)
}

func (s *connSink) fail(err error) {
	s.logger.Debug("write failed", zap.Error(err))
	s.Close(closeWriteFailed)
}

var _ domain.Outbound = (*connSink)(nil)
