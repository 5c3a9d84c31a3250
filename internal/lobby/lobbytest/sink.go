// Package lobbytest provides a recording outbound sink for tests of the
// lobby and the services built on it.
package lobbytest

import (
	"strings"
	"sync"

	"ciphera-lobby/internal/domain"
	"ciphera-lobby/internal/protocol/wire"
)

// Sink records every delivered frame. It never blocks.
type Sink struct {
	mu     sync.Mutex
	frames []domain.Frame
	closed bool
	reason string
	fail   error
}

// NewSink returns an open, empty sink.
func NewSink() *Sink { return &Sink{} }

// Deliver records f, or fails if the sink is closed or set to fail.
func (s *Sink) Deliver(f domain.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrOutboundClosed
	}
	if s.fail != nil {
		return s.fail
	}
	s.frames = append(s.frames, f)
	return nil
}

// Close marks the sink closed; later deliveries fail.
func (s *Sink) Close(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.reason = reason
}

// FailWith makes every later Deliver return err. Nil restores delivery.
func (s *Sink) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// Closed reports whether Close was called and with which reason.
func (s *Sink) Closed() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed, s.reason
}

// Frames returns a copy of everything delivered so far.
func (s *Sink) Frames() []domain.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Frame(nil), s.frames...)
}

// Deltas returns the lobby updates delivered so far, as domain deltas.
func (s *Sink) Deltas() []domain.Delta {
	var out []domain.Delta
	for _, f := range s.Frames() {
		if u, ok := f.(wire.LobbyUpdate); ok {
			out = append(out, u.Delta())
		}
	}
	return out
}

// Messages returns the routed messages delivered so far.
func (s *Sink) Messages() []wire.Message {
	var out []wire.Message
	for _, f := range s.Frames() {
		if m, ok := f.(wire.Message); ok {
			out = append(out, m)
		}
	}
	return out
}

// Reset drops recorded frames.
func (s *Sink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = nil
}

// Key returns a valid identity key made of 64 copies of the hex digit c.
func Key(c byte) domain.IdentityKey {
	return domain.IdentityKey(strings.Repeat(string(c), 64))
}

// Member builds a member record for conn delivering into sink.
func Member(conn string, sink domain.Outbound) domain.Member {
	return domain.Member{Conn: domain.ConnID(conn), Outbound: sink}
}

var _ domain.Outbound = (*Sink)(nil)
