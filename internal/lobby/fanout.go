package lobby

import (
	"sync"

	"go.uber.org/zap"

	"ciphera-lobby/internal/domain"
	"ciphera-lobby/internal/protocol/wire"
)

// sequencer hands out tickets under the directory lock and lets fanouts run
// strictly in ticket order once the lock is gone.
type sequencer struct {
	issued uint64 // guarded by Directory.mu

	mu   sync.Mutex
	cond *sync.Cond
	next uint64
}

func (s *sequencer) init() { s.cond = sync.NewCond(&s.mu) }

func (s *sequencer) issue() uint64 {
	t := s.issued
	s.issued++
	return t
}

func (s *sequencer) wait(t uint64) {
	s.mu.Lock()
	for s.next != t {
		s.cond.Wait()
	}
	s.mu.Unlock()
}

func (s *sequencer) done() {
	s.mu.Lock()
	s.next++
	s.mu.Unlock()
	s.cond.Broadcast()
}

// fanout pushes each delta to every peer, in order. Failures are dropped.
func (d *Directory) fanout(ticket uint64, peers []domain.Member, deltas ...domain.Delta) {
	d.seq.wait(ticket)
	defer d.seq.done()

	for _, delta := range deltas {
		if delta.Empty() {
			continue
		}
		frame := wire.LobbyUpdateFrom(delta)
		for _, p := range peers {
			if err := p.Outbound.Deliver(frame); err != nil {
				d.metrics.FanoutDropped()
				d.logger.Debug("lobby update dropped",
					zap.String("to", p.Key.Short()),
					zap.Stringer("conn_id", p.Conn),
					zap.Error(err),
				)
			}
		}
	}
}
