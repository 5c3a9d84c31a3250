package lobby

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"ciphera-lobby/internal/crypto"
	"ciphera-lobby/internal/domain"
	"ciphera-lobby/internal/telemetry"
)

// ErrNoOutbound is returned by Add for a member without a delivery sink.
var ErrNoOutbound = errors.New("lobby: member has no outbound sink")

// Directory maps identity keys to the member record of their live
// connection. The zero value is not usable; call New.
type Directory struct {
	mu       sync.RWMutex
	members  map[domain.IdentityKey]domain.Member
	capacity int

	// seq is advanced under mu; deliveries run outside it.
	seq sequencer

	logger  *zap.Logger
	metrics *telemetry.Metrics
}

// New returns an empty directory.
func New(opts ...Option) *Directory {
	d := &Directory{
		members:  make(map[domain.IdentityKey]domain.Member),
		capacity: DefaultCapacity,
		logger:   zap.NewNop(),
	}
	d.seq.init()
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Add admits m under key. The key is validated before anything is touched.
//
// If key is already present the call is a reconnection: the old record is
// replaced, the capacity limit does not apply, and other members see a
// "left" delta followed by a "joined" delta. The replaced connection's sink is
// closed with reason "replaced". A fresh join fails with ErrDirectoryFull
// when the directory is at capacity, and otherwise announces "joined".
func (d *Directory) Add(key domain.IdentityKey, m domain.Member) (domain.AddOutcome, error) {
	key, err := domain.ParseIdentityKey(string(key))
	if err != nil {
		return 0, err
	}
	if m.Outbound == nil {
		return 0, ErrNoOutbound
	}
	m.Key = key
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}

	d.mu.Lock()
	prev, exists := d.members[key]
	if !exists && d.capacity > 0 && len(d.members) >= d.capacity {
		d.mu.Unlock()
		d.logger.Warn("directory full, join refused",
			zap.Stringer("fingerprint", crypto.FingerprintKey(key)),
			zap.Int("capacity", d.capacity),
		)
		return 0, domain.ErrDirectoryFull
	}
	d.members[key] = m
	peers := d.peersLocked(key)
	size := len(d.members)
	ticket := d.seq.issue()
	d.metrics.SetMembers(size)
	d.mu.Unlock()

	outcome := domain.FreshJoin
	deltas := []domain.Delta{domain.Joined(key)}
	if exists {
		outcome = domain.Reconnect
		deltas = []domain.Delta{domain.Left(key), domain.Joined(key)}
		d.metrics.LobbyEvent(telemetry.EventReconnect)
	} else {
		d.metrics.LobbyEvent(telemetry.EventJoin)
	}

	d.logger.Info("member admitted",
		zap.Stringer("fingerprint", crypto.FingerprintKey(key)),
		zap.Stringer("conn_id", m.Conn),
		zap.Stringer("outcome", outcome),
		zap.Int("members", size),
	)

	d.fanout(ticket, peers, deltas...)

	if exists && prev.Conn != m.Conn {
		prev.Outbound.Close("replaced")
	}
	return outcome, nil
}

// Remove deletes key unconditionally. Removing an absent key is a no-op and
// broadcasts nothing. It reports whether an entry was removed.
func (d *Directory) Remove(key domain.IdentityKey) bool {
	return d.remove(key, "")
}

// Release removes key only if it is still owned by conn. Connection teardown
// uses it so that a superseded connection never evicts the one that
// replaced it.
func (d *Directory) Release(key domain.IdentityKey, conn domain.ConnID) bool {
	if conn == "" {
		return false
	}
	return d.remove(key, conn)
}

func (d *Directory) remove(key domain.IdentityKey, conn domain.ConnID) bool {
	key = normalize(key)

	d.mu.Lock()
	m, ok := d.members[key]
	if !ok || (conn != "" && m.Conn != conn) {
		d.mu.Unlock()
		return false
	}
	delete(d.members, key)
	peers := d.peersLocked(key)
	size := len(d.members)
	ticket := d.seq.issue()
	d.metrics.SetMembers(size)
	d.mu.Unlock()

	d.metrics.LobbyEvent(telemetry.EventLeave)
	d.logger.Info("member left",
		zap.Stringer("fingerprint", crypto.FingerprintKey(key)),
		zap.Stringer("conn_id", m.Conn),
		zap.Int("members", size),
	)

	d.fanout(ticket, peers, domain.Left(key))
	return true
}

// Lookup returns the record for key, if present.
func (d *Directory) Lookup(key domain.IdentityKey) (domain.Member, bool) {
	key = normalize(key)
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.members[key]
	return m, ok
}

// Snapshot returns every present identity key. Callers must not rely on the
// order.
func (d *Directory) Snapshot() []domain.IdentityKey {
	d.mu.RLock()
	keys := make([]domain.IdentityKey, 0, len(d.members))
	for k := range d.members {
		keys = append(keys, k)
	}
	d.mu.RUnlock()
	slices.Sort(keys)
	return keys
}

// Len returns the number of present identities.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.members)
}

// Capacity returns the configured limit; zero means unlimited.
func (d *Directory) Capacity() int { return d.capacity }

// peersLocked collects every member except subject. d.mu must be held.
func (d *Directory) peersLocked(subject domain.IdentityKey) []domain.Member {
	peers := make([]domain.Member, 0, len(d.members))
	for k, m := range d.members {
		if k == subject {
			continue
		}
		peers = append(peers, m)
	}
	return peers
}

func normalize(key domain.IdentityKey) domain.IdentityKey {
	return domain.IdentityKey(strings.ToLower(string(key)))
}

var _ domain.Directory = (*Directory)(nil)
