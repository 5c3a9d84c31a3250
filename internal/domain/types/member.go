package types

import "time"

// Member binds an identity key to the live outbound sink of one connection.
// A Member is never mutated after it is stored; reconnection replaces it.
type Member struct {
	Key      IdentityKey
	Conn     ConnID
	Outbound Outbound
	JoinedAt time.Time
}

// AddOutcome tells a fresh join apart from a reconnection.
type AddOutcome uint8

const (
	FreshJoin AddOutcome = iota + 1
	Reconnect
)

func (o AddOutcome) String() string {
	switch o {
	case FreshJoin:
		return "fresh_join"
	case Reconnect:
		return "reconnect"
	default:
		return "unknown"
	}
}

// Delta is a membership change notification. A single Delta never carries
// the same identity in both halves.
type Delta struct {
	Joined []IdentityKey
	Left   []IdentityKey
}

// Joined returns a Delta announcing keys as newly present.
func Joined(keys ...IdentityKey) Delta { return Delta{Joined: keys} }

// Left returns a Delta announcing keys as gone.
func Left(keys ...IdentityKey) Delta { return Delta{Left: keys} }

// Empty reports whether d carries no change.
func (d Delta) Empty() bool { return len(d.Joined) == 0 && len(d.Left) == 0 }

// Admission is the result of a successful handshake: the admitted key, the
// roster captured right after the directory write, and whether this was a
// reconnection.
type Admission struct {
	Key     IdentityKey
	Roster  []IdentityKey
	Outcome AddOutcome
}
