package auth

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ciphera-lobby/internal/crypto"
	"ciphera-lobby/internal/domain"
	"ciphera-lobby/internal/protocol/wire"
	"ciphera-lobby/internal/telemetry"
)

// State is a handshake state.
type State uint8

const (
	AwaitingAuthFrame State = iota
	Verifying
	Admitted
	Rejected
)

func (s State) String() string {
	switch s {
	case AwaitingAuthFrame:
		return "awaiting_auth_frame"
	case Verifying:
		return "verifying"
	case Admitted:
		return "admitted"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Rejection reasons, as used in logs and metrics.
const (
	ReasonMalformed  = "malformed"
	ReasonAuthFailed = "auth_failed"
	ReasonLobbyFull  = "lobby_full"
)

// Service runs handshakes against a shared directory.
type Service struct {
	dir      domain.Directory
	verifier domain.Verifier
	logger   *zap.Logger
	metrics  *telemetry.Metrics
}

// New returns a handshake service. A nil logger is replaced by a no-op one.
func New(dir domain.Directory, verifier domain.Verifier, logger *zap.Logger, metrics *telemetry.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		dir:      dir,
		verifier: verifier,
		logger:   logger.Named("auth"),
		metrics:  metrics,
	}
}

// Handshake consumes the first frame of connection conn. On success the
// identity is in the directory with out as its outbound sink.
func (s *Service) Handshake(raw []byte, conn domain.ConnID, out domain.Outbound) (domain.Admission, error) {
	log := s.logger.With(zap.Stringer("conn_id", conn))
	log.Debug("handshake", zap.Stringer("state", AwaitingAuthFrame))

	req, err := wire.DecodeAuth(raw)
	if err != nil {
		return s.reject(log, fmt.Errorf("%w: %v", domain.ErrMalformedAuth, err))
	}
	pub, err := crypto.HexDecode(req.PublicKey)
	if err != nil {
		return s.reject(log, fmt.Errorf("%w: public key is not hex", domain.ErrMalformedAuth))
	}
	sig, err := crypto.HexDecode(req.Signature)
	if err != nil {
		return s.reject(log, fmt.Errorf("%w: signature is not hex", domain.ErrMalformedAuth))
	}

	log.Debug("handshake", zap.Stringer("state", Verifying))
	if !s.verifier.Verify(pub, wire.AuthChallenge, sig) {
		return s.reject(log, domain.ErrAuthFailed)
	}
	key, err := domain.ParseIdentityKey(req.PublicKey)
	if err != nil {
		return s.reject(log, fmt.Errorf("%w: %w", domain.ErrAuthFailed, err))
	}

	outcome, err := s.dir.Add(key, domain.Member{Key: key, Conn: conn, Outbound: out})
	if err != nil {
		return s.reject(log, err)
	}
	roster := s.dir.Snapshot()

	s.metrics.Handshake(telemetry.ResultAdmitted, outcome.String())
	log.Info("handshake",
		zap.Stringer("state", Admitted),
		zap.Stringer("fingerprint", crypto.FingerprintKey(key)),
		zap.Stringer("outcome", outcome),
		zap.Int("roster", len(roster)),
	)
	return domain.Admission{Key: key, Roster: roster, Outcome: outcome}, nil
}

func (s *Service) reject(log *zap.Logger, err error) (domain.Admission, error) {
	reason := Reason(err)
	s.metrics.Handshake(telemetry.ResultRejected, reason)
	log.Info("handshake",
		zap.Stringer("state", Rejected),
		zap.String("reason", reason),
		zap.Error(err),
	)
	return domain.Admission{}, err
}

// Reason classifies a handshake error.
func Reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedAuth):
		return ReasonMalformed
	case errors.Is(err, domain.ErrDirectoryFull):
		return ReasonLobbyFull
	default:
		return ReasonAuthFailed
	}
}

var _ domain.AuthService = (*Service)(nil)
