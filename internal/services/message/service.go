package message

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"ciphera-lobby/internal/crypto"
	"ciphera-lobby/internal/domain"
	"ciphera-lobby/internal/protocol/wire"
	"ciphera-lobby/internal/telemetry"
)

// Service runs the validation pipeline against a shared directory.
type Service struct {
	dir      domain.Directory
	verifier domain.Verifier
	logger   *zap.Logger
	metrics  *telemetry.Metrics
}

// New constructs a message service. A nil logger is replaced by a no-op one.
func New(dir domain.Directory, verifier domain.Verifier, logger *zap.Logger, metrics *telemetry.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		dir:      dir,
		verifier: verifier,
		logger:   logger.Named("message"),
		metrics:  metrics,
	}
}

// Validate runs every stage against raw, sent by the connection authenticated
// as sender. It returns a *domain.RejectionError on the first failing stage.
func (s *Service) Validate(sender domain.IdentityKey, raw []byte) (domain.ValidatedMessage, error) {
	if _, ok := s.dir.Lookup(sender); !ok {
		return domain.ValidatedMessage{}, reject(wire.ReasonNotAuthenticated, domain.ErrNotAuthenticated, "")
	}
	sender = domain.IdentityKey(strings.ToLower(sender.String()))

	pending, err := wire.DecodeSend(raw)
	if err != nil {
		s.logger.Debug("malformed message frame", zap.String("from", sender.Short()), zap.Error(err))
		return domain.ValidatedMessage{}, reject(wire.ReasonMalformedJSON, domain.ErrMalformedFrame, "")
	}
	recipient, err := domain.ParseIdentityKey(pending.Recipient)
	if err != nil {
		return domain.ValidatedMessage{}, reject(wire.ReasonMalformedJSON, domain.ErrMalformedFrame, "")
	}

	if recipient == sender {
		return domain.ValidatedMessage{}, reject(wire.ReasonInvalidRecipient, domain.ErrCannotMessageSelf, "")
	}

	if !s.verify(sender, pending) {
		return domain.ValidatedMessage{}, reject(wire.ReasonSignatureInvalid, domain.ErrSignatureInvalid, "")
	}

	if _, ok := s.dir.Lookup(recipient); !ok {
		return domain.ValidatedMessage{}, reject(wire.ReasonOffline, domain.ErrRecipientOffline, recipient)
	}

	return domain.ValidatedMessage{
		Sender:    sender,
		Recipient: recipient,
		Text:      pending.Text,
		Signature: pending.Signature,
		Timestamp: pending.Timestamp,
	}, nil
}

func (s *Service) verify(sender domain.IdentityKey, pending domain.PendingMessage) bool {
	pub, err := crypto.HexDecode(sender.String())
	if err != nil {
		return false
	}
	sig, err := crypto.HexDecode(pending.Signature)
	if err != nil {
		return false
	}
	return s.verifier.Verify(pub, wire.CanonicalPayload(pending.Text, pending.Timestamp), sig)
}

// Route pushes a validated message onto the recipient's sink. It is fire and
// forget: failures come back as *domain.DeliveryError and are not retried.
func (s *Service) Route(msg domain.ValidatedMessage) error {
	m, ok := s.dir.Lookup(msg.Recipient)
	if !ok {
		return &domain.DeliveryError{Recipient: msg.Recipient, Err: domain.ErrRecipientOffline}
	}
	if err := m.Outbound.Deliver(wire.MessageFrom(msg)); err != nil {
		return &domain.DeliveryError{Recipient: msg.Recipient, Err: err}
	}
	return nil
}

// Handle validates raw and routes it. The returned error is either a
// *domain.RejectionError or a *domain.DeliveryError.
func (s *Service) Handle(sender domain.IdentityKey, raw []byte) error {
	msg, err := s.Validate(sender, raw)
	if err == nil {
		err = s.Route(msg)
	}
	if err != nil {
		reason := wire.ReasonFor(err)
		s.metrics.Message(reason)
		s.logger.Debug("message not delivered",
			zap.String("from", sender.Short()),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return err
	}
	s.metrics.Message(telemetry.ResultDelivered)
	s.logger.Debug("message delivered",
		zap.String("from", msg.Sender.Short()),
		zap.String("to", msg.Recipient.Short()),
	)
	return nil
}

func reject(reason string, err error, recipient domain.IdentityKey) error {
	return &domain.RejectionError{Reason: reason, Recipient: recipient, Err: err}
}

// IsRejection reports whether err came from validation rather than routing.
func IsRejection(err error) bool {
	var rej *domain.RejectionError
	return errors.As(err, &rej)
}

var _ domain.MessageService = (*Service)(nil)
