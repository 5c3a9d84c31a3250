package wire

import (
	"errors"

	"ciphera-lobby/internal/domain"
)

// Error reasons carried by error frames.
const (
	ReasonAuthFailed       = "auth_failed"
	ReasonMalformedJSON    = "malformed_json"
	ReasonSignatureInvalid = "signature_invalid"
	ReasonOffline          = "offline"
	ReasonInvalidRecipient = "invalid_recipient"
	ReasonNotAuthenticated = "not_authenticated"
	ReasonLobbyFull        = "lobby_full"
	ReasonDeliveryFailed   = "delivery_failed"
	ReasonRateLimited      = "rate_limited"
	ReasonUnsupportedType  = "unsupported_type"
	ReasonInternal         = "internal"
)

// ReasonFor maps a lobby error to its wire reason.
func ReasonFor(err error) string {
	var rej *domain.RejectionError
	if errors.As(err, &rej) && rej.Reason != "" {
		return rej.Reason
	}
	var del *domain.DeliveryError
	if errors.As(err, &del) {
		return ReasonDeliveryFailed
	}
	switch {
	case errors.Is(err, domain.ErrDirectoryFull):
		return ReasonLobbyFull
	case errors.Is(err, domain.ErrAuthFailed),
		errors.Is(err, domain.ErrMalformedAuth),
		errors.Is(err, domain.ErrInvalidIdentity):
		return ReasonAuthFailed
	case errors.Is(err, domain.ErrNotAuthenticated):
		return ReasonNotAuthenticated
	case errors.Is(err, domain.ErrMalformedFrame):
		return ReasonMalformedJSON
	case errors.Is(err, domain.ErrCannotMessageSelf):
		return ReasonInvalidRecipient
	case errors.Is(err, domain.ErrSignatureInvalid):
		return ReasonSignatureInvalid
	case errors.Is(err, domain.ErrRecipientOffline):
		return ReasonOffline
	case errors.Is(err, domain.ErrDeliveryFailed):
		return ReasonDeliveryFailed
	case errors.Is(err, domain.ErrUnsupportedFrame):
		return ReasonUnsupportedType
	default:
		return ReasonInternal
	}
}

// ErrorFrom builds the error frame reported for err.
func ErrorFrom(err error) Error {
	f := Error{Reason: ReasonFor(err), Details: err.Error()}
	var rej *domain.RejectionError
	if errors.As(err, &rej) && rej.Recipient != "" {
		f.PublicKey = rej.Recipient.String()
	}
	var del *domain.DeliveryError
	if errors.As(err, &del) {
		f.PublicKey = del.Recipient.String()
	}
	return f
}
