package types

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidIdentity = errors.New("lobby: invalid identity key")
	ErrDirectoryFull   = errors.New("lobby: directory is full")

	ErrAuthFailed    = errors.New("auth: signature verification failed")
	ErrMalformedAuth = errors.New("auth: malformed auth frame")

	ErrNotAuthenticated  = errors.New("message: sender is not authenticated")
	ErrMalformedFrame    = errors.New("message: malformed frame")
	ErrCannotMessageSelf = errors.New("message: cannot message self")
	ErrSignatureInvalid  = errors.New("message: signature invalid")
	ErrRecipientOffline  = errors.New("message: recipient offline")
	ErrDeliveryFailed    = errors.New("message: delivery failed")

	ErrOutboundClosed = errors.New("outbound: closed")
	ErrOutboundFull   = errors.New("outbound: queue full")

	ErrUnsupportedFrame = errors.New("relay: unsupported frame type")
)

// RejectionError is returned by the message pipeline when a stage fails. Err
// is one of the message sentinel errors; Recipient is set for offline
// recipients.
type RejectionError struct {
	Reason    string
	Recipient IdentityKey
	Err       error
}

func (e *RejectionError) Error() string {
	if e.Recipient != "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Recipient)
	}
	return e.Err.Error()
}

func (e *RejectionError) Unwrap() error { return e.Err }

// DeliveryError reports a validated message that could not be pushed to its
// recipient. It wraps ErrDeliveryFailed and the underlying cause.
type DeliveryError struct {
	Recipient IdentityKey
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%v to %s: %v", ErrDeliveryFailed, e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() []error { return []error{ErrDeliveryFailed, e.Err} }
