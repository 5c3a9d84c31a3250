package domain

import (
	interfaces "ciphera-lobby/internal/domain/interfaces"
	types "ciphera-lobby/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	IdentityKey      = types.IdentityKey
	ConnID           = types.ConnID
	Fingerprint      = types.Fingerprint
	Member           = types.Member
	AddOutcome       = types.AddOutcome
	Admission        = types.Admission
	Delta            = types.Delta
	Frame            = types.Frame
	Outbound         = types.Outbound
	PendingMessage   = types.PendingMessage
	ValidatedMessage = types.ValidatedMessage
	Identity         = types.Identity
	Ed25519Public    = types.Ed25519Public
	Ed25519Private   = types.Ed25519Private
	RejectionError   = types.RejectionError
	DeliveryError    = types.DeliveryError
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	Verifier        = interfaces.Verifier
	Signer          = interfaces.Signer
	Directory       = interfaces.Directory
	AuthService     = interfaces.AuthService
	MessageService  = interfaces.MessageService
	IdentityService = interfaces.IdentityService
	IdentityStore   = interfaces.IdentityStore
)

const (
	IdentityKeyBytes = types.IdentityKeyBytes

	FreshJoin = types.FreshJoin
	Reconnect = types.Reconnect
)

var (
	ParseIdentityKey = types.ParseIdentityKey
	Joined           = types.Joined
	Left             = types.Left
)

var (
	ErrInvalidIdentity   = types.ErrInvalidIdentity
	ErrDirectoryFull     = types.ErrDirectoryFull
	ErrAuthFailed        = types.ErrAuthFailed
	ErrMalformedAuth     = types.ErrMalformedAuth
	ErrNotAuthenticated  = types.ErrNotAuthenticated
	ErrMalformedFrame    = types.ErrMalformedFrame
	ErrCannotMessageSelf = types.ErrCannotMessageSelf
	ErrSignatureInvalid  = types.ErrSignatureInvalid
	ErrRecipientOffline  = types.ErrRecipientOffline
	ErrDeliveryFailed    = types.ErrDeliveryFailed
	ErrOutboundClosed    = types.ErrOutboundClosed
	ErrOutboundFull      = types.ErrOutboundFull
	ErrUnsupportedFrame  = types.ErrUnsupportedFrame
)
