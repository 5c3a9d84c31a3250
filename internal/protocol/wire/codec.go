package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ciphera-lobby/internal/domain"
)

var (
	ErrInvalidJSON      = errors.New("wire: invalid json")
	ErrMissingType      = errors.New("wire: missing frame type")
	ErrUnexpectedType   = errors.New("wire: unexpected frame type")
	ErrMissingField     = errors.New("wire: missing required field")
	ErrInvalidTimestamp = errors.New("wire: timestamp is not RFC3339")
)

type header struct {
	Type string `json:"type"`
}

// PeekType returns the "type" discriminator of a raw frame.
func PeekType(raw []byte) (string, error) {
	var h header
	if err := json.Unmarshal(raw, &h); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if h.Type == "" {
		return "", ErrMissingType
	}
	return h.Type, nil
}

// DecodeAuth parses an auth frame. Hex content is not checked here.
func DecodeAuth(raw []byte) (AuthRequest, error) {
	var f AuthRequest
	if err := json.Unmarshal(raw, &f); err != nil {
		return AuthRequest{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if f.Type != TypeAuth {
		return AuthRequest{}, fmt.Errorf("%w: %q", ErrUnexpectedType, f.Type)
	}
	if f.PublicKey == "" || f.Signature == "" {
		return AuthRequest{}, fmt.Errorf("%w: publicKey and signature", ErrMissingField)
	}
	return f, nil
}

// DecodeSend parses a client message frame into a pending message. The
// recipient, signature and timestamp must be present and the timestamp must
// be RFC3339; the text may be empty.
func DecodeSend(raw []byte) (domain.PendingMessage, error) {
	var f SendRequest
	if err := json.Unmarshal(raw, &f); err != nil {
		return domain.PendingMessage{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if f.Type != TypeMessage {
		return domain.PendingMessage{}, fmt.Errorf("%w: %q", ErrUnexpectedType, f.Type)
	}
	switch {
	case f.Recipient == "":
		return domain.PendingMessage{}, fmt.Errorf("%w: recipientPublicKey", ErrMissingField)
	case f.Signature == "":
		return domain.PendingMessage{}, fmt.Errorf("%w: signature", ErrMissingField)
	case f.Timestamp == "":
		return domain.PendingMessage{}, fmt.Errorf("%w: timestamp", ErrMissingField)
	}
	if _, err := time.Parse(time.RFC3339, f.Timestamp); err != nil {
		return domain.PendingMessage{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}
	return domain.PendingMessage{
		Recipient: f.Recipient,
		Text:      f.Message,
		Sender:    f.Sender,
		Signature: f.Signature,
		Timestamp: f.Timestamp,
	}, nil
}

// Decode parses any frame a relay sends to a client.
func Decode(raw []byte) (domain.Frame, error) {
	typ, err := PeekType(raw)
	if err != nil {
		return nil, err
	}
	var f domain.Frame
	switch typ {
	case TypeAuthSuccess:
		f = &AuthSuccess{}
	case TypeError:
		f = &Error{}
	case TypeMessage:
		f = &Message{}
	case TypeLobbyUpdate:
		f = &LobbyUpdate{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnexpectedType, typ)
	}
	if err := json.Unmarshal(raw, f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return f, nil
}

// Encode serialises a frame.
func Encode(f domain.Frame) ([]byte, error) {
	return json.Marshal(f)
}
