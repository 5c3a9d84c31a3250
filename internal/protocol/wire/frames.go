package wire

import (
	"encoding/json"

	"ciphera-lobby/internal/domain"
)

const (
	TypeAuth        = "auth"
	TypeAuthSuccess = "auth_success"
	TypeError       = "error"
	TypeMessage     = "message"
	TypeLobbyUpdate = "lobby_update"
)

// AuthChallenge is signed by a client to prove ownership of its identity key.
var AuthChallenge = []byte("auth")

// CanonicalPayload returns the bytes a message signature covers.
func CanonicalPayload(text, timestamp string) []byte {
	return []byte(text + ":" + timestamp)
}

// AuthRequest is the first frame a client sends.
type AuthRequest struct {
	Type      string `json:"type"`
	PublicKey string `json:"publicKey"`
	Signature string `json:"signature"`
}

func (AuthRequest) FrameType() string { return TypeAuth }

// MarshalJSON always stamps the frame type.
func (f AuthRequest) MarshalJSON() ([]byte, error) {
	type alias AuthRequest
	f.Type = TypeAuth
	return json.Marshal(alias(f))
}

// AuthSuccess carries the full roster at the time of admission.
type AuthSuccess struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

func (AuthSuccess) FrameType() string { return TypeAuthSuccess }

func (f AuthSuccess) MarshalJSON() ([]byte, error) {
	type alias AuthSuccess
	f.Type = TypeAuthSuccess
	if f.Users == nil {
		f.Users = []string{}
	}
	return json.Marshal(alias(f))
}

// Error reports a rejection to the connection that caused it.
type Error struct {
	Type      string `json:"type"`
	Reason    string `json:"reason"`
	Details   string `json:"details,omitempty"`
	PublicKey string `json:"publicKey,omitempty"`
}

func (Error) FrameType() string { return TypeError }

func (f Error) MarshalJSON() ([]byte, error) {
	type alias Error
	f.Type = TypeError
	return json.Marshal(alias(f))
}

// SendRequest is a client's signed message. Sender is informational; the
// relay uses the identity bound to the connection.
type SendRequest struct {
	Type      string `json:"type"`
	Recipient string `json:"recipientPublicKey"`
	Message   string `json:"message"`
	Sender    string `json:"senderPublicKey,omitempty"`
	Signature string `json:"signature"`
	Timestamp string `json:"timestamp"`
}

func (SendRequest) FrameType() string { return TypeMessage }

func (f SendRequest) MarshalJSON() ([]byte, error) {
	type alias SendRequest
	f.Type = TypeMessage
	return json.Marshal(alias(f))
}

// Message is a validated message as delivered to its recipient.
type Message struct {
	Type      string `json:"type"`
	Sender    string `json:"senderPublicKey"`
	Recipient string `json:"recipientPublicKey"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
	Timestamp string `json:"timestamp"`
}

func (Message) FrameType() string { return TypeMessage }

func (f Message) MarshalJSON() ([]byte, error) {
	type alias Message
	f.Type = TypeMessage
	return json.Marshal(alias(f))
}

// MessageFrom builds the delivered frame for a validated message.
func MessageFrom(m domain.ValidatedMessage) Message {
	return Message{
		Sender:    m.Sender.String(),
		Recipient: m.Recipient.String(),
		Message:   m.Text,
		Signature: m.Signature,
		Timestamp: m.Timestamp,
	}
}

// JoinedUser is one entry of LobbyUpdate.Joined.
type JoinedUser struct {
	PublicKey string `json:"publicKey"`
}

// LobbyUpdate is a membership delta.
type LobbyUpdate struct {
	Type   string       `json:"type"`
	Joined []JoinedUser `json:"joined,omitempty"`
	Left   []string     `json:"left,omitempty"`
}

func (LobbyUpdate) FrameType() string { return TypeLobbyUpdate }

func (f LobbyUpdate) MarshalJSON() ([]byte, error) {
	type alias LobbyUpdate
	f.Type = TypeLobbyUpdate
	return json.Marshal(alias(f))
}

// LobbyUpdateFrom converts a domain delta to its wire form.
func LobbyUpdateFrom(d domain.Delta) LobbyUpdate {
	var u LobbyUpdate
	for _, k := range d.Joined {
		u.Joined = append(u.Joined, JoinedUser{PublicKey: k.String()})
	}
	for _, k := range d.Left {
		u.Left = append(u.Left, k.String())
	}
	return u
}

// Delta converts the update back into a domain delta.
func (f LobbyUpdate) Delta() domain.Delta {
	var d domain.Delta
	for _, j := range f.Joined {
		d.Joined = append(d.Joined, domain.IdentityKey(j.PublicKey))
	}
	for _, l := range f.Left {
		d.Left = append(d.Left, domain.IdentityKey(l))
	}
	return d
}

var (
	_ domain.Frame = AuthRequest{}
	_ domain.Frame = AuthSuccess{}
	_ domain.Frame = Error{}
	_ domain.Frame = SendRequest{}
	_ domain.Frame = Message{}
	_ domain.Frame = LobbyUpdate{}
)
