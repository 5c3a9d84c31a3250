package types

// PendingMessage is an inbound message before validation. Every field is an
// untrusted claim.
type PendingMessage struct {
	Recipient string `json:"recipientPublicKey"`
	Text      string `json:"message"`
	Sender    string `json:"senderPublicKey,omitempty"`
	Signature string `json:"signature"`
	Timestamp string `json:"timestamp"`
}

// ValidatedMessage has passed every pipeline stage: the signature matches
// Sender over the canonical payload and Recipient was online.
type ValidatedMessage struct {
	Sender    IdentityKey
	Recipient IdentityKey
	Text      string
	Signature string
	Timestamp string
}
