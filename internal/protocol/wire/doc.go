// Package wire defines the JSON frames exchanged between lobby clients and
// the relay, and the canonical byte strings that clients sign.
//
// Frames
//
//	{"type":"auth","publicKey":<hex-64>,"signature":<hex-128>}
//	{"type":"auth_success","users":[<hex-64>, ...]}
//	{"type":"error","reason":<reason>,"details":<string>}
//	{"type":"message","recipientPublicKey":..,"message":..,"senderPublicKey":..,"signature":..,"timestamp":<RFC3339>}
//	{"type":"lobby_update","joined":[{"publicKey":<hex-64>}],"left":[<hex-64>]}
//
// The auth challenge is the literal ASCII "auth". A message signature covers
// CanonicalPayload(message, timestamp), i.e. "<message>:<timestamp>". Signer
// and verifier must agree on these bytes exactly.
package wire
