// Package message validates signed text messages and routes them to their
// recipient's connection.
//
// Validation is a strict, fail-fast sequence; the first failing stage decides
// the single error reported:
//
//  1. the sender (the identity bound to the connection) must be online,
//  2. the frame must parse into recipient, text, signature and timestamp,
//  3. the recipient must not be the sender,
//  4. the signature must verify under the sender's key over
//     "<message>:<timestamp>",
//  5. the recipient must be online.
//
// Routing looks the recipient up again and pushes the message onto its
// outbound sink once. A recipient that vanished in between, or a sink that
// refuses the push, is a delivery error rather than a validation error.
// Nothing is persisted or retried.
package message
