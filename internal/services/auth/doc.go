// Package auth implements the lobby's authentication handshake.
//
// A new connection sends exactly one auth frame carrying its identity key and
// an Ed25519 signature over the literal challenge "auth". The handshake moves
// through AwaitingAuthFrame, Verifying and ends in Admitted or Rejected:
//
//   - a frame that does not parse, or whose key or signature is not hex, is
//     rejected as malformed;
//   - a signature that does not verify under the claimed key is rejected as
//     auth_failed, and the directory is never touched;
//   - otherwise the identity is added to the directory (which may still
//     refuse a fresh join when full) and the current roster is returned.
//
// There are no retries; a rejected handshake ends the connection attempt.
package auth
