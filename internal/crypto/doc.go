// Package crypto exposes the minimal primitives used by the lobby and its
// clients.
//
// Contents
//
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     SignEd25519, VerifyEd25519)
//   - Ed25519Verifier, the signature capability consumed by the handshake and
//     the message pipeline
//   - Hex helpers for keys and signatures on the wire (HexEncode, HexDecode)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Verification never panics: keys and signatures of the wrong length simply
// fail to verify. Callers should treat private keys as sensitive and rely on
// Wipe when practical to reduce lifetime in memory.
package crypto
