// Package store provides file-based persistence for the client's identity.
//
// The identity is serialised as JSON, sealed with a scrypt-derived
// ChaCha20-Poly1305 key, and written atomically via a temp file and rename.
// Files live under the user's configured home directory.
package store
