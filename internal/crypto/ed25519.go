package crypto

import (
	"crypto/ed25519"
	"crypto/rand"

	"ciphera-lobby/internal/domain"
)

// GenerateEd25519 returns a new Ed25519 signing key pair.
func GenerateEd25519() (priv domain.Ed25519Private, pub domain.Ed25519Public, err error) {
	pk, sk, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return priv, pub, err
	}
	copy(priv[:], sk)
	copy(pub[:], pk)
	return priv, pub, nil
}

// SignEd25519 signs msg with priv and returns the signature.
func SignEd25519(priv domain.Ed25519Private, msg []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(priv[:]), msg)
}

// VerifyEd25519 verifies sig over msg with pub.
func VerifyEd25519(pub domain.Ed25519Public, msg, sig []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig)
}

// Ed25519Verifier implements domain.Verifier over raw key bytes.
type Ed25519Verifier struct{}

// Verify reports whether sig is a valid signature of msg by pub. Inputs of
// the wrong size are rejected rather than passed to ed25519.Verify, which
// panics on a short public key.
func (Ed25519Verifier) Verify(pub, msg, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), msg, sig)
}

// IdentitySigner signs with a loaded identity.
type IdentitySigner struct {
	ID domain.Identity
}

// Sign implements domain.Signer.
func (s IdentitySigner) Sign(msg []byte) []byte { return SignEd25519(s.ID.EdPriv, msg) }

var (
	_ domain.Verifier = Ed25519Verifier{}
	_ domain.Signer   = IdentitySigner{}
)
