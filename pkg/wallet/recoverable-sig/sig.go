// Package recsig wraps the compact recoverable ECDSA signatures used to
// authenticate cosigner records. Signatures are always made over a
// double-SHA256 digest and verified by recovering the public key from the
// signature itself, so a verifier only needs the expected public key.
package recsig

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// DigestLen is the size of the message digest being signed.
	DigestLen = 32
	// SignatureLen is the size of a compact recoverable signature.
	SignatureLen = 65
)

// Hash returns the double-SHA256 digest of the given message.
func Hash(msg []byte) []byte {
	return chainhash.DoubleHashB(msg)
}

// Sign hashes the given message and signs the resulting digest.
func Sign(prvKey *btcec.PrivateKey, msg []byte) ([]byte, error) {
	return SignDigest(prvKey, Hash(msg))
}

// SignDigest signs a precomputed digest, returning a 65-byte compact
// recoverable signature. Sign and SignDigest produce interchangeable
// signatures for the same message.
func SignDigest(prvKey *btcec.PrivateKey, digest []byte) ([]byte, error) {
	if prvKey == nil {
		return nil, ErrMissingPrivateKey
	}
	if len(digest) != DigestLen {
		return nil, ErrInvalidDigest
	}
	return ecdsa.SignCompact(prvKey, digest, true)
}

// Verify checks the given signature over digest against the expected public
// key. It never returns an error: any malformed input verifies false.
func Verify(digest, sig []byte, pubKey *btcec.PublicKey) bool {
	if pubKey == nil {
		return false
	}
	if len(digest) != DigestLen || len(sig) != SignatureLen {
		return false
	}

	recovered, _, err := ecdsa.RecoverCompact(sig, digest)
	if err != nil {
		return false
	}
	return recovered.IsEqual(pubKey)
}
