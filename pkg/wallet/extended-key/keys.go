package xkey

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	// EncodedLen is the size of a network-tagged extended public key on the
	// wire: 78 serialized bytes plus the 4-byte base58check checksum.
	EncodedLen = 82
	// RawLen is the size of the network-agnostic form returned by RawEncode.
	RawLen = 74
	// PublicKeyLen is the size of a compressed EC public key.
	PublicKeyLen = 33
)

// Encode serializes the given extended public key to its wire form, tagged
// with the HD version bytes of the given network.
func Encode(key *hdkeychain.ExtendedKey, net *chaincfg.Params) ([]byte, error) {
	if key == nil {
		return nil, ErrMissingKey
	}
	if net == nil {
		return nil, ErrMissingNetwork
	}
	if key.IsPrivate() {
		return nil, ErrPrivateKey
	}

	pub, err := key.CloneWithVersion(net.HDPublicKeyID[:])
	if err != nil {
		return nil, err
	}
	return base58.Decode(pub.String()), nil
}

// Decode deserializes an extended public key from its wire form, checking
// both the checksum and the HD version bytes against the given network.
func Decode(buf []byte, net *chaincfg.Params) (*hdkeychain.ExtendedKey, error) {
	if net == nil {
		return nil, ErrMissingNetwork
	}
	if len(buf) != EncodedLen {
		return nil, ErrInvalidKeyEncoding
	}
	if !bytes.Equal(buf[:4], net.HDPublicKeyID[:]) {
		return nil, ErrKeyNetworkMismatch
	}

	key, err := hdkeychain.NewKeyFromString(base58.Encode(buf))
	if err != nil {
		return nil, ErrInvalidKeyEncoding
	}
	if key.IsPrivate() {
		return nil, ErrPrivateKey
	}
	return key, nil
}

// RawEncode serializes an extended public key without any network tag nor
// checksum, ie. depth (1) || parent fingerprint (4) || child index (4) ||
// chain code (32) || compressed public key (33).
// This is the form bound into protocol hashes, so that the same key yields
// the same digest on every network.
func RawEncode(key *hdkeychain.ExtendedKey) ([]byte, error) {
	if key == nil {
		return nil, ErrMissingKey
	}
	if key.IsPrivate() {
		return nil, ErrPrivateKey
	}

	pubKey, err := key.ECPubKey()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, RawLen)
	buf = append(buf, key.Depth())
	buf = binary.BigEndian.AppendUint32(buf, key.ParentFingerprint())
	buf = binary.BigEndian.AppendUint32(buf, key.ChildIndex())
	buf = append(buf, key.ChainCode()...)
	buf = append(buf, pubKey.SerializeCompressed()...)
	return buf, nil
}

// PublicKeyBytes returns the compressed EC public key of the given extended
// key.
func PublicKeyBytes(key *hdkeychain.ExtendedKey) ([]byte, error) {
	if key == nil {
		return nil, ErrMissingKey
	}
	pubKey, err := key.ECPubKey()
	if err != nil {
		return nil, err
	}
	return pubKey.SerializeCompressed(), nil
}
