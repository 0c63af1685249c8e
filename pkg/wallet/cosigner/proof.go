package cosigner

import (
	xkey "github.com/Librechain/bmultisig/pkg/wallet/extended-key"
	recsig "github.com/Librechain/bmultisig/pkg/wallet/recoverable-sig"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// ProofIndex is the derivation index reserved for the ownership proof key.
// It is the highest non-hardened index, a branch no spending descriptor ever
// uses, so the key derived beneath it exists solely as an authentication
// capability.
const ProofIndex uint32 = hdkeychain.HardenedKeyStart - 1

// ProofMessage returns the buffer binding the cosigner identity to its
// account key: name (pascal) || authPubKey (33) || raw account key (74).
// The key is bound in its network-agnostic form.
func (c *Cosigner) ProofMessage() ([]byte, error) {
	rawKey, err := xkey.RawEncode(c.key)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 1+len(c.name)+len(c.authPubKey)+len(rawKey))
	buf = appendPascalString(buf, c.name)
	buf = append(buf, c.authPubKey...)
	buf = append(buf, rawKey...)
	return buf, nil
}

// ProofHash returns the digest of the proof message, for signers that sign
// digests rather than buffers.
func (c *Cosigner) ProofHash() ([]byte, error) {
	msg, err := c.ProofMessage()
	if err != nil {
		return nil, err
	}
	return recsig.Hash(msg), nil
}

// SignProof signs the proof hash with the key derived from the account
// extended private key at ProofIndex/0, demonstrating possession of the
// private counterpart of the advertised account key.
func (c *Cosigner) SignProof(
	accountPrvKey *hdkeychain.ExtendedKey,
) ([]byte, error) {
	if accountPrvKey == nil || !accountPrvKey.IsPrivate() {
		return nil, ErrMissingAccountPrivateKey
	}

	proofKey, err := deriveProofKey(accountPrvKey)
	if err != nil {
		return nil, err
	}
	prvKey, err := proofKey.ECPrivKey()
	if err != nil {
		return nil, err
	}

	digest, err := c.ProofHash()
	if err != nil {
		return nil, err
	}
	return recsig.SignDigest(prvKey, digest)
}

// VerifyProof checks the given signature against the proof key derived from
// the record's own account key at ProofIndex/0. It never returns an error:
// any mismatch between the signature and the record's name, authPubKey or
// key verifies false.
func (c *Cosigner) VerifyProof(sig []byte) bool {
	digest, err := c.ProofHash()
	if err != nil {
		return false
	}

	proofKey, err := deriveProofKey(c.key)
	if err != nil {
		return false
	}
	pubKey, err := proofKey.ECPubKey()
	if err != nil {
		return false
	}

	return recsig.Verify(digest, sig, pubKey)
}

// JoinMessage returns the buffer binding the cosigner identity to a specific
// wallet: walletName (pascal) || name (pascal) || authPubKey (33) ||
// raw account key (74).
func (c *Cosigner) JoinMessage(walletName string) ([]byte, error) {
	if walletName == "" {
		return nil, ErrMissingName
	}
	if len(walletName) > MaxNameLen {
		return nil, ErrNameTooLong
	}

	rawKey, err := xkey.RawEncode(c.key)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 2+len(walletName)+len(c.name)+len(c.authPubKey)+len(rawKey))
	buf = appendPascalString(buf, walletName)
	buf = appendPascalString(buf, c.name)
	buf = append(buf, c.authPubKey...)
	buf = append(buf, rawKey...)
	return buf, nil
}

// JoinHash returns the digest of the join message for the given wallet name.
func (c *Cosigner) JoinHash(walletName string) ([]byte, error) {
	msg, err := c.JoinMessage(walletName)
	if err != nil {
		return nil, err
	}
	return recsig.Hash(msg), nil
}

// SignJoin countersigns the join hash with the inviter's pairing private
// key, authorizing this cosigner to join the named wallet.
func (c *Cosigner) SignJoin(
	joinPrvKey *btcec.PrivateKey, walletName string,
) ([]byte, error) {
	digest, err := c.JoinHash(walletName)
	if err != nil {
		return nil, err
	}
	return recsig.SignDigest(joinPrvKey, digest)
}

// VerifyJoinSignature checks the stored join signature against the inviter's
// pairing public key for the given wallet name. A signature made for any
// other wallet name or cosigner identity verifies false. The method is
// side-effect free, storing the signature is the caller's responsibility.
func (c *Cosigner) VerifyJoinSignature(
	pubKey *btcec.PublicKey, walletName string,
) bool {
	digest, err := c.JoinHash(walletName)
	if err != nil {
		return false
	}
	return recsig.Verify(digest, c.joinSignature, pubKey)
}

func deriveProofKey(
	key *hdkeychain.ExtendedKey,
) (*hdkeychain.ExtendedKey, error) {
	child, err := key.Derive(ProofIndex)
	if err != nil {
		return nil, err
	}
	return child.Derive(0)
}
