package domain

import (
	"fmt"

	"github.com/Librechain/bmultisig/pkg/wallet/cosigner"
	xkey "github.com/Librechain/bmultisig/pkg/wallet/extended-key"
	recsig "github.com/Librechain/bmultisig/pkg/wallet/recoverable-sig"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
)

var (
	ErrWalletMissingName        = fmt.Errorf("missing wallet name")
	ErrWalletNameTooLong        = fmt.Errorf("wallet name must not exceed 255 bytes")
	ErrWalletMissingNetwork     = fmt.Errorf("missing network name")
	ErrWalletInvalidNetwork     = fmt.Errorf("unknown network")
	ErrWalletInvalidThreshold   = fmt.Errorf("invalid m-of-n threshold")
	ErrWalletInvalidJoinPubKey  = fmt.Errorf("invalid join public key")
	ErrWalletFull               = fmt.Errorf("wallet has reached its number of cosigners")
	ErrCosignerNotFound         = fmt.Errorf("cosigner not found in wallet")
	ErrCosignerAlreadyJoined    = fmt.Errorf("cosigner name already joined the wallet")
	ErrInvalidOwnershipProof    = fmt.Errorf("invalid ownership proof signature")
	ErrInvalidJoinAuthorization = fmt.Errorf("invalid join authorization signature")

	networks = map[string]*chaincfg.Params{
		chaincfg.MainNetParams.Name:       &chaincfg.MainNetParams,
		chaincfg.TestNet3Params.Name:      &chaincfg.TestNet3Params,
		chaincfg.RegressionNetParams.Name: &chaincfg.RegressionNetParams,
		chaincfg.SimNetParams.Name:        &chaincfg.SimNetParams,
	}
)

// Wallet is the entity representing an m-of-n multisig wallet under
// coordination: its threshold, the pairing public key countersigning
// invitations, and the cosigners admitted so far.
//
// Cosigners are persisted in their wire encoding, so the stored rows are
// byte-for-byte what travels on the wire.
type Wallet struct {
	Name         string
	M            uint8
	N            uint8
	NetworkName  string
	JoinPubKey   []byte
	CosignerRows [][]byte
}

// NewWallet returns a new, empty Wallet for the given m-of-n threshold and
// pairing public key.
func NewWallet(
	name string, m, n uint8, network string, joinPubKey []byte,
) (*Wallet, error) {
	if name == "" {
		return nil, ErrWalletMissingName
	}
	if len(name) > cosigner.MaxNameLen {
		return nil, ErrWalletNameTooLong
	}
	if m == 0 || n == 0 || m > n {
		return nil, ErrWalletInvalidThreshold
	}
	if network == "" {
		return nil, ErrWalletMissingNetwork
	}
	if _, ok := networks[network]; !ok {
		return nil, ErrWalletInvalidNetwork
	}
	if len(joinPubKey) != xkey.PublicKeyLen {
		return nil, ErrWalletInvalidJoinPubKey
	}
	if _, err := btcec.ParsePubKey(joinPubKey); err != nil {
		return nil, ErrWalletInvalidJoinPubKey
	}

	pubKey := make([]byte, xkey.PublicKeyLen)
	copy(pubKey, joinPubKey)
	return &Wallet{
		Name:        name,
		M:           m,
		N:           n,
		NetworkName: network,
		JoinPubKey:  pubKey,
	}, nil
}

// Network returns the chain params matching the wallet's network name.
func (w *Wallet) Network() *chaincfg.Params {
	return networks[w.NetworkName]
}

// IsComplete returns whether all n cosigners joined the wallet.
func (w *Wallet) IsComplete() bool {
	return len(w.CosignerRows) >= int(w.N)
}

// Cosigners returns the decoded records of all joined cosigners.
func (w *Wallet) Cosigners() ([]*cosigner.Cosigner, error) {
	list := make([]*cosigner.Cosigner, 0, len(w.CosignerRows))
	for _, row := range w.CosignerRows {
		c, err := cosigner.Deserialize(row, w.Network())
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, nil
}

// GetCosigner returns the record of the cosigner with the given id.
func (w *Wallet) GetCosigner(id uint8) (*cosigner.Cosigner, error) {
	cosigners, err := w.Cosigners()
	if err != nil {
		return nil, err
	}
	for _, c := range cosigners {
		if c.ID() == id {
			return c, nil
		}
	}
	return nil, ErrCosignerNotFound
}

// AddCosigner verifies the given record's ownership proof and join
// authorization against this wallet, then admits it by assigning the next
// free id and storing its wire encoding. The admitted record is returned.
func (w *Wallet) AddCosigner(
	c *cosigner.Cosigner, proofSig []byte,
) (*cosigner.Cosigner, error) {
	if w.IsComplete() {
		return nil, ErrWalletFull
	}

	cosigners, err := w.Cosigners()
	if err != nil {
		return nil, err
	}
	for _, cc := range cosigners {
		if cc.Name() == c.Name() {
			return nil, ErrCosignerAlreadyJoined
		}
	}

	if !c.VerifyProof(proofSig) {
		return nil, ErrInvalidOwnershipProof
	}

	joinPubKey, err := btcec.ParsePubKey(w.JoinPubKey)
	if err != nil {
		return nil, ErrWalletInvalidJoinPubKey
	}
	if !c.VerifyJoinSignature(joinPubKey, w.Name) {
		return nil, ErrInvalidJoinAuthorization
	}

	admitted := c.Clone()
	admitted.SetID(uint8(len(w.CosignerRows)))

	row, err := admitted.Serialize(w.Network())
	if err != nil {
		return nil, err
	}
	w.CosignerRows = append(w.CosignerRows, row)
	return admitted, nil
}

// RotateCosignerToken replaces the session token of the cosigner with the
// given id and bumps its token depth, returning the updated record.
func (w *Wallet) RotateCosignerToken(
	id uint8, token []byte,
) (*cosigner.Cosigner, error) {
	for i, row := range w.CosignerRows {
		c, err := cosigner.Deserialize(row, w.Network())
		if err != nil {
			return nil, err
		}
		if c.ID() != id {
			continue
		}

		if err := c.RotateToken(token); err != nil {
			return nil, err
		}
		updatedRow, err := c.Serialize(w.Network())
		if err != nil {
			return nil, err
		}
		w.CosignerRows[i] = updatedRow
		return c, nil
	}
	return nil, ErrCosignerNotFound
}

// VerifyCosignerSignature checks a transport-level request signature made
// with the auth key of the cosigner with the given id.
func (w *Wallet) VerifyCosignerSignature(
	id uint8, digest, sig []byte,
) (bool, error) {
	c, err := w.GetCosigner(id)
	if err != nil {
		return false, err
	}
	authPubKey, err := btcec.ParsePubKey(c.AuthPubKey())
	if err != nil {
		return false, err
	}
	return recsig.Verify(digest, sig, authPubKey), nil
}
