// Package hdwallet derives the account keys a cosigner advertises to the
// wallet coordinator from a BIP39 mnemonic. Spending-side derivation lives
// with the (external) signing wallet, this package only covers the keys the
// coordination protocols need.
package hdwallet

import (
	"encoding/binary"

	path "github.com/Librechain/bmultisig/pkg/wallet/derivation-path"
	"github.com/Librechain/bmultisig/pkg/wallet/mnemonic"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

// Wallet holds the mnemonic and root path from which account keys are
// derived.
type Wallet struct {
	mnemonic []string
	rootPath path.DerivationPath
	net      *chaincfg.Params
}

type NewWalletArgs struct {
	Mnemonic []string
	RootPath string
	Network  *chaincfg.Params
}

func (a NewWalletArgs) validate() error {
	if len(a.Mnemonic) <= 0 {
		return ErrMissingMnemonic
	}
	if err := mnemonic.Validate(a.Mnemonic); err != nil {
		return err
	}
	if a.RootPath == "" {
		return ErrMissingRootPath
	}
	if _, err := path.ParseRootDerivationPath(a.RootPath); err != nil {
		return err
	}
	if a.Network == nil {
		return ErrMissingNetwork
	}
	return nil
}

// NewWallet returns a Wallet for the given mnemonic, root path in the form
// m/purpose'/coin_type' and network.
func NewWallet(args NewWalletArgs) (*Wallet, error) {
	if err := args.validate(); err != nil {
		return nil, err
	}

	rootPath, _ := path.ParseRootDerivationPath(args.RootPath)
	return &Wallet{args.Mnemonic, rootPath, args.Network}, nil
}

// AccountKey returns the extended private key at rootPath/account'.
func (w *Wallet) AccountKey(account uint32) (*hdkeychain.ExtendedKey, error) {
	if account >= hdkeychain.HardenedKeyStart {
		return nil, ErrOutOfRangeAccount
	}

	key, err := w.masterKey()
	if err != nil {
		return nil, err
	}
	for _, step := range w.rootPath {
		if key, err = key.Derive(step); err != nil {
			return nil, err
		}
	}
	return key.Derive(hdkeychain.HardenedKeyStart + account)
}

// AccountXpub returns the extended public key at rootPath/account'.
func (w *Wallet) AccountXpub(account uint32) (*hdkeychain.ExtendedKey, error) {
	prvKey, err := w.AccountKey(account)
	if err != nil {
		return nil, err
	}
	return prvKey.Neuter()
}

// MasterFingerPrint returns the fingerprint of the master key, ie. the first
// 4 bytes of the hash160 of its compressed public key.
func (w *Wallet) MasterFingerPrint() (uint32, error) {
	key, err := w.masterKey()
	if err != nil {
		return 0, err
	}
	pubKey, err := key.ECPubKey()
	if err != nil {
		return 0, err
	}
	fingerPrint := btcutil.Hash160(pubKey.SerializeCompressed())[:4]
	return binary.BigEndian.Uint32(fingerPrint), nil
}

func (w *Wallet) masterKey() (*hdkeychain.ExtendedKey, error) {
	seed := mnemonic.ToSeed(w.mnemonic)
	return hdkeychain.NewMaster(seed, w.net)
}
