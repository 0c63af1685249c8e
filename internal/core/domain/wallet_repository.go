package domain

import (
	"context"
	"fmt"

	"github.com/Librechain/bmultisig/pkg/wallet/cosigner"
)

var (
	ErrWalletNotFound        = fmt.Errorf("wallet not found")
	ErrWalletAlreadyExisting = fmt.Errorf("wallet already existing")
)

const (
	WalletCreated WalletEventType = iota
	WalletCosignerJoined
	WalletCompleted
	WalletDeleted
)

var (
	walletTypeString = map[WalletEventType]string{
		WalletCreated:        "WalletCreated",
		WalletCosignerJoined: "WalletCosignerJoined",
		WalletCompleted:      "WalletCompleted",
		WalletDeleted:        "WalletDeleted",
	}
)

type WalletEventType int

func (t WalletEventType) String() string {
	return walletTypeString[t]
}

// WalletEvent holds info about an event occured within the repository.
type WalletEvent struct {
	EventType  WalletEventType
	WalletName string
	CosignerID uint8
}

// WalletRepository is the abstraction for any kind of database intended to
// persist coordination Wallets.
type WalletRepository interface {
	// CreateWallet stores a new Wallet if not yet existing.
	// Generates a WalletCreated event if successfull.
	CreateWallet(ctx context.Context, wallet *Wallet) error
	// GetWallet returns the wallet with the given name, if existing.
	GetWallet(ctx context.Context, name string) (*Wallet, error)
	// ListWallets returns all stored wallets.
	ListWallets(ctx context.Context) ([]*Wallet, error)
	// UpdateWallet allows to make multiple changes to a Wallet in a
	// transactional way.
	UpdateWallet(
		ctx context.Context, name string,
		updateFn func(v *Wallet) (*Wallet, error),
	) error
	// AddCosignerToWallet verifies and admits the given cosigner record into
	// the named wallet, returning the admitted record with its assigned id.
	// Generates a WalletCosignerJoined event if successfull, plus a
	// WalletCompleted one if the wallet reached its number of cosigners.
	AddCosignerToWallet(
		ctx context.Context, name string,
		record *cosigner.Cosigner, proofSig []byte,
	) (*cosigner.Cosigner, error)
	// DeleteWallet deletes the wallet with the given name.
	// Generates a WalletDeleted event if successfull.
	DeleteWallet(ctx context.Context, name string) error
	// GetEventChannel returns the channel of WalletEvents.
	GetEventChannel() chan WalletEvent
}
