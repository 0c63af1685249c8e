package application

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/Librechain/bmultisig/internal/core/domain"
	"github.com/Librechain/bmultisig/internal/core/ports"
	"github.com/Librechain/bmultisig/pkg/wallet/cosigner"
	log "github.com/sirupsen/logrus"
)

// WalletService is responsible for the coordination of multisig wallets:
//   - Create a new wallet with its m-of-n threshold and pairing public key.
//   - Admit a cosigner whose ownership proof and join authorization verify.
//   - Rotate the session token of a joined cosigner.
//   - Expose wallet and cosigner info.
//
// The service registers handlers for the WalletCosignerJoined and
// WalletCompleted events to trace the lifecycle of every wallet it
// coordinates.
type WalletService struct {
	repoManager ports.RepoManager
	network     string

	log  func(format string, a ...interface{})
	warn func(err error, format string, a ...interface{})
}

func NewWalletService(
	repoManager ports.RepoManager, network string,
) *WalletService {
	logFn := func(format string, a ...interface{}) {
		format = fmt.Sprintf("wallet service: %s", format)
		log.Debugf(format, a...)
	}
	warnFn := func(err error, format string, a ...interface{}) {
		format = fmt.Sprintf("wallet service: %s", format)
		log.WithError(err).Warnf(format, a...)
	}

	svc := &WalletService{repoManager, network, logFn, warnFn}
	svc.registerHandlersForWalletEvents()
	return svc
}

// CreateWallet creates a new m-of-n wallet with the given name and pairing
// public key, against which every join request will be verified.
func (ws *WalletService) CreateWallet(
	ctx context.Context, name string, m, n uint8, joinPubKey []byte,
) (*WalletInfo, error) {
	wallet, err := domain.NewWallet(name, m, n, ws.network, joinPubKey)
	if err != nil {
		return nil, err
	}

	if err := ws.repoManager.WalletRepository().CreateWallet(
		ctx, wallet,
	); err != nil {
		return nil, err
	}

	ws.log("created wallet %s (%d of %d)", name, m, n)
	return walletInfo(wallet)
}

// GetWalletInfo returns info about the wallet with the given name.
func (ws *WalletService) GetWalletInfo(
	ctx context.Context, name string,
) (*WalletInfo, error) {
	wallet, err := ws.repoManager.WalletRepository().GetWallet(ctx, name)
	if err != nil {
		return nil, err
	}
	return walletInfo(wallet)
}

// ListWallets returns info about all stored wallets.
func (ws *WalletService) ListWallets(ctx context.Context) ([]*WalletInfo, error) {
	wallets, err := ws.repoManager.WalletRepository().ListWallets(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]*WalletInfo, 0, len(wallets))
	for _, wallet := range wallets {
		info, err := walletInfo(wallet)
		if err != nil {
			return nil, err
		}
		list = append(list, info)
	}
	return list, nil
}

// JoinWallet admits the cosigner described by the given transport options
// into the named wallet, provided its ownership proof and join authorization
// verify. An initial session token is issued to the admitted cosigner.
func (ws *WalletService) JoinWallet(
	ctx context.Context, walletName string,
	opts *cosigner.HTTPOptions, proofSig []byte,
) (*cosigner.DetailedView, error) {
	record, err := cosigner.CosignerFromHTTPOptions(opts)
	if err != nil {
		return nil, err
	}

	admitted, err := ws.repoManager.WalletRepository().AddCosignerToWallet(
		ctx, walletName, record, proofSig,
	)
	if err != nil {
		return nil, err
	}

	info, err := ws.RotateCosignerToken(ctx, walletName, admitted.ID())
	if err != nil {
		return nil, err
	}

	ws.log(
		"cosigner %s joined wallet %s with id %d",
		admitted.Name(), walletName, admitted.ID(),
	)

	view := admitted.DetailedView()
	view.Token = info.Token
	view.TokenDepth = info.TokenDepth
	return view, nil
}

// RotateCosignerToken issues a fresh random session token to the cosigner
// with the given id, strictly incrementing its token depth.
func (ws *WalletService) RotateCosignerToken(
	ctx context.Context, walletName string, cosignerID uint8,
) (*TokenInfo, error) {
	token := make([]byte, cosigner.TokenLen)
	if _, err := rand.Read(token); err != nil {
		return nil, err
	}

	var info *TokenInfo
	if err := ws.repoManager.WalletRepository().UpdateWallet(
		ctx, walletName, func(w *domain.Wallet) (*domain.Wallet, error) {
			rotated, err := w.RotateCosignerToken(cosignerID, token)
			if err != nil {
				return nil, err
			}
			info = &TokenInfo{
				CosignerID: rotated.ID(),
				Token:      rotated.DetailedView().Token,
				TokenDepth: rotated.TokenDepth(),
			}
			return w, nil
		},
	); err != nil {
		return nil, err
	}

	return info, nil
}

func (ws *WalletService) registerHandlersForWalletEvents() {
	ws.repoManager.RegisterHandlerForWalletEvent(
		domain.WalletCosignerJoined, func(event domain.WalletEvent) {
			ws.log(
				"new cosigner with id %d for wallet %s",
				event.CosignerID, event.WalletName,
			)
		},
	)
	ws.repoManager.RegisterHandlerForWalletEvent(
		domain.WalletCompleted, func(event domain.WalletEvent) {
			ws.log("wallet %s reached its number of cosigners", event.WalletName)
		},
	)
}
