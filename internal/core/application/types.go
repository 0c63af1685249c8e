package application

import (
	"encoding/hex"

	"github.com/Librechain/bmultisig/internal/core/domain"
	"github.com/Librechain/bmultisig/pkg/wallet/cosigner"
)

// WalletInfo holds the basic info about a coordination wallet exposed by the
// wallet service.
type WalletInfo struct {
	Name       string
	M          uint8
	N          uint8
	Network    string
	JoinPubKey string
	Complete   bool
	Cosigners  []*cosigner.PublicView
}

func walletInfo(w *domain.Wallet) (*WalletInfo, error) {
	cosigners, err := w.Cosigners()
	if err != nil {
		return nil, err
	}

	views := make([]*cosigner.PublicView, 0, len(cosigners))
	for _, c := range cosigners {
		views = append(views, c.PublicView())
	}

	return &WalletInfo{
		Name:       w.Name,
		M:          w.M,
		N:          w.N,
		Network:    w.NetworkName,
		JoinPubKey: hex.EncodeToString(w.JoinPubKey),
		Complete:   w.IsComplete(),
		Cosigners:  views,
	}, nil
}

// TokenInfo holds the session token issued to a cosigner after a rotation.
type TokenInfo struct {
	CosignerID uint8
	Token      string
	TokenDepth uint32
}
