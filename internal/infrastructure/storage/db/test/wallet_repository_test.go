package db_test

import (
	"context"
	"testing"

	"github.com/Librechain/bmultisig/internal/core/domain"
	"github.com/Librechain/bmultisig/internal/core/ports"
	dbbadger "github.com/Librechain/bmultisig/internal/infrastructure/storage/db/badger"
	"github.com/Librechain/bmultisig/internal/infrastructure/storage/db/inmemory"
	"github.com/Librechain/bmultisig/pkg/wallet/cosigner"
	"github.com/Librechain/bmultisig/pkg/wallet/hdwallet"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

var (
	mnemonics = [][]string{
		{
			"leave", "dice", "fine", "decrease", "dune", "ribbon", "ocean", "earn",
			"lunar", "account", "silver", "admit", "cheap", "fringe", "disorder", "trade",
			"because", "trade", "steak", "clock", "grace", "video", "jacket", "equal",
		},
		{
			"legal", "winner", "thank", "year", "wave", "sausage", "worth", "useful",
			"legal", "winner", "thank", "year", "wave", "sausage", "worth", "useful",
			"legal", "winner", "thank", "year", "wave", "sausage", "worth", "title",
		},
	}
	rootPath   = "m/44'/0'"
	network    = chaincfg.MainNetParams.Name
	walletName = "shared-funds"
	ctx        = context.Background()
)

func TestWalletRepository(t *testing.T) {
	repositories, err := newWalletRepositories(
		func(repoType string) ports.WalletEventHandler {
			return func(event domain.WalletEvent) {
				t.Logf(
					"received event from %s repo: {EventType: %s, WalletName: %s, CosignerID: %d}\n",
					repoType, event.EventType, event.WalletName, event.CosignerID,
				)
			}
		},
	)
	require.NoError(t, err)

	for name, repo := range repositories {
		t.Run(name, func(t *testing.T) {
			testWalletRepository(t, repo)
		})
	}
}

func testWalletRepository(t *testing.T, repo domain.WalletRepository) {
	joinPrv, joinPub := newJoinKeyPair()

	t.Run("create_wallet", func(t *testing.T) {
		wallet, err := repo.GetWallet(ctx, walletName)
		require.Error(t, err)
		require.Nil(t, wallet)

		w, err := domain.NewWallet(
			walletName, 2, 2, network, joinPub.SerializeCompressed(),
		)
		require.NoError(t, err)

		err = repo.CreateWallet(ctx, w)
		require.NoError(t, err)

		err = repo.CreateWallet(ctx, w)
		require.Error(t, err)

		wallet, err = repo.GetWallet(ctx, walletName)
		require.NoError(t, err)
		require.NotNil(t, wallet)
		require.Exactly(t, *w, *wallet)
		require.False(t, wallet.IsComplete())

		wallets, err := repo.ListWallets(ctx)
		require.NoError(t, err)
		require.Len(t, wallets, 1)
	})

	t.Run("add_cosigners", func(t *testing.T) {
		alice, aliceProof := newJoiningCosigner(t, 0, joinPrv, walletName)
		admitted, err := repo.AddCosignerToWallet(ctx, walletName, alice, aliceProof)
		require.NoError(t, err)
		require.NotNil(t, admitted)
		require.Equal(t, uint8(0), admitted.ID())

		// a proof signed by another account key must be rejected.
		carol, _ := newJoiningCosigner(t, 1, joinPrv, walletName)
		badAdmitted, err := repo.AddCosignerToWallet(ctx, walletName, carol, aliceProof)
		require.EqualError(t, err, domain.ErrInvalidOwnershipProof.Error())
		require.Nil(t, badAdmitted)

		bob, bobProof := newJoiningCosigner(t, 1, joinPrv, walletName)
		admitted, err = repo.AddCosignerToWallet(ctx, walletName, bob, bobProof)
		require.NoError(t, err)
		require.Equal(t, uint8(1), admitted.ID())

		wallet, err := repo.GetWallet(ctx, walletName)
		require.NoError(t, err)
		require.True(t, wallet.IsComplete())
	})

	t.Run("update_wallet", func(t *testing.T) {
		token := make([]byte, cosigner.TokenLen)
		token[0] = 0xff
		err := repo.UpdateWallet(
			ctx, walletName, func(w *domain.Wallet) (*domain.Wallet, error) {
				if _, err := w.RotateCosignerToken(0, token); err != nil {
					return nil, err
				}
				return w, nil
			},
		)
		require.NoError(t, err)

		wallet, err := repo.GetWallet(ctx, walletName)
		require.NoError(t, err)
		rotated, err := wallet.GetCosigner(0)
		require.NoError(t, err)
		require.Equal(t, uint32(1), rotated.TokenDepth())
		require.Equal(t, token, rotated.Token())
	})

	t.Run("delete_wallet", func(t *testing.T) {
		err := repo.DeleteWallet(ctx, walletName)
		require.NoError(t, err)

		wallet, err := repo.GetWallet(ctx, walletName)
		require.Error(t, err)
		require.Nil(t, wallet)

		err = repo.DeleteWallet(ctx, walletName)
		require.Error(t, err)
	})
}

func newWalletRepositories(
	handlerFactory func(repoType string) ports.WalletEventHandler,
) (map[string]domain.WalletRepository, error) {
	inmemoryRepoManager := inmemory.NewRepoManager()
	badgerRepoManager, err := dbbadger.NewRepoManager("", nil)
	if err != nil {
		return nil, err
	}
	handlers := []ports.WalletEventHandler{
		handlerFactory("badger"), handlerFactory("inmemory"),
	}

	repoManagers := []ports.RepoManager{badgerRepoManager, inmemoryRepoManager}

	for i, handler := range handlers {
		repoManager := repoManagers[i]
		repoManager.RegisterHandlerForWalletEvent(domain.WalletCreated, handler)
		repoManager.RegisterHandlerForWalletEvent(domain.WalletCosignerJoined, handler)
		repoManager.RegisterHandlerForWalletEvent(domain.WalletCompleted, handler)
		repoManager.RegisterHandlerForWalletEvent(domain.WalletDeleted, handler)
	}
	return map[string]domain.WalletRepository{
		"inmemory": inmemoryRepoManager.WalletRepository(),
		"badger":   badgerRepoManager.WalletRepository(),
	}, nil
}

func newJoinKeyPair() (*btcec.PrivateKey, *btcec.PublicKey) {
	buf := make([]byte, 32)
	buf[0] = 0x20
	buf[31] = 0x01
	return btcec.PrivKeyFromBytes(buf)
}

func newAuthKeyPair(b byte) (*btcec.PrivateKey, []byte) {
	buf := make([]byte, 32)
	buf[0] = b
	buf[31] = 0x02
	prvKey, pubKey := btcec.PrivKeyFromBytes(buf)
	return prvKey, pubKey.SerializeCompressed()
}

func newJoiningCosigner(
	t *testing.T, i int, joinPrv *btcec.PrivateKey, forWallet string,
) (*cosigner.Cosigner, []byte) {
	t.Helper()

	w, err := hdwallet.NewWallet(hdwallet.NewWalletArgs{
		Mnemonic: mnemonics[i],
		RootPath: rootPath,
		Network:  &chaincfg.MainNetParams,
	})
	require.NoError(t, err)
	accountPrv, err := w.AccountKey(0)
	require.NoError(t, err)
	accountXpub, err := w.AccountXpub(0)
	require.NoError(t, err)
	fingerPrint, err := w.MasterFingerPrint()
	require.NoError(t, err)

	_, authPubKey := newAuthKeyPair(byte(i + 1))
	c, err := cosigner.NewCosigner(cosigner.Options{
		Name:        []string{"alice", "bob"}[i],
		Purpose:     44,
		FingerPrint: fingerPrint,
		Path:        "m/44'/0'/0'",
		Key:         accountXpub,
		AuthPubKey:  authPubKey,
	})
	require.NoError(t, err)

	proofSig, err := c.SignProof(accountPrv)
	require.NoError(t, err)

	joinSig, err := c.SignJoin(joinPrv, forWallet)
	require.NoError(t, err)
	require.NoError(t, c.SetJoinSignature(joinSig))

	return c, proofSig
}
