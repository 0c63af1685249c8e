package domain_test

import (
	"testing"

	"github.com/Librechain/bmultisig/internal/core/domain"
	"github.com/Librechain/bmultisig/pkg/wallet/cosigner"
	"github.com/Librechain/bmultisig/pkg/wallet/hdwallet"
	recsig "github.com/Librechain/bmultisig/pkg/wallet/recoverable-sig"
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
)

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

// newJoiningCosigner builds a record for the i-th test participant along
// with its ownership proof, countersigned for the given wallet.
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

func TestNewWallet(t *testing.T) {
	_, joinPub := newJoinKeyPair()
	joinPubKey := joinPub.SerializeCompressed()

	t.Run("valid", func(t *testing.T) {
		w, err := domain.NewWallet(walletName, 2, 2, network, joinPubKey)
		require.NoError(t, err)
		require.NotNil(t, w)
		require.Equal(t, walletName, w.Name)
		require.Equal(t, &chaincfg.MainNetParams, w.Network())
		require.False(t, w.IsComplete())
		require.Empty(t, w.CosignerRows)
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name          string
			m, n          uint8
			network       string
			joinPubKey    []byte
			expectedError error
		}{
			{"", 2, 3, network, joinPubKey, domain.ErrWalletMissingName},
			{walletName, 0, 3, network, joinPubKey, domain.ErrWalletInvalidThreshold},
			{walletName, 3, 2, network, joinPubKey, domain.ErrWalletInvalidThreshold},
			{walletName, 2, 3, "", joinPubKey, domain.ErrWalletMissingNetwork},
			{walletName, 2, 3, "moonnet", joinPubKey, domain.ErrWalletInvalidNetwork},
			{walletName, 2, 3, network, nil, domain.ErrWalletInvalidJoinPubKey},
			{walletName, 2, 3, network, make([]byte, 33), domain.ErrWalletInvalidJoinPubKey},
		}

		for _, tt := range tests {
			w, err := domain.NewWallet(tt.name, tt.m, tt.n, tt.network, tt.joinPubKey)
			require.Nil(t, w)
			require.EqualError(t, err, tt.expectedError.Error())
		}
	})
}

func TestAddCosigner(t *testing.T) {
	joinPrv, joinPub := newJoinKeyPair()

	t.Run("valid", func(t *testing.T) {
		w, err := domain.NewWallet(
			walletName, 2, 2, network, joinPub.SerializeCompressed(),
		)
		require.NoError(t, err)

		alice, aliceProof := newJoiningCosigner(t, 0, joinPrv, walletName)
		admitted, err := w.AddCosigner(alice, aliceProof)
		require.NoError(t, err)
		require.Equal(t, uint8(0), admitted.ID())
		require.False(t, w.IsComplete())

		bob, bobProof := newJoiningCosigner(t, 1, joinPrv, walletName)
		admitted, err = w.AddCosigner(bob, bobProof)
		require.NoError(t, err)
		require.Equal(t, uint8(1), admitted.ID())
		require.True(t, w.IsComplete())

		cosigners, err := w.Cosigners()
		require.NoError(t, err)
		require.Len(t, cosigners, 2)
		require.Equal(t, "alice", cosigners[0].Name())
		require.Equal(t, "bob", cosigners[1].Name())

		carol, carolProof := newJoiningCosigner(t, 0, joinPrv, walletName)
		admitted, err = w.AddCosigner(carol, carolProof)
		require.Nil(t, admitted)
		require.EqualError(t, err, domain.ErrWalletFull.Error())
	})

	t.Run("duplicated name", func(t *testing.T) {
		w, err := domain.NewWallet(
			walletName, 2, 3, network, joinPub.SerializeCompressed(),
		)
		require.NoError(t, err)

		alice, aliceProof := newJoiningCosigner(t, 0, joinPrv, walletName)
		_, err = w.AddCosigner(alice, aliceProof)
		require.NoError(t, err)

		_, err = w.AddCosigner(alice, aliceProof)
		require.EqualError(t, err, domain.ErrCosignerAlreadyJoined.Error())
	})

	t.Run("invalid ownership proof", func(t *testing.T) {
		w, err := domain.NewWallet(
			walletName, 2, 2, network, joinPub.SerializeCompressed(),
		)
		require.NoError(t, err)

		alice, _ := newJoiningCosigner(t, 0, joinPrv, walletName)
		_, bobProof := newJoiningCosigner(t, 1, joinPrv, walletName)

		admitted, err := w.AddCosigner(alice, bobProof)
		require.Nil(t, admitted)
		require.EqualError(t, err, domain.ErrInvalidOwnershipProof.Error())
	})

	t.Run("join signature for another wallet", func(t *testing.T) {
		w, err := domain.NewWallet(
			walletName, 2, 2, network, joinPub.SerializeCompressed(),
		)
		require.NoError(t, err)

		alice, aliceProof := newJoiningCosigner(t, 0, joinPrv, "other-wallet")
		admitted, err := w.AddCosigner(alice, aliceProof)
		require.Nil(t, admitted)
		require.EqualError(t, err, domain.ErrInvalidJoinAuthorization.Error())
	})
}

func TestRotateCosignerToken(t *testing.T) {
	joinPrv, joinPub := newJoinKeyPair()

	w, err := domain.NewWallet(
		walletName, 2, 2, network, joinPub.SerializeCompressed(),
	)
	require.NoError(t, err)

	alice, aliceProof := newJoiningCosigner(t, 0, joinPrv, walletName)
	_, err = w.AddCosigner(alice, aliceProof)
	require.NoError(t, err)

	token := make([]byte, cosigner.TokenLen)
	token[0] = 0x01
	rotated, err := w.RotateCosignerToken(0, token)
	require.NoError(t, err)
	require.Equal(t, uint32(1), rotated.TokenDepth())
	require.Equal(t, token, rotated.Token())

	// the rotation must be reflected by the stored row
	stored, err := w.GetCosigner(0)
	require.NoError(t, err)
	require.True(t, stored.EqualWithDetails(rotated))

	_, err = w.RotateCosignerToken(7, token)
	require.EqualError(t, err, domain.ErrCosignerNotFound.Error())
}

func TestVerifyCosignerSignature(t *testing.T) {
	joinPrv, joinPub := newJoinKeyPair()

	w, err := domain.NewWallet(
		walletName, 2, 2, network, joinPub.SerializeCompressed(),
	)
	require.NoError(t, err)

	alice, aliceProof := newJoiningCosigner(t, 0, joinPrv, walletName)
	_, err = w.AddCosigner(alice, aliceProof)
	require.NoError(t, err)

	authPrv, _ := newAuthKeyPair(0x01)
	digest := recsig.Hash([]byte("rotate my token"))
	sig, err := recsig.SignDigest(authPrv, digest)
	require.NoError(t, err)

	ok, err := w.VerifyCosignerSignature(0, digest, sig)
	require.NoError(t, err)
	require.True(t, ok)

	t.Run("foreign auth key", func(t *testing.T) {
		foreignPrv, _ := newAuthKeyPair(0x07)
		foreignSig, err := recsig.SignDigest(foreignPrv, digest)
		require.NoError(t, err)

		ok, err := w.VerifyCosignerSignature(0, digest, foreignSig)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("unknown cosigner", func(t *testing.T) {
		ok, err := w.VerifyCosignerSignature(7, digest, sig)
		require.False(t, ok)
		require.EqualError(t, err, domain.ErrCosignerNotFound.Error())
	})
}
