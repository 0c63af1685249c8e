package cosigner_test

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/Librechain/bmultisig/pkg/wallet/cosigner"
	xkey "github.com/Librechain/bmultisig/pkg/wallet/extended-key"
	"github.com/Librechain/bmultisig/pkg/wallet/hdwallet"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

var (
	testMnemonic = []string{
		"leave", "dice", "fine", "decrease", "dune", "ribbon", "ocean", "earn",
		"lunar", "account", "silver", "admit", "cheap", "fringe", "disorder", "trade",
		"because", "trade", "steak", "clock", "grace", "video", "jacket", "equal",
	}
	testRootPath = "m/44'/0'"
	testNet      = &chaincfg.MainNetParams
	testPath     = "m/44'/0'/0'/0/0"
)

func testWallet(t *testing.T) *hdwallet.Wallet {
	t.Helper()

	w, err := hdwallet.NewWallet(hdwallet.NewWalletArgs{
		Mnemonic: testMnemonic,
		RootPath: testRootPath,
		Network:  testNet,
	})
	require.NoError(t, err)
	return w
}

func testAccountKeys(t *testing.T) (*hdkeychain.ExtendedKey, *hdkeychain.ExtendedKey) {
	t.Helper()

	w := testWallet(t)
	prvKey, err := w.AccountKey(0)
	require.NoError(t, err)
	pubKey, err := w.AccountXpub(0)
	require.NoError(t, err)
	return prvKey, pubKey
}

func testAuthKeyPair() (*btcec.PrivateKey, []byte) {
	buf := make([]byte, 32)
	buf[31] = 0x01
	prvKey, pubKey := btcec.PrivKeyFromBytes(buf)
	return prvKey, pubKey.SerializeCompressed()
}

func newTestCosigner(t *testing.T) *cosigner.Cosigner {
	t.Helper()

	_, accountXpub := testAccountKeys(t)
	_, authPubKey := testAuthKeyPair()
	c, err := cosigner.NewCosigner(cosigner.Options{
		ID:         5,
		Name:       "test1",
		Path:       testPath,
		Key:        accountXpub,
		AuthPubKey: authPubKey,
	})
	require.NoError(t, err)
	return c
}

func TestNewCosigner(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c := newTestCosigner(t)

		require.Equal(t, uint8(5), c.ID())
		require.Equal(t, "test1", c.Name())
		require.Equal(t, testPath, c.Path())
		require.Zero(t, c.TokenDepth())
		require.Zero(t, c.Purpose())
		require.Zero(t, c.FingerPrint())
		require.Equal(t, make([]byte, cosigner.TokenLen), c.Token())
		require.Equal(t, make([]byte, 65), c.JoinSignature())
		require.False(t, c.Joined())
	})

	t.Run("invalid", func(t *testing.T) {
		_, accountXpub := testAccountKeys(t)
		accountPrv, _ := testAccountKeys(t)
		_, authPubKey := testAuthKeyPair()

		tests := []struct {
			name          string
			opts          cosigner.Options
			expectedError error
		}{
			{
				"missing name",
				cosigner.Options{Key: accountXpub, AuthPubKey: authPubKey},
				cosigner.ErrMissingName,
			},
			{
				"missing key",
				cosigner.Options{Name: "test1", AuthPubKey: authPubKey},
				cosigner.ErrMissingKey,
			},
			{
				"private key",
				cosigner.Options{Name: "test1", Key: accountPrv, AuthPubKey: authPubKey},
				xkey.ErrPrivateKey,
			},
			{
				"bad auth pubkey",
				cosigner.Options{Name: "test1", Key: accountXpub, AuthPubKey: []byte{0x02}},
				cosigner.ErrInvalidAuthPubKey,
			},
			{
				"bad token",
				cosigner.Options{
					Name: "test1", Key: accountXpub, AuthPubKey: authPubKey,
					Token: []byte{0xff},
				},
				cosigner.ErrInvalidToken,
			},
			{
				"bad join signature",
				cosigner.Options{
					Name: "test1", Key: accountXpub, AuthPubKey: authPubKey,
					JoinSignature: []byte{0xff},
				},
				cosigner.ErrInvalidJoinSignature,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c, err := cosigner.NewCosigner(tt.opts)
				require.Nil(t, c)
				require.EqualError(t, err, tt.expectedError.Error())
			})
		}
	})
}

func TestSerialization(t *testing.T) {
	t.Run("canonical vector", func(t *testing.T) {
		c := newTestCosigner(t)

		buf, err := c.Serialize(testNet)
		require.NoError(t, err)

		keyBytes, err := xkey.Encode(c.Key(), testNet)
		require.NoError(t, err)

		expected := []byte{0x05}
		expected = binary.LittleEndian.AppendUint32(expected, 0)
		expected = append(expected, make([]byte, 32)...)
		expected = append(expected, byte(len("test1")))
		expected = append(expected, "test1"...)
		expected = binary.LittleEndian.AppendUint32(expected, 0)
		expected = binary.LittleEndian.AppendUint32(expected, 0)
		expected = append(expected, byte(len(testPath)))
		expected = append(expected, testPath...)
		expected = append(expected, keyBytes...)
		expected = append(expected, c.AuthPubKey()...)
		expected = append(expected, make([]byte, 65)...)

		require.Equal(t, expected, buf)
	})

	t.Run("round trip", func(t *testing.T) {
		c := newTestCosigner(t)
		require.NoError(t, c.RotateToken(make([]byte, cosigner.TokenLen)))

		buf, err := c.Serialize(testNet)
		require.NoError(t, err)

		decoded, err := cosigner.Deserialize(buf, testNet)
		require.NoError(t, err)
		require.True(t, decoded.EqualWithDetails(c))

		rebuf, err := decoded.Serialize(testNet)
		require.NoError(t, err)
		require.Equal(t, buf, rebuf)
	})

	t.Run("truncated", func(t *testing.T) {
		c := newTestCosigner(t)

		buf, err := c.Serialize(testNet)
		require.NoError(t, err)

		for size := 0; size < len(buf); size++ {
			decoded, err := cosigner.Deserialize(buf[:size], testNet)
			require.Nil(t, decoded)
			require.EqualError(t, err, cosigner.ErrMalformedEncoding.Error())
		}

		decoded, err := cosigner.Deserialize(append(buf, 0x00), testNet)
		require.Nil(t, decoded)
		require.EqualError(t, err, cosigner.ErrMalformedEncoding.Error())
	})

	t.Run("network mismatch", func(t *testing.T) {
		c := newTestCosigner(t)

		buf, err := c.Serialize(testNet)
		require.NoError(t, err)

		decoded, err := cosigner.Deserialize(buf, &chaincfg.TestNet3Params)
		require.Nil(t, decoded)
		require.EqualError(t, err, xkey.ErrKeyNetworkMismatch.Error())
	})
}

func TestJSONViews(t *testing.T) {
	t.Run("detailed round trip", func(t *testing.T) {
		c := newTestCosigner(t)
		token := make([]byte, cosigner.TokenLen)
		token[0] = 0xaa
		require.NoError(t, c.RotateToken(token))

		buf, err := json.Marshal(c.DetailedView())
		require.NoError(t, err)

		view := &cosigner.DetailedView{}
		require.NoError(t, json.Unmarshal(buf, view))

		decoded, err := cosigner.CosignerFromDetailedView(view)
		require.NoError(t, err)
		require.True(t, decoded.EqualWithDetails(c))
	})

	t.Run("public round trip", func(t *testing.T) {
		c := newTestCosigner(t)
		token := make([]byte, cosigner.TokenLen)
		token[0] = 0xaa
		require.NoError(t, c.RotateToken(token))

		buf, err := json.Marshal(c.PublicView())
		require.NoError(t, err)
		require.NotContains(t, string(buf), "token")
		require.NotContains(t, string(buf), "joinSignature")

		view := &cosigner.PublicView{}
		require.NoError(t, json.Unmarshal(buf, view))

		decoded, err := cosigner.CosignerFromPublicView(view)
		require.NoError(t, err)
		require.True(t, decoded.Equal(c))
		require.False(t, decoded.EqualWithDetails(c))
	})
}

func TestHTTPOptions(t *testing.T) {
	c := newTestCosigner(t)

	opts := c.HTTPOptions()
	require.Equal(t, "test1", opts.CosignerName)
	require.Equal(t, hex.EncodeToString([]byte(testPath)), opts.CosignerData)
	require.Equal(t, c.Key().String(), opts.AccountKey)
	require.Equal(t, hex.EncodeToString(c.AuthPubKey()), opts.AuthPubKey)
	require.Equal(t, hex.EncodeToString(make([]byte, 32)), opts.Token)
	require.Equal(t, hex.EncodeToString(make([]byte, 65)), opts.JoinSignature)

	decoded, err := cosigner.CosignerFromHTTPOptions(opts)
	require.NoError(t, err)
	require.Equal(t, c.Name(), decoded.Name())
	require.Equal(t, c.Path(), decoded.Path())
	require.Equal(t, c.AuthPubKey(), decoded.AuthPubKey())
}

func TestEqualityAndClone(t *testing.T) {
	c := newTestCosigner(t)

	clone := c.Clone()
	require.True(t, clone.EqualWithDetails(c))

	// buffers must not be shared
	token := make([]byte, cosigner.TokenLen)
	token[0] = 0xff
	require.NoError(t, clone.RotateToken(token))
	require.True(t, clone.Equal(c))
	require.False(t, clone.EqualWithDetails(c))
	require.Equal(t, make([]byte, cosigner.TokenLen), c.Token())
}

func TestTokenRotation(t *testing.T) {
	c := newTestCosigner(t)

	token := make([]byte, cosigner.TokenLen)
	token[0] = 0x01
	require.NoError(t, c.RotateToken(token))
	require.Equal(t, uint32(1), c.TokenDepth())
	require.Equal(t, token, c.Token())

	require.EqualError(t, c.RotateToken(nil), cosigner.ErrInvalidToken.Error())
	require.Equal(t, uint32(1), c.TokenDepth())
}
