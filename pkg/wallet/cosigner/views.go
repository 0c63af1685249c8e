package cosigner

import (
	"encoding/hex"

	xkey "github.com/Librechain/bmultisig/pkg/wallet/extended-key"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// PublicView is the JSON projection of the fields a cosigner exposes to any
// other party of the wallet.
type PublicView struct {
	ID          uint8  `json:"id"`
	Name        string `json:"name"`
	Purpose     uint32 `json:"purpose"`
	FingerPrint uint32 `json:"fingerPrint"`
	Path        string `json:"path"`
	AccountKey  string `json:"accountKey"`
	AuthPubKey  string `json:"authPubKey"`
}

// DetailedView extends PublicView with the fields only the wallet service
// and the cosigner itself are allowed to see.
type DetailedView struct {
	PublicView
	TokenDepth    uint32 `json:"tokenDepth"`
	Token         string `json:"token"`
	JoinSignature string `json:"joinSignature"`
}

// HTTPOptions is the transport-facing projection of a record, a pure field
// renaming with hex/base58 encodings and no additional validation.
type HTTPOptions struct {
	CosignerName        string `json:"cosignerName"`
	CosignerPurpose     uint32 `json:"cosignerPurpose"`
	CosignerFingerPrint uint32 `json:"cosignerFingerPrint"`
	CosignerData        string `json:"cosignerData"`
	AccountKey          string `json:"accountKey"`
	Token               string `json:"token"`
	JoinSignature       string `json:"joinSignature"`
	AuthPubKey          string `json:"authPubKey"`
}

// PublicView returns the public JSON projection of the record.
func (c *Cosigner) PublicView() *PublicView {
	return &PublicView{
		ID:          c.id,
		Name:        c.name,
		Purpose:     c.purpose,
		FingerPrint: c.fingerPrint,
		Path:        c.path,
		AccountKey:  c.key.String(),
		AuthPubKey:  hex.EncodeToString(c.authPubKey),
	}
}

// DetailedView returns the JSON projection including token, token depth and
// join signature.
func (c *Cosigner) DetailedView() *DetailedView {
	return &DetailedView{
		PublicView:    *c.PublicView(),
		TokenDepth:    c.tokenDepth,
		Token:         hex.EncodeToString(c.token),
		JoinSignature: hex.EncodeToString(c.joinSignature),
	}
}

// HTTPOptions returns the transport-facing projection of the record.
func (c *Cosigner) HTTPOptions() *HTTPOptions {
	return &HTTPOptions{
		CosignerName:        c.name,
		CosignerPurpose:     c.purpose,
		CosignerFingerPrint: c.fingerPrint,
		CosignerData:        hex.EncodeToString([]byte(c.path)),
		AccountKey:          c.key.String(),
		Token:               hex.EncodeToString(c.token),
		JoinSignature:       hex.EncodeToString(c.joinSignature),
		AuthPubKey:          hex.EncodeToString(c.authPubKey),
	}
}

// CosignerFromPublicView is the inverse of PublicView. Detail-only fields of
// the returned record are left at their defaults.
func CosignerFromPublicView(view *PublicView) (*Cosigner, error) {
	key, authPubKey, err := parseKeyFields(view.AccountKey, view.AuthPubKey)
	if err != nil {
		return nil, err
	}
	return NewCosigner(Options{
		ID:          view.ID,
		Name:        view.Name,
		Purpose:     view.Purpose,
		FingerPrint: view.FingerPrint,
		Path:        view.Path,
		Key:         key,
		AuthPubKey:  authPubKey,
	})
}

// CosignerFromDetailedView is the inverse of DetailedView.
func CosignerFromDetailedView(view *DetailedView) (*Cosigner, error) {
	key, authPubKey, err := parseKeyFields(view.AccountKey, view.AuthPubKey)
	if err != nil {
		return nil, err
	}

	var token, joinSignature []byte
	if view.Token != "" {
		if token, err = hex.DecodeString(view.Token); err != nil {
			return nil, ErrInvalidToken
		}
	}
	if view.JoinSignature != "" {
		joinSignature, err = hex.DecodeString(view.JoinSignature)
		if err != nil {
			return nil, ErrInvalidJoinSignature
		}
	}

	return NewCosigner(Options{
		ID:            view.ID,
		TokenDepth:    view.TokenDepth,
		Token:         token,
		Name:          view.Name,
		Purpose:       view.Purpose,
		FingerPrint:   view.FingerPrint,
		Path:          view.Path,
		Key:           key,
		AuthPubKey:    authPubKey,
		JoinSignature: joinSignature,
	})
}

// CosignerFromHTTPOptions rebuilds a record from its transport-facing
// projection. The id is not part of the projection and is left for the
// wallet service to assign.
func CosignerFromHTTPOptions(opts *HTTPOptions) (*Cosigner, error) {
	key, authPubKey, err := parseKeyFields(opts.AccountKey, opts.AuthPubKey)
	if err != nil {
		return nil, err
	}

	path, err := hex.DecodeString(opts.CosignerData)
	if err != nil {
		return nil, ErrMalformedEncoding
	}

	var token, joinSignature []byte
	if opts.Token != "" {
		if token, err = hex.DecodeString(opts.Token); err != nil {
			return nil, ErrInvalidToken
		}
	}
	if opts.JoinSignature != "" {
		joinSignature, err = hex.DecodeString(opts.JoinSignature)
		if err != nil {
			return nil, ErrInvalidJoinSignature
		}
	}

	return NewCosigner(Options{
		Name:          opts.CosignerName,
		Purpose:       opts.CosignerPurpose,
		FingerPrint:   opts.CosignerFingerPrint,
		Path:          string(path),
		Key:           key,
		AuthPubKey:    authPubKey,
		Token:         token,
		JoinSignature: joinSignature,
	})
}

func parseKeyFields(
	accountKey, authPubKey string,
) (*hdkeychain.ExtendedKey, []byte, error) {
	key, err := hdkeychain.NewKeyFromString(accountKey)
	if err != nil {
		return nil, nil, xkey.ErrInvalidKeyEncoding
	}
	authPubKeyBytes, err := hex.DecodeString(authPubKey)
	if err != nil {
		return nil, nil, ErrInvalidAuthPubKey
	}
	return key, authPubKeyBytes, nil
}
