// Package cosigner implements the participant record of an m-of-n HD
// multisig wallet: its canonical binary and JSON encodings, plus the
// signature protocols a participant uses to prove control of the advertised
// account key and authorization to join a named wallet.
//
// A record never carries private key material. The only mutable fields are
// the session token, its depth and the join signature; callers sharing a
// record across goroutines must serialize those mutations themselves.
package cosigner

import (
	"bytes"
	"encoding/binary"

	xkey "github.com/Librechain/bmultisig/pkg/wallet/extended-key"
	recsig "github.com/Librechain/bmultisig/pkg/wallet/recoverable-sig"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	// TokenLen is the size of the opaque session token.
	TokenLen = 32
	// MaxNameLen bounds cosigner and wallet names on the wire, where they
	// are encoded as 1-byte length prefixed strings.
	MaxNameLen = 255
	// MaxPathLen bounds the derivation path text on the wire.
	MaxPathLen = 255
)

// Cosigner is the record of one participant of a multisig wallet.
type Cosigner struct {
	id            uint8
	tokenDepth    uint32
	token         []byte // always TokenLen, zero-filled until rotated
	name          string
	purpose       uint32
	fingerPrint   uint32
	path          string
	key           *hdkeychain.ExtendedKey
	authPubKey    []byte // always xkey.PublicKeyLen
	joinSignature []byte // always recsig.SignatureLen, zero-filled until joined
}

// Options is the sparse field set accepted by NewCosigner. Name, Key and
// AuthPubKey are mandatory, everything else resolves to a default when left
// unset.
type Options struct {
	ID            uint8
	TokenDepth    uint32
	Token         []byte
	Name          string
	Purpose       uint32
	FingerPrint   uint32
	Path          string
	Key           *hdkeychain.ExtendedKey
	AuthPubKey    []byte
	JoinSignature []byte
}

func (o Options) validate() error {
	if o.Name == "" {
		return ErrMissingName
	}
	if len(o.Name) > MaxNameLen {
		return ErrNameTooLong
	}
	if len(o.Path) > MaxPathLen {
		return ErrPathTooLong
	}
	if o.Key == nil {
		return ErrMissingKey
	}
	if o.Key.IsPrivate() {
		return xkey.ErrPrivateKey
	}
	if len(o.AuthPubKey) != xkey.PublicKeyLen {
		return ErrInvalidAuthPubKey
	}
	if o.Token != nil && len(o.Token) != TokenLen {
		return ErrInvalidToken
	}
	if o.JoinSignature != nil && len(o.JoinSignature) != recsig.SignatureLen {
		return ErrInvalidJoinSignature
	}
	return nil
}

// NewCosigner returns a new Cosigner record for the given options. Byte
// buffers are copied, never shared with the caller.
func NewCosigner(opts Options) (*Cosigner, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	token := make([]byte, TokenLen)
	copy(token, opts.Token)
	authPubKey := make([]byte, xkey.PublicKeyLen)
	copy(authPubKey, opts.AuthPubKey)
	joinSignature := make([]byte, recsig.SignatureLen)
	copy(joinSignature, opts.JoinSignature)

	return &Cosigner{
		id:            opts.ID,
		tokenDepth:    opts.TokenDepth,
		token:         token,
		name:          opts.Name,
		purpose:       opts.Purpose,
		fingerPrint:   opts.FingerPrint,
		path:          opts.Path,
		key:           opts.Key,
		authPubKey:    authPubKey,
		joinSignature: joinSignature,
	}, nil
}

func (c *Cosigner) ID() uint8                    { return c.id }
func (c *Cosigner) TokenDepth() uint32           { return c.tokenDepth }
func (c *Cosigner) Name() string                 { return c.name }
func (c *Cosigner) Purpose() uint32              { return c.purpose }
func (c *Cosigner) FingerPrint() uint32          { return c.fingerPrint }
func (c *Cosigner) Path() string                 { return c.path }
func (c *Cosigner) Key() *hdkeychain.ExtendedKey { return c.key }

func (c *Cosigner) Token() []byte {
	return copyBytes(c.token)
}

func (c *Cosigner) AuthPubKey() []byte {
	return copyBytes(c.authPubKey)
}

func (c *Cosigner) JoinSignature() []byte {
	return copyBytes(c.joinSignature)
}

// Joined returns whether the join signature has been set, ie. whether the
// cosigner moved past the invited state.
func (c *Cosigner) Joined() bool {
	for _, b := range c.joinSignature {
		if b != 0 {
			return true
		}
	}
	return false
}

// SetID assigns the id of the record within a wallet's cosigner set. Ids
// are handed out by the wallet coordinator at admission and are stable from
// then on.
func (c *Cosigner) SetID(id uint8) {
	c.id = id
}

// RotateToken replaces the session token and bumps its depth. The depth is
// strictly increasing so a stale token can never be replayed.
func (c *Cosigner) RotateToken(token []byte) error {
	if len(token) != TokenLen {
		return ErrInvalidToken
	}
	c.token = copyBytes(token)
	c.tokenDepth++
	return nil
}

// SetJoinSignature stores the countersignature produced by the inviter.
// It is write-once: a joined cosigner must be removed and re-invited to
// obtain a new one.
func (c *Cosigner) SetJoinSignature(sig []byte) error {
	if len(sig) != recsig.SignatureLen {
		return ErrInvalidJoinSignature
	}
	if c.Joined() {
		return ErrAlreadyJoined
	}
	c.joinSignature = copyBytes(sig)
	return nil
}

// Equal compares the public subset of two records: id, name, purpose,
// fingerprint, path, account key and auth public key.
func (c *Cosigner) Equal(o *Cosigner) bool {
	if o == nil {
		return false
	}
	return c.id == o.id &&
		c.name == o.name &&
		c.purpose == o.purpose &&
		c.fingerPrint == o.fingerPrint &&
		c.path == o.path &&
		c.key.String() == o.key.String() &&
		bytes.Equal(c.authPubKey, o.authPubKey)
}

// EqualWithDetails compares like Equal and additionally the token, its depth
// and the join signature.
func (c *Cosigner) EqualWithDetails(o *Cosigner) bool {
	if !c.Equal(o) {
		return false
	}
	return c.tokenDepth == o.tokenDepth &&
		bytes.Equal(c.token, o.token) &&
		bytes.Equal(c.joinSignature, o.joinSignature)
}

// Clone returns an independent copy of the record with its own byte buffers.
func (c *Cosigner) Clone() *Cosigner {
	key, _ := hdkeychain.NewKeyFromString(c.key.String())
	return &Cosigner{
		id:            c.id,
		tokenDepth:    c.tokenDepth,
		token:         copyBytes(c.token),
		name:          c.name,
		purpose:       c.purpose,
		fingerPrint:   c.fingerPrint,
		path:          c.path,
		key:           key,
		authPubKey:    copyBytes(c.authPubKey),
		joinSignature: copyBytes(c.joinSignature),
	}
}

// Serialize encodes the record to its wire form, with the account key tagged
// for the given network:
//
//	id (1) || tokenDepth (4 LE) || token (32) || name (pascal) ||
//	purpose (4 LE) || fingerPrint (4 LE) || path (pascal) ||
//	key (82) || authPubKey (33) || joinSignature (65)
//
// This layout doubles as the persisted row format.
func (c *Cosigner) Serialize(net *chaincfg.Params) ([]byte, error) {
	keyBytes, err := xkey.Encode(c.key, net)
	if err != nil {
		return nil, err
	}

	size := 1 + 4 + TokenLen + 1 + len(c.name) + 4 + 4 + 1 + len(c.path) +
		xkey.EncodedLen + xkey.PublicKeyLen + recsig.SignatureLen
	buf := make([]byte, 0, size)
	buf = append(buf, c.id)
	buf = binary.LittleEndian.AppendUint32(buf, c.tokenDepth)
	buf = append(buf, c.token...)
	buf = appendPascalString(buf, c.name)
	buf = binary.LittleEndian.AppendUint32(buf, c.purpose)
	buf = binary.LittleEndian.AppendUint32(buf, c.fingerPrint)
	buf = appendPascalString(buf, c.path)
	buf = append(buf, keyBytes...)
	buf = append(buf, c.authPubKey...)
	buf = append(buf, c.joinSignature...)
	return buf, nil
}

// Deserialize is the exact inverse of Serialize. It fails with
// ErrMalformedEncoding whenever the buffer is exhausted before a field,
// including a pascal string's declared length, is fully read.
func Deserialize(buf []byte, net *chaincfg.Params) (*Cosigner, error) {
	r := &sliceReader{buf: buf}

	id, err := r.readByte()
	if err != nil {
		return nil, err
	}
	tokenDepth, err := r.readUint32LE()
	if err != nil {
		return nil, err
	}
	token, err := r.readBytes(TokenLen)
	if err != nil {
		return nil, err
	}
	name, err := r.readPascalString()
	if err != nil {
		return nil, err
	}
	purpose, err := r.readUint32LE()
	if err != nil {
		return nil, err
	}
	fingerPrint, err := r.readUint32LE()
	if err != nil {
		return nil, err
	}
	path, err := r.readPascalString()
	if err != nil {
		return nil, err
	}
	keyBytes, err := r.readBytes(xkey.EncodedLen)
	if err != nil {
		return nil, err
	}
	authPubKey, err := r.readBytes(xkey.PublicKeyLen)
	if err != nil {
		return nil, err
	}
	joinSignature, err := r.readBytes(recsig.SignatureLen)
	if err != nil {
		return nil, err
	}
	if r.remaining() > 0 {
		return nil, ErrMalformedEncoding
	}

	key, err := xkey.Decode(keyBytes, net)
	if err != nil {
		return nil, err
	}

	return NewCosigner(Options{
		ID:            id,
		TokenDepth:    tokenDepth,
		Token:         token,
		Name:          name,
		Purpose:       purpose,
		FingerPrint:   fingerPrint,
		Path:          path,
		Key:           key,
		AuthPubKey:    authPubKey,
		JoinSignature: joinSignature,
	})
}

func appendPascalString(buf []byte, s string) []byte {
	buf = append(buf, byte(len(s)))
	return append(buf, s...)
}

func copyBytes(src []byte) []byte {
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}

// sliceReader walks a wire buffer, failing on any short read rather than
// silently truncating.
type sliceReader struct {
	buf    []byte
	offset int
}

func (r *sliceReader) remaining() int {
	return len(r.buf) - r.offset
}

func (r *sliceReader) readByte() (byte, error) {
	if r.remaining() < 1 {
		return 0, ErrMalformedEncoding
	}
	b := r.buf[r.offset]
	r.offset++
	return b, nil
}

func (r *sliceReader) readUint32LE() (uint32, error) {
	buf, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func (r *sliceReader) readBytes(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, ErrMalformedEncoding
	}
	buf := r.buf[r.offset : r.offset+n]
	r.offset += n
	return buf, nil
}

func (r *sliceReader) readPascalString() (string, error) {
	length, err := r.readByte()
	if err != nil {
		return "", err
	}
	buf, err := r.readBytes(int(length))
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
