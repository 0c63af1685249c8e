package cosigner

import "fmt"

var (
	ErrMissingName          = fmt.Errorf("missing cosigner name")
	ErrNameTooLong          = fmt.Errorf("name must not exceed 255 bytes")
	ErrPathTooLong          = fmt.Errorf("derivation path must not exceed 255 bytes")
	ErrMissingKey           = fmt.Errorf("missing account extended public key")
	ErrInvalidToken         = fmt.Errorf("invalid token length: must be exactly 32 bytes")
	ErrInvalidAuthPubKey    = fmt.Errorf("invalid auth public key length: must be exactly 33 bytes")
	ErrInvalidJoinSignature = fmt.Errorf("invalid join signature length: must be exactly 65 bytes")
	ErrAlreadyJoined        = fmt.Errorf("join signature is already set")

	ErrMissingAccountPrivateKey = fmt.Errorf("missing account extended private key")

	ErrMalformedEncoding = fmt.Errorf("malformed cosigner encoding")
)
