package recsig

import "fmt"

var (
	ErrMissingPrivateKey = fmt.Errorf("missing private key")
	ErrInvalidDigest     = fmt.Errorf("digest must be exactly 32 bytes")
)
