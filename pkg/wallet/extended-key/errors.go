package xkey

import "fmt"

var (
	ErrMissingKey         = fmt.Errorf("missing extended key")
	ErrMissingNetwork     = fmt.Errorf("missing network")
	ErrPrivateKey         = fmt.Errorf("extended key must not contain private material")
	ErrInvalidKeyEncoding = fmt.Errorf("invalid extended key encoding")
	ErrKeyNetworkMismatch = fmt.Errorf("extended key version bytes do not match network")
)
