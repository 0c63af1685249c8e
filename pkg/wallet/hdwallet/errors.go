package hdwallet

import "fmt"

var (
	ErrMissingMnemonic   = fmt.Errorf("missing mnemonic")
	ErrMissingRootPath   = fmt.Errorf("missing root derivation path")
	ErrMissingNetwork    = fmt.Errorf("missing network")
	ErrOutOfRangeAccount = fmt.Errorf("account index must be in non-hardened range")
)
