package path

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// DerivationPath is the data structure representing an HD path.
type DerivationPath []uint32

// ParseDerivationPath converts a derivation path in string format, with or
// without the leading "m/", to a DerivationPath type.
func ParseDerivationPath(strPath string) (DerivationPath, error) {
	return parseDerivationPath(strPath, false)
}

// ParseRootDerivationPath parses an absolute path in the form
// m/purpose'/coin_type' made only of hardened steps.
func ParseRootDerivationPath(strPath string) (DerivationPath, error) {
	derivationPath, err := parseDerivationPath(strPath, true)
	if err != nil {
		return nil, err
	}
	if len(derivationPath) != 2 {
		return nil, ErrInvalidRootPathLen
	}
	for _, step := range derivationPath {
		if step < hdkeychain.HardenedKeyStart {
			return nil, ErrInvalidRootPath
		}
	}
	return derivationPath, nil
}

func (p DerivationPath) String() string {
	if len(p) <= 0 {
		return ""
	}

	sb := strings.Builder{}
	sb.WriteString("m")
	for _, step := range p {
		hardened := step >= hdkeychain.HardenedKeyStart
		if hardened {
			step -= hdkeychain.HardenedKeyStart
		}
		sb.WriteString(fmt.Sprintf("/%d", step))
		if hardened {
			sb.WriteString("'")
		}
	}
	return sb.String()
}

func parseDerivationPath(
	strPath string, mustBeAbsolute bool,
) (DerivationPath, error) {
	if strPath == "" {
		return nil, ErrMissingDerivationPath
	}

	elems := strings.Split(strPath, "/")
	for _, elem := range elems {
		if strings.TrimSpace(elem) == "" {
			return nil, ErrMalformedDerivationPath
		}
	}
	if mustBeAbsolute && elems[0] != "m" {
		return nil, ErrRequiredAbsoluteDerivationPath
	}
	if len(elems) < 2 {
		return nil, ErrMalformedDerivationPath
	}
	if elems[0] == "m" {
		elems = elems[1:]
	}

	derivationPath := make(DerivationPath, 0, len(elems))
	for _, elem := range elems {
		elem = strings.TrimSpace(elem)

		var hardened bool
		if strings.HasSuffix(elem, "'") {
			hardened = true
			elem = strings.TrimSpace(strings.TrimSuffix(elem, "'"))
		}

		value, err := strconv.ParseUint(elem, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid elem '%s' in path", elem)
		}

		step := uint32(value)
		if hardened {
			if step >= hdkeychain.HardenedKeyStart {
				return nil, fmt.Errorf(
					"elem %d must be in hardened range [0, %d]",
					step, hdkeychain.HardenedKeyStart-1,
				)
			}
			step += hdkeychain.HardenedKeyStart
		}
		derivationPath = append(derivationPath, step)
	}

	return derivationPath, nil
}
