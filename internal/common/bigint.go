package common

import (
	"errors"
	"math/big"
	"strings"
)

var ErrInvalidInteger = errors.New("invalid integer")

// ParseUint256 parses a decimal or 0x prefixed hex string that fits in 256 bits
func ParseUint256(s string) (*big.Int, error) {
	var i *big.Int
	var ok bool
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		i, ok = new(big.Int).SetString(s[2:], 16)
	} else {
		i, ok = new(big.Int).SetString(s, 10)
	}

	if !ok || i.Sign() < 0 || i.BitLen() > 256 {
		return nil, ErrInvalidInteger
	}

	return i, nil
}
