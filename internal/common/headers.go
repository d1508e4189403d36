package common

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

const (
	SignatureHeader = "X-Signature"
	AddressHeader   = "X-Address"
)

type ContextKey string

const (
	ContextKeyAddress ContextKey = "address"
)

// GetContextAddress returns the ContextKeyAddress from the context
func GetContextAddress(ctx context.Context) (common.Address, bool) {
	addr, ok := ctx.Value(ContextKeyAddress).(common.Address)
	return addr, ok
}
