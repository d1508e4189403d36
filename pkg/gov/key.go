package gov

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// Key returns the identity key of a token instance: keccak256 over the packed
// encoding of the token address (20 bytes) and the instance id (32 bytes).
func Key(token common.Address, id *big.Int) common.Hash {
	if id == nil {
		id = common.Big0
	}

	return crypto.Keccak256Hash(token.Bytes(), math.U256Bytes(new(big.Int).Set(id)))
}
