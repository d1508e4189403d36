package ethrequest

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// TokenOracle reads ERC1155 balances from the chain
type TokenOracle struct {
	evm EVMRequester
}

func NewTokenOracle(evm EVMRequester) *TokenOracle {
	return &TokenOracle{evm: evm}
}

// BalanceOf calls balanceOf(account, id) on token at the latest block
func (o *TokenOracle) BalanceOf(ctx context.Context, token, acc common.Address, id *big.Int) (*big.Int, error) {
	if id == nil {
		id = new(big.Int)
	}

	data, err := erc1155.Pack("balanceOf", acc, id)
	if err != nil {
		return nil, err
	}

	out, err := o.evm.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: data,
	}, nil)
	if err != nil {
		return nil, err
	}

	res, err := erc1155.Unpack("balanceOf", out)
	if err != nil {
		return nil, err
	}

	if len(res) != 1 {
		return nil, fmt.Errorf("unexpected balanceOf output length %d", len(res))
	}

	bal, ok := res[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf output type %T", res[0])
	}

	return bal, nil
}
