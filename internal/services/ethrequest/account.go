package ethrequest

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	MAGIC_VALUE = [4]byte{0x16, 0x26, 0xba, 0x7e}

	ErrNotDeployed = errors.New("account is not deployed")
)

// IsValidSignature asks a deployed account if sig is a valid ERC1271 signature of hash.
// Accounts that do not implement the method are checked against their owner instead.
func IsValidSignature(ctx context.Context, evm EVMRequester, acc common.Address, hash [32]byte, sig []byte, signer common.Address) (bool, error) {
	bytecode, err := evm.CodeAt(ctx, acc, nil)
	if err != nil {
		return false, err
	}

	if len(bytecode) == 0 {
		return false, ErrNotDeployed
	}

	data, err := account.Pack("isValidSignature", hash, sig)
	if err != nil {
		return false, err
	}

	out, err := evm.CallContract(ctx, ethereum.CallMsg{To: &acc, Data: data}, nil)
	if err == nil {
		res, err := account.Unpack("isValidSignature", out)
		if err != nil || len(res) != 1 {
			return false, err
		}

		v, ok := res[0].([4]byte)
		if !ok {
			return false, nil
		}

		return v == MAGIC_VALUE, nil
	}

	// an error occured, check if it is because the method is not implemented
	var e rpc.Error
	if errors.As(err, &e) && e.ErrorCode() != -32000 {
		return false, err
	}

	data, err = account.Pack("owner")
	if err != nil {
		return false, err
	}

	out, err = evm.CallContract(ctx, ethereum.CallMsg{To: &acc, Data: data}, nil)
	if err != nil {
		return false, err
	}

	res, err := account.Unpack("owner", out)
	if err != nil || len(res) != 1 {
		return false, err
	}

	owner, ok := res[0].(common.Address)
	if !ok {
		return false, nil
	}

	return owner == signer, nil
}
