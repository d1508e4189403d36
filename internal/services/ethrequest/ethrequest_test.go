package ethrequest

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

type fakeEVM struct {
	chainID *big.Int
	code    []byte

	calls   []ethereum.CallMsg
	callOut func(msg ethereum.CallMsg) ([]byte, error)

	sent []*types.Transaction
}

func (f *fakeEVM) Context() context.Context {
	return context.Background()
}

func (f *fakeEVM) ChainID() (*big.Int, error) {
	return f.chainID, nil
}

func (f *fakeEVM) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	return f.code, nil
}

func (f *fakeEVM) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.calls = append(f.calls, msg)
	return f.callOut(msg)
}

func (f *fakeEVM) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return 7, nil
}

func (f *fakeEVM) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1000), nil
}

func (f *fakeEVM) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return 21000, nil
}

func (f *fakeEVM) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	f.sent = append(f.sent, tx)
	return nil
}

var (
	token  = common.HexToAddress("0x5815E61eF72c9E6107b5c5A05FD121F334f7a7f1")
	holder = common.HexToAddress("0x1000000000000000000000000000000000000001")
	target = common.HexToAddress("0xcfa21B33D304D57c4E964e3819588Eb5ac06B4D9")
)

func TestTokenOracle(t *testing.T) {
	evm := &fakeEVM{
		callOut: func(msg ethereum.CallMsg) ([]byte, error) {
			return erc1155.Methods["balanceOf"].Outputs.Pack(big.NewInt(42))
		},
	}

	o := NewTokenOracle(evm)

	bal, err := o.BalanceOf(context.Background(), token, holder, big.NewInt(3))
	require.NoError(t, err)
	require.Equal(t, int64(42), bal.Int64())

	require.Len(t, evm.calls, 1)
	require.Equal(t, token, *evm.calls[0].To)

	args, err := erc1155.Methods["balanceOf"].Inputs.Unpack(evm.calls[0].Data[4:])
	require.NoError(t, err)
	require.Equal(t, holder, args[0].(common.Address))
	require.Equal(t, int64(3), args[1].(*big.Int).Int64())
}

func TestTokenOracleError(t *testing.T) {
	evm := &fakeEVM{
		callOut: func(msg ethereum.CallMsg) ([]byte, error) {
			return nil, errors.New("execution reverted")
		},
	}

	_, err := NewTokenOracle(evm).BalanceOf(context.Background(), token, holder, nil)
	require.Error(t, err)
}

func TestExecutorSimulateOnly(t *testing.T) {
	evm := &fakeEVM{
		callOut: func(msg ethereum.CallMsg) ([]byte, error) {
			return []byte{0xca, 0xfe}, nil
		},
	}

	e, err := NewExecutor(evm, "")
	require.NoError(t, err)
	require.Equal(t, common.Address{}, e.Address())

	out, err := e.Invoke(context.Background(), target, []byte{1, 2})
	require.NoError(t, err)
	require.Equal(t, []byte{0xca, 0xfe}, out)
	require.Empty(t, evm.sent)
}

func TestExecutorSendsSignedTransaction(t *testing.T) {
	pk, err := crypto.GenerateKey()
	require.NoError(t, err)

	evm := &fakeEVM{
		chainID: big.NewInt(137),
		callOut: func(msg ethereum.CallMsg) ([]byte, error) {
			return []byte{0x01}, nil
		},
	}

	e, err := NewExecutor(evm, common.Bytes2Hex(crypto.FromECDSA(pk)))
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(pk.PublicKey), e.Address())

	out, err := e.Invoke(context.Background(), target, []byte{1, 2})
	require.NoError(t, err)
	require.Equal(t, []byte{0x01}, out)

	require.Len(t, evm.calls, 1)
	require.Equal(t, e.Address(), evm.calls[0].From)

	require.Len(t, evm.sent, 1)
	tx := evm.sent[0]
	require.Equal(t, target, *tx.To())
	require.Equal(t, []byte{1, 2}, tx.Data())
	require.Equal(t, uint64(7), tx.Nonce())

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(137)), tx)
	require.NoError(t, err)
	require.Equal(t, e.Address(), sender)
}

func TestExecutorSimulationFailure(t *testing.T) {
	pk, err := crypto.GenerateKey()
	require.NoError(t, err)

	evm := &fakeEVM{
		chainID: big.NewInt(137),
		callOut: func(msg ethereum.CallMsg) ([]byte, error) {
			return nil, errors.New("execution reverted")
		},
	}

	e, err := NewExecutor(evm, common.Bytes2Hex(crypto.FromECDSA(pk)))
	require.NoError(t, err)

	_, err = e.Invoke(context.Background(), target, nil)
	require.Error(t, err)
	require.Empty(t, evm.sent)
}

func TestInvalidExecutorKey(t *testing.T) {
	_, err := NewExecutor(&fakeEVM{}, "0xnothex")
	require.Error(t, err)
}

func TestIsValidSignature(t *testing.T) {
	acc := common.HexToAddress("0x7000000000000000000000000000000000000007")

	t.Run("not deployed", func(t *testing.T) {
		_, err := IsValidSignature(context.Background(), &fakeEVM{}, acc, [32]byte{}, []byte{1}, holder)
		require.ErrorIs(t, err, ErrNotDeployed)
	})

	t.Run("magic value", func(t *testing.T) {
		evm := &fakeEVM{
			code: []byte{0x60},
			callOut: func(msg ethereum.CallMsg) ([]byte, error) {
				return account.Methods["isValidSignature"].Outputs.Pack(MAGIC_VALUE)
			},
		}

		ok, err := IsValidSignature(context.Background(), evm, acc, [32]byte{1}, []byte{1}, holder)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("owner fallback", func(t *testing.T) {
		evm := &fakeEVM{
			code: []byte{0x60},
			callOut: func(msg ethereum.CallMsg) ([]byte, error) {
				if string(msg.Data[:4]) == string(account.Methods["isValidSignature"].ID) {
					return nil, errors.New("method not found")
				}
				return account.Methods["owner"].Outputs.Pack(holder)
			},
		}

		ok, err := IsValidSignature(context.Background(), evm, acc, [32]byte{1}, []byte{1}, holder)
		require.NoError(t, err)
		require.True(t, ok)
	})
}
