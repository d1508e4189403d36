package ethrequest

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrNoKey = errors.New("executor has no signing key")

// Executor calls proposal targets. Every call is simulated first, the output of the
// simulation is what gets returned. With a signing key the call is then sent as a
// transaction from the executor account.
type Executor struct {
	evm EVMRequester
	key *ecdsa.PrivateKey

	mu      sync.Mutex
	chainID *big.Int
}

// NewExecutor creates an Executor. hexKey may be empty, calls are then only simulated.
func NewExecutor(evm EVMRequester, hexKey string) (*Executor, error) {
	e := &Executor{evm: evm}
	if hexKey == "" {
		return e, nil
	}

	key, err := crypto.HexToECDSA(strip0x(hexKey))
	if err != nil {
		return nil, fmt.Errorf("invalid executor key: %w", err)
	}

	e.key = key

	return e, nil
}

// Address returns the account transactions are sent from
func (e *Executor) Address() common.Address {
	if e.key == nil {
		return common.Address{}
	}

	return crypto.PubkeyToAddress(e.key.PublicKey)
}

func (e *Executor) getChainID() (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.chainID != nil {
		return e.chainID, nil
	}

	chainID, err := e.evm.ChainID()
	if err != nil {
		return nil, err
	}

	e.chainID = chainID

	return chainID, nil
}

func (e *Executor) Invoke(ctx context.Context, target common.Address, payload []byte) ([]byte, error) {
	from := e.Address()

	msg := ethereum.CallMsg{
		From: from,
		To:   &target,
		Data: payload,
	}

	out, err := e.evm.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("simulation failed: %w", err)
	}

	if e.key == nil {
		return out, nil
	}

	tx, err := e.sign(ctx, msg)
	if err != nil {
		return nil, err
	}

	err = e.evm.SendTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	return out, nil
}

func (e *Executor) sign(ctx context.Context, msg ethereum.CallMsg) (*types.Transaction, error) {
	if e.key == nil {
		return nil, ErrNoKey
	}

	chainID, err := e.getChainID()
	if err != nil {
		return nil, err
	}

	nonce, err := e.evm.PendingNonceAt(ctx, msg.From)
	if err != nil {
		return nil, err
	}

	gasPrice, err := e.evm.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	gas, err := e.evm.EstimateGas(ctx, msg)
	if err != nil {
		return nil, err
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       msg.To,
		Value:    common.Big0,
		Data:     msg.Data,
	})

	return types.SignTx(tx, types.LatestSignerForChainID(chainID), e.key)
}
