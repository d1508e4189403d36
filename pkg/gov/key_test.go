package gov

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	token := common.HexToAddress("0x480fbe37526226b6c6e2a7afa449cdf661939d2f")

	packed := append(token.Bytes(), common.LeftPadBytes(big.NewInt(42).Bytes(), 32)...)
	require.Equal(t, crypto.Keccak256Hash(packed), Key(token, big.NewInt(42)))

	require.Equal(t, Key(token, big.NewInt(1)), Key(token, big.NewInt(1)))
	require.NotEqual(t, Key(token, big.NewInt(1)), Key(token, big.NewInt(2)))
	require.NotEqual(t, Key(token, big.NewInt(1)), Key(common.HexToAddress("0x01"), big.NewInt(1)))
	require.Equal(t, Key(token, big.NewInt(0)), Key(token, nil))
}
