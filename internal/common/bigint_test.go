package common

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUint256(t *testing.T) {
	i, err := ParseUint256("42")
	require.NoError(t, err)
	require.Equal(t, int64(42), i.Int64())

	i, err = ParseUint256("0x2a")
	require.NoError(t, err)
	require.Equal(t, int64(42), i.Int64())

	_, err = ParseUint256("-1")
	require.ErrorIs(t, err, ErrInvalidInteger)

	_, err = ParseUint256("abc")
	require.ErrorIs(t, err, ErrInvalidInteger)

	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = ParseUint256(tooBig.String())
	require.ErrorIs(t, err, ErrInvalidInteger)

	max := new(big.Int).Sub(tooBig, big.NewInt(1))
	i, err = ParseUint256(max.String())
	require.NoError(t, err)
	require.Equal(t, 0, max.Cmp(i))
}

func TestPage(t *testing.T) {
	s := []int{1, 2, 3, 4, 5}

	require.Equal(t, []int{1, 2, 3, 4, 5}, Page(s, 0, 0))
	require.Equal(t, []int{2, 3}, Page(s, 2, 1))
	require.Equal(t, []int{5}, Page(s, 10, 4))
	require.Equal(t, []int{}, Page(s, 2, 5))
	require.Equal(t, []int{2, 4}, Filter(s, func(i int) bool { return i%2 == 0 }))
}
