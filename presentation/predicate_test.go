package presentation

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFourSquaresOfZero(t *testing.T) {
	fs, err := FourSquaresOf(big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, "0", SumOfSquares(fs).String())
}

func TestFourSquaresOfRoundTrips(t *testing.T) {
	for _, n := range []int64{1, 2, 7, 15, 31, 100, 12345} {
		fs, err := FourSquaresOf(big.NewInt(n))
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(n).String(), SumOfSquares(fs).String())
	}
}

func TestFourSquaresOfRejectsNegative(t *testing.T) {
	_, err := FourSquaresOf(big.NewInt(-1))
	assert.Error(t, err)
}

func TestDeltaAndReconstructValueRoundTrip(t *testing.T) {
	cases := []struct {
		pType  PredicateType
		value  int64
		pValue int64
	}{
		{PredicateGE, 28, 18},
		{PredicateGT, 28, 18},
		{PredicateLE, 10, 18},
		{PredicateLT, 10, 18},
	}
	for _, c := range cases {
		delta, err := Delta(c.pType, big.NewInt(c.value), c.pValue)
		require.NoError(t, err)
		require.True(t, delta.Sign() >= 0, "predicate must hold for this fixture")

		fs, err := FourSquaresOf(delta)
		require.NoError(t, err)

		reconstructed, err := ReconstructValue(c.pType, c.pValue, fs)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(c.value).String(), reconstructed.String())
	}
}

func TestDeltaNegativeHasNoDecomposition(t *testing.T) {
	delta, err := Delta(PredicateGE, big.NewInt(10), 18)
	require.NoError(t, err)
	assert.True(t, delta.Sign() < 0)
	_, err = FourSquaresOf(delta)
	assert.Error(t, err)
}
