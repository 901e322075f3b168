package clkeys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyPairConsistent(t *testing.T) {
	params := DefaultSystemParameters[1024]
	sk, pk, err := GenerateKeyPair(params, 4)
	require.NoError(t, err)
	assert.True(t, sk.Consistent(pk))
	assert.Equal(t, 4, pk.NumAttributeBases())
	assert.Len(t, pk.R, 6)
}

func TestGenerateKeyPairRejectsTooManyAttributes(t *testing.T) {
	params := DefaultSystemParameters[1024]
	_, _, err := GenerateKeyPair(params, MaxAttributes+1)
	assert.Error(t, err)
}

func TestCorrectnessProofRoundTrip(t *testing.T) {
	params := DefaultSystemParameters[1024]
	sk, pk, err := GenerateKeyPair(params, 3)
	require.NoError(t, err)

	proof, err := CreateCorrectnessProof(sk, pk)
	require.NoError(t, err)
	assert.True(t, proof.Verify(pk))
}

func TestCorrectnessProofRejectsTamperedKey(t *testing.T) {
	params := DefaultSystemParameters[1024]
	sk, pk, err := GenerateKeyPair(params, 3)
	require.NoError(t, err)

	proof, err := CreateCorrectnessProof(sk, pk)
	require.NoError(t, err)

	_, otherPk, err := GenerateKeyPair(params, 3)
	require.NoError(t, err)
	otherPk.R = pk.R

	assert.False(t, proof.Verify(otherPk))
}
