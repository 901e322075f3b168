package clsignature

import (
	"math/big"
	"testing"

	"github.com/hyperledger/anoncreds-go/clkeys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyPair(t *testing.T, numAttrs int) (*clkeys.PrivateKey, *clkeys.PublicKey) {
	t.Helper()
	params := clkeys.DefaultSystemParameters[1024]
	sk, pk, err := clkeys.GenerateKeyPair(params, numAttrs)
	require.NoError(t, err)
	return sk, pk
}

func messages(pk *clkeys.PublicKey) []*big.Int {
	ms := make([]*big.Int, len(pk.R))
	for i := range ms {
		ms[i] = big.NewInt(int64(i + 1))
	}
	return ms
}

func TestSignAndVerify(t *testing.T) {
	sk, pk := testKeyPair(t, 3)
	ms := messages(pk)

	sig, err := Sign(sk, pk, ms)
	require.NoError(t, err)
	assert.True(t, sig.Verify(pk, ms))
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	sk, pk := testKeyPair(t, 3)
	ms := messages(pk)

	sig, err := Sign(sk, pk, ms)
	require.NoError(t, err)

	tampered := messages(pk)
	tampered[0] = big.NewInt(9999)
	assert.False(t, sig.Verify(pk, tampered))
}

func TestRandomizePreservesVerification(t *testing.T) {
	sk, pk := testKeyPair(t, 3)
	ms := messages(pk)

	sig, err := Sign(sk, pk, ms)
	require.NoError(t, err)

	randomized, err := sig.Randomize(pk)
	require.NoError(t, err)
	assert.True(t, randomized.Verify(pk, ms))
	assert.NotEqual(t, sig.A.Big(), randomized.A.Big())
}

func TestSignatureCorrectnessProofRoundTrip(t *testing.T) {
	sk, pk := testKeyPair(t, 2)
	ms := messages(pk)

	sig, err := Sign(sk, pk, ms)
	require.NoError(t, err)

	proof, err := CreateCorrectnessProof(sk, pk, sig, ms)
	require.NoError(t, err)
	assert.True(t, proof.Verify(pk, sig, ms))
}
