package presentation

import (
	"math/big"
	"testing"

	"github.com/hyperledger/anoncreds-go/clkeys"
	"github.com/hyperledger/anoncreds-go/clsignature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyAndSig(t *testing.T) (*clkeys.PrivateKey, *clkeys.PublicKey, []*big.Int, *clsignature.Signature) {
	t.Helper()
	params := clkeys.DefaultSystemParameters[1024]
	sk, pk, err := clkeys.GenerateKeyPair(params, 3)
	require.NoError(t, err)

	ms := []*big.Int{big.NewInt(0), big.NewInt(111), big.NewInt(222), big.NewInt(333)}
	sig, err := clsignature.Sign(sk, pk, ms)
	require.NoError(t, err)
	require.True(t, sig.Verify(pk, ms))
	return sk, pk, ms, sig
}

func TestEqualityProofRoundTripAllHidden(t *testing.T) {
	_, pk, ms, sig := testKeyAndSig(t)

	witness, err := PrepareEquality(pk, sig, ms, map[int]*big.Int{})
	require.NoError(t, err)

	nonce := big.NewInt(42)
	c := HashCommitments(nonce, []*big.Int{witness.Commitment})

	proof := witness.FinishEquality(c)

	z := pk.Z.Big()
	tPrime := VerifyEquality(pk, z, map[int]*big.Int{}, proof, c)
	require.NotNil(t, tPrime)

	recomputed := HashCommitments(nonce, []*big.Int{tPrime})
	assert.Equal(t, c.String(), recomputed.String())
}

func TestEqualityProofRoundTripWithRevealed(t *testing.T) {
	_, pk, ms, sig := testKeyAndSig(t)

	revealed := map[int]*big.Int{1: ms[1]}
	witness, err := PrepareEquality(pk, sig, ms, revealed)
	require.NoError(t, err)

	nonce := big.NewInt(7)
	c := HashCommitments(nonce, []*big.Int{witness.Commitment})
	proof := witness.FinishEquality(c)

	z := pk.Z.Big()
	tPrime := VerifyEquality(pk, z, revealed, proof, c)
	require.NotNil(t, tPrime)

	recomputed := HashCommitments(nonce, []*big.Int{tPrime})
	assert.Equal(t, c.String(), recomputed.String())
}

func TestEqualityProofRejectsWrongChallenge(t *testing.T) {
	_, pk, ms, sig := testKeyAndSig(t)

	witness, err := PrepareEquality(pk, sig, ms, map[int]*big.Int{})
	require.NoError(t, err)

	nonce := big.NewInt(42)
	c := HashCommitments(nonce, []*big.Int{witness.Commitment})
	proof := witness.FinishEquality(c)

	z := pk.Z.Big()
	tPrime := VerifyEquality(pk, z, map[int]*big.Int{}, proof, c)
	wrongC := new(big.Int).Add(c, big.NewInt(1))
	tPrimeWrong := VerifyEquality(pk, z, map[int]*big.Int{}, proof, wrongC)
	assert.NotEqual(t, tPrime.String(), tPrimeWrong.String())
}
