package protocol

import (
	"crypto/sha256"
	"math/big"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/bigint"
	"github.com/hyperledger/anoncreds-go/clkeys"
	"github.com/hyperledger/anoncreds-go/internal/common"
)

// BlindedCredentialSecrets is the holder's hiding commitment to its link
// secret: U = R[0]^linkSecret * S^vPrime (mod N), where R[0] is the
// public key's dedicated link-secret base. It accompanies every request so
// the issuer can fold it into the CL signature without ever learning the
// link secret.
type BlindedCredentialSecrets struct {
	U *bigint.Int `json:"u"`
}

// blindingFactors is the holder-retained randomness needed to unblind the
// issued signature; it is stored in RequestMetadata, never transmitted.
type blindingFactors struct {
	VPrime *bigint.Int `json:"v_prime"`
}

// BlindedSecretsCorrectnessProof is a zero-knowledge proof that U commits to
// a link secret and blinding factor honestly, without revealing either
// (spec §4.3's "correctness proof demonstrates well-formedness in zero
// knowledge").
type BlindedSecretsCorrectnessProof struct {
	C       *bigint.Int `json:"c"`
	LsCap   *bigint.Int `json:"ls_cap"`
	VCap    *bigint.Int `json:"v_cap"`
}

// blindCredentialSecrets produces U, the holder's blinding factors, and the
// correctness proof binding U to the offer's nonce.
func blindCredentialSecrets(pk *clkeys.PublicKey, linkSecret *big.Int, offerNonce *big.Int) (*BlindedCredentialSecrets, *blindingFactors, *BlindedSecretsCorrectnessProof, error) {
	n := pk.N.Big()
	s := pk.S.Big()
	r0 := pk.R[0].Big()

	vPrime, err := common.RandomBigInt(pk.Params.LvPrime)
	if err != nil {
		return nil, nil, nil, anoncredserr.New(anoncredserr.Unexpected).WithCause(err)
	}

	u := new(big.Int).Exp(r0, linkSecret, n)
	sv := new(big.Int).Exp(s, vPrime, n)
	u.Mul(u, sv).Mod(u, n)

	lsTilde, err := common.RandomBigInt(pk.Params.LmCommit)
	if err != nil {
		return nil, nil, nil, anoncredserr.New(anoncredserr.Unexpected).WithCause(err)
	}
	vTilde, err := common.RandomBigInt(pk.Params.LvPrimeCommit)
	if err != nil {
		return nil, nil, nil, anoncredserr.New(anoncredserr.Unexpected).WithCause(err)
	}

	uTilde := new(big.Int).Exp(r0, lsTilde, n)
	svTilde := new(big.Int).Exp(s, vTilde, n)
	uTilde.Mul(uTilde, svTilde).Mod(uTilde, n)

	c := blindingChallenge(n, u, uTilde, offerNonce)

	lsCap := new(big.Int).Mul(c, linkSecret)
	lsCap.Add(lsCap, lsTilde)
	vCap := new(big.Int).Mul(c, vPrime)
	vCap.Add(vCap, vTilde)

	secrets := &BlindedCredentialSecrets{U: bigint.FromBig(u)}
	factors := &blindingFactors{VPrime: bigint.FromBig(vPrime)}
	proof := &BlindedSecretsCorrectnessProof{
		C:     bigint.FromBig(c),
		LsCap: bigint.FromBig(lsCap),
		VCap:  bigint.FromBig(vCap),
	}
	return secrets, factors, proof, nil
}

// Verify checks the blinded-secrets correctness proof against the public
// key and the offer nonce used in its transcript.
func (p *BlindedSecretsCorrectnessProof) Verify(pk *clkeys.PublicKey, u *bigint.Int, offerNonce *big.Int) bool {
	n := pk.N.Big()
	s := pk.S.Big()
	r0 := pk.R[0].Big()
	c := p.C.Big()

	uInvC := new(big.Int).Exp(u.Big(), new(big.Int).Neg(c), n)
	lsTerm := new(big.Int).Exp(r0, p.LsCap.Big(), n)
	vTerm := new(big.Int).Exp(s, p.VCap.Big(), n)
	uTilde := new(big.Int).Mul(lsTerm, vTerm)
	uTilde.Mul(uTilde, uInvC).Mod(uTilde, n)

	expected := blindingChallenge(n, u.Big(), uTilde, offerNonce)
	return expected.Cmp(c) == 0
}

func blindingChallenge(n, u, uTilde, nonce *big.Int) *big.Int {
	h := sha256.New()
	h.Write(n.Bytes())
	h.Write(u.Bytes())
	h.Write(uTilde.Bytes())
	h.Write(nonce.Bytes())
	return new(big.Int).SetBytes(h.Sum(nil))
}
