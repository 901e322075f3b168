package clsignature

import (
	"crypto/sha256"
	"math/big"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/bigint"
	"github.com/hyperledger/anoncreds-go/clkeys"
	"github.com/hyperledger/anoncreds-go/internal/common"
)

// CorrectnessProof is a zero-knowledge proof that a CL signature was built
// from an honest Q = A^e (spec §4.3): it proves knowledge of e's inverse
// exponent used to build A without revealing anything the signature itself
// does not already disclose. A holder runs Verify before accepting a
// credential into storage.
type CorrectnessProof struct {
	C      *bigint.Int `json:"c"`
	SECap  *bigint.Int `json:"se_cap"`
}

// CreateCorrectnessProof builds the correctness proof for sig, given the
// issuer's private key (needed to reconstruct Q = A^e and the order used for
// the response).
func CreateCorrectnessProof(sk *clkeys.PrivateKey, pk *clkeys.PublicKey, sig *Signature, ms []*big.Int) (*CorrectnessProof, error) {
	n := pk.N.Big()
	e := sig.E.Big()
	order := sk.Order()

	d, ok := common.ModInverse(e, order)
	if !ok {
		return nil, anoncredserr.New(anoncredserr.Unexpected, "signature exponent not invertible mod key order")
	}

	r, err := common.RandomBigInt(pk.Params.Ln + pk.Params.Lstatzk)
	if err != nil {
		return nil, anoncredserr.New(anoncredserr.Unexpected).WithCause(err)
	}
	qTilde := new(big.Int).Exp(sig.A.Big(), r, n)

	c := correctnessChallenge(n, sig.A.Big(), qTilde)

	seCap := new(big.Int).Mul(c, d)
	seCap.Add(seCap, r)
	seCap.Mod(seCap, order)

	return &CorrectnessProof{C: bigint.FromBig(c), SECap: bigint.FromBig(seCap)}, nil
}

// Verify checks the signature correctness proof against pk and the
// attribute vector ms the signature was issued over.
func (p *CorrectnessProof) Verify(pk *clkeys.PublicKey, sig *Signature, ms []*big.Int) bool {
	n := pk.N.Big()
	q := reconstructQ(pk, sig, ms)
	if q == nil {
		return false
	}

	// qTilde = A^seCap * Q^-c (mod n)
	qInvC := new(big.Int).Exp(q, new(big.Int).Neg(p.C.Big()), n)
	qTilde := new(big.Int).Exp(sig.A.Big(), p.SECap.Big(), n)
	qTilde.Mul(qTilde, qInvC).Mod(qTilde, n)

	expected := correctnessChallenge(n, sig.A.Big(), qTilde)
	return expected.Cmp(p.C.Big()) == 0
}

func reconstructQ(pk *clkeys.PublicKey, sig *Signature, ms []*big.Int) *big.Int {
	n := pk.N.Big()
	r := RepresentToPublicKey(pk, ms)
	sv, err := common.ModPow(pk.S.Big(), sig.V.Big(), n)
	if err != nil {
		return nil
	}
	q := new(big.Int).Mul(r, sv)
	q.Mod(q, n)
	return q
}

func correctnessChallenge(n, a, qTilde *big.Int) *big.Int {
	h := sha256.New()
	h.Write(n.Bytes())
	h.Write(a.Bytes())
	h.Write(qTilde.Bytes())
	return new(big.Int).SetBytes(h.Sum(nil))
}
