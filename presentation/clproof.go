// Package presentation implements the wire-level data model and core CL
// zero-knowledge math shared by the presentation builder (package present)
// and verifier (package verify): the Presentation Request, the Presentation
// itself, and the per-credential equality/predicate/non-revocation
// sub-proofs (spec §4.5/§4.6).
//
// The equality sub-proof is a Schnorr conjunction proving knowledge of a
// randomized CL signature's hidden exponents (e, v, and the unrevealed
// attribute messages), in the same style as the key-correctness and
// blinded-secrets correctness proofs in clkeys/correctness.go and
// protocol/blinding.go: a committed response per secret, folded into one
// Fiat-Shamir challenge.
package presentation

import (
	"crypto/sha256"
	"math/big"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/bigint"
	"github.com/hyperledger/anoncreds-go/clkeys"
	"github.com/hyperledger/anoncreds-go/clsignature"
	"github.com/hyperledger/anoncreds-go/internal/common"
)

// EqualityProof is the Schnorr conjunction proving knowledge of a
// randomized signature's hidden e, v, and unrevealed attribute exponents,
// without revealing any of them.
type EqualityProof struct {
	APrime *bigint.Int         `json:"a_prime"`
	ECap   *bigint.Int         `json:"e_cap"`
	VCap   *bigint.Int         `json:"v_cap"`
	MCaps  map[int]*bigint.Int `json:"m_caps"`
}

// equalityTranscript holds the randomness chosen before the challenge is
// known, kept only long enough to compute responses once the aggregated
// challenge is derived.
type equalityTranscript struct {
	eTilde *big.Int
	vTilde *big.Int
	mTilde map[int]*big.Int
}

// tildeBits returns the bit-length of the Schnorr commitment randomness:
// LeCommit for e, LvCommit for v, and LmCommit for every hidden message.
func tildeBits(params *clkeys.SystemParameters, which string) uint {
	switch which {
	case "e":
		return params.LeCommit
	case "v":
		return params.LvCommit
	default:
		return params.LmCommit
	}
}

// revealedProduct computes Π R[i]^{val} over the revealed index->value map.
func revealedProduct(pk *clkeys.PublicKey, revealed map[int]*big.Int) *big.Int {
	n := pk.N.Big()
	prod := big.NewInt(1)
	for i, val := range revealed {
		term := new(big.Int).Exp(pk.R[i].Big(), val, n)
		prod.Mul(prod, term).Mod(prod, n)
	}
	return prod
}

// hiddenProduct computes Π R[i]^{exp[i]} over the given index->exponent map.
func hiddenProduct(pk *clkeys.PublicKey, exps map[int]*big.Int) *big.Int {
	n := pk.N.Big()
	prod := big.NewInt(1)
	for i, e := range exps {
		term := new(big.Int).Exp(pk.R[i].Big(), e, n)
		prod.Mul(prod, term).Mod(prod, n)
	}
	return prod
}

// Randomize rerandomizes sig for one-time presentation use, delegating to
// clsignature.Signature.Randomize.
func Randomize(pk *clkeys.PublicKey, sig *clsignature.Signature) (*clsignature.Signature, error) {
	return sig.Randomize(pk)
}

// prepareEquality chooses the Schnorr commitment randomness needed to
// finish the proof once the aggregated challenge is known.
func prepareEquality(pk *clkeys.PublicKey, hiddenIdx []int) (*equalityTranscript, error) {
	params := pk.Params
	eTilde, err := common.RandomBigInt(tildeBits(params, "e"))
	if err != nil {
		return nil, anoncredserr.New(anoncredserr.Unexpected).WithCause(err)
	}
	vTilde, err := common.RandomBigInt(tildeBits(params, "v"))
	if err != nil {
		return nil, anoncredserr.New(anoncredserr.Unexpected).WithCause(err)
	}
	mTilde := make(map[int]*big.Int, len(hiddenIdx))
	for _, i := range hiddenIdx {
		t, err := common.RandomBigInt(tildeBits(params, "m"))
		if err != nil {
			return nil, anoncredserr.New(anoncredserr.Unexpected).WithCause(err)
		}
		mTilde[i] = t
	}
	return &equalityTranscript{eTilde: eTilde, vTilde: vTilde, mTilde: mTilde}, nil
}

// commitEquality computes T = (A')^eTilde * S^vTilde * Π_{hidden} R_i^{mTilde_i} (mod N).
func commitEquality(pk *clkeys.PublicKey, aPrime *big.Int, tr *equalityTranscript) *big.Int {
	n := pk.N.Big()
	t := new(big.Int).Exp(aPrime, tr.eTilde, n)
	t.Mul(t, new(big.Int).Exp(pk.S.Big(), tr.vTilde, n)).Mod(t, n)
	t.Mul(t, hiddenProduct(pk, tr.mTilde)).Mod(t, n)
	return t
}

// EqualityWitness holds one credential's randomized signature and
// commitment randomness between the two passes of the equality proof:
// callers call PrepareEquality first to obtain the commitment to fold into
// the aggregated hash, then FinishEquality once every sub-proof's
// commitment is known and the aggregated challenge c has been derived.
type EqualityWitness struct {
	RandomizedSig *clsignature.Signature
	Commitment    *big.Int
	transcript    *equalityTranscript
	hiddenIdx     []int
	ms            []*big.Int
}

// PrepareEquality randomizes sig and produces the Schnorr commitment for the
// equality sub-proof. hiddenIdx lists every ms index other than 0 that is
// NOT in revealed.
func PrepareEquality(pk *clkeys.PublicKey, sig *clsignature.Signature, ms []*big.Int, revealed map[int]*big.Int) (*EqualityWitness, error) {
	randomized, err := sig.Randomize(pk)
	if err != nil {
		return nil, err
	}
	hidden := make([]int, 0, len(ms))
	for i := range ms {
		if i == 0 {
			continue // convention: index 0 carries no independent secret (see protocol.MessageVector)
		}
		if _, ok := revealed[i]; ok {
			continue
		}
		hidden = append(hidden, i)
	}
	tr, err := prepareEquality(pk, hidden)
	if err != nil {
		return nil, err
	}
	commitment := commitEquality(pk, randomized.A.Big(), tr)
	return &EqualityWitness{RandomizedSig: randomized, Commitment: commitment, transcript: tr, hiddenIdx: hidden, ms: ms}, nil
}

// FinishEquality computes the proof's responses once the aggregated
// challenge c is known.
func (w *EqualityWitness) FinishEquality(c *big.Int) *EqualityProof {
	eCap := new(big.Int).Mul(c, w.RandomizedSig.E.Big())
	eCap.Add(eCap, w.transcript.eTilde)
	vCap := new(big.Int).Mul(c, w.RandomizedSig.V.Big())
	vCap.Add(vCap, w.transcript.vTilde)

	mCaps := make(map[int]*bigint.Int, len(w.hiddenIdx))
	for _, i := range w.hiddenIdx {
		m := new(big.Int).Mul(c, w.ms[i])
		m.Add(m, w.transcript.mTilde[i])
		mCaps[i] = bigint.FromBig(m)
	}
	return &EqualityProof{
		APrime: bigint.FromBig(new(big.Int).Set(w.RandomizedSig.A.Big())),
		ECap:   bigint.FromBig(eCap),
		VCap:   bigint.FromBig(vCap),
		MCaps:  mCaps,
	}
}

// VerifyEquality recomputes T' for a sub-proof, given the public key, the
// revealed index->value map, and the claimed aggregated challenge. Callers
// fold every sub-proof's T' together with the nonce and compare against the
// transmitted challenge (spec §4.6 step 5). Returns nil if the revealed
// value set is not invertible mod N (a malformed sub-proof).
func VerifyEquality(pk *clkeys.PublicKey, z *big.Int, revealed map[int]*big.Int, proof *EqualityProof, c *big.Int) *big.Int {
	n := pk.N.Big()

	revProd := revealedProduct(pk, revealed)
	revInv := new(big.Int).ModInverse(revProd, n)
	if revInv == nil {
		return nil
	}
	zCap := new(big.Int).Mul(z, revInv)
	zCap.Mod(zCap, n)

	negC := new(big.Int).Neg(c)
	zCapInvC := new(big.Int).Exp(zCap, negC, n)

	t := new(big.Int).Exp(proof.APrime.Big(), proof.ECap.Big(), n)
	t.Mul(t, new(big.Int).Exp(pk.S.Big(), proof.VCap.Big(), n)).Mod(t, n)
	mExps := make(map[int]*big.Int, len(proof.MCaps))
	for i, v := range proof.MCaps {
		mExps[i] = v.Big()
	}
	t.Mul(t, hiddenProduct(pk, mExps)).Mod(t, n)
	t.Mul(t, zCapInvC).Mod(t, n)
	return t
}

// HashCommitments folds a set of per-subproof commitments plus the
// presentation request nonce into a single Fiat-Shamir challenge (spec
// §4.5 step 3: "a single Fiat–Shamir challenge over the concatenation of
// all commitment byte encodings plus the presentation request nonce").
func HashCommitments(nonce *big.Int, commitments []*big.Int) *big.Int {
	h := sha256.New()
	for _, c := range commitments {
		h.Write(c.Bytes())
	}
	h.Write(nonce.Bytes())
	return new(big.Int).SetBytes(h.Sum(nil))
}
