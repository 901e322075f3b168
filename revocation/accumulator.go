// Package revocation implements the pairing-accumulator-backed revocation
// engine (spec §4.4): tails generation/reading, the revocation registry
// definition and its private key material, the bitmap status list, and
// holder-side witness maintenance.
//
// The accumulator is a single G2 element: the product of the tails elements
// g_i for every currently non-revoked index i. A witness for index i is the
// same product taken over every index except i, so witness + g_i ==
// accumulator certifies membership — the primitive this package grounds on
// github.com/kilic/bls12-381, the same pairing stack
// lugondev-bbs-selective-disclosure-example and prysmaticlabs-prysm wire for
// accumulator/aggregate-signature arithmetic.
package revocation

import (
	cryptorand "crypto/rand"
	"math/big"

	bls12381 "github.com/kilic/bls12-381"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
)

// Accumulator is the current product of non-revoked tails elements.
type Accumulator struct {
	Value *bls12381.PointG2
}

func g2() *bls12381.G2 {
	return bls12381.NewG2()
}

// NewAccumulator returns the identity-element accumulator (the empty
// product, i.e. "everything revoked").
func NewAccumulator() *Accumulator {
	return &Accumulator{Value: g2().Zero()}
}

// Accumulate folds a tails element into the accumulator: acc := acc + g_i
// (additive notation for the underlying G2 group law).
func (a *Accumulator) Accumulate(tail *bls12381.PointG2) {
	g := g2()
	next := g.New()
	g.Add(next, a.Value, tail)
	a.Value = next
}

// Deaccumulate removes a tails element: acc := acc - g_i.
func (a *Accumulator) Deaccumulate(tail *bls12381.PointG2) {
	g := g2()
	neg := g.New()
	g.Neg(neg, tail)
	next := g.New()
	g.Add(next, a.Value, neg)
	a.Value = next
}

// Clone returns a deep copy of the accumulator value.
func (a *Accumulator) Clone() *Accumulator {
	g := g2()
	c := g.New()
	g.Copy(c, a.Value)
	return &Accumulator{Value: c}
}

// Bytes returns the canonical uncompressed serialisation of the accumulator
// value, used as the `accum_value` field on a RevocationStatusList.
func (a *Accumulator) Bytes() []byte {
	return g2().ToBytes(a.Value)
}

// AccumulatorFromBytes parses an uncompressed G2 point.
func AccumulatorFromBytes(b []byte) (*Accumulator, error) {
	p, err := g2().FromBytes(b)
	if err != nil {
		return nil, anoncredserr.New(anoncredserr.Input, "malformed accumulator value").WithCause(err)
	}
	return &Accumulator{Value: p}, nil
}

// Witness is the per-index auxiliary value a holder presents to prove
// accumulator membership: the accumulator computed over every index except
// the holder's own.
type Witness struct {
	Value *bls12381.PointG2
}

// WitnessFromAccumulator derives the witness for index i given the full
// tails set and the accumulator's current membership bitmap (issued
// indices), by recomputing the product over all issued indices except i.
// Callers maintaining a running witness should prefer ApplyDelta instead of
// recomputing from scratch on every update.
func WitnessFromAccumulator(tails []*bls12381.PointG2, issued map[int]bool, index int) *Witness {
	g := g2()
	w := g.Zero()
	for i, t := range tails {
		if i == index {
			continue
		}
		if !issued[i] {
			continue
		}
		next := g.New()
		g.Add(next, w, t)
		w = next
	}
	return &Witness{Value: w}
}

// ApplyDelta updates w in place to reflect indices newly issued or newly
// revoked, without touching any tails element outside the delta (spec §4.4:
// "must apply only the delta... not recompute from scratch").
func (w *Witness) ApplyDelta(tails []*bls12381.PointG2, issuedDelta, revokedDelta []int, index int) {
	g := g2()
	for _, i := range issuedDelta {
		if i == index || i < 0 || i >= len(tails) {
			continue
		}
		next := g.New()
		g.Add(next, w.Value, tails[i])
		w.Value = next
	}
	for _, i := range revokedDelta {
		if i == index || i < 0 || i >= len(tails) {
			continue
		}
		neg := g.New()
		g.Neg(neg, tails[i])
		next := g.New()
		g.Add(next, w.Value, neg)
		w.Value = next
	}
}

// VerifyMembership checks the identity w + g_i == acc that certifies index
// i is a member of the accumulator acc, given the index's tails element
// tailI: a witness is defined as the accumulator over every index except
// its own, so adding the missing tail back must reproduce the accumulator.
func VerifyMembership(acc *Accumulator, w *Witness, tailI *bls12381.PointG2) bool {
	g := g2()
	sum := g.New()
	g.Add(sum, w.Value, tailI)
	return sum.Equal(acc.Value)
}

// Bytes returns the canonical uncompressed serialisation of the witness value.
func (w *Witness) Bytes() []byte {
	return g2().ToBytes(w.Value)
}

// WitnessFromBytes parses an uncompressed G2 point into a Witness.
func WitnessFromBytes(b []byte) (*Witness, error) {
	p, err := g2().FromBytes(b)
	if err != nil {
		return nil, anoncredserr.New(anoncredserr.Input, "malformed witness value").WithCause(err)
	}
	return &Witness{Value: p}, nil
}

// TailBytes returns the canonical uncompressed serialisation of a single
// tails element, as stored index-for-index in a tails file.
func TailBytes(tail *bls12381.PointG2) []byte {
	return g2().ToBytes(tail)
}

// TailFromBytes parses an uncompressed G2 point into a tails element.
func TailFromBytes(b []byte) (*bls12381.PointG2, error) {
	p, err := g2().FromBytes(b)
	if err != nil {
		return nil, anoncredserr.New(anoncredserr.Input, "malformed tails element").WithCause(err)
	}
	return p, nil
}

// scalarFieldOrder is the order r of the BLS12-381 scalar field.
var scalarFieldOrder, _ = new(big.Int).SetString(
	"52435875175126190479447740508185965837690552500527637822603658699938581184513", 10)

// RandomScalar returns a uniformly random scalar reduced mod the BLS12-381
// scalar field order, used for revocation private-key generation.
func RandomScalar() (*big.Int, error) {
	return cryptorand.Int(cryptorand.Reader, scalarFieldOrder)
}
