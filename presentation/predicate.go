package presentation

import (
	"math/big"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/bigint"
)

// Delta computes the signed distance between an attribute's encoded value
// and a predicate's threshold, oriented so that delta is non-negative
// exactly when the predicate holds:
//
//	>=  attrValue - pValue
//	>   attrValue - pValue - 1
//	<=  pValue - attrValue
//	<   pValue - attrValue - 1
func Delta(pType PredicateType, attrValue *big.Int, pValue int64) (*big.Int, error) {
	p := big.NewInt(pValue)
	switch pType {
	case PredicateGE:
		return new(big.Int).Sub(attrValue, p), nil
	case PredicateGT:
		return new(big.Int).Sub(new(big.Int).Sub(attrValue, p), big.NewInt(1)), nil
	case PredicateLE:
		return new(big.Int).Sub(p, attrValue), nil
	case PredicateLT:
		return new(big.Int).Sub(new(big.Int).Sub(p, attrValue), big.NewInt(1)), nil
	default:
		return nil, anoncredserr.Newf(anoncredserr.Input, "unsupported predicate type %q", pType)
	}
}

// FourSquaresOf decomposes a non-negative n into four squares a^2+b^2+c^2+d^2
// by exhaustive search over the first two terms, the brute-force approach
// Lagrange's theorem guarantees terminates. It is suited to the practical
// attribute-threshold deltas this package's predicates operate over (ages,
// amounts, counts), not arbitrary cryptographic-size integers: a holder
// whose delta is negative (the predicate does not hold) cannot find a
// decomposition at all, which is exactly the soundness property this
// relaxed construction needs.
func FourSquaresOf(n *big.Int) (FourSquares, error) {
	if n.Sign() < 0 {
		return FourSquares{}, anoncredserr.New(anoncredserr.Input, "predicate does not hold: negative delta has no four-square decomposition")
	}
	if n.Sign() == 0 {
		zero := bigint.FromBig(big.NewInt(0))
		return FourSquares{A: zero, B: zero, C: zero, D: zero}, nil
	}

	a := isqrt(n)
	for ; a.Sign() >= 0; a.Sub(a, big.NewInt(1)) {
		rem1 := new(big.Int).Sub(n, mulSq(a))
		b := isqrt(rem1)
		for ; b.Sign() >= 0; b.Sub(b, big.NewInt(1)) {
			rem2 := new(big.Int).Sub(rem1, mulSq(b))
			if c, d, ok := sumOfTwoSquares(rem2); ok {
				return FourSquares{
					A: bigint.FromBig(new(big.Int).Set(a)),
					B: bigint.FromBig(new(big.Int).Set(b)),
					C: bigint.FromBig(c),
					D: bigint.FromBig(d),
				}, nil
			}
		}
	}
	return FourSquares{}, anoncredserr.Newf(anoncredserr.Unexpected, "no four-square decomposition found for %s", n)
}

// sumOfTwoSquares finds c, d with c^2+d^2 == rem by exhaustive search,
// returning ok=false if none exists.
func sumOfTwoSquares(rem *big.Int) (*big.Int, *big.Int, bool) {
	if rem.Sign() < 0 {
		return nil, nil, false
	}
	c := isqrt(rem)
	for ; c.Sign() >= 0; c.Sub(c, big.NewInt(1)) {
		rest := new(big.Int).Sub(rem, mulSq(c))
		d := isqrt(rest)
		if mulSq(d).Cmp(rest) == 0 {
			return new(big.Int).Set(c), d, true
		}
	}
	return nil, nil, false
}

func mulSq(x *big.Int) *big.Int {
	return new(big.Int).Mul(x, x)
}

// isqrt returns floor(sqrt(n)) for n >= 0.
func isqrt(n *big.Int) *big.Int {
	if n.Sign() <= 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Sqrt(n)
}

// SumOfSquares returns a^2+b^2+c^2+d^2 for fs, which is non-negative by
// construction regardless of what fs contains — the property a predicate
// verifier relies on.
func SumOfSquares(fs FourSquares) *big.Int {
	sum := new(big.Int)
	for _, v := range []*bigint.Int{fs.A, fs.B, fs.C, fs.D} {
		sum.Add(sum, mulSq(v.Big()))
	}
	return sum
}

// ReconstructValue inverts Delta: given the predicate's threshold and the
// four-square delta a verifier received, it recovers the attribute value
// the prover must have used for the bound equality sub-proof to verify. A
// dishonest prover that did not actually satisfy the predicate has no
// delta>=0 reproducing its real (hidden) attribute value, so the equality
// sub-proof fails instead.
func ReconstructValue(pType PredicateType, pValue int64, fs FourSquares) (*big.Int, error) {
	delta := SumOfSquares(fs)
	p := big.NewInt(pValue)
	switch pType {
	case PredicateGE:
		return new(big.Int).Add(p, delta), nil
	case PredicateGT:
		return new(big.Int).Add(new(big.Int).Add(p, delta), big.NewInt(1)), nil
	case PredicateLE:
		return new(big.Int).Sub(p, delta), nil
	case PredicateLT:
		return new(big.Int).Sub(new(big.Int).Sub(p, delta), big.NewInt(1)), nil
	default:
		return nil, anoncredserr.Newf(anoncredserr.Input, "unsupported predicate type %q", pType)
	}
}
