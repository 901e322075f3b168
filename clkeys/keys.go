// Copyright 2016 Maarten Everts. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clkeys

import (
	"crypto/rand"
	"math/big"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/bigint"
	"github.com/hyperledger/anoncreds-go/internal/common"
)

var bigONE = big.NewInt(1)
var bigTWO = big.NewInt(2)

// PrivateKey is an issuer's CL primary private key: the two safe primes
// whose product is the public modulus N.
type PrivateKey struct {
	P      *bigint.Int `json:"p"`
	Q      *bigint.Int `json:"q"`
	PPrime *bigint.Int `json:"p_prime"`
	QPrime *bigint.Int `json:"q_prime"`

	// XZ and XR are the discrete logs (base S) of Z and of each R base.
	// They never leave the issuer process and are excluded from the wire
	// format; they exist only so CreateCredentialDefinition can build the
	// key-correctness proof without regenerating the key.
	XZ *bigint.Int   `json:"-"`
	XR []*bigint.Int `json:"-"`
}

// Order returns p' * q', the order of the quadratic-residue subgroup of
// Z_N^*, used as the modulus for inverting signature exponents.
func (sk *PrivateKey) Order() *big.Int {
	return new(big.Int).Mul(sk.PPrime.Big(), sk.QPrime.Big())
}

// PublicKey is an issuer's CL primary public key, sized to a schema's
// attribute count: one base for the holder's link secret (index 0), one
// base per declared attribute, and one trailing base ("m2") the issuer
// folds non-attribute context (schema/cred-def/revocation linkage) into.
type PublicKey struct {
	N      *bigint.Int   `json:"n"`
	Z      *bigint.Int   `json:"z"`
	S      *bigint.Int   `json:"s"`
	R      []*bigint.Int `json:"r"`
	Params *SystemParameters `json:"-"`
}

// NumAttributeBases returns the number of declared-attribute bases (R
// excluding the link-secret base at index 0 and the trailing m2 base).
func (pk *PublicKey) NumAttributeBases() int {
	return len(pk.R) - 2
}

func randomBigInt(bits uint) (*big.Int, error) {
	return common.RandomBigInt(bits)
}

func randomSafePrime(bits int) (*big.Int, error) {
	for {
		p, err := rand.Prime(rand.Reader, bits)
		if err != nil {
			return nil, err
		}
		p2 := new(big.Int).Rsh(p, 1)
		if p2.ProbablyPrime(20) {
			return p, nil
		}
	}
}

// GenerateKeyPair generates a CL primary key pair for a schema declaring
// numAttributes attributes, at the requested key length (bits of N).
func GenerateKeyPair(params *SystemParameters, numAttributes int) (*PrivateKey, *PublicKey, error) {
	if numAttributes < 0 || numAttributes > MaxAttributes {
		return nil, nil, anoncredserr.Newf(anoncredserr.Input, "numAttributes %d exceeds maximum %d", numAttributes, MaxAttributes)
	}
	primeSize := params.Ln / 2

	p, err := randomSafePrime(int(primeSize))
	if err != nil {
		return nil, nil, anoncredserr.New(anoncredserr.Unexpected).WithCause(err)
	}
	q, err := randomSafePrime(int(primeSize))
	if err != nil {
		return nil, nil, anoncredserr.New(anoncredserr.Unexpected).WithCause(err)
	}

	sk := &PrivateKey{
		P:      bigint.FromBig(p),
		Q:      bigint.FromBig(q),
		PPrime: bigint.FromBig(new(big.Int).Rsh(new(big.Int).Sub(p, bigONE), 1)),
		QPrime: bigint.FromBig(new(big.Int).Rsh(new(big.Int).Sub(q, bigONE), 1)),
	}

	n := new(big.Int).Mul(p, q)

	var s *big.Int
	for {
		s, err = randomBigInt(params.Ln)
		if err != nil {
			return nil, nil, anoncredserr.New(anoncredserr.Unexpected).WithCause(err)
		}
		if s.Cmp(n) > 0 {
			continue
		}
		if common.LegendreSymbol(s, p) == 1 && common.LegendreSymbol(s, q) == 1 {
			break
		}
	}

	randomExp := func() *big.Int {
		for {
			x, _ := randomBigInt(primeSize)
			if x.Cmp(bigTWO) > 0 && x.Cmp(n) < 0 {
				return x
			}
		}
	}

	xz := randomExp()
	z := new(big.Int).Exp(s, xz, n)

	// one base for the link secret, one per attribute, one trailing m2 tag
	numBases := numAttributes + 2
	r := make([]*bigint.Int, numBases)
	xr := make([]*bigint.Int, numBases)
	for i := 0; i < numBases; i++ {
		x := randomExp()
		xr[i] = bigint.FromBig(x)
		r[i] = bigint.FromBig(new(big.Int).Exp(s, x, n))
	}

	sk.XZ = bigint.FromBig(xz)
	sk.XR = xr

	pk := &PublicKey{
		N:      bigint.FromBig(n),
		Z:      bigint.FromBig(z),
		S:      bigint.FromBig(s),
		R:      r,
		Params: params,
	}

	return sk, pk, nil
}

// Consistent reports whether sk can reproduce a modulus consistent with pk
// (N == P*Q). Used to reject a private/public key pair that do not match
// before issuing a credential (spec §4.3 InvalidState policy).
func (sk *PrivateKey) Consistent(pk *PublicKey) bool {
	n := new(big.Int).Mul(sk.P.Big(), sk.Q.Big())
	return n.Cmp(pk.N.Big()) == 0
}
