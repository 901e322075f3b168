// Copyright 2016 Maarten Everts. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package common holds the modular-arithmetic helpers shared by the CL key,
// signature, and proof packages: random values in a range, modular
// inversion/exponentiation, and the "represent to bases" construction that
// turns an attribute vector into a single group element under a CL public
// key. Lifted from the teacher's internal/common package referenced by
// clsignature.go and credential.go.
package common

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"math/big"
)

var bigONE = big.NewInt(1)

// RandomBigInt returns a random, non-negative integer of exactly the
// requested bit length (the top bit is always set).
func RandomBigInt(numBits uint) (*big.Int, error) {
	t := new(big.Int).Lsh(bigONE, numBits)
	r, err := rand.Int(rand.Reader, t)
	if err != nil {
		return nil, err
	}
	r.SetBit(r, int(numBits-1), 1)
	return r, nil
}

// RandomPrimeInRange returns a random prime p such that
// 2^(lo) <= p < 2^(hi)+2^(lo).
func RandomPrimeInRange(rnd io.Reader, lo, hi uint) (*big.Int, error) {
	start := new(big.Int).Lsh(bigONE, lo)
	span := new(big.Int).Lsh(bigONE, hi)
	for {
		delta, err := rand.Int(rnd, span)
		if err != nil {
			return nil, err
		}
		cand := new(big.Int).Add(start, delta)
		cand.SetBit(cand, 0, 1) // force odd
		if cand.ProbablyPrime(20) {
			return cand, nil
		}
	}
}

// ModPow computes base^exp mod m, rejecting a non-positive modulus the way
// math/big.Int.Exp would otherwise silently misbehave.
func ModPow(base, exp, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, errModulus
	}
	return new(big.Int).Exp(base, exp, m), nil
}

var errModulus = errors.New("common: modulus must be positive")

// ModInverse returns the multiplicative inverse of a mod m, and whether one
// exists (a and m coprime).
func ModInverse(a, m *big.Int) (*big.Int, bool) {
	inv := new(big.Int).ModInverse(a, m)
	if inv == nil {
		return nil, false
	}
	return inv, true
}

// RepresentToBases returns R[0]^exps[0] * R[1]^exps[1] * ... (mod n). Any
// exponent longer than lm bits is hashed down to a deterministic lm-bit-ish
// integer first, mirroring the CL message encoding rule for over-long
// attribute exponents.
func RepresentToBases(bases []*big.Int, exps []*big.Int, n *big.Int, lm uint) *big.Int {
	r := big.NewInt(1)
	for i, exp := range exps {
		if i >= len(bases) {
			break
		}
		e := exp
		if uint(e.BitLen()) > lm {
			e = IntHashSha256(e.Bytes())
		}
		r.Mul(r, new(big.Int).Exp(bases[i], e, n))
		r.Mod(r, n)
	}
	return r
}

// IntHashSha256 returns the SHA-256 digest of b, interpreted as a big-endian
// unsigned integer. Used to fold over-long exponents/attribute values down
// to a fixed size before they enter a CL representation.
func IntHashSha256(b []byte) *big.Int {
	sum := sha256.Sum256(b)
	return new(big.Int).SetBytes(sum[:])
}

// LegendreSymbol computes the Legendre symbol (a/p) for an odd prime p.
func LegendreSymbol(a, p *big.Int) int {
	if a.Sign() == 0 {
		return 0
	}
	exp := new(big.Int).Sub(p, bigONE)
	exp.Rsh(exp, 1)
	r := new(big.Int).Exp(a, exp, p)
	if r.Cmp(bigONE) == 0 {
		return 1
	}
	return -1
}
