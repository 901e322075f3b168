// Copyright 2016 Maarten Everts. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clsignature implements the Camenisch-Lysyanskaya signature that
// binds an issuer's CL key to a holder's blinded link secret and a vector of
// encoded attribute messages (spec §4.3). It also carries the signature
// correctness proof the issuer attaches so a holder can reject a malformed
// signature before storing the resulting credential.
package clsignature

import (
	"crypto/rand"
	"math/big"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/bigint"
	"github.com/hyperledger/anoncreds-go/clkeys"
	"github.com/hyperledger/anoncreds-go/internal/common"
)

// Signature holds a Camenisch-Lysyanskaya primary credential signature.
type Signature struct {
	A *bigint.Int `json:"a"`
	E *bigint.Int `json:"e"`
	V *bigint.Int `json:"v"`
}

// RepresentToPublicKey returns R[0]^exps[0] * ... * R[k-1]^exps[k-1] (mod N),
// hashing any exponent that exceeds the key's maximum message length.
func RepresentToPublicKey(pk *clkeys.PublicKey, exps []*big.Int) *big.Int {
	bases := make([]*big.Int, len(pk.R))
	for i, r := range pk.R {
		bases[i] = r.Big()
	}
	return common.RepresentToBases(bases, exps, pk.N.Big(), pk.Params.Lm)
}

// signWithCommitment signs a message block ms and a blinding commitment U.
// U is the identity element (1) for an unblinded signature.
func signWithCommitment(sk *clkeys.PrivateKey, pk *clkeys.PublicKey, u *big.Int, ms []*big.Int) (*Signature, error) {
	n := pk.N.Big()
	r := RepresentToPublicKey(pk, ms)

	vTilde, err := common.RandomBigInt(pk.Params.Lv - 1)
	if err != nil {
		return nil, anoncredserr.New(anoncredserr.Unexpected).WithCause(err)
	}
	twoLv := new(big.Int).Lsh(big.NewInt(1), pk.Params.Lv-1)
	v := new(big.Int).Add(twoLv, vTilde)

	// Q = Z * inv(S^v * R * U) mod N
	numerator := new(big.Int).Exp(pk.S.Big(), v, n)
	numerator.Mul(numerator, r).Mul(numerator, u).Mod(numerator, n)
	invNumerator, ok := common.ModInverse(numerator, n)
	if !ok {
		return nil, anoncredserr.New(anoncredserr.Unexpected, "failed to invert blinded commitment mod n")
	}
	q := new(big.Int).Mul(pk.Z.Big(), invNumerator)
	q.Mod(q, n)

	e, err := common.RandomPrimeInRange(rand.Reader, pk.Params.Le-1, pk.Params.LePrime-1)
	if err != nil {
		return nil, anoncredserr.New(anoncredserr.Unexpected).WithCause(err)
	}

	d, ok := common.ModInverse(e, sk.Order())
	if !ok {
		return nil, anoncredserr.New(anoncredserr.Unexpected, "failed to invert e mod key order")
	}
	a := new(big.Int).Exp(q, d, n)

	return &Signature{A: bigint.FromBig(a), E: bigint.FromBig(e), V: bigint.FromBig(v)}, nil
}

// Sign produces an unblinded CL signature over ms.
func Sign(sk *clkeys.PrivateKey, pk *clkeys.PublicKey, ms []*big.Int) (*Signature, error) {
	return signWithCommitment(sk, pk, big.NewInt(1), ms)
}

// SignBlinded produces a CL signature over ms against a holder-supplied
// blinded link-secret commitment u, as used during credential issuance.
func SignBlinded(sk *clkeys.PrivateKey, pk *clkeys.PublicKey, u *big.Int, ms []*big.Int) (*Signature, error) {
	return signWithCommitment(sk, pk, u, ms)
}

// Verify reports whether the signature validates against pk and ms.
func (s *Signature) Verify(pk *clkeys.PublicKey, ms []*big.Int) bool {
	n := pk.N.Big()
	e := s.E.Big()

	start := new(big.Int).Lsh(big.NewInt(1), pk.Params.Le-1)
	end := new(big.Int).Lsh(big.NewInt(1), pk.Params.LePrime-1)
	end.Add(end, start)
	if e.Cmp(start) < 0 || e.Cmp(end) > 0 {
		return false
	}
	if !e.ProbablyPrime(80) {
		return false
	}

	ae := new(big.Int).Exp(s.A.Big(), e, n)
	r := RepresentToPublicKey(pk, ms)
	sv, err := common.ModPow(pk.S.Big(), s.V.Big(), n)
	if err != nil {
		return false
	}
	q := new(big.Int).Mul(ae, r)
	q.Mul(q, sv).Mod(q, n)

	return pk.Z.Big().Cmp(q) == 0
}

// Randomize returns a randomized copy of the signature suitable for
// presentation: it reveals nothing beyond what the proof explicitly
// discloses, since A is rerandomized and V is adjusted to compensate.
func (s *Signature) Randomize(pk *clkeys.PublicKey) (*Signature, error) {
	n := pk.N.Big()
	r, err := common.RandomBigInt(pk.Params.LRA)
	if err != nil {
		return nil, anoncredserr.New(anoncredserr.Unexpected).WithCause(err)
	}
	aPrime := new(big.Int).Mul(s.A.Big(), new(big.Int).Exp(pk.S.Big(), r, n))
	aPrime.Mod(aPrime, n)
	t := new(big.Int).Mul(s.E.Big(), r)
	vPrime := new(big.Int).Sub(s.V.Big(), t)

	return &Signature{
		A: bigint.FromBig(aPrime),
		E: bigint.FromBig(new(big.Int).Set(s.E.Big())),
		V: bigint.FromBig(vPrime),
	}, nil
}
