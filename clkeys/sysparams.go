// Copyright 2016 Maarten Everts. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clkeys holds the CL (Camenisch-Lysyanskaya) primary key material:
// system parameters, issuer public/private keys sized to a schema's
// attribute count, and the key-correctness proof binding a public key to
// its claimed attribute set (spec §4.2).
package clkeys

import "sort"

type (
	// SystemParameters holds the bit-length parameters of the CL scheme.
	SystemParameters struct {
		BaseParameters
		DerivedParameters
	}

	// BaseParameters holds the base system parameters.
	BaseParameters struct {
		LePrime uint
		Lh      uint
		Lm      uint
		Ln      uint
		Lstatzk uint
	}

	// DerivedParameters holds parameters derived from BaseParameters.
	DerivedParameters struct {
		Le            uint
		LeCommit      uint
		LmCommit      uint
		LRA           uint
		LsCommit      uint
		Lv            uint
		LvCommit      uint
		LvPrime       uint
		LvPrimeCommit uint
	}
)

var (
	defaultBaseParameters = map[int]BaseParameters{
		1024: {LePrime: 120, Lh: 256, Lm: 256, Ln: 1024, Lstatzk: 80},
		2048: {LePrime: 120, Lh: 256, Lm: 256, Ln: 2048, Lstatzk: 128},
		4096: {LePrime: 120, Lh: 256, Lm: 512, Ln: 4096, Lstatzk: 128},
	}

	// DefaultSystemParameters holds the default parameters per key length
	// currently in use.
	DefaultSystemParameters = map[int]*SystemParameters{
		1024: {defaultBaseParameters[1024], MakeDerivedParameters(defaultBaseParameters[1024])},
		2048: {defaultBaseParameters[2048], MakeDerivedParameters(defaultBaseParameters[2048])},
		4096: {defaultBaseParameters[4096], MakeDerivedParameters(defaultBaseParameters[4096])},
	}

	// DefaultKeyLengths lists the key lengths DefaultSystemParameters covers.
	DefaultKeyLengths = availableKeyLengths(DefaultSystemParameters)
)

// DefaultKeyLengthBits is the key length used when an issuer does not pick
// one explicitly; it matches the modulus size ursa/CL deployments commonly
// default to for a schema-sized CL key.
const DefaultKeyLengthBits = 2048

// MaxAttributes bounds the number of attributes a schema (and therefore a
// CL key) may declare, per spec §3.
const MaxAttributes = 125

// MakeDerivedParameters computes the derived system parameters from base.
func MakeDerivedParameters(base BaseParameters) DerivedParameters {
	lv := base.Ln + 2*base.Lstatzk + base.Lh + base.Lm + 4
	return DerivedParameters{
		Le:            base.Lstatzk + base.Lh + base.Lm + 5,
		LeCommit:      base.LePrime + base.Lstatzk + base.Lh,
		LmCommit:      base.Lm + base.Lstatzk + base.Lh,
		LRA:           base.Ln + base.Lstatzk,
		LsCommit:      base.Lm + base.Lstatzk + base.Lh + 1,
		Lv:            lv,
		LvCommit:      lv + base.Lstatzk + base.Lh,
		LvPrime:       base.Ln + base.Lstatzk,
		LvPrimeCommit: base.Ln + 2*base.Lstatzk + base.Lh,
	}
}

func availableKeyLengths(m map[int]*SystemParameters) []int {
	lengths := make([]int, 0, len(m))
	for k := range m {
		lengths = append(lengths, k)
	}
	sort.Ints(lengths)
	return lengths
}
