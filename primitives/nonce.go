package primitives

import (
	"crypto/rand"
	"math/big"
	"regexp"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/bigint"
)

// nonceBits is the size of the protocol's nonce space, grounded on
// indy-data-types' Nonce which draws from ursa::cl::new_nonce (an 80-bit
// value, equal to the Lstatzk statistical zero-knowledge security
// parameter of the 1024-bit CL key system parameters; the 2048- and
// 4096-bit sets use 128).
const nonceBits = 80

// decimalOnly matches Testable Property 3: a valid nonce/big-number string
// is non-empty and consists only of decimal digits (no sign, no
// whitespace). Compiled once at package init per spec §9's sanctioned
// "precomputed, immutable matcher objects" pattern.
var decimalOnly = regexp.MustCompile(`^[0-9]+$`)

// Nonce is a positive decimal-integer challenge value exchanged between
// issuer, holder, and verifier to bind protocol transitions together.
type Nonce struct {
	val *bigint.Int
}

// NewNonce draws a uniformly random nonce from the protocol's nonce space.
func NewNonce() (Nonce, error) {
	max := new(big.Int).Lsh(big.NewInt(1), nonceBits)
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return Nonce{}, anoncredserr.New(anoncredserr.Unexpected).WithCause(err)
	}
	return Nonce{val: bigint.FromBig(v)}, nil
}

// FromDec parses a nonce from its decimal string form. It accepts iff s is
// non-empty and matches [0-9]+ (Testable Property 3).
func FromDec(s string) (Nonce, error) {
	if !decimalOnly.MatchString(s) {
		return Nonce{}, anoncredserr.Newf(anoncredserr.Input, "invalid nonce value %q", s)
	}
	v, ok := bigint.FromDec(s)
	if !ok {
		return Nonce{}, anoncredserr.Newf(anoncredserr.Input, "invalid nonce value %q", s)
	}
	return Nonce{val: v}, nil
}

// ToDec renders the nonce in its canonical decimal wire form.
func (n Nonce) ToDec() string {
	return n.val.String()
}

// Big returns the underlying integer value.
func (n Nonce) Big() *big.Int {
	return n.val.Big()
}

// Equal reports whether two nonces carry the same value.
func (n Nonce) Equal(other Nonce) bool {
	return n.val.Big().Cmp(other.val.Big()) == 0
}

func (n Nonce) MarshalJSON() ([]byte, error) {
	return n.val.MarshalJSON()
}

func (n *Nonce) UnmarshalJSON(data []byte) error {
	v := new(bigint.Int)
	if err := v.UnmarshalJSON(data); err != nil {
		return anoncredserr.Newf(anoncredserr.Input, "invalid nonce").WithCause(err)
	}
	n.val = v
	return nil
}
