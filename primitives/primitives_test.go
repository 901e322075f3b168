package primitives

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeAttributeDeterminism(t *testing.T) {
	a := EncodeAttribute("Alex")
	b := EncodeAttribute("Alex")
	assert.Equal(t, a, b)
}

func TestEncodeAttributeIntegerRoundTrip(t *testing.T) {
	for _, raw := range []string{"0", "28", "-5", "2147483647", "-2147483648"} {
		assert.Equal(t, raw, EncodeAttribute(raw), "raw=%s", raw)
	}
}

func TestEncodeAttributeNonIntegerHashes(t *testing.T) {
	enc := EncodeAttribute("male")
	assert.NotEqual(t, "male", enc)
	assert.Regexp(t, `^[0-9]+$`, enc)
}

func TestAttrCommonView(t *testing.T) {
	assert.Equal(t, "foobar", AttrCommonView("  Foo Bar "))
	assert.Equal(t, AttrCommonView("foobar"), AttrCommonView("  Foo Bar "))
}

func TestNonceValidity(t *testing.T) {
	valid := []string{"0", "1000000000000000000000000000000000"}
	for _, v := range valid {
		_, err := FromDec(v)
		assert.NoError(t, err, v)
	}
	invalid := []string{"-1", "notanumber", "", "-", "+1", "1a"}
	for _, v := range invalid {
		_, err := FromDec(v)
		assert.Error(t, err, v)
	}
}

func TestNonceRoundTrip(t *testing.T) {
	n, err := NewNonce()
	require.NoError(t, err)
	m, err := FromDec(n.ToDec())
	require.NoError(t, err)
	assert.True(t, n.Equal(m))
}

func TestTreeHashDomainSeparation(t *testing.T) {
	leaves := [][]byte{[]byte("a"), []byte("b")}
	h1 := TreeHash(leaves)
	h2 := TreeHash([][]byte{[]byte("a"), []byte("b"), []byte("c")})
	assert.NotEqual(t, h1, h2)
	// leaf hashing must differ from a raw sha256 of the same bytes due to
	// the 0x00 domain prefix.
	raw := sha256.Sum256([]byte("a"))
	assert.NotEqual(t, raw[:], TreeHash([][]byte{[]byte("a")}))
	// and the hash is deterministic.
	assert.Equal(t, h1, TreeHash(leaves))
}
