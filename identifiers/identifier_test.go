package identifiers

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDIDSplitUnqualified(t *testing.T) {
	d := DID("LibindyDid111111111111")
	method, value := d.Split()
	assert.Equal(t, "", method)
	assert.Equal(t, "LibindyDid111111111111", value)
	assert.False(t, d.IsQualified())
}

func TestDIDSplitQualified(t *testing.T) {
	d := DID("did:sov:LibindyDid111111111111")
	method, value := d.Split()
	assert.Equal(t, "sov", method)
	assert.Equal(t, "LibindyDid111111111111", value)
	assert.True(t, d.IsQualified())
}

func TestDIDQualifyIdempotent(t *testing.T) {
	d := DID("did:sov:LibindyDid111111111111")
	q, err := d.Qualify("sov")
	require.NoError(t, err)
	assert.Equal(t, d, q)
}

func TestDIDQualifyConflict(t *testing.T) {
	d := DID("did:sov:LibindyDid111111111111")
	_, err := d.Qualify("indy")
	assert.Error(t, err)
}

func TestDIDValidateLength(t *testing.T) {
	buf := make([]byte, 16)
	value := base58.Encode(buf)
	d := DID(value)
	assert.NoError(t, d.Validate())

	bad := DID(base58.Encode(make([]byte, 5)))
	assert.Error(t, bad.Validate())
}

func TestDIDValidateQualifiedSkipsLengthCheck(t *testing.T) {
	d := DID("did:web:example.com")
	assert.NoError(t, d.Validate())
}

func TestIsFullyQualified(t *testing.T) {
	assert.True(t, IsFullyQualified("did:sov:abc"))
	assert.False(t, IsFullyQualified("abc"))
}
