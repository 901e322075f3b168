package credef

import (
	"testing"

	"github.com/hyperledger/anoncreds-go/identifiers"
	"github.com/hyperledger/anoncreds-go/schema"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	issuer := identifiers.DID(base58.Encode(make([]byte, 16)))
	s, err := schema.New(issuer, "gvt", "1.0", []string{"name", "age", "sex", "height"})
	require.NoError(t, err)
	return s
}

func TestCreateNonRevocable(t *testing.T) {
	s := testSchema(t)
	def, priv, kcp, err := Create(s, s.IssuerID, "tag1", CreateOptions{KeyLengthBits: 1024})
	require.NoError(t, err)
	assert.Equal(t, SignatureType, def.SignatureType)
	assert.Nil(t, def.Value.Revocation)
	assert.True(t, priv.Consistent(def))
	assert.True(t, kcp.Verify(def.Value.Primary))
}

func TestCreateRevocable(t *testing.T) {
	s := testSchema(t)
	def, priv, _, err := Create(s, s.IssuerID, "tag1", CreateOptions{KeyLengthBits: 1024, SupportRevocation: true})
	require.NoError(t, err)
	require.NotNil(t, def.Value.Revocation)
	require.NotNil(t, priv.Value.Revocation)
}

func TestCreateRejectsUnsupportedKeyLength(t *testing.T) {
	s := testSchema(t)
	_, _, _, err := Create(s, s.IssuerID, "tag1", CreateOptions{KeyLengthBits: 77})
	assert.Error(t, err)
}
