package w3c

import (
	"testing"

	"github.com/hyperledger/anoncreds-go/credef"
	"github.com/hyperledger/anoncreds-go/identifiers"
	"github.com/hyperledger/anoncreds-go/internal/common"
	"github.com/hyperledger/anoncreds-go/protocol"
	"github.com/hyperledger/anoncreds-go/schema"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueTestCredential(t *testing.T) (*schema.Schema, *credef.Definition, *protocol.Credential) {
	t.Helper()
	issuer := identifiers.DID(base58.Encode(make([]byte, 16)))
	s, err := schema.New(issuer, "gvt", "1.0", []string{"name", "age", "sex", "height"})
	require.NoError(t, err)

	def, priv, kcp, err := credef.Create(s, issuer, "tag1", credef.CreateOptions{KeyLengthBits: 1024})
	require.NoError(t, err)

	offer, err := protocol.CreateOffer(def.SchemaID, identifiers.CredDefID("cd1"), kcp)
	require.NoError(t, err)
	linkSecret, err := common.RandomBigInt(def.Value.Primary.Params.Lm)
	require.NoError(t, err)
	req, meta, err := protocol.CreateRequest(def, offer, linkSecret, "default", "some-entropy", "")
	require.NoError(t, err)

	values := map[string]string{"name": "Alex", "age": "28", "sex": "male", "height": "175"}
	cred, err := protocol.Issue(s, def, priv, offer, req, values, nil)
	require.NoError(t, err)
	require.NoError(t, protocol.Process(s, cred, meta, def, nil))
	return s, def, cred
}

func TestCredentialRoundTrip(t *testing.T) {
	s, def, cred := issueTestCredential(t)

	vc, err := FromCredential(cred, def.IssuerID)
	require.NoError(t, err)
	assert.Equal(t, CredentialContext, vc.Context[0])
	assert.Equal(t, "Alex", vc.CredentialSubject["name"])

	back, err := ToCredential(vc, s)
	require.NoError(t, err)

	assert.Equal(t, cred.SchemaID, back.SchemaID)
	assert.Equal(t, cred.CredDefID, back.CredDefID)
	for name, val := range cred.Values {
		assert.Equal(t, val.Raw, back.Values[name].Raw)
		assert.Equal(t, val.Encoded.Big().String(), back.Values[name].Encoded.Big().String())
	}
	assert.True(t, back.Signature.Verify(def.Value.Primary, protocol.MessageVector(s, back.Values, back.SchemaID, back.CredDefID, back.RevRegID)))
}

func TestCredentialRoundTripRejectsMissingMapping(t *testing.T) {
	s, def, cred := issueTestCredential(t)

	vc, err := FromCredential(cred, def.IssuerID)
	require.NoError(t, err)
	delete(vc.Proof.Mapping, "name")

	_, err = ToCredential(vc, s)
	assert.Error(t, err)
}
