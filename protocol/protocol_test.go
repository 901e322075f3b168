package protocol

import (
	"testing"

	"github.com/hyperledger/anoncreds-go/clkeys"
	"github.com/hyperledger/anoncreds-go/credef"
	"github.com/hyperledger/anoncreds-go/identifiers"
	"github.com/hyperledger/anoncreds-go/internal/common"
	"github.com/hyperledger/anoncreds-go/schema"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSetup(t *testing.T) (*schema.Schema, *credef.Definition, *credef.Private, *clkeys.CorrectnessProof) {
	t.Helper()
	issuer := identifiers.DID(base58.Encode(make([]byte, 16)))
	s, err := schema.New(issuer, "gvt", "1.0", []string{"name", "age", "sex", "height"})
	require.NoError(t, err)
	def, priv, kcp, err := credef.Create(s, issuer, "tag1", credef.CreateOptions{KeyLengthBits: 1024})
	require.NoError(t, err)
	return s, def, priv, kcp
}

func TestHappyPathIssuanceAndProcessing(t *testing.T) {
	s, def, priv, kcp := testSetup(t)

	offer, err := CreateOffer(def.SchemaID, identifiers.CredDefID("cd1"), kcp)
	require.NoError(t, err)

	linkSecret, err := common.RandomBigInt(def.Value.Primary.Params.Lm)
	require.NoError(t, err)

	req, meta, err := CreateRequest(def, offer, linkSecret, "default", "some-entropy", "")
	require.NoError(t, err)

	values := map[string]string{"name": "Alex", "age": "28", "sex": "male", "height": "175"}
	cred, err := Issue(s, def, priv, offer, req, values, nil)
	require.NoError(t, err)

	err = Process(s, cred, meta, def, nil)
	require.NoError(t, err)
	assert.True(t, cred.Signature.Verify(def.Value.Primary, MessageVector(s, cred.Values, cred.SchemaID, cred.CredDefID, cred.RevRegID)))
}

func TestCreateRequestRejectsBothEntropyAndDID(t *testing.T) {
	_, def, _, kcp := testSetup(t)
	offer, err := CreateOffer(def.SchemaID, identifiers.CredDefID("cd1"), kcp)
	require.NoError(t, err)
	linkSecret, err := common.RandomBigInt(def.Value.Primary.Params.Lm)
	require.NoError(t, err)

	_, _, err = CreateRequest(def, offer, linkSecret, "default", "entropy", "did:sov:abc")
	assert.Error(t, err)
}

func TestIssueRejectsMissingAttribute(t *testing.T) {
	s, def, priv, kcp := testSetup(t)
	offer, err := CreateOffer(def.SchemaID, identifiers.CredDefID("cd1"), kcp)
	require.NoError(t, err)
	linkSecret, err := common.RandomBigInt(def.Value.Primary.Params.Lm)
	require.NoError(t, err)
	req, _, err := CreateRequest(def, offer, linkSecret, "default", "entropy", "")
	require.NoError(t, err)

	values := map[string]string{"name": "Alex"}
	_, err = Issue(s, def, priv, offer, req, values, nil)
	assert.Error(t, err)
}
