package present

import (
	"testing"

	"github.com/hyperledger/anoncreds-go/credef"
	"github.com/hyperledger/anoncreds-go/identifiers"
	"github.com/hyperledger/anoncreds-go/internal/common"
	"github.com/hyperledger/anoncreds-go/presentation"
	"github.com/hyperledger/anoncreds-go/primitives"
	"github.com/hyperledger/anoncreds-go/protocol"
	"github.com/hyperledger/anoncreds-go/query"
	"github.com/hyperledger/anoncreds-go/schema"
	"github.com/hyperledger/anoncreds-go/verify"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCredDefID = identifiers.CredDefID("cd1")

type testFixture struct {
	schema   *schema.Schema
	def      *credef.Definition
	cred     *protocol.Credential
	schemas  map[identifiers.SchemaID]*schema.Schema
	credDefs map[identifiers.CredDefID]*credef.Definition
}

func issueTestCredential(t *testing.T) testFixture {
	t.Helper()
	issuer := identifiers.DID(base58.Encode(make([]byte, 16)))
	s, err := schema.New(issuer, "gvt", "1.0", []string{"name", "age", "sex", "height"})
	require.NoError(t, err)

	def, priv, kcp, err := credef.Create(s, issuer, "tag1", credef.CreateOptions{KeyLengthBits: 1024})
	require.NoError(t, err)

	offer, err := protocol.CreateOffer(def.SchemaID, testCredDefID, kcp)
	require.NoError(t, err)
	linkSecret, err := common.RandomBigInt(def.Value.Primary.Params.Lm)
	require.NoError(t, err)
	req, meta, err := protocol.CreateRequest(def, offer, linkSecret, "default", "some-entropy", "")
	require.NoError(t, err)

	values := map[string]string{"name": "Alex", "age": "28", "sex": "male", "height": "175"}
	cred, err := protocol.Issue(s, def, priv, offer, req, values, nil)
	require.NoError(t, err)
	require.NoError(t, protocol.Process(s, cred, meta, def, nil))

	return testFixture{
		schema:   s,
		def:      def,
		cred:     cred,
		schemas:  map[identifiers.SchemaID]*schema.Schema{def.SchemaID: s},
		credDefs: map[identifiers.CredDefID]*credef.Definition{testCredDefID: def},
	}
}

func TestBuildAndVerifyRevealedAttributeAndPredicate(t *testing.T) {
	fx := issueTestCredential(t)

	nonce, err := primitives.NewNonce()
	require.NoError(t, err)

	req := &presentation.Request{
		Nonce:   nonce,
		Name:    "proof-req",
		Version: "1.0",
		RequestedAttributes: map[string]presentation.AttributeInfo{
			"attr1_referent": {Name: "name"},
		},
		RequestedPredicates: map[string]presentation.PredicateInfo{
			"pred1_referent": {Name: "age", PType: presentation.PredicateGE, PValue: 18},
		},
	}

	pres, err := Build(Inputs{
		Request: req,
		Entries: []CredentialEntry{
			{
				Credential: fx.cred,
				Referents: map[string]Role{
					"attr1_referent": RoleRevealed,
					"pred1_referent": RolePredicate,
				},
			},
		},
		Schemas:  fx.schemas,
		CredDefs: fx.credDefs,
	})
	require.NoError(t, err)
	require.NoError(t, presentation.ValidateReferents(req, &pres.RequestedProof))

	ok, err := verify.Verify(verify.Inputs{
		Presentation:          pres,
		Request:               req,
		Schemas:               fx.schemas,
		CredDefs:              fx.credDefs,
		FullyQualifiedAllowed: true,
	})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBuildRejectsPredicateThatDoesNotHold(t *testing.T) {
	fx := issueTestCredential(t)

	nonce, err := primitives.NewNonce()
	require.NoError(t, err)

	req := &presentation.Request{
		Nonce: nonce,
		RequestedPredicates: map[string]presentation.PredicateInfo{
			"pred1_referent": {Name: "age", PType: presentation.PredicateGE, PValue: 99},
		},
	}

	_, err = Build(Inputs{
		Request: req,
		Entries: []CredentialEntry{
			{Credential: fx.cred, Referents: map[string]Role{"pred1_referent": RolePredicate}},
		},
		Schemas:  fx.schemas,
		CredDefs: fx.credDefs,
	})
	assert.Error(t, err)
}

func TestRestrictionsRejectNonMatchingIssuer(t *testing.T) {
	fx := issueTestCredential(t)

	nonce, err := primitives.NewNonce()
	require.NoError(t, err)

	req := &presentation.Request{
		Nonce: nonce,
		RequestedAttributes: map[string]presentation.AttributeInfo{
			"attr1_referent": {
				Name:         "name",
				Restrictions: &query.Query{Op: query.OpEq, TagName: "issuer_did", TagValue: "did:sov:doesnotexist"},
			},
		},
	}

	pres, err := Build(Inputs{
		Request: req,
		Entries: []CredentialEntry{
			{Credential: fx.cred, Referents: map[string]Role{"attr1_referent": RoleRevealed}},
		},
		Schemas:  fx.schemas,
		CredDefs: fx.credDefs,
	})
	require.NoError(t, err)

	ok, err := verify.Verify(verify.Inputs{
		Presentation:          pres,
		Request:               req,
		Schemas:               fx.schemas,
		CredDefs:              fx.credDefs,
		FullyQualifiedAllowed: true,
	})
	assert.Error(t, err)
	assert.False(t, ok)
}
