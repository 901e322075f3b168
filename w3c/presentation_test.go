package w3c

import (
	"testing"

	"github.com/hyperledger/anoncreds-go/credef"
	"github.com/hyperledger/anoncreds-go/identifiers"
	"github.com/hyperledger/anoncreds-go/present"
	"github.com/hyperledger/anoncreds-go/presentation"
	"github.com/hyperledger/anoncreds-go/primitives"
	"github.com/hyperledger/anoncreds-go/schema"
	"github.com/hyperledger/anoncreds-go/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresentationRoundTripStillVerifies(t *testing.T) {
	s, def, cred := issueTestCredential(t)

	nonce, err := primitives.NewNonce()
	require.NoError(t, err)

	req := &presentation.Request{
		Nonce: nonce,
		RequestedAttributes: map[string]presentation.AttributeInfo{
			"attr1_referent": {Name: "name"},
		},
	}

	schemas := map[identifiers.SchemaID]*schema.Schema{def.SchemaID: s}
	credDefs := map[identifiers.CredDefID]*credef.Definition{cred.CredDefID: def}

	pres, err := present.Build(present.Inputs{
		Request: req,
		Entries: []present.CredentialEntry{
			{Credential: cred, Referents: map[string]present.Role{"attr1_referent": present.RoleRevealed}},
		},
		Schemas:  schemas,
		CredDefs: credDefs,
	})
	require.NoError(t, err)

	vp := FromPresentation(pres)
	assert.Equal(t, CredentialContext, vp.Context[0])

	back := ToPresentation(vp)
	assert.Equal(t, pres.Proof.CHash.Big().String(), back.Proof.CHash.Big().String())

	ok, err := verify.Verify(verify.Inputs{
		Presentation:          back,
		Request:               req,
		Schemas:               schemas,
		CredDefs:              credDefs,
		FullyQualifiedAllowed: true,
	})
	require.NoError(t, err)
	assert.True(t, ok)
}
