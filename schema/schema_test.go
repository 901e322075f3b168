package schema

import (
	"strings"
	"testing"

	"github.com/hyperledger/anoncreds-go/identifiers"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIssuer() identifiers.DID {
	return identifiers.DID(base58.Encode(make([]byte, 16)))
}

func TestNewValid(t *testing.T) {
	s, err := New(testIssuer(), "degree", "1.0", []string{"name", "age"})
	require.NoError(t, err)
	assert.Equal(t, 0, s.IndexOf("Name"))
	assert.Equal(t, 1, s.IndexOf("  AGE "))
	assert.Equal(t, -1, s.IndexOf("missing"))
}

func TestNewRejectsDuplicateAttributes(t *testing.T) {
	_, err := New(testIssuer(), "degree", "1.0", []string{"name", " Name"})
	assert.Error(t, err)
}

func TestNewRejectsTooManyAttributes(t *testing.T) {
	names := make([]string, 126)
	for i := range names {
		names[i] = "attr" + string(rune('a'+i%26))
	}
	_, err := New(testIssuer(), "degree", "1.0", names)
	assert.Error(t, err)
}

func TestNewRejectsEmptyName(t *testing.T) {
	_, err := New(testIssuer(), "", "1.0", []string{"name"})
	assert.Error(t, err)
}

func TestNewRejectsInvalidIssuer(t *testing.T) {
	_, err := New(identifiers.DID("not-valid-base58-!!!"), "degree", "1.0", []string{"name"})
	assert.Error(t, err)
}

func TestNewRejectsBlankAttrName(t *testing.T) {
	_, err := New(testIssuer(), "degree", "1.0", []string{"  "})
	assert.Error(t, err)
}

func TestNewRejectsEmptyAttrList(t *testing.T) {
	_, err := New(testIssuer(), "degree", "1.0", nil)
	assert.Error(t, err)
}

func TestValidateAcceptsQualifiedIssuer(t *testing.T) {
	s, err := New(identifiers.DID("did:sov:"+strings.TrimSpace(base58.Encode(make([]byte, 16)))), "degree", "1.0", []string{"name"})
	require.NoError(t, err)
	assert.NoError(t, s.Validate())
}
