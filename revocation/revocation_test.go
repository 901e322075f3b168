package revocation

import (
	"os"
	"testing"

	"github.com/hyperledger/anoncreds-go/identifiers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryConfigValidate(t *testing.T) {
	assert.Error(t, RegistryConfig{MaxCredNum: 0}.Validate())
	assert.NoError(t, RegistryConfig{MaxCredNum: 1}.Validate())
}

func TestCreateRegistryDefinitionAndTailsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writer := &TailsFileWriter{RootPath: dir}

	def, priv, tails, err := CreateRegistryDefinition(
		identifiers.CredDefID("cd1"), identifiers.DID("issuer1"), "tag1",
		RegistryConfig{MaxCredNum: 4, Issuance: IssuanceByDefault}, writer)
	require.NoError(t, err)
	assert.Len(t, tails, 4)
	assert.Len(t, priv.Issued, 4)

	reader := &TailsFileReader{Path: def.Value.TailsLocation}
	defer reader.Close()
	require.NoError(t, reader.VerifyHash(def.Value.TailsHash))

	read, err := reader.ReadAll(4)
	require.NoError(t, err)
	for i := range tails {
		assert.True(t, g2().Equal(tails[i], read[i]))
	}
	_, err = os.Stat(def.Value.TailsLocation)
	assert.NoError(t, err)
}

func TestStatusListUpdateTogglesBits(t *testing.T) {
	dir := t.TempDir()
	writer := &TailsFileWriter{RootPath: dir}
	def, _, tails, err := CreateRegistryDefinition(
		identifiers.CredDefID("cd1"), identifiers.DID("issuer1"), "tag1",
		RegistryConfig{MaxCredNum: 4, Issuance: IssuanceByDefault}, writer)
	require.NoError(t, err)

	list := NewStatusList("reg1", "issuer1", def, tails, true, 100)
	assert.False(t, list.Bitmap[1])

	ts := int64(101)
	updated, err := list.Update(tails, nil, []int{1}, &ts)
	require.NoError(t, err)
	assert.True(t, updated.Bitmap[1])
	assert.Equal(t, int64(101), updated.Timestamp)

	revoked, err := updated.IsRevoked(1)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestStatusListUpdateRejectsOverlap(t *testing.T) {
	dir := t.TempDir()
	writer := &TailsFileWriter{RootPath: dir}
	def, _, tails, err := CreateRegistryDefinition(
		identifiers.CredDefID("cd1"), identifiers.DID("issuer1"), "tag1",
		RegistryConfig{MaxCredNum: 4, Issuance: IssuanceByDefault}, writer)
	require.NoError(t, err)
	list := NewStatusList("reg1", "issuer1", def, tails, true, 100)

	_, err = list.Update(tails, []int{2}, []int{2}, nil)
	assert.Error(t, err)
}

func TestStatusListDeltaIsSymmetricDifference(t *testing.T) {
	dir := t.TempDir()
	writer := &TailsFileWriter{RootPath: dir}
	def, _, tails, err := CreateRegistryDefinition(
		identifiers.CredDefID("cd1"), identifiers.DID("issuer1"), "tag1",
		RegistryConfig{MaxCredNum: 4, Issuance: IssuanceByDefault}, writer)
	require.NoError(t, err)
	list := NewStatusList("reg1", "issuer1", def, tails, true, 100)

	ts := int64(101)
	updated, err := list.Update(tails, nil, []int{1}, &ts)
	require.NoError(t, err)

	issued, revoked := list.Delta(updated)
	assert.Empty(t, issued)
	assert.Equal(t, []int{1}, revoked)
}

func TestWitnessDeltaRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writer := &TailsFileWriter{RootPath: dir}
	def, _, tails, err := CreateRegistryDefinition(
		identifiers.CredDefID("cd1"), identifiers.DID("issuer1"), "tag1",
		RegistryConfig{MaxCredNum: 5, Issuance: IssuanceByDefault}, writer)
	require.NoError(t, err)
	list := NewStatusList("reg1", "issuer1", def, tails, true, 100)

	ts1 := int64(101)
	revokedList, err := list.Update(tails, nil, []int{2}, &ts1)
	require.NoError(t, err)

	state0 := CreateOrUpdateState(tails, nil, list, 0)
	state1 := CreateOrUpdateState(tails, list, revokedList, 0)

	ts2 := int64(102)
	backToOriginal, err := revokedList.Update(tails, []int{2}, nil, &ts2)
	require.NoError(t, err)
	state2 := CreateOrUpdateState(tails, revokedList, backToOriginal, 0)

	assert.True(t, g2().Equal(state0.Witness.Value, state2.Witness.Value))
	_ = state1
}
