package protocol

import (
	"math/big"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/credef"
	"github.com/hyperledger/anoncreds-go/identifiers"
	"github.com/hyperledger/anoncreds-go/primitives"
)

// Request is the holder's response to an Offer: a hiding commitment to its
// link secret, bound to exactly one of entropy or a prover DID, with a
// fresh nonce. The nonce is kept in the holder's Metadata; the issued
// credential's signature correctness proof does not include it in its
// challenge.
type Request struct {
	Entropy                       string                         `json:"entropy,omitempty"`
	ProverDID                     identifiers.DID                `json:"prover_did,omitempty"`
	CredDefID                     identifiers.CredDefID          `json:"cred_def_id"`
	BlindedCredentialSecrets      BlindedCredentialSecrets       `json:"blinded_credential_secrets"`
	BlindedCredentialSecretsCorrectnessProof BlindedSecretsCorrectnessProof `json:"blinded_credential_secrets_correctness_proof"`
	Nonce                         primitives.Nonce               `json:"nonce"`
}

// Metadata is the holder-retained state needed to unblind an issued
// signature: the blinding factor, the request nonce, and the link-secret
// name used (for holders managing more than one named link secret). It must
// be persisted by the holder between CreateRequest and Process, which may
// happen in different sessions, so every field is exported and JSON-tagged.
type Metadata struct {
	Blinding       blindingFactors  `json:"blinding"`
	Nonce          primitives.Nonce `json:"nonce"`
	LinkSecretName string           `json:"link_secret_name"`
}

// CreateRequest builds the holder's request against def/offer, given
// exactly one of entropy or proverDID. The offer's key-correctness proof is
// verified first so a malformed issuer key is rejected before the link
// secret is ever blinded against it.
func CreateRequest(
	def *credef.Definition,
	offer *Offer,
	linkSecret *big.Int,
	linkSecretName string,
	entropy string,
	proverDID identifiers.DID,
) (*Request, *Metadata, error) {
	if (entropy == "") == (proverDID == "") {
		return nil, nil, anoncredserr.New(anoncredserr.Input, "exactly one of entropy or prover DID must be supplied")
	}
	if def.SchemaID != offer.SchemaID {
		return nil, nil, anoncredserr.New(anoncredserr.Input, "offer schema id does not match credential definition")
	}
	if !offer.KeyCorrectnessProof.Verify(def.Value.Primary) {
		return nil, nil, anoncredserr.New(anoncredserr.Input, "malformed key correctness proof in offer")
	}

	secrets, factors, proof, err := blindCredentialSecrets(def.Value.Primary, linkSecret, offer.Nonce.Big())
	if err != nil {
		return nil, nil, err
	}

	requestNonce, err := primitives.NewNonce()
	if err != nil {
		return nil, nil, err
	}

	req := &Request{
		Entropy:                  entropy,
		ProverDID:                proverDID,
		CredDefID:                offer.CredDefID,
		BlindedCredentialSecrets: *secrets,
		BlindedCredentialSecretsCorrectnessProof: *proof,
		Nonce: requestNonce,
	}
	meta := &Metadata{Blinding: *factors, Nonce: requestNonce, LinkSecretName: linkSecretName}

	return req, meta, nil
}
