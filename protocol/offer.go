// Package protocol implements the credential lifecycle state machine (spec
// §4.3): OFFERED → REQUESTED → ISSUED → STORED, with nonce binding at every
// hop and the holder's link-secret blinding.
package protocol

import (
	"github.com/hyperledger/anoncreds-go/clkeys"
	"github.com/hyperledger/anoncreds-go/identifiers"
	"github.com/hyperledger/anoncreds-go/primitives"
)

// Offer is the issuer's opening message: which schema/cred-def the
// credential will be issued under, its key-correctness proof, and a fresh
// nonce the holder must echo into its request's correctness-proof
// transcript.
type Offer struct {
	SchemaID            identifiers.SchemaID    `json:"schema_id"`
	CredDefID           identifiers.CredDefID   `json:"cred_def_id"`
	KeyCorrectnessProof *clkeys.CorrectnessProof `json:"key_correctness_proof"`
	Nonce               primitives.Nonce        `json:"nonce"`
}

// CreateOffer builds a fresh credential offer with a new nonce.
func CreateOffer(schemaID identifiers.SchemaID, credDefID identifiers.CredDefID, kcp *clkeys.CorrectnessProof) (*Offer, error) {
	nonce, err := primitives.NewNonce()
	if err != nil {
		return nil, err
	}
	return &Offer{SchemaID: schemaID, CredDefID: credDefID, KeyCorrectnessProof: kcp, Nonce: nonce}, nil
}
