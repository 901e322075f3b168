// Package credef implements the Credential Definition object and its
// creation operation (spec §4.2): the issuer's per-credential-type public
// signing identity, bound to a schema and (optionally) to a revocation
// accumulator key.
package credef

import (
	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/clkeys"
	"github.com/hyperledger/anoncreds-go/identifiers"
	"github.com/hyperledger/anoncreds-go/revocation"
	"github.com/hyperledger/anoncreds-go/schema"
)

// SignatureType is always "CL" per spec §3/§6.1.
const SignatureType = "CL"

// Value is the public half of a credential definition: the CL primary key,
// plus an optional revocation key when the definition supports revocation.
type Value struct {
	Primary    *clkeys.PublicKey           `json:"primary"`
	Revocation *revocation.RegistryPublicKey `json:"revocation,omitempty"`
}

// Definition is the published, immutable credential definition (spec §3).
type Definition struct {
	SchemaID      identifiers.SchemaID `json:"schemaId"`
	SignatureType string               `json:"type"`
	Tag           string               `json:"tag"`
	IssuerID      identifiers.DID      `json:"issuerId"`
	Value         Value                `json:"value"`
}

// PrivateValue is the issuer-only private key material paired with a
// Definition.
type PrivateValue struct {
	Primary    *clkeys.PrivateKey
	Revocation *revocation.RegistryPrivateKey
}

// Private never leaves issuer storage.
type Private struct {
	Value PrivateValue
}

// CreateOptions controls optional features of a new credential definition.
type CreateOptions struct {
	SupportRevocation bool
	KeyLengthBits     int
}

// Create validates the schema (schema.Validate bounds its attribute set to
// clkeys.MaxAttributes), sets signature_type to CL, generates the CL
// primary key over the schema's attributes (and, if requested, a
// revocation key pair), and produces the bundled
// key-correctness proof the issuer publishes in every offer (spec §4.2).
func Create(s *schema.Schema, issuerID identifiers.DID, tag string, opts CreateOptions) (*Definition, *Private, *clkeys.CorrectnessProof, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, nil, err
	}

	keyLen := opts.KeyLengthBits
	if keyLen == 0 {
		keyLen = clkeys.DefaultKeyLengthBits
	}
	params, ok := clkeys.DefaultSystemParameters[keyLen]
	if !ok {
		return nil, nil, nil, anoncredserr.Newf(anoncredserr.Input, "unsupported key length %d bits", keyLen)
	}

	sk, pk, err := clkeys.GenerateKeyPair(params, len(s.AttrNames))
	if err != nil {
		return nil, nil, nil, err
	}

	kcp, err := clkeys.CreateCorrectnessProof(sk, pk)
	if err != nil {
		return nil, nil, nil, err
	}

	value := Value{Primary: pk}
	privValue := PrivateValue{Primary: sk}

	if opts.SupportRevocation {
		revSk, revPk, err := revocation.GenerateRegistryKeyPair()
		if err != nil {
			return nil, nil, nil, err
		}
		value.Revocation = revPk
		privValue.Revocation = revSk
	}

	def := &Definition{
		SchemaID:      identifiers.SchemaID(schemaIdentifier(s)),
		SignatureType: SignatureType,
		Tag:           tag,
		IssuerID:      issuerID,
		Value:         value,
	}
	priv := &Private{Value: privValue}

	return def, priv, kcp, nil
}

func schemaIdentifier(s *schema.Schema) string {
	return string(s.IssuerID) + ":2:" + s.Name + ":" + s.Version
}

// Consistent reports whether priv's primary key can reproduce def's
// modulus, the InvalidState check the protocol layer runs before issuing a
// credential (spec §4.3's "private key / public key mismatch" error
// policy).
func (priv *Private) Consistent(def *Definition) bool {
	return priv.Value.Primary.Consistent(def.Value.Primary)
}
