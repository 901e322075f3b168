// Package w3c implements a lossless conversion between the native
// Credential shape (package protocol) and a W3C-Verifiable-Credential-
// shaped envelope whose proof carries the CL signature and an
// attribute-to-referent mapping (spec §4.7). Conversion is a pure
// reshaping of already-defined types: no new cryptography is introduced
// here, so it follows the rest of this codebase's plain encoding/json
// JSON-tag convention (as credef.Definition, schema.Schema, and
// protocol.Credential already do) rather than a JSON-LD processor.
package w3c

import (
	"encoding/base64"
	"encoding/json"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/clsignature"
	"github.com/hyperledger/anoncreds-go/identifiers"
	"github.com/hyperledger/anoncreds-go/primitives"
	"github.com/hyperledger/anoncreds-go/protocol"
	"github.com/hyperledger/anoncreds-go/revocation"
	"github.com/hyperledger/anoncreds-go/schema"
)

// CredentialContext is the fixed first @context entry every envelope
// produced by this package carries.
const CredentialContext = "https://www.w3.org/2018/credentials/v1"

// ProofType names the CL-signature proof suite this envelope's "proof"
// member holds.
const ProofType = "AnonCredsPresentationProofv2"

// VerifiableCredential is the W3C-VC-shaped envelope a native Credential
// converts to and from.
type VerifiableCredential struct {
	Context           []string               `json:"@context"`
	Type              []string               `json:"type"`
	Issuer            string                 `json:"issuer"`
	CredentialSubject map[string]interface{} `json:"credentialSubject"`
	Proof             CredentialProof        `json:"proof"`
}

// CredentialProof carries everything a native Credential needs besides its
// attribute values: the CL signature and correctness proof (each
// base64-JSON-encoded, preserving the existing wire encoding those types
// already use), the schema/cred-def/rev-reg linkage, the holder's
// revocation witness and index if the credential is revocable, and the
// attribute-name-to-credentialSubject-property mapping (identity here,
// since credentialSubject properties are the schema attribute names
// verbatim, but kept explicit so lossless round-tripping does not depend
// on that always being true).
type CredentialProof struct {
	Type                      string            `json:"type"`
	SchemaID                  identifiers.SchemaID  `json:"schemaId"`
	CredDefID                 identifiers.CredDefID `json:"credDefId"`
	RevRegID                  *identifiers.RevRegID `json:"revRegId,omitempty"`
	RevocationRegIndex        int               `json:"revocationRegIndex,omitempty"`
	Signature                 string            `json:"signatureValue"`
	SignatureCorrectnessProof string            `json:"signatureCorrectnessProofValue"`
	Witness                   string            `json:"witnessValue,omitempty"`
	Mapping                   map[string]string `json:"mapping"`
}

// FromCredential converts a native Credential into its W3C envelope,
// taking the attribute names for the identity mapping from cred.Values and
// issuerID as the envelope's issuer.
func FromCredential(cred *protocol.Credential, issuerID identifiers.DID) (*VerifiableCredential, error) {
	sigBytes, err := json.Marshal(cred.Signature)
	if err != nil {
		return nil, anoncredserr.New(anoncredserr.Unexpected, "encoding signature").WithCause(err)
	}
	scpBytes, err := json.Marshal(cred.SignatureCorrectnessProof)
	if err != nil {
		return nil, anoncredserr.New(anoncredserr.Unexpected, "encoding signature correctness proof").WithCause(err)
	}

	subject := make(map[string]interface{}, len(cred.Values))
	mapping := make(map[string]string, len(cred.Values))
	for name, v := range cred.Values {
		subject[name] = v.Raw
		mapping[name] = name
	}

	proof := CredentialProof{
		Type:                      ProofType,
		SchemaID:                  cred.SchemaID,
		CredDefID:                 cred.CredDefID,
		RevRegID:                  cred.RevRegID,
		RevocationRegIndex:        cred.RevocationRegIndex,
		Signature:                 base64.StdEncoding.EncodeToString(sigBytes),
		SignatureCorrectnessProof: base64.StdEncoding.EncodeToString(scpBytes),
		Mapping:                   mapping,
	}
	if cred.Witness != nil {
		proof.Witness = base64.StdEncoding.EncodeToString(cred.Witness.Bytes())
	}

	return &VerifiableCredential{
		Context:           []string{CredentialContext},
		Type:              []string{"VerifiableCredential", "AnonCredsCredential"},
		Issuer:            string(issuerID),
		CredentialSubject: subject,
		Proof:             proof,
	}, nil
}

// ToCredential converts a W3C envelope back into a native Credential,
// re-encoding each attribute's raw value (encoded forms are recomputable
// and need not be transmitted, spec §4.7). s must be the schema the
// credential was issued against.
func ToCredential(vc *VerifiableCredential, s *schema.Schema) (*protocol.Credential, error) {
	var sig clsignature.Signature
	sigBytes, err := base64.StdEncoding.DecodeString(vc.Proof.Signature)
	if err != nil {
		return nil, anoncredserr.New(anoncredserr.Input, "malformed signature encoding").WithCause(err)
	}
	if err := json.Unmarshal(sigBytes, &sig); err != nil {
		return nil, anoncredserr.New(anoncredserr.Input, "malformed signature").WithCause(err)
	}

	var scp clsignature.CorrectnessProof
	scpBytes, err := base64.StdEncoding.DecodeString(vc.Proof.SignatureCorrectnessProof)
	if err != nil {
		return nil, anoncredserr.New(anoncredserr.Input, "malformed signature correctness proof encoding").WithCause(err)
	}
	if err := json.Unmarshal(scpBytes, &scp); err != nil {
		return nil, anoncredserr.New(anoncredserr.Input, "malformed signature correctness proof").WithCause(err)
	}

	values := make(map[string]protocol.AttributeValue, len(s.AttrNames))
	for _, name := range s.AttrNames {
		prop, ok := vc.Proof.Mapping[name]
		if !ok {
			return nil, anoncredserr.Newf(anoncredserr.Input, "no credentialSubject mapping for attribute %q", name)
		}
		raw, ok := vc.CredentialSubject[prop].(string)
		if !ok {
			return nil, anoncredserr.Newf(anoncredserr.Input, "credentialSubject property %q missing or not a string", prop)
		}
		values[name] = protocol.AttributeValue{Raw: raw, Encoded: primitives.EncodeAttributeBig(raw)}
	}

	cred := &protocol.Credential{
		SchemaID:                  vc.Proof.SchemaID,
		CredDefID:                 vc.Proof.CredDefID,
		RevRegID:                  vc.Proof.RevRegID,
		Values:                    values,
		Signature:                 &sig,
		SignatureCorrectnessProof: &scp,
		RevocationRegIndex:        vc.Proof.RevocationRegIndex,
	}
	if vc.Proof.Witness != "" {
		wBytes, err := base64.StdEncoding.DecodeString(vc.Proof.Witness)
		if err != nil {
			return nil, anoncredserr.New(anoncredserr.Input, "malformed witness encoding").WithCause(err)
		}
		w, err := revocation.WitnessFromBytes(wBytes)
		if err != nil {
			return nil, err
		}
		cred.Witness = w
	}
	return cred, nil
}
