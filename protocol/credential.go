package protocol

import (
	"math/big"

	bls12381 "github.com/kilic/bls12-381"
	"go.uber.org/zap"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/bigint"
	"github.com/hyperledger/anoncreds-go/clsignature"
	"github.com/hyperledger/anoncreds-go/credef"
	"github.com/hyperledger/anoncreds-go/identifiers"
	"github.com/hyperledger/anoncreds-go/internal/obslog"
	"github.com/hyperledger/anoncreds-go/primitives"
	"github.com/hyperledger/anoncreds-go/revocation"
	"github.com/hyperledger/anoncreds-go/schema"
)

// AttributeValue holds both forms of a credential attribute value: the raw
// human-readable string and its deterministic integer encoding (spec §3).
type AttributeValue struct {
	Raw     string      `json:"raw"`
	Encoded *bigint.Int `json:"encoded"`
}

// Credential is the holder's issued credential record.
type Credential struct {
	SchemaID                  identifiers.SchemaID          `json:"schema_id"`
	CredDefID                 identifiers.CredDefID         `json:"cred_def_id"`
	RevRegID                  *identifiers.RevRegID         `json:"rev_reg_id,omitempty"`
	Values                    map[string]AttributeValue     `json:"values"`
	Signature                 *clsignature.Signature        `json:"signature"`
	SignatureCorrectnessProof *clsignature.CorrectnessProof `json:"signature_correctness_proof"`
	RevocationRegIndex        int                           `json:"-"`
	Witness                   *revocation.Witness           `json:"-"`
}

// RevocationOptions carries the inputs needed to issue a revocable
// credential: the private registry key and bookkeeping, the definition, the
// full tails set, and the 1-based index to claim.
type RevocationOptions struct {
	RegDefID identifiers.RevRegID
	RegDef   *revocation.RegistryDefinition
	RegPriv  *revocation.RegistryDefinitionPrivate
	Tails    []*bls12381.PointG2
	Index    int
}

// M2Tag folds schema/cred-def/revocation linkage into the trailing "m2"
// base the public key reserves for non-attribute context, so two
// credentials over the same attribute values but different cred-defs never
// collide in signature space.
func M2Tag(schemaID identifiers.SchemaID, credDefID identifiers.CredDefID, revRegID *identifiers.RevRegID) *big.Int {
	parts := string(schemaID) + "|" + string(credDefID)
	if revRegID != nil {
		parts += "|" + string(*revRegID)
	}
	return primitives.EncodeAttributeBig(parts).Big()
}

// MessageVector builds the CL message vector in schema attribute order:
// index 0 is reserved for the link secret (supplied via the blinded
// commitment, not this vector), one entry per declared attribute, and a
// trailing m2 tag binding schema/cred-def/revocation-registry linkage.
func MessageVector(s *schema.Schema, values map[string]AttributeValue, schemaID identifiers.SchemaID, credDefID identifiers.CredDefID, revRegID *identifiers.RevRegID) []*big.Int {
	ms := make([]*big.Int, 0, len(s.AttrNames)+2)
	ms = append(ms, big.NewInt(0))
	for _, name := range s.AttrNames {
		ms = append(ms, values[name].Encoded.Big())
	}
	ms = append(ms, M2Tag(schemaID, credDefID, revRegID))
	return ms
}

// Issue produces a signed Credential over values (which must cover every
// schema attribute name, encodings validated), binding the holder's
// blinded link secret from req. If rev is non-nil, the credential also
// claims a revocation index and is bound to that registry.
func Issue(
	s *schema.Schema,
	def *credef.Definition,
	priv *credef.Private,
	offer *Offer,
	req *Request,
	values map[string]string,
	rev *RevocationOptions,
) (*Credential, error) {
	if !priv.Consistent(def) {
		return nil, anoncredserr.New(anoncredserr.InvalidState, "credential definition private key does not match public key")
	}
	if def.SchemaID != offer.SchemaID || offer.CredDefID != req.CredDefID {
		return nil, anoncredserr.New(anoncredserr.Input, "offer/request/definition identifiers do not agree")
	}
	if !req.BlindedCredentialSecretsCorrectnessProof.Verify(def.Value.Primary, req.BlindedCredentialSecrets.U, offer.Nonce.Big()) {
		return nil, anoncredserr.New(anoncredserr.Input, "malformed blinded credential secrets correctness proof")
	}

	for name := range values {
		if s.IndexOf(name) == -1 {
			return nil, anoncredserr.Newf(anoncredserr.Input, "attribute %q is not declared by the schema", name)
		}
	}
	encoded := make(map[string]AttributeValue, len(s.AttrNames))
	for _, name := range s.AttrNames {
		raw, ok := values[name]
		if !ok {
			return nil, anoncredserr.Newf(anoncredserr.Input, "missing value for attribute %q", name)
		}
		encoded[name] = AttributeValue{Raw: raw, Encoded: primitives.EncodeAttributeBig(raw)}
	}

	var revRegID *identifiers.RevRegID
	var witness *revocation.Witness
	if rev != nil {
		if err := rev.RegPriv.MarkIssued(rev.Index, rev.RegDef.Value.MaxCredNum); err != nil {
			return nil, err
		}
		revRegID = &rev.RegDefID
		witness = revocation.WitnessFromAccumulator(rev.Tails, rev.RegPriv.Issued, rev.Index-1)
	}

	ms := MessageVector(s, encoded, def.SchemaID, req.CredDefID, revRegID)

	sig, err := clsignature.SignBlinded(priv.Value.Primary, def.Value.Primary, req.BlindedCredentialSecrets.U.Big(), ms)
	if err != nil {
		return nil, err
	}

	scp, err := clsignature.CreateCorrectnessProof(priv.Value.Primary, def.Value.Primary, sig, ms)
	if err != nil {
		return nil, err
	}

	cred := &Credential{
		SchemaID:                  def.SchemaID,
		CredDefID:                 req.CredDefID,
		RevRegID:                  revRegID,
		Values:                    encoded,
		Signature:                 sig,
		SignatureCorrectnessProof: scp,
		Witness:                   witness,
	}
	if rev != nil {
		cred.RevocationRegIndex = rev.Index
	}

	obslog.Logger.Info("credential issued",
		zap.String("schema_id", string(cred.SchemaID)),
		zap.String("cred_def_id", string(cred.CredDefID)),
		zap.Bool("revocable", rev != nil),
	)

	return cred, nil
}

// Process verifies the issued credential's signature correctness proof,
// unblinds its signature using meta's blinding factor, and checks that a
// registry definition is supplied for a revocable credential (only its
// presence is checked; its identity is not compared with cred.RevRegID). On
// success cred.Signature is replaced with the unblinded, storage-ready
// signature.
func Process(s *schema.Schema, cred *Credential, meta *Metadata, def *credef.Definition, revRegDef *revocation.RegistryDefinition) error {
	if cred.RevRegID != nil && revRegDef == nil {
		return anoncredserr.New(anoncredserr.Input, "credential is revocable but no revocation registry definition was supplied")
	}

	ms := MessageVector(s, cred.Values, cred.SchemaID, cred.CredDefID, cred.RevRegID)

	if !cred.SignatureCorrectnessProof.Verify(def.Value.Primary, cred.Signature, ms) {
		obslog.Logger.Warn("credential rejected: signature correctness proof failed",
			zap.String("schema_id", string(cred.SchemaID)),
			zap.String("cred_def_id", string(cred.CredDefID)),
		)
		return anoncredserr.New(anoncredserr.Input, "signature correctness proof failed to verify")
	}

	cred.Signature = unblindSignature(cred.Signature, meta.Blinding.VPrime.Big())
	obslog.Logger.Info("credential processed and stored",
		zap.String("schema_id", string(cred.SchemaID)),
		zap.String("cred_def_id", string(cred.CredDefID)),
	)
	return nil
}

// unblindSignature removes the holder's blinding factor vPrime from v,
// the standard CL unblinding step: v_unblinded = v_issued + vPrime.
func unblindSignature(sig *clsignature.Signature, vPrime *big.Int) *clsignature.Signature {
	v := new(big.Int).Add(sig.V.Big(), vPrime)
	return &clsignature.Signature{A: sig.A, E: sig.E, V: bigint.FromBig(v)}
}
