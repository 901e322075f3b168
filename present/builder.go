// Package present implements the presentation builder: a holder assembles
// a Presentation over one or more stored credentials in answer to a
// verifier's presentation Request (spec §4.5).
package present

import (
	"math/big"

	bls12381 "github.com/kilic/bls12-381"
	"go.uber.org/zap"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/bigint"
	"github.com/hyperledger/anoncreds-go/credef"
	"github.com/hyperledger/anoncreds-go/identifiers"
	"github.com/hyperledger/anoncreds-go/internal/obslog"
	"github.com/hyperledger/anoncreds-go/presentation"
	"github.com/hyperledger/anoncreds-go/protocol"
	"github.com/hyperledger/anoncreds-go/query"
	"github.com/hyperledger/anoncreds-go/revocation"
	"github.com/hyperledger/anoncreds-go/schema"
)

// Role selects how a CredentialEntry answers one referent.
type Role int

const (
	RoleRevealed Role = iota
	RoleUnrevealed
	RolePredicate
)

// CredentialEntry is one credential a holder is drawing sub-proof material
// from, plus the caller's declaration of which referents it answers and how
// (spec §4.5: "for each credential the caller declares which referents it
// will answer for").
type CredentialEntry struct {
	Credential *protocol.Credential
	Timestamp  *int64
	RevState   *revocation.State
	RevRegDef  *revocation.RegistryDefinition
	Tails      []*bls12381.PointG2
	Referents  map[string]Role
}

// Inputs bundles everything Build needs: the presentation request, the
// holder's chosen credential entries, any self-attested answers, and the
// schema/cred-def lookup tables keyed by the identifiers the credentials
// themselves carry.
type Inputs struct {
	Request      *presentation.Request
	Entries      []CredentialEntry
	SelfAttested map[string]string
	Schemas      map[identifiers.SchemaID]*schema.Schema
	CredDefs     map[identifiers.CredDefID]*credef.Definition
}

// Build runs the presentation build algorithm (spec §4.5 steps 1-4).
func Build(in Inputs) (*presentation.Presentation, error) {
	if err := validateSelfAttested(in.Request, in.SelfAttested); err != nil {
		return nil, err
	}

	type prepared struct {
		entry      CredentialEntry
		s          *schema.Schema
		def        *credef.Definition
		witness    *presentation.EqualityWitness
		predicates []presentation.PredicateProof
		predRefs   []string
		revealRefs []string
		unrevRefs  []string
	}

	preps := make([]*prepared, 0, len(in.Entries))
	for _, entry := range in.Entries {
		s := in.Schemas[entry.Credential.SchemaID]
		if s == nil {
			return nil, anoncredserr.Newf(anoncredserr.Input, "no schema supplied for %s", entry.Credential.SchemaID)
		}
		def := in.CredDefs[entry.Credential.CredDefID]
		if def == nil {
			return nil, anoncredserr.Newf(anoncredserr.Input, "no credential definition supplied for %s", entry.Credential.CredDefID)
		}

		ms := protocol.MessageVector(s, entry.Credential.Values, entry.Credential.SchemaID, entry.Credential.CredDefID, entry.Credential.RevRegID)
		revealed := make(map[int]*big.Int)
		var predicates []presentation.PredicateProof
		var predRefs, revealRefs, unrevRefs []string

		for referent, role := range entry.Referents {
			switch role {
			case RoleRevealed:
				info, ok := in.Request.RequestedAttributes[referent]
				if !ok {
					return nil, anoncredserr.Newf(anoncredserr.Input, "referent %q is not a requested attribute", referent)
				}
				for _, name := range info.AttributeNames() {
					idx := s.IndexOf(name)
					if idx == -1 {
						return nil, anoncredserr.Newf(anoncredserr.Input, "credential for referent %q lacks attribute %q", referent, name)
					}
					val, ok := entry.Credential.Values[name]
					if !ok {
						return nil, anoncredserr.Newf(anoncredserr.Input, "credential for referent %q lacks attribute %q", referent, name)
					}
					revealed[idx+1] = val.Encoded.Big()
				}
				revealRefs = append(revealRefs, referent)
			case RoleUnrevealed:
				unrevRefs = append(unrevRefs, referent)
			case RolePredicate:
				info, ok := in.Request.RequestedPredicates[referent]
				if !ok {
					return nil, anoncredserr.Newf(anoncredserr.Input, "referent %q is not a requested predicate", referent)
				}
				idx := s.IndexOf(info.Name)
				if idx == -1 {
					return nil, anoncredserr.Newf(anoncredserr.Input, "credential for predicate referent %q lacks attribute %q", referent, info.Name)
				}
				val, ok := entry.Credential.Values[info.Name]
				if !ok {
					return nil, anoncredserr.Newf(anoncredserr.Input, "credential for predicate referent %q lacks attribute %q", referent, info.Name)
				}
				// the predicate attribute's encoded value is folded into the
				// equality proof as revealed so the math checks out, but it
				// is never placed in requested_proof.revealed_attrs.
				revealed[idx+1] = val.Encoded.Big()

				delta, err := presentation.Delta(info.PType, val.Encoded.Big(), info.PValue)
				if err != nil {
					return nil, err
				}
				squares, err := presentation.FourSquaresOf(delta)
				if err != nil {
					return nil, anoncredserr.Newf(anoncredserr.Input, "predicate %q does not hold for credential attribute %q", referent, info.Name).WithCause(err)
				}
				predicates = append(predicates, presentation.PredicateProof{PType: info.PType, PValue: info.PValue, Delta: squares})
				predRefs = append(predRefs, referent)
			}
		}

		witness, err := presentation.PrepareEquality(def.Value.Primary, entry.Credential.Signature, ms, revealed)
		if err != nil {
			return nil, err
		}

		preps = append(preps, &prepared{
			entry: entry, s: s, def: def, witness: witness,
			predicates: predicates, predRefs: predRefs, revealRefs: revealRefs, unrevRefs: unrevRefs,
		})
	}

	commitments := make([]*big.Int, len(preps))
	for i, p := range preps {
		commitments[i] = p.witness.Commitment
	}
	c := presentation.HashCommitments(in.Request.Nonce.Big(), commitments)

	subProofs := make([]presentation.SubProof, len(preps))
	identifiersList := make([]presentation.Identifier, len(preps))
	rp := presentation.RequestedProof{
		RevealedAttrs:      map[string]presentation.RevealedAttr{},
		RevealedAttrGroups: map[string]presentation.RevealedAttrGroup{},
		UnrevealedAttrs:    map[string]presentation.PredicateRef{},
		SelfAttestedAttrs:  map[string]presentation.SelfAttested{},
		Predicates:         map[string]presentation.PredicateRef{},
	}
	for raw, val := range in.SelfAttested {
		rp.SelfAttestedAttrs[raw] = presentation.SelfAttested{Raw: val}
	}

	for i, p := range preps {
		eq := p.witness.FinishEquality(c)

		var nonRevoc *presentation.NonRevocationProof
		if p.entry.RevState != nil {
			idx := p.entry.Credential.RevocationRegIndex
			if idx < 1 || idx > len(p.entry.Tails) {
				return nil, anoncredserr.New(anoncredserr.InvalidUserRevocId, "revocation index out of range for tails set")
			}
			tailBytes := revocation.TailBytes(p.entry.Tails[idx-1])
			nonRevoc = presentation.BuildNonRevocationProof(idx, p.entry.RevState, tailBytes)
		}

		subProofs[i] = presentation.SubProof{Equality: eq, Predicates: p.predicates, NonRevocation: nonRevoc}
		identifiersList[i] = presentation.Identifier{
			SchemaID:  p.entry.Credential.SchemaID,
			CredDefID: p.entry.Credential.CredDefID,
			RevRegID:  p.entry.Credential.RevRegID,
			Timestamp: p.entry.Timestamp,
		}

		for _, referent := range p.revealRefs {
			info := in.Request.RequestedAttributes[referent]
			names := info.AttributeNames()
			if len(names) == 1 {
				val := p.entry.Credential.Values[names[0]]
				rp.RevealedAttrs[referent] = presentation.RevealedAttr{SubProofIndex: i, Raw: val.Raw, Encoded: bigint.FromBig(val.Encoded.Big())}
				continue
			}
			values := make(map[string]presentation.RevealedAttr, len(names))
			for _, name := range names {
				val := p.entry.Credential.Values[name]
				values[name] = presentation.RevealedAttr{SubProofIndex: i, Raw: val.Raw, Encoded: bigint.FromBig(val.Encoded.Big())}
			}
			rp.RevealedAttrGroups[referent] = presentation.RevealedAttrGroup{SubProofIndex: i, Values: values}
		}
		for _, referent := range p.unrevRefs {
			rp.UnrevealedAttrs[referent] = presentation.PredicateRef{SubProofIndex: i}
		}
		for _, referent := range p.predRefs {
			rp.Predicates[referent] = presentation.PredicateRef{SubProofIndex: i}
		}
	}

	if err := presentation.ValidateReferents(in.Request, &rp); err != nil {
		return nil, err
	}

	obslog.Logger.Info("presentation built",
		zap.String("request_name", in.Request.Name),
		zap.Int("credential_count", len(preps)),
	)

	return &presentation.Presentation{
		Proof:          presentation.AggregatedProof{CHash: bigint.FromBig(c), Commitments: toBigintSlice(commitments)},
		SubProofs:      subProofs,
		RequestedProof: rp,
		Identifiers:    identifiersList,
	}, nil
}

func toBigintSlice(xs []*big.Int) []*bigint.Int {
	out := make([]*bigint.Int, len(xs))
	for i, x := range xs {
		out[i] = bigint.FromBig(x)
	}
	return out
}

// validateSelfAttested enforces spec §4.5's errors clause: a self-attested
// referent's request restrictions must be an empty $and/$or or absent.
func validateSelfAttested(req *presentation.Request, selfAttested map[string]string) error {
	for referent := range selfAttested {
		info, ok := req.RequestedAttributes[referent]
		if !ok {
			return anoncredserr.Newf(anoncredserr.Input, "self-attested referent %q is not requested", referent)
		}
		if !isEmptyRestriction(info.Restrictions) {
			return anoncredserr.Newf(anoncredserr.Input, "self-attested referent %q carries non-empty restrictions", referent)
		}
	}
	return nil
}

func isEmptyRestriction(q *query.Query) bool {
	return q.IsEmptyAndOr()
}
