// Package verify implements the presentation verifier: the 6-step
// algorithm that checks a holder-produced Presentation against the
// verifier's own presentation Request (spec §4.6).
package verify

import (
	"math/big"

	"go.uber.org/zap"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/credef"
	"github.com/hyperledger/anoncreds-go/identifiers"
	"github.com/hyperledger/anoncreds-go/internal/obslog"
	"github.com/hyperledger/anoncreds-go/presentation"
	"github.com/hyperledger/anoncreds-go/primitives"
	"github.com/hyperledger/anoncreds-go/query"
	"github.com/hyperledger/anoncreds-go/revocation"
	"github.com/hyperledger/anoncreds-go/schema"
)

// RegistrySnapshot pairs a revocation registry definition with the status
// list snapshot a verifier trusts for some (registry, timestamp) pair.
type RegistrySnapshot struct {
	RegDef    *revocation.RegistryDefinition
	StatusList *revocation.StatusList
}

// Inputs bundles everything Verify needs.
type Inputs struct {
	Presentation    *presentation.Presentation
	Request         *presentation.Request
	Schemas         map[identifiers.SchemaID]*schema.Schema
	CredDefs        map[identifiers.CredDefID]*credef.Definition
	RegDefs         map[identifiers.RevRegID]*revocation.RegistryDefinition
	// Snapshots is keyed by (rev-reg id, timestamp) pairs, selecting the
	// registry snapshot a referent's identifier timestamp resolves to (spec
	// §4.6 step 5: "selected from the provided status lists by (registry id,
	// timestamp)").
	Snapshots map[snapshotKey]*revocation.StatusList
	// NonRevokedOverrides supplies a per-registry replacement for the
	// request's non-revocation interval "from" bound (spec §4.6 step 3).
	NonRevokedOverrides map[identifiers.RevRegID]*int64
	// FullyQualifiedAllowed gates whether restrictions may use fully
	// qualified identifiers on the qualifiable tag set (spec §4.6's version
	// 1.0 vs 2.0 distinction).
	FullyQualifiedAllowed bool
}

type snapshotKey struct {
	regID     identifiers.RevRegID
	timestamp int64
}

// SnapshotKey builds the lookup key Inputs.Snapshots is keyed by.
func SnapshotKey(regID identifiers.RevRegID, timestamp int64) snapshotKey {
	return snapshotKey{regID: regID, timestamp: timestamp}
}

// Verify runs the presentation verification algorithm (spec §4.6 steps 1-6).
func Verify(in Inputs) (bool, error) {
	rp := in.Presentation.RequestedProof

	if err := presentation.ValidateReferents(in.Request, &rp); err != nil {
		return false, err
	}

	if len(in.Presentation.Identifiers) != len(in.Presentation.SubProofs) {
		return false, anoncredserr.New(anoncredserr.Input, "identifiers array does not match sub-proof count")
	}

	if err := verifyRevealedValues(in.Request, &rp); err != nil {
		return false, err
	}

	if err := verifyNonRevokedIntervals(in.Request, &rp, in.Presentation.Identifiers, in.NonRevokedOverrides); err != nil {
		return false, err
	}

	if err := verifyRestrictions(in, &rp); err != nil {
		return false, err
	}

	ok, err := verifyAggregatedProof(in)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, anoncredserr.New(anoncredserr.ProofRejected, "aggregated proof failed to verify")
	}

	if err := verifyNonRevocationProofs(in); err != nil {
		obslog.Logger.Warn("presentation rejected", zap.String("request_name", in.Request.Name), zap.Error(err))
		return false, err
	}

	obslog.Logger.Info("presentation verified", zap.String("request_name", in.Request.Name), zap.Int("sub_proof_count", len(in.Presentation.SubProofs)))
	return true, nil
}

// verifyRevealedValues re-derives the expected encoding from each revealed
// referent's raw value and compares it against the bound encoded value
// (spec §4.6 step 2).
func verifyRevealedValues(req *presentation.Request, rp *presentation.RequestedProof) error {
	for referent, ra := range rp.RevealedAttrs {
		expected := primitives.EncodeAttributeBig(ra.Raw)
		if expected.Big().Cmp(ra.Encoded.Big()) != 0 {
			return anoncredserr.Newf(anoncredserr.ProofRejected, "revealed attribute %q encoding does not match its raw value", referent)
		}
	}
	for referent, group := range rp.RevealedAttrGroups {
		for name, ra := range group.Values {
			expected := primitives.EncodeAttributeBig(ra.Raw)
			if expected.Big().Cmp(ra.Encoded.Big()) != 0 {
				return anoncredserr.Newf(anoncredserr.ProofRejected, "revealed attribute %q (group %q) encoding does not match its raw value", name, referent)
			}
		}
	}
	return nil
}

// verifyNonRevokedIntervals checks each referent's effective non-revocation
// interval against its sub-proof's identifier timestamp (spec §4.6 step 3).
func verifyNonRevokedIntervals(req *presentation.Request, rp *presentation.RequestedProof, ids []presentation.Identifier, overrides map[identifiers.RevRegID]*int64) error {
	check := func(referent string, idx int, requested *presentation.NonRevokedInterval) error {
		effective := requested
		if effective == nil {
			effective = req.NonRevoked
		}
		if effective == nil {
			return nil
		}
		id := ids[idx]
		if id.RevRegID != nil {
			if override, ok := overrides[*id.RevRegID]; ok {
				effective = effective.WithOverrideFrom(override)
			}
		}
		if id.Timestamp == nil {
			return anoncredserr.Newf(anoncredserr.ProofRejected, "referent %q requires a non-revocation timestamp but none was supplied", referent)
		}
		if !effective.Contains(*id.Timestamp) {
			return anoncredserr.Newf(anoncredserr.ProofRejected, "referent %q's timestamp falls outside the non-revocation interval", referent)
		}
		return nil
	}

	for referent, ra := range rp.RevealedAttrs {
		info := req.RequestedAttributes[referent]
		if err := check(referent, ra.SubProofIndex, info.NonRevoked); err != nil {
			return err
		}
	}
	for referent, group := range rp.RevealedAttrGroups {
		info := req.RequestedAttributes[referent]
		if err := check(referent, group.SubProofIndex, info.NonRevoked); err != nil {
			return err
		}
	}
	for referent, ref := range rp.UnrevealedAttrs {
		info := req.RequestedAttributes[referent]
		if err := check(referent, ref.SubProofIndex, info.NonRevoked); err != nil {
			return err
		}
	}
	for referent, ref := range rp.Predicates {
		info := req.RequestedPredicates[referent]
		if err := check(referent, ref.SubProofIndex, info.NonRevoked); err != nil {
			return err
		}
	}
	return nil
}

// verifyRestrictions evaluates each referent's restriction query against a
// Filter view of its sub-proof's identifier (spec §4.6 step 4).
func verifyRestrictions(in Inputs, rp *presentation.RequestedProof) error {
	buildFilter := func(idx int, revealedName, revealedRaw string) (*query.Filter, error) {
		id := in.Presentation.Identifiers[idx]
		s := in.Schemas[id.SchemaID]
		if s == nil {
			return nil, anoncredserr.Newf(anoncredserr.Input, "no schema supplied for %s", id.SchemaID)
		}
		def := in.CredDefs[id.CredDefID]
		if def == nil {
			return nil, anoncredserr.Newf(anoncredserr.Input, "no credential definition supplied for %s", id.CredDefID)
		}
		f := &query.Filter{
			SchemaID:        string(id.SchemaID),
			SchemaIssuerDID: string(s.IssuerID),
			SchemaName:      s.Name,
			SchemaVersion:   s.Version,
			IssuerDID:       string(def.IssuerID),
			CredDefID:       string(id.CredDefID),
			AttrMarkers:     map[string]bool{},
			AttrValues:      map[string]string{},
		}
		if id.RevRegID != nil {
			f.RevRegID = string(*id.RevRegID)
		}
		if revealedName != "" {
			f.AttrMarkers[primitives.AttrCommonView(revealedName)] = true
			f.AttrValues[primitives.AttrCommonView(revealedName)] = revealedRaw
		}
		return f, nil
	}

	checkRestrictions := func(referent string, restrictions *query.Query, f *query.Filter) error {
		if !in.FullyQualifiedAllowed && restrictions != nil && restrictionsUseQualifiedIDs(restrictions) {
			return anoncredserr.Newf(anoncredserr.ProofRejected, "referent %q restrictions use fully-qualified identifiers, not permitted by this request version", referent)
		}
		if !restrictions.Eval(f) {
			return anoncredserr.Newf(anoncredserr.ProofRejected, "referent %q does not satisfy its restrictions", referent)
		}
		return nil
	}

	for referent, ra := range rp.RevealedAttrs {
		info := in.Request.RequestedAttributes[referent]
		f, err := buildFilter(ra.SubProofIndex, info.Name, ra.Raw)
		if err != nil {
			return err
		}
		if err := checkRestrictions(referent, info.Restrictions, f); err != nil {
			return err
		}
	}
	for referent, group := range rp.RevealedAttrGroups {
		info := in.Request.RequestedAttributes[referent]
		f, err := buildFilter(group.SubProofIndex, "", "")
		if err != nil {
			return err
		}
		for name, ra := range group.Values {
			f.AttrMarkers[primitives.AttrCommonView(name)] = true
			f.AttrValues[primitives.AttrCommonView(name)] = ra.Raw
		}
		if err := checkRestrictions(referent, info.Restrictions, f); err != nil {
			return err
		}
	}
	for referent, ref := range rp.UnrevealedAttrs {
		info := in.Request.RequestedAttributes[referent]
		f, err := buildFilter(ref.SubProofIndex, "", "")
		if err != nil {
			return err
		}
		if err := checkRestrictions(referent, info.Restrictions, f); err != nil {
			return err
		}
	}
	for referent, ref := range rp.Predicates {
		info := in.Request.RequestedPredicates[referent]
		f, err := buildFilter(ref.SubProofIndex, "", "")
		if err != nil {
			return err
		}
		if err := checkRestrictions(referent, info.Restrictions, f); err != nil {
			return err
		}
	}
	return nil
}

// restrictionsUseQualifiedIDs reports whether q compares any qualifiable tag
// against a fully-qualified identifier literal.
func restrictionsUseQualifiedIDs(q *query.Query) bool {
	if q == nil {
		return false
	}
	switch q.TagName {
	case "issuer_did", "issuer_id", "cred_def_id", "schema_id", "schema_issuer_did", "schema_issuer_id", "rev_reg_id":
		if identifiers.IsFullyQualified(q.TagValue) {
			return true
		}
		for _, v := range q.TagValues {
			if identifiers.IsFullyQualified(v) {
				return true
			}
		}
	}
	for _, sub := range q.Sub {
		if restrictionsUseQualifiedIDs(sub) {
			return true
		}
	}
	if q.Inner != nil && restrictionsUseQualifiedIDs(q.Inner) {
		return true
	}
	return false
}

// verifyAggregatedProof reconstructs each sub-proof-request and recomputes
// the aggregated Fiat-Shamir challenge (spec §4.6 step 5).
func verifyAggregatedProof(in Inputs) (bool, error) {
	rp := in.Presentation.RequestedProof
	commitments := make([]*big.Int, len(in.Presentation.SubProofs))

	subProofRevealed := make([]map[int]*big.Int, len(in.Presentation.SubProofs))
	for i := range in.Presentation.SubProofs {
		subProofRevealed[i] = make(map[int]*big.Int)
	}

	indexOf := func(schemaID identifiers.SchemaID, attrName string) (int, error) {
		s := in.Schemas[schemaID]
		if s == nil {
			return 0, anoncredserr.Newf(anoncredserr.Input, "no schema supplied for %s", schemaID)
		}
		idx := s.IndexOf(attrName)
		if idx == -1 {
			return 0, anoncredserr.Newf(anoncredserr.Input, "schema %s does not declare attribute %q", schemaID, attrName)
		}
		return idx + 1, nil
	}

	for referent, ra := range rp.RevealedAttrs {
		info := in.Request.RequestedAttributes[referent]
		id := in.Presentation.Identifiers[ra.SubProofIndex]
		idx, err := indexOf(id.SchemaID, info.Name)
		if err != nil {
			return false, err
		}
		subProofRevealed[ra.SubProofIndex][idx] = ra.Encoded.Big()
	}
	for _, group := range rp.RevealedAttrGroups {
		id := in.Presentation.Identifiers[group.SubProofIndex]
		for name, ra := range group.Values {
			idx, err := indexOf(id.SchemaID, name)
			if err != nil {
				return false, err
			}
			subProofRevealed[group.SubProofIndex][idx] = ra.Encoded.Big()
		}
	}
	for referent, ref := range rp.Predicates {
		info := in.Request.RequestedPredicates[referent]
		id := in.Presentation.Identifiers[ref.SubProofIndex]
		idx, err := indexOf(id.SchemaID, info.Name)
		if err != nil {
			return false, err
		}
		sp := in.Presentation.SubProofs[ref.SubProofIndex]
		var pp *presentation.PredicateProof
		for i := range sp.Predicates {
			if sp.Predicates[i].PType == info.PType && sp.Predicates[i].PValue == info.PValue {
				pp = &sp.Predicates[i]
				break
			}
		}
		if pp == nil {
			return false, anoncredserr.Newf(anoncredserr.ProofRejected, "predicate referent %q has no matching predicate sub-proof", referent)
		}
		reconstructed, err := presentation.ReconstructValue(info.PType, info.PValue, pp.Delta)
		if err != nil {
			return false, anoncredserr.Newf(anoncredserr.ProofRejected, "predicate referent %q delta does not decode: %v", referent, err)
		}
		subProofRevealed[ref.SubProofIndex][idx] = reconstructed
	}

	for i, sp := range in.Presentation.SubProofs {
		id := in.Presentation.Identifiers[i]
		def := in.CredDefs[id.CredDefID]
		if def == nil {
			return false, anoncredserr.Newf(anoncredserr.Input, "no credential definition supplied for %s", id.CredDefID)
		}
		z := def.Value.Primary.Z.Big()
		t := presentation.VerifyEquality(def.Value.Primary, z, subProofRevealed[i], sp.Equality, in.Presentation.Proof.CHash.Big())
		if t == nil {
			return false, anoncredserr.New(anoncredserr.ProofRejected, "malformed sub-proof: revealed value set is not invertible mod N")
		}
		commitments[i] = t
	}

	c := presentation.HashCommitments(in.Request.Nonce.Big(), commitments)
	return c.Cmp(in.Presentation.Proof.CHash.Big()) == 0, nil
}

func verifyNonRevocationProofs(in Inputs) error {
	for i, sp := range in.Presentation.SubProofs {
		if sp.NonRevocation == nil {
			continue
		}
		id := in.Presentation.Identifiers[i]
		if id.RevRegID == nil {
			return anoncredserr.New(anoncredserr.Input, "sub-proof carries a non-revocation proof but no rev-reg-def id")
		}
		var ts int64
		if id.Timestamp != nil {
			ts = *id.Timestamp
		}
		snap := in.Snapshots[SnapshotKey(*id.RevRegID, ts)]
		if snap == nil {
			return anoncredserr.Newf(anoncredserr.Input, "no status list snapshot supplied for %s at timestamp %d", *id.RevRegID, ts)
		}
		if err := presentation.VerifyNonRevocation(snap.Accumulator, sp.NonRevocation); err != nil {
			return err
		}
		revoked, err := snap.IsRevoked(sp.NonRevocation.Index - 1)
		if err != nil {
			return err
		}
		if revoked {
			return anoncredserr.New(anoncredserr.CredentialRevoked, "credential index is marked revoked in the selected status list")
		}
	}
	return nil
}
