package presentation

import (
	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/bigint"
	"github.com/hyperledger/anoncreds-go/identifiers"
	"github.com/hyperledger/anoncreds-go/primitives"
	"github.com/hyperledger/anoncreds-go/query"
)

// PredicateType enumerates the comparison a PredicateInfo asserts against
// its p_value.
type PredicateType string

const (
	PredicateGE PredicateType = ">="
	PredicateGT PredicateType = ">"
	PredicateLE PredicateType = "<="
	PredicateLT PredicateType = "<"
)

// NonRevokedInterval bounds the accepted timestamp range for a credential's
// non-revocation proof (spec §4.6 step 3: "from"/"to", either may be unset).
type NonRevokedInterval struct {
	From *int64 `json:"from,omitempty"`
	To   *int64 `json:"to,omitempty"`
}

// Contains reports whether ts falls within the interval, treating an unset
// bound as unbounded on that side.
func (iv *NonRevokedInterval) Contains(ts int64) bool {
	if iv == nil {
		return true
	}
	if iv.From != nil && ts < *iv.From {
		return false
	}
	if iv.To != nil && ts > *iv.To {
		return false
	}
	return true
}

// WithOverrideFrom returns a copy of iv with From replaced by override when
// override is non-nil, per spec §4.6 step 3's "if an override is supplied
// for the registry and the request's from, replace from".
func (iv *NonRevokedInterval) WithOverrideFrom(override *int64) *NonRevokedInterval {
	if iv == nil || override == nil {
		return iv
	}
	out := *iv
	out.From = override
	return &out
}

// AttributeInfo is one requested-attribute referent: either a single name
// or a set of names that must all come from the same credential, plus
// optional restrictions and a per-referent non-revocation interval.
type AttributeInfo struct {
	Name         string              `json:"name,omitempty"`
	Names        []string            `json:"names,omitempty"`
	Restrictions *query.Query        `json:"restrictions,omitempty"`
	NonRevoked   *NonRevokedInterval `json:"non_revoked,omitempty"`
}

// AttributeNames returns the referent's requested attribute name set,
// normalizing the single-Name and multi-Names shapes to one list.
func (a *AttributeInfo) AttributeNames() []string {
	if a.Name != "" {
		return []string{a.Name}
	}
	return a.Names
}

// PredicateInfo is one requested-predicate referent: an attribute name, a
// comparison type, and the threshold value.
type PredicateInfo struct {
	Name         string              `json:"name"`
	PType        PredicateType       `json:"p_type"`
	PValue       int64               `json:"p_value"`
	Restrictions *query.Query        `json:"restrictions,omitempty"`
	NonRevoked   *NonRevokedInterval `json:"non_revoked,omitempty"`
}

// Request is a verifier-issued presentation request (spec §3, §4.5, §4.6).
type Request struct {
	Nonce                 primitives.Nonce         `json:"nonce"`
	Name                  string                   `json:"name"`
	Version               string                   `json:"version"`
	RequestedAttributes   map[string]AttributeInfo `json:"requested_attributes"`
	RequestedPredicates   map[string]PredicateInfo `json:"requested_predicates"`
	NonRevoked            *NonRevokedInterval      `json:"non_revoked,omitempty"`
}

// referents returns the set of all referent names the request declares,
// across both requested attributes and requested predicates.
func (r *Request) referents() map[string]bool {
	out := make(map[string]bool, len(r.RequestedAttributes)+len(r.RequestedPredicates))
	for ref := range r.RequestedAttributes {
		out[ref] = true
	}
	for ref := range r.RequestedPredicates {
		out[ref] = true
	}
	return out
}

// Identifier pins one sub-proof to the schema/cred-def/revocation-registry
// it was built against, plus the timestamp its non-revocation proof (if
// any) was taken at.
type Identifier struct {
	SchemaID  identifiers.SchemaID   `json:"schema_id"`
	CredDefID identifiers.CredDefID  `json:"cred_def_id"`
	RevRegID  *identifiers.RevRegID  `json:"rev_reg_id,omitempty"`
	Timestamp *int64                 `json:"timestamp,omitempty"`
}

// RevealedAttr is one revealed-attribute referent's bookkeeping entry.
type RevealedAttr struct {
	SubProofIndex int         `json:"sub_proof_index"`
	Raw           string      `json:"raw"`
	Encoded       *bigint.Int `json:"encoded"`
}

// RevealedAttrGroup is one revealed-attribute-group referent's bookkeeping
// entry (multiple attribute names drawn from the same credential).
type RevealedAttrGroup struct {
	SubProofIndex int                     `json:"sub_proof_index"`
	Values        map[string]RevealedAttr `json:"values"`
}

// SelfAttested is a self-attested referent's bookkeeping entry: the
// verbatim raw value the holder asserted without any credential backing it.
type SelfAttested struct {
	Raw string `json:"raw"`
}

// PredicateRef is one predicate referent's bookkeeping entry.
type PredicateRef struct {
	SubProofIndex int `json:"sub_proof_index"`
}

// RequestedProof maps every referent the request declared to how the
// presentation answered it (spec §4.5 step 4, §3 invariant "every referent
// ... appears exactly once ... as either revealed, unrevealed, self-attested,
// or predicate").
type RequestedProof struct {
	RevealedAttrs      map[string]RevealedAttr      `json:"revealed_attrs"`
	RevealedAttrGroups map[string]RevealedAttrGroup `json:"revealed_attr_groups,omitempty"`
	UnrevealedAttrs    map[string]PredicateRef      `json:"unrevealed_attrs"`
	SelfAttestedAttrs  map[string]SelfAttested      `json:"self_attested_attrs"`
	Predicates         map[string]PredicateRef      `json:"predicates"`
}

// NonRevocationProof reveals the tails element backing a credential's
// accumulator-membership witness so a verifier can recheck
// revocation.VerifyMembership directly, rather than hiding the index behind
// a further zero-knowledge layer.
type NonRevocationProof struct {
	Index      int         `json:"index"`
	TailBytes  []byte      `json:"tail"`
	Witness    []byte      `json:"witness"`
}

// FourSquares is a Lagrange four-square decomposition of a non-negative
// integer delta, revealed directly rather than hidden behind a further
// zero-knowledge layer: constructing one at all already certifies delta>=0
// (spec §4.5's predicate handling is described only at the design level; a
// full hiding range proof is out of scope here).
type FourSquares struct {
	A *bigint.Int `json:"a"`
	B *bigint.Int `json:"b"`
	C *bigint.Int `json:"c"`
	D *bigint.Int `json:"d"`
}

// PredicateProof binds a predicate referent's equality sub-proof to the
// four-square witness that the derived delta (the signed distance between
// the attribute's encoded value and p_value) is non-negative.
type PredicateProof struct {
	PType  PredicateType `json:"p_type"`
	PValue int64         `json:"p_value"`
	Delta  FourSquares   `json:"delta"`
}

// SubProof is one credential's contribution to the aggregated presentation
// proof: the equality proof over its randomized signature, plus any
// predicate and non-revocation proofs attached to that same credential.
type SubProof struct {
	Equality      *EqualityProof       `json:"primary_proof"`
	Predicates    []PredicateProof     `json:"predicates,omitempty"`
	NonRevocation *NonRevocationProof  `json:"non_revoc_proof,omitempty"`
}

// AggregatedProof is the single Fiat-Shamir challenge tying every sub-proof
// in a presentation together, plus the per-sub-proof commitments it was
// derived from (kept so a verifier can recompute and compare without
// requiring the holder to resend them separately).
type AggregatedProof struct {
	CHash       *bigint.Int   `json:"c_hash"`
	Commitments []*bigint.Int `json:"c_list"`
}

// Presentation is the holder-produced, verifier-consumed artifact (spec §3,
// §4.5 step 4).
type Presentation struct {
	Proof          AggregatedProof `json:"proof"`
	SubProofs      []SubProof      `json:"sub_proofs"`
	RequestedProof RequestedProof  `json:"requested_proof"`
	Identifiers    []Identifier    `json:"identifiers"`
}

// ValidateReferents checks the invariant that every referent the request
// declares appears in exactly one of the requested-proof's buckets.
func ValidateReferents(req *Request, rp *RequestedProof) error {
	want := req.referents()
	seen := make(map[string]bool, len(want))
	mark := func(ref string) error {
		if seen[ref] {
			return anoncredserr.Newf(anoncredserr.ProofRejected, "referent %q answered more than once", ref)
		}
		seen[ref] = true
		return nil
	}
	for ref := range rp.RevealedAttrs {
		if err := mark(ref); err != nil {
			return err
		}
	}
	for ref := range rp.RevealedAttrGroups {
		if err := mark(ref); err != nil {
			return err
		}
	}
	for ref := range rp.UnrevealedAttrs {
		if err := mark(ref); err != nil {
			return err
		}
	}
	for ref := range rp.SelfAttestedAttrs {
		if err := mark(ref); err != nil {
			return err
		}
	}
	for ref := range rp.Predicates {
		if err := mark(ref); err != nil {
			return err
		}
	}
	if len(seen) != len(want) {
		return anoncredserr.New(anoncredserr.ProofRejected, "requested-proof referent set does not match presentation request")
	}
	for ref := range want {
		if !seen[ref] {
			return anoncredserr.Newf(anoncredserr.ProofRejected, "referent %q missing from presentation", ref)
		}
	}
	return nil
}
