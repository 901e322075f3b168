package w3c

import (
	"github.com/hyperledger/anoncreds-go/presentation"
)

// VerifiablePresentation is the W3C-VP-shaped envelope a native
// Presentation converts to and from. Unlike the credential envelope, no
// signature re-encoding is needed: the aggregated CL proof and its
// sub-proofs are public data already expressed with JSON tags throughout
// package presentation, so wrapping them verbatim in a "verifiableCredential"
// list member is a lossless, identity-preserving reshape. A presentation
// built in this form therefore verifies with package verify exactly as
// its native-form equivalent does (spec §4.7), once ToPresentation has
// unwrapped the envelope into the native form verify.Verify takes.
type VerifiablePresentation struct {
	Context                []string                `json:"@context"`
	Type                    []string                `json:"type"`
	VerifiableCredential    []presentationCredential `json:"verifiableCredential"`
	Proof                   *presentation.AggregatedProof `json:"proof"`
	PresentationRequestedProof presentation.RequestedProof `json:"presentationRequestedProof"`
}

// presentationCredential is one sub-proof reshaped as a minimal
// verifiableCredential list entry: its equality/predicate/non-revocation
// material plus the identifier it was built against.
type presentationCredential struct {
	Identifier presentation.Identifier `json:"identifier"`
	SubProof   presentation.SubProof   `json:"proof"`
}

// FromPresentation reshapes a native Presentation into its W3C envelope.
func FromPresentation(p *presentation.Presentation) *VerifiablePresentation {
	creds := make([]presentationCredential, len(p.SubProofs))
	for i, sp := range p.SubProofs {
		creds[i] = presentationCredential{Identifier: p.Identifiers[i], SubProof: sp}
	}
	agg := p.Proof
	return &VerifiablePresentation{
		Context:                    []string{CredentialContext},
		Type:                       []string{"VerifiablePresentation", "AnonCredsPresentation"},
		VerifiableCredential:       creds,
		Proof:                      &agg,
		PresentationRequestedProof: p.RequestedProof,
	}
}

// ToPresentation reshapes a W3C envelope back into a native Presentation,
// the exact inverse of FromPresentation.
func ToPresentation(vp *VerifiablePresentation) *presentation.Presentation {
	subProofs := make([]presentation.SubProof, len(vp.VerifiableCredential))
	ids := make([]presentation.Identifier, len(vp.VerifiableCredential))
	for i, c := range vp.VerifiableCredential {
		subProofs[i] = c.SubProof
		ids[i] = c.Identifier
	}
	var agg presentation.AggregatedProof
	if vp.Proof != nil {
		agg = *vp.Proof
	}
	return &presentation.Presentation{
		Proof:          agg,
		SubProofs:      subProofs,
		RequestedProof: vp.PresentationRequestedProof,
		Identifiers:    ids,
	}
}
