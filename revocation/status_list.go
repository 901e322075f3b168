package revocation

import (
	bls12381 "github.com/kilic/bls12-381"
	"go.uber.org/zap"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/identifiers"
	"github.com/hyperledger/anoncreds-go/internal/obslog"
)

// StatusList is the versioned, bitmap-backed revocation state published by
// an issuer over time (spec §3): index i's bit is 1 if revoked, 0 if valid,
// alongside the accumulator value consistent with that bitmap at Timestamp.
//
// Bit semantics are grounded verbatim on the original engine's
// RevocationStatusList::update (src/data_types/rev_status_list.rs): an
// issued index is cleared (false/0, "not revoked"), a revoked index is set
// (true/1).
type StatusList struct {
	RevRegDefID identifiers.RevRegID `json:"revRegDefId,omitempty"`
	IssuerID    identifiers.DID      `json:"issuerId"`
	Bitmap      []bool               `json:"revocationList"`
	Accumulator *Accumulator         `json:"-"`
	Timestamp   int64                `json:"timestamp,omitempty"`
}

// NewStatusList creates the initial status list for a freshly-created
// registry: a bitmap of length def.Value.MaxCredNum, all-zero (valid) if
// issuanceByDefault, all-one (revoked) otherwise, and the accumulator
// folded over every index that starts out valid.
func NewStatusList(
	revRegDefID identifiers.RevRegID,
	issuerID identifiers.DID,
	def *RegistryDefinition,
	tails []*bls12381.PointG2,
	issuanceByDefault bool,
	timestamp int64,
) *StatusList {
	n := def.Value.MaxCredNum
	bitmap := make([]bool, n)
	acc := NewAccumulator()
	for i := 0; i < n; i++ {
		if issuanceByDefault {
			bitmap[i] = false
			acc.Accumulate(tails[i])
		} else {
			bitmap[i] = true
		}
	}
	return &StatusList{
		RevRegDefID: revRegDefID,
		IssuerID:    issuerID,
		Bitmap:      bitmap,
		Accumulator: acc,
		Timestamp:   timestamp,
	}
}

// Update produces a new StatusList reflecting newly-issued and
// newly-revoked indices, folding the accumulator delta accordingly: for
// each issued index whose bit was previously set, the bit clears and the
// accumulator multiplies tails[i] back in; for each revoked index whose bit
// was previously clear, the bit sets and the accumulator divides tails[i]
// out. issued and revoked MUST be disjoint; any index outside
// 0..len(Bitmap) fails with Unexpected (mirroring the original's bounds
// check, which the original maps to the same ErrorKind).
func (l *StatusList) Update(tails []*bls12381.PointG2, issued, revoked []int, newTimestamp *int64) (*StatusList, error) {
	issuedSet := make(map[int]bool, len(issued))
	for _, i := range issued {
		issuedSet[i] = true
	}
	for _, i := range revoked {
		if issuedSet[i] {
			return nil, anoncredserr.New(anoncredserr.Input, "index cannot be both issued and revoked in the same update")
		}
	}

	next := &StatusList{
		RevRegDefID: l.RevRegDefID,
		IssuerID:    l.IssuerID,
		Bitmap:      append([]bool(nil), l.Bitmap...),
		Accumulator: l.Accumulator.Clone(),
		Timestamp:   l.Timestamp,
	}

	for _, i := range issued {
		if i < 0 || i >= len(next.Bitmap) {
			return nil, anoncredserr.Newf(anoncredserr.Unexpected, "issued index %d out of range", i)
		}
		if next.Bitmap[i] {
			next.Accumulator.Accumulate(tails[i])
		}
		next.Bitmap[i] = false
	}
	for _, i := range revoked {
		if i < 0 || i >= len(next.Bitmap) {
			return nil, anoncredserr.Newf(anoncredserr.Unexpected, "revoked index %d out of range", i)
		}
		if !next.Bitmap[i] {
			next.Accumulator.Deaccumulate(tails[i])
		}
		next.Bitmap[i] = true
	}

	if newTimestamp != nil {
		next.Timestamp = *newTimestamp
	}

	obslog.Logger.Info("revocation status list updated",
		zap.String("rev_reg_def_id", string(next.RevRegDefID)),
		zap.Int("issued_count", len(issued)),
		zap.Int("revoked_count", len(revoked)),
		zap.Int64("timestamp", next.Timestamp),
	)

	return next, nil
}

// UpdateTimestamp produces a new StatusList identical to l except for its
// timestamp — an issuer "heartbeat" publishing that nothing changed at time
// t (spec §4.4).
func (l *StatusList) UpdateTimestamp(timestamp int64) *StatusList {
	next := *l
	next.Bitmap = append([]bool(nil), l.Bitmap...)
	next.Accumulator = l.Accumulator.Clone()
	next.Timestamp = timestamp
	return &next
}

// IsRevoked reports whether index i is marked revoked.
func (l *StatusList) IsRevoked(i int) (bool, error) {
	if i < 0 || i >= len(l.Bitmap) {
		return false, anoncredserr.Newf(anoncredserr.InvalidUserRevocId, "index %d out of range 0..%d", i, len(l.Bitmap))
	}
	return l.Bitmap[i], nil
}

// Delta returns the set of indices whose bit differs between l and other,
// split into newly-issued (was revoked, now valid) and newly-revoked (was
// valid, now revoked) — the symmetric difference witness maintenance must
// apply (spec §4.4).
func (l *StatusList) Delta(other *StatusList) (issued, revoked []int) {
	for i := range l.Bitmap {
		if i >= len(other.Bitmap) {
			break
		}
		if l.Bitmap[i] && !other.Bitmap[i] {
			issued = append(issued, i)
		} else if !l.Bitmap[i] && other.Bitmap[i] {
			revoked = append(revoked, i)
		}
	}
	return issued, revoked
}
