package revocation

import bls12381 "github.com/kilic/bls12-381"

// State is a holder's revocation state for one credential: a witness, the
// accumulator snapshot the witness is valid against, and the timestamp that
// snapshot corresponds to (spec §4.4).
type State struct {
	Witness     *Witness
	Accumulator *Accumulator
	Timestamp   int64
}

// CreateOrUpdateState produces or refreshes a holder's revocation state for
// index given the tails set and the target status list. When prior is
// non-nil, the witness is first rebuilt from the tails set over prior's
// bitmap and the delta between prior's and list's bitmaps is then applied
// to it; no previously computed witness is taken as input, so every call
// traverses the full tails set. When prior is nil, the witness is built
// over list's full bitmap.
func CreateOrUpdateState(tails []*bls12381.PointG2, prior *StatusList, list *StatusList, index int) *State {
	var w *Witness
	if prior != nil {
		issuedDelta, revokedDelta := prior.Delta(list)
		// a witness for `index` is built over every OTHER valid index, so an
		// index newly issued into the bitmap enters the witness and vice
		// versa for newly revoked indices — same direction as the accumulator.
		w = WitnessFromAccumulator(tails, bitmapToIssuedSet(prior.Bitmap), index)
		w.ApplyDelta(tails, issuedDelta, revokedDelta, index)
	} else {
		w = WitnessFromAccumulator(tails, bitmapToIssuedSet(list.Bitmap), index)
	}
	return &State{Witness: w, Accumulator: list.Accumulator.Clone(), Timestamp: list.Timestamp}
}

// bitmapToIssuedSet converts a revoked-bit bitmap (true = revoked) into the
// issued-index set WitnessFromAccumulator expects (true = valid/non-revoked).
func bitmapToIssuedSet(bitmap []bool) map[int]bool {
	issued := make(map[int]bool, len(bitmap))
	for i, revoked := range bitmap {
		issued[i] = !revoked
	}
	return issued
}
