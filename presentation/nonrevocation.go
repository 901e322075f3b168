package presentation

import (
	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/revocation"
)

// BuildNonRevocationProof packages the holder's witness and tails element
// for the given credential index so the verifier can recheck
// revocation.VerifyMembership directly, rather than hiding the index behind
// a further zero-knowledge accumulator-membership proof.
func BuildNonRevocationProof(index int, state *revocation.State, tail []byte) *NonRevocationProof {
	return &NonRevocationProof{
		Index:     index,
		TailBytes: tail,
		Witness:   state.Witness.Bytes(),
	}
}

// VerifyNonRevocation recomputes the pairing-free membership check for a
// NonRevocationProof against the accumulator snapshot acc.
func VerifyNonRevocation(acc *revocation.Accumulator, proof *NonRevocationProof) error {
	w, err := revocation.WitnessFromBytes(proof.Witness)
	if err != nil {
		return err
	}
	tail, err := revocation.TailFromBytes(proof.TailBytes)
	if err != nil {
		return err
	}
	if !revocation.VerifyMembership(acc, w, tail) {
		return anoncredserr.New(anoncredserr.CredentialRevoked, "non-revocation witness does not match accumulator snapshot")
	}
	return nil
}
