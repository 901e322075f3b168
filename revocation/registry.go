package revocation

import (
	"math/big"

	bls12381 "github.com/kilic/bls12-381"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/identifiers"
)

// RegistryType is always "CL_ACCUM" per spec §3/§6.1.
const RegistryType = "CL_ACCUM"

// IssuanceType selects whether newly-created indices start out valid
// (ISSUANCE_BY_DEFAULT) or revoked until explicitly issued
// (ISSUANCE_ON_DEMAND).
type IssuanceType string

const (
	IssuanceByDefault IssuanceType = "ISSUANCE_BY_DEFAULT"
	IssuanceOnDemand  IssuanceType = "ISSUANCE_ON_DEMAND"
)

// RegistryConfig is the caller-supplied configuration for creating a new
// revocation registry.
type RegistryConfig struct {
	MaxCredNum int
	Issuance   IssuanceType
	TailsDirPath string
}

// Validate enforces max_cred_num > 0 (ported from indy-credx's
// RevocationRegistryConfig::validate; dropped from the distilled spec but
// restored here per SPEC_FULL.md §4.4).
func (c RegistryConfig) Validate() error {
	if c.MaxCredNum <= 0 {
		return anoncredserr.New(anoncredserr.Input, "max_cred_num must be greater than zero")
	}
	return nil
}

// RegistryDefinitionValue carries the published, public half of a
// revocation registry: its public key, max size, and tails location.
type RegistryDefinitionValue struct {
	PublicKeys   RegistryPublicKey `json:"publicKeys"`
	MaxCredNum   int               `json:"maxCredNum"`
	TailsHash    string            `json:"tailsHash"`
	TailsLocation string           `json:"tailsLocation"`
}

// RegistryDefinition is the published, immutable revocation registry
// definition (spec §3).
type RegistryDefinition struct {
	RevocDefType string                    `json:"revocDefType"`
	Tag          string                    `json:"tag"`
	CredDefID    identifiers.CredDefID      `json:"credDefId"`
	IssuerID     identifiers.DID            `json:"issuerId"`
	Value        RegistryDefinitionValue    `json:"value"`
}

// RegistryPublicKey is the accumulator's pairing public key: g^gamma in G2
// for secret gamma, used by verifiers to check non-revocation witnesses.
type RegistryPublicKey struct {
	GammaG2 *bls12381.PointG2
}

// RegistryPrivateKey is the accumulator's secret scalar (gamma).
type RegistryPrivateKey struct {
	Gamma *big.Int
}

// RegistryDefinitionPrivate bundles the private accumulator key with the
// issuance bookkeeping map recording which indices are currently issued
// (spec §4.4's "[NEW]" supplement, mirroring indy-credx's RevocationKeyPrivate
// plus registry bookkeeping split, needed to compute RevocationRegistryFull).
type RegistryDefinitionPrivate struct {
	PrivateKey RegistryPrivateKey
	Issued     map[int]bool
}

// MarkIssued reserves index for a newly-issued credential. index is
// 1-based per spec §4.3's issuance contract; it maps to bitmap slot
// index-1. Out-of-range indices fail with InvalidUserRevocId; an index
// already marked issued (and not subsequently revoked) fails with
// InvalidState, and an exhausted registry (every index issued, none free)
// fails with RevocationRegistryFull.
func (p *RegistryDefinitionPrivate) MarkIssued(index, maxCredNum int) error {
	if index < 1 || index > maxCredNum {
		return anoncredserr.Newf(anoncredserr.InvalidUserRevocId, "revocation index %d out of range 1..%d", index, maxCredNum)
	}
	slot := index - 1
	if len(p.Issued) >= maxCredNum {
		allUsed := true
		for i := 0; i < maxCredNum; i++ {
			if !p.Issued[i] {
				allUsed = false
				break
			}
		}
		if allUsed {
			return anoncredserr.New(anoncredserr.RevocationRegistryFull, "no unused revocation index remains")
		}
	}
	if p.Issued[slot] {
		return anoncredserr.Newf(anoncredserr.InvalidState, "revocation index %d already issued", index)
	}
	p.Issued[slot] = true
	return nil
}

// GenerateRegistryKeyPair creates a fresh accumulator key pair.
func GenerateRegistryKeyPair() (*RegistryPrivateKey, *RegistryPublicKey, error) {
	gamma, err := RandomScalar()
	if err != nil {
		return nil, nil, anoncredserr.New(anoncredserr.Unexpected).WithCause(err)
	}
	g := g2()
	pub := g.New()
	g.MulScalar(pub, g.One(), gamma)
	return &RegistryPrivateKey{Gamma: gamma}, &RegistryPublicKey{GammaG2: pub}, nil
}

// CreateRegistryDefinition generates a registry key pair, the full tails
// set for max_cred_num indices, writes them via writer, and returns the
// published definition plus its private counterpart.
func CreateRegistryDefinition(
	credDefID identifiers.CredDefID,
	issuerID identifiers.DID,
	tag string,
	config RegistryConfig,
	writer *TailsFileWriter,
) (*RegistryDefinition, *RegistryDefinitionPrivate, []*bls12381.PointG2, error) {
	if err := config.Validate(); err != nil {
		return nil, nil, nil, err
	}

	sk, pk, err := GenerateRegistryKeyPair()
	if err != nil {
		return nil, nil, nil, err
	}

	tails, err := generateTails(sk.Gamma, config.MaxCredNum)
	if err != nil {
		return nil, nil, nil, err
	}

	path, hash, err := writer.Write(tails)
	if err != nil {
		return nil, nil, nil, err
	}

	issued := make(map[int]bool, config.MaxCredNum)
	if config.Issuance == IssuanceByDefault {
		for i := 0; i < config.MaxCredNum; i++ {
			issued[i] = true
		}
	}

	def := &RegistryDefinition{
		RevocDefType: RegistryType,
		Tag:          tag,
		CredDefID:    credDefID,
		IssuerID:     issuerID,
		Value: RegistryDefinitionValue{
			PublicKeys:    *pk,
			MaxCredNum:    config.MaxCredNum,
			TailsHash:     hash,
			TailsLocation: path,
		},
	}
	priv := &RegistryDefinitionPrivate{PrivateKey: *sk, Issued: issued}

	return def, priv, tails, nil
}

// generateTails derives the deterministic tails elements g_i = g2^(gamma^(i+1))
// for i in 0..maxCredNum, the standard pairing-accumulator tails
// construction (each index's element is an independent power of the
// generator under the secret exponent, so that accumulating/removing any
// index is a simple group operation known only from gamma or the
// precomputed tail).
func generateTails(gamma *big.Int, maxCredNum int) ([]*bls12381.PointG2, error) {
	g := g2()
	tails := make([]*bls12381.PointG2, maxCredNum)
	power := new(big.Int).Set(gamma)
	for i := 0; i < maxCredNum; i++ {
		p := g.New()
		g.MulScalar(p, g.One(), power)
		tails[i] = p
		power = new(big.Int).Mul(power, gamma)
		power.Mod(power, scalarFieldOrder)
	}
	return tails, nil
}
