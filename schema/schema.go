// Package schema implements the Schema object (spec §4.1): the named,
// versioned, attribute-name-only declaration a credential definition binds a
// CL key to.
package schema

import (
	"strings"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/clkeys"
	"github.com/hyperledger/anoncreds-go/identifiers"
	"github.com/hyperledger/anoncreds-go/primitives"
)

// Schema declares the shape of a credential: its attribute names, in a
// fixed order that determines the CL public-key base each name binds to.
type Schema struct {
	IssuerID   identifiers.DID `json:"issuerId"`
	Name       string          `json:"name"`
	Version    string          `json:"version"`
	AttrNames  []string        `json:"attrNames"`
}

// New constructs and validates a Schema.
func New(issuerID identifiers.DID, name, version string, attrNames []string) (*Schema, error) {
	s := &Schema{IssuerID: issuerID, Name: name, Version: version, AttrNames: attrNames}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the structural invariants of a schema: a non-empty name
// and version, an issuer DID that passes identifier validation, between 1
// and clkeys.MaxAttributes attribute names, no duplicate names (compared
// case-insensitively via the same view used for restriction matching), and
// no empty attribute name.
func (s *Schema) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return anoncredserr.New(anoncredserr.Input, "schema name must not be empty")
	}
	if strings.TrimSpace(s.Version) == "" {
		return anoncredserr.New(anoncredserr.Input, "schema version must not be empty")
	}
	if err := s.IssuerID.Validate(); err != nil {
		return anoncredserr.New(anoncredserr.Input, "invalid schema issuer id").WithCause(err)
	}
	if len(s.AttrNames) == 0 {
		return anoncredserr.New(anoncredserr.Input, "schema must declare at least one attribute")
	}
	if len(s.AttrNames) > clkeys.MaxAttributes {
		return anoncredserr.Newf(anoncredserr.Input, "schema declares %d attributes, exceeds maximum %d", len(s.AttrNames), clkeys.MaxAttributes)
	}
	seen := make(map[string]struct{}, len(s.AttrNames))
	for _, name := range s.AttrNames {
		if strings.TrimSpace(name) == "" {
			return anoncredserr.New(anoncredserr.Input, "schema attribute name must not be empty")
		}
		view := primitives.AttrCommonView(name)
		if _, dup := seen[view]; dup {
			return anoncredserr.Newf(anoncredserr.Input, "duplicate attribute name: %s", name)
		}
		seen[view] = struct{}{}
	}
	return nil
}

// IndexOf returns the position of attrName in AttrNames (comparing via
// AttrCommonView), or -1 if not declared.
func (s *Schema) IndexOf(attrName string) int {
	view := primitives.AttrCommonView(attrName)
	for i, name := range s.AttrNames {
		if primitives.AttrCommonView(name) == view {
			return i
		}
	}
	return -1
}
