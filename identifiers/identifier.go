// Package identifiers implements the qualifiable DID-style identifiers used
// throughout AnonCreds object ids: issuer DIDs, schema ids, credential
// definition ids, and revocation registry ids can each appear either in
// legacy unqualified form (a bare base58 value) or fully qualified as
// "did:<method>:<value>" (spec §4.8). This mirrors indy-utils's
// qualifiable.rs generic identifier combinator, specialised to the one
// prefix AnonCreds needs.
package identifiers

import (
	"regexp"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
)

// qualifiedForm matches "<prefix>:<method>:<rest>" where prefix and method
// are lowercase alphanumeric and rest is everything else.
var qualifiedForm = regexp.MustCompile(`^([a-z0-9]+):([a-z0-9]+):(.*)$`)

// methodName matches a bare DID method name.
var methodName = regexp.MustCompile(`^[a-z0-9]+$`)

// DID is a qualifiable issuer identifier: either a legacy unqualified
// base58-encoded value, or "did:<method>:<value>".
type DID string

// NewDID combines a method and bare value into a qualified DID. If method is
// empty, the value is returned unqualified.
func NewDID(method, value string) DID {
	if method == "" {
		return DID(value)
	}
	return DID("did:" + method + ":" + value)
}

// Split returns the method (empty if unqualified) and the trailing value.
func (d DID) Split() (method, value string) {
	m := qualifiedForm.FindStringSubmatch(string(d))
	if m == nil {
		return "", string(d)
	}
	if m[1] != "did" {
		return "", string(d)
	}
	return m[2], m[3]
}

// Method returns the DID method, or "" if the DID is unqualified.
func (d DID) Method() string {
	method, _ := d.Split()
	return method
}

// IsQualified reports whether d carries a "did:<method>:" prefix.
func (d DID) IsQualified() bool {
	return d.Method() != ""
}

// Unqualified strips any "did:<method>:" prefix, returning the bare value.
func (d DID) Unqualified() DID {
	_, value := d.Split()
	return DID(value)
}

// Qualify attaches method to an unqualified DID. It is a no-op if d is
// already qualified with the same method, and an error if d already carries
// a different method (mirrors indy-utils's to_qualified).
func (d DID) Qualify(method string) (DID, error) {
	curMethod, value := d.Split()
	if curMethod == "" {
		return NewDID(method, value), nil
	}
	if curMethod == method {
		return d, nil
	}
	return "", anoncredserr.Newf(anoncredserr.Input, "identifier %q is already qualified with method %q", d, curMethod)
}

// Validate checks the DID method name format and, for unqualified DIDs, that
// the decoded value is the expected 16- or 32-byte length of a legacy indy
// DID (spec §4.8, grounded on indy-utils's did.rs validate()).
func (d DID) Validate() error {
	method, value := d.Split()
	if method != "" && !methodName.MatchString(method) {
		return anoncredserr.Newf(anoncredserr.Input, "invalid DID method name: %s", method)
	}
	if method != "" {
		return nil
	}
	decoded, err := base58.Decode(value)
	if err != nil {
		return anoncredserr.Newf(anoncredserr.Input, "identifier is not valid base58: %s", value).WithCause(err)
	}
	if len(decoded) != 16 && len(decoded) != 32 {
		return anoncredserr.Newf(anoncredserr.Input,
			"unqualified DID must decode to 16 or 32 bytes, got %d", len(decoded))
	}
	return nil
}

// SchemaID is a qualifiable schema identifier, e.g.
// "did:sov:2wJPyULfLLnYTEFYzByfUR/anoncreds/v0/SCHEMA/name/1.0" or, legacy
// form, "<issuer_did>:2:<name>:<version>".
type SchemaID string

// CredDefID is a qualifiable credential definition identifier.
type CredDefID string

// RevRegID is a qualifiable revocation registry identifier.
type RevRegID string

// IsFullyQualified reports whether s matches the generic
// "<prefix>:<method>:<rest>" qualified-identifier shape, regardless of
// prefix. Used by object ids that don't need the "did" prefix check DID.Split
// performs.
func IsFullyQualified(s string) bool {
	return qualifiedForm.MatchString(s)
}

// CommonView canonicalises an identifier for comparison: trims whitespace.
// Identifiers are otherwise compared byte-exact; unlike attribute names they
// are not case-folded, since base58 and DID methods are both case sensitive.
func CommonView(s string) string {
	return strings.TrimSpace(s)
}

// legacyForm reduces a qualified "did:<method>:<rest>" object id to its
// legacy colon-delimited equivalent by dropping the did-method prefix and
// rewriting a "did:indy"-style path tail (".../SCHEMA/name/1.0") back into
// the legacy "<issuer>:2:name:1.0" shape. Unqualified ids pass through
// unchanged. This is the canonicalisation spec §3's identifier-equality
// invariant and §4.8 require: equality and hashing both normalize to the
// legacy form first.
func legacyForm(s string) string {
	trimmed := CommonView(s)
	m := qualifiedForm.FindStringSubmatch(trimmed)
	if m == nil || m[1] != "did" {
		return trimmed
	}
	rest := m[3]
	segments := strings.Split(rest, "/")
	issuer := segments[0]
	if j := strings.LastIndex(issuer, ":"); j >= 0 {
		issuer = issuer[j+1:] // drop a did:indy network namespace
	}
	if len(segments) < 2 {
		return issuer
	}
	tail := segments[1:]
	// did:indy path tail shapes: /anoncreds/v0/SCHEMA/name/version,
	// /anoncreds/v0/CLAIM_DEF/schemaSeqNo/tag, /anoncreds/v0/REV_REG_DEF/.../tag
	for i, seg := range tail {
		switch seg {
		case "SCHEMA":
			if i+2 < len(tail) {
				return issuer + ":2:" + tail[i+1] + ":" + tail[i+2]
			}
		case "CLAIM_DEF":
			if i+2 < len(tail) {
				return issuer + ":3:CL:" + tail[i+1] + ":" + tail[i+2]
			}
		case "REV_REG_DEF":
			if i+3 < len(tail) {
				return issuer + ":4:" + issuer + ":3:CL:" + tail[i+1] + ":" + tail[i+2] + ":CL_ACCUM:" + tail[i+3]
			}
		}
	}
	return trimmed
}

// NormalizeID reduces any qualifiable object id (schema, cred-def, rev-reg,
// issuer DID) to its canonical legacy form, for callers — like query.Filter
// — that need legacy/URI-equivalent comparison without depending on a
// specific id type.
func NormalizeID(s string) string {
	return legacyForm(s)
}

// Equal reports whether two schema ids denote the same schema, treating the
// legacy colon-delimited form and the equivalent did:indy URI form as equal
// (spec §3, §6.3, Testable Property 4).
func (s SchemaID) Equal(other SchemaID) bool {
	return legacyForm(string(s)) == legacyForm(string(other))
}

// Equal reports whether two credential-definition ids denote the same
// definition, under the same legacy/URI normalisation as SchemaID.Equal.
func (c CredDefID) Equal(other CredDefID) bool {
	return legacyForm(string(c)) == legacyForm(string(other))
}

// Equal reports whether two revocation-registry ids denote the same
// registry, under the same legacy/URI normalisation as SchemaID.Equal.
func (r RevRegID) Equal(other RevRegID) bool {
	return legacyForm(string(r)) == legacyForm(string(other))
}

// HashKey returns the canonical legacy form, suitable for use as a map key
// so that the legacy and URI forms of the same identifier hash equal (spec
// §4.8: "Equality and hashing both normalize to the legacy form first").
func (s SchemaID) HashKey() string   { return legacyForm(string(s)) }
func (c CredDefID) HashKey() string  { return legacyForm(string(c)) }
func (r RevRegID) HashKey() string   { return legacyForm(string(r)) }
