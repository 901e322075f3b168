// Package query implements the restriction query DSL presentation requests
// use to constrain which credentials/identifiers satisfy a referent (spec
// §4.6): {$eq, $neq, $in, $exist, $and, $or, $not} evaluated against a
// Filter view of a credential's schema/cred-def/issuer/attribute tags.
// Grounded on the Query enum in
// anoncreds/src/data_types/anoncreds/pres_request.rs and the Filter struct
// in indy-credx/src/services/verifier.rs.
package query

import (
	"encoding/json"

	"github.com/hyperledger/anoncreds-go/anoncredserr"
	"github.com/hyperledger/anoncreds-go/identifiers"
)

// qualifiableTags is the tag set spec §6.3/§4.6 calls out as carrying
// identifier values, where legacy and did:indy-qualified forms must compare
// equal rather than byte-exact.
var qualifiableTags = map[string]bool{
	"issuer_did": true, "issuer_id": true,
	"cred_def_id": true, "schema_id": true,
	"schema_issuer_did": true, "schema_issuer_id": true,
	"rev_reg_id": true,
}

// Query is a restriction expression, the Go analogue of the Rust `Query`
// enum. Exactly one of the typed fields is populated, selected by Op.
type Query struct {
	Op       Op
	TagName  string
	TagValue string
	TagValues []string // $in
	TagNames  []string // $exist
	Sub       []*Query // $and / $or
	Inner     *Query   // $not
}

// Op enumerates the restriction operators this DSL supports. The spec
// scopes the supported set down from the original engine's larger Query
// enum (which also carries $gt/$gte/$lt/$lte/$like) to
// {$eq,$neq,$in,$exist,$and,$or,$not}.
type Op int

const (
	OpEq Op = iota
	OpNeq
	OpIn
	OpExist
	OpAnd
	OpOr
	OpNot
)

// Filter is the per-identifier view restrictions are evaluated against,
// grounded verbatim on indy-credx/src/services/verifier.rs's Filter struct:
// schema/cred-def/issuer tags plus synthetic per-attribute
// attr::<name>::marker and attr::<name>::value tags.
type Filter struct {
	SchemaID        string
	SchemaIssuerDID string
	SchemaName      string
	SchemaVersion   string
	IssuerDID       string
	CredDefID       string
	RevRegID        string

	// AttrMarkers maps attribute name -> true if the referent reveals it.
	AttrMarkers map[string]bool
	// AttrValues maps attribute name -> raw revealed value.
	AttrValues map[string]string
}

// tag resolves a restriction tag name to the filter's value for it, and
// whether the tag exists at all. Identifier-shaped tags are normalised to
// their canonical legacy form so a restriction written against one
// qualified/unqualified form matches a credential recorded under the other
// (spec §3's identifier-equality invariant).
func (f *Filter) tag(name string) (string, bool) {
	if qualifiableTags[name] {
		v, ok := f.rawTag(name)
		if !ok {
			return v, ok
		}
		return identifiers.NormalizeID(v), true
	}
	return f.rawTag(name)
}

func (f *Filter) rawTag(name string) (string, bool) {
	switch name {
	case "schema_id":
		return f.SchemaID, true
	case "schema_issuer_did", "schema_issuer_id":
		return f.SchemaIssuerDID, true
	case "schema_name":
		return f.SchemaName, true
	case "schema_version":
		return f.SchemaVersion, true
	case "issuer_did", "issuer_id":
		return f.IssuerDID, true
	case "cred_def_id":
		return f.CredDefID, true
	case "rev_reg_id":
		return f.RevRegID, true
	}
	if attr, ok := stripInternalTag(name, "::marker"); ok {
		if f.AttrMarkers[attr] {
			return "1", true
		}
		return "", false
	}
	if attr, ok := stripInternalTag(name, "::value"); ok {
		v, present := f.AttrValues[attr]
		return v, present
	}
	return "", false
}

// stripInternalTag recognizes the "attr::<name><suffix>" synthetic tag
// form, returning the attribute name if name has that shape.
func stripInternalTag(name, suffix string) (string, bool) {
	const prefix = "attr::"
	if len(name) <= len(prefix)+len(suffix) {
		return "", false
	}
	if name[:len(prefix)] != prefix || name[len(name)-len(suffix):] != suffix {
		return "", false
	}
	return name[len(prefix) : len(name)-len(suffix)], true
}

// Eval evaluates q against f.
func (q *Query) Eval(f *Filter) bool {
	if q == nil {
		// The original engine sometimes accepts an empty $and/$or as
		// "self-attested allowed" (spec §9 open question); a nil Query
		// (absent restrictions) is treated the same way: always satisfied.
		return true
	}
	switch q.Op {
	case OpEq:
		v, ok := f.tag(q.TagName)
		return ok && v == q.compareValue(q.TagValue)
	case OpNeq:
		v, ok := f.tag(q.TagName)
		return !ok || v != q.compareValue(q.TagValue)
	case OpIn:
		v, ok := f.tag(q.TagName)
		if !ok {
			return false
		}
		for _, candidate := range q.TagValues {
			if v == q.compareValue(candidate) {
				return true
			}
		}
		return false
	case OpExist:
		for _, name := range q.TagNames {
			if _, ok := f.tag(name); !ok {
				return false
			}
		}
		return true
	case OpAnd:
		for _, sub := range q.Sub {
			if !sub.Eval(f) {
				return false
			}
		}
		return true
	case OpOr:
		if len(q.Sub) == 0 {
			return true
		}
		for _, sub := range q.Sub {
			if sub.Eval(f) {
				return true
			}
		}
		return false
	case OpNot:
		return !q.Inner.Eval(f)
	default:
		return false
	}
}

// compareValue normalises a restriction's literal comparison value the same
// way tag lookups are normalised, when TagName names a qualifiable tag.
func (q *Query) compareValue(v string) string {
	if qualifiableTags[q.TagName] {
		return identifiers.NormalizeID(v)
	}
	return v
}

// IsEmptyAndOr reports whether q is an $and/$or with no sub-clauses — the
// shape spec §9 says the original engine treats as "self-attested allowed".
func (q *Query) IsEmptyAndOr() bool {
	if q == nil {
		return true
	}
	return (q.Op == OpAnd || q.Op == OpOr) && len(q.Sub) == 0
}

type wireQuery map[string]json.RawMessage

// UnmarshalJSON parses the `{"$eq": {...}}`-shaped restriction wire format
// into a typed Query.
func (q *Query) UnmarshalJSON(data []byte) error {
	var w wireQuery
	if err := json.Unmarshal(data, &w); err != nil {
		return anoncredserr.New(anoncredserr.Input, "malformed restriction query").WithCause(err)
	}
	if len(w) == 1 {
		for op, raw := range w {
			if len(op) > 0 && op[0] == '$' {
				return q.unmarshalOp(op, raw)
			}
		}
	}
	// a bare {"tag": "value"} equality shorthand, or an invalid shape
	var eqMap map[string]string
	if err := json.Unmarshal(data, &eqMap); err == nil && len(eqMap) == 1 {
		for k, v := range eqMap {
			*q = Query{Op: OpEq, TagName: k, TagValue: v}
			return nil
		}
	}
	return anoncredserr.New(anoncredserr.Input, "restriction query must have exactly one operator")
}

func (q *Query) unmarshalOp(op string, raw json.RawMessage) error {
	switch op {
	case "$eq", "$neq":
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil || len(m) != 1 {
			return anoncredserr.Newf(anoncredserr.Input, "malformed %s restriction", op)
		}
		for k, v := range m {
			q.TagName, q.TagValue = k, v
		}
		if op == "$eq" {
			q.Op = OpEq
		} else {
			q.Op = OpNeq
		}
	case "$in":
		var m map[string][]string
		if err := json.Unmarshal(raw, &m); err != nil || len(m) != 1 {
			return anoncredserr.New(anoncredserr.Input, "malformed $in restriction")
		}
		for k, v := range m {
			q.TagName, q.TagValues = k, v
		}
		q.Op = OpIn
	case "$exist":
		var names []string
		if err := json.Unmarshal(raw, &names); err != nil {
			return anoncredserr.New(anoncredserr.Input, "malformed $exist restriction")
		}
		q.TagNames = names
		q.Op = OpExist
	case "$and", "$or":
		var subs []*Query
		if err := json.Unmarshal(raw, &subs); err != nil {
			return anoncredserr.Newf(anoncredserr.Input, "malformed %s restriction", op)
		}
		q.Sub = subs
		if op == "$and" {
			q.Op = OpAnd
		} else {
			q.Op = OpOr
		}
	case "$not":
		var inner Query
		if err := json.Unmarshal(raw, &inner); err != nil {
			return anoncredserr.New(anoncredserr.Input, "malformed $not restriction")
		}
		q.Inner = &inner
		q.Op = OpNot
	default:
		return anoncredserr.Newf(anoncredserr.Input, "unsupported restriction operator %q", op)
	}
	return nil
}

// MarshalJSON serialises q back into the `{"$op": ...}` wire form.
func (q *Query) MarshalJSON() ([]byte, error) {
	switch q.Op {
	case OpEq:
		return json.Marshal(map[string]map[string]string{"$eq": {q.TagName: q.TagValue}})
	case OpNeq:
		return json.Marshal(map[string]map[string]string{"$neq": {q.TagName: q.TagValue}})
	case OpIn:
		return json.Marshal(map[string]map[string][]string{"$in": {q.TagName: q.TagValues}})
	case OpExist:
		return json.Marshal(map[string][]string{"$exist": q.TagNames})
	case OpAnd:
		return json.Marshal(map[string][]*Query{"$and": q.Sub})
	case OpOr:
		return json.Marshal(map[string][]*Query{"$or": q.Sub})
	case OpNot:
		return json.Marshal(map[string]*Query{"$not": q.Inner})
	default:
		return nil, anoncredserr.New(anoncredserr.Unexpected, "unknown query operator")
	}
}
