// Package primitives implements the Primitive Layer of spec §4.1: the
// deterministic attribute encoding used as the CL signature message,
// attribute-name canonicalisation for restriction/proof matching, and the
// domain-separated tree hash used for tails-file-style integrity digests.
package primitives

import (
	"crypto/sha256"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperledger/anoncreds-go/bigint"
)

// int32Form matches an optional "-" followed by decimal digits (no leading
// "+"). It does not check the 32-bit range; strconv.ParseInt does that.
var int32Form = regexp.MustCompile(`^-?[0-9]+$`)

// EncodeAttribute implements the deterministic raw->encoded mapping from
// spec §3: if raw parses as a signed 32-bit integer, its decimal form is
// used verbatim; otherwise the encoding is the decimal string of the
// big-endian integer formed from the SHA-256 digest of the UTF-8 raw
// string.
func EncodeAttribute(raw string) string {
	if int32Form.MatchString(raw) {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil {
			return strconv.FormatInt(v, 10)
		}
	}
	sum := sha256.Sum256([]byte(raw))
	return new(big.Int).SetBytes(sum[:]).String()
}

// EncodeAttributeBig is EncodeAttribute but returns the integer value
// directly, for callers building a CL message vector.
func EncodeAttributeBig(raw string) *bigint.Int {
	enc := EncodeAttribute(raw)
	v, _ := bigint.FromDec(enc)
	return v
}

// AttrCommonView canonicalises an attribute name for matching purposes:
// strip all whitespace, then lowercase.
func AttrCommonView(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if strings.ContainsRune(" \t\n\r\f\v", r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// TreeHash computes a deterministic SHA-256 digest over an ordered list of
// leaves using domain-separated leaf (0x00) and internal-node (0x01)
// prefixes, the same separation discipline the teacher pack's Merkle/tails
// hashing code uses to prevent leaf/node collision attacks.
func TreeHash(leaves [][]byte) []byte {
	if len(leaves) == 0 {
		h := sha256.Sum256([]byte{0x00})
		return h[:]
	}
	nodes := make([][]byte, len(leaves))
	for i, leaf := range leaves {
		h := sha256.New()
		h.Write([]byte{0x00})
		h.Write(leaf)
		nodes[i] = h.Sum(nil)
	}
	for len(nodes) > 1 {
		next := make([][]byte, 0, (len(nodes)+1)/2)
		for i := 0; i < len(nodes); i += 2 {
			if i+1 == len(nodes) {
				next = append(next, nodes[i])
				continue
			}
			h := sha256.New()
			h.Write([]byte{0x01})
			h.Write(nodes[i])
			h.Write(nodes[i+1])
			next = append(next, h.Sum(nil))
		}
		nodes = next
	}
	return nodes[0]
}

// Sha256Hex is a small convenience used for the non-cryptographic display
// digests elsewhere in the module (e.g. logging a credential fingerprint
// without logging its contents).
func Sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	const hextable = "0123456789abcdef"
	out := make([]byte, len(sum)*2)
	for i, b := range sum {
		out[i*2] = hextable[b>>4]
		out[i*2+1] = hextable[b&0x0f]
	}
	return string(out)
}
