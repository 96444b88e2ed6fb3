// Package normalize canonicalizes HTML documents before they are diffed so
// that differences introduced by the serving path are not reported as
// hydration mismatches.
package normalize

import (
	"regexp"
	"strings"
)

// rootTag is the bare root start tag every preamble collapses to.
const rootTag = "<html>"

var (
	// Doctype, comments, XML declarations and whitespace ahead of the root
	// element, together with the root start tag itself.
	preambleRe = regexp.MustCompile(`(?is)^(?:\s|<!doctype[^>]*>|<!--.*?-->|<\?.*?\?>)*<html\b[^>]*>`)

	selfClosingMetaRe = regexp.MustCompile(`(?i)<meta\b([^>]*?)(?:\s*/)+\s*>`)
)

// Policy selects the optional normalization rules.
type Policy struct {
	// CanonicalMeta rewrites <meta .../> to <meta ...>.
	CanonicalMeta bool
}

// DefaultPolicy enables every optional rule.
func DefaultPolicy() Policy {
	return Policy{CanonicalMeta: true}
}

// Normalizer applies a Policy. The zero value only strips the preamble and
// trims whitespace.
type Normalizer struct {
	policy Policy
}

// New returns a Normalizer for the given policy.
func New(p Policy) *Normalizer {
	return &Normalizer{policy: p}
}

// Normalize returns the canonical form of html. It never fails: input that
// has no recognizable preamble is only trimmed.
func (n *Normalizer) Normalize(html string) string {
	out := preambleRe.ReplaceAllLiteralString(html, rootTag)
	if n != nil && n.policy.CanonicalMeta {
		out = selfClosingMetaRe.ReplaceAllString(out, "<meta$1>")
	}
	return strings.TrimSpace(out)
}

// Normalize applies the default policy.
func Normalize(html string) string {
	return New(DefaultPolicy()).Normalize(html)
}
