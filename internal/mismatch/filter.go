package mismatch

import (
	"regexp"
	"strings"

	"github.com/sprite-ai/hydrodiff/internal/model"
)

// DefaultRootMarkers identify the hydration root in a snippet: the mount
// container of a typical single-page app and the body element hosting it.
var DefaultRootMarkers = []string{`id="root"`, "<body"}

// Predicate decides whether a snippet belongs to the hydration root region.
type Predicate func(snippet string) bool

// ContainsAny matches snippets containing at least one of markers. Empty
// markers are ignored; with no usable markers nothing matches.
func ContainsAny(markers ...string) Predicate {
	var usable []string
	for _, m := range markers {
		if m != "" {
			usable = append(usable, m)
		}
	}
	return func(snippet string) bool {
		for _, m := range usable {
			if strings.Contains(snippet, m) {
				return true
			}
		}
		return false
	}
}

// MatchRegexp matches snippets against re.
func MatchRegexp(re *regexp.Regexp) Predicate {
	return re.MatchString
}

// MatchAll keeps every record.
func MatchAll(string) bool { return true }

// DefaultPredicate matches DefaultRootMarkers.
func DefaultPredicate() Predicate {
	return ContainsAny(DefaultRootMarkers...)
}

// Filter returns the records with at least one server or client line whose
// snippet satisfies keep, preserving order. A nil keep uses
// DefaultPredicate. The input slice is not modified.
func Filter(records []model.MismatchRecord, keep Predicate) []model.MismatchRecord {
	if keep == nil {
		keep = DefaultPredicate()
	}

	out := make([]model.MismatchRecord, 0, len(records))
	for _, r := range records {
		if touches(r, keep) {
			out = append(out, r)
		}
	}
	return out
}

func touches(r model.MismatchRecord, keep Predicate) bool {
	for _, l := range r.Changed() {
		if keep(l.Snippet) {
			return true
		}
	}
	return false
}
