// Package model defines the core data types shared across hydrodiff.
package model

// ChunkKind classifies one unit of a line diff.
type ChunkKind int

const (
	Unchanged ChunkKind = iota
	Removed             // present only in the server document
	Added               // present only in the client document
)

func (k ChunkKind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Removed:
		return "removed"
	case Added:
		return "added"
	default:
		return "unknown"
	}
}

// DiffChunk is one unit of a line-diff edit script. Text holds whole lines,
// each terminated by "\n" except possibly the last line of a document.
type DiffChunk struct {
	Kind ChunkKind
	Text string
}

// LineInfo is one reported source line.
type LineInfo struct {
	Line    int    `json:"line"`    // 1-based, server document numbering
	Snippet string `json:"snippet"` // possibly truncated display text
	Length  int    `json:"length"`  // untruncated length in characters
}

// MismatchRecord is one reported hydration discrepancy.
type MismatchRecord struct {
	ContextBefore []LineInfo `json:"contextBefore"`
	ServerLines   []LineInfo `json:"serverLines"`
	ClientLines   []LineInfo `json:"clientLines"`
	ContextAfter  []LineInfo `json:"contextAfter"`
}

// Changed returns every server and client line of the record, server first.
func (r MismatchRecord) Changed() []LineInfo {
	out := make([]LineInfo, 0, len(r.ServerLines)+len(r.ClientLines))
	out = append(out, r.ServerLines...)
	return append(out, r.ClientLines...)
}

// MismatchReport is the result of one run.
type MismatchReport struct {
	Mismatches []MismatchRecord `json:"mismatches"`
}

// Clean reports whether no mismatches were found.
func (r *MismatchReport) Clean() bool {
	return r == nil || len(r.Mismatches) == 0
}

// Stats returns the number of records and the total server-only and
// client-only lines across them.
func (r *MismatchReport) Stats() (records, removed, added int) {
	if r == nil {
		return 0, 0, 0
	}
	records = len(r.Mismatches)
	for _, m := range r.Mismatches {
		removed += len(m.ServerLines)
		added += len(m.ClientLines)
	}
	return
}
