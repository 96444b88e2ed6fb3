// Package diff computes line-oriented edit scripts between two documents.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/sprite-ai/hydrodiff/internal/model"
)

// Lines computes a line-granularity diff of before (server) against after
// (client). Within every run of changes all removed lines are emitted as one
// Removed chunk followed by one Added chunk, so a replaced span reads as a
// single pair instead of interleaved deletes and inserts.
func Lines(before, after string) []model.DiffChunk {
	if before == after {
		if before == "" {
			return nil
		}
		return []model.DiffChunk{{Kind: model.Unchanged, Text: before}}
	}

	// An unterminated last line would otherwise differ from the same line
	// followed by more content on the other side.
	pad := before != "" && after != "" &&
		!strings.HasSuffix(before, "\n") && !strings.HasSuffix(after, "\n")
	if pad {
		before += "\n"
		after += "\n"
	}

	dmp := diffmatchpatch.New()
	src, dst, lineArray := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffMainRunes(src, dst, false)
	diffs = dmp.DiffCleanupMerge(diffs)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	chunks := frame(diffs)
	if pad {
		chunks = unpad(chunks)
	}
	return chunks
}

// unpad removes the terminator Lines added to both inputs so each side
// reconstructs exactly. When one side ends inside the final Unchanged chunk
// while the other continues, the newline moves to the front of the trailing
// chunk, where it terminates the shared last line.
func unpad(chunks []model.DiffChunk) []model.DiffChunk {
	last := func(side model.ChunkKind) int {
		for i := len(chunks) - 1; i >= 0; i-- {
			if chunks[i].Kind == model.Unchanged || chunks[i].Kind == side {
				return i
			}
		}
		return -1
	}
	trim := func(i int) {
		chunks[i].Text = strings.TrimSuffix(chunks[i].Text, "\n")
	}

	server, client := last(model.Removed), last(model.Added)
	switch {
	case server == client:
		trim(server)
	case chunks[server].Kind == model.Unchanged:
		trim(server)
		trim(client)
		chunks[client].Text = "\n" + chunks[client].Text
	case chunks[client].Kind == model.Unchanged:
		trim(client)
		trim(server)
		chunks[server].Text = "\n" + chunks[server].Text
	default:
		trim(server)
		trim(client)
	}

	out := chunks[:0]
	for _, c := range chunks {
		if c.Text != "" {
			out = append(out, c)
		}
	}
	return out
}

// frame converts library diffs into chunks, merging every run of non-equal
// diffs into at most one Removed and one Added chunk, in that order.
func frame(diffs []diffmatchpatch.Diff) []model.DiffChunk {
	var (
		chunks  []model.DiffChunk
		removed strings.Builder
		added   strings.Builder
	)

	flush := func() {
		if removed.Len() > 0 {
			chunks = append(chunks, model.DiffChunk{Kind: model.Removed, Text: removed.String()})
			removed.Reset()
		}
		if added.Len() > 0 {
			chunks = append(chunks, model.DiffChunk{Kind: model.Added, Text: added.String()})
			added.Reset()
		}
	}

	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			removed.WriteString(d.Text)
		case diffmatchpatch.DiffInsert:
			added.WriteString(d.Text)
		case diffmatchpatch.DiffEqual:
			flush()
			if n := len(chunks); n > 0 && chunks[n-1].Kind == model.Unchanged {
				chunks[n-1].Text += d.Text
				continue
			}
			chunks = append(chunks, model.DiffChunk{Kind: model.Unchanged, Text: d.Text})
		}
	}
	flush()

	return chunks
}

// Reconstruct rebuilds one side of a diff: the server document from
// Unchanged and Removed chunks, or the client document from Unchanged and
// Added chunks.
func Reconstruct(chunks []model.DiffChunk, side model.ChunkKind) string {
	var b strings.Builder
	for _, c := range chunks {
		if c.Kind == model.Unchanged || c.Kind == side {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

// ContinuesLine reports whether text opens with the terminator of the last
// line of prev, an Unchanged chunk left unterminated by unpad.
func ContinuesLine(prev model.DiffChunk, text string) bool {
	return prev.Kind == model.Unchanged && prev.Text != "" &&
		!strings.HasSuffix(prev.Text, "\n") && strings.HasPrefix(text, "\n")
}

// SplitLines splits text into lines without their terminators. A trailing
// newline does not produce an extra empty line, and empty text has no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
