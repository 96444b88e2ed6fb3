// Package mismatch turns a line edit script into hydration mismatch records
// and filters them down to the ones that touch the hydration root.
package mismatch

import (
	"unicode/utf8"

	"github.com/sprite-ai/hydrodiff/internal/diff"
	"github.com/sprite-ai/hydrodiff/internal/model"
)

const (
	// ContextLines bounds contextBefore and contextAfter.
	ContextLines = 2
	// MaxSnippet is the display width, in characters, of a snippet.
	MaxSnippet = 120
	// Ellipsis marks a truncated snippet.
	Ellipsis = "..."
)

// Snippet builds the LineInfo for a 0-based server line index.
func Snippet(index int, text string) model.LineInfo {
	n := utf8.RuneCountInString(text)
	info := model.LineInfo{Line: index + 1, Snippet: text, Length: n}
	if n <= MaxSnippet {
		return info
	}

	cut, seen := 0, 0
	for i := range text {
		if seen == MaxSnippet {
			cut = i
			break
		}
		seen++
	}
	info.Snippet = text[:cut] + Ellipsis
	return info
}

// Group walks chunks in order and returns one record per run of changed
// chunks. serverLines is the normalized server document split into lines;
// all context is drawn from it.
func Group(chunks []model.DiffChunk, serverLines []string) []model.MismatchRecord {
	var (
		records []model.MismatchRecord
		open    *model.MismatchRecord
		anchor  int // server offset where the open record started
		cursor  int // 0-based offset into serverLines
	)

	closeOpen := func() {
		if open == nil {
			return
		}
		open.ContextAfter = window(serverLines, cursor, min(cursor+ContextLines, len(serverLines)))
		records = append(records, *open)
		open = nil
	}

	var prev model.DiffChunk
	for _, chunk := range chunks {
		text := chunk.Text
		if diff.ContinuesLine(prev, text) {
			text = text[1:]
		}
		prev = chunk
		lines := diff.SplitLines(text)

		if chunk.Kind == model.Unchanged {
			closeOpen()
			cursor += len(lines)
			continue
		}

		if open == nil {
			open = &model.MismatchRecord{
				ContextBefore: window(serverLines, max(cursor-ContextLines, 0), cursor),
				ServerLines:   []model.LineInfo{},
				ClientLines:   []model.LineInfo{},
			}
			anchor = cursor
		}

		switch chunk.Kind {
		case model.Removed:
			for _, line := range lines {
				open.ServerLines = append(open.ServerLines, Snippet(cursor, line))
				cursor++
			}
		case model.Added:
			for i, line := range lines {
				open.ClientLines = append(open.ClientLines, Snippet(anchor+i, line))
			}
		}
	}
	closeOpen()

	return records
}

// window returns LineInfo for serverLines[from:to], clamped to the
// document bounds.
func window(serverLines []string, from, to int) []model.LineInfo {
	from = max(from, 0)
	to = min(to, len(serverLines))
	out := make([]model.LineInfo, 0, max(to-from, 0))
	for i := from; i < to; i++ {
		out = append(out, Snippet(i, serverLines[i]))
	}
	return out
}
