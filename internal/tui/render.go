package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/hydrodiff/internal/diff"
	"github.com/sprite-ai/hydrodiff/internal/mismatch"
	"github.com/sprite-ai/hydrodiff/internal/model"
)

type lineKind int

const (
	kindContext lineKind = iota
	kindRemoved
	kindAdded
	kindSection
)

// renderedLine is a single line of a mismatch record ready for display.
type renderedLine struct {
	Kind    lineKind
	Num     int    // 0 for section headers
	Content string // snippet text
	Length  int    // full length of the original line

	// Syntax highlighting tokens (nil = no highlighting)
	Tokens []diff.Token
}

// renderRecord flattens a record into display lines: context before, the
// server side, the client side, context after.
func renderRecord(r model.MismatchRecord) []renderedLine {
	var lines []renderedLine

	context := func(ls []model.LineInfo) {
		snippets := make([]string, len(ls))
		for i, l := range ls {
			snippets[i] = l.Snippet
		}
		highlighted := diff.HighlightLines("html", snippets)
		for i, l := range ls {
			rl := renderedLine{Kind: kindContext, Num: l.Line, Content: l.Snippet, Length: l.Length}
			if i < len(highlighted) {
				rl.Tokens = highlighted[i].Tokens
			}
			lines = append(lines, rl)
		}
	}

	side := func(title string, kind lineKind, ls []model.LineInfo) {
		if len(ls) == 0 {
			return
		}
		lines = append(lines, renderedLine{Kind: kindSection, Content: title})
		for _, l := range ls {
			lines = append(lines, renderedLine{Kind: kind, Num: l.Line, Content: l.Snippet, Length: l.Length})
		}
	}

	context(r.ContextBefore)
	side("server", kindRemoved, r.ServerLines)
	side("client", kindAdded, r.ClientLines)
	context(r.ContextAfter)

	return lines
}

// truncated reports whether the snippet is shorter than its source line.
func (rl renderedLine) truncated() bool {
	return rl.Length > mismatch.MaxSnippet && rl.Length > utf8.RuneCountInString(rl.Content)
}

// renderHighlightedContent renders line content with syntax tokens.
func renderHighlightedContent(rl renderedLine, prefix string) string {
	if len(rl.Tokens) == 0 {
		return prefix + rl.Content
	}

	var b strings.Builder
	b.WriteString(prefix)

	for _, tok := range rl.Tokens {
		if tok.Color != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(tok.Color)).Render(tok.Text))
		} else {
			b.WriteString(tok.Text)
		}
	}

	return b.String()
}

// styleLine applies styling to a rendered line for unified view.
func styleLine(rl renderedLine, width int) string {
	if rl.Kind == kindSection {
		return sectionStyle.Width(width).Render(rl.Content)
	}

	num := lineNumberStyle.Render(fmt.Sprintf("%4d", rl.Num))

	var prefix string
	var style func(string) string

	switch rl.Kind {
	case kindAdded:
		prefix = "+"
		style = func(s string) string { return addedLineStyle.Render(s) }
	case kindRemoved:
		prefix = "-"
		style = func(s string) string { return removedLineStyle.Render(s) }
	default:
		prefix = " "
		style = nil // context lines get syntax highlighting instead
	}

	var suffix string
	if rl.truncated() {
		suffix = lengthStyle.Render(fmt.Sprintf(" (%d chars)", rl.Length))
	}

	var content string
	if style == nil {
		content = renderHighlightedContent(rl, prefix)
	} else {
		content = style(prefix + rl.Content)
	}

	// Truncate long lines
	maxContent := width - 6 - lipgloss.Width(suffix)
	if maxContent > 0 && lipgloss.Width(content) > maxContent {
		content = truncate(prefix+rl.Content, maxContent)
		if style != nil {
			content = style(content)
		}
	}

	return num + " " + content + suffix
}

// styleLineSplit renders a line for split (side-by-side) view: server on the
// left, client on the right.
func styleLineSplit(rl renderedLine, halfWidth int) (left, right string) {
	if rl.Kind == kindSection {
		half := sectionStyle.Width(halfWidth).Render(rl.Content)
		if rl.Content == "client" {
			return strings.Repeat(" ", halfWidth), half
		}
		return half, ""
	}

	maxContent := halfWidth - 7
	num := lineNumberStyle.Render(fmt.Sprintf("%4d", rl.Num))
	content := truncate(rl.Content, maxContent)

	switch rl.Kind {
	case kindRemoved:
		left = num + " " + removedLineStyle.Render("-"+content)
	case kindAdded:
		left = strings.Repeat(" ", halfWidth)
		right = num + " " + addedLineStyle.Render("+"+content)
	default:
		left = num + " " + contextLineStyle.Render(" "+content)
		right = left
	}

	return left, right
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) > max {
		r := []rune(s)
		return string(r[:max-1]) + "…"
	}
	return s
}
