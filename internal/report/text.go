package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/sprite-ai/hydrodiff/internal/diff"
	"github.com/sprite-ai/hydrodiff/internal/model"
)

// ColorMode controls terminal styling of the text report.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // style only when w is a color terminal
	ColorNever                   // plain text
	ColorAlways                  // style even when w is not a terminal
)

// Options tunes the text renderer.
type Options struct {
	Color ColorMode
	// Highlight applies markup syntax colors to context lines.
	Highlight bool
}

// Line prefixes in the text report.
const (
	prefixContext = "  "
	prefixRemoved = "- "
	prefixAdded   = "+ "
)

// Color palette.
var (
	colorRed    = lipgloss.Color("#ff5555")
	colorGreen  = lipgloss.Color("#50fa7b")
	colorPurple = lipgloss.Color("#bd93f9")
	colorDim    = lipgloss.Color("#6272a4")
	colorFg     = lipgloss.Color("#f8f8f2")
)

type palette struct {
	r       *lipgloss.Renderer
	header  lipgloss.Style
	lineNum lipgloss.Style
	context lipgloss.Style
	removed lipgloss.Style
	added   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

func newPalette(w io.Writer, mode ColorMode) palette {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	case ColorAlways:
		r.SetColorProfile(termenv.TrueColor)
	}

	return palette{
		r:       r,
		header:  r.NewStyle().Foreground(colorPurple).Bold(true),
		lineNum: r.NewStyle().Foreground(colorDim),
		context: r.NewStyle().Foreground(colorFg),
		removed: r.NewStyle().Foreground(colorRed),
		added:   r.NewStyle().Foreground(colorGreen),
		success: r.NewStyle().Foreground(colorGreen).Bold(true),
		failure: r.NewStyle().Foreground(colorRed).Bold(true),
	}
}

// RenderText writes the human-readable report.
func RenderText(w io.Writer, r *model.MismatchReport, opts Options) error {
	p := newPalette(w, opts.Color)

	if r.Clean() {
		_, err := fmt.Fprintln(w, p.success.Render("No hydration mismatches found."))
		return err
	}

	width := numberWidth(r)
	var b strings.Builder
	for i, m := range r.Mismatches {
		b.WriteString(p.header.Render(fmt.Sprintf("Hydration mismatch #%d", i+1)))
		b.WriteByte('\n')

		p.writeContext(&b, m.ContextBefore, width, opts.Highlight)
		for _, l := range m.ServerLines {
			p.writeLine(&b, p.removed, prefixRemoved, l, width)
		}
		for _, l := range m.ClientLines {
			p.writeLine(&b, p.added, prefixAdded, l, width)
		}
		p.writeContext(&b, m.ContextAfter, width, opts.Highlight)
		b.WriteByte('\n')
	}

	records, removed, added := r.Stats()
	noun := "mismatch"
	if records != 1 {
		noun = "mismatches"
	}
	b.WriteString(p.failure.Render(fmt.Sprintf("Found %d hydration %s (%d server lines, %d client lines).", records, noun, removed, added)))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func (p palette) writeLine(b *strings.Builder, style lipgloss.Style, prefix string, l model.LineInfo, width int) {
	b.WriteString(style.Render(prefix))
	b.WriteString(p.lineNum.Render(fmt.Sprintf("%*d │ ", width, l.Line)))
	b.WriteString(style.Render(l.Snippet))
	b.WriteByte('\n')
}

func (p palette) writeContext(b *strings.Builder, ls []model.LineInfo, width int, highlight bool) {
	if !highlight {
		for _, l := range ls {
			p.writeLine(b, p.context, prefixContext, l, width)
		}
		return
	}

	snippets := make([]string, len(ls))
	for i, l := range ls {
		snippets[i] = l.Snippet
	}
	highlighted := diff.HighlightLines("html", snippets)

	for i, l := range ls {
		b.WriteString(prefixContext)
		b.WriteString(p.lineNum.Render(fmt.Sprintf("%*d │ ", width, l.Line)))
		for _, tok := range highlighted[i].Tokens {
			if tok.Color == "" {
				b.WriteString(p.context.Render(tok.Text))
				continue
			}
			b.WriteString(p.r.NewStyle().Foreground(lipgloss.Color(tok.Color)).Render(tok.Text))
		}
		b.WriteByte('\n')
	}
}

// numberWidth returns the digit count of the largest line number in r.
func numberWidth(r *model.MismatchReport) int {
	maxLine := 0
	for _, m := range r.Mismatches {
		for _, group := range [][]model.LineInfo{m.ContextBefore, m.ServerLines, m.ClientLines, m.ContextAfter} {
			for _, l := range group {
				maxLine = max(maxLine, l.Line)
			}
		}
	}
	return max(len(fmt.Sprint(maxLine)), 3)
}
