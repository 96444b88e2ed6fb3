package diff

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// HighlightedLine represents a line with syntax-highlighted tokens.
type HighlightedLine struct {
	Tokens []Token
}

// Token is a syntax-highlighted chunk of text.
type Token struct {
	Text  string
	Color string // hex color string, empty for default
}

// Plain returns the concatenated plain text of all tokens.
func (hl HighlightedLine) Plain() string {
	var b strings.Builder
	for _, t := range hl.Tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// HighlightLines applies markup highlighting to snippet lines using the
// lexer registered for language (e.g. "html"). Returns one HighlightedLine
// per input line; unknown languages pass through uncolored.
func HighlightLines(language string, lines []string) []HighlightedLine {
	lexer := lexers.Get(language)
	if lexer == nil {
		return plainLines(lines)
	}
	lexer = chroma.Coalesce(lexer)

	// Snippets are tokenised independently: a truncated line may leave a tag
	// or attribute unterminated, and that must not bleed into the next one.
	style := styles.Get("dracula")
	if style == nil {
		style = styles.Fallback
	}

	result := make([]HighlightedLine, 0, len(lines))
	for _, line := range lines {
		iterator, err := lexer.Tokenise(nil, line)
		if err != nil {
			result = append(result, HighlightedLine{Tokens: []Token{{Text: line}}})
			continue
		}

		var hl HighlightedLine
		for _, token := range iterator.Tokens() {
			text := strings.TrimRight(token.Value, "\n")
			if text == "" {
				continue
			}
			hl.Tokens = append(hl.Tokens, Token{
				Text:  text,
				Color: tokenColor(style, token.Type),
			})
		}
		if len(hl.Tokens) == 0 {
			hl.Tokens = []Token{{Text: line}}
		}
		result = append(result, hl)
	}

	return result
}

func plainLines(lines []string) []HighlightedLine {
	result := make([]HighlightedLine, len(lines))
	for i, line := range lines {
		result[i] = HighlightedLine{Tokens: []Token{{Text: line}}}
	}
	return result
}

func tokenColor(style *chroma.Style, tt chroma.TokenType) string {
	entry := style.Get(tt)
	if entry.Colour.IsSet() {
		return entry.Colour.String()
	}
	return ""
}
