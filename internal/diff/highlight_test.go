package diff

import (
	"testing"
)

func TestHighlightLines(t *testing.T) {
	lines := []string{
		`<div id="root">`,
		"",
		`  <h1 class="title">Hello</h1>`,
		`</div>`,
	}

	highlighted := HighlightLines("html", lines)

	if len(highlighted) != len(lines) {
		t.Fatalf("expected %d highlighted lines, got %d", len(lines), len(highlighted))
	}

	if len(highlighted[0].Tokens) < 2 {
		t.Error("expected the tag to be split into several tokens")
	}

	for i, line := range lines {
		if highlighted[i].Plain() != line {
			t.Errorf("line %d: plain text mismatch: %q", i, highlighted[i].Plain())
		}
	}
}

func TestHighlightTruncatedSnippet(t *testing.T) {
	lines := []string{`<a href="https://example.com/very/long...`, `<p>after</p>`}
	highlighted := HighlightLines("html", lines)

	if highlighted[1].Plain() != "<p>after</p>" {
		t.Errorf("unterminated attribute leaked into next line: %q", highlighted[1].Plain())
	}
}

func TestHighlightLinesUnknownLanguage(t *testing.T) {
	lines := []string{"some content", "more content"}
	highlighted := HighlightLines("no-such-language-xyz", lines)

	if len(highlighted) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(highlighted))
	}
	if highlighted[0].Plain() != "some content" {
		t.Errorf("expected plain passthrough, got %q", highlighted[0].Plain())
	}
}
