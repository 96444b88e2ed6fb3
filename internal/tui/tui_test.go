package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sprite-ai/hydrodiff/internal/model"
)

func info(line int, s string) model.LineInfo {
	return model.LineInfo{Line: line, Snippet: s, Length: len(s)}
}

func testReport() *model.MismatchReport {
	return &model.MismatchReport{Mismatches: []model.MismatchRecord{
		{
			ContextBefore: []model.LineInfo{info(2, "<head>"), info(3, "<body>")},
			ServerLines:   []model.LineInfo{info(4, `<div id="root"><h1>Hello Server</h1></div>`)},
			ClientLines:   []model.LineInfo{info(4, `<div id="root"><h1>Hello Client</h1></div>`)},
			ContextAfter:  []model.LineInfo{info(5, "</body>"), info(6, "</html>")},
		},
		{
			ContextBefore: []model.LineInfo{info(9, "<main>")},
			ServerLines:   []model.LineInfo{},
			ClientLines:   []model.LineInfo{info(10, `<p id="root-note">late</p>`)},
			ContextAfter:  []model.LineInfo{},
		},
	}}
}

func setupModel(t *testing.T) Model {
	t.Helper()
	m := New(testReport())
	// Simulate window size
	newM, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return newM.(Model)
}

func press(m Model, r rune) Model {
	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return newM.(Model)
}

func TestModelInit(t *testing.T) {
	m := setupModel(t)

	if m.index != 0 {
		t.Errorf("expected index 0, got %d", m.index)
	}
	// 2 context + section + 1 server + section + 1 client + 2 context
	if len(m.lines) != 8 {
		t.Errorf("expected 8 rendered lines, got %d", len(m.lines))
	}
}

func TestNavigation(t *testing.T) {
	m := setupModel(t)

	m = press(m, 'n')
	if m.index != 1 {
		t.Errorf("expected index 1 after next, got %d", m.index)
	}

	// Move past end, should stay
	m = press(m, 'n')
	if m.index != 1 {
		t.Errorf("expected index 1 at end, got %d", m.index)
	}

	m = press(m, 'N')
	if m.index != 0 {
		t.Errorf("expected index 0 after prev, got %d", m.index)
	}

	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = newM.(Model)
	if m.index != 1 {
		t.Errorf("expected tab to select the next mismatch, got %d", m.index)
	}
}

func TestScrolling(t *testing.T) {
	m := setupModel(t)

	m = press(m, 'j')
	if m.scrollOffset != 1 {
		t.Errorf("expected scrollOffset 1, got %d", m.scrollOffset)
	}

	m = press(m, 'k')
	if m.scrollOffset != 0 {
		t.Errorf("expected scrollOffset 0, got %d", m.scrollOffset)
	}

	// Can't scroll above 0
	m = press(m, 'k')
	if m.scrollOffset != 0 {
		t.Errorf("expected scrollOffset 0 at top, got %d", m.scrollOffset)
	}

	// Selecting another record resets the scroll
	m = press(m, 'j')
	m = press(m, 'n')
	if m.scrollOffset != 0 {
		t.Errorf("expected scrollOffset reset on next mismatch, got %d", m.scrollOffset)
	}
}

func TestToggleView(t *testing.T) {
	m := setupModel(t)

	if m.splitView {
		t.Error("expected unified view by default")
	}

	m = press(m, 'v')
	if !m.splitView {
		t.Error("expected split view after toggle")
	}
	if !strings.Contains(m.View(), "Hello Client") {
		t.Error("expected split view to show the client line")
	}

	m = press(m, 'v')
	if m.splitView {
		t.Error("expected unified view after second toggle")
	}
}

func TestViewRenders(t *testing.T) {
	m := setupModel(t)

	view := m.View()
	for _, want := range []string{"Hydration mismatch #1", "Hello Server", "Hello Client", "Mismatch 1/2"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestCleanReport(t *testing.T) {
	m := New(nil)
	newM, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = newM.(Model)

	if !strings.Contains(m.View(), "No hydration mismatches found.") {
		t.Error("expected clean message for an empty report")
	}

	// Keys on an empty report are harmless
	m = press(m, 'n')
	m = press(m, 'j')
	if m.index != 0 || m.scrollOffset != 0 {
		t.Errorf("expected no movement, got index %d offset %d", m.index, m.scrollOffset)
	}
}

func TestTruncatedLineShowsLength(t *testing.T) {
	rl := renderedLine{Kind: kindRemoved, Num: 7, Content: strings.Repeat("x", 120) + "...", Length: 300}

	out := styleLine(rl, 200)
	if !strings.Contains(out, "(300 chars)") {
		t.Errorf("expected length annotation, got %q", out)
	}

	rl = renderedLine{Kind: kindRemoved, Num: 7, Content: "short", Length: 5}
	if strings.Contains(styleLine(rl, 200), "chars)") {
		t.Error("short lines carry no length annotation")
	}
}

func TestQuit(t *testing.T) {
	m := setupModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestHelpToggle(t *testing.T) {
	m := setupModel(t)

	m = press(m, '?')
	if !m.showHelp {
		t.Error("expected help to be shown")
	}

	view := m.View()
	if !strings.Contains(view, "keyboard shortcuts") {
		t.Error("expected help view to contain shortcuts")
	}
	if !strings.Contains(view, "next mismatch") {
		t.Error("expected help view to list mismatch navigation")
	}
}
