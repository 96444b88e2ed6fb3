// Package tui implements the Bubble Tea viewer for mismatch reports.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/hydrodiff/internal/model"
)

// Model is the top-level Bubble Tea model for the report viewer.
type Model struct {
	report *model.MismatchReport

	// UI state
	width  int
	height int

	// Mismatch list
	index int // currently selected record

	// Record viewport
	scrollOffset int
	viewHeight   int

	// Rendered lines for the current record
	lines []renderedLine

	// View mode
	splitView bool

	// Help
	showHelp bool
}

// New creates a new TUI model for a report. A nil report is shown as clean.
func New(r *model.MismatchReport) Model {
	if r == nil {
		r = &model.MismatchReport{}
	}
	m := Model{report: r}
	m.updateLines()
	return m
}

func (m *Model) updateLines() {
	if len(m.report.Mismatches) == 0 {
		m.lines = nil
		return
	}
	m.lines = renderRecord(m.report.Mismatches[m.index])
}

func (m *Model) selectRecord(i int) {
	if i < 0 || i >= len(m.report.Mismatches) || i == m.index {
		return
	}
	m.index = i
	m.scrollOffset = 0
	m.updateLines()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewHeight = m.height - 4 // status bar + borders
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Down):
			if m.scrollOffset < len(m.lines)-1 {
				m.scrollOffset++
			}

		case key.Matches(msg, keys.Up):
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}

		case key.Matches(msg, keys.Top):
			m.scrollOffset = 0

		case key.Matches(msg, keys.NextMismatch):
			m.selectRecord(m.index + 1)

		case key.Matches(msg, keys.PrevMismatch):
			m.selectRecord(m.index - 1)

		case key.Matches(msg, keys.Toggle):
			m.splitView = !m.splitView

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	listWidth := m.listWidth()
	recordWidth := m.width - listWidth - 1

	list := m.renderList(listWidth, m.height-2)
	record := m.renderRecordView(recordWidth, m.height-2)

	main := lipgloss.JoinHorizontal(lipgloss.Top, list, " ", record)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) listWidth() int {
	w := 24
	if w > m.width/3 {
		w = m.width / 3
	}
	return w
}

// listEntry summarizes a record as "#n  L<line>  -s +c".
func listEntry(i int, r model.MismatchRecord) string {
	line := 0
	switch {
	case len(r.ServerLines) > 0:
		line = r.ServerLines[0].Line
	case len(r.ClientLines) > 0:
		line = r.ClientLines[0].Line
	}
	return fmt.Sprintf("#%-3d L%-5d -%d +%d", i+1, line, len(r.ServerLines), len(r.ClientLines))
}

func (m Model) renderList(width, height int) string {
	var b strings.Builder

	for i, r := range m.report.Mismatches {
		style := listItemStyle
		if i == m.index {
			style = listItemSelectedStyle
		}
		b.WriteString(style.Width(width - 4).Render(listEntry(i, r)))
		if i < len(m.report.Mismatches)-1 {
			b.WriteByte('\n')
		}
	}

	return listStyle.Width(width).Height(height - 2).Render(b.String())
}

func (m Model) renderRecordView(width, height int) string {
	innerWidth := width - 4 // borders + padding
	innerHeight := height - 2

	if len(m.report.Mismatches) == 0 {
		return recordViewStyle.Width(width).Height(innerHeight).Render(cleanStyle.Render("No hydration mismatches found."))
	}

	header := recordHeaderStyle.Render(fmt.Sprintf("Hydration mismatch #%d", m.index+1))

	visibleLines := innerHeight - 2 // header takes some space
	if visibleLines < 1 {
		visibleLines = 1
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')

	if m.splitView {
		m.renderSplit(&b, innerWidth, visibleLines)
	} else {
		m.renderUnified(&b, innerWidth, visibleLines)
	}

	return recordViewStyle.Width(width).Height(innerHeight).Render(b.String())
}

func (m Model) visibleRange(visibleLines int) (int, int) {
	end := m.scrollOffset + visibleLines
	if end > len(m.lines) {
		end = len(m.lines)
	}
	return m.scrollOffset, end
}

func (m Model) renderUnified(b *strings.Builder, width, visibleLines int) {
	start, end := m.visibleRange(visibleLines)
	for i := start; i < end; i++ {
		b.WriteString(styleLine(m.lines[i], width))
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
}

func (m Model) renderSplit(b *strings.Builder, width, visibleLines int) {
	halfWidth := (width - 3) / 2 // -3 for separator

	start, end := m.visibleRange(visibleLines)
	for i := start; i < end; i++ {
		left, right := styleLineSplit(m.lines[i], halfWidth)
		b.WriteString(lipgloss.NewStyle().Width(halfWidth).Render(left))
		b.WriteString(" │ ")
		b.WriteString(right)
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
}

func (m Model) renderStatusBar() string {
	records, removed, added := m.report.Stats()

	left := " Clean"
	if records > 0 {
		left = fmt.Sprintf(" Mismatch %d/%d", m.index+1, records)
		if len(m.lines) > 0 {
			left += fmt.Sprintf("  Line %d/%d", m.scrollOffset+1, len(m.lines))
		}
	}

	mode := "unified"
	if m.splitView {
		mode = "split"
	}

	right := fmt.Sprintf("-%d +%d  %s  ? help ", removed, added, mode)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(recordHeaderStyle.Render("hydrodiff: keyboard shortcuts"))
	b.WriteString("\n\n")

	for _, k := range []key.Binding{
		keys.Up, keys.Down, keys.NextMismatch, keys.PrevMismatch,
		keys.Top, keys.Toggle, keys.Help, keys.Quit,
	} {
		h := k.Help()
		fmt.Fprintf(&b, "  %s  %s\n", helpKeyStyle.Width(12).Render(h.Key), h.Desc)
	}

	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render("Press ? to close help"))

	return b.String()
}

// Run starts the viewer and blocks until the user quits.
func Run(r *model.MismatchReport) error {
	p := tea.NewProgram(New(r), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
