package tui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"typeinspector/internal/core/inspector"
	"typeinspector/internal/core/workspace"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	gutterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	caretStyle = lipgloss.NewStyle().Reverse(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8FAFC")).
			Background(lipgloss.Color("#1E293B"))

	positionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94A3B8")).
			Background(lipgloss.Color("#1E293B")).
			Padding(0, 1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Background(lipgloss.Color("#1E293B")).
			Bold(true)
)

// chrome is the number of rows used by the title, status bar and help.
const chrome = 4

// Model is the terminal editor: one buffer with a caret and a status bar
// showing the inspector widget.
type Model struct {
	ws     *workspace.Workspace
	editor *workspace.Editor
	widget *inspector.Widget
	bar    *StatusBar

	keys   keyMap
	help   help.Model
	width  int
	height int
	top    int
}

func NewModel(ws *workspace.Workspace, editor *workspace.Editor, widget *inspector.Widget, bar *StatusBar) Model {
	return Model{
		ws:     ws,
		editor: editor,
		widget: widget,
		bar:    bar,
		keys:   defaultKeyMap(),
		help:   help.New(),
		width:  80,
		height: 24,
	}
}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return installMsg{} }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case installMsg:
		m.widget.Install(m.bar)
		return m, nil
	case invokeMsg:
		msg.fn()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.scrollToCaret()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.widget.Refresh()
		return m, nil
	}

	li := m.lines()
	caret := m.editor.CaretOffset()
	next := caret
	switch {
	case key.Matches(msg, m.keys.Left):
		next = li.left(caret)
	case key.Matches(msg, m.keys.Right):
		next = li.right(caret)
	case key.Matches(msg, m.keys.Up):
		next = li.up(caret)
	case key.Matches(msg, m.keys.Down):
		next = li.down(caret)
	case key.Matches(msg, m.keys.WordNext):
		next = li.wordForward(caret)
	case key.Matches(msg, m.keys.WordPrev):
		next = li.wordBackward(caret)
	case key.Matches(msg, m.keys.LineStart):
		next = li.lineStart(caret)
	case key.Matches(msg, m.keys.LineEnd):
		next = li.lineEnd(caret)
	case key.Matches(msg, m.keys.Top):
		next = 0
	case key.Matches(msg, m.keys.Bottom):
		next = li.total()
	default:
		return m, nil
	}

	if next != caret {
		if err := m.ws.MoveCaret(m.editor, next); err != nil {
			slog.Warn("failed to move caret", "error", err)
		}
		m.scrollToCaret()
	}
	return m, nil
}

func (m Model) lines() lineIndex {
	snap, ok := m.ws.Snapshot(m.editor.Buffer())
	if !ok {
		return indexLines(nil)
	}
	return indexLines(snap.Content)
}

func (m Model) visibleRows() int {
	rows := m.height - chrome
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) scrollToCaret() {
	line, _ := m.lines().locate(m.editor.CaretOffset())
	rows := m.visibleRows()
	if line < m.top {
		m.top = line
	}
	if line >= m.top+rows {
		m.top = line - rows + 1
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(filepath.Base(string(m.editor.Buffer()))))
	b.WriteString("\n")

	li := m.lines()
	caretLine, caretCol := li.locate(m.editor.CaretOffset())
	gutterWidth := len(fmt.Sprint(li.lineCount()))
	rows := m.visibleRows()
	for row := 0; row < rows; row++ {
		line := m.top + row
		if line >= li.lineCount() {
			b.WriteString("\n")
			continue
		}
		b.WriteString(gutterStyle.Render(fmt.Sprintf("%*d ", gutterWidth, line+1)))
		text := li.line(line)
		if line == caretLine {
			b.WriteString(renderCaretLine(text, caretCol))
		} else {
			b.WriteString(string(text))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.statusBar(caretLine, caretCol))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func renderCaretLine(text []rune, col int) string {
	if col >= len(text) {
		return string(text) + caretStyle.Render(" ")
	}
	return string(text[:col]) + caretStyle.Render(string(text[col])) + string(text[col+1:])
}

// statusBar lays out the caret position on the left and the widget text in
// the remaining width, aligned as the widget asks.
func (m Model) statusBar(line, col int) string {
	position := positionStyle.Render(fmt.Sprintf("Ln %d, Col %d", line+1, col+1))
	remaining := m.width - lipgloss.Width(position)
	if remaining < 0 {
		remaining = 0
	}
	text := typeStyle.
		Width(remaining).
		Align(lipgloss.Position(m.widget.Alignment())).
		Render(m.widget.Text())
	return statusBarStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, position, text))
}
