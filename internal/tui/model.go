// Package tui is the terminal host: a Bubble Tea program with a textarea
// editor and a glamour-rendered preview, driven by the engine.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/scribe/internal/checksum"
	"github.com/starford/scribe/internal/engine"
	"github.com/starford/scribe/internal/format"
	"github.com/starford/scribe/internal/preview"
	"github.com/starford/scribe/internal/render"
	"github.com/starford/scribe/internal/style"
)

// Engine is the part of *engine.Engine the terminal host drives. Blocking
// calls only ever run inside tea.Cmds: the engine loop may itself be
// waiting on Program.Send.
type Engine interface {
	SetText(text string)
	Toggle()
	ReloadStyles()
	Flush(ctx context.Context) error
	Text(ctx context.Context) (string, error)
	Status(ctx context.Context) (engine.Status, error)
	Theme(ctx context.Context) (style.Theme, error)
}

const callTimeout = 5 * time.Second

// Line formatting shortcuts, active while the toolbar is shown.
var formatKeys = map[string]string{
	"alt+1": "heading1",
	"alt+2": "heading2",
	"alt+3": "heading3",
	"alt+l": "bullet",
	"alt+n": "numbered",
	"alt+x": "checkbox",
	"alt+q": "quote",
	"alt+r": "rule",
}

type (
	stateMsg struct {
		text   string
		status engine.Status
		theme  style.Theme
		err    error
	}
	renderedMsg struct {
		content string
		err     error
	}
	flushedMsg struct{ err error }
)

// Model is the root Bubble Tea model.
type Model struct {
	eng Engine

	width  int
	height int

	mode    engine.Mode
	toolbar bool
	profile string
	dirty   bool

	editor textarea.Model
	viewer viewport.Model

	// previewText is the last text the engine pushed for rendering.
	previewText string
	theme       style.Theme
	colors      palette

	statusMsg string
	statusErr bool
}

// NewModel returns a model bound to eng. State is loaded on Init.
func NewModel(eng Engine) Model {
	ta := textarea.New()
	ta.Placeholder = "Start writing..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetWidth(defaultTerminalWidth - 4)
	ta.SetHeight(defaultTerminalHeight - chromeHeight)
	ta.Focus()

	theme := style.NewTheme(style.Defaults())
	return Model{
		eng:     eng,
		width:   defaultTerminalWidth,
		height:  defaultTerminalHeight,
		mode:    engine.Edit,
		toolbar: true,
		editor:  ta,
		viewer:  viewport.New(defaultTerminalWidth-4, defaultTerminalHeight-chromeHeight),
		theme:   theme,
		colors:  newPalette(theme.Rules),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("scribe"),
		m.loadState(),
		textarea.Blink,
	)
}

func (m Model) paneSize() (int, int) {
	w := max(m.width-4, 20)
	h := max(m.height-chromeHeight, 3)
	return w, h
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w, h := m.paneSize()
		m.editor.SetWidth(w)
		m.editor.SetHeight(h)
		m.viewer.Width, m.viewer.Height = w, h
		if m.mode == engine.Preview {
			return m, m.renderCmd()
		}
		return m, nil

	case stateMsg:
		if msg.err != nil {
			m.setStatus("Load failed: "+msg.err.Error(), true)
			return m, nil
		}
		m.editor.SetValue(msg.text)
		m.previewText = msg.text
		m.profile = msg.status.Profile
		m.dirty = msg.status.Dirty
		m.setMode(msg.status.Mode)
		m.applyTheme(msg.theme)
		if msg.status.LoadError != "" {
			m.setStatus(msg.status.LoadError, true)
		}
		if m.mode == engine.Preview {
			return m, m.renderCmd()
		}
		return m, nil

	case previewMsg:
		text, err := preview.Decode(msg.payload)
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.previewText = text
		return m, m.renderCmd()

	case renderedMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}
		m.viewer.SetContent(msg.content)
		return m, nil

	case viewMsg:
		m.setMode(msg.mode)
		return m, nil

	case toolbarMsg:
		m.toolbar = msg.visible
		return m, nil

	case stylesMsg:
		m.applyTheme(msg.theme)
		if m.mode == engine.Preview {
			return m, m.renderCmd()
		}
		return m, nil

	case savedMsg:
		if msg.attempt.OK() {
			m.dirty = checksum.String(m.editor.Value()) != msg.attempt.Checksum
			m.setStatus("Saved ✓", false)
		} else {
			m.setStatus("Save failed, retrying: "+msg.attempt.Err.Error(), true)
		}
		return m, nil

	case failedMsg:
		m.setStatus(msg.report.Message(), true)
		return m, nil

	case profileMsg:
		if msg.err != nil {
			m.setStatus("Profile "+msg.path+": "+msg.err.Error(), true)
		}
		return m, m.loadState()

	case flushedMsg:
		if msg.err != nil {
			m.setStatus("Save failed: "+msg.err.Error(), true)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+q":
			return m, tea.Quit
		case "ctrl+p":
			m.eng.Toggle()
			return m, nil
		case "ctrl+s":
			return m, m.flushCmd()
		case "ctrl+r":
			m.eng.ReloadStyles()
			return m, nil
		}
		if action, ok := formatKeys[msg.String()]; ok && m.mode == engine.Edit && m.toolbar {
			m.applyFormat(action)
			return m, nil
		}
	}

	if m.mode == engine.Preview {
		var cmd tea.Cmd
		m.viewer, cmd = m.viewer.Update(msg)
		return m, cmd
	}

	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if after := m.editor.Value(); after != before {
		m.eng.SetText(after)
		m.dirty = true
	}
	return m, cmd
}

func (m *Model) setMode(mode engine.Mode) {
	m.mode = mode
	if mode == engine.Edit {
		m.editor.Focus()
	} else {
		m.editor.Blur()
	}
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
}

func (m *Model) applyTheme(t style.Theme) {
	m.theme = t
	m.colors = newPalette(t.Rules)
	m.editor.FocusedStyle.Text = m.colors.text
	m.editor.BlurredStyle.Text = m.colors.text
	m.setMode(m.mode)
}

// applyFormat runs a line action on the cursor's line and keeps the cursor
// on that line.
func (m *Model) applyFormat(action string) {
	text := m.editor.Value()
	row := m.editor.Line()
	off := lineOffset(text, row)
	res, err := format.Apply(action, text, format.Selection{Start: off, End: off}, "")
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.editor.SetValue(res.Text)
	for i := strings.Count(res.Text, "\n"); i > row; i-- {
		m.editor.CursorUp()
	}
	m.editor.CursorEnd()
	m.eng.SetText(res.Text)
	m.dirty = true
}

// lineOffset is the byte offset of the start of line row.
func lineOffset(text string, row int) int {
	off := 0
	for i := 0; i < row; i++ {
		j := strings.IndexByte(text[off:], '\n')
		if j < 0 {
			return len(text)
		}
		off += j + 1
	}
	return off
}

func (m Model) loadState() tea.Cmd {
	eng := m.eng
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		var msg stateMsg
		if msg.text, msg.err = eng.Text(ctx); msg.err != nil {
			return msg
		}
		if msg.status, msg.err = eng.Status(ctx); msg.err != nil {
			return msg
		}
		msg.theme, msg.err = eng.Theme(ctx)
		return msg
	}
}

func (m Model) renderCmd() tea.Cmd {
	text, theme := m.previewText, m.theme
	width, _ := m.paneSize()
	return func() tea.Msg {
		out, err := render.Terminal(text, width, theme)
		return renderedMsg{content: out, err: err}
	}
}

func (m Model) flushCmd() tea.Cmd {
	eng := m.eng
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		return flushedMsg{err: eng.Flush(ctx)}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.colors.title.Render("scribe"))
	b.WriteString(" " + mutedStyle.Render(m.profile) + " ")
	b.WriteString(m.colors.badge.Render(m.mode.String()))
	if m.dirty {
		b.WriteString(mutedStyle.Render(" ●"))
	}
	b.WriteString("\n")

	if m.mode == engine.Preview {
		b.WriteString(paneStyle.Render(m.viewer.View()))
	} else {
		b.WriteString(paneStyle.Render(m.editor.View()))
	}
	b.WriteString("\n")

	switch {
	case m.statusMsg == "":
	case m.statusErr:
		b.WriteString(errorStyle.Render(m.statusMsg))
	default:
		b.WriteString(successStyle.Render(m.statusMsg))
	}
	b.WriteString("\n")

	help := []string{
		m.colors.helpEntry("ctrl+p", "toggle preview"),
		m.colors.helpEntry("ctrl+s", "save"),
		m.colors.helpEntry("ctrl+r", "reload styles"),
	}
	if m.mode == engine.Edit && m.toolbar {
		help = append(help,
			m.colors.helpEntry("alt+1-3", "heading"),
			m.colors.helpEntry("alt+l/n/x", "list/numbered/task"),
			m.colors.helpEntry("alt+q", "quote"),
		)
	}
	help = append(help, m.colors.helpEntry("ctrl+q", "quit"))
	b.WriteString(strings.Join(help, "  "))

	return appStyle.MaxWidth(m.width).MaxHeight(m.height).Render(b.String())
}
