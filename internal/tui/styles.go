package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/scribe/internal/style"
)

// Chrome colors. Document colors come from the style theme.
var (
	colorMuted  = lipgloss.Color("#7c6f64")
	colorDanger = lipgloss.Color("#fb4934")
	colorOK     = lipgloss.Color("#98971a")
	colorBorder = lipgloss.Color("#504945")
)

var (
	appStyle = lipgloss.NewStyle().Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorOK)
	errorStyle   = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)

	helpDescStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

// palette holds the theme-derived styles.
type palette struct {
	title   lipgloss.Style
	text    lipgloss.Style
	helpKey lipgloss.Style
	badge   lipgloss.Style
}

func newPalette(rules style.Map) palette {
	if rules == nil {
		rules = style.Defaults()
	}
	return palette{
		title:   rules[style.H1].Lipgloss(),
		text:    rules[style.NoState].Lipgloss(),
		helpKey: rules[style.Link].Lipgloss().Underline(false).Bold(true),
		badge:   rules[style.CheckBoxChecked].Lipgloss(),
	}
}

func (p palette) helpEntry(key, desc string) string {
	return p.helpKey.Render("["+key+"]") + " " + helpDescStyle.Render(desc)
}

const (
	defaultTerminalWidth  = 80
	defaultTerminalHeight = 24
	// header, status and help lines plus the pane border.
	chromeHeight = 5
)
