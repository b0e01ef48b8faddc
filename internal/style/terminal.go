package style

import (
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// Lipgloss converts a to a terminal style. Font size and family have no
// terminal equivalent and are ignored.
func (a Attr) Lipgloss() lipgloss.Style {
	s := lipgloss.NewStyle()
	if a.Foreground != nil {
		s = s.Foreground(lipgloss.Color(*a.Foreground))
	}
	if a.Background != nil {
		s = s.Background(lipgloss.Color(*a.Background))
	}
	if a.Bold != nil {
		s = s.Bold(*a.Bold)
	}
	if a.Italic != nil {
		s = s.Italic(*a.Italic)
	}
	if a.Underline != nil {
		s = s.Underline(*a.Underline)
	}
	return s
}

// Glamour returns a glamour style config based on the dark standard style
// with m's rules applied.
func (m Map) Glamour() ansi.StyleConfig {
	cfg := styles.DarkStyleConfig

	applyPrimitive(&cfg.Document.StylePrimitive, m[NoState])
	applyPrimitive(&cfg.H1.StylePrimitive, m[H1])
	applyPrimitive(&cfg.H2.StylePrimitive, m[H2])
	applyPrimitive(&cfg.H3.StylePrimitive, m[H3])
	applyPrimitive(&cfg.Emph, m[Italic])
	applyPrimitive(&cfg.Strong, m[Bold])
	applyPrimitive(&cfg.Code.StylePrimitive, m[InlineCodeBlock])
	applyPrimitive(&cfg.Link, m[Link])
	applyPrimitive(&cfg.LinkText, m[Link])

	applyPrimitive(&cfg.Task.StylePrimitive, m[CheckBoxUnChecked])
	cfg.Task.Unticked = m[CheckBoxUnChecked].Lipgloss().Render("[ ]") + " "
	cfg.Task.Ticked = m[CheckBoxChecked].Lipgloss().Render("[✓]") + " "
	return cfg
}

func applyPrimitive(p *ansi.StylePrimitive, a Attr) {
	if a.Foreground != nil {
		p.Color = a.Foreground
	}
	if a.Background != nil {
		p.BackgroundColor = a.Background
	}
	if a.Bold != nil {
		p.Bold = a.Bold
	}
	if a.Italic != nil {
		p.Italic = a.Italic
	}
	if a.Underline != nil {
		p.Underline = a.Underline
	}
}
