package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"

	"github.com/starford/scribe/internal/style"
)

// Terminal renders Markdown as ANSI text wrapped at width, styled by theme.
func Terminal(text string, width int, theme style.Theme) (string, error) {
	if width <= 0 {
		width = 80
	}
	rules := theme.Rules
	if rules == nil {
		rules = style.Defaults()
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(rules.Glamour()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("render: terminal renderer: %w", err)
	}
	out, err := r.Render(text)
	if err != nil {
		return "", fmt.Errorf("render: terminal: %w", err)
	}
	return out, nil
}
