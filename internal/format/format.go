// Package format implements the Markdown formatting helpers offered by the
// editor toolbar. Every helper is a pure function of the text and the
// current selection.
package format

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/starford/scribe/internal/apperr"
)

// Selection is a byte range [Start, End) in the document. Start == End is a
// cursor position.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Empty reports whether the selection is a bare cursor.
func (s Selection) Empty() bool {
	return s.Start == s.End
}

// Result is the text after a formatting action and the selection the editor
// should show.
type Result struct {
	Text      string
	Selection Selection
}

// Placeholders inserted when nothing is selected.
const (
	PlaceholderText = "text"
	PlaceholderCode = "code"
	PlaceholderLink = "link text"
	PlaceholderAlt  = "alt text"
)

// Clamp bounds sel to text, orders it and moves both ends back onto rune
// boundaries.
func Clamp(text string, sel Selection) Selection {
	if sel.Start > sel.End {
		sel.Start, sel.End = sel.End, sel.Start
	}
	sel.Start = boundary(text, sel.Start)
	sel.End = boundary(text, sel.End)
	return sel
}

func boundary(text string, i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(text) {
		return len(text)
	}
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

// Wrap surrounds the selection with before and after. With an empty
// selection it inserts a placeholder and selects it.
func Wrap(text string, sel Selection, before, after string) Result {
	sel = Clamp(text, sel)
	if sel.Empty() {
		inserted := before + PlaceholderText + after
		start := sel.Start + len(before)
		return Result{
			Text:      text[:sel.Start] + inserted + text[sel.Start:],
			Selection: Selection{Start: start, End: start + len(PlaceholderText)},
		}
	}
	wrapped := before + text[sel.Start:sel.End] + after
	end := sel.Start + len(wrapped)
	return Result{
		Text:      text[:sel.Start] + wrapped + text[sel.End:],
		Selection: Selection{Start: end, End: end},
	}
}

// LineStart inserts prefix at the start of the line holding the selection
// start and leaves the cursor right after it.
func LineStart(text string, sel Selection, prefix string) Result {
	sel = Clamp(text, sel)
	lineStart := strings.LastIndexByte(text[:sel.Start], '\n') + 1
	pos := lineStart + len(prefix)
	return Result{
		Text:      text[:lineStart] + prefix + text[lineStart:],
		Selection: Selection{Start: pos, End: pos},
	}
}

// Replace substitutes the selection with s and places the cursor after it.
func Replace(text string, sel Selection, s string) Result {
	sel = Clamp(text, sel)
	end := sel.Start + len(s)
	return Result{
		Text:      text[:sel.Start] + s + text[sel.End:],
		Selection: Selection{Start: end, End: end},
	}
}

func Bold(text string, sel Selection) Result       { return Wrap(text, sel, "**", "**") }
func Italic(text string, sel Selection) Result     { return Wrap(text, sel, "*", "*") }
func Strike(text string, sel Selection) Result     { return Wrap(text, sel, "~~", "~~") }
func InlineCode(text string, sel Selection) Result { return Wrap(text, sel, "`", "`") }
func Bullet(text string, sel Selection) Result     { return LineStart(text, sel, "- ") }
func Numbered(text string, sel Selection) Result   { return LineStart(text, sel, "1. ") }
func Checkbox(text string, sel Selection) Result   { return LineStart(text, sel, "- [ ] ") }
func Quote(text string, sel Selection) Result      { return LineStart(text, sel, "> ") }

// Heading prefixes the current line with a level 1-3 heading marker.
func Heading(text string, sel Selection, level int) Result {
	level = max(1, min(level, 3))
	return LineStart(text, sel, strings.Repeat("#", level)+" ")
}

// CodeBlock fences the selection, or a placeholder.
func CodeBlock(text string, sel Selection) Result {
	sel = Clamp(text, sel)
	body := PlaceholderCode
	if !sel.Empty() {
		body = text[sel.Start:sel.End]
	}
	return Replace(text, sel, "```\n"+body+"\n```")
}

// Link turns the selection (or a placeholder) into a link to url.
func Link(text string, sel Selection, url string) Result {
	sel = Clamp(text, sel)
	label := PlaceholderLink
	if !sel.Empty() {
		label = text[sel.Start:sel.End]
	}
	return Replace(text, sel, fmt.Sprintf("[%s](%s)", label, url))
}

// Image inserts an image reference to url at the selection.
func Image(text string, sel Selection, url string) Result {
	return Replace(text, sel, fmt.Sprintf("![%s](%s)", PlaceholderAlt, url))
}

// HorizontalRule appends a rule after the line holding the cursor.
func HorizontalRule(text string, sel Selection) Result {
	sel = Clamp(text, sel)
	lineEnd := len(text)
	if i := strings.IndexByte(text[sel.End:], '\n'); i >= 0 {
		lineEnd = sel.End + i
	}
	return Replace(text, Selection{Start: lineEnd, End: lineEnd}, "\n\n---\n")
}

// Actions lists the names accepted by Apply.
var Actions = []string{
	"bold", "italic", "strike", "inline_code", "code_block",
	"heading1", "heading2", "heading3",
	"bullet", "numbered", "checkbox", "quote", "rule", "link", "image",
}

// Apply runs the named action. url is used by link and image, which reject
// an empty url.
func Apply(action, text string, sel Selection, url string) (Result, error) {
	switch action {
	case "bold":
		return Bold(text, sel), nil
	case "italic":
		return Italic(text, sel), nil
	case "strike":
		return Strike(text, sel), nil
	case "inline_code":
		return InlineCode(text, sel), nil
	case "code_block":
		return CodeBlock(text, sel), nil
	case "heading1":
		return Heading(text, sel, 1), nil
	case "heading2":
		return Heading(text, sel, 2), nil
	case "heading3":
		return Heading(text, sel, 3), nil
	case "bullet":
		return Bullet(text, sel), nil
	case "numbered":
		return Numbered(text, sel), nil
	case "checkbox":
		return Checkbox(text, sel), nil
	case "quote":
		return Quote(text, sel), nil
	case "rule":
		return HorizontalRule(text, sel), nil
	case "link", "image":
		if url == "" {
			return Result{}, fmt.Errorf("format: %s requires a url: %w", action, apperr.ErrInvalidArgument)
		}
		if action == "link" {
			return Link(text, sel, url), nil
		}
		return Image(text, sel, url), nil
	default:
		return Result{}, fmt.Errorf("format: %q: %w", action, apperr.ErrUnknownFormat)
	}
}
