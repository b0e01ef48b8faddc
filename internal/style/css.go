package style

import (
	"fmt"
	"strconv"
	"strings"
)

var selectors = map[Key]string{
	NoState:           "body",
	H1:                "h1",
	H2:                "h2",
	H3:                "h3",
	Italic:            "em",
	Bold:              "strong",
	InlineCodeBlock:   "code",
	Link:              "a",
	CheckBoxUnChecked: `input[type="checkbox"]`,
	CheckBoxChecked:   `input[type="checkbox"]:checked`,
}

// CSS generates the preview stylesheet for m.
func (m Map) CSS() string {
	var b strings.Builder
	fmt.Fprintf(&b, "html { background: %s; }\n", colorDarkerBG)
	b.WriteString("#content { max-width: 48em; margin: 0 auto; padding: 1em; }\n")
	for _, k := range Keys {
		attr, ok := m[k]
		if !ok {
			continue
		}
		decls := attr.declarations(k == CheckBoxUnChecked || k == CheckBoxChecked)
		if len(decls) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s { %s; }\n", selectors[k], strings.Join(decls, "; "))
	}
	return b.String()
}

func (a Attr) declarations(checkbox bool) []string {
	var out []string
	if a.Foreground != nil {
		out = append(out, "color: "+*a.Foreground)
		if checkbox {
			out = append(out, "accent-color: "+*a.Foreground)
		}
	}
	if a.Background != nil {
		out = append(out, "background-color: "+*a.Background)
	}
	if a.Bold != nil {
		out = append(out, "font-weight: "+pick(*a.Bold, "bold", "normal"))
	}
	if a.Italic != nil {
		out = append(out, "font-style: "+pick(*a.Italic, "italic", "normal"))
	}
	if a.Underline != nil {
		out = append(out, "text-decoration: "+pick(*a.Underline, "underline", "none"))
	}
	if a.FontSize != nil {
		out = append(out, "font-size: "+strconv.FormatFloat(*a.FontSize, 'f', -1, 64)+"pt")
	}
	if a.FontFamily != nil {
		out = append(out, "font-family: "+*a.FontFamily)
	}
	return out
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
