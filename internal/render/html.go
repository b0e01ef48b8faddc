// Package render turns the document into HTML for the browser preview and
// into ANSI text for the terminal preview.
package render

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/starford/scribe/internal/preview"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// policy is the UGC policy plus the disabled checkboxes of task lists.
var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	return p
}()

// HTML renders Markdown to sanitized HTML.
func HTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render: markdown: %w", err)
	}
	return policy.Sanitize(buf.String()), nil
}

// Payload decodes an engine preview payload and renders it to HTML.
func Payload(payload string) (string, error) {
	text, err := preview.Decode(payload)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return HTML(text)
}
