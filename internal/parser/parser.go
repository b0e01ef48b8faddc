// Package parser extracts frontmatter, tags and a heading/task outline from
// Markdown content.
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	tagRe     = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	taskRe    = regexp.MustCompile(`^\s*[-*+]\s+\[([ xX])\]\s`)
)

// Outline summarises a document for status displays.
type Outline struct {
	Frontmatter map[string]interface{} `json:"frontmatter,omitempty"`
	Title       string                 `json:"title"`
	Headings    []Heading              `json:"headings"`
	Tags        []string               `json:"tags"`
	OpenTasks   int                    `json:"open_tasks"`
	DoneTasks   int                    `json:"done_tasks"`
}

// Heading is an ATX heading outside fenced code.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Parse builds the outline of raw Markdown bytes. Invalid frontmatter is
// treated as body text.
func Parse(data []byte) *Outline {
	fm, body := splitFrontmatter(data)

	out := &Outline{
		Frontmatter: fm,
		Headings:    []Heading{},
		Tags:        []string{},
	}

	inFence := false
	var prose []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if m := headingRe.FindStringSubmatch(trimmed); m != nil {
			out.Headings = append(out.Headings, Heading{Level: len(m[1]), Text: strings.TrimSpace(m[2])})
			continue
		}
		if m := taskRe.FindStringSubmatch(line); m != nil {
			if m[1] == " " {
				out.OpenTasks++
			} else {
				out.DoneTasks++
			}
		}
		prose = append(prose, line)
	}

	out.Tags = extractTags(strings.Join(prose, "\n"), fm)
	out.Title = deriveTitle(fm, out.Headings)
	return out
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no valid frontmatter is found the entire
// content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}

// extractTags collects #tags from body and from frontmatter "tags" field.
func extractTags(body string, fm map[string]interface{}) []string {
	seen := make(map[string]struct{})
	out := []string{}
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	if raw, ok := fm["tags"].([]interface{}); ok {
		for _, item := range raw {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	}
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, headings []Heading) string {
	if s, ok := fm["title"].(string); ok && s != "" {
		return s
	}
	for _, h := range headings {
		if h.Level == 1 {
			return h.Text
		}
	}
	return ""
}
