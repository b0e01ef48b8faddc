package format

import (
	"errors"
	"testing"

	"github.com/starford/scribe/internal/apperr"
)

func TestWrap(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		sel     Selection
		want    string
		wantSel Selection
	}{
		{"selection", "say hello now", Selection{4, 9}, "say **hello** now", Selection{13, 13}},
		{"empty selects placeholder", "ab", Selection{1, 1}, "a**text**b", Selection{3, 7}},
		{"reversed selection", "say hello", Selection{9, 4}, "say **hello**", Selection{13, 13}},
		{"out of range clamps", "ab", Selection{-3, 99}, "**ab**", Selection{6, 6}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Bold(tc.text, tc.sel)
			if got.Text != tc.want {
				t.Errorf("text = %q, want %q", got.Text, tc.want)
			}
			if got.Selection != tc.wantSel {
				t.Errorf("selection = %+v, want %+v", got.Selection, tc.wantSel)
			}
		})
	}
}

func TestLineStart(t *testing.T) {
	text := "first\nsecond line\nthird"
	got := Checkbox(text, Selection{10, 10})
	if got.Text != "first\n- [ ] second line\nthird" {
		t.Errorf("text = %q", got.Text)
	}
	if got.Selection != (Selection{12, 12}) {
		t.Errorf("selection = %+v", got.Selection)
	}

	got = Heading("title", Selection{0, 0}, 7)
	if got.Text != "### title" {
		t.Errorf("heading level not clamped: %q", got.Text)
	}
}

func TestCodeBlockAndLink(t *testing.T) {
	if got := CodeBlock("", Selection{}); got.Text != "```\ncode\n```" {
		t.Errorf("code block = %q", got.Text)
	}
	if got := Link("see docs", Selection{4, 8}, "https://x.dev"); got.Text != "see [docs](https://x.dev)" {
		t.Errorf("link = %q", got.Text)
	}
	if got := Image("", Selection{}, "https://x.dev/a.png"); got.Text != "![alt text](https://x.dev/a.png)" {
		t.Errorf("image = %q", got.Text)
	}
}

func TestHorizontalRule(t *testing.T) {
	got := HorizontalRule("one\ntwo", Selection{1, 1})
	if got.Text != "one\n\n---\n\ntwo" {
		t.Errorf("rule = %q", got.Text)
	}
}

func TestClampRuneBoundary(t *testing.T) {
	text := "héllo"
	// Offset 2 is inside the two-byte é.
	sel := Clamp(text, Selection{2, 2})
	if sel.Start != 1 {
		t.Errorf("Start = %d, want 1", sel.Start)
	}
}

func TestApply(t *testing.T) {
	for _, action := range Actions {
		if _, err := Apply(action, "x", Selection{0, 1}, "https://example.com"); err != nil {
			t.Errorf("Apply(%s): %v", action, err)
		}
	}
	if _, err := Apply("blink", "x", Selection{}, ""); !errors.Is(err, apperr.ErrUnknownFormat) {
		t.Errorf("unknown action err = %v", err)
	}
	if _, err := Apply("link", "x", Selection{}, ""); err == nil {
		t.Error("link without url should fail")
	}
}
