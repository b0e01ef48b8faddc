// Package style loads the user-overridable mapping from Markdown style keys
// to display attributes and converts it to the preview and editor themes.
package style

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Key names a Markdown highlighting rule.
type Key string

// Recognized style keys.
const (
	NoState           Key = "NoState"
	H1                Key = "H1"
	H2                Key = "H2"
	H3                Key = "H3"
	Italic            Key = "Italic"
	Bold              Key = "Bold"
	InlineCodeBlock   Key = "InlineCodeBlock"
	Link              Key = "Link"
	CheckBoxUnChecked Key = "CheckBoxUnChecked"
	CheckBoxChecked   Key = "CheckBoxChecked"
)

// Keys lists every recognized key in rendering order.
var Keys = []Key{
	NoState, H1, H2, H3, Italic, Bold, InlineCodeBlock, Link, CheckBoxUnChecked, CheckBoxChecked,
}

// Known reports whether k is a recognized key.
func Known(k Key) bool {
	for _, known := range Keys {
		if k == known {
			return true
		}
	}
	return false
}

// Gruvbox muted palette used by the defaults.
const (
	colorDarkerBG = "#32302f"
	colorMuted    = "#7c6f64"
	colorDefault  = "#d5c4a1"
	colorLighter  = "#ebdbb2"
	colorGreen    = "#98971a"
	colorBlue     = "#458588"
	colorPurple   = "#b16286"
	fontMono      = "monospace"
)

var (
	colorRe  = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]+)$`)
	familyRe = regexp.MustCompile(`^[A-Za-z0-9 ,_-]+$`)
)

// Attr is a display-attribute record. Nil fields leave the rule's
// attribute untouched.
type Attr struct {
	Foreground *string  `json:"foreground,omitempty"`
	Background *string  `json:"background,omitempty"`
	Bold       *bool    `json:"bold,omitempty"`
	Italic     *bool    `json:"italic,omitempty"`
	Underline  *bool    `json:"underline,omitempty"`
	FontSize   *float64 `json:"fontSize,omitempty"`
	FontFamily *string  `json:"fontFamily,omitempty"`
}

// Validate rejects values that cannot be emitted safely into CSS or ANSI.
func (a Attr) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Foreground, validation.Match(colorRe)),
		validation.Field(&a.Background, validation.Match(colorRe)),
		validation.Field(&a.FontSize, validation.Min(1.0), validation.Max(96.0)),
		validation.Field(&a.FontFamily, validation.Match(familyRe)),
	)
}

// Map maps style keys to attribute records.
type Map map[Key]Attr

// Clone returns a shallow copy of m.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Defaults returns the documented default style map.
func Defaults() Map {
	return Map{
		NoState: {Foreground: ptr(colorDefault)},
		H1:      {Foreground: ptr(colorGreen), Bold: ptr(true), FontSize: ptr(24.0)},
		H2:      {Foreground: ptr(colorGreen), Bold: ptr(true), FontSize: ptr(20.0)},
		H3:      {Foreground: ptr(colorGreen), Bold: ptr(true), FontSize: ptr(16.0)},
		Italic:  {Foreground: ptr(colorMuted), Italic: ptr(true)},
		Bold:    {Foreground: ptr(colorLighter), Bold: ptr(true)},
		InlineCodeBlock: {
			Foreground: ptr(colorPurple),
			FontFamily: ptr(fontMono),
		},
		Link:              {Foreground: ptr(colorBlue), Underline: ptr(true)},
		CheckBoxUnChecked: {Foreground: ptr(colorMuted), Bold: ptr(true)},
		CheckBoxChecked:   {Foreground: ptr(colorPurple), Bold: ptr(true)},
	}
}

func ptr[T any](v T) *T {
	return &v
}
