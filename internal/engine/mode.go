package engine

import (
	"fmt"
	"strings"

	"github.com/starford/scribe/internal/apperr"
)

// Mode is the visible surface: the editor or the rendered preview.
type Mode int

const (
	Edit Mode = iota
	Preview
)

func (m Mode) String() string {
	if m == Preview {
		return "preview"
	}
	return "edit"
}

// ParseMode parses "edit" or "preview".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "edit":
		return Edit, nil
	case "preview", "view":
		return Preview, nil
	default:
		return Edit, fmt.Errorf("%q: %w", s, apperr.ErrInvalidMode)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
