package style

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/starford/scribe/internal/storage"
)

// Outcome describes how Load obtained the rules.
type Outcome int

const (
	// Loaded means the style file was read and applied over the defaults.
	Loaded Outcome = iota
	// Generated means the file was absent and defaults were written.
	Generated
	// Regenerated means the file was unparsable, moved aside and replaced by defaults.
	Regenerated
	// Unavailable means no storage was configured; defaults apply in memory only.
	Unavailable
	// Unreadable means the file exists but could not be read. Defaults apply
	// and the file is left untouched.
	Unreadable
)

func (o Outcome) String() string {
	switch o {
	case Loaded:
		return "loaded"
	case Generated:
		return "generated"
	case Regenerated:
		return "regenerated"
	case Unreadable:
		return "unreadable"
	default:
		return "unavailable"
	}
}

// Theme is the fully resolved style state applied to both views.
type Theme struct {
	Rules Map
	// CSS is the preview stylesheet: the profile override when present,
	// otherwise generated from Rules.
	CSS string
}

// NewTheme returns a Theme for rules with generated CSS.
func NewTheme(rules Map) Theme {
	return Theme{Rules: rules, CSS: rules.CSS()}
}

// Load reads the style file name from store and resolves it against the
// defaults. It never fails: every problem is recovered locally and logged.
// cssName, if non-empty, names an optional preview stylesheet override.
func Load(store storage.Provider, name, cssName string, logger *slog.Logger) (Theme, Outcome) {
	if store == nil {
		return NewTheme(Defaults()), Unavailable
	}

	rules, outcome := loadRules(store, name, logger)
	theme := NewTheme(rules)

	if cssName != "" {
		if data, err := store.Read(cssName); err == nil {
			theme.CSS = string(data)
			logger.Debug("style: using custom preview stylesheet", slog.String("file", cssName))
		} else if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("style: read preview stylesheet failed", slog.String("error", err.Error()))
		}
	}
	return theme, outcome
}

func loadRules(store storage.Provider, name string, logger *slog.Logger) (Map, Outcome) {
	data, err := store.Read(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("style: read failed, using defaults", slog.String("file", name), slog.String("error", err.Error()))
			return Defaults(), Unreadable
		}
		writeDefaults(store, name, logger)
		return Defaults(), Generated
	}

	rules, err := Parse(data, logger)
	if err != nil {
		logger.Warn("style: unparsable style file, regenerating defaults",
			slog.String("file", name), slog.String("error", err.Error()))
		backup := name + ".bak"
		if mvErr := store.Move(name, backup); mvErr != nil {
			logger.Warn("style: backup failed", slog.String("error", mvErr.Error()))
		}
		writeDefaults(store, name, logger)
		return Defaults(), Regenerated
	}
	return rules, Loaded
}

// Parse decodes a style file. Recognized keys replace the default record for
// that key; unknown keys and invalid records are skipped.
func Parse(data []byte, logger *slog.Logger) (Map, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("style: parse: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("style: parse: not an object")
	}

	rules := Defaults()
	for k, v := range raw {
		key := Key(k)
		if !Known(key) {
			logger.Debug("style: ignoring unknown key", slog.String("key", k))
			continue
		}
		var attr Attr
		if err := json.Unmarshal(v, &attr); err != nil {
			logger.Warn("style: ignoring malformed record", slog.String("key", k), slog.String("error", err.Error()))
			continue
		}
		if err := attr.Validate(); err != nil {
			logger.Warn("style: ignoring invalid record", slog.String("key", k), slog.String("error", err.Error()))
			continue
		}
		rules[key] = attr
	}
	return rules, nil
}

// Encode renders m as the indented JSON style file.
func Encode(m Map) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("style: encode: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteDefaults writes the documented defaults to name, replacing any file.
func WriteDefaults(store storage.Provider, name string) error {
	data, err := Encode(Defaults())
	if err != nil {
		return err
	}
	if err := store.Write(name, data); err != nil {
		return fmt.Errorf("style: write defaults: %w", err)
	}
	return nil
}

func writeDefaults(store storage.Provider, name string, logger *slog.Logger) {
	if err := WriteDefaults(store, name); err != nil {
		logger.Warn("style: failed to create default style file",
			slog.String("file", name), slog.String("error", err.Error()))
		return
	}
	logger.Info("style: created default style file", slog.String("file", name))
}
