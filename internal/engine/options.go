package engine

import (
	"log/slog"
	"time"

	"github.com/starford/scribe/internal/storage"
)

// Defaults for the timing and file layout knobs.
const (
	DefaultSaveDelay    = 2 * time.Second
	DefaultPreviewDelay = 500 * time.Millisecond
	DefaultMaxRetries   = 3
	DefaultNotesExt     = "md"
	DefaultStyleFile    = "markdown_style.json"
	DefaultPreviewCSS   = "notes_style.css"
)

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock, typically with a manual one in tests.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithListener registers host listeners.
func WithListener(ls ...Listener) Option {
	return func(e *Engine) {
		for _, l := range ls {
			if l != nil {
				e.listeners = append(e.listeners, l)
			}
		}
	}
}

// WithStorage sets how a profile directory is opened.
func WithStorage(open storage.Opener) Option {
	return func(e *Engine) {
		if open != nil {
			e.open = open
		}
	}
}

func WithSaveDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.saveDelay = d
		}
	}
}

func WithPreviewDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.previewDelay = d
		}
	}
}

// WithMaxRetries sets the number of timer-driven attempts per episode.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

// WithDefaultView sets the mode the engine starts in.
func WithDefaultView(m Mode) Option {
	return func(e *Engine) {
		e.initialMode = m
	}
}

// WithNotesExt sets the extension of the notes file ("md" → notes.md).
func WithNotesExt(ext string) Option {
	return func(e *Engine) {
		if ext != "" {
			e.notesName = "notes." + ext
		}
	}
}

// WithStyleFile sets the style configuration file name.
func WithStyleFile(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.styleName = name
		}
	}
}

// WithPreviewCSS sets the optional stylesheet override file name. An empty
// name disables the override.
func WithPreviewCSS(name string) Option {
	return func(e *Engine) {
		e.cssName = name
	}
}

// WithTemplate replaces the welcome document written for new profiles.
func WithTemplate(text string) Option {
	return func(e *Engine) {
		e.template = text
	}
}
