// Package noteservice is the host-facing facade over the engine and the
// save journal, shared by the HTTP API and the MCP server.
package noteservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/scribe/internal/apperr"
	"github.com/starford/scribe/internal/checksum"
	"github.com/starford/scribe/internal/engine"
	"github.com/starford/scribe/internal/format"
	"github.com/starford/scribe/internal/journal"
	"github.com/starford/scribe/internal/parser"
)

// Document is the full representation of the notes document.
type Document struct {
	Profile  string          `json:"profile"`
	Content  string          `json:"content"`
	Checksum string          `json:"checksum"`
	Dirty    bool            `json:"dirty"`
	Outline  *parser.Outline `json:"outline"`
}

// Styles is the applied preview theme.
type Styles struct {
	Outcome string `json:"outcome"`
	CSS     string `json:"css"`
}

// Service coordinates the engine and the journal.
type Service struct {
	eng     *engine.Engine
	journal journal.Journal
}

// NewService creates a new service. j may be nil when journaling is off.
func NewService(eng *engine.Engine, j journal.Journal) *Service {
	return &Service{eng: eng, journal: j}
}

// Document returns the current text with its derived metadata.
func (s *Service) Document(ctx context.Context) (*Document, error) {
	st, err := s.eng.Status(ctx)
	if err != nil {
		return nil, err
	}
	text, err := s.eng.Text(ctx)
	if err != nil {
		return nil, err
	}
	return &Document{
		Profile:  st.Profile,
		Content:  text,
		Checksum: checksum.String(text),
		Dirty:    st.Dirty,
		Outline:  parser.Parse([]byte(text)),
	}, nil
}

// Replace sets the whole document. The write happens on the debounce timer.
// A non-empty ifMatch must equal the checksum of the current text.
func (s *Service) Replace(ctx context.Context, content, ifMatch string) (engine.Status, error) {
	err := s.eng.Update(ctx, func(cur string) (string, error) {
		if ifMatch != "" && ifMatch != checksum.String(cur) {
			return cur, apperr.ErrConflict
		}
		return content, nil
	})
	if err != nil {
		return engine.Status{}, err
	}
	return s.eng.Status(ctx)
}

// Append adds text to the end of the document on its own line.
func (s *Service) Append(ctx context.Context, text string) (engine.Status, error) {
	s.eng.Edit(func(cur string) string {
		if cur != "" && !strings.HasSuffix(cur, "\n") {
			cur += "\n"
		}
		return cur + text
	})
	return s.eng.Status(ctx)
}

// Format applies a formatting action to a selection of the current text.
func (s *Service) Format(ctx context.Context, action string, sel format.Selection, url string) (format.Result, error) {
	var res format.Result
	err := s.eng.Update(ctx, func(cur string) (string, error) {
		var err error
		res, err = format.Apply(action, cur, sel, url)
		return res.Text, err
	})
	return res, err
}

// Flush writes the document now.
func (s *Service) Flush(ctx context.Context) error {
	return s.eng.Flush(ctx)
}

// Status returns the engine snapshot.
func (s *Service) Status(ctx context.Context) (engine.Status, error) {
	return s.eng.Status(ctx)
}

// Toggle switches the view and returns the resulting status.
func (s *Service) Toggle(ctx context.Context) (engine.Status, error) {
	s.eng.Toggle()
	return s.eng.Status(ctx)
}

// SetView parses mode and switches to it.
func (s *Service) SetView(ctx context.Context, mode string) (engine.Status, error) {
	m, err := engine.ParseMode(mode)
	if err != nil {
		return engine.Status{}, err
	}
	s.eng.SetDefaultView(m)
	return s.eng.Status(ctx)
}

// Styles returns the applied theme.
func (s *Service) Styles(ctx context.Context) (*Styles, error) {
	theme, err := s.eng.Theme(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.eng.Status(ctx)
	if err != nil {
		return nil, err
	}
	return &Styles{Outcome: st.StyleOutcome, CSS: theme.CSS}, nil
}

// ReloadStyles re-reads the style file and returns the applied theme.
func (s *Service) ReloadStyles(ctx context.Context) (*Styles, error) {
	s.eng.ReloadStyles()
	return s.Styles(ctx)
}

// SetProfile switches the profile directory.
func (s *Service) SetProfile(ctx context.Context, path string) (engine.Status, error) {
	if strings.TrimSpace(path) == "" {
		return engine.Status{}, fmt.Errorf("noteservice: empty profile path: %w", apperr.ErrInvalidArgument)
	}
	s.eng.SetProfilePath(path)
	return s.eng.Status(ctx)
}

// Attempts returns recent save attempts for the active profile.
func (s *Service) Attempts(ctx context.Context, limit int) ([]journal.Entry, error) {
	if s.journal == nil {
		return []journal.Entry{}, nil
	}
	st, err := s.eng.Status(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.journal.Recent(st.Profile, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	return entries, nil
}

// Failures returns recent terminal save failures.
func (s *Service) Failures(_ context.Context, limit int) ([]journal.Failure, error) {
	if s.journal == nil {
		return []journal.Failure{}, nil
	}
	out, err := s.journal.Failures(limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []journal.Failure{}
	}
	return out, nil
}
