package sse

import (
	"log/slog"

	"github.com/starford/scribe/internal/engine"
	"github.com/starford/scribe/internal/render"
	"github.com/starford/scribe/internal/style"
)

// Event types pushed to browsers.
const (
	TypePreview = "preview.updated"
	TypeView    = "view.changed"
	TypeToolbar = "toolbar.changed"
	TypeStyles  = "styles.applied"
	TypeSaved   = "document.saved"
	TypeFailed  = "save.failed"
	TypeProfile = "profile.loaded"
)

// Replayed lists the event types a new subscriber needs to draw the
// current state.
var Replayed = []string{TypePreview, TypeView, TypeToolbar, TypeStyles, TypeProfile}

// Surface is the browser render surface: an engine.Listener that turns
// notifications into broker events.
type Surface struct {
	broker *Broker
	logger *slog.Logger
}

var _ engine.Listener = (*Surface)(nil)

// NewSurface returns a Surface publishing to b.
func NewSurface(b *Broker, logger *slog.Logger) *Surface {
	return &Surface{broker: b, logger: logger}
}

func (s *Surface) PreviewRendered(payload string) {
	html, err := render.Payload(payload)
	if err != nil {
		s.logger.Warn("sse: render preview failed", slog.String("error", err.Error()))
		return
	}
	s.broker.Publish(Event{Type: TypePreview, Data: map[string]string{"html": html}})
}

func (s *Surface) ViewChanged(m engine.Mode) {
	s.broker.Publish(Event{Type: TypeView, Data: map[string]string{"mode": m.String()}})
}

func (s *Surface) AffordancesChanged(visible bool) {
	s.broker.Publish(Event{Type: TypeToolbar, Data: map[string]bool{"visible": visible}})
}

func (s *Surface) StylesApplied(t style.Theme) {
	s.broker.Publish(Event{Type: TypeStyles, Data: map[string]string{"css": t.CSS}})
}

func (s *Surface) SaveAttempted(a engine.Attempt) {
	if !a.OK() {
		return
	}
	s.broker.Publish(Event{Type: TypeSaved, Data: map[string]interface{}{
		"file":     a.File,
		"trigger":  string(a.Trigger),
		"bytes":    a.Bytes,
		"checksum": a.Checksum,
	}})
}

func (s *Surface) SaveFailed(r engine.FailureReport) {
	s.broker.Publish(Event{Type: TypeFailed, Data: map[string]interface{}{
		"path":     r.Path,
		"attempts": r.Attempts,
		"message":  r.Message(),
	}})
}

func (s *Surface) ProfileLoaded(path string, err error) {
	data := map[string]string{"path": path}
	if err != nil {
		data["error"] = err.Error()
	}
	s.broker.Publish(Event{Type: TypeProfile, Data: data})
}
