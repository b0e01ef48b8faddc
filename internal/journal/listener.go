package journal

import (
	"log/slog"

	"github.com/starford/scribe/internal/engine"
)

// Listener writes engine save events to a Journal. Journal errors are
// logged and never reach the engine.
type Listener struct {
	engine.NopListener
	j      Journal
	logger *slog.Logger
}

// NewListener returns an engine.Listener backed by j.
func NewListener(j Journal, logger *slog.Logger) *Listener {
	return &Listener{j: j, logger: logger}
}

func (l *Listener) SaveAttempted(a engine.Attempt) {
	e := Entry{
		Profile:  a.Profile,
		File:     a.File,
		Trigger:  string(a.Trigger),
		Number:   a.Number,
		Bytes:    a.Bytes,
		Checksum: a.Checksum,
		OK:       a.OK(),
		At:       a.At,
	}
	if a.Err != nil {
		e.Error = a.Err.Error()
	}
	if err := l.j.Record(e); err != nil {
		l.logger.Warn("journal: record attempt failed", slog.String("error", err.Error()))
	}
}

func (l *Listener) SaveFailed(r engine.FailureReport) {
	f := Failure{Path: r.Path, Attempts: r.Attempts, At: r.At}
	if r.Err != nil {
		f.Error = r.Err.Error()
	}
	if err := l.j.RecordFailure(f); err != nil {
		l.logger.Warn("journal: record failure failed", slog.String("error", err.Error()))
	}
}
