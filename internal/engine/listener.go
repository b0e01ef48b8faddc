package engine

import (
	"fmt"
	"time"

	"github.com/starford/scribe/internal/style"
)

// Trigger names what caused a save attempt.
type Trigger string

const (
	TriggerTimer    Trigger = "timer"
	TriggerFlush    Trigger = "flush"
	TriggerProfile  Trigger = "profile"
	TriggerTemplate Trigger = "template"
	TriggerShutdown Trigger = "shutdown"
)

// Attempt describes one write of the document to storage.
type Attempt struct {
	Profile  string
	File     string
	Trigger  Trigger
	Number   int // 1-based position within the current retry episode
	Bytes    int
	Checksum string
	Err      error
	At       time.Time
}

// OK reports whether the write was confirmed.
func (a Attempt) OK() bool {
	return a.Err == nil
}

// FailureReport is raised once when a retry episode exhausts its attempts.
type FailureReport struct {
	Path     string
	Attempts int
	Err      error
	At       time.Time
}

// Message is the user-facing notification text.
func (r FailureReport) Message() string {
	return fmt.Sprintf("Unable to save notes to %s. Check that the file is not read-only and that "+
		"you have write permission to the profile directory. Your changes are still in memory.", r.Path)
}

// Listener is the host boundary. Every method is invoked on the engine
// loop and must not call back into blocking Engine methods (Flush, Status,
// Text, Theme, Close); the non-blocking ones are fine.
type Listener interface {
	// PreviewRendered delivers an escaped payload (see preview.Encode).
	PreviewRendered(payload string)
	ViewChanged(mode Mode)
	// AffordancesChanged shows or hides the formatting toolbar.
	AffordancesChanged(visible bool)
	StylesApplied(theme style.Theme)
	SaveAttempted(a Attempt)
	SaveFailed(r FailureReport)
	ProfileLoaded(path string, err error)
}

// NopListener implements Listener with no-ops. Embed it to override a subset.
type NopListener struct{}

func (NopListener) PreviewRendered(string)      {}
func (NopListener) ViewChanged(Mode)            {}
func (NopListener) AffordancesChanged(bool)     {}
func (NopListener) StylesApplied(style.Theme)   {}
func (NopListener) SaveAttempted(Attempt)       {}
func (NopListener) SaveFailed(FailureReport)    {}
func (NopListener) ProfileLoaded(string, error) {}

// listeners fans a notification out in registration order.
type listeners []Listener

func (ls listeners) previewRendered(payload string) {
	for _, l := range ls {
		l.PreviewRendered(payload)
	}
}

func (ls listeners) viewChanged(m Mode) {
	for _, l := range ls {
		l.ViewChanged(m)
	}
}

func (ls listeners) affordancesChanged(visible bool) {
	for _, l := range ls {
		l.AffordancesChanged(visible)
	}
}

func (ls listeners) stylesApplied(t style.Theme) {
	for _, l := range ls {
		l.StylesApplied(t)
	}
}

func (ls listeners) saveAttempted(a Attempt) {
	for _, l := range ls {
		l.SaveAttempted(a)
	}
}

func (ls listeners) saveFailed(r FailureReport) {
	for _, l := range ls {
		l.SaveFailed(r)
	}
}

func (ls listeners) profileLoaded(path string, err error) {
	for _, l := range ls {
		l.ProfileLoaded(path, err)
	}
}
