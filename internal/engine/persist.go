package engine

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/starford/scribe/internal/apperr"
	"github.com/starford/scribe/internal/checksum"
	"github.com/starford/scribe/internal/storage"
)

// document is the in-memory text shared by the loop components.
type document struct {
	text string
}

// persister decides when the document is written. It owns the dirty flag,
// the retry counter and the save timer.
type persister struct {
	clock      Clock
	logger     *slog.Logger
	notify     listeners
	doc        *document
	save       *timer
	maxRetries int
	notesName  string

	store    storage.Provider
	profile  string
	dirty    bool
	retries  int
	savedSum string
	// blocked is the read error of a notes file that exists but could not
	// be loaded. No write may replace that file until it loads.
	blocked error
}

func (p *persister) path() string {
	if p.store == nil {
		return ""
	}
	return filepath.Join(p.store.Root(), p.notesName)
}

// mutated marks the document dirty and restarts the save countdown.
func (p *persister) mutated() {
	p.dirty = true
	if p.blocked == nil {
		p.save.arm()
	}
}

// saveTimerFired performs one attempt of the current retry episode.
func (p *persister) saveTimerFired() {
	if !p.dirty || p.store == nil || p.blocked != nil {
		return
	}
	err := p.write(TriggerTimer, p.retries+1)
	if err == nil {
		return
	}

	p.retries++
	if p.retries < p.maxRetries {
		p.logger.Warn("engine: save failed, retrying",
			slog.String("path", p.path()),
			slog.Int("attempt", p.retries),
			slog.Int("max_attempts", p.maxRetries),
			slog.String("error", err.Error()))
		p.save.arm()
		return
	}

	report := FailureReport{Path: p.path(), Attempts: p.retries, Err: err, At: p.clock.Now()}
	p.logger.Error("engine: save failed, giving up",
		slog.String("path", report.Path),
		slog.Int("attempts", report.Attempts),
		slog.String("error", err.Error()))
	p.retries = 0
	p.notify.saveFailed(report)
}

// flush writes immediately, once, cancelling any pending timer save.
// A failed flush is not retried; the document stays dirty and the next
// mutation starts a new episode.
func (p *persister) flush(trigger Trigger) error {
	p.save.cancel()
	p.retries = 0
	if !p.dirty {
		return nil
	}
	if p.store == nil {
		return apperr.ErrNoProfile
	}
	if p.blocked != nil {
		return fmt.Errorf("%w: %v", apperr.ErrNotLoaded, p.blocked)
	}
	err := p.write(trigger, 1)
	if err != nil {
		p.logger.Warn("engine: flush failed",
			slog.String("path", p.path()),
			slog.String("trigger", string(trigger)),
			slog.String("error", err.Error()))
	}
	return err
}

// write replaces the notes file with the current text. Only a confirmed
// write clears the dirty flag.
func (p *persister) write(trigger Trigger, number int) error {
	text := p.doc.text
	sum := checksum.String(text)
	err := p.store.Write(p.notesName, []byte(text))

	p.notify.saveAttempted(Attempt{
		Profile:  p.profile,
		File:     p.path(),
		Trigger:  trigger,
		Number:   number,
		Bytes:    len(text),
		Checksum: sum,
		Err:      err,
		At:       p.clock.Now(),
	})
	if err != nil {
		return err
	}

	p.dirty = false
	p.retries = 0
	p.savedSum = sum
	p.logger.Debug("engine: notes saved",
		slog.String("path", p.path()),
		slog.String("trigger", string(trigger)),
		slog.String("checksum", sum[:12]))
	return nil
}
