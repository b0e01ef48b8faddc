// Package engine implements the debounced persistence and live preview core
// shared by every scribe host.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/starford/scribe/internal/apperr"
	"github.com/starford/scribe/internal/checksum"
	"github.com/starford/scribe/internal/parser"
	"github.com/starford/scribe/internal/storage"
	"github.com/starford/scribe/internal/style"
)

// Engine owns one notes document bound to a profile directory.
//
// Concurrency model: a single internal loop (goroutine) owns the document,
// the dirty flag, the retry counter, the view mode and both timers. Public
// methods post closures to the loop over a FIFO channel, so no mutexes are
// required and every notification runs to completion before the next.
type Engine struct {
	clock        Clock
	logger       *slog.Logger
	listeners    listeners
	open         storage.Opener
	saveDelay    time.Duration
	previewDelay time.Duration
	maxRetries   int
	initialMode  Mode
	notesName    string
	styleName    string
	cssName      string
	template     string

	ops     chan func()
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool

	// Loop-owned.
	doc      *document
	persist  *persister
	preview  *previewer
	view     *viewController
	theme    style.Theme
	styleOut style.Outcome
	loadErr  error
}

// New starts an engine with no profile attached. Mutations are accepted but
// nothing is written until SetProfilePath is called.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:        SystemClock,
		logger:       slog.Default(),
		open:         storage.Open,
		saveDelay:    DefaultSaveDelay,
		previewDelay: DefaultPreviewDelay,
		maxRetries:   DefaultMaxRetries,
		initialMode:  Edit,
		notesName:    "notes." + DefaultNotesExt,
		styleName:    DefaultStyleFile,
		cssName:      DefaultPreviewCSS,
		template:     WelcomeTemplate,
		ops:          make(chan func(), 256),
		stopCh:       make(chan struct{}),
		stopped:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.doc = &document{}
	e.persist = &persister{
		clock:      e.clock,
		logger:     e.logger,
		notify:     e.listeners,
		doc:        e.doc,
		maxRetries: e.maxRetries,
		notesName:  e.notesName,
	}
	e.persist.save = newTimer(e.clock, e.saveDelay, e.post, e.persist.saveTimerFired)
	e.preview = &previewer{notify: e.listeners, doc: e.doc}
	e.preview.timer = newTimer(e.clock, e.previewDelay, e.post, func() {
		e.preview.timerFired(e.view.mode)
	})
	e.view = &viewController{notify: e.listeners, preview: e.preview, mode: e.initialMode}
	e.theme = style.NewTheme(style.Defaults())
	e.styleOut = style.Unavailable

	go e.run()
	return e
}

func (e *Engine) run() {
	defer close(e.stopped)
	for {
		select {
		case <-e.stopCh:
			return
		case op := <-e.ops:
			op()
		}
	}
}

// post queues op on the loop. It is dropped once the loop has stopped.
func (e *Engine) post(op func()) {
	select {
	case e.ops <- op:
	case <-e.stopped:
	}
}

// call runs op on the loop and waits for it to finish.
func (e *Engine) call(ctx context.Context, op func()) error {
	done := make(chan struct{})
	select {
	case e.ops <- func() { op(); close(done) }:
	case <-e.stopped:
		return apperr.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-e.stopped:
		select {
		case <-done:
			return nil
		default:
			return apperr.ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetText replaces the document. Identical text is not a mutation.
func (e *Engine) SetText(text string) {
	e.post(func() { e.mutate(text) })
}

// Edit applies fn to the current text on the loop, so concurrent edits from
// several hosts never interleave.
func (e *Engine) Edit(fn func(string) string) {
	e.post(func() { e.mutate(fn(e.doc.text)) })
}

// Update is Edit for callers that need the outcome: fn runs on the loop
// and the document is left untouched when it returns an error.
func (e *Engine) Update(ctx context.Context, fn func(string) (string, error)) error {
	var err error
	if cerr := e.call(ctx, func() {
		var next string
		if next, err = fn(e.doc.text); err == nil {
			e.mutate(next)
		}
	}); cerr != nil {
		return cerr
	}
	return err
}

func (e *Engine) mutate(text string) {
	if text == e.doc.text {
		return
	}
	e.doc.text = text
	e.persist.mutated()
	e.preview.mutated(e.view.mode)
}

// Toggle switches between Edit and Preview.
func (e *Engine) Toggle() {
	e.post(e.view.toggle)
}

// SetDefaultView switches to m. Requesting the active mode is a no-op.
func (e *Engine) SetDefaultView(m Mode) {
	e.post(func() { e.view.set(m) })
}

// ReloadStyles re-reads the style configuration from the current profile
// and re-renders the preview when it is visible.
func (e *Engine) ReloadStyles() {
	e.post(e.reloadStyles)
}

func (e *Engine) reloadStyles() {
	e.theme, e.styleOut = style.Load(e.persist.store, e.styleName, e.cssName, e.logger)
	e.logger.Info("engine: styles applied", slog.String("outcome", e.styleOut.String()))
	e.listeners.stylesApplied(e.theme)
	if e.view.mode == Preview {
		e.preview.refresh()
	}
}

// SetProfilePath binds the engine to a new profile directory.
func (e *Engine) SetProfilePath(path string) {
	e.post(func() { e.setProfile(path) })
}

func (e *Engine) setProfile(path string) {
	if e.persist.dirty && e.persist.store != nil {
		_ = e.persist.flush(TriggerProfile)
	}
	e.persist.save.cancel()
	e.preview.timer.cancel()
	e.persist.retries = 0

	store, err := e.open(path)
	if err != nil {
		e.logger.Error("engine: open profile failed", slog.String("profile", path), slog.String("error", err.Error()))
		e.persist.store = nil
		e.persist.profile = path
		e.persist.blocked = nil
		e.loadErr = err
		e.listeners.profileLoaded(path, err)
		return
	}
	e.persist.store = store
	e.persist.profile = path
	e.persist.savedSum = ""
	e.loadErr = e.loadDocument()
	e.persist.blocked = e.loadErr

	e.reloadStyles()
	e.logger.Info("engine: profile loaded",
		slog.String("profile", path),
		slog.Int("bytes", len(e.doc.text)),
		slog.Bool("dirty", e.persist.dirty))
	e.listeners.profileLoaded(path, e.loadErr)
}

// loadDocument reads the notes file, seeding the welcome template when the
// file does not exist yet. On any other read error the returned error also
// blocks saving, so edits made meanwhile never replace the unread file.
func (e *Engine) loadDocument() error {
	p := e.persist
	data, err := p.store.Read(p.notesName)
	switch {
	case err == nil:
		e.doc.text = string(data)
		p.dirty = false
		p.savedSum = checksum.Sum(data)
		return nil
	case errors.Is(err, fs.ErrNotExist):
		e.doc.text = e.template
		p.dirty = true
		if werr := p.write(TriggerTemplate, 1); werr != nil {
			e.logger.Warn("engine: write welcome template failed",
				slog.String("path", p.path()),
				slog.String("error", werr.Error()))
			p.save.arm()
		}
		return nil
	default:
		e.doc.text = ""
		p.dirty = false
		e.logger.Error("engine: read notes failed", slog.String("path", p.path()), slog.String("error", err.Error()))
		return fmt.Errorf("engine: load %s: %w", p.notesName, err)
	}
}

// Flush writes the document now if it is dirty. It performs a single
// attempt and returns its error.
func (e *Engine) Flush(ctx context.Context) error {
	var err error
	if cerr := e.call(ctx, func() { err = e.persist.flush(TriggerFlush) }); cerr != nil {
		return cerr
	}
	return err
}

// Text returns the current document.
func (e *Engine) Text(ctx context.Context) (string, error) {
	var text string
	err := e.call(ctx, func() { text = e.doc.text })
	return text, err
}

// Theme returns the applied style theme.
func (e *Engine) Theme(ctx context.Context) (style.Theme, error) {
	var t style.Theme
	err := e.call(ctx, func() { t = e.theme })
	return t, err
}

// Status is a snapshot of engine state.
type Status struct {
	Profile        string          `json:"profile"`
	File           string          `json:"file"`
	Mode           Mode            `json:"mode"`
	Dirty          bool            `json:"dirty"`
	Retries        int             `json:"retries"`
	SavePending    bool            `json:"save_pending"`
	SaveDeadline   *time.Time      `json:"save_deadline,omitempty"`
	PreviewPending bool            `json:"preview_pending"`
	Renders        int             `json:"renders"`
	Bytes          int             `json:"bytes"`
	Checksum       string          `json:"checksum"`
	SavedChecksum  string          `json:"saved_checksum,omitempty"`
	StyleOutcome   string          `json:"style_outcome"`
	LoadError      string          `json:"load_error,omitempty"`
	Outline        *parser.Outline `json:"outline"`
}

// Status returns a snapshot taken on the loop. Because the loop is FIFO it
// also acts as a barrier: every operation posted before it has completed.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	var s Status
	err := e.call(ctx, func() {
		p := e.persist
		s = Status{
			Profile:        p.profile,
			File:           p.path(),
			Mode:           e.view.mode,
			Dirty:          p.dirty,
			Retries:        p.retries,
			SavePending:    p.save.pending(),
			PreviewPending: e.preview.timer.pending(),
			Renders:        e.preview.renders,
			Bytes:          len(e.doc.text),
			Checksum:       checksum.String(e.doc.text),
			SavedChecksum:  p.savedSum,
			StyleOutcome:   e.styleOut.String(),
			Outline:        parser.Parse([]byte(e.doc.text)),
		}
		if p.save.pending() {
			d := p.save.deadline
			s.SaveDeadline = &d
		}
		if e.loadErr != nil {
			s.LoadError = e.loadErr.Error()
		}
	})
	return s, err
}

// Close flushes a dirty document once and stops the loop. The flush error,
// if any, is returned after the loop has stopped.
func (e *Engine) Close(ctx context.Context) error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	var flushErr error
	err := e.call(ctx, func() {
		e.preview.timer.cancel()
		if e.persist.store != nil {
			flushErr = e.persist.flush(TriggerShutdown)
		} else {
			e.persist.save.cancel()
		}
	})
	close(e.stopCh)
	<-e.stopped
	if err != nil {
		return err
	}
	return flushErr
}
