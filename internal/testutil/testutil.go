// Package testutil provides shared test helpers: a manual clock, an
// in-memory profile store with fault injection, and a recording listener.
package testutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/starford/scribe/internal/engine"
	"github.com/starford/scribe/internal/storage"
	"github.com/starford/scribe/internal/style"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestProfile creates a temporary profile directory with a storage.Provider.
func TestProfile(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Clock is a manual engine.Clock. Callbacks run synchronously inside
// Advance, in deadline order, without the clock's lock held.
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*clockTimer
}

type clockTimer struct {
	c    *Clock
	at   time.Time
	f    func()
	done bool
}

// NewClock returns a Clock starting at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) AfterFunc(d time.Duration, f func()) engine.Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &clockTimer{c: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *clockTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	active := !t.done
	t.done = true
	return active
}

// Advance moves time forward by d, firing every timer that comes due.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *clockTimer
		for _, t := range c.timers {
			if t.done || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.compact()
			c.mu.Unlock()
			return
		}
		next.done = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
	}
}

// Pending returns the number of timers that have neither fired nor stopped.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

func (c *Clock) compact() {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.done {
			live = append(live, t)
		}
	}
	c.timers = live
}

// ErrInjected is returned by MemStore writes while failures are injected.
var ErrInjected = errors.New("injected write failure")

// MemStore is an in-memory storage.Provider. Writes can be made to fail.
type MemStore struct {
	mu       sync.Mutex
	root     string
	files    map[string][]byte
	failNext int
	failAll  bool
	readErr  error
	writes   int
}

// NewMemStore returns an empty store rooted at root.
func NewMemStore(root string) *MemStore {
	return &MemStore{root: root, files: make(map[string][]byte)}
}

// Opener returns a storage.Opener that hands out this store for any path.
func (m *MemStore) Opener() storage.Opener {
	return func(dir string) (storage.Provider, error) {
		m.mu.Lock()
		m.root = dir
		m.mu.Unlock()
		return m, nil
	}
}

func (m *MemStore) Root() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.root
}

func (m *MemStore) Read(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("memstore: read %s: %w", name, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemStore) Write(name string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.failAll {
		return ErrInjected
	}
	if m.failNext > 0 {
		m.failNext--
		return ErrInjected
	}
	m.files[name] = append([]byte(nil), content...)
	return nil
}

func (m *MemStore) Exists(name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[name]
	return ok, nil
}

func (m *MemStore) Move(oldName, newName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[oldName]
	if !ok {
		return fmt.Errorf("memstore: move %s: %w", oldName, fs.ErrNotExist)
	}
	m.files[newName] = data
	delete(m.files, oldName)
	return nil
}

// Put stores content without counting it as a write.
func (m *MemStore) Put(name, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = []byte(content)
}

// Content returns the stored file and whether it exists.
func (m *MemStore) Content(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	return string(data), ok
}

// Names lists stored files.
func (m *MemStore) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.files))
	for n := range m.files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Writes returns the number of write calls, failed ones included.
func (m *MemStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// FailNext makes the next n writes fail.
func (m *MemStore) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = n
}

// FailWrites makes every write fail until called with false.
func (m *MemStore) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = fail
}

// FailReads makes every read return err (nil restores reads).
func (m *MemStore) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// Events is everything a Recorder has been told.
type Events struct {
	Payloads    []string
	Views       []engine.Mode
	Affordances []bool
	Themes      []style.Theme
	Attempts    []engine.Attempt
	Failures    []engine.FailureReport
	Profiles    []string
	ProfileErrs []error
}

// Recorder is an engine.Listener that keeps everything it is told.
type Recorder struct {
	mu sync.Mutex
	ev Events
}

func (r *Recorder) PreviewRendered(payload string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ev.Payloads = append(r.ev.Payloads, payload)
}

func (r *Recorder) ViewChanged(m engine.Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ev.Views = append(r.ev.Views, m)
}

func (r *Recorder) AffordancesChanged(visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ev.Affordances = append(r.ev.Affordances, visible)
}

func (r *Recorder) StylesApplied(t style.Theme) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ev.Themes = append(r.ev.Themes, t)
}

func (r *Recorder) SaveAttempted(a engine.Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ev.Attempts = append(r.ev.Attempts, a)
}

func (r *Recorder) SaveFailed(f engine.FailureReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ev.Failures = append(r.ev.Failures, f)
}

func (r *Recorder) ProfileLoaded(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ev.Profiles = append(r.ev.Profiles, path)
	r.ev.ProfileErrs = append(r.ev.ProfileErrs, err)
}

// Snapshot returns a copy safe to inspect while the engine keeps running.
func (r *Recorder) Snapshot() Events {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Events{
		Payloads:    append([]string(nil), r.ev.Payloads...),
		Views:       append([]engine.Mode(nil), r.ev.Views...),
		Affordances: append([]bool(nil), r.ev.Affordances...),
		Themes:      append([]style.Theme(nil), r.ev.Themes...),
		Attempts:    append([]engine.Attempt(nil), r.ev.Attempts...),
		Failures:    append([]engine.FailureReport(nil), r.ev.Failures...),
		Profiles:    append([]string(nil), r.ev.Profiles...),
		ProfileErrs: append([]error(nil), r.ev.ProfileErrs...),
	}
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ev = Events{}
}
