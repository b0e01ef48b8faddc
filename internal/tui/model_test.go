package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/scribe/internal/checksum"
	"github.com/starford/scribe/internal/engine"
	"github.com/starford/scribe/internal/preview"
	"github.com/starford/scribe/internal/style"
)

type fakeEngine struct {
	mu       sync.Mutex
	text     string
	status   engine.Status
	texts    []string
	toggles  int
	reloads  int
	flushes  int
	flushErr error
}

func (f *fakeEngine) SetText(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	f.texts = append(f.texts, text)
}

func (f *fakeEngine) Toggle()       { f.mu.Lock(); f.toggles++; f.mu.Unlock() }
func (f *fakeEngine) ReloadStyles() { f.mu.Lock(); f.reloads++; f.mu.Unlock() }

func (f *fakeEngine) Flush(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return f.flushErr
}

func (f *fakeEngine) Text(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, nil
}

func (f *fakeEngine) Status(context.Context) (engine.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, nil
}

func (f *fakeEngine) Theme(context.Context) (style.Theme, error) {
	return style.NewTheme(style.Defaults()), nil
}

// loaded returns a model that has processed its initial state.
func loaded(t *testing.T, f *fakeEngine) Model {
	t.Helper()
	m := NewModel(f)
	msg := m.loadState()()
	next, _ := m.Update(msg)
	return next.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestLoadState(t *testing.T) {
	f := &fakeEngine{text: "# Doc", status: engine.Status{Profile: "/p", Mode: engine.Edit}}
	m := loaded(t, f)

	if m.editor.Value() != "# Doc" {
		t.Errorf("editor = %q", m.editor.Value())
	}
	if m.profile != "/p" {
		t.Errorf("profile = %q", m.profile)
	}
	if !strings.Contains(m.View(), "/p") {
		t.Error("view should show the profile")
	}
}

func TestTypingPostsText(t *testing.T) {
	f := &fakeEngine{text: "# Doc"}
	m := loaded(t, f)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if len(f.texts) != 1 || f.texts[0] != "# Docx" {
		t.Errorf("texts = %q", f.texts)
	}
	if !m.dirty {
		t.Error("model should be dirty after typing")
	}

	// Cursor movement is not an edit.
	_, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if len(f.texts) != 1 {
		t.Errorf("cursor move posted text: %q", f.texts)
	}
}

func TestShortcuts(t *testing.T) {
	f := &fakeEngine{text: "a"}
	m := loaded(t, f)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("ctrl+s should return a flush command")
	}
	if msg := cmd(); msg != (flushedMsg{}) {
		t.Errorf("flush msg = %#v", msg)
	}

	if f.toggles != 1 || f.reloads != 1 || f.flushes != 1 {
		t.Errorf("toggles=%d reloads=%d flushes=%d", f.toggles, f.reloads, f.flushes)
	}
	if len(f.texts) != 0 {
		t.Errorf("shortcuts changed text: %q", f.texts)
	}
}

func TestQuit(t *testing.T) {
	m := loaded(t, &fakeEngine{})
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlQ})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+q should quit")
	}
}

func TestFormatKey(t *testing.T) {
	f := &fakeEngine{text: "first\nsecond"}
	m := loaded(t, f)

	// The cursor sits at the end of the last line after loading.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x"), Alt: true})
	if got := f.text; got != "first\n- [ ] second" {
		t.Fatalf("after alt+x = %q", got)
	}
	if m.editor.Value() != f.text {
		t.Errorf("editor = %q", m.editor.Value())
	}
	if m.editor.Line() != 1 {
		t.Errorf("cursor line = %d, want 1", m.editor.Line())
	}
}

func TestFormatKeysHiddenInPreview(t *testing.T) {
	f := &fakeEngine{text: "line"}
	m := loaded(t, f)
	m, _ = update(t, m, viewMsg{engine.Preview})
	m, _ = update(t, m, toolbarMsg{false})

	_, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1"), Alt: true})
	if len(f.texts) != 0 {
		t.Errorf("format applied in preview: %q", f.texts)
	}
	if strings.Contains(m.View(), "heading") {
		t.Error("format help shown while the toolbar is hidden")
	}
}

func TestPreviewRender(t *testing.T) {
	f := &fakeEngine{text: "hello"}
	m := loaded(t, f)
	m, _ = update(t, m, viewMsg{engine.Preview})

	m, cmd := update(t, m, previewMsg{payload: preview.Encode("rendered")})
	if cmd == nil {
		t.Fatal("preview should schedule a render")
	}
	m, _ = update(t, m, cmd())
	if !strings.Contains(m.View(), "rendered") {
		t.Errorf("preview pane missing text:\n%s", m.View())
	}
	if !strings.Contains(m.View(), "preview") {
		t.Error("mode badge missing")
	}
}

func TestSaveMessages(t *testing.T) {
	f := &fakeEngine{text: "saved"}
	m := loaded(t, f)
	m.dirty = true

	m, _ = update(t, m, savedMsg{engine.Attempt{Checksum: checksum.String("saved")}})
	if m.dirty || m.statusErr {
		t.Errorf("dirty=%v statusErr=%v after a good save", m.dirty, m.statusErr)
	}

	m, _ = update(t, m, savedMsg{engine.Attempt{Err: errors.New("disk full")}})
	if !m.statusErr || !strings.Contains(m.statusMsg, "disk full") {
		t.Errorf("status = %q", m.statusMsg)
	}

	report := engine.FailureReport{Path: "/p/notes.md", Attempts: 4}
	m, _ = update(t, m, failedMsg{report})
	if m.statusMsg != report.Message() {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestProfileReloads(t *testing.T) {
	f := &fakeEngine{text: "old"}
	m := loaded(t, f)

	f.text = "new"
	f.status.Profile = "/other"
	m, cmd := update(t, m, profileMsg{path: "/other"})
	m, _ = update(t, m, cmd())
	if m.editor.Value() != "new" || m.profile != "/other" {
		t.Errorf("editor=%q profile=%q", m.editor.Value(), m.profile)
	}
}

func TestLineOffset(t *testing.T) {
	text := "ab\ncd\nef"
	for row, want := range []int{0, 3, 6, 8} {
		if got := lineOffset(text, row); got != want {
			t.Errorf("lineOffset(%d) = %d, want %d", row, got, want)
		}
	}
}

func TestBridge(t *testing.T) {
	var b Bridge
	b.ViewChanged(engine.Preview) // dropped before Attach

	var got []tea.Msg
	b.Attach(func(msg tea.Msg) { got = append(got, msg) })
	b.ViewChanged(engine.Preview)
	b.AffordancesChanged(false)
	b.ProfileLoaded("/p", nil)

	if len(got) != 3 {
		t.Fatalf("forwarded %d messages, want 3", len(got))
	}
	if got[0] != (viewMsg{engine.Preview}) || got[1] != (toolbarMsg{false}) {
		t.Errorf("messages = %#v", got)
	}
}
