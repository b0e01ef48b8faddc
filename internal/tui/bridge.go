package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/scribe/internal/engine"
	"github.com/starford/scribe/internal/style"
)

// Engine notifications, delivered to the model as messages.
type (
	previewMsg struct{ payload string }
	viewMsg    struct{ mode engine.Mode }
	toolbarMsg struct{ visible bool }
	stylesMsg  struct{ theme style.Theme }
	savedMsg   struct{ attempt engine.Attempt }
	failedMsg  struct{ report engine.FailureReport }
	profileMsg struct {
		path string
		err  error
	}
)

// Bridge is an engine.Listener that forwards notifications to a running
// tea.Program. Notifications before Attach are dropped; the model loads the
// current state itself on Init.
type Bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

var _ engine.Listener = (*Bridge)(nil)

// Attach starts forwarding to send, normally (*tea.Program).Send.
func (b *Bridge) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Bridge) forward(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

func (b *Bridge) PreviewRendered(payload string)    { b.forward(previewMsg{payload}) }
func (b *Bridge) ViewChanged(m engine.Mode)         { b.forward(viewMsg{m}) }
func (b *Bridge) AffordancesChanged(visible bool)   { b.forward(toolbarMsg{visible}) }
func (b *Bridge) StylesApplied(t style.Theme)       { b.forward(stylesMsg{t}) }
func (b *Bridge) SaveAttempted(a engine.Attempt)    { b.forward(savedMsg{a}) }
func (b *Bridge) SaveFailed(f engine.FailureReport) { b.forward(failedMsg{f}) }
func (b *Bridge) ProfileLoaded(path string, err error) {
	b.forward(profileMsg{path: path, err: err})
}
