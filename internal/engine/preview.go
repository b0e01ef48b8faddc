package engine

import "github.com/starford/scribe/internal/preview"

// previewer keeps the rendered surface in step with the document while the
// preview is visible.
type previewer struct {
	notify  listeners
	doc     *document
	timer   *timer
	renders int
}

func (p *previewer) mutated(mode Mode) {
	if mode == Preview {
		p.timer.arm()
	}
}

func (p *previewer) timerFired(mode Mode) {
	if mode != Preview {
		return
	}
	p.render()
}

// refresh renders now and drops any pending debounced render.
func (p *previewer) refresh() {
	p.timer.cancel()
	p.render()
}

func (p *previewer) render() {
	p.renders++
	p.notify.previewRendered(preview.Encode(p.doc.text))
}
