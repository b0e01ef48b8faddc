package engine

// viewController switches between the editor and the preview surface.
type viewController struct {
	notify  listeners
	preview *previewer
	mode    Mode
}

func (v *viewController) toggle() {
	if v.mode == Edit {
		v.enterPreview()
		return
	}
	v.enterEdit()
}

func (v *viewController) set(m Mode) {
	if m == v.mode {
		return
	}
	v.toggle()
}

func (v *viewController) enterPreview() {
	v.preview.refresh()
	v.mode = Preview
	v.notify.viewChanged(Preview)
	v.notify.affordancesChanged(false)
}

func (v *viewController) enterEdit() {
	v.preview.timer.cancel()
	v.mode = Edit
	v.notify.viewChanged(Edit)
	v.notify.affordancesChanged(true)
}
