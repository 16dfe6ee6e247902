package window

// Tx issues window operations from inside Context.Batch, where the device
// lock is already held. A Tx must not be used after its batch returns.
type Tx struct {
	ctx *Context
}

// CreateChild creates a child of parent. See Window.CreateChild.
func (tx *Tx) CreateChild(parent *Window, x, y, width, height int) (*Window, error) {
	return tx.ctx.createChildLocked(parent, "", x, y, width, height)
}

// CreateNamedChild creates a named child of parent.
func (tx *Tx) CreateNamedChild(parent *Window, name string, x, y, width, height int) (*Window, error) {
	return tx.ctx.createChildLocked(parent, name, x, y, width, height)
}

// Move moves w. See Window.Move.
func (tx *Tx) Move(w *Window, x, y int) {
	tx.ctx.moveLocked(w, x, y)
}

// Resize resizes w. See Window.Resize.
func (tx *Tx) Resize(w *Window, x, y, width, height int) error {
	return tx.ctx.resizeLocked(w, x, y, width, height)
}

// Hide hides w.
func (tx *Tx) Hide(w *Window) {
	tx.ctx.setVisibleLocked(w, false)
}

// Show shows w.
func (tx *Tx) Show(w *Window) {
	tx.ctx.setVisibleLocked(w, true)
}

// Refresh composites from w. The flush happens when the batch ends.
func (tx *Tx) Refresh(w *Window) {
	tx.ctx.refreshLocked(w)
}

// Release drops a reference on w.
func (tx *Tx) Release(w *Window) {
	tx.ctx.releaseLocked(w)
}

// Retain adds a reference on w.
func (tx *Tx) Retain(w *Window) {
	if w.released {
		panic("window: retain of released window " + w.id)
	}
	w.refs++
}

// Children returns w's live children from bottom to top.
func (tx *Tx) Children(w *Window) []*Window {
	var out []*Window
	for c := w.bottom; c != nil; c = c.next {
		out = append(out, c)
	}
	return out
}
