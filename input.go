package ambient

// inputAdapter records host events synchronously and hands them to the
// engine at the start of the next tick. Only the latest viewport and pointer
// position survive between ticks.
type inputAdapter struct {
	resizePending bool
	vp            Viewport

	pointerPending bool
	px, py         float64

	hasLast      bool
	lastX, lastY float64
}

func (a *inputAdapter) recordResize(vp Viewport) {
	a.vp = vp
	a.resizePending = true
}

func (a *inputAdapter) recordPointer(x, y float64) {
	a.px, a.py = x, y
	a.pointerPending = true
}

// takeResize returns the viewport recorded since the last tick.
func (a *inputAdapter) takeResize() (Viewport, bool) {
	if !a.resizePending {
		return Viewport{}, false
	}
	a.resizePending = false
	return a.vp, true
}

// takePointer returns the latest pointer position with its displacement
// from the previously applied sample. The first sample has no
// displacement.
func (a *inputAdapter) takePointer() (PointerSample, bool) {
	if !a.pointerPending {
		return PointerSample{}, false
	}
	a.pointerPending = false
	s := PointerSample{X: a.px, Y: a.py}
	if a.hasLast {
		s.DX = a.px - a.lastX
		s.DY = a.py - a.lastY
	}
	a.lastX, a.lastY = a.px, a.py
	a.hasLast = true
	return s, true
}

func (a *inputAdapter) reset() {
	*a = inputAdapter{}
}
