package ambient

type syntheticKind uint8

const (
	syntheticPointer syntheticKind = iota
	syntheticResize
	syntheticTheme
	syntheticVariant
)

// syntheticEvent is a single injected host event. One event is consumed per
// tick, before real input is applied.
type syntheticEvent struct {
	kind    syntheticKind
	x, y    float64
	vp      Viewport
	theme   Theme
	variant Variant
}

// InjectPointerMove queues a pointer move to (x, y). The event is consumed
// on the next tick exactly like a host pointer event.
func (e *Engine) InjectPointerMove(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{kind: syntheticPointer, x: x, y: y})
}

// InjectPointerPath queues pointer moves linearly interpolated from
// (fromX, fromY) to (toX, toY) over the given number of ticks (minimum 2).
func (e *Engine) InjectPointerPath(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(frames-1)
		e.InjectPointerMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
}

// InjectResize queues a viewport change.
func (e *Engine) InjectResize(w, h int) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{kind: syntheticResize, vp: Viewport{w, h}})
}

// InjectTheme queues a theme change applied at the next tick.
func (e *Engine) InjectTheme(t Theme) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{kind: syntheticTheme, theme: t})
}

// InjectVariant queues a variant change applied at the next tick.
func (e *Engine) InjectVariant(v Variant) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{kind: syntheticVariant, variant: v})
}

// PendingInjections returns the number of queued synthetic events.
func (e *Engine) PendingInjections() int { return len(e.injectQueue) }

// processInjected pops one synthetic event. Pointer and resize events are
// recorded into the input adapter so they follow the same path as host
// events.
func (e *Engine) processInjected() {
	if len(e.injectQueue) == 0 {
		return
	}
	evt := e.injectQueue[0]
	copy(e.injectQueue, e.injectQueue[1:])
	e.injectQueue = e.injectQueue[:len(e.injectQueue)-1]

	switch evt.kind {
	case syntheticPointer:
		e.input.recordPointer(evt.x, evt.y)
	case syntheticResize:
		e.input.recordResize(evt.vp)
	case syntheticTheme:
		e.SetTheme(evt.theme)
	case syntheticVariant:
		e.SetVariant(evt.variant)
	}
}
