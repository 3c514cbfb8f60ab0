package ambient

import "github.com/hajimehoshi/ebiten/v2"

// FrameInfo describes one host frame.
type FrameInfo struct {
	// Frame is the host frame counter, starting at 1.
	Frame uint64
	// Delta is the wall time in seconds since the previous frame.
	Delta float64
	// Target is the image the frame composites into. Nil on headless hosts.
	Target *ebiten.Image
}

// FrameFunc is a one-shot per-frame callback.
type FrameFunc func(FrameInfo)

// FrameHandle identifies a pending frame request. The zero value is never
// issued by a host.
type FrameHandle uint64

// FrameHost is whatever owns the per-frame callback and the viewport: a
// window loop, a terminal, or a manual stepper.
type FrameHost interface {
	// RequestFrame schedules fn to run once on the next frame.
	RequestFrame(fn FrameFunc) FrameHandle
	// CancelFrame drops a pending request. Unknown handles are ignored.
	CancelFrame(h FrameHandle)
	// OnResize registers a viewport listener.
	OnResize(fn func(Viewport)) ListenerHandle
	// OnPointerMove registers a pointer listener. Listeners observe the
	// pointer; they never consume it.
	OnPointerMove(fn func(x, y float64)) ListenerHandle
	// Viewport returns the current drawable area.
	Viewport() Viewport
}

// DeviceScaler is implemented by hosts that can report the device pixel
// ratio.
type DeviceScaler interface {
	DeviceScale() float64
}

// --- listeners ---

type listenerRemover interface {
	remove(id uint32)
}

// ListenerHandle allows removing a registered host listener. The zero value
// is valid and removes nothing.
type ListenerHandle struct {
	id  uint32
	set listenerRemover
}

// Remove unregisters the listener. Removing twice is a no-op.
func (h ListenerHandle) Remove() {
	if h.set == nil {
		return
	}
	h.set.remove(h.id)
}

type listener[F any] struct {
	id uint32
	fn F
}

// ListenerSet is an ordered set of callbacks. Hosts outside this package
// embed it to hand out ListenerHandles. Removal builds a new slice so a
// callback may remove itself (or another) while the set is being iterated.
type ListenerSet[F any] struct {
	nextID  uint32
	entries []listener[F]
}

// Add registers fn and returns its handle.
func (s *ListenerSet[F]) Add(fn F) ListenerHandle {
	s.nextID++
	s.entries = append(s.entries, listener[F]{id: s.nextID, fn: fn})
	return ListenerHandle{id: s.nextID, set: s}
}

func (s *ListenerSet[F]) remove(id uint32) {
	for i := range s.entries {
		if s.entries[i].id != id {
			continue
		}
		out := make([]listener[F], 0, len(s.entries)-1)
		out = append(out, s.entries[:i]...)
		s.entries = append(out, s.entries[i+1:]...)
		return
	}
}

// Each calls call for every registered callback in order.
func (s *ListenerSet[F]) Each(call func(F)) {
	for _, l := range s.entries {
		call(l.fn)
	}
}

// Len returns the number of registered callbacks.
func (s *ListenerSet[F]) Len() int {
	return len(s.entries)
}

// --- frame queue ---

type frameRequest struct {
	h  FrameHandle
	fn FrameFunc
}

// FrameQueue holds one-shot frame requests. Requests made while a frame runs
// are deferred to the next frame.
type FrameQueue struct {
	next    FrameHandle
	pending []frameRequest
	running []frameRequest
}

// Push queues fn for the next Run.
func (q *FrameQueue) Push(fn FrameFunc) FrameHandle {
	q.next++
	q.pending = append(q.pending, frameRequest{h: q.next, fn: fn})
	return q.next
}

// Cancel drops a queued request, including one queued for the Run in
// progress.
func (q *FrameQueue) Cancel(h FrameHandle) {
	if h == 0 {
		return
	}
	for i := range q.pending {
		if q.pending[i].h == h {
			copy(q.pending[i:], q.pending[i+1:])
			q.pending = q.pending[:len(q.pending)-1]
			return
		}
	}
	for i := range q.running {
		if q.running[i].h == h {
			q.running[i].fn = nil
			return
		}
	}
}

// Run executes every request pending at entry in FIFO order and returns the
// number of callbacks invoked.
func (q *FrameQueue) Run(info FrameInfo) int {
	q.running, q.pending = q.pending, q.running[:0]
	n := 0
	for i := range q.running {
		fn := q.running[i].fn
		if fn == nil {
			continue
		}
		q.running[i].fn = nil
		fn(info)
		n++
	}
	q.running = q.running[:0]
	return n
}

// Len returns the number of requests waiting for the next Run.
func (q *FrameQueue) Len() int {
	return len(q.pending)
}

// --- manual host ---

// ManualHost is a FrameHost driven explicitly by Step. Tests and headless
// tools use it in place of a window loop.
type ManualHost struct {
	// Delta is the simulated seconds per frame. Zero means 1/60.
	Delta float64
	// Target, when non-nil, is handed to frame callbacks.
	Target *ebiten.Image
	// Scale is reported through DeviceScale. Zero means 1.
	Scale float64

	vp      Viewport
	frame   uint64
	frames  FrameQueue
	resize  ListenerSet[func(Viewport)]
	pointer ListenerSet[func(x, y float64)]
}

// NewManualHost creates a manual host with the given viewport.
func NewManualHost(vp Viewport) *ManualHost {
	return &ManualHost{vp: vp}
}

// RequestFrame implements FrameHost.
func (h *ManualHost) RequestFrame(fn FrameFunc) FrameHandle { return h.frames.Push(fn) }

// CancelFrame implements FrameHost.
func (h *ManualHost) CancelFrame(fh FrameHandle) { h.frames.Cancel(fh) }

// OnResize implements FrameHost.
func (h *ManualHost) OnResize(fn func(Viewport)) ListenerHandle { return h.resize.Add(fn) }

// OnPointerMove implements FrameHost.
func (h *ManualHost) OnPointerMove(fn func(x, y float64)) ListenerHandle {
	return h.pointer.Add(fn)
}

// Viewport implements FrameHost.
func (h *ManualHost) Viewport() Viewport { return h.vp }

// DeviceScale implements DeviceScaler.
func (h *ManualHost) DeviceScale() float64 {
	if h.Scale <= 0 {
		return 1
	}
	return h.Scale
}

// Step runs n frames and returns the total number of callbacks invoked.
func (h *ManualHost) Step(n int) int {
	dt := h.Delta
	if dt <= 0 {
		dt = 1.0 / 60
	}
	total := 0
	for i := 0; i < n; i++ {
		h.frame++
		total += h.frames.Run(FrameInfo{Frame: h.frame, Delta: dt, Target: h.Target})
	}
	return total
}

// Resize sets the viewport and notifies resize listeners synchronously.
func (h *ManualHost) Resize(vp Viewport) {
	h.vp = vp
	h.resize.Each(func(fn func(Viewport)) { fn(vp) })
}

// MovePointer notifies pointer listeners synchronously.
func (h *ManualHost) MovePointer(x, y float64) {
	h.pointer.Each(func(fn func(x, y float64)) { fn(x, y) })
}

// Pending returns the number of frame requests waiting for the next Step.
func (h *ManualHost) Pending() int { return h.frames.Len() }

// Listeners returns the number of registered resize and pointer listeners.
func (h *ManualHost) Listeners() int { return h.resize.Len() + h.pointer.Len() }

// Frame returns the number of frames stepped so far.
func (h *ManualHost) Frame() uint64 { return h.frame }
