package ambient

// TickFunc is invoked once per host frame while a scheduler runs. advance is
// true on frames where the simulation is due to move.
type TickFunc func(info FrameInfo, advance bool)

// CancelToken stops a running scheduler. It is returned by Start and must be
// invoked exactly once by the owner; later calls are no-ops.
type CancelToken struct {
	s         *Scheduler
	cancelled bool
}

// Cancel deregisters the pending frame request synchronously. A callback the
// host has already dequeued for the current frame returns without ticking.
func (t *CancelToken) Cancel() {
	if t == nil || t.cancelled {
		return
	}
	t.cancelled = true
	if t.s != nil {
		t.s.host.CancelFrame(t.s.handle)
		t.s.handle = 0
		t.s.token = nil
	}
}

// Cancelled reports whether Cancel has been called.
func (t *CancelToken) Cancelled() bool {
	return t == nil || t.cancelled
}

// Scheduler registers a tick with a FrameHost and re-registers it at the end
// of every tick, throttling simulation advances to every interval frames.
type Scheduler struct {
	host     FrameHost
	interval int
	fn       TickFunc
	cb       FrameFunc
	handle   FrameHandle
	token    *CancelToken
	frames   uint64
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(host FrameHost, interval int, fn TickFunc) *Scheduler {
	s := &Scheduler{host: host, fn: fn}
	s.SetInterval(interval)
	s.cb = s.frame
	return s
}

// SetInterval changes the advance cadence. Values below 1 are treated as 1.
func (s *Scheduler) SetInterval(n int) {
	s.interval = max(n, 1)
}

// Interval returns the advance cadence in frames.
func (s *Scheduler) Interval() int { return s.interval }

// Running reports whether a frame request is outstanding.
func (s *Scheduler) Running() bool {
	return s.token != nil && !s.token.cancelled
}

// Start registers the first frame and returns the token that stops it.
// Starting a running scheduler returns the existing token.
func (s *Scheduler) Start() *CancelToken {
	if s.Running() {
		return s.token
	}
	s.token = &CancelToken{s: s}
	s.handle = s.host.RequestFrame(s.cb)
	return s.token
}

func (s *Scheduler) frame(info FrameInfo) {
	tok := s.token
	if tok == nil || tok.cancelled {
		return
	}
	s.handle = 0
	s.frames++
	s.fn(info, s.frames%uint64(s.interval) == 0)
	if tok.cancelled || s.token != tok {
		return
	}
	s.handle = s.host.RequestFrame(s.cb)
}
