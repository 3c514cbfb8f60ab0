// Package term hosts ambient engines in a terminal through tcell. The
// terminal is a FrameHost whose viewport is measured in cells; engines draw
// through a Surface with a glyph size of 1.
package term

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/phanxgames/ambient"
)

// FrameInterval is the terminal frame period.
const FrameInterval = 16 * time.Millisecond

// Host is an ambient.FrameHost driven by a tcell screen.
type Host struct {
	screen  tcell.Screen
	vp      ambient.Viewport
	frame   uint64
	last    time.Time
	frames  ambient.FrameQueue
	resize  ambient.ListenerSet[func(ambient.Viewport)]
	pointer ambient.ListenerSet[func(x, y float64)]

	px, py     int
	hasPointer bool
}

// NewHost wraps an initialized screen and enables mouse reporting.
func NewHost(screen tcell.Screen) *Host {
	screen.EnableMouse()
	w, h := screen.Size()
	return &Host{screen: screen, vp: ambient.Viewport{Width: w, Height: h}}
}

// Screen returns the underlying screen.
func (h *Host) Screen() tcell.Screen { return h.screen }

// RequestFrame implements ambient.FrameHost.
func (h *Host) RequestFrame(fn ambient.FrameFunc) ambient.FrameHandle { return h.frames.Push(fn) }

// CancelFrame implements ambient.FrameHost.
func (h *Host) CancelFrame(fh ambient.FrameHandle) { h.frames.Cancel(fh) }

// OnResize implements ambient.FrameHost.
func (h *Host) OnResize(fn func(ambient.Viewport)) ambient.ListenerHandle {
	return h.resize.Add(fn)
}

// OnPointerMove implements ambient.FrameHost.
func (h *Host) OnPointerMove(fn func(x, y float64)) ambient.ListenerHandle {
	return h.pointer.Add(fn)
}

// Viewport implements ambient.FrameHost.
func (h *Host) Viewport() ambient.Viewport { return h.vp }

// DeviceScale implements ambient.DeviceScaler. Terminal cells have no pixel
// ratio.
func (h *Host) DeviceScale() float64 { return 1 }

// Listeners returns the number of registered resize and pointer listeners.
func (h *Host) Listeners() int { return h.resize.Len() + h.pointer.Len() }

// Pending returns the number of frame requests waiting for the next frame.
func (h *Host) Pending() int { return h.frames.Len() }

// Frame runs every pending frame request and shows the screen. It returns
// the number of callbacks invoked.
func (h *Host) Frame(now time.Time) int {
	dt := FrameInterval.Seconds()
	if !h.last.IsZero() {
		dt = now.Sub(h.last).Seconds()
	}
	h.last = now
	h.frame++
	n := h.frames.Run(ambient.FrameInfo{Frame: h.frame, Delta: dt})
	h.screen.Show()
	return n
}

// HandleEvent applies a screen event to the host. It reports false when the
// event asks the host to quit.
func (h *Host) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			if ev.Rune() == 'q' {
				return false
			}
		}
	case *tcell.EventResize:
		w, h2 := ev.Size()
		vp := ambient.Viewport{Width: w, Height: h2}
		if vp != h.vp {
			h.vp = vp
			h.screen.Clear()
			h.resize.Each(func(fn func(ambient.Viewport)) { fn(vp) })
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		if !h.hasPointer || x != h.px || y != h.py {
			h.px, h.py = x, y
			h.hasPointer = true
			h.pointer.Each(func(fn func(x, y float64)) { fn(float64(x), float64(y)) })
		}
	}
	return true
}

// Loop pumps screen events and runs frames every FrameInterval until ctx is
// cancelled or the user quits. The event pump goroutine has exited by the
// time Loop returns.
func (h *Host) Loop(ctx context.Context) {
	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	pumped := make(chan struct{})
	go func() {
		defer close(pumped)
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case <-quit:
				return
			default:
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()
	defer func() {
		close(quit)
		// Wake a pump blocked in PollEvent.
		_ = h.screen.PostEvent(tcell.NewEventInterrupt(nil))
		<-pumped
	}()

	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if !h.HandleEvent(ev) {
				return
			}
		case now := <-ticker.C:
			h.Frame(now)
		}
	}
}

// ErrNoEngines is returned by Run when called without engines.
var ErrNoEngines = errors.New("term: no engines")

// Renderer returns a RendererFactory that draws through a Surface on the
// host's screen. Engines mounted on a Host must use it.
func Renderer(h *Host) ambient.RendererFactory {
	return func(_ ambient.QualityTier, vp ambient.Viewport, _ ambient.Config, p ambient.Palette) (ambient.Renderer, error) {
		s := NewSurface(h.screen)
		s.Resize(vp.Width, vp.Height)
		return ambient.NewRasterRenderer(s, p), nil
	}
}

// Run initializes the terminal, builds one engine per config with the
// terminal renderer, and blocks until ctx is done or the user quits.
func Run(ctx context.Context, cfgs []ambient.Config, opts ...ambient.Option) error {
	if len(cfgs) == 0 {
		return ErrNoEngines
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("term: create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("term: init screen: %w", err)
	}
	defer screen.Fini()
	screen.HideCursor()
	return RunOn(ctx, screen, cfgs, opts...)
}

// RunOn is Run on an already initialized screen. The screen is left
// initialized on return and no goroutine reads from it any more, so the
// caller may keep polling it or call Fini.
func RunOn(ctx context.Context, screen tcell.Screen, cfgs []ambient.Config, opts ...ambient.Option) error {
	host := NewHost(screen)
	engines := make([]*ambient.Engine, 0, len(cfgs))
	defer func() {
		for _, e := range engines {
			e.Dispose()
		}
	}()
	opts = append(opts[:len(opts):len(opts)], ambient.WithRenderer(Renderer(host)))
	for i, cfg := range cfgs {
		cfg.GlyphSize = 1
		eng, err := ambient.New(cfg, opts...)
		if err != nil {
			return fmt.Errorf("term: engine %d: %w", i, err)
		}
		if err := eng.Mount(host, host.Viewport()); err != nil {
			return fmt.Errorf("term: mount engine %d: %w", i, err)
		}
		engines = append(engines, eng)
	}
	host.Loop(ctx)
	return nil
}
