package ambient

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig holds optional settings for Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
}

// Loop is an ebiten.Game that hosts engines in a window. Frame requests run
// in Draw, in registration order, so engines composite in mount order.
type Loop struct {
	ShowFPS bool

	vp      Viewport
	frame   uint64
	last    time.Time
	frames  FrameQueue
	resize  ListenerSet[func(Viewport)]
	pointer ListenerSet[func(x, y float64)]

	px, py     float64
	hasPointer bool
	touchIDs   []ebiten.TouchID

	fps *fpsOverlay
}

// NewLoop creates a window loop with an initial viewport.
func NewLoop(vp Viewport) *Loop {
	return &Loop{vp: vp}
}

// RequestFrame implements FrameHost.
func (l *Loop) RequestFrame(fn FrameFunc) FrameHandle { return l.frames.Push(fn) }

// CancelFrame implements FrameHost.
func (l *Loop) CancelFrame(h FrameHandle) { l.frames.Cancel(h) }

// OnResize implements FrameHost.
func (l *Loop) OnResize(fn func(Viewport)) ListenerHandle { return l.resize.Add(fn) }

// OnPointerMove implements FrameHost.
func (l *Loop) OnPointerMove(fn func(x, y float64)) ListenerHandle { return l.pointer.Add(fn) }

// Viewport implements FrameHost.
func (l *Loop) Viewport() Viewport { return l.vp }

// DeviceScale implements DeviceScaler.
func (l *Loop) DeviceScale() float64 {
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}

// Update polls the pointer (mouse, or the first touch when present) and
// notifies listeners when it moved.
func (l *Loop) Update() error {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	l.touchIDs = ebiten.AppendTouchIDs(l.touchIDs[:0])
	if len(l.touchIDs) > 0 {
		tx, ty := ebiten.TouchPosition(l.touchIDs[0])
		x, y = float64(tx), float64(ty)
	}
	if !l.hasPointer || x != l.px || y != l.py {
		l.px, l.py = x, y
		l.hasPointer = true
		l.pointer.Each(func(fn func(x, y float64)) { fn(x, y) })
	}
	return nil
}

// Draw runs every pending frame request against screen.
func (l *Loop) Draw(screen *ebiten.Image) {
	now := time.Now()
	dt := 1.0 / float64(ebiten.TPS())
	if !l.last.IsZero() {
		dt = now.Sub(l.last).Seconds()
	}
	l.last = now
	l.frame++
	l.frames.Run(FrameInfo{Frame: l.frame, Delta: dt, Target: screen})

	if l.ShowFPS {
		if l.fps == nil {
			l.fps = newFPSOverlay()
		}
		l.fps.update(dt)
		l.fps.draw(screen)
	}
}

// Layout tracks the outside size as the viewport and notifies resize
// listeners when it changes.
func (l *Loop) Layout(outsideWidth, outsideHeight int) (int, int) {
	vp := Viewport{outsideWidth, outsideHeight}
	if vp != l.vp {
		l.vp = vp
		l.resize.Each(func(fn func(Viewport)) { fn(vp) })
	}
	return outsideWidth, outsideHeight
}

// Run opens a resizable window, mounts every engine in order, and blocks
// until the window closes. Engines are disposed on return.
func Run(cfg RunConfig, engines ...*Engine) error {
	if cfg.Width <= 0 {
		cfg.Width = 960
	}
	if cfg.Height <= 0 {
		cfg.Height = 600
	}
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	loop := NewLoop(Viewport{cfg.Width, cfg.Height})
	loop.ShowFPS = cfg.ShowFPS
	defer func() {
		for _, e := range engines {
			e.Dispose()
		}
	}()
	for i, e := range engines {
		if err := e.Mount(loop, loop.Viewport()); err != nil {
			return fmt.Errorf("mount engine %d: %w", i, err)
		}
	}
	if err := ebiten.RunGame(loop); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
