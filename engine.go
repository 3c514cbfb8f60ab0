package ambient

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Option configures an Engine at construction.
type Option func(*Engine)

// RendererFactory builds the renderer for one activation.
type RendererFactory func(tier QualityTier, vp Viewport, cfg Config, p Palette) (Renderer, error)

// WithSignals replaces ProbeDevice as the source of capability signals.
// Viewport fields are always taken from the mount viewport.
func WithSignals(sig DeviceSignals) Option {
	return func(e *Engine) {
		e.signals = &sig
	}
}

// WithRenderer replaces the renderer selected by Config.Backend.
func WithRenderer(f RendererFactory) Option {
	return func(e *Engine) {
		e.newRenderer = f
	}
}

// WithEventSink registers a receiver for lifecycle events.
func WithEventSink(s EventSink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

// WithGlyphs replaces the rain symbol set.
func WithGlyphs(glyphs []rune) Option {
	return func(e *Engine) {
		e.glyphs = glyphs
	}
}

// Engine is one mounted ambient effect. It owns its store, renderer,
// listeners, and frame registration; nothing is shared between engines.
// All methods must be called from the host's frame loop goroutine.
type Engine struct {
	// ScreenshotDir is the directory screenshots are written to.
	ScreenshotDir string

	cfg         Config
	signals     *DeviceSignals
	newRenderer RendererFactory
	sink        EventSink
	glyphs      []rune

	state     State
	host      FrameHost
	vp        Viewport
	tier      QualityTier
	tierWidth int
	palette   Palette

	rng      *rand.Rand
	sim      Simulation
	renderer Renderer
	frame    Frame

	sched    *Scheduler
	token    *CancelToken
	resizeH  ListenerHandle
	pointerH ListenerHandle

	input       inputAdapter
	injectQueue []syntheticEvent
	fade        *fadeIn
	intensity   float64

	runner          *TestRunner
	screenshotQueue []string

	debug bool
	stats FrameStats
}

// New validates cfg and returns an unmounted engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.normalized()
	e := &Engine{
		ScreenshotDir: "screenshots",
		cfg:           cfg,
		palette:       PaletteFor(cfg.Theme),
		debug:         cfg.Debug,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.newRenderer == nil {
		e.newRenderer = defaultRenderer
	}
	return e, nil
}

// defaultRenderer builds the renderer named by cfg.Backend.
func defaultRenderer(tier QualityTier, vp Viewport, cfg Config, p Palette) (Renderer, error) {
	switch cfg.Backend {
	case BackendRetained:
		r, err := NewRetainedRenderer(tier, vp, p, cfg.GlyphSize)
		if err != nil {
			return nil, fmt.Errorf("retained renderer: %w", err)
		}
		return r, nil
	default:
		glow := tier.GlowEnabled && p.GlowIntensity > 0
		c, err := NewCanvas(vp.Width, vp.Height, tier.PixelDensity, cfg.GlyphSize, glow)
		if err != nil {
			return nil, fmt.Errorf("raster canvas: %w", err)
		}
		return NewRasterRenderer(c, p), nil
	}
}

// Mount derives the quality tier and, unless it is Off, allocates the store
// and renderer, registers host listeners, and starts the frame scheduler.
// An Off tier, or a renderer that cannot be created, leaves the engine
// Suspended with nothing allocated or registered. Mounting an active engine
// is a no-op. The only errors are ErrDisposed and ErrNoHost.
func (e *Engine) Mount(host FrameHost, vp Viewport) error {
	switch {
	case e.state == StateDisposed:
		return ErrDisposed
	case host == nil:
		return ErrNoHost
	case e.state == StateActive:
		return nil
	}

	e.host = host
	e.vp = vp
	e.deriveTier()
	if !e.tier.Enabled() {
		e.setState(StateSuspended)
		return nil
	}
	if err := e.build(); err != nil {
		Logger().Warn("renderer unavailable, suspending", "error", err)
		e.host = nil
		e.setState(StateSuspended)
		return nil
	}

	e.input.reset()
	e.resizeH = host.OnResize(e.input.recordResize)
	e.pointerH = host.OnPointerMove(e.input.recordPointer)
	e.sched = NewScheduler(host, e.tier.UpdateIntervalFrames, e.tick)
	e.token = e.sched.Start()
	e.fade = newFadeIn(e.cfg.Intensity, e.cfg.FadeIn)
	e.intensity = e.fade.value
	e.setState(StateActive)
	return nil
}

func (e *Engine) deriveTier() {
	var sig DeviceSignals
	if e.signals != nil {
		sig = *e.signals
	} else {
		sig = ProbeDevice()
	}
	sig.ViewportWidth, sig.ViewportHeight = e.vp.Width, e.vp.Height
	if sig.DeviceScale == 0 {
		if ds, ok := e.host.(DeviceScaler); ok {
			sig.DeviceScale = ds.DeviceScale()
		}
	}
	e.tier = DeriveTier(sig)
	e.tierWidth = e.vp.Width
	Logger().Info("quality tier", "level", e.tier.Level.String(), "entities", e.tier.EntityCount,
		"depth", e.tier.TrailDepth, "interval", e.tier.UpdateIntervalFrames, "glow", e.tier.GlowEnabled)
	e.emit(LifecycleEvent{Kind: EventTierChanged})
}

// build creates a fresh store and renderer for the current tier.
func (e *Engine) build() error {
	e.rng = newRand(e.cfg.Seed)
	switch e.cfg.Variant {
	case VariantSparks:
		e.sim = NewParticleField(e.rng)
	default:
		e.sim = NewColumnRain(e.rng, e.cfg.GlyphSize, e.glyphs)
	}
	e.sim.Initialize(e.tier, e.vp)

	r, err := e.newRenderer(e.tier, e.vp, e.cfg, e.palette)
	if err != nil {
		e.sim = nil
		return fmt.Errorf("mount: %w", err)
	}
	e.renderer = r
	return nil
}

// teardown cancels the frame registration, removes listeners, and releases
// the renderer, all within the calling frame.
func (e *Engine) teardown() {
	if e.token != nil {
		e.token.Cancel()
		e.token = nil
	}
	e.sched = nil
	e.resizeH.Remove()
	e.resizeH = ListenerHandle{}
	e.pointerH.Remove()
	e.pointerH = ListenerHandle{}
	if e.renderer != nil {
		e.renderer.Dispose()
		e.renderer = nil
	}
	e.sim = nil
	e.injectQueue = e.injectQueue[:0]
	e.screenshotQueue = e.screenshotQueue[:0]
	e.input.reset()
}

// Unmount stops the engine and releases its resources. A later Mount
// rebuilds everything from a freshly derived tier.
func (e *Engine) Unmount() {
	if e.state == StateUninitialized || e.state == StateDisposed {
		return
	}
	e.teardown()
	e.host = nil
	e.setState(StateSuspended)
}

// Dispose unmounts the engine permanently. Calling it again is a no-op.
func (e *Engine) Dispose() {
	if e.state == StateDisposed {
		return
	}
	e.teardown()
	e.host = nil
	e.setState(StateDisposed)
}

// tick is the scheduler callback: apply recorded input, advance when due,
// then render.
func (e *Engine) tick(info FrameInfo, advance bool) {
	if e.state != StateActive {
		return
	}
	start := time.Now()

	if e.runner != nil {
		e.runner.step(e)
	}
	e.processInjected()
	e.applyInput()
	if e.state != StateActive || e.sim == nil {
		return
	}

	e.intensity = e.fade.Update(info.Delta)
	e.stats.Frame = info.Frame
	if e.vp.Empty() {
		e.stats.Suspended = true
		return
	}
	e.stats.Suspended = false

	if advance {
		e.sim.Advance(float64(e.sched.Interval()))
	}

	e.sim.Snapshot(&e.frame)
	e.frame.Tier = e.tier
	e.frame.Palette = e.palette
	e.frame.Intensity = e.intensity
	e.frame.Trail = e.cfg.Trail
	e.renderer.DrawFrame(&e.frame)
	e.renderer.Present(info.Target)
	e.flushScreenshots(info.Target)

	e.recordStats(advance, time.Since(start))
}

func (e *Engine) applyInput() {
	if vp, ok := e.input.takeResize(); ok {
		e.applyResize(vp)
	}
	if s, ok := e.input.takePointer(); ok && e.cfg.Interactive && e.sim != nil {
		e.sim.Perturb(s)
	}
}

// applyResize adapts the store to vp. A zero-area viewport only suspends
// drawing. Crossing the mobile breakpoint re-derives the tier and rebuilds
// the store when the tier changed.
func (e *Engine) applyResize(vp Viewport) {
	e.vp = vp
	if vp.Empty() {
		return
	}
	if IsMobile(e.tierWidth) != IsMobile(vp.Width) {
		old := e.tier
		e.deriveTier()
		if e.tier != old {
			e.rebuild(old)
			return
		}
	}
	e.sim.Resize(vp)
	e.renderer.Resize(vp)
}

func (e *Engine) rebuild(old QualityTier) {
	if !e.tier.Enabled() {
		e.teardown()
		e.setState(StateSuspended)
		return
	}
	e.renderer.Dispose()
	e.renderer = nil
	if err := e.build(); err != nil {
		Logger().Warn("rebuild failed, suspending", "error", err)
		e.teardown()
		e.setState(StateSuspended)
		return
	}
	e.sched.SetInterval(e.tier.UpdateIntervalFrames)
	Logger().Info("tier re-derived", "from", old.Level.String(), "to", e.tier.Level.String())
}

// SetTheme swaps the palette and repaints palette-dependent state. The
// frame registration is untouched. Unknown themes resolve to DefaultTheme.
func (e *Engine) SetTheme(t Theme) {
	if !t.Known() {
		Logger().Warn("unknown theme, using default", "theme", string(t), "default", string(DefaultTheme))
		t = DefaultTheme
	}
	if e.state == StateDisposed || t == e.cfg.Theme {
		return
	}
	e.cfg.Theme = t
	e.palette = PaletteFor(t)
	if e.renderer != nil {
		e.renderer.SetPalette(e.palette)
	}
	if e.sim != nil {
		e.sim.Repaint()
	}
	e.emit(LifecycleEvent{Kind: EventThemeChanged})
}

// SetVariant switches the entity kind, rebuilding the store and renderer of
// an active engine while keeping its frame registration.
func (e *Engine) SetVariant(v Variant) {
	if e.state == StateDisposed || v == e.cfg.Variant {
		return
	}
	e.cfg.Variant = v
	if e.state == StateActive {
		e.renderer.Dispose()
		e.renderer = nil
		if err := e.build(); err != nil {
			Logger().Warn("variant rebuild failed, suspending", "error", err)
			e.teardown()
			e.setState(StateSuspended)
		}
	}
	e.emit(LifecycleEvent{Kind: EventVariantChanged})
}

// SetIntensity changes the target opacity, clamped to (0, 1].
func (e *Engine) SetIntensity(v float64) {
	v = min(max(v, 0.01), 1)
	e.cfg.Intensity = v
	if e.fade != nil {
		e.fade.retarget(v)
	}
}

// SetDebugMode enables per-frame debug logging.
func (e *Engine) SetDebugMode(enabled bool) { e.debug = enabled }

// State returns the lifecycle state.
func (e *Engine) State() State { return e.state }

// Tier returns the tier derived at the last mount or breakpoint crossing.
func (e *Engine) Tier() QualityTier { return e.tier }

// Viewport returns the viewport applied at the last tick.
func (e *Engine) Viewport() Viewport { return e.vp }

// Config returns the current activation parameters.
func (e *Engine) Config() Config { return e.cfg }

// Palette returns the active palette.
func (e *Engine) Palette() Palette { return e.palette }

// Intensity returns the current, possibly fading, intensity.
func (e *Engine) Intensity() float64 { return e.intensity }

// Simulation returns the entity store, or nil when not active.
func (e *Engine) Simulation() Simulation { return e.sim }

// Renderer returns the renderer, or nil when not active.
func (e *Engine) Renderer() Renderer { return e.renderer }
