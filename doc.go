// Package ambient is a procedural backdrop animation engine for [Ebitengine].
//
// An [Engine] draws a full-viewport decorative animation behind host
// content: falling glyph columns ("rain") or pointer-reactive particle
// bursts ("sparks"). It never consumes input; pointer events are observed
// only.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window and hosts
// one or more engines:
//
//	eng, err := ambient.New(ambient.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	ambient.Run(ambient.RunConfig{Title: "Rain", Width: 960, Height: 600}, eng)
//
// For full control, mount the engine on any [FrameHost]. [Loop] is an
// [ebiten.Game] host; [ManualHost] is stepped explicitly and suits tests and
// headless tools; the term sub-package hosts engines in a terminal.
//
// # Quality tiers
//
// On mount the engine derives a [QualityTier] from [DeviceSignals] via
// [DeriveTier]: entity count, column depth, update cadence, pixel density,
// and glow. Reduced motion yields the Off tier and the engine stays
// suspended without allocating anything.
//
// # Renderers
//
// [BackendRaster] paints onto a persistent [Canvas] and fades it toward the
// palette background every frame, so motion leaves trails.
// [BackendRetained] keeps a fixed pool of quads, rasterizes glyphs once into
// a [GlyphAtlas], and issues one DrawTriangles32 per layer.
//
// # Lifecycle
//
// [Engine.Mount], [Engine.Unmount], and [Engine.Dispose] move the engine
// through [State]s. Unmount cancels the frame registration and removes host
// listeners within the same call. [Engine.SetTheme] and [Engine.SetVariant]
// apply without touching the frame registration.
//
// # Logging
//
// The package is silent by default. Call [SetLogger] with a [log/slog]
// logger to see lifecycle and debug output.
//
// [Ebitengine]: https://ebitengine.org
package ambient
