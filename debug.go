package ambient

import "time"

// FrameStats holds per-tick metrics. Simulation counters are cumulative
// since the store was built; render counters cover the last frame.
type FrameStats struct {
	Frame     uint64
	Ticks     uint64 // ticks that drew a frame
	Advances  uint64 // ticks that advanced the simulation
	Suspended bool   // last tick skipped drawing for a zero-area viewport
	Sim       SimStats
	Render    RenderStats
	TickTime  time.Duration
}

// Stats returns metrics for the most recent tick.
func (e *Engine) Stats() FrameStats { return e.stats }

func (e *Engine) recordStats(advanced bool, elapsed time.Duration) {
	e.stats.Ticks++
	if advanced {
		e.stats.Advances++
	}
	e.stats.Sim = e.sim.Stats()
	e.stats.Render = e.renderer.Stats()
	e.stats.TickTime = elapsed
	e.debugLog()
}

// debugLog reports frame metrics at debug level when debug mode is on.
func (e *Engine) debugLog() {
	if !e.debug {
		return
	}
	s := &e.stats
	Logger().Debug("frame",
		"frame", s.Frame,
		"tick", s.TickTime,
		"live", s.Sim.Live,
		"respawns", s.Sim.Respawns,
		"rolls", s.Sim.Rolls,
		"resets", s.Sim.Resets,
		"draw_calls", s.Render.DrawCalls,
		"glyphs", s.Render.Glyphs,
		"dots", s.Render.Dots,
		"skipped", s.Render.Skipped,
		"atlas_uploads", s.Render.AtlasUploads,
	)
}
