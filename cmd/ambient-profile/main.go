// Command ambient-profile runs every quality tier and variant headlessly and
// writes per-run simulation and draw counters as CSV.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/ambient"
)

// Run is one CSV row.
type Run struct {
	Tier       string  `csv:"tier"`
	Variant    string  `csv:"variant"`
	Frames     int     `csv:"frames"`
	Entities   int     `csv:"entities"`
	Depth      int     `csv:"depth"`
	Interval   int     `csv:"interval"`
	Live       int     `csv:"live"`
	Spawned    int     `csv:"spawned"`
	Respawns   int     `csv:"respawns"`
	Rolls      int     `csv:"rolls"`
	Resets     int     `csv:"resets"`
	Glyphs     int     `csv:"glyphs"`
	Dots       int     `csv:"dots"`
	DrawsFrame float64 `csv:"draws_per_frame"`
	TickMicros float64 `csv:"tick_us"`
}

var tiers = []struct {
	name string
	sig  ambient.DeviceSignals
}{
	{"off", ambient.DeviceSignals{ReducedMotion: true}},
	{"low", ambient.DeviceSignals{Cores: 2, MemoryGB: 2}},
	{"medium", ambient.DeviceSignals{Cores: 4, MemoryGB: 4}},
	{"high", ambient.DeviceSignals{Cores: 8, MemoryGB: 8, DeviceScale: 2}},
}

func main() {
	configPath := flag.String("config", "", "Config YAML file (empty = use defaults)")
	frames := flag.Int("frames", 600, "Frames per run")
	width := flag.Int("width", 1280, "Viewport width")
	height := flag.Int("height", 720, "Viewport height")
	outPath := flag.String("out", "", "Output CSV path (empty = stdout)")
	verbose := flag.Bool("v", false, "Log engine lifecycle to stderr")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	ambient.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := ambient.LoadConfigFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating %s: %v\n", *outPath, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	vp := ambient.Viewport{Width: *width, Height: *height}
	var rows []Run
	for _, tier := range tiers {
		for _, variant := range []ambient.Variant{ambient.VariantRain, ambient.VariantSparks} {
			c := cfg
			c.Variant = variant
			row, err := profile(c, tier.sig, vp, *frames)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s/%s: %v\n", tier.name, variant, err)
				os.Exit(1)
			}
			row.Tier = tier.name
			rows = append(rows, row)
		}
	}
	if err := gocsv.Marshal(rows, out); err != nil {
		fmt.Fprintf(os.Stderr, "writing csv: %v\n", err)
		os.Exit(1)
	}
}

// profile mounts one engine on a manual host, sweeps the pointer across the
// viewport, and accumulates the per-frame counters.
func profile(cfg ambient.Config, sig ambient.DeviceSignals, vp ambient.Viewport, frames int) (Run, error) {
	eng, err := ambient.New(cfg, ambient.WithSignals(sig), ambient.WithRenderer(countingRenderer))
	if err != nil {
		return Run{}, err
	}
	defer eng.Dispose()

	host := ambient.NewManualHost(vp)
	if err := eng.Mount(host, vp); err != nil {
		return Run{}, err
	}
	tier := eng.Tier()
	row := Run{
		Variant:  cfg.Variant.String(),
		Frames:   frames,
		Entities: tier.EntityCount,
		Depth:    tier.TrailDepth,
		Interval: tier.UpdateIntervalFrames,
	}
	if eng.State() != ambient.StateActive {
		return row, nil
	}

	var draws uint64
	var elapsed time.Duration
	for i := 0; i < frames; i++ {
		t := float64(i) / 60
		host.MovePointer(
			float64(vp.Width)*(0.5+0.4*math.Cos(t)),
			float64(vp.Height)*(0.5+0.4*math.Sin(t*1.3)),
		)
		host.Step(1)
		st := eng.Stats()
		draws += uint64(st.Render.DrawCalls)
		row.Glyphs += st.Render.Glyphs
		row.Dots += st.Render.Dots
		elapsed += st.TickTime
	}
	st := eng.Stats()
	row.Live = st.Sim.Live
	row.Spawned = st.Sim.Spawned
	row.Respawns = st.Sim.Respawns
	row.Rolls = st.Sim.Rolls
	row.Resets = st.Sim.Resets
	row.DrawsFrame = float64(draws) / float64(frames)
	row.TickMicros = float64(elapsed.Microseconds()) / float64(frames)
	return row, nil
}

func countingRenderer(_ ambient.QualityTier, vp ambient.Viewport, _ ambient.Config, p ambient.Palette) (ambient.Renderer, error) {
	return ambient.NewRasterRenderer(&countingSurface{w: vp.Width, h: vp.Height}, p), nil
}

// countingSurface accepts draws without rasterizing them so runs measure
// simulation and renderer bookkeeping only.
type countingSurface struct {
	w, h int
}

func (s *countingSurface) Size() (int, int)                                                    { return s.w, s.h }
func (s *countingSurface) Resize(w, h int)                                                     { s.w, s.h = w, h }
func (s *countingSurface) Fade(ambient.Color, float64)                                         {}
func (s *countingSurface) Glyph(rune, float64, float64, float64, ambient.Color, ambient.Color) {}
func (s *countingSurface) Dot(float64, float64, float64, ambient.Color, ambient.Color)         {}
func (s *countingSurface) Flush(*ebiten.Image)                                                 {}
func (s *countingSurface) Dispose()                                                            {}
