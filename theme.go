package ambient

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Theme is a token selecting a color palette. The set is closed; unknown
// tokens resolve to DefaultTheme.
type Theme string

const (
	ThemeMatrix  Theme = "matrix"
	ThemeAmber   Theme = "amber"
	ThemeCyber   Theme = "cyber"
	ThemeCrimson Theme = "crimson"
	ThemeIce     Theme = "ice"
	ThemeMono    Theme = "mono"

	DefaultTheme = ThemeMatrix
)

// PaletteSlots is the number of per-entity color slots in a Palette.
const PaletteSlots = 4

// Palette is the color data bound to a theme. Never mutated after lookup.
type Palette struct {
	Primary    Color
	Secondary  Color
	Accent     Color
	Glow       Color
	Background Color
	// GlowIntensity scales every glow pass, 0 disables glow for the theme.
	GlowIntensity float64
}

var palettes = map[Theme]Palette{
	ThemeMatrix: {
		Primary:       RGB(0, 255, 70),
		Secondary:     RGB(0, 190, 60),
		Accent:        RGB(160, 255, 170),
		Glow:          RGB(0, 255, 100),
		Background:    RGB(0, 0, 0),
		GlowIntensity: 1,
	},
	ThemeAmber: {
		Primary:       RGB(255, 176, 0),
		Secondary:     RGB(214, 120, 0),
		Accent:        RGB(255, 225, 140),
		Glow:          RGB(255, 150, 20),
		Background:    RGB(12, 6, 0),
		GlowIntensity: 0.9,
	},
	ThemeCyber: {
		Primary:       RGB(0, 240, 255),
		Secondary:     RGB(255, 0, 200),
		Accent:        RGB(190, 120, 255),
		Glow:          RGB(0, 200, 255),
		Background:    RGB(6, 2, 18),
		GlowIntensity: 1.2,
	},
	ThemeCrimson: {
		Primary:       RGB(255, 40, 60),
		Secondary:     RGB(170, 0, 30),
		Accent:        RGB(255, 150, 150),
		Glow:          RGB(255, 30, 50),
		Background:    RGB(10, 0, 2),
		GlowIntensity: 0.8,
	},
	ThemeIce: {
		Primary:       RGB(150, 220, 255),
		Secondary:     RGB(80, 150, 230),
		Accent:        RGB(235, 250, 255),
		Glow:          RGB(120, 200, 255),
		Background:    RGB(2, 8, 16),
		GlowIntensity: 0.7,
	},
	ThemeMono: {
		Primary:       RGB(230, 230, 230),
		Secondary:     RGB(150, 150, 150),
		Accent:        RGB(255, 255, 255),
		Glow:          RGB(200, 200, 200),
		Background:    RGB(0, 0, 0),
		GlowIntensity: 0,
	},
}

// Themes returns every known theme token in a stable order.
func Themes() []Theme {
	return []Theme{ThemeMatrix, ThemeAmber, ThemeCyber, ThemeCrimson, ThemeIce, ThemeMono}
}

// PaletteFor returns the palette bound to t.
func PaletteFor(t Theme) Palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[DefaultTheme]
}

// Known reports whether t is part of the closed theme set.
func (t Theme) Known() bool {
	_, ok := palettes[t]
	return ok
}

// ParseTheme validates a theme token.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if !t.Known() {
		return "", fmt.Errorf("unknown theme %q", s)
	}
	return t, nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown tokens resolve
// to DefaultTheme rather than failing.
func (t *Theme) UnmarshalText(text []byte) error {
	v, err := ParseTheme(string(text))
	if err != nil {
		Logger().Warn("unknown theme, using default", "theme", string(text), "default", string(DefaultTheme))
		v = DefaultTheme
	}
	*t = v
	return nil
}

// Slot returns the color of palette slot i (0 primary, 1 secondary,
// 2 accent, 3 glow). Out-of-range slots fall back to Primary.
func (p Palette) Slot(i int) Color {
	switch i {
	case 1:
		return p.Secondary
	case 2:
		return p.Accent
	case 3:
		return p.Glow
	default:
		return p.Primary
	}
}

// pickSlot draws a palette slot weighted toward the primary color.
func pickSlot(rng *rand.Rand) int {
	r := rng.Float64()
	switch {
	case r < 0.70:
		return 0
	case r < 0.85:
		return 1
	case r < 0.95:
		return 2
	default:
		return 3
	}
}
