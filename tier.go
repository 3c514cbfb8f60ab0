package ambient

import (
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Hard caps applied to every derived tier regardless of what the host reports.
const (
	MaxEntityCount  = 600
	MaxTrailDepth   = 32
	MaxPixelDensity = 2.0

	// MobileBreakpoint is the viewport width below which a host is treated
	// as a mobile device.
	MobileBreakpoint = 768
)

// NetworkClass is a coarse connection-speed signal.
type NetworkClass uint8

const (
	NetworkUnknown NetworkClass = iota
	NetworkSlow2G
	Network2G
	Network3G
	Network4G
)

// ParseNetworkClass maps an effective-type token ("slow-2g", "2g", "3g",
// "4g") to a NetworkClass. Unknown tokens yield NetworkUnknown.
func ParseNetworkClass(s string) NetworkClass {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "slow-2g", "slow2g":
		return NetworkSlow2G
	case "2g":
		return Network2G
	case "3g":
		return Network3G
	case "4g", "5g", "wifi", "ethernet":
		return Network4G
	default:
		return NetworkUnknown
	}
}

// DeviceSignals are best-effort host capability hints. Zero values mean
// "not reported".
type DeviceSignals struct {
	Cores          int
	MemoryGB       float64
	Network        NetworkClass
	ViewportWidth  int
	ViewportHeight int
	DeviceScale    float64
	ReducedMotion  bool
}

// TierLevel names a row of the tier table.
type TierLevel uint8

const (
	TierOff TierLevel = iota
	TierLow
	TierMedium
	TierHigh
)

func (l TierLevel) String() string {
	switch l {
	case TierOff:
		return "off"
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	default:
		return "unknown"
	}
}

// QualityTier bundles the performance-scaling parameters chosen once per
// activation. It is immutable until the engine is re-activated.
type QualityTier struct {
	Level                TierLevel
	EntityCount          int
	TrailDepth           int
	UpdateIntervalFrames int
	PixelDensity         float64
	GlowEnabled          bool
}

// Enabled reports whether the tier allows the engine to run at all.
func (t QualityTier) Enabled() bool {
	return t.EntityCount > 0
}

var tierTable = [...]QualityTier{
	TierOff:    {Level: TierOff, UpdateIntervalFrames: 1, PixelDensity: 1},
	TierLow:    {Level: TierLow, EntityCount: 120, TrailDepth: 12, UpdateIntervalFrames: 2, PixelDensity: 1},
	TierMedium: {Level: TierMedium, EntityCount: 300, TrailDepth: 20, UpdateIntervalFrames: 1, PixelDensity: 1.5, GlowEnabled: true},
	TierHigh:   {Level: TierHigh, EntityCount: MaxEntityCount, TrailDepth: 28, UpdateIntervalFrames: 1, PixelDensity: MaxPixelDensity, GlowEnabled: true},
}

// DeriveTier maps device signals to a QualityTier. It is pure: equal inputs
// always produce equal tiers. Reduced motion always yields the Off tier.
func DeriveTier(sig DeviceSignals) QualityTier {
	if sig.ReducedMotion {
		return tierTable[TierOff]
	}

	score := 1 // a host that reports nothing lands on the Low row
	switch {
	case sig.Cores >= 8:
		score += 2
	case sig.Cores >= 4:
		score++
	case sig.Cores > 0 && sig.Cores < 2:
		score--
	}
	switch {
	case sig.MemoryGB >= 8:
		score += 2
	case sig.MemoryGB >= 4:
		score++
	case sig.MemoryGB > 0 && sig.MemoryGB < 2:
		score--
	}
	if sig.Network == NetworkSlow2G || sig.Network == Network2G {
		score--
	}
	mobile := IsMobile(sig.ViewportWidth)
	if mobile {
		score--
	}

	level := TierLow
	switch {
	case score >= 4:
		level = TierHigh
	case score >= 2:
		level = TierMedium
	}

	t := tierTable[level]
	if mobile {
		t.EntityCount /= 2
		t.TrailDepth -= 4
		t.GlowEnabled = t.GlowEnabled && level == TierHigh
	}
	scale := sig.DeviceScale
	if scale <= 0 {
		scale = 1
	}
	t.PixelDensity = min(t.PixelDensity, scale)
	return clampTier(t)
}

// clampTier enforces the hard caps.
func clampTier(t QualityTier) QualityTier {
	t.EntityCount = min(max(t.EntityCount, 0), MaxEntityCount)
	t.TrailDepth = min(max(t.TrailDepth, 0), MaxTrailDepth)
	if t.EntityCount > 0 && t.TrailDepth < 4 {
		t.TrailDepth = 4
	}
	t.UpdateIntervalFrames = max(t.UpdateIntervalFrames, 1)
	t.PixelDensity = min(max(t.PixelDensity, 1), MaxPixelDensity)
	return t
}

// IsMobile reports whether a viewport width falls below the mobile
// breakpoint. A zero width is "not reported" and counts as desktop.
func IsMobile(width int) bool {
	return width > 0 && width < MobileBreakpoint
}

// CrossesBreakpoint reports whether resizing from oldW to newW moves the
// host across the mobile/desktop breakpoint.
func CrossesBreakpoint(oldW, newW int) bool {
	if oldW <= 0 || newW <= 0 {
		return false
	}
	return IsMobile(oldW) != IsMobile(newW)
}

// ProbeDevice gathers best-effort signals from the running process.
// AMBIENT_REDUCED_MOTION, AMBIENT_MEMORY_GB and AMBIENT_NETWORK override
// what the runtime cannot report.
func ProbeDevice() DeviceSignals {
	sig := DeviceSignals{Cores: runtime.NumCPU()}
	if v, ok := os.LookupEnv("AMBIENT_REDUCED_MOTION"); ok {
		sig.ReducedMotion, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("AMBIENT_MEMORY_GB"); v != "" {
		if gb, err := strconv.ParseFloat(v, 64); err == nil && gb > 0 {
			sig.MemoryGB = gb
		}
	}
	sig.Network = ParseNetworkClass(os.Getenv("AMBIENT_NETWORK"))
	return sig
}
