package ambient

import "testing"

func TestDeriveTierReducedMotion(t *testing.T) {
	tier := DeriveTier(DeviceSignals{Cores: 16, MemoryGB: 32, ReducedMotion: true})
	if tier.Level != TierOff {
		t.Errorf("Level = %v, want off", tier.Level)
	}
	if tier.Enabled() {
		t.Error("reduced motion tier should not be enabled")
	}
	if tier.EntityCount != 0 {
		t.Errorf("EntityCount = %d, want 0", tier.EntityCount)
	}
}

func TestDeriveTierLevels(t *testing.T) {
	tests := []struct {
		name string
		sig  DeviceSignals
		want TierLevel
	}{
		{"unreported", DeviceSignals{}, TierLow},
		{"weak", DeviceSignals{Cores: 1, MemoryGB: 1}, TierLow},
		{"mid", DeviceSignals{Cores: 4, MemoryGB: 4}, TierMedium},
		{"strong", DeviceSignals{Cores: 8, MemoryGB: 8}, TierHigh},
		{"strong on 2g", DeviceSignals{Cores: 8, MemoryGB: 4, Network: Network2G}, TierMedium},
		{"strong mobile", DeviceSignals{Cores: 8, MemoryGB: 4, ViewportWidth: 400}, TierMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTier(tt.sig).Level; got != tt.want {
				t.Errorf("Level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeriveTierMonotonic(t *testing.T) {
	prev := DeriveTier(DeviceSignals{Cores: 1, MemoryGB: 1})
	for _, sig := range []DeviceSignals{
		{Cores: 2, MemoryGB: 2},
		{Cores: 4, MemoryGB: 4},
		{Cores: 8, MemoryGB: 8},
		{Cores: 64, MemoryGB: 256, DeviceScale: 3},
	} {
		cur := DeriveTier(sig)
		if cur.EntityCount < prev.EntityCount || cur.TrailDepth < prev.TrailDepth {
			t.Errorf("%+v: tier %+v is below previous %+v", sig, cur, prev)
		}
		prev = cur
	}
}

func TestDeriveTierCaps(t *testing.T) {
	tier := DeriveTier(DeviceSignals{Cores: 128, MemoryGB: 1024, DeviceScale: 4})
	if tier.EntityCount > MaxEntityCount {
		t.Errorf("EntityCount = %d, want <= %d", tier.EntityCount, MaxEntityCount)
	}
	if tier.TrailDepth > MaxTrailDepth {
		t.Errorf("TrailDepth = %d, want <= %d", tier.TrailDepth, MaxTrailDepth)
	}
	if tier.PixelDensity > MaxPixelDensity {
		t.Errorf("PixelDensity = %v, want <= %v", tier.PixelDensity, MaxPixelDensity)
	}
}

func TestDeriveTierDensityFollowsDeviceScale(t *testing.T) {
	tier := DeriveTier(DeviceSignals{Cores: 8, MemoryGB: 8, DeviceScale: 1})
	if tier.PixelDensity != 1 {
		t.Errorf("PixelDensity = %v, want 1", tier.PixelDensity)
	}
	tier = DeriveTier(DeviceSignals{Cores: 8, MemoryGB: 8, DeviceScale: 1.5})
	if tier.PixelDensity != 1.5 {
		t.Errorf("PixelDensity = %v, want 1.5", tier.PixelDensity)
	}
}

func TestDeriveTierMobileHalvesEntities(t *testing.T) {
	desktop := DeriveTier(DeviceSignals{Cores: 4, MemoryGB: 4, ViewportWidth: 1280})
	mobile := DeriveTier(DeviceSignals{Cores: 4, MemoryGB: 4, ViewportWidth: 400})
	if mobile.EntityCount >= desktop.EntityCount {
		t.Errorf("mobile EntityCount = %d, want < %d", mobile.EntityCount, desktop.EntityCount)
	}
	if mobile.GlowEnabled {
		t.Error("glow should be off below the high tier on mobile")
	}
}

func TestDeriveTierPure(t *testing.T) {
	sig := DeviceSignals{Cores: 6, MemoryGB: 6, Network: Network3G, ViewportWidth: 900, DeviceScale: 2}
	if DeriveTier(sig) != DeriveTier(sig) {
		t.Error("DeriveTier is not deterministic")
	}
}

func TestCrossesBreakpoint(t *testing.T) {
	tests := []struct {
		old, new int
		want     bool
	}{
		{1024, 600, true},
		{600, 1024, true},
		{1024, 800, false},
		{500, 300, false},
		{0, 500, false},
		{767, 768, true},
	}
	for _, tt := range tests {
		if got := CrossesBreakpoint(tt.old, tt.new); got != tt.want {
			t.Errorf("CrossesBreakpoint(%d, %d) = %v, want %v", tt.old, tt.new, got, tt.want)
		}
	}
}

func TestParseNetworkClass(t *testing.T) {
	tests := map[string]NetworkClass{
		"slow-2g": NetworkSlow2G,
		"2G":      Network2G,
		" 3g ":    Network3G,
		"4g":      Network4G,
		"wifi":    Network4G,
		"carrier": NetworkUnknown,
	}
	for in, want := range tests {
		if got := ParseNetworkClass(in); got != want {
			t.Errorf("ParseNetworkClass(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestProbeDeviceReducedMotionEnv(t *testing.T) {
	t.Setenv("AMBIENT_REDUCED_MOTION", "true")
	t.Setenv("AMBIENT_MEMORY_GB", "12")
	sig := ProbeDevice()
	if !sig.ReducedMotion {
		t.Error("ReducedMotion not read from environment")
	}
	if sig.MemoryGB != 12 {
		t.Errorf("MemoryGB = %v, want 12", sig.MemoryGB)
	}
	if sig.Cores <= 0 {
		t.Errorf("Cores = %d, want > 0", sig.Cores)
	}
}
