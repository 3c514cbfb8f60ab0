package ambient

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("ambient: invalid config")

// Backend selects the renderer implementation.
type Backend uint8

const (
	BackendRaster   Backend = iota // persistent canvas with trail fade
	BackendRetained                // pre-allocated GPU quads with a glyph atlas
)

func (b Backend) String() string {
	switch b {
	case BackendRaster:
		return "raster"
	case BackendRetained:
		return "retained"
	default:
		return "unknown"
	}
}

// ParseBackend parses "raster" or "retained". "gpu" and "canvas" are
// accepted as aliases.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raster", "canvas", "":
		return BackendRaster, nil
	case "retained", "gpu":
		return BackendRetained, nil
	default:
		return 0, fmt.Errorf("unknown backend %q", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Backend) UnmarshalText(text []byte) error {
	v, err := ParseBackend(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (b Backend) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Config holds the activation parameters of one engine.
type Config struct {
	Variant     Variant `yaml:"variant"`
	Backend     Backend `yaml:"backend"`
	Theme       Theme   `yaml:"theme"`
	Intensity   float64 `yaml:"intensity"`   // overall opacity multiplier, (0, 1]
	Trail       bool    `yaml:"trail"`       // raster trail fade; false hard-clears each frame
	Interactive bool    `yaml:"interactive"` // pointer perturbation
	GlyphSize   float64 `yaml:"glyph_size"`  // glyph pitch in logical pixels (1 for terminals)
	Seed        uint64  `yaml:"seed"`        // 0 seeds from the runtime
	FadeIn      float64 `yaml:"fade_in"`     // seconds; 0 disables the fade
	Debug       bool    `yaml:"debug"`
}

// DefaultConfig returns the embedded defaults.
func DefaultConfig() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		panic("ambient: parse embedded defaults: " + err.Error())
	}
	return cfg
}

// LoadConfig overlays YAML data on the defaults and validates the result.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads path and calls LoadConfig. An empty path returns the
// defaults.
func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := LoadConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first out-of-range value.
func (c Config) Validate() error {
	switch {
	case c.Intensity <= 0 || c.Intensity > 1:
		return fmt.Errorf("%w: intensity %v not in (0, 1]", ErrInvalidConfig, c.Intensity)
	case c.GlyphSize < 1 || c.GlyphSize > 128:
		return fmt.Errorf("%w: glyph_size %v not in [1, 128]", ErrInvalidConfig, c.GlyphSize)
	case c.FadeIn < 0:
		return fmt.Errorf("%w: fade_in %v is negative", ErrInvalidConfig, c.FadeIn)
	case c.Variant != VariantRain && c.Variant != VariantSparks:
		return fmt.Errorf("%w: variant %d", ErrInvalidConfig, c.Variant)
	case c.Backend != BackendRaster && c.Backend != BackendRetained:
		return fmt.Errorf("%w: backend %d", ErrInvalidConfig, c.Backend)
	}
	return nil
}

// normalized returns c with unknown themes replaced by the default.
func (c Config) normalized() Config {
	if !c.Theme.Known() {
		Logger().Warn("unknown theme, using default", "theme", string(c.Theme), "default", string(DefaultTheme))
		c.Theme = DefaultTheme
	}
	return c
}

// YAML encodes the config.
func (c Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
