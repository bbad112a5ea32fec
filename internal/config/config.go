// Package config loads application settings from an optional TOML file.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"image-enhancer/internal/algorithms"
	"image-enhancer/internal/core"
	"image-enhancer/internal/imageio"
	"image-enhancer/internal/logging"
)

// Config is the complete application configuration.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Fetch  FetchConfig  `toml:"fetch"`
	Render RenderConfig `toml:"render"`
	Export ExportConfig `toml:"export"`
	Window WindowConfig `toml:"window"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type FetchConfig struct {
	Timeout time.Duration `toml:"timeout"`
	// FallbackProxy is prepended to a URL for the retry; empty disables it.
	FallbackProxy string `toml:"fallback_proxy"`
	UserAgent     string `toml:"user_agent"`
	MaxBytes      int64  `toml:"max_bytes"`
}

type RenderConfig struct {
	Interpolation string  `toml:"interpolation"`
	InitialScale  float64 `toml:"initial_scale"`
	Metrics       bool    `toml:"metrics"`
}

type ExportConfig struct {
	Format      string `toml:"format"`
	JPEGQuality int    `toml:"jpeg_quality"`
	Directory   string `toml:"directory"`
}

type WindowConfig struct {
	Width  float32 `toml:"width"`
	Height float32 `toml:"height"`
}

// Default returns the built-in settings.
func Default() Config {
	fetch := imageio.DefaultLoaderOptions()
	return Config{
		Log: LogConfig{Level: "info", Format: "json"},
		Fetch: FetchConfig{
			Timeout:       fetch.Timeout,
			FallbackProxy: fetch.FallbackProxy,
			UserAgent:     fetch.UserAgent,
			MaxBytes:      fetch.MaxBytes,
		},
		Render: RenderConfig{
			Interpolation: algorithms.Bilinear.String(),
			InitialScale:  1,
			Metrics:       true,
		},
		Export: ExportConfig{
			Format:      string(imageio.PNG),
			JPEGQuality: imageio.DefaultJPEGQuality,
		},
		Window: WindowConfig{Width: 1280, Height: 820},
	}
}

// Load applies the file at path over the defaults. An empty path returns
// the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults.
func Parse(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown key %s", undecoded[0])
	}
	return cfg, cfg.Validate()
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format: want json or text, got %q", c.Log.Format)
	}

	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	if c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("fetch.max_bytes must be positive")
	}

	if _, err := algorithms.ParseInterpolation(c.Render.Interpolation); err != nil {
		return fmt.Errorf("render.interpolation: %w", err)
	}
	if _, err := c.InitialPartial(); err != nil {
		return fmt.Errorf("render.initial_scale: %w", err)
	}

	if _, err := imageio.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}
	if c.Export.JPEGQuality < 1 || c.Export.JPEGQuality > 100 {
		return fmt.Errorf("export.jpeg_quality must be in 1-100, got %d", c.Export.JPEGQuality)
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive")
	}
	return nil
}

// Logging converts the log section.
func (c Config) Logging(debug bool) logging.Options {
	return logging.Options{Debug: debug, Level: c.Log.Level, Format: c.Log.Format}
}

// LoaderOptions applies the fetch section to a loader.
func (c Config) LoaderOptions() func(*imageio.LoaderOptions) {
	return func(o *imageio.LoaderOptions) {
		o.Timeout = c.Fetch.Timeout
		o.FallbackProxy = c.Fetch.FallbackProxy
		o.UserAgent = c.Fetch.UserAgent
		o.MaxBytes = c.Fetch.MaxBytes
	}
}

// Interpolation returns the configured resize kernel, bilinear if invalid.
func (c Config) Interpolation() algorithms.Interpolation {
	interp, err := algorithms.ParseInterpolation(c.Render.Interpolation)
	if err != nil {
		return algorithms.Bilinear
	}
	return interp
}

// InitialPartial is the store update applied at startup.
func (c Config) InitialPartial() (core.Partial, error) {
	p := core.Partial{Scale: core.Float(c.Render.InitialScale)}
	return p, p.Validate()
}

// ExportOptions returns the default export settings.
func (c Config) ExportOptions() imageio.ExportOptions {
	f, err := imageio.ParseFormat(c.Export.Format)
	if err != nil {
		f = imageio.PNG
	}
	return imageio.ExportOptions{Format: f, JPEGQuality: c.Export.JPEGQuality}
}
