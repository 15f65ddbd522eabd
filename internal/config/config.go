// Package config handles avatarfit configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/taigrr/avatarfit/internal/logger"
	"github.com/taigrr/avatarfit/pkg/fit"
	"github.com/taigrr/avatarfit/pkg/render"
)

// Config holds all settings.
type Config struct {
	Fit     FitConfig     `yaml:"fit"`
	Studio  StudioConfig  `yaml:"studio"`
	Preview PreviewConfig `yaml:"preview"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// FitConfig holds normalization and fitting parameters.
type FitConfig struct {
	TargetHeight  float64 `yaml:"target_height"`
	Margin        float64 `yaml:"margin"`
	TopRatio      float64 `yaml:"top_ratio"`
	ShoulderRatio float64 `yaml:"shoulder_ratio"`
}

// Swatch is a named palette color.
type Swatch struct {
	Name string `yaml:"name" json:"name"`
	Hex  string `yaml:"hex" json:"hex"`
}

// StudioConfig holds session defaults.
type StudioConfig struct {
	DefaultColor string   `yaml:"default_color"`
	ShowClothing bool     `yaml:"show_clothing"`
	MaxUploadMB  int      `yaml:"max_upload_mb"`
	Palette      []Swatch `yaml:"palette"`
}

// PreviewConfig holds software renderer settings.
type PreviewConfig struct {
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	FPS          int    `yaml:"fps"`
	Supersample  int    `yaml:"supersample"`
	MaxTriangles int    `yaml:"max_triangles"`
	Background   string `yaml:"background"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Fit: FitConfig{
			TargetHeight:  fit.DefaultTargetHeight,
			Margin:        fit.DefaultMargin,
			TopRatio:      fit.DefaultTopRatio,
			ShoulderRatio: fit.DefaultShoulderRatio,
		},
		Studio: StudioConfig{
			DefaultColor: "#5c6bc0",
			ShowClothing: true,
			MaxUploadMB:  50,
			Palette: []Swatch{
				{Name: "Blue", Hex: "#5c6bc0"},
				{Name: "Red", Hex: "#f44336"},
				{Name: "Green", Hex: "#4caf50"},
				{Name: "Purple", Hex: "#9c27b0"},
				{Name: "Orange", Hex: "#ff9800"},
				{Name: "Black", Hex: "#000000"},
			},
		},
		Preview: PreviewConfig{
			Width:        120,
			Height:       60,
			FPS:          30,
			Supersample:  2,
			MaxTriangles: 20000,
			Background:   "#2a2a2a",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Fitter builds a fitter from the fit settings.
func (c *Config) Fitter() *fit.Fitter {
	return &fit.Fitter{
		Margin: c.Fit.Margin,
		Policy: fit.HeuristicPolicy{
			TopRatio:      c.Fit.TopRatio,
			ShoulderRatio: c.Fit.ShoulderRatio,
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Fit.TargetHeight > 0, "fit.target_height must be positive, got %v", c.Fit.TargetHeight)
	check(c.Fit.Margin > 0 && c.Fit.Margin <= 1, "fit.margin must be in (0, 1], got %v", c.Fit.Margin)
	check(c.Fit.TopRatio > 0 && c.Fit.TopRatio < 1, "fit.top_ratio must be in (0, 1), got %v", c.Fit.TopRatio)
	check(c.Fit.ShoulderRatio > 0 && c.Fit.ShoulderRatio <= 1, "fit.shoulder_ratio must be in (0, 1], got %v", c.Fit.ShoulderRatio)

	_, err := fit.ParseColor(c.Studio.DefaultColor)
	check(err == nil, "studio.default_color: %v", err)
	check(c.Studio.MaxUploadMB > 0, "studio.max_upload_mb must be positive, got %d", c.Studio.MaxUploadMB)
	for i, s := range c.Studio.Palette {
		_, err := fit.ParseColor(s.Hex)
		check(err == nil && s.Name != "", "studio.palette[%d]: name %q hex %q", i, s.Name, s.Hex)
	}

	check(c.Preview.Width > 0 && c.Preview.Height > 0, "preview size must be positive, got %dx%d", c.Preview.Width, c.Preview.Height)
	check(c.Preview.FPS > 0, "preview.fps must be positive, got %d", c.Preview.FPS)
	check(c.Preview.Supersample >= 1, "preview.supersample must be at least 1, got %d", c.Preview.Supersample)
	check(c.Preview.MaxTriangles >= 0, "preview.max_triangles must not be negative, got %d", c.Preview.MaxTriangles)
	_, err = fit.ParseColor(c.Preview.Background)
	check(err == nil, "preview.background: %v", err)

	check(c.Server.Addr != "", "server.addr must not be empty")
	_, err = logger.ParseLevel(c.Logging.Level)
	check(err == nil, "logging.level: %v", err)

	return errors.Join(errs...)
}

// UploadLimit returns the upload size limit in bytes.
func (c *Config) UploadLimit() int64 {
	return int64(c.Studio.MaxUploadMB) << 20
}

// RenderOptions maps the preview settings onto renderer options.
func (c *Config) RenderOptions() render.Options {
	opts := render.DefaultOptions()
	opts.Width, opts.Height = c.Preview.Width, c.Preview.Height
	if bg, err := render.ParseRGBA(c.Preview.Background); err == nil {
		opts.Background = bg
	}
	return opts
}
