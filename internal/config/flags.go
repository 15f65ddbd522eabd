package config

import "github.com/spf13/pflag"

// Flags holds command-line overrides. Only flags the user actually set
// are applied.
type Flags struct {
	fs *pflag.FlagSet

	ConfigPath   string
	Debug        bool
	LogFile      string
	TargetHeight float64
	Margin       float64
	Color        string
	Width        int
	Height       int
	Addr         string
}

// BindFlags registers the shared flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to this file")
	fs.Float64Var(&f.TargetHeight, "height-target", 0, "Avatar height after normalization")
	fs.Float64Var(&f.Margin, "margin", 0, "Garment fit margin in (0, 1]")
	fs.StringVar(&f.Color, "color", "", "Garment color as #RRGGBB")
	fs.IntVar(&f.Width, "width", 0, "Preview width in pixels")
	fs.IntVar(&f.Height, "height", 0, "Preview height in pixels")
	fs.StringVar(&f.Addr, "addr", "", "HTTP listen address")
	return f
}

// Load reads the config file named by --config (or the standard
// locations) and applies the flag overrides on top.
func (f *Flags) Load() (*Config, error) {
	cfg, err := Load(f.ConfigPath)
	if err != nil {
		return nil, err
	}
	f.Apply(cfg)
	return cfg, cfg.Validate()
}

// Apply applies flag overrides to cfg.
func (f *Flags) Apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.changed("log-file") {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.changed("height-target") {
		cfg.Fit.TargetHeight = f.TargetHeight
	}
	if f.changed("margin") {
		cfg.Fit.Margin = f.Margin
	}
	if f.changed("color") {
		cfg.Studio.DefaultColor = f.Color
	}
	if f.Width > 0 {
		cfg.Preview.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Preview.Height = f.Height
	}
	if f.changed("addr") {
		cfg.Server.Addr = f.Addr
	}
}

func (f *Flags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}
