// Package logger configures zap for avatarfit: a colored console for
// interactive commands and an optional rotating JSON file, plus field
// helpers for the geometry the engine reports.
package logger

import (
	"io"
	"strings"

	"github.com/taigrr/avatarfit/pkg/fit"
	"github.com/taigrr/avatarfit/pkg/math3d"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process logger. It discards everything until Setup runs.
var Log = zap.NewNop()

// Rotation controls when the log file is rolled over.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultRotation keeps three compressed 20 MB backups for two weeks.
func DefaultRotation() Rotation {
	return Rotation{MaxSizeMB: 20, MaxBackups: 3, MaxAgeDays: 14, Compress: true}
}

// Options selects the level and sinks of a logger.
type Options struct {
	Level    string
	File     string    // Rotated JSON log; empty disables it
	Rotation Rotation  // Zero means DefaultRotation
	Console  io.Writer // Human-readable output; nil disables it
}

// Build creates a logger from opts. With no sinks it returns a no-op logger.
func Build(opts Options) (*zap.Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var cores []zapcore.Core
	if opts.Console != nil {
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc.ConsoleSeparator = " "
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(opts.Console), lvl))
	}
	if opts.File != "" {
		rot := opts.Rotation
		if rot == (Rotation{}) {
			rot = DefaultRotation()
		}
		w := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    rot.MaxSizeMB,
			MaxBackups: rot.MaxBackups,
			MaxAge:     rot.MaxAgeDays,
			Compress:   rot.Compress,
			LocalTime:  true,
		}
		enc := zap.NewProductionEncoderConfig()
		enc.TimeKey = "time"
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), lvl))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// Setup builds a logger and installs it as Log and as zap's global logger.
func Setup(opts Options) error {
	l, err := Build(opts)
	if err != nil {
		return err
	}
	Log = l
	zap.ReplaceGlobals(l)
	return nil
}

// ParseLevel converts a level name to zapcore.Level. The empty string
// means info; case is ignored.
func ParseLevel(level string) (zapcore.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(strings.ToLower(level))
}

// Sync flushes buffered entries of Log.
func Sync() {
	_ = Log.Sync()
}

// Vec3 logs v as an [x, y, z] array.
func Vec3(key string, v math3d.Vec3) zap.Field {
	return zap.Array(key, vec3(v))
}

// Box logs b as {"min": [...], "max": [...]}.
func Box(key string, b fit.AABB) zap.Field {
	return zap.Object(key, zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		if err := enc.AddArray("min", vec3(b.Min)); err != nil {
			return err
		}
		return enc.AddArray("max", vec3(b.Max))
	}))
}

func vec3(v math3d.Vec3) zapcore.ArrayMarshaler {
	return zapcore.ArrayMarshalerFunc(func(enc zapcore.ArrayEncoder) error {
		enc.AppendFloat64(v.X)
		enc.AppendFloat64(v.Y)
		enc.AppendFloat64(v.Z)
		return nil
	})
}
