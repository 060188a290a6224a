// Package logging builds the slog logger used by the orderline binaries.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cognicore/orderline/pkg/orderline/internalerr"
)

// Config selects the log level, encoding and destination.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or text
	// File, when set, receives logs through a size-rotated writer instead
	// of stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Logger is a slog logger plus the file it writes to, if any.
type Logger struct {
	*slog.Logger
	LogFile string

	closer io.Closer
}

// New builds a Logger from cfg.
func New(cfg Config) (*Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var w io.Writer = os.Stderr
	l := &Logger{}
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB, // MB
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		if lj.MaxSize == 0 {
			lj.MaxSize = 64
		}
		w, l.LogFile, l.closer = lj, lj.Filename, lj
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		h = slog.NewJSONHandler(w, opts)
	case "text":
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("%w: log format %q", internalerr.ErrInvalidConfig, cfg.Format)
	}
	l.Logger = slog.New(h)
	return l, nil
}

// ParseLevel maps a level name to its slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: log level %q", internalerr.ErrInvalidConfig, s)
}

// LogStartup records the runtime and build the process is running with.
func (l *Logger) LogStartup(component string) {
	l.Info("starting", slog.String("component", component),
		slog.String("GOARCH", runtime.GOARCH),
		slog.String("GOOS", runtime.GOOS),
		slog.Int("NumCPUs", runtime.NumCPU()))

	if bi, ok := debug.ReadBuildInfo(); ok {
		l.Debug("build",
			slog.String("go", bi.GoVersion),
			slog.String("path", bi.Path),
			slog.String("version", bi.Main.Version))
	}
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
