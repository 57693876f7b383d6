package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level      string
	Format     string
	OutputPath string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
	fileWriter    *lumberjack.Logger
)

// Initialize installs the process logger. With an OutputPath, records go to
// stdout and to a size-rotated file.
func Initialize(cfg Config) error {
	return initialize(cfg, os.Stdout)
}

func initialize(cfg Config, stdout io.Writer) error {
	level := parseLevel(cfg.Level)

	writer := stdout
	var fw *lumberjack.Logger

	if cfg.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0755); err != nil {
			return err
		}

		fw = &lumberjack.Logger{
			Filename:   cfg.OutputPath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}

		writer = io.MultiWriter(stdout, fw)
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	l := slog.New(handler).With(slog.String("service", "adengine"))

	mu.Lock()
	old := fileWriter
	defaultLogger = l
	fileWriter = fw
	mu.Unlock()

	if old != nil {
		old.Close()
	}

	slog.SetDefault(l)
	return nil
}

func Get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	if defaultLogger == nil {
		return slog.Default()
	}
	return defaultLogger
}

// Component returns the process logger tagged with a component name.
func Component(name string) *slog.Logger {
	return Get().With(slog.String("component", name))
}

// Close flushes and closes the rotating log file, if any.
func Close() error {
	mu.Lock()
	fw := fileWriter
	fileWriter = nil
	mu.Unlock()

	if fw == nil {
		return nil
	}
	return fw.Close()
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
