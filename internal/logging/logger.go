package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"autoposter/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level            string
	Format           string
	OutputPaths      []string
	ErrorOutputPaths []string
	Development      bool
	// Stream receives a copy of every record when set.
	Stream *StreamHub
}

// New constructs a slog logger using the provided options. Each output target
// gets its own handler so terminal colour codes never reach log files.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	targets := dedupeTargets(
		defaultSlice(opts.OutputPaths, []string{"stdout"}),
		defaultSlice(opts.ErrorOutputPaths, []string{"stderr"}),
	)

	handlers := make([]slog.Handler, 0, len(targets))
	for _, target := range targets {
		writer, color, err := openTarget(target)
		if err != nil {
			return nil, err
		}
		if writer == nil {
			continue
		}
		switch format {
		case "json":
			handlers = append(handlers, newJSONHandler(writer, levelVar, addSource))
		default:
			handlers = append(handlers, newPrettyHandler(writer, levelVar, addSource, color))
		}
	}

	handler := newFanoutHandler(handlers...)
	if opts.Stream != nil {
		handler = newStreamHandler(handler, opts.Stream, levelVar)
	}
	return slog.New(handler), nil
}

// NewFromConfig creates a logger that writes to stdout and to autoposter.log
// inside the configured log directory.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	return newFromConfig(cfg, []string{"stdout"}, nil)
}

// NewFileLogger creates a logger that only writes to the log file and the
// optional stream hub. The interactive wizard uses it so log lines never
// interleave with the terminal UI.
func NewFileLogger(cfg *config.Config, hub *StreamHub) (*slog.Logger, error) {
	return newFromConfig(cfg, nil, hub)
}

func newFromConfig(cfg *config.Config, base []string, hub *StreamHub) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", OutputPaths: []string{"stdout"}, ErrorOutputPaths: []string{"stderr"}, Stream: hub})
	}

	outputPaths := append([]string{}, base...)
	errorOutputs := []string{}
	if len(base) > 0 {
		errorOutputs = append(errorOutputs, "stderr")
	}
	if cfg.Paths.LogDir != "" {
		if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		logPath := filepath.Join(cfg.Paths.LogDir, "autoposter.log")
		outputPaths = append(outputPaths, logPath)
		errorOutputs = append(errorOutputs, logPath)
	}
	if len(outputPaths) == 0 {
		outputPaths = []string{"discard"}
	}
	if len(errorOutputs) == 0 {
		errorOutputs = []string{"discard"}
	}

	return New(Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: errorOutputs,
		Stream:           hub,
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		cp := make([]string, len(fallback))
		copy(cp, fallback)
		return cp
	}
	cp := make([]string, len(value))
	copy(cp, value)
	return cp
}

// dedupeTargets merges output and error targets. stdout and stderr both point
// at the terminal, so only the first of the two is kept.
func dedupeTargets(outputPaths []string, errorPaths []string) []string {
	seen := map[string]struct{}{}
	terminal := false
	var out []string
	for _, path := range append(append([]string{}, outputPaths...), errorPaths...) {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		if trimmed == "stdout" || trimmed == "stderr" {
			if terminal {
				continue
			}
			terminal = true
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func openTarget(target string) (io.Writer, bool, error) {
	switch target {
	case "stdout":
		return os.Stdout, colorEnabled(os.Stdout), nil
	case "stderr":
		return os.Stderr, colorEnabled(os.Stderr), nil
	case "discard":
		return nil, false, nil
	}
	if dir := filepath.Dir(target); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, false, fmt.Errorf("ensure log directory %s: %w", dir, err)
		}
	}
	file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, false, fmt.Errorf("open log file %s: %w", target, err)
	}
	return file, false, nil
}

// IsTerminal reports whether f is attached to an interactive terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func colorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return IsTerminal(f)
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Key = "level"
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.MessageKey:
				attr.Key = "msg"
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	}

	return slog.NewJSONHandler(w, &opts)
}
