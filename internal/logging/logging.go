package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Environment variables that seed the flag defaults
const (
	LevelEnv = "BEPINSTALL_LOG_LEVEL"
	JSONEnv  = "BEPINSTALL_LOG_JSON"
)

// Logger holds logger configuration
type Logger struct {
	Level string
	JSON  bool
}

// AddFlags registers --log-level and --log-json on fs
func (c *Logger) AddFlags(fs *pflag.FlagSet) {
	level := os.Getenv(LevelEnv)
	if level == "" {
		level = "warn"
	}
	asJSON, _ := strconv.ParseBool(os.Getenv(JSONEnv))

	fs.StringVar(&c.Level, "log-level", level, "Log level (debug, info, warn, error)")
	fs.BoolVar(&c.JSON, "log-json", asJSON, "Output logs in JSON format")
}

// ParseLevel converts a level name to a slog.Level
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
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Configure returns a logger writing to w
func (c *Logger) Configure(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if c.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler), nil
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
