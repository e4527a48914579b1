package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatAuto    = "auto"
	FormatJSON    = "json"
	FormatConsole = "console"

	// LevelEnv overrides the configured level when set.
	LevelEnv = "COOKIEGEN_LOG_LEVEL"
)

type Config struct {
	Level  string
	Format string
	// Output is "stderr" (default), "stdout" or a file path.
	Output    string
	AddCaller bool
}

// New builds a zap logger. Format "auto" picks console output when Output is
// a terminal and JSON otherwise.
func New(cfg Config) (*zap.Logger, error) {
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := resolveFormat(cfg.Format, cfg.Output)
	if err != nil {
		return nil, err
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.Encoding = format
	zapConfig.OutputPaths = []string{cfg.Output}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	zapConfig.DisableCaller = !cfg.AddCaller
	zapConfig.DisableStacktrace = true
	zapConfig.Sampling = nil
	if format == FormatConsole {
		zapConfig.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapConfig.Build()
}

// ParseLevel maps a level name onto zap levels. Empty means info.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// LevelFromEnv returns the LevelEnv value, or fallback when it is unset.
func LevelFromEnv(fallback string) string {
	if v := strings.TrimSpace(os.Getenv(LevelEnv)); v != "" {
		return v
	}
	return fallback
}

func resolveFormat(format, output string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatConsole:
		return FormatConsole, nil
	case "", FormatAuto:
		if isTerminal(output) {
			return FormatConsole, nil
		}
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown log format %q", format)
	}
}

func isTerminal(output string) bool {
	var fd uintptr
	switch output {
	case "stderr":
		fd = os.Stderr.Fd()
	case "stdout":
		fd = os.Stdout.Fd()
	default:
		return false
	}
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
