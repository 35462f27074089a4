package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cartwryte/sleuth/internal/clock"
	"github.com/cartwryte/sleuth/internal/config"
	"github.com/cartwryte/sleuth/internal/engine"
	"github.com/cartwryte/sleuth/internal/fsops"
	"github.com/cartwryte/sleuth/internal/hash"
)

var (
	// cfg and logger are set by setup before any command runs
	cfg    *config.Config
	logger *zap.Logger
)

// setup loads the configuration and builds the logger.
func setup() error {
	paths, err := config.DefaultPaths()
	if err != nil {
		return fmt.Errorf("failed to get config paths: %w", err)
	}

	path := configFlag
	if path == "" {
		path = paths.Config
	}
	cfg, err = config.Load(path)
	if err != nil {
		return err
	}

	logger, err = newLogger(cfg.Logging, paths)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// newLogger builds a production zap logger. Diagnostics go to stderr only
// with --verbose and to the log file only when file logging is configured;
// with neither, logging is discarded.
func newLogger(lc config.LoggingConfig, paths *config.Paths) (*zap.Logger, error) {
	var outputs []string
	if verbose {
		outputs = append(outputs, "stderr")
	}
	if lc.File {
		if err := paths.EnsureDirectories(); err != nil {
			return nil, err
		}
		outputs = append(outputs, paths.Log)
	}
	if len(outputs) == 0 {
		return zap.NewNop(), nil
	}

	zc := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", lc.Level, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = outputs
	return zc.Build()
}

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine() *engine.Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return engine.New(
		fsops.NewRealFS(),
		hash.NewSHA256Hasher(),
		clock.RealClock{},
		cfg,
		logger,
	)
}

// target resolves the OpenCart tree from --root or the working directory.
func target() (engine.Target, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return engine.Target{}, fmt.Errorf("failed to get current directory: %w", err)
	}
	return engine.Target{Root: rootFlag, CWD: cwd}, nil
}

// formatJSON formats a value as JSON.
func formatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatError formats an error for display.
func formatError(err error) string {
	initColors()
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printReport prints the steps and errors of an install or uninstall.
func printReport(title string, report *engine.Report) {
	if report == nil {
		return
	}
	PrintSection(title)
	if report.Version != "" {
		PrintLabelValue("OpenCart", report.Version)
		fmt.Println()
	}
	PrintSteps(report.Steps)
	if len(report.Errors) > 0 {
		fmt.Println()
		for _, e := range report.Errors {
			PrintError(e)
		}
	}
}
