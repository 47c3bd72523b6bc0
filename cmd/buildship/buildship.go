package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/cruciblehq/buildship/internal"
	"github.com/cruciblehq/buildship/internal/cli"
	"github.com/cruciblehq/buildship/internal/logging"
	"github.com/cruciblehq/buildship/internal/orchestrator"
)

// The entry point for buildship.
//
// Initializes logging, displays startup information, and executes the root
// command. Any fatal condition, including a usage error, exits with code 1.
func main() {
	slog.SetDefault(logger())

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("buildship is running",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		slog.Error(err.Error(), "stage", stage(err))
		os.Exit(1)
	}
}

// Creates a buffered logger seeded from build-time linker flags.
//
// The logger is reconfigured after flag parsing via cli.Execute.
func logger() *slog.Logger {
	handler := logging.NewHandler()
	handler.SetLevel(logLevel())
	return slog.New(handler.WithGroup(internal.Name))
}

// Returns the log level derived from build-time linker flags.
func logLevel() slog.Level {
	if internal.IsDebug() {
		return slog.LevelDebug
	}
	if internal.IsQuiet() {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// Returns the name of the stage that failed.
func stage(err error) string {
	switch {
	case errors.Is(err, orchestrator.ErrUsage):
		return "usage"
	case errors.Is(err, orchestrator.ErrConfig):
		return "config"
	case errors.Is(err, orchestrator.ErrPrerequisite):
		return "emulation"
	case errors.Is(err, orchestrator.ErrResourceBootstrap):
		return "builder"
	case errors.Is(err, orchestrator.ErrPublish):
		return "publish"
	default:
		return "run"
	}
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
