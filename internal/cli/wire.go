package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cruciblehq/buildship/internal"
	"github.com/cruciblehq/buildship/internal/buildx"
	"github.com/cruciblehq/buildship/internal/command"
	"github.com/cruciblehq/buildship/internal/emulation"
	"github.com/cruciblehq/buildship/internal/orchestrator"
	"github.com/cruciblehq/buildship/internal/paths"
	"github.com/cruciblehq/buildship/internal/platform"
)

// Executes one run. Satisfied by [orchestrator.Orchestrator].
type runner interface {
	Run(ctx context.Context, opts orchestrator.Options) (*orchestrator.Result, error)
}

// Inputs for assembling a runner.
type wiring struct {
	config   internal.BuildConfig
	flags    *RootCmd
	observer orchestrator.Observer
	stream   io.Writer // Optional. Receives external tool output as it is produced.
}

// Assembles a runner. Called only after flags parse cleanly.
type factory func(w wiring) (runner, error)

// Assembles the orchestrator with the docker CLI and the configured emulation
// backend.
func newOrchestrator(w wiring) (runner, error) {
	cfg := w.config

	if cfg.Image == "" {
		return nil, fmt.Errorf("%w: image is not set", orchestrator.ErrConfig)
	}
	if cfg.Builder == "" {
		return nil, fmt.Errorf("%w: builder name is not set", orchestrator.ErrConfig)
	}

	// An empty list is only an error for publish runs, which the
	// orchestrator reports itself.
	set, err := platform.ParseSet(cfg.Platforms)
	if err != nil && !errors.Is(err, platform.ErrNoPlatforms) {
		return nil, fmt.Errorf("%w: %w", orchestrator.ErrConfig, err)
	}

	run := &command.ExecRunner{Stream: w.stream}

	emulator, err := emulation.New(emulation.Config{
		Backend: cfg.Emulator,
		Runner:  run,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", orchestrator.ErrConfig, err)
	}

	client := buildx.New(buildx.Config{
		Runner:   run,
		Context:  cfg.Context,
		CacheDir: paths.BuildCache,
	})

	return orchestrator.New(orchestrator.Config{
		Image:     cfg.Reference(),
		Builder:   cfg.Builder,
		Platforms: set,
		Emulator:  emulator,
		Builders:  client,
		Backend:   client,
		Observer:  w.observer,
	}), nil
}
