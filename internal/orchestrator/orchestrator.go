package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cruciblehq/buildship/internal/platform"
)

const (

	// Pause between removing a builder that failed to bootstrap and creating
	// it again.
	DefaultBackoff = 2 * time.Second

	// Appended to fatal bootstrap errors.
	remediation = "restart the container runtime on this host and re-run with --clean"
)

// Waits for a duration. Implementations return early with an error if ctx is
// cancelled.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Holds orchestrator configuration and collaborators.
type Config struct {
	Image     string         // Full image reference, "<repository>:<tag>".
	Builder   string         // Name of the builder resource.
	Platforms platform.Set   // Target platforms for publish runs.
	Emulator  Emulator       // Installs cross-architecture emulation.
	Builders  BuilderManager // Manages the builder resource.
	Backend   Backend        // Runs builds.
	Observer  Observer       // Optional. Notified of every state entered.
	Backoff   time.Duration  // Pause before the bootstrap retry. Zero uses [DefaultBackoff].
	Sleep     SleepFunc      // Optional. Replaces the backoff wait.
}

// Per-invocation flags.
type Options struct {
	Mode    Mode // Which path to take.
	NoCache bool // Disable build step caching.
	Clean   bool // Remove the builder before resolving it. Publish mode only.
}

// Outcome of a run. Returned for failed runs as well.
type Result struct {
	Mode   Mode         // Mode the run executed in.
	States []State      // Every state entered, in order.
	Build  *BuildResult // Build outcome. Nil unless the build step succeeded.
}

// Returns the last state entered.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return Start
	}
	return r.States[len(r.States)-1]
}

// Runs builds against a configured set of collaborators.
type Orchestrator struct {
	cfg Config
}

// Creates a new [Orchestrator].
func New(cfg Config) *Orchestrator {
	if cfg.Backoff == 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleep
	}
	return &Orchestrator{cfg: cfg}
}

// Executes one run to a terminal state.
//
// The returned [Result] is never nil. When the run fails its final state is
// [Failed] and the error is wrapped under one of [ErrConfig],
// [ErrPrerequisite], [ErrResourceBootstrap], or [ErrPublish].
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	r := &run{cfg: o.cfg, opts: opts, result: &Result{Mode: opts.Mode}}
	r.enter(Start)

	slog.Debug("run started",
		"mode", opts.Mode,
		"image", o.cfg.Image,
		"no-cache", opts.NoCache,
		"clean", opts.Clean,
	)

	var err error
	if opts.Mode == ModeLocal {
		err = r.local(ctx)
	} else {
		err = r.publish(ctx)
	}

	if err != nil {
		r.enter(Failed)
		return r.result, err
	}

	return r.result, nil
}

// State of a single run.
type run struct {
	cfg    Config
	opts   Options
	result *Result
}

// Records a state and notifies the observer.
func (r *run) enter(state State) {
	r.result.States = append(r.result.States, state)
	slog.Debug("state", "state", state)
	if r.cfg.Observer != nil {
		r.cfg.Observer.Enter(state)
	}
}

// Builds the host platform and loads it into the local image store.
//
// No emulation or builder operations are performed.
func (r *run) local(ctx context.Context) error {
	if r.opts.Clean {
		slog.Debug("ignoring --clean in local mode")
	}

	host := platform.Host()
	slog.Info("building image for host platform", "image", r.cfg.Image, "platform", host)

	res, err := r.cfg.Backend.Build(ctx, BuildRequest{
		Image:     r.cfg.Image,
		Platforms: platform.Set{host},
		NoCache:   r.opts.NoCache,
		Load:      true,
	})
	if err != nil {
		return wrap(ErrPublish, err)
	}

	r.result.Build = res
	r.enter(LocalLoaded)

	slog.Info("image loaded", "image", res.Image)
	return nil
}

// Runs the multi-platform path through every state.
func (r *run) publish(ctx context.Context) error {
	if len(r.cfg.Platforms) == 0 {
		return wrap(ErrConfig, platform.ErrNoPlatforms)
	}

	if err := r.installEmulation(ctx); err != nil {
		return err
	}
	r.enter(EmulationReady)

	if err := r.ensureBuilder(ctx); err != nil {
		return err
	}
	r.enter(BuilderReady)

	if err := r.buildAndPush(ctx); err != nil {
		return err
	}
	r.enter(Published)

	return nil
}

// Installs emulation handlers. Failure is fatal and not retried.
func (r *run) installEmulation(ctx context.Context) error {
	if foreign := r.cfg.Platforms.Foreign(); len(foreign) > 0 {
		slog.Debug("targets requiring emulation", "platforms", foreign)
	}

	slog.Info("installing emulation handlers")
	if err := r.cfg.Emulator.Install(ctx); err != nil {
		return wrap(ErrPrerequisite, err)
	}

	return nil
}

// Resolves the builder to one that is selected and healthy.
//
// With --clean the builder is removed first. An absent builder is
// provisioned. An existing builder is selected and bootstrapped; if either
// fails it is removed and provisioned from scratch.
func (r *run) ensureBuilder(ctx context.Context) error {
	name := r.cfg.Builder

	if r.opts.Clean {
		slog.Info("removing builder", "builder", name)
		if err := r.cfg.Builders.Remove(ctx, name); err != nil {
			if !errors.Is(err, ErrResourceNotFound) {
				return wrapf(ErrResourceBootstrap, "remove %s: %w", name, err)
			}
			slog.Debug("builder already absent", "builder", name)
		}
	}

	exists, err := r.cfg.Builders.Exists(ctx, name)
	if err != nil {
		return wrapf(ErrResourceBootstrap, "inspect %s: %w", name, err)
	}

	if !exists {
		return r.provision(ctx)
	}

	if err := r.verify(ctx); err != nil {
		slog.Warn("builder is unhealthy, recreating", "builder", name, "error", err)
		r.remove(ctx)
		return r.provision(ctx)
	}

	slog.Info("using existing builder", "builder", name)
	return nil
}

// Selects an existing builder and bootstraps it as a health check.
func (r *run) verify(ctx context.Context) error {
	name := r.cfg.Builder

	if err := r.cfg.Builders.Use(ctx, name); err != nil {
		return err
	}

	return r.cfg.Builders.Bootstrap(ctx, Resource{Name: name, Platforms: r.cfg.Platforms})
}

// Creates and bootstraps the builder, with exactly one retry.
//
// On the first failure the partial builder is removed, the backoff elapses,
// and creation is attempted once more. A second failure is fatal.
func (r *run) provision(ctx context.Context) error {
	name := r.cfg.Builder

	first := r.createAndBootstrap(ctx)
	if first == nil {
		return nil
	}

	slog.Warn("builder bootstrap failed, retrying once",
		"builder", name,
		"backoff", r.cfg.Backoff,
		"error", first,
	)

	r.remove(ctx)

	if err := r.cfg.Sleep(ctx, r.cfg.Backoff); err != nil {
		return wrap(ErrResourceBootstrap, err)
	}

	if err := r.createAndBootstrap(ctx); err != nil {
		return wrapf(ErrResourceBootstrap, "%s failed to bootstrap twice: %w; %s", name, err, remediation)
	}

	return nil
}

// Creates the builder, selects it, and bootstraps it.
func (r *run) createAndBootstrap(ctx context.Context) error {
	name := r.cfg.Builder

	slog.Info("creating builder", "builder", name, "platforms", r.cfg.Platforms)
	res, err := r.cfg.Builders.Create(ctx, name, r.cfg.Platforms)
	if err != nil {
		return err
	}

	slog.Info("bootstrapping builder", "builder", name)
	return r.cfg.Builders.Bootstrap(ctx, res)
}

// Removes the builder during recovery. Failures are logged and otherwise
// ignored; a builder that cannot be removed will fail to be recreated.
func (r *run) remove(ctx context.Context) {
	name := r.cfg.Builder
	if err := r.cfg.Builders.Remove(ctx, name); err != nil && !errors.Is(err, ErrResourceNotFound) {
		slog.Warn("failed to remove builder", "builder", name, "error", err)
	}
}

// Builds every target on the builder and pushes the result.
func (r *run) buildAndPush(ctx context.Context) error {
	slog.Info("building and publishing image",
		"image", r.cfg.Image,
		"platforms", r.cfg.Platforms,
	)

	res, err := r.cfg.Backend.Build(ctx, BuildRequest{
		Builder:   r.cfg.Builder,
		Image:     r.cfg.Image,
		Platforms: r.cfg.Platforms,
		NoCache:   r.opts.NoCache,
		Push:      true,
	})
	if err != nil {
		return wrap(ErrPublish, err)
	}

	r.result.Build = res

	if res.Digest != "" {
		slog.Info("image published", "image", res.Image, "digest", res.Digest)
	} else {
		slog.Info("image published", "image", res.Image)
	}

	return nil
}

// Waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
