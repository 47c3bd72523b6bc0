package runtime

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"syscall"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/core/containers"
	"github.com/containerd/containerd/v2/pkg/cio"
	"github.com/containerd/containerd/v2/pkg/oci"
	"github.com/containerd/errdefs"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// Output of a container run.
type ExecResult struct {
	ExitCode int    // Exit code of the process.
	Stdout   string // Captured standard output.
	Stderr   string // Captured standard error.
}

// A one-shot container backed by containerd.
type Container struct {
	client   *containerd.Client // Containerd client for managing the container.
	id       string             // Unique identifier for the container, used as the containerd container ID.
	platform string             // OCI platform (e.g., "linux/amd64").
}

// Creates the containerd container.
//
// The process runs the image entrypoint followed by args. Privileged
// containers get all capabilities, writable sysfs, and no seccomp, AppArmor,
// or SELinux confinement.
func (c *Container) create(ctx context.Context, image containerd.Image, args []string, privileged bool) error {
	config, err := image.Spec(ctx)
	if err != nil {
		return err
	}

	argv, err := commandLine(config, args)
	if err != nil {
		return err
	}

	opts := []oci.SpecOpts{
		oci.WithDefaultSpecForPlatform(c.platform),
		oci.WithImageConfig(image),
		withArgs(argv),
	}
	if privileged {
		opts = append(opts, oci.WithPrivileged)
	}

	_, err = c.client.NewContainer(ctx, c.id,
		containerd.WithImage(image),
		containerd.WithNewSnapshot(c.id, image),
		containerd.WithRuntime(ociRuntime, nil),
		containerd.WithNewSpec(opts...),
	)
	return err
}

// Starts the container's primary process and waits for it to exit.
//
// The task is always deleted before returning. A non-zero exit code is not
// treated as an error.
func (c *Container) run(ctx context.Context) (*ExecResult, error) {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	var stdout, stderr bytes.Buffer
	task, err := ctr.NewTask(ctx, cio.NewCreator(cio.WithStreams(nil, &stdout, &stderr)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	// Wait must be registered before Start so the exit is not missed.
	statusC, err := task.Wait(ctx)
	if err != nil {
		task.Delete(ctx)
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if err := task.Start(ctx); err != nil {
		task.Delete(ctx)
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	exitStatus := <-statusC

	// Delete waits for the IO copy to finish, so the buffers are complete
	// afterwards.
	if _, err := task.Delete(ctx); err != nil && !errdefs.IsNotFound(err) {
		slog.Warn("failed to delete task", "id", c.id, "error", err)
	}

	code, _, err := exitStatus.Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	return &ExecResult{
		ExitCode: int(code),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// Removes the container and its resources.
//
// Any running task is killed and the container is removed from containerd
// along with its snapshot. After destruction the handle is invalid.
func (c *Container) Destroy(ctx context.Context) {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		if !errdefs.IsNotFound(err) {
			slog.Warn("failed to load container for destruction", "id", c.id, "error", err)
		}
		return
	}

	if task, err := ctr.Task(ctx, nil); err == nil {
		task.Kill(ctx, syscall.SIGKILL)
		task.Delete(ctx, containerd.WithProcessKill)
	}

	if err := ctr.Delete(ctx, containerd.WithSnapshotCleanup); err != nil && !errdefs.IsNotFound(err) {
		slog.Warn("failed to delete container during destruction", "id", c.id, "error", err)
	}
}

// Returns the process arguments for a run: the image entrypoint followed by
// args. When args is empty the image command is kept, as docker does.
func commandLine(config ocispec.Image, args []string) ([]string, error) {
	argv := slices.Clone(config.Config.Entrypoint)
	if len(args) > 0 {
		argv = append(argv, args...)
	} else {
		argv = append(argv, config.Config.Cmd...)
	}

	if len(argv) == 0 {
		return nil, ErrNoEntrypoint
	}

	return argv, nil
}

// Sets the process arguments and disables the terminal.
func withArgs(argv []string) oci.SpecOpts {
	return func(_ context.Context, _ oci.Client, _ *containers.Container, s *oci.Spec) error {
		if s.Process == nil {
			s.Process = &specs.Process{}
		}
		s.Process.Args = argv
		s.Process.Terminal = false
		return nil
	}
}
