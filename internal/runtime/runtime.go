package runtime

import (
	"context"
	"fmt"
	"log/slog"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/platforms"
)

const (

	// OCI runtime shim for running containers.
	ociRuntime = "io.containerd.runc.v2"
)

// Manages the containerd client and provides image and container operations.
type Runtime struct {
	client *containerd.Client // Containerd client for managing containers and images.
}

// Creates a runtime connected to the containerd socket at the given address.
//
// The namespace scopes all containerd operations to a single tenant. The
// runtime must be closed when no longer needed.
func New(address, namespace string) (*Runtime, error) {
	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	return &Runtime{client: client}, nil
}

// Closes the containerd client connection.
func (rt *Runtime) Close() error {
	return rt.client.Close()
}

// Pulls an image for the given platform and unpacks it into the default
// snapshotter.
//
// Pulling an image that is already present only re-resolves the reference.
func (rt *Runtime) Pull(ctx context.Context, ref, platform string) (containerd.Image, error) {
	p, err := platforms.Parse(platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	image, err := rt.client.Pull(ctx, ref,
		containerd.WithPullUnpack,
		containerd.WithPlatformMatcher(platforms.Only(p)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: pull %s: %w", ErrRuntime, ref, err)
	}

	slog.Debug("image pulled", "ref", ref, "platform", platform)
	return image, nil
}

// Describes a one-shot container run.
type RunSpec struct {
	Image      string   // Image reference to pull and run.
	ID         string   // Container ID. Any existing container with this ID is replaced.
	Platform   string   // OCI platform (e.g., "linux/amd64").
	Args       []string // Arguments appended to the image entrypoint, replacing its command.
	Privileged bool     // Run with all capabilities and no confinement.
}

// Pulls the image, runs the container's primary process to completion, and
// destroys the container.
//
// A non-zero exit code is not treated as an error; the caller decides.
func (rt *Runtime) RunOnce(ctx context.Context, spec RunSpec) (*ExecResult, error) {
	image, err := rt.Pull(ctx, spec.Image, spec.Platform)
	if err != nil {
		return nil, err
	}

	c := &Container{
		client:   rt.client,
		id:       spec.ID,
		platform: spec.Platform,
	}

	// Remove any stale container from an interrupted run with the same ID.
	c.Destroy(ctx)

	if err := c.create(ctx, image, spec.Args, spec.Privileged); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	defer c.Destroy(context.WithoutCancel(ctx))

	slog.Debug("container created", "id", spec.ID, "image", spec.Image)

	return c.run(ctx)
}
