package emulation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cruciblehq/buildship/internal/platform"
	"github.com/cruciblehq/buildship/internal/runtime"
)

const (

	// Default containerd socket address.
	DefaultContainerdAddress = "/run/containerd/containerd.sock"

	// Default containerd namespace for the binfmt image and container.
	DefaultContainerdNamespace = "buildship"

	// ID of the one-shot binfmt container.
	containerID = "buildship-binfmt"
)

// Runs a container to completion. Satisfied by [runtime.Runtime].
type oneShot interface {
	RunOnce(ctx context.Context, spec runtime.RunSpec) (*runtime.ExecResult, error)
	Close() error
}

// Installs emulation handlers by running the binfmt image directly on
// containerd.
type Containerd struct {
	address   string
	namespace string
	dial      func(address, namespace string) (oneShot, error)
}

// Creates a [Containerd] installer. Empty arguments use the defaults.
func NewContainerd(address, namespace string) *Containerd {
	if address == "" {
		address = DefaultContainerdAddress
	}
	if namespace == "" {
		namespace = DefaultContainerdNamespace
	}
	return &Containerd{
		address:   address,
		namespace: namespace,
		dial: func(address, namespace string) (oneShot, error) {
			return runtime.New(address, namespace)
		},
	}
}

// Pulls the binfmt image for the host platform and runs it privileged.
func (c *Containerd) Install(ctx context.Context) error {
	rt, err := c.dial(c.address, c.namespace)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInstall, err)
	}
	defer rt.Close()

	res, err := rt.RunOnce(ctx, runtime.RunSpec{
		Image:      BinfmtImage,
		ID:         containerID,
		Platform:   platform.Host().String(),
		Args:       installArgs,
		Privileged: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInstall, err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%w: exit code %d: %s", ErrInstall, res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	slog.Debug("emulation handlers installed", "backend", BackendContainerd, "output", strings.TrimSpace(res.Stdout))
	return nil
}
