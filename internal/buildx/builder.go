package buildx

import (
	"context"
	"log/slog"

	"github.com/cruciblehq/buildship/internal/orchestrator"
	"github.com/cruciblehq/buildship/internal/platform"
)

// Reports whether a builder with the given name exists.
func (c *Client) Exists(ctx context.Context, name string) (bool, error) {
	args := []string{"inspect", name}

	out, err := c.buildx(ctx, args...)
	if err != nil {
		return false, err
	}

	switch {
	case out.ExitCode == 0:
		return true, nil
	case isNotFound(out):
		return false, nil
	default:
		return false, commandError(c.binary, args, out)
	}
}

// Creates a docker-container builder for the given platforms and selects it.
func (c *Client) Create(ctx context.Context, name string, platforms platform.Set) (orchestrator.Resource, error) {
	_, err := c.mustBuildx(ctx,
		"create",
		"--name", name,
		"--driver", driver,
		"--platform", platforms.String(),
		"--use",
	)
	if err != nil {
		return orchestrator.Resource{}, err
	}

	slog.Debug("builder created", "builder", name, "platforms", platforms)
	return orchestrator.Resource{Name: name, Platforms: platforms}, nil
}

// Selects an existing builder as active.
func (c *Client) Use(ctx context.Context, name string) error {
	_, err := c.mustBuildx(ctx, "use", name)
	return err
}

// Starts the builder and waits until it is ready to accept builds.
func (c *Client) Bootstrap(ctx context.Context, res orchestrator.Resource) error {
	out, err := c.mustBuildx(ctx, "inspect", "--bootstrap", res.Name)
	if err != nil {
		return err
	}

	slog.Debug("builder bootstrapped", "builder", res.Name, "inspect", out.Stdout)
	return nil
}

// Removes the builder.
//
// Returns [orchestrator.ErrResourceNotFound] if no builder with that name
// exists.
func (c *Client) Remove(ctx context.Context, name string) error {
	args := []string{"rm", name}

	out, err := c.buildx(ctx, args...)
	if err != nil {
		return err
	}

	switch {
	case out.ExitCode == 0:
		slog.Debug("builder removed", "builder", name)
		return nil
	case isNotFound(out):
		return orchestrator.ErrResourceNotFound
	default:
		return commandError(c.binary, args, out)
	}
}
