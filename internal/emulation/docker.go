package emulation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cruciblehq/buildship/internal/command"
)

// Installs emulation handlers through the docker CLI.
type Docker struct {
	runner command.Runner
	binary string
}

// Creates a [Docker] installer. A nil runner uses a [command.ExecRunner].
func NewDocker(runner command.Runner) *Docker {
	if runner == nil {
		runner = &command.ExecRunner{}
	}
	return &Docker{runner: runner, binary: "docker"}
}

// Runs "docker run --privileged --rm <binfmt> --install all".
func (d *Docker) Install(ctx context.Context) error {
	args := append([]string{"run", "--privileged", "--rm", BinfmtImage}, installArgs...)

	out, err := d.runner.Run(ctx, d.binary, args...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInstall, err)
	}
	if out.ExitCode != 0 {
		return fmt.Errorf("%w: exit code %d: %s", ErrInstall, out.ExitCode, strings.TrimSpace(out.Stderr))
	}

	slog.Debug("emulation handlers installed", "backend", BackendDocker, "output", strings.TrimSpace(out.Stdout))
	return nil
}
