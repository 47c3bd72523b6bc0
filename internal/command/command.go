package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// Output of a command.
type Output struct {
	ExitCode int    // Exit code of the process.
	Stdout   string // Captured standard output.
	Stderr   string // Captured standard error.
}

// Runs external commands.
//
// A non-zero exit code is not an error; the caller decides. An error means
// the command could not be run at all.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Output, error)
}

// Runs commands as host processes.
type ExecRunner struct {
	Stream io.Writer // Optional. Receives a copy of stdout and stderr as they are written.
}

// Runs the command and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (*Output, error) {
	slog.Debug("exec", "command", name+" "+strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.Stream != nil {
		cmd.Stdout = io.MultiWriter(&stdout, r.Stream)
		cmd.Stderr = io.MultiWriter(&stderr, r.Stream)
	}

	err := cmd.Run()

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, err
	}
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	out := &Output{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if exitErr != nil {
		out.ExitCode = exitErr.ExitCode()
	}

	return out, nil
}
