package buildx

import (
	"context"
	"fmt"
	"strings"

	"github.com/cruciblehq/buildship/internal/command"
	"github.com/cruciblehq/buildship/internal/paths"
)

const (

	// Docker CLI binary used when none is configured.
	defaultBinary = "docker"

	// Builder driver. The default "docker" driver cannot build for multiple
	// platforms or export a cache.
	driver = "docker-container"

	// Number of trailing stderr lines kept in error messages.
	stderrTail = 20
)

// Returns the local cache directory for a builder.
type CacheDirFunc func(builder string) string

// Holds client configuration.
type Config struct {
	Runner   command.Runner // Runs docker. Nil uses a [command.ExecRunner] with no streaming.
	Binary   string         // Docker CLI binary. Empty uses "docker".
	Context  string         // Build context directory. Empty uses ".".
	CacheDir CacheDirFunc   // Nil uses [paths.BuildCache].
}

// Drives docker buildx.
type Client struct {
	runner   command.Runner
	binary   string
	context  string
	cacheDir CacheDirFunc
}

// Creates a new [Client].
func New(cfg Config) *Client {
	c := &Client{
		runner:   cfg.Runner,
		binary:   cfg.Binary,
		context:  cfg.Context,
		cacheDir: cfg.CacheDir,
	}
	if c.runner == nil {
		c.runner = &command.ExecRunner{}
	}
	if c.binary == "" {
		c.binary = defaultBinary
	}
	if c.context == "" {
		c.context = "."
	}
	if c.cacheDir == nil {
		c.cacheDir = paths.BuildCache
	}
	return c
}

// Runs "docker buildx <args>".
//
// Returns the output even when the exit code is non-zero. An error is
// returned only if docker could not be run.
func (c *Client) buildx(ctx context.Context, args ...string) (*command.Output, error) {
	return c.runner.Run(ctx, c.binary, append([]string{"buildx"}, args...)...)
}

// Runs "docker buildx <args>" and requires a zero exit code.
func (c *Client) mustBuildx(ctx context.Context, args ...string) (*command.Output, error) {
	out, err := c.buildx(ctx, args...)
	if err != nil {
		return nil, err
	}
	if out.ExitCode != 0 {
		return out, commandError(c.binary, args, out)
	}
	return out, nil
}

// Formats a failed command as an error carrying the tail of its stderr.
func commandError(binary string, args []string, out *command.Output) error {
	msg := tail(strings.TrimSpace(out.Stderr), stderrTail)
	if msg == "" {
		msg = strings.TrimSpace(out.Stdout)
	}
	return fmt.Errorf("%w: %s buildx %s: exit code %d: %s",
		ErrCommandFailed, binary, strings.Join(args, " "), out.ExitCode, msg)
}

// Returns the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}

// Whether buildx reported that a builder does not exist.
//
// buildx has no distinct exit code for a missing builder, so the message is
// matched instead: `ERROR: no builder "name" found`.
func isNotFound(out *command.Output) bool {
	msg := strings.ToLower(out.Stderr)
	return strings.Contains(msg, "no builder") || strings.Contains(msg, "not found")
}
