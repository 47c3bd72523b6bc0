package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/cruciblehq/buildship/internal"
	"github.com/cruciblehq/buildship/internal/logging"
	"github.com/cruciblehq/buildship/internal/orchestrator"
	"github.com/mattn/go-isatty"
)

const description = "Builds the container image for every target platform and publishes it.\n\n" +
	"Installs cross-architecture emulation, makes sure the buildx builder is " +
	"healthy, then builds and pushes a multi-platform image."

// Represents the root command for buildship.
type RootCmd struct {
	Local   bool             `help:"Build for the host platform only and load the image into the local image store."`
	NoCache bool             `name:"no-cache" help:"Build every step from scratch."`
	Clean   bool             `help:"Remove the builder before building. Ignored with --local."`
	Quiet   bool             `short:"q" help:"Suppress informational output."`
	Verbose bool             `short:"v" help:"Enable verbose output."`
	Debug   bool             `short:"d" help:"Enable debug output."`
	Version kong.VersionFlag `help:"Show version information."`
}

func (r *RootCmd) quiet() bool   { return r.Quiet || internal.IsQuiet() }
func (r *RootCmd) verbose() bool { return r.Verbose || internal.IsVerbose() }
func (r *RootCmd) debug() bool   { return r.Debug || internal.IsDebug() }

// Returns the orchestrator options selected by the flags.
func (r *RootCmd) options() orchestrator.Options {
	opts := orchestrator.Options{
		Mode:    orchestrator.ModePublish,
		NoCache: r.NoCache,
		Clean:   r.Clean,
	}
	if r.Local {
		opts.Mode = orchestrator.ModeLocal
	}
	return opts
}

// Process surroundings of a run. Replaced in tests.
type env struct {
	stdout    io.Writer
	stderr    io.Writer
	stderrFd  uintptr
	exit      func(int)
	newRunner factory
}

// Parses arguments, configures logging, and runs the build.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return execute(ctx, os.Args[1:], env{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		stderrFd:  os.Stderr.Fd(),
		exit:      os.Exit,
		newRunner: newOrchestrator,
	})
}

func execute(ctx context.Context, args []string, e env) error {
	var root RootCmd

	parser, err := kong.New(&root,
		kong.Name(internal.Name),
		kong.Description(description),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.Writers(e.stdout, e.stderr),
		kong.Exit(e.exit),
	)
	if err != nil {
		return err
	}

	if _, err := parser.Parse(args); err != nil {
		configureLogger(&RootCmd{}, false, e.stderr)
		printUsage(parser, err, e.stderr)
		return fmt.Errorf("%w: %w", orchestrator.ErrUsage, err)
	}

	terminal := isTerminal(e.stderrFd)
	p := newProgress(e.stderr, terminal && !root.quiet() && !root.verbose() && !root.debug(), terminal)
	p.quiet = root.quiet()

	configureLogger(&root, terminal, p.writer())

	cfg := internal.Config()
	p.image = cfg.Reference()
	p.builder = cfg.Builder
	p.mode = root.options().Mode

	w := wiring{config: cfg, flags: &root, observer: p}
	if root.verbose() || root.debug() {
		w.stream = p.writer()
	}

	o, err := e.newRunner(w)
	if err != nil {
		return err
	}

	result, err := o.Run(ctx, root.options())
	if err != nil {
		return err
	}

	report(e.stdout, result)
	return nil
}

// Prints the summary usage for a parse error.
func printUsage(parser *kong.Kong, err error, w io.Writer) {
	var perr *kong.ParseError
	if !errors.As(err, &perr) || perr.Context == nil {
		return
	}
	parser.Stdout = w
	_ = perr.Context.PrintUsage(true)
}

// Writes the published or loaded image reference to w.
func report(w io.Writer, result *orchestrator.Result) {
	if result == nil || result.Build == nil {
		return
	}
	if result.Build.Digest != "" {
		fmt.Fprintf(w, "%s@%s\n", result.Build.Image, result.Build.Digest)
		return
	}
	fmt.Fprintln(w, result.Build.Image)
}

// Configures the global logger based on CLI flags.
func configureLogger(root *RootCmd, colorize bool, stream io.Writer) {
	handler, ok := slog.Default().Handler().(*logging.Handler)
	if !ok {
		return // Not a logging.Handler, nothing to configure
	}

	// Configure formatter
	formatter := logging.NewPrettyFormatter(colorize)
	formatter.SetVerbose(root.verbose())

	// Configure handler
	if root.debug() {
		handler.SetLevel(slog.LevelDebug)
	} else if root.quiet() {
		handler.SetLevel(slog.LevelWarn)
	} else {
		handler.SetLevel(slog.LevelInfo)
	}

	// Commit
	handler.SetFormatter(formatter)
	handler.SetStream(stream)
	handler.Flush()
}

// Whether the file descriptor is an interactive terminal.
func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
