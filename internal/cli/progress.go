package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/cruciblehq/buildship/internal/orchestrator"
	"github.com/fatih/color"
)

// Renders run states as progress lines on the terminal.
//
// Each completed step prints a check mark. While a step is in flight a
// spinner is shown when animation is enabled.
type progress struct {
	mu      sync.Mutex
	out     io.Writer
	spinner *spinner.Spinner // Nil when not animating.
	quiet   bool             // Suppress completed step lines.
	mode    orchestrator.Mode
	image   string
	builder string
	step    string // Step in flight.
	ok      *color.Color
	fail    *color.Color
}

func newProgress(w io.Writer, animate, colorize bool) *progress {
	p := &progress{
		out:  w,
		ok:   color.New(color.FgGreen),
		fail: color.New(color.FgRed, color.Bold),
	}

	for _, c := range []*color.Color{p.ok, p.fail} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	if animate {
		p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	}

	return p
}

// Implements [orchestrator.Observer].
func (p *progress) Enter(state orchestrator.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch state {
	case orchestrator.Start:
		if p.mode == orchestrator.ModeLocal {
			p.begin("Building " + p.image + " for the host platform")
		} else {
			p.begin("Installing emulation")
		}
	case orchestrator.EmulationReady:
		p.done("Emulation installed")
		p.begin("Preparing builder " + p.builder)
	case orchestrator.BuilderReady:
		p.done("Builder " + p.builder + " ready")
		p.begin("Building and pushing " + p.image)
	case orchestrator.Published:
		p.done("Published " + p.image)
	case orchestrator.LocalLoaded:
		p.done("Loaded " + p.image)
	case orchestrator.Failed:
		p.stop()
		fmt.Fprintf(p.out, "%s %s failed\n", p.fail.Sprint("✗"), p.step)
	}
}

func (p *progress) begin(step string) {
	p.step = step
	if p.spinner == nil {
		return
	}
	p.spinner.Suffix = " " + step
	p.spinner.Start()
}

func (p *progress) done(msg string) {
	p.stop()
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", p.ok.Sprint("✓"), msg)
}

func (p *progress) stop() {
	if p.spinner != nil {
		p.spinner.Stop()
	}
}

// Returns a writer to the progress output that pauses the spinner around
// each write.
func (p *progress) writer() io.Writer {
	return &progressWriter{p: p}
}

type progressWriter struct {
	p *progress
}

func (w *progressWriter) Write(b []byte) (int, error) {
	w.p.mu.Lock()
	defer w.p.mu.Unlock()

	if w.p.spinner == nil || !w.p.spinner.Active() {
		return w.p.out.Write(b)
	}

	w.p.spinner.Stop()
	defer w.p.spinner.Start()
	return w.p.out.Write(b)
}
