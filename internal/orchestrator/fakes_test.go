package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cruciblehq/buildship/internal/platform"
)

var errTool = errors.New("tool exited with status 1")

// Shared call log, so tests can assert ordering across collaborators.
type calls struct {
	log []string
}

func (c *calls) record(name string) {
	c.log = append(c.log, name)
}

func (c *calls) count(name string) int {
	n := 0
	for _, l := range c.log {
		if l == name {
			n++
		}
	}
	return n
}

type fakeEmulator struct {
	calls *calls
	err   error
}

func (f *fakeEmulator) Install(ctx context.Context) error {
	f.calls.record("install")
	return f.err
}

// In-memory builder manager. Bootstrap results are consumed in order; once
// exhausted, bootstrap succeeds.
type fakeBuilders struct {
	calls      *calls
	exists     bool
	existsErr  error
	createErr  error
	useErr     error
	removeErr  error
	bootstraps []error
}

func (f *fakeBuilders) Exists(ctx context.Context, name string) (bool, error) {
	f.calls.record("exists")
	return f.exists, f.existsErr
}

func (f *fakeBuilders) Create(ctx context.Context, name string, platforms platform.Set) (Resource, error) {
	f.calls.record("create")
	if f.createErr != nil {
		return Resource{}, f.createErr
	}
	f.exists = true
	return Resource{Name: name, Platforms: platforms}, nil
}

func (f *fakeBuilders) Use(ctx context.Context, name string) error {
	f.calls.record("use")
	return f.useErr
}

func (f *fakeBuilders) Bootstrap(ctx context.Context, res Resource) error {
	f.calls.record("bootstrap")
	if len(f.bootstraps) == 0 {
		return nil
	}
	err := f.bootstraps[0]
	f.bootstraps = f.bootstraps[1:]
	return err
}

func (f *fakeBuilders) Remove(ctx context.Context, name string) error {
	f.calls.record("remove")
	if f.removeErr != nil {
		return f.removeErr
	}
	if !f.exists {
		return ErrResourceNotFound
	}
	f.exists = false
	return nil
}

type fakeBackend struct {
	calls    *calls
	err      error
	requests []BuildRequest
}

func (f *fakeBackend) Build(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	f.calls.record("build")
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &BuildResult{Image: req.Image}, nil
}

// Test fixture wiring fakes into an orchestrator.
type fixture struct {
	calls    *calls
	emulator *fakeEmulator
	builders *fakeBuilders
	backend  *fakeBackend
	sleeps   []time.Duration
	observed []State
}

func newFixture() *fixture {
	c := &calls{}
	return &fixture{
		calls:    c,
		emulator: &fakeEmulator{calls: c},
		builders: &fakeBuilders{calls: c},
		backend:  &fakeBackend{calls: c},
	}
}

func (f *fixture) orchestrator(targets platform.Set) *Orchestrator {
	return New(Config{
		Image:     "example.com/app:latest",
		Builder:   "multiarch",
		Platforms: targets,
		Emulator:  f.emulator,
		Builders:  f.builders,
		Backend:   f.backend,
		Observer:  ObserverFunc(func(s State) { f.observed = append(f.observed, s) }),
		Sleep: func(ctx context.Context, d time.Duration) error {
			f.calls.record("sleep")
			f.sleeps = append(f.sleeps, d)
			return nil
		},
	})
}

// Calls that touch the builder resource.
func (f *fixture) builderOps() int {
	return f.calls.count("exists") + f.calls.count("create") + f.calls.count("use") +
		f.calls.count("bootstrap") + f.calls.count("remove")
}
