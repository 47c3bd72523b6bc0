package orchestrator

import (
	"context"

	"github.com/cruciblehq/buildship/internal/platform"
	"github.com/opencontainers/go-digest"
)

// Installs host-level cross-architecture emulation handlers.
//
// Install must be idempotent. Its effect is global to the host and is not
// undone when the process exits.
type Emulator interface {
	Install(ctx context.Context) error
}

// Handle to a builder resource returned by [BuilderManager.Create].
type Resource struct {
	Name      string       // Unique name of the builder.
	Platforms platform.Set // Platforms the builder was provisioned for.
}

// Manages named builder resources.
//
// Builders are external state that outlives the process. Operations are
// keyed by name and are not coordinated across concurrent invocations.
type BuilderManager interface {

	// Reports whether a builder with the given name exists.
	Exists(ctx context.Context, name string) (bool, error)

	// Creates a builder for the given platforms and selects it as active.
	Create(ctx context.Context, name string, platforms platform.Set) (Resource, error)

	// Selects an existing builder as active.
	Use(ctx context.Context, name string) error

	// Initialises the builder and verifies that it can accept builds. A
	// failure is the only signal that a builder is broken.
	Bootstrap(ctx context.Context, res Resource) error

	// Removes the builder. Returns [ErrResourceNotFound] if it does not exist.
	Remove(ctx context.Context, name string) error
}

// Parameters of a single build invocation.
type BuildRequest struct {
	Builder   string       // Builder to run on. Empty selects the active builder.
	Image     string       // Full image reference to tag the result with.
	Platforms platform.Set // Platforms to build. Never empty.
	NoCache   bool         // Disable build step caching.
	Push      bool         // Push the result to the registry.
	Load      bool         // Load the result into the local image store.
}

// Outcome of a successful build invocation.
type BuildResult struct {
	Image  string        // Image reference the result was tagged with.
	Digest digest.Digest // Manifest digest, if the backend reported one.
}

// Builds, and optionally publishes, container images.
type Backend interface {
	Build(ctx context.Context, req BuildRequest) (*BuildResult, error)
}
