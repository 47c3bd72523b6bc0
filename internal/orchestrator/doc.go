// Package orchestrator drives a build from a clean host to a published image.
//
// A publish run is a strictly sequential state machine:
//
//	START -> EMULATION_READY -> BUILDER_READY -> PUBLISHED
//
// with FAILED reachable from every state. Emulation handlers are installed
// first, then the named builder resource is resolved (created, verified,
// or recreated), and finally the image is built for every configured
// target and pushed. A local run skips emulation and builder management
// entirely, builds the host platform, and loads the result into the local
// image store.
//
// The external tools are reached only through the [Emulator],
// [BuilderManager], and [Backend] interfaces, so the state machine can be
// exercised against fakes.
//
// Bootstrap failures get exactly one recovery attempt: the builder is
// removed, a fixed backoff elapses, and the builder is created and
// bootstrapped again. A second failure is fatal. Nothing else is retried.
//
// Example usage:
//
//	o := orchestrator.New(orchestrator.Config{
//	    Image:     "ghcr.io/org/app:latest",
//	    Builder:   "multiarch",
//	    Platforms: targets,
//	    Emulator:  emulator,
//	    Builders:  builders,
//	    Backend:   backend,
//	})
//
//	result, err := o.Run(ctx, orchestrator.Options{Clean: true})
//	if err != nil {
//	    return err
//	}
package orchestrator
