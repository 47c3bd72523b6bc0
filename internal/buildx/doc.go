// Package buildx manages builders and runs builds through the docker buildx
// CLI.
//
// A [Client] implements both the builder management and the build backend
// used by the orchestrator. Every operation is a single docker invocation
// made through a [command.Runner], so tests substitute a fake runner and never touch
// a real docker daemon.
//
// Builders are created with the docker-container driver, which is required
// for multi-platform builds and for exporting the layer cache. Builds on a
// named builder export their cache to a local directory under the XDG cache
// home so the cache survives the builder being recreated.
//
// Example usage:
//
//	c := buildx.New(buildx.Config{Context: "."})
//
//	exists, err := c.Exists(ctx, "multiarch")
//	if err != nil {
//	    return err
//	}
package buildx
