// Package emulation registers cross-architecture emulation handlers on the
// host.
//
// Building images for a foreign architecture runs that architecture's
// binaries under QEMU user-mode emulation, which the kernel dispatches via
// binfmt_misc. The handlers are installed by running the binfmt image with
// "--install all" in a privileged container. Installation is idempotent and
// global to the host; nothing is undone when the process exits.
//
// Two installers are provided: [Docker] runs the image through the docker
// CLI, and [Containerd] runs it directly against a containerd socket. [New]
// selects one by name.
//
// Example usage:
//
//	em, err := emulation.New(emulation.Config{Backend: "docker"})
//	if err != nil {
//	    return err
//	}
//	if err := em.Install(ctx); err != nil {
//	    return err
//	}
package emulation
