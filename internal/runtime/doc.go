// Package runtime runs one-shot containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon, pulls images for a given
// platform, and runs a container's primary process to completion. It exists
// for host setup tasks that must run with full privileges, such as
// registering binfmt_misc emulation handlers, on hosts where containerd is
// reachable directly.
//
// Each [Container] is created fresh for a single run and destroyed when the
// run finishes, whatever the outcome. A stale container left behind by an
// interrupted run with the same ID is removed before the new one is created.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "buildship")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	result, err := rt.RunOnce(ctx, runtime.RunSpec{
//	    Image:      "docker.io/tonistiigi/binfmt:latest",
//	    ID:         "buildship-binfmt",
//	    Platform:   "linux/amd64",
//	    Args:       []string{"--install", "all"},
//	    Privileged: true,
//	})
//	if err != nil {
//	    return err
//	}
package runtime
