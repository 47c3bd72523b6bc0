package platform

import (
	"fmt"
	goruntime "runtime"
	"strings"

	"github.com/containerd/platforms"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// A single build target.
type Target struct {
	spec ocispec.Platform
}

// Parses and normalises a platform string.
//
// The OS component is required. Strings without an architecture are rejected
// rather than defaulted to the host, since a build target must be explicit.
func Parse(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "/") {
		return Target{}, fmt.Errorf("%w: %q: expected os/arch[/variant]", ErrInvalidPlatform, s)
	}

	p, err := platforms.Parse(s)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %w", ErrInvalidPlatform, err)
	}

	return Target{spec: platforms.Normalize(p)}, nil
}

// Returns the Linux target matching the host architecture.
//
// Images are always Linux images, so the host OS is ignored. This is the
// single target used by local builds.
func Host() Target {
	p := platforms.DefaultSpec()
	p.OS = "linux"
	if p.Architecture == "" {
		p.Architecture = goruntime.GOARCH
	}
	return Target{spec: platforms.Normalize(p)}
}

// Returns the OCI platform specification.
func (t Target) Spec() ocispec.Platform {
	return t.spec
}

// Returns the normalised "os/arch[/variant]" form.
func (t Target) String() string {
	return platforms.Format(t.spec)
}

// Whether the host can run binaries for this target without emulation.
func (t Target) Native() bool {
	return platforms.Only(Host().spec).Match(t.spec)
}

// Ordered, de-duplicated, non-empty list of targets.
type Set []Target

// Parses a list of platform strings into a [Set].
//
// Duplicates (after normalisation) are dropped, keeping the first occurrence.
// An empty list is an error.
func ParseSet(list []string) (Set, error) {
	var set Set
	seen := make(map[string]bool, len(list))

	for _, s := range list {
		t, err := Parse(s)
		if err != nil {
			return nil, err
		}
		key := t.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		set = append(set, t)
	}

	if len(set) == 0 {
		return nil, ErrNoPlatforms
	}

	return set, nil
}

// Returns the targets as normalised strings.
func (s Set) Strings() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = t.String()
	}
	return out
}

// Returns the targets joined with commas, as accepted by buildx --platform.
func (s Set) String() string {
	return strings.Join(s.Strings(), ",")
}

// Returns the targets that require emulation on this host.
func (s Set) Foreign() Set {
	var out Set
	for _, t := range s {
		if !t.Native() {
			out = append(out, t)
		}
	}
	return out
}
