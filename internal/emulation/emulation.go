package emulation

import (
	"fmt"

	"github.com/cruciblehq/buildship/internal/command"
	"github.com/cruciblehq/buildship/internal/orchestrator"
)

const (

	// Image that registers QEMU handlers with binfmt_misc.
	BinfmtImage = "docker.io/tonistiigi/binfmt:latest"

	// Backend names accepted by [New].
	BackendDocker     = "docker"
	BackendContainerd = "containerd"
)

// Arguments passed to the binfmt image.
var installArgs = []string{"--install", "all"}

// Holds installer configuration.
type Config struct {
	Backend             string         // [BackendDocker] or [BackendContainerd]. Empty uses docker.
	Runner              command.Runner // Runs docker. Docker backend only.
	ContainerdAddress   string         // Containerd socket. Containerd backend only.
	ContainerdNamespace string         // Containerd namespace. Containerd backend only.
}

// Returns the installer for the configured backend.
func New(cfg Config) (orchestrator.Emulator, error) {
	switch cfg.Backend {
	case "", BackendDocker:
		return NewDocker(cfg.Runner), nil
	case BackendContainerd:
		return NewContainerd(cfg.ContainerdAddress, cfg.ContainerdNamespace), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
