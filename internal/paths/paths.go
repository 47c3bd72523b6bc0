package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "buildship"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for cached build state.
//
//	Linux:   $XDG_CACHE_HOME/buildship or ~/.cache/buildship
//	macOS:   ~/Library/Caches/buildship
func Cache() string {
	return filepath.Join(xdg.CacheHome, toolName)
}

// Path to the local buildx layer cache for the given builder.
//
// The cache lives outside the builder container so that it survives the
// builder being destroyed and recreated.
//
//	Linux:   $XDG_CACHE_HOME/buildship/buildx/<builder>
//	macOS:   ~/Library/Caches/buildship/buildx/<builder>
func BuildCache(builder string) string {
	return filepath.Join(Cache(), "buildx", builder)
}
