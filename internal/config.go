package internal

import (
	"strconv"
	"strings"
	"sync/atomic"
)

var (
	quietMode   atomic.Bool // Indicates whether quiet mode is enabled.
	debugMode   atomic.Bool // Indicates whether debug logging is enabled.
	verboseMode atomic.Bool // Indicates whether verbose logging is enabled.
)

// Fixed build configuration.
//
// Every field is set at build time via linker flags. None of them is exposed
// as a command-line flag.
type BuildConfig struct {
	Image     string   // Image repository (e.g., "ghcr.io/org/app").
	Tag       string   // Image tag (e.g., "latest").
	Platforms []string // Target platforms for publish builds, in declaration order.
	Builder   string   // Name of the buildx builder resource.
	Context   string   // Build context directory.
	Emulator  string   // Emulation installer backend.
}

// Parses the linker flags into usable runtime variables.
//
// The rawQuiet, rawDebug, and rawVerbose variables should be set via ldflags
// during the build process. If not set, they default to "false".
func init() {
	if v, err := strconv.ParseBool(rawQuiet); err == nil {
		quietMode.Store(v)
	}
	if v, err := strconv.ParseBool(rawDebug); err == nil {
		debugMode.Store(v)
	}
	if v, err := strconv.ParseBool(rawVerbose); err == nil {
		verboseMode.Store(v)
	}
}

// Returns the build configuration baked into the binary.
//
// Platforms are split on commas with surrounding whitespace and empty entries
// removed. Validation is left to the platform package.
func Config() BuildConfig {
	return BuildConfig{
		Image:     strings.TrimSpace(image),
		Tag:       strings.TrimSpace(tag),
		Platforms: splitList(platformList),
		Builder:   strings.TrimSpace(builder),
		Context:   strings.TrimSpace(buildContext),
		Emulator:  strings.ToLower(strings.TrimSpace(emulator)),
	}
}

// Returns the full image reference, "<image>:<tag>".
func (c BuildConfig) Reference() string {
	if c.Tag == "" {
		return c.Image
	}
	return c.Image + ":" + c.Tag
}

// Splits a comma-separated list, dropping blank entries.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Enables or disables quiet mode.
func SetQuiet(enabled bool) {
	quietMode.Store(enabled)
}

// Returns true if quiet mode is enabled.
func IsQuiet() bool {
	return quietMode.Load()
}

// Enables or disables debug mode.
func SetDebug(enabled bool) {
	debugMode.Store(enabled)
}

// Returns true if debug mode is enabled.
func IsDebug() bool {
	return debugMode.Load()
}

// Enables or disables verbose logging.
func SetVerbose(enabled bool) {
	verboseMode.Store(enabled)
}

// Returns true if verbose logging is enabled.
func IsVerbose() bool {
	return verboseMode.Load()
}
