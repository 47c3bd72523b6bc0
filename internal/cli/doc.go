// Parses flags, configures logging, and runs one build.
//
// The command accepts the following flags:
//
//	--local         Build for the host platform and load the image locally.
//	--no-cache      Build every step from scratch.
//	--clean         Remove the builder before building.
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	--version       Show version information.
//
// Image, tag, platforms, builder name, build context, and emulation backend
// are build-time defaults set via linker flags. An unrecognized flag fails with
// usage on stderr before anything is installed, created, or built.
package cli
