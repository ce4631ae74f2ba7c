package version

// Version is the current version of argo-forge.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-forge/internal/version.Version=1.2.3"
// The default value "main" indicates a development build.
var Version = "main"

// GraphFormatVersion is the strategy graph document format this build reads.
const GraphFormatVersion = "1.0.0"

// GetVersion returns the current version of the binary.
func GetVersion() string {
	return Version
}
