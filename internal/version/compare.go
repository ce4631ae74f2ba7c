package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckGraphCompatibility checks whether a graph document written for
// documentVersion can be read by an engine supporting engineVersion.
//
// Compatibility Rules:
//   - An empty document version is treated as the current format
//   - If either version is "main" (development build), the check is skipped
//   - Major versions must match exactly
//   - Documents with a newer minor version than the engine are rejected
//
// Examples:
//   - Engine 1.2.0, Document 1.0.0 -> OK
//   - Engine 1.2.0, Document 1.2.7 -> OK
//   - Engine 1.0.0, Document 1.1.0 -> ERROR (document is newer)
//   - Engine 1.0.0, Document 2.0.0 -> ERROR (major differs)
func CheckGraphCompatibility(engineVersion, documentVersion string) error {
	engineVersion = strings.TrimPrefix(strings.TrimSpace(engineVersion), "v")
	documentVersion = strings.TrimPrefix(strings.TrimSpace(documentVersion), "v")

	if documentVersion == "" || engineVersion == "main" || documentVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return fmt.Errorf("invalid engine version '%s': %w", engineVersion, err)
	}

	documentSemver, err := semver.NewVersion(documentVersion)
	if err != nil {
		return fmt.Errorf("invalid graph version '%s': %w", documentVersion, err)
	}

	if engineSemver.Major() != documentSemver.Major() {
		return fmt.Errorf("major version mismatch: engine reads %d.x.x graphs but document is %d.x.x",
			engineSemver.Major(), documentSemver.Major())
	}

	if documentSemver.Minor() > engineSemver.Minor() {
		return fmt.Errorf("graph format %d.%d.x is newer than supported %d.%d.x",
			documentSemver.Major(), documentSemver.Minor(),
			engineSemver.Major(), engineSemver.Minor())
	}

	return nil
}
