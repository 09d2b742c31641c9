// Package version reports the build version of the binary.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Version is set at build time with -ldflags "-X singmerge/internal/shared/version.Version=1.2.3"
var Version = "dev"

// Normalize ensures version string has "v" prefix for semver compatibility.
// Examples: "1.2.3" -> "v1.2.3", "v1.2.3" -> "v1.2.3"
func Normalize(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// String returns the normalized build version, or "dev" for unversioned builds.
func String() string {
	if !IsRelease(Version) {
		return "dev"
	}
	return semver.Canonical(Normalize(Version))
}

// IsRelease reports whether version is a valid semantic version
func IsRelease(version string) bool {
	return semver.IsValid(Normalize(version))
}
