// Package version implements the semver comparisons forgec needs for its
// own --version reporting and for forge.toml's min_forge_version gate
// (pkg/config). Adapted from the teacher's pkg/version, which used this
// same Version/Parse/Compare core to reason about pragma-declared
// Solidity versions; Forge's grammar has no pragma or version-pinning
// construct (confirmed against internal/parser), so Detect/DetectAll and
// DetectedVersion are dropped rather than adapted.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a semantic major.minor.patch version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// New creates a new Version
func New(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// String returns the version as a string
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare compares two versions
// Returns -1 if v < other, 0 if equal, 1 if v > other
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		if v.Major < other.Major {
			return -1
		}
		return 1
	}
	if v.Minor != other.Minor {
		if v.Minor < other.Minor {
			return -1
		}
		return 1
	}
	if v.Patch != other.Patch {
		if v.Patch < other.Patch {
			return -1
		}
		return 1
	}
	return 0
}

// LessThan returns true if v < other
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// LessThanOrEqual returns true if v <= other
func (v Version) LessThanOrEqual(other Version) bool {
	return v.Compare(other) <= 0
}

// GreaterThan returns true if v > other
func (v Version) GreaterThan(other Version) bool {
	return v.Compare(other) > 0
}

// GreaterThanOrEqual returns true if v >= other
func (v Version) GreaterThanOrEqual(other Version) bool {
	return v.Compare(other) >= 0
}

// Equal returns true if v == other
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// IsZero returns true if version is unset (0.0.0)
func (v Version) IsZero() bool {
	return v.Major == 0 && v.Minor == 0 && v.Patch == 0
}

// Parse parses a version string like "0.8.20" or "0.8"
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid version format: %s", s)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("invalid major version: %s", parts[0])
	}

	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, fmt.Errorf("invalid minor version: %s", parts[1])
	}

	patch := 0
	if len(parts) == 3 {
		patch, err = strconv.Atoi(parts[2])
		if err != nil {
			return Version{}, fmt.Errorf("invalid patch version: %s", parts[2])
		}
	}

	return Version{Major: major, Minor: minor, Patch: patch}, nil
}

// MustParse parses a version string and panics on error
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Satisfies reports whether v meets a minimum version requirement,
// forgec's only version constraint (forge.toml's min_forge_version):
// v must be greater than or equal to min.
func (v Version) Satisfies(min Version) bool {
	return v.GreaterThanOrEqual(min)
}
