// Package version parses and compares eSCL protocol versions.
//
// eSCL versions are written "major.minor" where the minor part is a
// decimal fraction: "2.6" is older than "2.63" and "2.7" is newer than
// both. Comparison therefore treats the minor digits as a fraction rather
// than an integer.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the newest eSCL version this client speaks.
const Current = "2.63"

// Minimum is the oldest eSCL version this client accepts.
const Minimum = "2.0"

// SpecVersion represents a parsed "major.minor" protocol version.
type SpecVersion struct {
	Major uint16

	// Minor holds the digits after the dot exactly as written.
	Minor string
}

// Parse parses a "major.minor" version string.
func Parse(s string) (SpecVersion, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 2 {
		return SpecVersion{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return SpecVersion{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	if parts[1] == "" {
		return SpecVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}
	for _, r := range parts[1] {
		if r < '0' || r > '9' {
			return SpecVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
		}
	}

	return SpecVersion{Major: uint16(major), Minor: parts[1]}, nil
}

// MustParse is Parse that panics on error. For constants only.
func MustParse(s string) SpecVersion {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version as "major.minor".
func (v SpecVersion) String() string {
	return fmt.Sprintf("%d.%s", v.Major, v.Minor)
}

// Compare returns -1, 0 or +1 as v is older than, equal to or newer than other.
func (v SpecVersion) Compare(other SpecVersion) int {
	switch {
	case v.Major < other.Major:
		return -1
	case v.Major > other.Major:
		return 1
	}
	a, b := v.Minor, other.Minor
	for len(a) < len(b) {
		a += "0"
	}
	for len(b) < len(a) {
		b += "0"
	}
	return strings.Compare(a, b)
}

// Compatible returns true if the other version has the same major version.
func (v SpecVersion) Compatible(other SpecVersion) bool {
	return v.Major == other.Major
}

// Negotiate returns the version to use with a device advertising device:
// the older of device and Current. It fails when device is not compatible
// with Current or is older than Minimum.
func Negotiate(device string) (SpecVersion, error) {
	dv, err := Parse(device)
	if err != nil {
		return SpecVersion{}, err
	}
	current := MustParse(Current)
	if !dv.Compatible(current) {
		return SpecVersion{}, fmt.Errorf("unsupported eSCL major version %s (want %d.x)", dv, current.Major)
	}
	if dv.Compare(MustParse(Minimum)) < 0 {
		return SpecVersion{}, fmt.Errorf("eSCL version %s is older than %s", dv, Minimum)
	}
	if dv.Compare(current) < 0 {
		return dv, nil
	}
	return current, nil
}
