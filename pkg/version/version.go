package version

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

var (
	// Build information - these will be set via ldflags during build
	Version   = "dev"
	Commit    = "unknown"
	Date      = "unknown"
	BuiltBy   = "unknown"
	GoVersion = runtime.Version()
)

// ErrIncompatible is returned when two engine versions must not be mixed.
var ErrIncompatible = errors.New("incompatible engine versions")

// Info holds version information
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// GetInfo returns version information
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		BuiltBy:   BuiltBy,
		GoVersion: GoVersion,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// GetVersion returns just the version string
func GetVersion() string {
	return Version
}

// String returns a formatted version string
func (i Info) String() string {
	return fmt.Sprintf("condenser version %s\ncommit: %s\nbuilt: %s\nby: %s\ngo: %s\nplatform: %s",
		i.Version, i.Commit, i.Date, i.BuiltBy, i.GoVersion, i.Platform)
}

// ShortString returns a short version string
func (i Info) ShortString() string {
	return fmt.Sprintf("condenser version %s", i.Version)
}

// Compatible accepts identical version strings, or two semantic versions
// with the same major version. Reports produced by compatible engines
// count and condense the same way.
func Compatible(a, b string) error {
	if a == b {
		return nil
	}
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		return fmt.Errorf("%w: %q and %q", ErrIncompatible, a, b)
	}
	if va.Major() != vb.Major() {
		return fmt.Errorf("%w: major versions %d and %d", ErrIncompatible, va.Major(), vb.Major())
	}
	return nil
}
