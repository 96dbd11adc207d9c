// Package update checks GitHub releases for newer versions of a workflow
// and installs them.
package update

import (
	"github.com/Masterminds/semver/v3"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
)

// Version is a semantic version that does not require minor or patch
// numbers. "v1", "2.0" and "3.1-beta+42" are all valid.
type Version struct {
	Major  int
	Minor  int
	Patch  int
	Suffix string
	Build  string
}

// ParseVersion parses s, which may carry a leading "v".
func ParseVersion(s string) (Version, error) {
	sv, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, wferrors.New(wferrors.ErrCodeInvalidVersion, "invalid version number: "+err.Error(), err).
			WithDetail("version", s)
	}
	return Version{
		Major:  int(sv.Major()),
		Minor:  int(sv.Minor()),
		Patch:  int(sv.Patch()),
		Suffix: sv.Prerelease(),
		Build:  sv.Metadata(),
	}, nil
}

// MustParseVersion is ParseVersion for constants. It panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) toSemver() *semver.Version {
	return semver.New(uint64(v.Major), uint64(v.Minor), uint64(v.Patch), v.Suffix, v.Build)
}

// IsPrerelease reports whether v has a pre-release suffix.
func (v Version) IsPrerelease() bool {
	return v.Suffix != ""
}

// String returns the full "major.minor.patch[-suffix][+build]" form.
func (v Version) String() string {
	return v.toSemver().String()
}

// Compare returns -1, 0 or 1. Build metadata is ignored and a release
// ranks above any of its pre-releases.
func (v Version) Compare(o Version) int {
	return v.toSemver().Compare(o.toSemver())
}

// LessThan reports whether v sorts before o.
func (v Version) LessThan(o Version) bool {
	return v.Compare(o) < 0
}

// Equal reports whether v and o are the same version, ignoring build data.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
