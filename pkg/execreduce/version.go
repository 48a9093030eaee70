package execreduce

import (
	"fmt"

	"golang.org/x/mod/semver"
)

const Version = "v0.3.0"

// IsCompatibleVersion reports whether two versions share a major version.
// Minor and patch versions can differ.
func IsCompatibleVersion(have, want string) (bool, error) {
	if !semver.IsValid(have) {
		return false, fmt.Errorf("invalid version: %s", have)
	}
	if !semver.IsValid(want) {
		return false, fmt.Errorf("invalid version: %s", want)
	}

	return semver.Major(have) == semver.Major(want), nil
}

// CheckCompatibleVersion is IsCompatibleVersion returning ErrIncompatibleVersion
// on a major version mismatch.
func CheckCompatibleVersion(have, want string) error {
	ok, err := IsCompatibleVersion(have, want)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: have %s, required %s.x.x", ErrIncompatibleVersion, have, semver.Major(want))
	}

	return nil
}
