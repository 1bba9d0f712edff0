// Package version holds the build version of the server.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the semver of the current build.
var Version = "0.3.1"

// DevVersion is the version suffix used for development builds.
var DevVersion = "dev"

func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return fmt.Sprintf("%s-%s", Version, DevVersion)
	}
	return Version
}

// GetSchemaVersion returns the schema version the current build expects.
// The schema version tracks minor releases; patch releases never change schema.
func GetSchemaVersion(mode string) string {
	currentVersion := GetCurrentVersion(mode)
	minorVersion := GetMinorVersion(currentVersion)
	return minorVersion + ".0"
}

func GetMinorVersion(version string) string {
	versionList := strings.Split(version, ".")
	if len(versionList) < 3 {
		return ""
	}
	return strings.Join(versionList[0:2], ".")
}

// IsVersionGreaterOrEqualThan returns true if version is greater than or equal to target.
func IsVersionGreaterOrEqualThan(version, target string) bool {
	return !IsVersionGreaterThan(target, version)
}

// IsVersionGreaterThan returns true if version is greater than target.
func IsVersionGreaterThan(version, target string) bool {
	versionList := strings.Split(strings.TrimSuffix(version, "-"+DevVersion), ".")
	targetList := strings.Split(strings.TrimSuffix(target, "-"+DevVersion), ".")
	for i := 0; i < len(versionList) && i < len(targetList); i++ {
		versionNum, err := strconv.Atoi(versionList[i])
		if err != nil {
			return false
		}
		targetNum, err := strconv.Atoi(targetList[i])
		if err != nil {
			return true
		}
		if versionNum != targetNum {
			return versionNum > targetNum
		}
	}
	return len(versionList) > len(targetList)
}
