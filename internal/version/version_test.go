package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCurrentVersion(t *testing.T) {
	assert.Equal(t, Version+"-"+DevVersion, GetCurrentVersion("dev"))
	assert.Equal(t, Version+"-"+DevVersion, GetCurrentVersion("demo"))
	assert.Equal(t, Version, GetCurrentVersion("prod"))
}

func TestGetSchemaVersion(t *testing.T) {
	// Schema version tracks the minor release with a zero patch.
	assert.Equal(t, GetMinorVersion(Version)+".0", GetSchemaVersion("prod"))
	assert.Equal(t, GetSchemaVersion("prod"), GetSchemaVersion("dev"), "dev suffix does not change schema version")
}

func TestGetMinorVersion(t *testing.T) {
	assert.Equal(t, "0.3", GetMinorVersion("0.3.1"))
	assert.Equal(t, "1.12", GetMinorVersion("1.12.4"))
	assert.Equal(t, "", GetMinorVersion("0.3"))
}

func TestIsVersionGreaterThan(t *testing.T) {
	tests := []struct {
		version string
		target  string
		want    bool
	}{
		{"0.3.0", "0.2.9", true},
		{"0.2.9", "0.3.0", false},
		{"0.3.0", "0.3.0", false},
		{"1.0.0", "0.99.0", true},
		{"0.3.1-dev", "0.3.0", true},
		{"0.3.0", "0.3.0-dev", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsVersionGreaterThan(tt.version, tt.target), "%s > %s", tt.version, tt.target)
	}

	assert.True(t, IsVersionGreaterOrEqualThan("0.3.0", "0.3.0"))
	assert.True(t, IsVersionGreaterOrEqualThan("0.3.1", "0.3.0"))
	assert.False(t, IsVersionGreaterOrEqualThan("0.2.0", "0.3.0"))
}
