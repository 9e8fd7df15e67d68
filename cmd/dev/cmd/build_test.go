package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTarget(t *testing.T) {
	got, err := resolveTarget("nanopi", "darwin", "arm64", "windows", "amd64")
	require.NoError(t, err)
	assert.Equal(t, target{OS: "linux", Arch: "arm"}, got)

	got, err = resolveTarget("", "linux", "amd64", "linux", "arm64")
	require.NoError(t, err)
	assert.Equal(t, target{OS: "linux", Arch: "arm64"}, got)

	got, err = resolveTarget("", "linux", "amd64", "linux", "")
	require.NoError(t, err)
	assert.Equal(t, target{OS: "linux", Arch: "amd64"}, got)

	_, err = resolveTarget("beaglebone", "linux", "amd64", "", "")
	assert.EqualError(t, err, `unknown board "beaglebone"`)
}
