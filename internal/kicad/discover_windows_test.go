//go:build windows

package kicad

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover_SynthesizesCandidates(t *testing.T) {
	dir := `C:\Temp\kicad`
	got, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, got, MaxWindowsInstances)

	assert.Equal(t, filepath.Join(dir, "api.sock"), got[0])
	for i := 1; i < MaxWindowsInstances; i++ {
		assert.Equal(t, filepath.Join(dir, fmt.Sprintf("api-%d.sock", i)), got[i])
	}
}
