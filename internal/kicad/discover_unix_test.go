//go:build !windows

package kicad

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover_MatchesAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"api.sock", "api-2.sock", "api-10.sock", "api-1.sock", "other.txt", "api-x.sock"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "api-3.sock"), 0o700))

	got, err := Discover(dir)
	require.NoError(t, err)

	// Lexicographic, not numeric
	assert.Equal(t, []string{
		filepath.Join(dir, "api-1.sock"),
		filepath.Join(dir, "api-10.sock"),
		filepath.Join(dir, "api-2.sock"),
		filepath.Join(dir, "api.sock"),
	}, got)
}

func TestDiscover_MissingDir(t *testing.T) {
	got, err := Discover(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, got)
}
