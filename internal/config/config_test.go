package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_RUNTIME_DIR", filepath.Join(home, "run"))
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, "2.5-flash", cfg.Model)
	assert.Equal(t, 5*time.Second, cfg.ProbeTimeout)
	assert.Empty(t, cfg.SocketDir)
	assert.Equal(t, filepath.Join(home, ".config", "kiassist", "recent_projects.json"), cfg.RecentPath)
	assert.Equal(t, filepath.Join(home, ".kiassist", "config.json"), cfg.CredentialPath)
	assert.Equal(t, filepath.Join(home, "run", "kiassist", "daemon.sock"), cfg.DaemonSocket)
	assert.Empty(t, cfg.ConfigFile(), "no config file was present")
}

func TestLoad_DefaultFileReported(t *testing.T) {
	home := isolate(t)
	file := filepath.Join(home, ".config", "kiassist", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o700))
	require.NoError(t, os.WriteFile(file, []byte("model: 2.5-pro\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "2.5-pro", cfg.Model)
	assert.Equal(t, file, cfg.ConfigFile())
}

func TestLoad_FileAndEnv(t *testing.T) {
	home := isolate(t)
	file := filepath.Join(home, "kiassist.yaml")
	content := "model: 3-pro\nkicad:\n  socket_dir: /srv/kicad\n  timeout: 2s\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	t.Setenv("KIASSIST_DEBUG", "true")

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "3-pro", cfg.Model)
	assert.Equal(t, "/srv/kicad", cfg.SocketDir)
	assert.Equal(t, 2*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, file, cfg.ConfigFile())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := isolate(t)
	file := filepath.Join(home, "kiassist.yaml")
	require.NoError(t, os.WriteFile(file, []byte("model: 3-pro\n"), 0o600))
	t.Setenv("KIASSIST_MODEL", "2.5-pro")

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "2.5-pro", cfg.Model)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	home := isolate(t)

	_, err := Load(filepath.Join(home, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	isolate(t)
	t.Setenv("KIASSIST_KICAD_TIMEOUT", "0s")

	_, err := Load("")
	assert.Error(t, err)
}
