package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultConfigDir is where the recent-projects ledger and config.yaml live.
func DefaultConfigDir() string {
	if runtime.GOOS == "windows" {
		base := os.Getenv("APPDATA")
		if base == "" {
			base, _ = os.UserHomeDir()
		}
		return filepath.Join(base, "KiAssist")
	}
	if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
		return filepath.Join(x, "kiassist")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "kiassist")
}

// DefaultRuntimeDir holds the facade server's socket and pid file.
func DefaultRuntimeDir() string {
	if x := os.Getenv("XDG_RUNTIME_DIR"); x != "" {
		return filepath.Join(x, "kiassist")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".kiassist", "run")
}

// DefaultCredentialPath is the file fallback for the API key. It sits in the
// home directory rather than the config dir so existing installs keep working.
func DefaultCredentialPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".kiassist", "config.json")
}

// KiCadSocketDir returns the directory KiCad creates its IPC sockets in. The
// flatpak sandbox root wins when it exists.
func KiCadSocketDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.TempDir(), "kicad")
	}
	if home := os.Getenv("HOME"); home != "" {
		flatpak := filepath.Join(home, ".var", "app", "org.kicad.KiCad", "cache", "tmp", "kicad")
		if fi, err := os.Stat(flatpak); err == nil && fi.IsDir() {
			return flatpak
		}
	}
	return "/tmp/kicad"
}

func DefaultSocketPath() string         { return filepath.Join(DefaultRuntimeDir(), "daemon.sock") }
func DefaultPIDPath() string            { return filepath.Join(DefaultRuntimeDir(), "daemon.pid") }
func DefaultRecentProjectsPath() string { return filepath.Join(DefaultConfigDir(), "recent_projects.json") }
func DefaultConfigFile() string         { return filepath.Join(DefaultConfigDir(), "config.yaml") }
