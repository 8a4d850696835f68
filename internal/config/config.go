// Package config loads KiAssist settings from config.yaml and KIASSIST_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kiassist/kiassist/internal/paths"
)

// Config holds the effective settings after defaults, file and environment
// have been merged.
type Config struct {
	Debug          bool
	Model          string
	SocketDir      string
	ProbeTimeout   time.Duration
	AgentPrompt    string
	DaemonSocket   string
	PIDFile        string
	RecentPath     string
	CredentialPath string

	v        *viper.Viper
	fileRead bool
}

// Load reads configuration. An explicit configFile must exist; the default
// config.yaml is optional. Environment variables override the file, e.g.
// KIASSIST_MODEL or KIASSIST_KICAD_SOCKET_DIR.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("KIASSIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("debug", false)
	v.SetDefault("model", "2.5-flash")
	v.SetDefault("kicad.socket_dir", "")
	v.SetDefault("kicad.timeout", 5*time.Second)
	v.SetDefault("agent_prompt", "")
	v.SetDefault("daemon.socket", paths.DefaultSocketPath())
	v.SetDefault("daemon.pid_file", paths.DefaultPIDPath())
	v.SetDefault("recent.path", paths.DefaultRecentProjectsPath())
	v.SetDefault("credential.path", paths.DefaultCredentialPath())

	explicit := configFile != ""
	if !explicit {
		configFile = paths.DefaultConfigFile()
	}
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")
	fileRead := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if explicit || !missing {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
		fileRead = false
	}

	timeout := v.GetDuration("kicad.timeout")
	if timeout <= 0 {
		return nil, fmt.Errorf("kicad.timeout must be positive, got %s", timeout)
	}

	return &Config{
		Debug:          v.GetBool("debug"),
		Model:          v.GetString("model"),
		SocketDir:      v.GetString("kicad.socket_dir"),
		ProbeTimeout:   timeout,
		AgentPrompt:    v.GetString("agent_prompt"),
		DaemonSocket:   v.GetString("daemon.socket"),
		PIDFile:        v.GetString("daemon.pid_file"),
		RecentPath:     v.GetString("recent.path"),
		CredentialPath: v.GetString("credential.path"),
		v:              v,
		fileRead:       fileRead,
	}, nil
}

// Settings returns the merged key/value tree, for display.
func (c *Config) Settings() map[string]any {
	if c.v == nil {
		return map[string]any{}
	}
	return c.v.AllSettings()
}

// ConfigFile reports the file that was read, or "" if none was.
func (c *Config) ConfigFile() string {
	if c.v == nil || !c.fileRead {
		return ""
	}
	return c.v.ConfigFileUsed()
}
