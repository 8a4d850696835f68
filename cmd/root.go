package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kiassist/kiassist/internal/app"
	"github.com/kiassist/kiassist/internal/config"
	"github.com/kiassist/kiassist/internal/credential"
	"github.com/kiassist/kiassist/internal/kicad"
	"github.com/kiassist/kiassist/internal/llm"
	"github.com/kiassist/kiassist/internal/logging"
	"github.com/kiassist/kiassist/internal/recent"
	"github.com/kiassist/kiassist/internal/wizard"
)

var (
	configFile string
	debug      bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "kiassist",
	Short: "KiAssist - AI assistant for KiCad",
	Long: `KiAssist connects running KiCad instances with Google Gemini.

It finds open KiCad projects over KiCad's IPC API, keeps a list of recent
projects, stores your Gemini API key, and drives a requirements wizard that
writes requirements.md and todo.md into a project.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		logger, err = logging.New(debug || cfg.Debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/kiassist/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func Execute() error {
	// Silence usage and errors to avoid cluttering output with Cobra defaults
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func newCredentials() *credential.Resolver {
	return credential.NewResolver(credential.Options{
		FilePath: cfg.CredentialPath,
		Logger:   logger,
	})
}

func newDetector() *kicad.Detector {
	return kicad.NewDetector(kicad.Options{
		SocketDir: cfg.SocketDir,
		Timeout:   cfg.ProbeTimeout,
		Logger:    logger,
	})
}

// newApp wires the facade from the loaded configuration.
func newApp() (*app.App, error) {
	agent, err := wizard.LoadAgent(cfg.AgentPrompt)
	if err != nil {
		return nil, err
	}
	return app.New(app.Options{
		Credentials: newCredentials(),
		Detector:    newDetector(),
		Recent:      recent.New(cfg.RecentPath, logger),
		NewSender:   llm.NewSenderFunc(logger),
		Agent:       &agent,
		Model:       cfg.Model,
		Logger:      logger,
	}), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// resultErr turns a failed facade result into a command error.
func resultErr(r app.Result) error {
	if r.Success {
		return nil
	}
	return errors.New(r.Error)
}
