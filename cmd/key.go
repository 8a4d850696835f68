package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kiassist/kiassist/internal/credential"
	"github.com/kiassist/kiassist/internal/logging"
)

var keyReveal bool

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the Gemini API key",
	Long: `Store, inspect or remove the Gemini API key.

The key is looked up in this order: the GEMINI_API_KEY environment variable,
the OS keyring (service "KiAssist"), then ~/.kiassist/config.json.`,
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a key is configured and where it came from",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := newCredentials()
		if !r.Has() {
			fmt.Println("No API key configured")
			return nil
		}
		fmt.Printf("API key configured (source: %s)\n", r.Origin())
		return nil
	},
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the API key (masked unless --reveal)",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, found := newCredentials().Get()
		if !found {
			return fmt.Errorf("no API key configured")
		}
		if keyReveal {
			fmt.Println(key)
			return nil
		}
		fmt.Println(logging.Mask(key))
		return nil
	},
}

var keySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store the API key",
	Long: `Store the API key in the OS keyring, or in ~/.kiassist/config.json when no
keyring is available. With no argument the key is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			fmt.Fprint(os.Stderr, "Gemini API key: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read key: %w", err)
			}
			key = strings.TrimSpace(line)
		}

		warning, err := newCredentials().Set(key)
		if err != nil {
			return err
		}
		if warning != "" {
			fmt.Fprintln(os.Stderr, "Warning:", warning)
		}
		fmt.Println("API key saved")
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := newCredentials()
		r.Clear()
		if r.Origin() == credential.OriginEnvironment {
			fmt.Printf("Stored key removed; %s is still set in the environment\n", credential.EnvVar)
			return nil
		}
		fmt.Println("API key removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keyStatusCmd)
	keyCmd.AddCommand(keyShowCmd)
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyClearCmd)
	keyShowCmd.Flags().BoolVar(&keyReveal, "reveal", false, "print the full key")
}
