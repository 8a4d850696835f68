//go:build unix

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kiassist/kiassist/internal/apiclient"
)

var callCmd = &cobra.Command{
	Use:   "call <method> [json]",
	Short: "Invoke a facade method on the running daemon",
	Long: `POST a JSON body to /api/<method> on the running daemon and print the reply.

Examples:
  kiassist call detect_instances
  kiassist call send_message '{"message":"hello","model":"2.5-pro"}'
  kiassist call validate_project '{"path":"/home/me/kicad/amp"}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := json.RawMessage("{}")
		if len(args) == 2 {
			if !json.Valid([]byte(args[1])) {
				return fmt.Errorf("argument is not valid JSON")
			}
			body = json.RawMessage(args[1])
		}

		client := apiclient.New(cfg.DaemonSocket)
		defer client.CloseIdleConnections()

		var out json.RawMessage
		if err := client.Call(cmd.Context(), args[0], body, &out); err != nil {
			if apiclient.IsNotFound(err) {
				return fmt.Errorf("unknown method %q", args[0])
			}
			return err
		}
		return printJSON(os.Stdout, out)
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
}
