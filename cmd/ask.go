package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kiassist/kiassist/internal/limits"
	"github.com/kiassist/kiassist/internal/llm"
)

var askModel string

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send a single message to Gemini",
	Long: fmt.Sprintf(`Send one message to Gemini and print the reply. With no argument the
message is read from stdin.

Model aliases: %s (default from config, %s if unset).

Examples:
  kiassist ask "What decoupling caps does an STM32F4 need?"
  cat notes.txt | kiassist ask --model 2.5-pro`, strings.Join(llm.Aliases(), ", "), llm.DefaultAlias),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")
		if message == "" {
			data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), limits.JSON))
			if err != nil {
				return fmt.Errorf("failed to read message: %w", err)
			}
			message = strings.TrimSpace(string(data))
		}
		if message == "" {
			return fmt.Errorf("no message given")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		res := a.SendMessage(cmd.Context(), message, askModel)
		if err := resultErr(res.Result); err != nil {
			return err
		}
		fmt.Println(res.Response)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askModel, "model", "m", "", "model alias")
}
