package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kiassist/kiassist/internal/schematic"
)

var schematicCmd = &cobra.Command{
	Use:   "schematic",
	Short: "Edit KiCad schematics",
}

var schematicNoteCmd = &cobra.Command{
	Use:   "note <project> [text]",
	Short: "Add a visible text note to the root schematic",
	Long: fmt.Sprintf(`Add a bold text note to the top-right of the project's root schematic,
creating the schematic if it does not exist. The default text is %q.

Reload the schematic in KiCad to see the note.`, schematic.DefaultNoteText),
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		res := a.InjectTestNote(args[0], strings.Join(args[1:], " "))
		if err := resultErr(res.Result); err != nil {
			return err
		}
		fmt.Println(res.Message)
		fmt.Printf("  Schematic: %s\n", res.SchematicPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schematicCmd)
	schematicCmd.AddCommand(schematicNoteCmd)
}
