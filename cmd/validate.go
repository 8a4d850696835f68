package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Check that a path is a KiCad project",
	Long: `Check that a path is a .kicad_pro file, or a directory containing one, and
show the board and schematic files that belong to it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		res := a.ValidateProject(args[0])
		if validateJSON {
			return printJSON(os.Stdout, res)
		}
		if !res.Valid {
			return errors.New(res.Error)
		}

		info := res.Info
		fmt.Printf("Project:   %s\n", info.ProjectName)
		fmt.Printf("  File:      %s\n", info.ProjectPath)
		fmt.Printf("  Directory: %s\n", info.ProjectDir)
		fmt.Printf("  PCB:       %s\n", orNone(info.PCBPath))
		fmt.Printf("  Schematic: %s\n", orNone(info.SchematicPath))
		if info.GitBranch != "" {
			state := "clean"
			if info.GitDirty {
				state = "dirty"
			}
			fmt.Printf("  Git:       %s (%s)\n", info.GitBranch, state)
		}
		if newDetector().IsProjectOpen(info.ProjectPath) {
			fmt.Println("  Open in a running KiCad instance")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output JSON")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
