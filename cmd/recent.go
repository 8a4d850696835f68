package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kiassist/kiassist/internal/app"
)

var recentJSON bool

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Manage the recent projects list",
	Long: `Show and edit the list of recently opened KiCad projects.

At most 10 projects are kept, most recent first. Projects whose files have
disappeared are dropped when the list is read.`,
	RunE: listRecent,
}

var recentAddCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Validate a project and add it to the list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		res := a.AddRecentProject(args[0])
		if err := resultErr(res.Result); err != nil {
			return err
		}
		fmt.Printf("Added %s (%s)\n", res.Project.Name, res.Project.Path)
		return nil
	},
}

var recentRemoveCmd = &cobra.Command{
	Use:     "remove <path>",
	Aliases: []string{"rm"},
	Short:   "Remove a project from the list",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		return resultErr(a.RemoveRecentProject(args[0]))
	},
}

var recentClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		return resultErr(a.ClearRecentProjects())
	},
}

func init() {
	rootCmd.AddCommand(recentCmd)
	recentCmd.AddCommand(recentAddCmd)
	recentCmd.AddCommand(recentRemoveCmd)
	recentCmd.AddCommand(recentClearCmd)
	recentCmd.Flags().BoolVar(&recentJSON, "json", false, "output JSON")
}

func listRecent(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	return printRecent(a)
}

func printRecent(a *app.App) error {
	entries := a.RecentProjects()
	if recentJSON {
		return printJSON(os.Stdout, entries)
	}
	if len(entries) == 0 {
		fmt.Println("No recent projects")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLAST OPENED\tPATH")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.LastOpened.Local().Format(time.DateTime), e.Path)
	}
	return w.Flush()
}
