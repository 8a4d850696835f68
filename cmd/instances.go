package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kiassist/kiassist/internal/kicad"
)

var (
	instancesJSON  bool
	instancesWatch bool
)

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List running KiCad instances",
	Long: `Probe every KiCad IPC socket and list the instances that answer, with the
project each one has open.

KiCad must have its API server enabled (Preferences > Plugins > Enable KiCad API).

Examples:
  kiassist instances
  kiassist instances --json
  kiassist instances --watch`,
	RunE: runInstances,
}

func init() {
	rootCmd.AddCommand(instancesCmd)
	instancesCmd.Flags().BoolVar(&instancesJSON, "json", false, "output JSON")
	instancesCmd.Flags().BoolVar(&instancesWatch, "watch", false, "re-list whenever the socket directory changes")
}

func runInstances(cmd *cobra.Command, args []string) error {
	d := newDetector()
	if err := printInstances(d.Detect()); err != nil {
		return err
	}
	if !instancesWatch {
		return nil
	}

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", d.SocketDir())
	err := d.Watch(cmd.Context(), func(instances []kicad.Instance) {
		fmt.Println()
		if err := printInstances(instances); err != nil {
			logger.Warn("failed to print instances")
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printInstances(instances []kicad.Instance) error {
	if instancesJSON {
		return printJSON(os.Stdout, instances)
	}
	if len(instances) == 0 {
		fmt.Println("No running KiCad instances found")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tPROJECT\tSOCKET")
	for _, inst := range instances {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", inst.DisplayName, inst.Version, inst.ProjectPath, inst.SocketPath)
	}
	return w.Flush()
}
