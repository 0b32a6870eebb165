// Package tables implements the tables command, which lists the available rule tables.
package tables

import (
	"fmt"
	"io"
	"text/tabwriter"

	"radiologi/xa-dose/cmd/root"
	"radiologi/xa-dose/internal/container"

	"github.com/spf13/cobra"
)

// Cmd represents the tables command
var Cmd = &cobra.Command{
	Use:   "tables",
	Short: "List available rule tables",
	Long: `Lists the built-in rule tables and those found in the rules directory, with their
version, number of rules, number of categories and source.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(root.AppContainer, cmd.OutOrStdout())
	},
}

// Run prints the available tables to out.
func Run(c *container.Container, out io.Writer) error {
	if c == nil {
		return fmt.Errorf("application container is not initialized")
	}
	tables, err := c.GetStore().Tables()
	if err != nil {
		return fmt.Errorf("error listing rule tables: %w", err)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tVERSION\tRULES\tCATEGORIES\tSOURCE")
	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			table.Name(), table.Version(), table.Len(), len(table.Labels()), table.Source())
	}
	return w.Flush()
}
