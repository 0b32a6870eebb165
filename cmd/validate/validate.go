// Package validate implements the validate command, which checks a rule table for malformed
// keys and unreachable rules.
package validate

import (
	"fmt"
	"io"

	"radiologi/xa-dose/cmd/root"
	"radiologi/xa-dose/internal/container"
	"radiologi/xa-dose/internal/ruleerror"
	"radiologi/xa-dose/internal/rules"

	"github.com/spf13/cobra"
)

var file string

// Cmd represents the validate command
var Cmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a rule table",
	Long: `Runs the load-time validation on a rule table and prints every issue.
Errors (empty terms, inconsistent separators, keys without inclusion terms, empty or
reserved labels) make the command fail. Warnings (duplicate keys, rules shadowed by an
earlier rule) are reported only.

Validates the table selected with --table/--version, or a YAML file with --file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(root.AppContainer, file, root.SharedFlags.Table, root.SharedFlags.Version, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&file, "file", "f", "", "Rule table YAML file to validate")
}

// Run validates the selected table and prints the issues to out. It returns a
// ValidationError when the table has error-severity issues.
func Run(c *container.Container, file, name, version string, out io.Writer) error {
	if c == nil {
		return fmt.Errorf("application container is not initialized")
	}

	table, err := selectTable(c, file, name, version)
	if err != nil {
		return err
	}

	issues := table.Validate()
	errorCount, warningCount := 0, 0
	for _, issue := range issues {
		if issue.Severity == ruleerror.SeverityError {
			errorCount++
		} else {
			warningCount++
		}
	}

	if _, err := fmt.Fprintf(out, "%s (%s): %d rules, %d errors, %d warnings\n",
		table.ID(), table.Source(), table.Len(), errorCount, warningCount); err != nil {
		return err
	}
	for _, issue := range issues {
		if _, err := fmt.Fprintf(out, "  %s\n", issue); err != nil {
			return err
		}
	}

	if rules.HasErrors(issues) {
		return &ruleerror.ValidationError{Table: table.ID(), Issues: issues}
	}
	return nil
}

func selectTable(c *container.Container, file, name, version string) (*rules.Table, error) {
	if file != "" {
		table, err := c.GetStore().LoadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading rule table file: %w", err)
		}
		return table, nil
	}
	if name == "" {
		name = c.GetConfig().Rules.Table
		if version == "" {
			version = c.GetConfig().Rules.Version
		}
	}
	table, err := c.GetStore().Find(name, version)
	if err != nil {
		return nil, fmt.Errorf("error loading rule table: %w", err)
	}
	return table, nil
}
