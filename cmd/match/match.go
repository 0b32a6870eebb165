// Package match implements the match command, which classifies a single description.
package match

import (
	"fmt"
	"io"
	"strings"

	"radiologi/xa-dose/cmd/root"
	"radiologi/xa-dose/internal/container"
	"radiologi/xa-dose/internal/rules"

	"github.com/spf13/cobra"
)

var explain bool

// Cmd represents the match command
var Cmd = &cobra.Command{
	Use:   "match <description>",
	Short: "Classify one procedure description",
	Long: `Classifies a single procedure description against the selected rule table and
prints the winning rule. With --explain every rule evaluated up to the winner is listed
together with the inclusion terms it was missing and the exclusion terms it hit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(root.AppContainer, root.SharedFlags.Table, root.SharedFlags.Version, args[0], explain, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().BoolVar(&explain, "explain", false, "Print the evaluation of every rule up to the winner")
}

// Run classifies description and prints the outcome to out.
func Run(c *container.Container, table, version, description string, explain bool, out io.Writer) error {
	if c == nil {
		return fmt.Errorf("application container is not initialized")
	}
	cl, err := c.Classifier(table, version)
	if err != nil {
		return err
	}

	if !explain {
		return printResult(out, cl.Table(), cl.Classify(description))
	}

	trace := cl.Explain(description)
	if err := printResult(out, cl.Table(), trace.Result); err != nil {
		return err
	}
	for _, eval := range trace.Evaluations {
		if _, err := fmt.Fprintln(out, formatEvaluation(eval)); err != nil {
			return err
		}
	}
	return nil
}

func printResult(out io.Writer, table *rules.Table, result rules.Result) error {
	if !result.Mapped {
		_, err := fmt.Fprintf(out, "%s (no rule in %s matched)\n", rules.Unmapped, table.ID())
		return err
	}
	rule := table.Rule(result.Index)
	line := ""
	if rule.Line > 0 {
		line = fmt.Sprintf(", line %d", rule.Line)
	}
	_, err := fmt.Fprintf(out, "%s (rule %d%s in %s: %q)\n", result.Label, result.Index+1, line, table.ID(), result.Key)
	return err
}

func formatEvaluation(eval rules.Evaluation) string {
	if eval.Matched {
		return fmt.Sprintf("  %4d  match    %q -> %s", eval.Index+1, eval.Key, eval.Label)
	}
	var reasons []string
	if len(eval.MissingTerms) > 0 {
		reasons = append(reasons, "missing "+quoteAll(eval.MissingTerms))
	}
	if len(eval.ExcludedByTerm) > 0 {
		reasons = append(reasons, "excluded by "+quoteAll(eval.ExcludedByTerm))
	}
	return fmt.Sprintf("  %4d  no match %q: %s", eval.Index+1, eval.Key, strings.Join(reasons, "; "))
}

func quoteAll(terms []string) string {
	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = fmt.Sprintf("%q", term)
	}
	return strings.Join(quoted, ", ")
}
