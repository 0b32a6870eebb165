// Package classify implements the classify command, which maps every record of a dose export
// to a procedure category.
package classify

import (
	"context"
	"fmt"
	"io"

	"radiologi/xa-dose/cmd/common"
	"radiologi/xa-dose/cmd/root"
	"radiologi/xa-dose/internal/container"
	"radiologi/xa-dose/internal/export"
	"radiologi/xa-dose/internal/logging"
	"radiologi/xa-dose/internal/report"
	"radiologi/xa-dose/internal/validation"

	"github.com/spf13/cobra"
)

// Options holds the classify command flags.
type Options struct {
	Input        string
	Output       string
	Format       string
	Report       string
	ReportFormat string
	Table        string
	Version      string
}

var opts Options

// Cmd represents the classify command
var Cmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify the procedure descriptions of a dose export",
	Long: `Reads a dose export (CSV or JSON), assigns each record's description to a procedure
category using the selected rule table and writes the records with a "Mapped Procedures"
column as CSV or Parquet. Optionally writes a coverage report.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts.Table = root.SharedFlags.Table
		opts.Version = root.SharedFlags.Version
		return Run(cmd.Context(), root.AppContainer, opts, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Input file (CSV or JSON)")
	Cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output file (default <input>_mapped.<format>)")
	Cmd.Flags().StringVar(&opts.Format, "format", "", "Output format: csv or parquet (default from output extension)")
	Cmd.Flags().StringVar(&opts.Report, "report", "", "Write a coverage report to this file")
	Cmd.Flags().StringVar(&opts.ReportFormat, "report-format", "", "Coverage report format: json or yaml (default report.format)")
	_ = Cmd.MarkFlagRequired("input")
}

// Run classifies opts.Input and writes the results.
func Run(ctx context.Context, c *container.Container, opts Options, out io.Writer) error {
	if c == nil {
		return fmt.Errorf("application container is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := c.GetLogger()

	if err := validation.IsValidInputFile(opts.Input); err != nil {
		return err
	}
	format, err := common.ResolveOutputFormat(opts.Format, opts.Output)
	if err != nil {
		return err
	}
	output := opts.Output
	if output == "" {
		output = common.DefaultOutputPath(opts.Input, format)
	}

	cl, err := c.Classifier(opts.Table, opts.Version)
	if err != nil {
		return err
	}
	table := cl.Table()

	records, err := c.GetRecordIO().ReadRecords(opts.Input)
	if err != nil {
		return fmt.Errorf("error reading records: %w", err)
	}

	result, err := c.Processor(cl).ClassifyAll(ctx, records)
	if err != nil {
		return fmt.Errorf("error classifying records: %w", err)
	}

	switch format {
	case common.FormatParquet:
		err = export.WriteParquet(output, result, table.ID())
	default:
		err = c.GetRecordIO().WriteRecordsToCSV(result.Records, output)
	}
	if err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	logger.Info("Classified records written",
		logging.Field{Key: logging.FieldInputFile, Value: opts.Input},
		logging.Field{Key: logging.FieldOutputFile, Value: output},
		logging.Field{Key: logging.FieldCount, Value: len(result.Records)})
	result.Stats.LogSummary(logger, table.ID())

	if opts.Report != "" {
		reportFormat := opts.ReportFormat
		if reportFormat == "" {
			reportFormat = c.GetConfig().Report.Format
		}
		coverage := report.BuildCoverageReport(table, result, opts.Input)
		if err := c.GetReportGenerator().WriteReport(coverage, reportFormat, opts.Report); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(out, "Classified %d records with %s: %d mapped, %d unmapped, %d failed (coverage %s)\n",
		result.Stats.Total, table.ID(), result.Stats.Mapped, result.Stats.Unmapped, result.Stats.Failed,
		common.FormatCoverage(result.Stats.Coverage()))
	return err
}
