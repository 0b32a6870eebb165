// Package common provides helpers shared by the CLI commands.
package common

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Output formats supported by the classify command.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// ResolveOutputFormat picks the output format from the explicit flag value, falling back to
// the output file extension and finally to CSV.
func ResolveOutputFormat(format, output string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		if strings.EqualFold(filepath.Ext(output), ".parquet") {
			return FormatParquet, nil
		}
		return FormatCSV, nil
	}
	switch format {
	case FormatCSV, FormatParquet:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected csv or parquet)", format)
	}
}

// DefaultOutputPath derives the output file name from the input file: records.csv becomes
// records_mapped.csv (or records_mapped.parquet).
func DefaultOutputPath(input, format string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	return base + "_mapped." + format
}

// FormatCoverage renders a coverage percentage with one decimal.
func FormatCoverage(percent float64) string {
	return fmt.Sprintf("%.1f%%", percent)
}
