package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		output  string
		want    string
		wantErr bool
	}{
		{name: "explicit csv", format: "csv", output: "out.parquet", want: FormatCSV},
		{name: "explicit parquet upper case", format: "PARQUET", output: "out.csv", want: FormatParquet},
		{name: "from extension", output: "out.parquet", want: FormatParquet},
		{name: "default csv", output: "out.txt", want: FormatCSV},
		{name: "no output", want: FormatCSV},
		{name: "unsupported", format: "xlsx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveOutputFormat(tt.format, tt.output)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unsupported output format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "data/records_mapped.csv", DefaultOutputPath("data/records.csv", FormatCSV))
	assert.Equal(t, "export_mapped.parquet", DefaultOutputPath("export.json", FormatParquet))
	assert.Equal(t, "noext_mapped.csv", DefaultOutputPath("noext", FormatCSV))
}

func TestFormatCoverage(t *testing.T) {
	assert.Equal(t, "75.0%", FormatCoverage(75))
	assert.Equal(t, "0.0%", FormatCoverage(0))
	assert.Equal(t, "100.0%", FormatCoverage(100))
}
