package report

import (
	"encoding/json"
	"fmt"

	"radiologi/xa-dose/internal/fileutils"
	"radiologi/xa-dose/internal/logging"
	"radiologi/xa-dose/internal/models"

	"gopkg.in/yaml.v3"
)

// Supported report formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ReportGenerator renders coverage reports in various formats.
type ReportGenerator struct {
	logger logging.Logger
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &ReportGenerator{
		logger: logger.WithField(logging.FieldOperation, "report"),
	}
}

// GenerateReport renders report in the specified format (json or yaml).
func (g *ReportGenerator) GenerateReport(report *CoverageReport, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return g.generateJSONReport(report)
	case FormatYAML:
		return g.generateYAMLReport(report)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// WriteReport renders report and writes it to path.
func (g *ReportGenerator) WriteReport(report *CoverageReport, format, path string) error {
	data, err := g.GenerateReport(report, format)
	if err != nil {
		return err
	}
	if err := fileutils.WriteFile(path, data, models.PermissionReportFile); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	g.logger.Info("Coverage report written",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldRunID, Value: report.RunID})
	return nil
}

func (g *ReportGenerator) generateJSONReport(report *CoverageReport) ([]byte, error) {
	jsonReport, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return jsonReport, nil
}

func (g *ReportGenerator) generateYAMLReport(report *CoverageReport) ([]byte, error) {
	yamlReport, err := yaml.Marshal(report)
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal YAML report")
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return yamlReport, nil
}
