// Package container provides dependency injection for the xa-dose application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"

	"radiologi/xa-dose/internal/batch"
	"radiologi/xa-dose/internal/classifier"
	"radiologi/xa-dose/internal/common"
	"radiologi/xa-dose/internal/config"
	"radiologi/xa-dose/internal/logging"
	"radiologi/xa-dose/internal/report"
	"radiologi/xa-dose/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger  logging.Logger
	config  *config.Config
	store   store.TableSource
	records *common.RecordIO
	reports *report.ReportGenerator
}

// NewContainer creates and wires all application dependencies.
// This is the main entry point for dependency injection in the application.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Create logger first as it's needed by other components
	logger := logging.NewLogrusAdapterWithFile(cfg.Log.Level, cfg.Log.Format, logging.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	tableStore := store.NewTableStore(cfg.Rules.Directory, cfg.Rules.Strict, logger)
	return NewContainerWithStore(cfg, logger, tableStore)
}

// NewContainerWithStore wires the container around an existing logger and table source.
func NewContainerWithStore(cfg *config.Config, logger logging.Logger, source store.TableSource) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("table source cannot be nil")
	}

	delimiter, err := common.ParseDelimiter(cfg.CSV.Delimiter)
	if err != nil {
		return nil, err
	}

	logger.Debug("Container initialized successfully",
		logging.Field{Key: logging.FieldTable, Value: cfg.Rules.Table},
		logging.Field{Key: "strict", Value: cfg.Rules.Strict})

	return &Container{
		logger:  logger,
		config:  cfg,
		store:   source,
		records: common.NewRecordIO(delimiter, logger),
		reports: report.NewReportGenerator(logger),
	}, nil
}

// Classifier returns a classifier over the named table. Empty name and version fall
// back to the configured rules.table and rules.version.
func (c *Container) Classifier(name, version string) (*classifier.Classifier, error) {
	if name == "" {
		name = c.config.Rules.Table
		if version == "" {
			version = c.config.Rules.Version
		}
	}

	table, err := c.store.Lookup(name, version)
	if err != nil {
		return nil, fmt.Errorf("error loading rule table: %w", err)
	}

	var opts []classifier.Option
	if c.config.Classify.CacheEnabled {
		opts = append(opts, classifier.WithCache())
	}
	return classifier.New(table, c.logger, opts...), nil
}

// Processor returns a batch processor configured from classify.* settings.
func (c *Container) Processor(cl batch.RecordClassifier) *batch.Processor {
	return batch.NewProcessor(cl, c.logger, batch.Options{
		Workers:             c.config.Classify.Workers,
		SequentialThreshold: c.config.Classify.SequentialThreshold,
	})
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the rule table source.
func (c *Container) GetStore() store.TableSource {
	return c.store
}

// GetRecordIO returns the reader and writer of record files.
func (c *Container) GetRecordIO() *common.RecordIO {
	return c.records
}

// GetReportGenerator returns the coverage report generator.
func (c *Container) GetReportGenerator() *report.ReportGenerator {
	return c.reports
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
