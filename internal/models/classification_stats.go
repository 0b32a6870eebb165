package models

import (
	"radiologi/xa-dose/internal/logging"
)

// ClassificationStats tracks the outcome counts of a classification run.
type ClassificationStats struct {
	Total    int `json:"total" yaml:"total"`       // Total number of records processed
	Mapped   int `json:"mapped" yaml:"mapped"`     // Records assigned to a category
	Unmapped int `json:"unmapped" yaml:"unmapped"` // Records no rule matched
	Failed   int `json:"failed" yaml:"failed"`     // Records that could not be classified
}

// LogSummary logs a summary of classification statistics
func (cs ClassificationStats) LogSummary(logger logging.Logger, table string) {
	if logger == nil {
		return
	}

	logger.Info("Classification summary",
		logging.Field{Key: logging.FieldTable, Value: table},
		logging.Field{Key: "total_records", Value: cs.Total},
		logging.Field{Key: "mapped", Value: cs.Mapped},
		logging.Field{Key: "unmapped", Value: cs.Unmapped},
		logging.Field{Key: "failed", Value: cs.Failed},
		logging.Field{Key: "coverage", Value: cs.Coverage()},
	)
}

// Coverage returns the share of classifiable records that were mapped, as a percentage.
func (cs ClassificationStats) Coverage() float64 {
	classified := cs.Mapped + cs.Unmapped
	if classified == 0 {
		return 0.0
	}
	return float64(cs.Mapped) / float64(classified) * 100.0
}

// Add folds another set of counts into cs.
func (cs *ClassificationStats) Add(other ClassificationStats) {
	cs.Total += other.Total
	cs.Mapped += other.Mapped
	cs.Unmapped += other.Unmapped
	cs.Failed += other.Failed
}

// RecordMapped counts one mapped record
func (cs *ClassificationStats) RecordMapped() {
	cs.Total++
	cs.Mapped++
}

// RecordUnmapped counts one unmapped record
func (cs *ClassificationStats) RecordUnmapped() {
	cs.Total++
	cs.Unmapped++
}

// RecordFailed counts one failed record
func (cs *ClassificationStats) RecordFailed() {
	cs.Total++
	cs.Failed++
}
