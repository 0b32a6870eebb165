// Package batch classifies collections of dose records, in parallel for large inputs.
package batch

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"radiologi/xa-dose/internal/classifier"
	"radiologi/xa-dose/internal/logging"
	"radiologi/xa-dose/internal/models"
	"radiologi/xa-dose/internal/ruleerror"
	"radiologi/xa-dose/internal/rules"
)

// DefaultSequentialThreshold is the batch size below which records are classified without
// starting workers.
const DefaultSequentialThreshold = 100

// RecordClassifier classifies a single record.
type RecordClassifier interface {
	ClassifyRecord(record models.DoseRecord) (rules.Result, error)
}

// Outcome is the classification of the record at Index.
type Outcome struct {
	Index  int
	Result rules.Result
	Err    error
}

// Result is the output of a batch run. Records and Outcomes are in input order.
type Result struct {
	Records  []models.DoseRecord
	Outcomes []Outcome
	Failures []*ruleerror.RecordError
	Stats    models.ClassificationStats
}

// Options tunes the processor. Zero values select the defaults.
type Options struct {
	// Workers is the size of the worker pool, runtime.NumCPU() when zero.
	Workers int
	// SequentialThreshold is the smallest batch handed to the pool,
	// DefaultSequentialThreshold when zero.
	SequentialThreshold int
}

// Processor handles classification of record batches
type Processor struct {
	classifier          RecordClassifier
	logger              logging.Logger
	workerCount         int
	sequentialThreshold int
}

// NewProcessor creates a new batch processor
func NewProcessor(c RecordClassifier, logger logging.Logger, opts Options) *Processor {
	if logger == nil {
		logger = logging.GetLogger()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	threshold := opts.SequentialThreshold
	if threshold <= 0 {
		threshold = DefaultSequentialThreshold
	}
	return &Processor{
		classifier:          c,
		logger:              logger,
		workerCount:         workers,
		sequentialThreshold: threshold,
	}
}

// ClassifyAll classifies every record against table with default options.
func ClassifyAll(ctx context.Context, records []models.DoseRecord, table *rules.Table) (*Result, error) {
	return NewProcessor(classifier.New(table, nil), nil, Options{}).ClassifyAll(ctx, records)
}

// ClassifyAll classifies records and writes each label into a copy of the record.
// A record that cannot be classified is reported in Failures and left without a label;
// the rest of the batch is unaffected. The input slice is not modified.
func (p *Processor) ClassifyAll(ctx context.Context, records []models.DoseRecord) (*Result, error) {
	start := time.Now()

	var outcomes []Outcome
	var err error
	if len(records) < p.sequentialThreshold {
		outcomes, err = p.classifySequential(ctx, records)
	} else {
		outcomes, err = p.classifyConcurrent(ctx, records)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{
		Records:  make([]models.DoseRecord, len(records)),
		Outcomes: outcomes,
	}
	copy(result.Records, records)
	for _, outcome := range outcomes {
		switch {
		case outcome.Err != nil:
			result.Stats.RecordFailed()
			var recordErr *ruleerror.RecordError
			if !errors.As(outcome.Err, &recordErr) {
				recordErr = &ruleerror.RecordError{Index: outcome.Index, Err: outcome.Err}
			}
			result.Failures = append(result.Failures, recordErr)
			p.logger.WithError(outcome.Err).Warn("Record could not be classified",
				logging.Field{Key: logging.FieldRecord, Value: outcome.Index})
			continue
		case outcome.Result.Mapped:
			result.Stats.RecordMapped()
		default:
			result.Stats.RecordUnmapped()
		}
		result.Records[outcome.Index].MappedProcedure = outcome.Result.Label
	}

	p.logger.Debug("Batch classification completed",
		logging.Field{Key: logging.FieldCount, Value: len(records)},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).String()})
	return result, nil
}

// classifySequential handles small batches without a worker pool
func (p *Processor) classifySequential(ctx context.Context, records []models.DoseRecord) ([]Outcome, error) {
	outcomes := make([]Outcome, len(records))
	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcomes[i] = p.classify(i, records[i])
	}
	return outcomes, nil
}

// classifyConcurrent handles large batches with a worker pool
func (p *Processor) classifyConcurrent(ctx context.Context, records []models.DoseRecord) ([]Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int, p.workerCount)
	results := make(chan Outcome, p.workerCount)

	var wg sync.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go p.worker(ctx, &wg, records, jobs, results)
	}

	// Send work to workers
	go func() {
		defer close(jobs)
		for i := range records {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Wait for workers to complete
	go func() {
		wg.Wait()
		close(results)
	}()

	// Outcomes are placed by index, so completion order does not matter.
	outcomes := make([]Outcome, len(records))
	received := 0
	for outcome := range results {
		outcomes[outcome.Index] = outcome
		received++
	}

	if err := ctx.Err(); err != nil && received < len(records) {
		return nil, err
	}

	p.logger.Debug("Concurrent classification completed",
		logging.Field{Key: logging.FieldCount, Value: len(records)},
		logging.Field{Key: logging.FieldWorkers, Value: p.workerCount})
	return outcomes, nil
}

// worker classifies the records whose indexes arrive on jobs
func (p *Processor) worker(ctx context.Context, wg *sync.WaitGroup, records []models.DoseRecord, jobs <-chan int, results chan<- Outcome) {
	defer wg.Done()

	for {
		select {
		case i, ok := <-jobs:
			if !ok {
				return
			}
			select {
			case results <- p.classify(i, records[i]):
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (p *Processor) classify(index int, record models.DoseRecord) Outcome {
	result, err := p.classifier.ClassifyRecord(record)
	if err != nil {
		return Outcome{Index: index, Err: &ruleerror.RecordError{Index: index, Err: err}}
	}
	return Outcome{Index: index, Result: result}
}

// Status returns models.StatusMapped, StatusUnmapped or StatusFailed.
func (o Outcome) Status() string {
	switch {
	case o.Err != nil:
		return models.StatusFailed
	case o.Result.Mapped:
		return models.StatusMapped
	default:
		return models.StatusUnmapped
	}
}
