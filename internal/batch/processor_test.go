package batch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"radiologi/xa-dose/internal/classifier"
	"radiologi/xa-dose/internal/logging"
	"radiologi/xa-dose/internal/models"
	"radiologi/xa-dose/internal/ruleerror"
	"radiologi/xa-dose/internal/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() *rules.Table {
	return rules.NewTable("lab", "2024", []rules.Rule{
		rules.NewRule("RGA Caput", "Head"),
		rules.NewRule("RGA Abdomen & RGA Bekken", "Combined"),
		rules.NewRule("RGA Abdomen & ~RGA Bekken", "Abdomen"),
	})
}

func buildRecords(n int) []models.DoseRecord {
	descriptions := []string{"RGA Caput", "RGA Abdomen, RGA Bekken", "RGA Abdomen", "RG Colon"}
	records := make([]models.DoseRecord, n)
	for i := range records {
		records[i] = models.NewDoseRecord(descriptions[i%len(descriptions)], fmt.Sprintf("Lab %d", i%3))
		records[i].AccessionNumber = fmt.Sprintf("ACC%05d", i)
	}
	return records
}

func TestClassifyAll_PreservesOrder(t *testing.T) {
	table := testTable()
	tests := []struct {
		name    string
		records int
		opts    Options
	}{
		{"empty", 0, Options{}},
		{"sequential", 10, Options{}},
		{"concurrent", 1000, Options{Workers: 4, SequentialThreshold: 50}},
		{"single worker", 300, Options{Workers: 1, SequentialThreshold: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := buildRecords(tt.records)
			p := NewProcessor(classifier.New(table, logging.NewMockLogger()), logging.NewMockLogger(), tt.opts)

			result, err := p.ClassifyAll(context.Background(), records)
			require.NoError(t, err)
			require.Len(t, result.Records, tt.records)
			require.Len(t, result.Outcomes, tt.records)

			for i, record := range result.Records {
				want := table.Resolve(*records[i].Description)
				assert.Equal(t, records[i].AccessionNumber, record.AccessionNumber)
				assert.Equal(t, want.Label, record.MappedProcedure)
				assert.Equal(t, i, result.Outcomes[i].Index)
				assert.Equal(t, want, result.Outcomes[i].Result)
			}
			assert.Equal(t, tt.records, result.Stats.Total)
			assert.Equal(t, tt.records/4, result.Stats.Unmapped)
			assert.Empty(t, result.Failures)
		})
	}
}

func TestClassifyAll_DoesNotModifyInput(t *testing.T) {
	records := buildRecords(5)
	result, err := ClassifyAll(context.Background(), records, testTable())
	require.NoError(t, err)

	for _, record := range records {
		assert.Empty(t, record.MappedProcedure)
	}
	assert.Equal(t, "Head", result.Records[0].MappedProcedure)
	assert.Equal(t, rules.Unmapped, result.Records[3].MappedProcedure)
}

func TestClassifyAll_IsolatesMissingDescriptions(t *testing.T) {
	for _, threshold := range []int{1000, 1} {
		t.Run(fmt.Sprintf("threshold_%d", threshold), func(t *testing.T) {
			records := buildRecords(8)
			records[2].Description = nil
			records[5].Description = nil

			logger := logging.NewMockLogger()
			p := NewProcessor(classifier.New(testTable(), logger), logger,
				Options{Workers: 3, SequentialThreshold: threshold})

			result, err := p.ClassifyAll(context.Background(), records)
			require.NoError(t, err)

			require.Len(t, result.Failures, 2)
			assert.Equal(t, 2, result.Failures[0].Index)
			assert.Equal(t, 5, result.Failures[1].Index)
			assert.ErrorIs(t, result.Failures[0], ruleerror.ErrMissingDescription)

			assert.Equal(t, models.StatusFailed, result.Outcomes[2].Status())
			assert.Empty(t, result.Records[2].MappedProcedure)
			assert.Equal(t, "Abdomen", result.Records[6].MappedProcedure)

			assert.Equal(t, models.ClassificationStats{Total: 8, Mapped: 4, Unmapped: 2, Failed: 2}, result.Stats)
			assert.Len(t, logger.GetEntriesByLevel("WARN"), 2)
		})
	}
}

func TestOutcomeStatus(t *testing.T) {
	assert.Equal(t, models.StatusMapped, Outcome{Result: rules.Result{Label: "Head", Mapped: true}}.Status())
	assert.Equal(t, models.StatusUnmapped, Outcome{Result: rules.UnmappedResult()}.Status())
	assert.Equal(t, models.StatusFailed, Outcome{Err: errors.New("boom")}.Status())
}

// blockingClassifier cancels the context after a number of calls.
type blockingClassifier struct {
	calls  atomic.Int64
	after  int64
	cancel context.CancelFunc
}

func (b *blockingClassifier) ClassifyRecord(record models.DoseRecord) (rules.Result, error) {
	if b.calls.Add(1) == b.after {
		b.cancel()
	}
	return rules.UnmappedResult(), nil
}

func TestClassifyAll_Cancelled(t *testing.T) {
	t.Run("before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := NewProcessor(classifier.New(testTable(), logging.NewMockLogger()), logging.NewMockLogger(), Options{})
		_, err := p.ClassifyAll(ctx, buildRecords(10))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("during concurrent run", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		c := &blockingClassifier{after: 10, cancel: cancel}
		p := NewProcessor(c, logging.NewMockLogger(), Options{Workers: 2, SequentialThreshold: 1})
		_, err := p.ClassifyAll(ctx, buildRecords(10000))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewProcessor_Defaults(t *testing.T) {
	p := NewProcessor(classifier.New(testTable(), nil), nil, Options{})
	assert.Positive(t, p.workerCount)
	assert.Equal(t, DefaultSequentialThreshold, p.sequentialThreshold)
}
