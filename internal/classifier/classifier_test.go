package classifier

import (
	"sync"
	"testing"

	"radiologi/xa-dose/internal/logging"
	"radiologi/xa-dose/internal/models"
	"radiologi/xa-dose/internal/ruleerror"
	"radiologi/xa-dose/internal/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() *rules.Table {
	return rules.NewTable("lab", "2024", []rules.Rule{
		rules.NewRule("RGA Caput", "INT01 - Hode og hals Hjerte/Blodkar"),
		rules.NewRule("RGA Abdomen & RGA Bekken", "INT07 - Øvrig og sammenslåtte koder Hjerte/Blodkar"),
		rules.NewRule("RGA Abdomen & ~RGA Bekken", "INT04 - Abdomen Hjerte/Blodkar"),
		rules.NewRule("RGA Thorax", "INT02 - Thorax Hjerte/Blodkar"),
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		description string
		wantLabel   string
		wantIndex   int
	}{
		{"single term", "RGA Caput, UL Hals", "INT01 - Hode og hals Hjerte/Blodkar", 0},
		{"combined code before exclusion", "RGA Abdomen, RGA Bekken", "INT07 - Øvrig og sammenslåtte koder Hjerte/Blodkar", 1},
		{"exclusion rule", "RGA Abdomen", "INT04 - Abdomen Hjerte/Blodkar", 2},
		{"no rule matches", "RG Colon", rules.Unmapped, -1},
		{"empty description", "", rules.Unmapped, -1},
		{"case sensitive", "rga caput", rules.Unmapped, -1},
	}

	for _, withCache := range []bool{false, true} {
		var opts []Option
		if withCache {
			opts = append(opts, WithCache())
		}
		c := New(testTable(), logging.NewMockLogger(), opts...)
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				// Twice, so the cached path is exercised too.
				for i := 0; i < 2; i++ {
					got := c.Classify(tt.description)
					assert.Equal(t, tt.wantLabel, got.Label)
					assert.Equal(t, tt.wantIndex, got.Index)
					assert.Equal(t, tt.wantIndex >= 0, got.Mapped)
				}
			})
		}
	}
}

func TestClassify_CacheMatchesTable(t *testing.T) {
	table := testTable()
	c := New(table, logging.NewMockLogger(), WithCache())

	descriptions := []string{"RGA Caput", "RGA Abdomen", "RGA Abdomen, RGA Bekken", "RG Colon", "RGA Caput"}
	for _, d := range descriptions {
		assert.Equal(t, table.Resolve(d), c.Classify(d))
	}
	assert.Equal(t, 4, c.CachedDescriptions())

	uncached := New(table, logging.NewMockLogger())
	uncached.Classify("RGA Caput")
	assert.Equal(t, 0, uncached.CachedDescriptions())
}

func TestClassify_LogsWithTable(t *testing.T) {
	logger := logging.NewMockLogger()
	c := New(testTable(), logger)

	c.Classify("RG Colon")
	entries := logger.GetEntriesByLevel("DEBUG")
	require.Len(t, entries, 1)
	assert.Equal(t, "Description unmapped", entries[0].Message)
	assert.Contains(t, entries[0].Fields, logging.Field{Key: logging.FieldTable, Value: "lab@2024"})
}

func TestClassifyRecord(t *testing.T) {
	c := New(testTable(), logging.NewMockLogger())

	result, err := c.ClassifyRecord(models.NewDoseRecord("RGA Thorax", "Lab 1"))
	require.NoError(t, err)
	assert.Equal(t, "INT02 - Thorax Hjerte/Blodkar", result.Label)

	result, err = c.ClassifyRecord(models.NewDoseRecord("", "Lab 1"))
	require.NoError(t, err)
	assert.True(t, result.IsUnmapped())

	_, err = c.ClassifyRecord(models.DoseRecord{Room: "Lab 1"})
	assert.ErrorIs(t, err, ruleerror.ErrMissingDescription)
}

func TestExplain(t *testing.T) {
	c := New(testTable(), logging.NewMockLogger(), WithCache())

	trace := c.Explain("RGA Abdomen")
	assert.Equal(t, c.Classify("RGA Abdomen"), trace.Result)
	require.Len(t, trace.Evaluations, 3)
	assert.Equal(t, []string{"RGA Bekken"}, trace.Evaluations[1].MissingTerms)
	assert.True(t, trace.Evaluations[2].Matched)
}

func TestClassify_Concurrent(t *testing.T) {
	table := testTable()
	c := New(table, logging.NewMockLogger(), WithCache())
	descriptions := []string{"RGA Caput", "RGA Abdomen", "RGA Abdomen, RGA Bekken", "RG Colon"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				d := descriptions[(i+j)%len(descriptions)]
				assert.Equal(t, table.Resolve(d), c.Classify(d))
			}
		}(i)
	}
	wg.Wait()
}
