// Package export writes classified dose records in columnar form.
package export

import (
	"fmt"
	"os"

	"radiologi/xa-dose/internal/batch"
	"radiologi/xa-dose/internal/fileutils"
	"radiologi/xa-dose/internal/models"

	"github.com/parquet-go/parquet-go"
)

const flushInterval = 100_000

// RecordRow is the Parquet schema of one classified record.
type RecordRow struct {
	Index           int64    `parquet:"index"`
	Description     *string  `parquet:"description,optional"`
	Room            string   `parquet:"room"`
	DAP             *float64 `parquet:"dap_gycm2,optional"`
	StudyDate       string   `parquet:"study_date"`
	AccessionNumber string   `parquet:"accession_number"`
	Category        string   `parquet:"category"`
	Status          string   `parquet:"status"`
	RuleIndex       int32    `parquet:"rule_index"`
	RuleKey         *string  `parquet:"rule_key,optional"`
	Table           string   `parquet:"rule_table"`
}

// NewRecordRow flattens a record and its outcome into a row. RuleIndex is 1-based,
// 0 when no rule matched.
func NewRecordRow(record models.DoseRecord, outcome batch.Outcome, table string) RecordRow {
	row := RecordRow{
		Index:           int64(outcome.Index),
		Description:     record.Description,
		Room:            record.Room,
		StudyDate:       record.StudyDate,
		AccessionNumber: record.AccessionNumber,
		Category:        record.MappedProcedure,
		Status:          outcome.Status(),
		Table:           table,
	}
	if dap, ok := record.DAPFloat(); ok {
		row.DAP = &dap
	}
	if outcome.Err == nil && outcome.Result.Mapped {
		row.RuleIndex = int32(outcome.Result.Index + 1)
		key := outcome.Result.Key
		row.RuleKey = &key
	}
	return row
}

// RecordParquetWriter writes record rows to a Parquet file.
type RecordParquetWriter struct {
	file   *os.File
	writer *parquet.GenericWriter[RecordRow]
	count  int
}

// NewRecordParquetWriter creates a new Parquet writer for record rows.
func NewRecordParquetWriter(path string) (*RecordParquetWriter, error) {
	file, err := fileutils.CreateFile(path)
	if err != nil {
		return nil, fmt.Errorf("create record parquet: %w", err)
	}
	writer := parquet.NewGenericWriter[RecordRow](file,
		parquet.Compression(&parquet.Snappy),
	)
	return &RecordParquetWriter{file: file, writer: writer}, nil
}

// Write writes a single record row.
func (w *RecordParquetWriter) Write(row RecordRow) error {
	if _, err := w.writer.Write([]RecordRow{row}); err != nil {
		return fmt.Errorf("write record row: %w", err)
	}
	w.count++
	if w.count%flushInterval == 0 {
		if err := w.writer.Flush(); err != nil {
			return fmt.Errorf("flush records: %w", err)
		}
	}
	return nil
}

// Close flushes and closes the writer.
func (w *RecordParquetWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("close record writer: %w", err)
	}
	return w.file.Close()
}

// Count returns the number of rows written.
func (w *RecordParquetWriter) Count() int { return w.count }

// WriteParquet writes a classified batch to path.
func WriteParquet(path string, result *batch.Result, table string) error {
	w, err := NewRecordParquetWriter(path)
	if err != nil {
		return err
	}
	for i, record := range result.Records {
		if err := w.Write(NewRecordRow(record, result.Outcomes[i], table)); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}
