// Package common provides reading and writing of dose record files.
package common

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"radiologi/xa-dose/internal/fileutils"
	"radiologi/xa-dose/internal/logging"
	"radiologi/xa-dose/internal/models"

	"github.com/gocarina/gocsv"
)

// DefaultDelimiter separates CSV fields unless configured otherwise.
const DefaultDelimiter = ','

var utf8BOM = []byte("\ufeff")

// RecordIO reads and writes dose record files with a fixed CSV delimiter.
type RecordIO struct {
	Delimiter rune
	logger    logging.Logger
}

// NewRecordIO creates a RecordIO. A zero delimiter selects DefaultDelimiter.
func NewRecordIO(delimiter rune, logger logging.Logger) *RecordIO {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &RecordIO{Delimiter: delimiter, logger: logger}
}

// ParseDelimiter returns the single rune of value, or DefaultDelimiter when value is empty.
func ParseDelimiter(value string) (rune, error) {
	runes := []rune(value)
	switch len(runes) {
	case 0:
		return DefaultDelimiter, nil
	case 1:
		return runes[0], nil
	}
	return 0, fmt.Errorf("CSV delimiter must be a single character, got: %q", value)
}

// ReadRecords reads dose records from a .csv or .json file, chosen by extension.
func (r *RecordIO) ReadRecords(filePath string) ([]models.DoseRecord, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		return r.ReadJSONFile(filePath)
	case ".csv", ".txt", "":
		return ReadCSVFile[models.DoseRecord](filePath, r.Delimiter, r.logger)
	default:
		return nil, fmt.Errorf("unsupported input format: %s", filepath.Ext(filePath))
	}
}

// ReadCSVFile reads CSV data into a slice of structs using gocsv.
// TCSVRow is the struct type that maps to the CSV columns.
func ReadCSVFile[TCSVRow any](filePath string, delimiter rune, logger logging.Logger) ([]TCSVRow, error) {
	logger.Info("Reading CSV file", logging.Field{Key: logging.FieldFile, Value: filePath})

	data, err := os.ReadFile(filePath)
	if err != nil {
		logger.WithError(err).Error("Failed to open CSV file")
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true

	var rows []TCSVRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		logger.WithError(err).Error("Failed to parse CSV file")
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}

	logger.Info("Successfully read CSV data", logging.Field{Key: logging.FieldCount, Value: len(rows)})
	return rows, nil
}

// ReadJSONFile reads records from a JSON array of objects keyed by column name, the
// layout of a data frame exported with orient="records".
func (r *RecordIO) ReadJSONFile(filePath string) ([]models.DoseRecord, error) {
	r.logger.Info("Reading JSON file", logging.Field{Key: logging.FieldFile, Value: filePath})

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening JSON file: %w", err)
	}

	var records []models.DoseRecord
	if err := json.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &records); err != nil {
		r.logger.WithError(err).Error("Failed to parse JSON file")
		return nil, fmt.Errorf("error parsing JSON file: %w", err)
	}

	r.logger.Info("Successfully read JSON data", logging.Field{Key: logging.FieldCount, Value: len(records)})
	return records, nil
}

// WriteRecordsToCSV writes records, including the derived category column, to a CSV file.
func (r *RecordIO) WriteRecordsToCSV(records []models.DoseRecord, csvFile string) error {
	if records == nil {
		return fmt.Errorf("cannot write nil records to CSV")
	}

	r.logger.Info("Writing records to CSV file",
		logging.Field{Key: logging.FieldFile, Value: csvFile},
		logging.Field{Key: logging.FieldCount, Value: len(records)})

	file, err := fileutils.CreateFile(csvFile)
	if err != nil {
		r.logger.WithError(err).Error("Failed to create CSV file")
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			r.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	// Configure CSV writer with custom delimiter
	csvWriter := csv.NewWriter(file)
	csvWriter.Comma = r.Delimiter

	if err := gocsv.MarshalCSV(records, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		r.logger.WithError(err).Error("Failed to marshal records to CSV")
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	r.logger.Info("Successfully wrote records to CSV file",
		logging.Field{Key: logging.FieldFile, Value: csvFile},
		logging.Field{Key: logging.FieldCount, Value: len(records)})
	return nil
}
