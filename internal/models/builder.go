package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StudyDateLayout is the date format written to the Study Date column.
const StudyDateLayout = "2006-01-02"

// studyDateLayouts are the accepted input formats for study dates.
var studyDateLayouts = []string{
	StudyDateLayout,
	"02.01.2006",
	"20060102",
	time.RFC3339,
}

// DoseRecordBuilder provides a fluent API for constructing dose records
type DoseRecordBuilder struct {
	record DoseRecord
	err    error
}

// NewDoseRecordBuilder creates an empty builder. The record has no description until
// WithDescription is called.
func NewDoseRecordBuilder() *DoseRecordBuilder {
	return &DoseRecordBuilder{}
}

// WithDescription sets the procedure description
func (b *DoseRecordBuilder) WithDescription(description string) *DoseRecordBuilder {
	if b.err != nil {
		return b
	}
	b.record.Description = &description
	return b
}

// WithoutDescription removes the description field, as for a row lacking the column.
func (b *DoseRecordBuilder) WithoutDescription() *DoseRecordBuilder {
	if b.err != nil {
		return b
	}
	b.record.Description = nil
	return b
}

// WithRoom sets the modality room
func (b *DoseRecordBuilder) WithRoom(room string) *DoseRecordBuilder {
	if b.err != nil {
		return b
	}
	b.record.Room = room
	return b
}

// WithDAP sets the dose-area product in Gy*cm2
func (b *DoseRecordBuilder) WithDAP(dap decimal.Decimal) *DoseRecordBuilder {
	if b.err != nil {
		return b
	}
	if dap.IsNegative() {
		b.err = fmt.Errorf("dose-area product cannot be negative: %s", dap)
		return b
	}
	b.record.DAP = decimal.NewNullDecimal(dap)
	return b
}

// WithDAPFromFloat sets the dose-area product from a float64
func (b *DoseRecordBuilder) WithDAPFromFloat(dap float64) *DoseRecordBuilder {
	return b.WithDAP(decimal.NewFromFloat(dap))
}

// WithDAPFromString sets the dose-area product from a string; an empty string clears it.
func (b *DoseRecordBuilder) WithDAPFromString(dap string) *DoseRecordBuilder {
	if b.err != nil {
		return b
	}
	if dap == "" {
		b.record.DAP = decimal.NullDecimal{}
		return b
	}
	parsed, err := decimal.NewFromString(dap)
	if err != nil {
		b.err = fmt.Errorf("invalid dose-area product %q: %w", dap, err)
		return b
	}
	return b.WithDAP(parsed)
}

// WithStudyDate sets the study date from a string in one of the accepted layouts
// (YYYY-MM-DD, DD.MM.YYYY, YYYYMMDD or RFC 3339). It is stored as YYYY-MM-DD.
func (b *DoseRecordBuilder) WithStudyDate(dateStr string) *DoseRecordBuilder {
	if b.err != nil {
		return b
	}
	if dateStr == "" {
		b.err = errors.New("study date cannot be empty")
		return b
	}
	for _, layout := range studyDateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			b.record.StudyDate = t.Format(StudyDateLayout)
			return b
		}
	}
	b.err = fmt.Errorf("invalid study date: %q", dateStr)
	return b
}

// WithStudyDateFromTime sets the study date from a time.Time
func (b *DoseRecordBuilder) WithStudyDateFromTime(date time.Time) *DoseRecordBuilder {
	if b.err != nil {
		return b
	}
	if date.IsZero() {
		b.err = errors.New("study date cannot be zero")
		return b
	}
	b.record.StudyDate = date.Format(StudyDateLayout)
	return b
}

// WithAccessionNumber sets the accession number
func (b *DoseRecordBuilder) WithAccessionNumber(accession string) *DoseRecordBuilder {
	if b.err != nil {
		return b
	}
	b.record.AccessionNumber = accession
	return b
}

// WithMappedProcedure sets the derived category column
func (b *DoseRecordBuilder) WithMappedProcedure(category string) *DoseRecordBuilder {
	if b.err != nil {
		return b
	}
	b.record.MappedProcedure = category
	return b
}

// Build returns the record, or the first error encountered while building it.
func (b *DoseRecordBuilder) Build() (DoseRecord, error) {
	if b.err != nil {
		return DoseRecord{}, b.err
	}
	record := b.record
	if record.Description != nil {
		description := *record.Description
		record.Description = &description
	}
	return record, nil
}

// Reset clears the builder
func (b *DoseRecordBuilder) Reset() *DoseRecordBuilder {
	b.record = DoseRecord{}
	b.err = nil
	return b
}

// Clone returns an independent copy of the builder
func (b *DoseRecordBuilder) Clone() *DoseRecordBuilder {
	clone := &DoseRecordBuilder{record: b.record, err: b.err}
	if b.record.Description != nil {
		description := *b.record.Description
		clone.record.Description = &description
	}
	return clone
}
