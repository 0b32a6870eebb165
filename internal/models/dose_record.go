// Package models provides the data structures used throughout the application.
package models

import (
	"radiologi/xa-dose/internal/ruleerror"

	"github.com/shopspring/decimal"
)

// DoseRecord is one examination row of an interventional dose export.
//
// Description is a pointer so that a record lacking the field entirely (a JSON object
// without the key, or a CSV without the column) can be told apart from an empty
// description.
type DoseRecord struct {
	Description     *string             `csv:"Beskrivelse" json:"Beskrivelse,omitempty"`
	Room            string              `csv:"Modality Room" json:"Modality Room"`
	DAP             decimal.NullDecimal `csv:"DAP Total (Gy*cm2)" json:"DAP Total (Gy*cm2)"`
	StudyDate       string              `csv:"Study Date" json:"Study Date"`
	AccessionNumber string              `csv:"Accession Number" json:"Accession Number"`
	MappedProcedure string              `csv:"Mapped Procedures" json:"Mapped Procedures"`
}

// NewDoseRecord creates a record with the given description and room.
func NewDoseRecord(description, room string) DoseRecord {
	return DoseRecord{Description: &description, Room: room}
}

// Describe returns the description to classify, or ErrMissingDescription when the record
// carries no description field.
func (r DoseRecord) Describe() (string, error) {
	if r.Description == nil {
		return "", ruleerror.ErrMissingDescription
	}
	return *r.Description, nil
}

// DescriptionOrEmpty returns the description, or "" when the field is missing.
func (r DoseRecord) DescriptionOrEmpty() string {
	if r.Description == nil {
		return ""
	}
	return *r.Description
}

// DAPFloat returns the dose-area product as a float and whether it was present.
func (r DoseRecord) DAPFloat() (float64, bool) {
	if !r.DAP.Valid {
		return 0, false
	}
	return r.DAP.Decimal.InexactFloat64(), true
}

// WithDAP returns a copy of the record with the dose-area product set from a string.
func (r DoseRecord) WithDAP(value string) (DoseRecord, error) {
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return r, err
	}
	r.DAP = decimal.NewNullDecimal(dec)
	return r, nil
}
