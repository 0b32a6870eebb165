package models

// Column headers of the dose export and of the derived category column.
const (
	ColumnDescription    = "Beskrivelse"
	ColumnRoom           = "Modality Room"
	ColumnDAP            = "DAP Total (Gy*cm2)"
	ColumnStudyDate      = "Study Date"
	ColumnAccession      = "Accession Number"
	ColumnMappedCategory = "Mapped Procedures"
)

// Record classification statuses
const (
	StatusMapped   = "MAPPED"
	StatusUnmapped = "UNMAPPED"
	StatusFailed   = "FAILED"
)

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
