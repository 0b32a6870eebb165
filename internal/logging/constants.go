package logging

// Standardized field names for structured logging.
const (
	FieldFile        = "file_path"
	FieldTable       = "table"
	FieldVersion     = "version"
	FieldRule        = "rule"
	FieldRuleKey     = "rule_key"
	FieldCategory    = "category"
	FieldDescription = "description"
	FieldRecord      = "record"
	FieldRoom        = "room"
	FieldSeverity    = "severity"
	FieldReason      = "reason"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldCount       = "count"
	FieldWorkers     = "workers"
	FieldInputFile   = "input_file"
	FieldOutputFile  = "output_file"
	FieldRunID       = "run_id"
)
