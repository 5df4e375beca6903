package logging

// Standardized field names for structured logging.
const (
	FieldComponent     = "component"
	FieldRole          = "role"
	FieldFile          = "file_path"
	FieldDataset       = "dataset"
	FieldTransactionID = "transaction_id"
	FieldUTR           = "utr"
	FieldStatus        = "status"
	FieldSettlement    = "settlement_status"
	FieldAnomalyType   = "anomaly_type"
	FieldField         = "field"
	FieldColumn        = "column"
	FieldRow           = "row"
	FieldValue         = "value"
	FieldReason        = "reason"
	FieldCount         = "count"
	FieldProfile       = "profile"
	FieldFormat        = "format"
	FieldEncoding      = "encoding"
	FieldStage         = "stage"
	FieldMatchRate     = "match_rate"
	FieldOutputFile    = "output_file"
)
