package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
	FieldSource    = "source"
	FieldVariant   = "variant"
	FieldEncoding  = "encoding"
	FieldRecords   = "records"
	FieldDropped   = "dropped_rows"
	FieldSentinels = "sentinel_rows"
	FieldPeriod    = "period"
	FieldCountry   = "country"
	FieldFlow      = "flow"
	FieldMeasure   = "measure"
	FieldTopN      = "top_n"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentIngest  = "ingest"
	ComponentSession = "session"
	ComponentExport  = "export"
	ComponentCache   = "cache"
)
