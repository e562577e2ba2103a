// FILE: fieldwisp/src/internal/special/fields.go
package special

// Payload keys recognized as Cloud Logging special fields
const (
	OperationKey      = "logging.googleapis.com/operation"
	SourceLocationKey = "logging.googleapis.com/sourceLocation"
	HTTPRequestKey    = "logging.googleapis.com/http_request"
	InsertIDKey       = "insertId"

	TimestampKey        = "timestamp"
	TimestampSecondsKey = "timestampSeconds"
	TimestampNanosKey   = "timestampNanos"
	TimeKey             = "time"
)

// Top-level names of promoted fields in the output record
const (
	PromotedInsertID       = "insertId"
	PromotedOperation      = "operation"
	PromotedSourceLocation = "sourceLocation"
	PromotedHTTPRequest    = "httpRequest"
)

// Field names accepted in Options.Skip and the transform config
const (
	FieldInsertID       = "insertId"
	FieldOperation      = "operation"
	FieldSourceLocation = "sourceLocation"
	FieldHTTPRequest    = "httpRequest"
	FieldTimestamp      = "timestamp"
)
