package log

import (
	"sort"

	"finviz/internal/core"
)

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldReferer     = "referer"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldDatasetID   = "dataset_id"
	FieldDatasetName = "dataset_name"
	FieldRows        = "rows"
	FieldTimeRange   = "time_range"
	FieldCategory    = "category"
	FieldChartKind   = "chart_kind"
	FieldCacheHit    = "cache_hit"
	FieldGeneration  = "generation"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentIngest    = "ingest"
	ComponentEngine    = "engine"
	ComponentView      = "view"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpUpload    = "upload"
	OpImport    = "import"
	OpAggregate = "aggregate"
	OpRead      = "read"
	OpParse     = "parse"
	OpPublish   = "publish"
	OpConsume   = "consume"
	OpDigest    = "digest"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields builds structured log attributes fluently.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithDataset adds the identity and size of a dataset.
func (f LogFields) WithDataset(id, name string, rows int) LogFields {
	f[FieldDatasetID] = id
	f[FieldDatasetName] = name
	f[FieldRows] = rows
	return f
}

// WithFilter adds the active filter selection.
func (f LogFields) WithFilter(state core.FilterState) LogFields {
	f[FieldTimeRange] = string(state.TimeRange)
	f[FieldCategory] = state.Category
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	f[FieldReferer] = referer
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts the fields to slog key/value pairs in key order.
// The component key is omitted because Logger adds it itself.
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		if k == FieldComponent {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	slice := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		slice = append(slice, k, f[k])
	}
	return slice
}

// Component returns the component stored in the fields, if any.
func (f LogFields) Component() (string, bool) {
	c, ok := f[FieldComponent].(string)
	return c, ok
}
