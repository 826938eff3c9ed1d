package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldBackend     = "backend"
	FieldSpreadsheet = "spreadsheet"
	FieldTable       = "table"
	FieldRows        = "rows"
	FieldUser        = "user"
	FieldCategory    = "category"
	FieldAmount      = "amount"
	FieldSymbol      = "symbol"
	FieldSide        = "side"
	FieldLimit       = "limit"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentAudit     = "audit"
	ComponentSheets    = "sheets"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
	ComponentTemplate  = "template"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpAppend   = "append"
	OpRead     = "read"
	OpEnsure   = "ensure_table"
	OpOpen     = "open"
	OpConnect  = "connect"
	OpSummary  = "summary"
	OpNotify   = "notify"
	OpValidate = "validate"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// Fields is an ordered list of key/value pairs for slog.
type Fields []any

// NewFields creates an empty field list.
func NewFields() Fields {
	return Fields{}
}

// Add appends a key/value pair.
func (f Fields) Add(key string, value any) Fields {
	return append(f, key, value)
}

// WithError adds the error field when err is non-nil.
func (f Fields) WithError(err error) Fields {
	if err == nil {
		return f
	}
	return append(f, FieldError, err.Error())
}

// WithOperation adds operation field
func (f Fields) WithOperation(op string) Fields {
	return append(f, FieldOperation, op)
}

// WithTable adds the table name and optional row count.
func (f Fields) WithTable(table string, rows int) Fields {
	f = append(f, FieldTable, table)
	if rows >= 0 {
		f = append(f, FieldRows, rows)
	}
	return f
}

// WithHTTP adds request and response fields.
func (f Fields) WithHTTP(method, path string, status int, durationMs int64) Fields {
	return append(f,
		FieldMethod, method,
		FieldPath, path,
		FieldStatusCode, status,
		FieldDuration, durationMs,
	)
}
