package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldSession    = "session"
	FieldRequestID  = "request_id"
	FieldRows       = "rows"
	FieldSkipped    = "skipped"
	FieldDepartment = "department"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldAmount     = "amount"
	FieldPath       = "path"
	FieldSheetsRef  = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentEditor  = "editor"
	ComponentHistory = "history"
	ComponentStorage = "storage"
	ComponentSheets  = "sheets"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentReceipt = "receipt"
	ComponentTUI     = "tui"
)

// Operations defines standard operation names
const (
	OpImport   = "import"
	OpExport   = "export"
	OpSave     = "save"
	OpLoad     = "load"
	OpGenerate = "generate"
	OpMerge    = "merge"
	OpUndo     = "undo"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithSession adds the progress session name
func (f LogFields) WithSession(name string) LogFields {
	f[FieldSession] = name
	return f
}

// WithFee adds the fields identifying one fee record
func (f LogFields) WithFee(department string, year, month int, amount string) LogFields {
	f[FieldDepartment] = department
	f[FieldYear] = year
	f[FieldMonth] = month
	f[FieldAmount] = amount
	return f
}

// WithRows adds row counts, skipped may be zero
func (f LogFields) WithRows(rows, skipped int) LogFields {
	f[FieldRows] = rows
	if skipped > 0 {
		f[FieldSkipped] = skipped
	}
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
