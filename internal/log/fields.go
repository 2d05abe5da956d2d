package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldUserID         = "user_id"
	FieldMonthYear      = "month_year"
	FieldScope          = "scope"
	FieldRecurringGroup = "recurring_group_id"
	FieldDebtID         = "debt_id"
	FieldInstallment    = "installment"
	FieldQuantity       = "quantity"
	FieldCreatedCount   = "created_count"
	FieldAffectedRows   = "affected_rows"
	FieldKind           = "kind"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentBills      = "bills"
	ComponentIncomes    = "incomes"
	ComponentExpenses   = "expenses"
	ComponentDebts      = "debts"
	ComponentRecurrence = "recurrence"
	ComponentSummary    = "summary"
	ComponentAuth       = "auth"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpList      = "list"
	OpEnsure    = "ensure"
	OpNegotiate = "negotiate"
	OpPay       = "pay"
	OpSweep     = "sweep"
	OpPublish   = "publish"
	OpMigrate   = "migrate"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds the component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithOperation adds the operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds the error field when err is non-nil
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithUser adds the user ID field
func (f LogFields) WithUser(userID string) LogFields {
	f[FieldUserID] = userID
	return f
}

// WithMonth adds the month field
func (f LogFields) WithMonth(monthYear string) LogFields {
	f[FieldMonthYear] = monthYear
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
