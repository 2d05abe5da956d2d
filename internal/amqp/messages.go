package amqp

import (
	"encoding/json"
	"time"
)

// Event types carried on the finance exchange.
const (
	EventBillCreated            = "finance.bill.created"
	EventBillUpdated            = "finance.bill.updated"
	EventBillCanceled           = "finance.bill.canceled"
	EventIncomeCreated          = "finance.income.created"
	EventIncomeUpdated          = "finance.income.updated"
	EventExpenseCreated         = "finance.expense.created"
	EventExpenseUpdated         = "finance.expense.updated"
	EventRecurrenceMaterialized = "finance.recurrence.materialized"
	EventDebtCreated            = "finance.debt.created"
	EventDebtNegotiated         = "finance.debt.negotiated"
	EventDebtPaymentRecorded    = "finance.debt.payment_recorded"
	EventDebtOverdue            = "finance.debt.overdue"
)

// Event is the message published for every finance state change. Consumers
// fetch the full entity from the API; the event carries identifiers only.
type Event struct {
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
	EntityID  string    `json:"entityId,omitempty"`
	MonthYear string    `json:"monthYear,omitempty"`
	Count     int       `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType, userID, entityID string) *Event {
	return &Event{
		Type:      eventType,
		UserID:    userID,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}

// WithMonth attaches the month the event refers to.
func (e *Event) WithMonth(monthYear string) *Event {
	e.MonthYear = monthYear
	return e
}

// WithCount attaches an occurrence count, e.g. materialized rows or
// installments consumed.
func (e *Event) WithCount(n int) *Event {
	e.Count = n
	return e
}

// ToJSON converts the event to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON creates an event from JSON bytes
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
