package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentdesk/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeInvoice = "Invoice"
	AggregateTypePayment = "Payment"
)

// Event type constants
const (
	EventTypeInvoiceCreated    = "InvoiceCreated"
	EventTypeInvoiceSent       = "InvoiceSent"
	EventTypeInvoiceItemVoided = "InvoiceItemVoided"
	EventTypeInvoiceCancelled  = "InvoiceCancelled"
	EventTypeInvoiceSettled    = "InvoiceSettled"
	EventTypePaymentRecorded   = "PaymentRecorded"
)

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	PropertyID    uuid.UUID `json:"property_id"`
	UnitID        uuid.UUID `json:"unit_id"`
	TenantID      uuid.UUID `json:"tenant_id"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(invoice *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, invoice.ID, invoice.OwnerID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		PropertyID:      invoice.PropertyID,
		UnitID:          invoice.UnitID,
		TenantID:        invoice.TenantID,
	}
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return EventTypeInvoiceCreated
}

// InvoiceSentEvent is raised when an invoice is sent to the tenant
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewInvoiceSentEvent creates a new InvoiceSentEvent
func NewInvoiceSentEvent(invoice *Invoice) *InvoiceSentEvent {
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSent, AggregateTypeInvoice, invoice.ID, invoice.OwnerID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		TenantID:        invoice.TenantID,
		TotalAmount:     invoice.TotalAmount,
	}
}

// EventType returns the event type name
func (e *InvoiceSentEvent) EventType() string {
	return EventTypeInvoiceSent
}

// InvoiceItemVoidedEvent is raised when a line item is voided
type InvoiceItemVoidedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	ItemID        uuid.UUID       `json:"item_id"`
	ItemAmount    decimal.Decimal `json:"item_amount"`
	NewSubtotal   decimal.Decimal `json:"new_subtotal"`
	NewTotal      decimal.Decimal `json:"new_total"`
}

// NewInvoiceItemVoidedEvent creates a new InvoiceItemVoidedEvent
func NewInvoiceItemVoidedEvent(invoice *Invoice, item *InvoiceItem) *InvoiceItemVoidedEvent {
	return &InvoiceItemVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceItemVoided, AggregateTypeInvoice, invoice.ID, invoice.OwnerID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		ItemID:          item.ID,
		ItemAmount:      item.Amount,
		NewSubtotal:     invoice.Subtotal,
		NewTotal:        invoice.TotalAmount,
	}
}

// EventType returns the event type name
func (e *InvoiceItemVoidedEvent) EventType() string {
	return EventTypeInvoiceItemVoided
}

// InvoiceCancelledEvent is raised when an invoice is cancelled
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	CancelReason  string    `json:"cancel_reason"`
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(invoice *Invoice) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCancelled, AggregateTypeInvoice, invoice.ID, invoice.OwnerID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		CancelReason:    invoice.CancelReason,
	}
}

// EventType returns the event type name
func (e *InvoiceCancelledEvent) EventType() string {
	return EventTypeInvoiceCancelled
}

// InvoiceSettledEvent is raised when confirmed payments change the
// invoice payment status
type InvoiceSettledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Status        InvoiceStatus   `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidTotal     decimal.Decimal `json:"paid_total"`
}

// NewInvoiceSettledEvent creates a new InvoiceSettledEvent
func NewInvoiceSettledEvent(invoice *Invoice, paidTotal decimal.Decimal) *InvoiceSettledEvent {
	return &InvoiceSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSettled, AggregateTypeInvoice, invoice.ID, invoice.OwnerID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		Status:          invoice.Status,
		TotalAmount:     invoice.TotalAmount,
		PaidTotal:       paidTotal,
	}
}

// EventType returns the event type name
func (e *InvoiceSettledEvent) EventType() string {
	return EventTypeInvoiceSettled
}

// PaymentRecordedEvent is raised when a payment is recorded
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	InvoiceID *uuid.UUID      `json:"invoice_id,omitempty"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	Amount    decimal.Decimal `json:"amount"`
	Mode      PaymentMode     `json:"mode"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(payment *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, payment.ID, payment.OwnerID),
		PaymentID:       payment.ID,
		InvoiceID:       payment.InvoiceID,
		TenantID:        payment.TenantID,
		Amount:          payment.Amount,
		Mode:            payment.Mode,
	}
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return EventTypePaymentRecorded
}
