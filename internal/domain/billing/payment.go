package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/domain/shared/valueobject"
)

// PaymentType distinguishes a full settlement from a partial one
type PaymentType string

const (
	PaymentTypeFull    PaymentType = "full"
	PaymentTypePartial PaymentType = "partial"
)

// IsValid checks if the payment type is valid
func (t PaymentType) IsValid() bool {
	return t == PaymentTypeFull || t == PaymentTypePartial
}

// PaymentMode is the channel the money arrived through
type PaymentMode string

const (
	PaymentModeMpesa  PaymentMode = "mpesa"
	PaymentModeCash   PaymentMode = "cash"
	PaymentModeBank   PaymentMode = "bank"
	PaymentModeCheque PaymentMode = "cheque"
)

// IsValid checks if the payment mode is valid
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeMpesa, PaymentModeCash, PaymentModeBank, PaymentModeCheque:
		return true
	}
	return false
}

// PaymentStatus represents the status of a payment record
type PaymentStatus string

const (
	// PaymentStatusConfirmed is the only status a stored payment can
	// have. Payments are recorded after the money has been received;
	// there is no pending or failed state.
	PaymentStatusConfirmed PaymentStatus = "confirmed"
)

// Payment is an append-only record of money received. Once recorded a
// payment is never mutated or deleted; corrections are bookkeeping
// entries outside this system.
type Payment struct {
	shared.OwnerAggregateRoot
	InvoiceID     *uuid.UUID // Weak reference; nil for payments not tied to an invoice
	PropertyID    uuid.UUID
	UnitID        uuid.UUID
	TenantID      uuid.UUID
	Amount        decimal.Decimal
	PaymentDate   time.Time
	Type          PaymentType
	Mode          PaymentMode
	Status        PaymentStatus
	TransactionID string // External reference, e.g. an M-Pesa confirmation code
	Description   string
	ReceiptURL    string
}

// NewPayment creates a new confirmed payment record
func NewPayment(ownerID uuid.UUID, invoiceID *uuid.UUID, propertyID, unitID, tenantID uuid.UUID, amount valueobject.Money, paymentDate time.Time, paymentType PaymentType, mode PaymentMode) (*Payment, error) {
	if propertyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROPERTY", "Property ID cannot be empty")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit ID cannot be empty")
	}
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_DATE", "Payment date cannot be empty")
	}
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", fmt.Sprintf("Invalid payment type: %s", paymentType))
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_MODE", fmt.Sprintf("Invalid payment mode: %s", mode))
	}

	payment := &Payment{
		OwnerAggregateRoot: shared.NewOwnerAggregateRoot(ownerID),
		InvoiceID:          invoiceID,
		PropertyID:         propertyID,
		UnitID:             unitID,
		TenantID:           tenantID,
		Amount:             amount.Amount().Round(2),
		PaymentDate:        paymentDate,
		Type:               paymentType,
		Mode:               mode,
		Status:             PaymentStatusConfirmed,
	}

	payment.AddDomainEvent(NewPaymentRecordedEvent(payment))

	return payment, nil
}

// SetTransactionID sets the external transaction reference
func (p *Payment) SetTransactionID(transactionID string) {
	p.TransactionID = transactionID
	p.UpdatedAt = time.Now()
}

// SetDescription sets the free-form description
func (p *Payment) SetDescription(description string) {
	p.Description = description
	p.UpdatedAt = time.Now()
}

// SetReceiptURL sets the uploaded receipt file location
func (p *Payment) SetReceiptURL(url string) {
	p.ReceiptURL = url
	p.UpdatedAt = time.Now()
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(p.Amount)
}

// IsAttached returns true if the payment targets an invoice
func (p *Payment) IsAttached() bool {
	return p.InvoiceID != nil && *p.InvoiceID != uuid.Nil
}
