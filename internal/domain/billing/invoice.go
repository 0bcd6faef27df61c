package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusSent          InvoiceStatus = "sent"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid,
		InvoiceStatusPartiallyPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusSent || target == InvoiceStatusCancelled
	case InvoiceStatusSent:
		return target == InvoiceStatusPaid || target == InvoiceStatusPartiallyPaid ||
			target == InvoiceStatusOverdue || target == InvoiceStatusCancelled
	case InvoiceStatusPartiallyPaid:
		return target == InvoiceStatusPaid || target == InvoiceStatusOverdue ||
			target == InvoiceStatusCancelled
	case InvoiceStatusOverdue:
		return target == InvoiceStatusPaid || target == InvoiceStatusPartiallyPaid ||
			target == InvoiceStatusCancelled
	case InvoiceStatusPaid:
		// Paid invoices entered in error can still be cancelled.
		return target == InvoiceStatusCancelled
	case InvoiceStatusCancelled:
		return false // Terminal
	}
	return false
}

// IsTerminal returns true if no further transition is possible.
// Only cancelled is terminal; every other state can reach it.
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusCancelled
}

// ItemType classifies what an invoice line item charges for
type ItemType string

const (
	ItemTypeRent    ItemType = "rent"
	ItemTypeUtility ItemType = "utility"
	ItemTypeDeposit ItemType = "deposit"
	ItemTypeTax     ItemType = "tax"
	ItemTypeOther   ItemType = "other"
)

// IsValid checks if the item type is valid
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeRent, ItemTypeUtility, ItemTypeDeposit, ItemTypeTax, ItemTypeOther:
		return true
	}
	return false
}

// ItemStatus represents the status of an invoice line item
type ItemStatus string

const (
	ItemStatusActive ItemStatus = "active"
	ItemStatusVoid   ItemStatus = "void"
)

// InvoiceItem represents a line item on an invoice.
// Item amounts are fixed at creation; the correction path for a wrong
// amount is to void the item and add a new one.
type InvoiceItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	Type        ItemType
	Description string
	Amount      decimal.Decimal
	Status      ItemStatus
	ReferenceID *uuid.UUID // Source record (utility reading, deposit) this item bills for
	CreatedAt   time.Time
	UpdatedAt   time.Time
	VoidedAt    *time.Time
}

// NewInvoiceItem creates a new active invoice item
func NewInvoiceItem(invoiceID uuid.UUID, itemType ItemType, description string, amount valueobject.Money, referenceID *uuid.UUID) (*InvoiceItem, error) {
	if !itemType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ITEM_TYPE", fmt.Sprintf("Invalid item type: %s", itemType))
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Item amount cannot be negative")
	}

	now := time.Now()
	return &InvoiceItem{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		Type:        itemType,
		Description: description,
		Amount:      amount.Amount().Round(2),
		Status:      ItemStatusActive,
		ReferenceID: referenceID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Void marks the item as void
func (i *InvoiceItem) Void() error {
	if i.Status == ItemStatusVoid {
		return shared.NewDomainError("ITEM_ALREADY_VOID", "Item is already void")
	}
	now := time.Now()
	i.Status = ItemStatusVoid
	i.VoidedAt = &now
	i.UpdatedAt = now
	return nil
}

// IsActive returns true if the item counts toward the invoice subtotal
func (i *InvoiceItem) IsActive() bool {
	return i.Status == ItemStatusActive
}

// GetAmountMoney returns the item amount as Money
func (i *InvoiceItem) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(i.Amount)
}

// Invoice is the aggregate root for a tenant invoice.
// The invoice and its items form one consistency boundary: every item
// mutation recalculates Subtotal and TotalAmount before the aggregate
// is persisted. TaxAmount is fixed when the tax rate is applied during
// composition and is never recomputed by later item changes; only
// Cancel resets it to zero.
type Invoice struct {
	shared.OwnerAggregateRoot
	InvoiceNumber string
	PropertyID    uuid.UUID
	UnitID        uuid.UUID
	TenantID      uuid.UUID // The renting tenant, managed by the tenancy context
	Status        InvoiceStatus
	Items         []InvoiceItem
	Subtotal      decimal.Decimal // Sum of active item amounts
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal // Subtotal + TaxAmount
	TaxRateID     *uuid.UUID
	DueDate       time.Time
	Notes         string
	SentAt        *time.Time
	CancelledAt   *time.Time
	CancelReason  string
}

// NewInvoice creates a new draft invoice with no items
func NewInvoice(ownerID uuid.UUID, invoiceNumber string, propertyID, unitID, tenantID uuid.UUID, dueDate time.Time) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if propertyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROPERTY", "Property ID cannot be empty")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit ID cannot be empty")
	}
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be empty")
	}

	invoice := &Invoice{
		OwnerAggregateRoot: shared.NewOwnerAggregateRoot(ownerID),
		InvoiceNumber:      invoiceNumber,
		PropertyID:         propertyID,
		UnitID:             unitID,
		TenantID:           tenantID,
		Status:             InvoiceStatusDraft,
		Items:              make([]InvoiceItem, 0),
		Subtotal:           decimal.Zero,
		TaxAmount:          decimal.Zero,
		TotalAmount:        decimal.Zero,
		DueDate:            dueDate,
	}

	invoice.AddDomainEvent(NewInvoiceCreatedEvent(invoice))

	return invoice, nil
}

// AddItem adds a new line item to the invoice
// Only allowed in draft status
func (inv *Invoice) AddItem(itemType ItemType, description string, amount valueobject.Money, referenceID *uuid.UUID) (*InvoiceItem, error) {
	if inv.Status != InvoiceStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft invoice")
	}

	item, err := NewInvoiceItem(inv.ID, itemType, description, amount, referenceID)
	if err != nil {
		return nil, err
	}

	inv.Items = append(inv.Items, *item)
	inv.recalculateTotals()
	inv.UpdatedAt = time.Now()

	return item, nil
}

// VoidItem voids a line item and recalculates the totals.
// Voiding leaves TaxAmount untouched. Rejected once the invoice is
// paid or cancelled; cancellation is the correction path from paid.
func (inv *Invoice) VoidItem(itemID uuid.UUID) error {
	if inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot void items on a %s invoice", inv.Status))
	}

	for idx := range inv.Items {
		if inv.Items[idx].ID == itemID {
			if err := inv.Items[idx].Void(); err != nil {
				return err
			}
			inv.recalculateTotals()
			inv.UpdatedAt = time.Now()
			inv.AddDomainEvent(NewInvoiceItemVoidedEvent(inv, &inv.Items[idx]))
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Invoice item not found")
}

// RemoveItem removes a line item entirely
// Only allowed in draft status; voiding is the correction path after sending
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-draft invoice")
	}

	for idx, item := range inv.Items {
		if item.ID == itemID {
			inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
			inv.recalculateTotals()
			inv.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Invoice item not found")
}

// ApplyTaxRate applies a tax rate to the current subtotal
// Only allowed in draft status; the resulting TaxAmount stays fixed for
// the life of the invoice
func (inv *Invoice) ApplyTaxRate(rate *TaxRate) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot apply tax to a non-draft invoice")
	}
	if rate == nil {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be nil")
	}

	subtotal := valueobject.NewMoneyKES(inv.Subtotal)
	inv.TaxAmount = subtotal.CalculatePercentage(rate.Percentage).Round(2).Amount()
	inv.TaxRateID = &rate.ID
	inv.recalculateTotals()
	inv.UpdatedAt = time.Now()

	return nil
}

// MarkSent transitions the invoice from draft to sent
// Requires at least one active item
func (inv *Invoice) MarkSent() error {
	if !inv.Status.CanTransitionTo(InvoiceStatusSent) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send invoice in %s status", inv.Status))
	}
	if inv.ActiveItemCount() == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot send an invoice without active items")
	}

	now := time.Now()
	inv.Status = InvoiceStatusSent
	inv.SentAt = &now
	inv.UpdatedAt = now

	inv.AddDomainEvent(NewInvoiceSentEvent(inv))

	return nil
}

// MarkOverdue transitions the invoice to overdue when past its due date
func (inv *Invoice) MarkOverdue(now time.Time) error {
	if !inv.Status.CanTransitionTo(InvoiceStatusOverdue) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark invoice overdue in %s status", inv.Status))
	}
	if !now.After(inv.DueDate) {
		return shared.NewDomainError("NOT_PAST_DUE", "Invoice is not past its due date")
	}

	inv.Status = InvoiceStatusOverdue
	inv.UpdatedAt = now

	return nil
}

// Cancel voids the whole invoice: all items are voided and subtotal,
// tax and total are reset to zero. Reachable from every other state,
// paid included; cancelled itself is terminal.
func (inv *Invoice) Cancel(reason string) error {
	if !inv.Status.CanTransitionTo(InvoiceStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	for idx := range inv.Items {
		if inv.Items[idx].Status == ItemStatusActive {
			inv.Items[idx].Status = ItemStatusVoid
			inv.Items[idx].VoidedAt = &now
			inv.Items[idx].UpdatedAt = now
		}
	}

	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.Subtotal = decimal.Zero
	inv.TaxAmount = decimal.Zero
	inv.TotalAmount = decimal.Zero
	inv.UpdatedAt = now

	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))

	return nil
}

// ApplySettlement recomputes the payment status from the sum of
// confirmed payments against this invoice. A zero paid total leaves the
// status unchanged; a paid invoice never regresses to partially paid.
// Overpayment is accepted and pins the status at paid.
func (inv *Invoice) ApplySettlement(paidTotal valueobject.Money) error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVOICE_CANCELLED", "Cannot settle a cancelled invoice")
	}
	if paidTotal.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Paid total cannot be negative")
	}
	if paidTotal.IsZero() || inv.Status == InvoiceStatusPaid {
		return nil
	}

	previous := inv.Status
	if paidTotal.Amount().GreaterThanOrEqual(inv.TotalAmount) {
		inv.Status = InvoiceStatusPaid
	} else {
		inv.Status = InvoiceStatusPartiallyPaid
	}

	if inv.Status != previous {
		inv.UpdatedAt = time.Now()
		inv.AddDomainEvent(NewInvoiceSettledEvent(inv, paidTotal.Amount()))
	}

	return nil
}

// recalculateTotals recomputes Subtotal from the active items and
// TotalAmount as Subtotal + TaxAmount. TaxAmount is left as-is.
func (inv *Invoice) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range inv.Items {
		if item.Status == ItemStatusActive {
			subtotal = subtotal.Add(item.Amount)
		}
	}
	inv.Subtotal = subtotal
	inv.TotalAmount = inv.Subtotal.Add(inv.TaxAmount)
}

// GetSubtotalMoney returns the subtotal as Money
func (inv *Invoice) GetSubtotalMoney() valueobject.Money {
	return valueobject.NewMoneyKES(inv.Subtotal)
}

// GetTaxAmountMoney returns the tax amount as Money
func (inv *Invoice) GetTaxAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(inv.TaxAmount)
}

// GetTotalAmountMoney returns the total amount as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(inv.TotalAmount)
}

// ItemCount returns the number of items, including void ones
func (inv *Invoice) ItemCount() int {
	return len(inv.Items)
}

// ActiveItemCount returns the number of active items
func (inv *Invoice) ActiveItemCount() int {
	count := 0
	for _, item := range inv.Items {
		if item.Status == ItemStatusActive {
			count++
		}
	}
	return count
}

// GetItem returns an item by its ID
func (inv *Invoice) GetItem(itemID uuid.UUID) *InvoiceItem {
	for idx := range inv.Items {
		if inv.Items[idx].ID == itemID {
			return &inv.Items[idx]
		}
	}
	return nil
}

// IsDraft returns true if the invoice is in draft status
func (inv *Invoice) IsDraft() bool {
	return inv.Status == InvoiceStatusDraft
}

// IsCancelled returns true if the invoice is cancelled
func (inv *Invoice) IsCancelled() bool {
	return inv.Status == InvoiceStatusCancelled
}

// IsSettled returns true if the invoice is fully paid
func (inv *Invoice) IsSettled() bool {
	return inv.Status == InvoiceStatusPaid
}
