package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentdesk/backend/internal/domain/shared"
)

// BillableStatus is the lifecycle of a source record that can be
// billed: entered (pending), confirmed for billing (saved), and
// consumed by an invoice (invoiced).
type BillableStatus string

const (
	BillableStatusPending  BillableStatus = "pending"
	BillableStatusSaved    BillableStatus = "saved"
	BillableStatusInvoiced BillableStatus = "invoiced"
)

// IsValid checks if the billable status is valid
func (s BillableStatus) IsValid() bool {
	switch s {
	case BillableStatusPending, BillableStatusSaved, BillableStatusInvoiced:
		return true
	}
	return false
}

// BillableKind identifies which collaborator produced the record
type BillableKind string

const (
	BillableKindUtilityReading BillableKind = "utility_reading"
	BillableKindDepositRecord  BillableKind = "deposit_record"
)

// BillableRecord is the billing context's view of a chargeable source
// record owned by the utilities or deposits collaborators. Only saved
// records may be pulled onto an invoice; invoice creation flips them to
// invoiced atomically with item persistence so the same charge cannot
// be billed twice.
type BillableRecord struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Kind        BillableKind
	UnitID      uuid.UUID
	TenantID    uuid.UUID
	Description string
	Amount      decimal.Decimal
	Status      BillableStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanInvoice returns true if the record may be pulled onto an invoice
func (b *BillableRecord) CanInvoice() bool {
	return b.Status == BillableStatusSaved
}

// MarkInvoiced flips the record to invoiced
func (b *BillableRecord) MarkInvoiced() error {
	if !b.CanInvoice() {
		return shared.NewDomainError("NOT_BILLABLE", "Only saved records can be invoiced")
	}
	b.Status = BillableStatusInvoiced
	b.UpdatedAt = time.Now()
	return nil
}

// ItemType maps the billable kind to the invoice item type it produces
func (b *BillableRecord) ItemType() ItemType {
	switch b.Kind {
	case BillableKindUtilityReading:
		return ItemTypeUtility
	case BillableKindDepositRecord:
		return ItemTypeDeposit
	}
	return ItemTypeOther
}
