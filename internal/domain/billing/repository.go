package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentdesk/backend/internal/domain/shared"
)

// InvoiceRepository manages invoice aggregate persistence. The
// embedded items are loaded and saved with the aggregate.
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *Invoice) error
	// SaveWithLock persists the aggregate only if the stored version
	// matches; a mismatch returns ErrConcurrencyConflict
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]Invoice, error)
	CountForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error)
	SummaryForOwner(ctx context.Context, ownerID uuid.UUID) (*InvoiceSummary, error)
}

// InvoiceSummary aggregates invoice figures for an owner's dashboard
type InvoiceSummary struct {
	TotalInvoiced    decimal.Decimal         `json:"total_invoiced"`
	TotalCollected   decimal.Decimal         `json:"total_collected"`
	TotalOutstanding decimal.Decimal         `json:"total_outstanding"`
	CountByStatus    map[InvoiceStatus]int64 `json:"count_by_status"`
}

// PaymentRepository manages append-only payment records
type PaymentRepository interface {
	Save(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Payment, error)
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]Payment, error)
	CountForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)
	// SumConfirmedByInvoice returns the sum of confirmed payment
	// amounts recorded against the invoice
	SumConfirmedByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
}

// TaxRateRepository manages the tax rate catalog
type TaxRateRepository interface {
	Save(ctx context.Context, rate *TaxRate) error
	FindByID(ctx context.Context, id uuid.UUID) (*TaxRate, error)
	FindAll(ctx context.Context) ([]TaxRate, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BillableSourceRepository reads and flips chargeable source records
// (utility readings, deposit records) owned by other contexts
type BillableSourceRepository interface {
	FindByIDsForOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]BillableRecord, error)
	FindSavedForOwner(ctx context.Context, ownerID, unitID uuid.UUID) ([]BillableRecord, error)
	Save(ctx context.Context, record *BillableRecord) error
}

// InvoiceNumberGenerator issues globally unique invoice numbers.
// Numbers are strictly increasing across all owners; an aborted
// invoice creation burns its number, so gaps are expected.
type InvoiceNumberGenerator interface {
	NextInvoiceNumber(ctx context.Context) (string, error)
}
