package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/domain/shared/valueobject"
)

// InvoiceService handles invoice composition and lifecycle use cases
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	taxRateRepo billing.TaxRateRepository
	numberGen   billing.InvoiceNumberGenerator
	txScope     TransactionScope
	eventBus    shared.EventPublisher
}

// NewInvoiceService creates a new InvoiceService. The event bus may be
// nil, in which case domain events are discarded.
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	taxRateRepo billing.TaxRateRepository,
	numberGen billing.InvoiceNumberGenerator,
	txScope TransactionScope,
	eventBus shared.EventPublisher,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		taxRateRepo: taxRateRepo,
		numberGen:   numberGen,
		txScope:     txScope,
		eventBus:    eventBus,
	}
}

// InvoiceItemInput is a manually entered line item
type InvoiceItemInput struct {
	Type        billing.ItemType
	Description string
	Amount      decimal.Decimal
}

// CreateInvoiceRequest represents a request to compose a new invoice
type CreateInvoiceRequest struct {
	OwnerID     uuid.UUID
	PropertyID  uuid.UUID
	UnitID      uuid.UUID
	TenantID    uuid.UUID
	DueDate     time.Time
	Items       []InvoiceItemInput
	BillableIDs []uuid.UUID // Saved source records to pull onto the invoice
	TaxRateID   *uuid.UUID
	Notes       string
	CreatedBy   *uuid.UUID
}

// CreateInvoice composes and persists a new draft invoice.
//
// The invoice number is committed by the generator in its own
// transaction before anything else, so a failure further down burns
// the number instead of reusing it. The invoice, its items, and the
// saved-to-invoiced flip of every consumed source record are then
// persisted atomically.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*billing.Invoice, error) {
	if len(req.Items) == 0 && len(req.BillableIDs) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Invoice requires at least one item")
	}

	var taxRate *billing.TaxRate
	if req.TaxRateID != nil {
		rate, err := s.taxRateRepo.FindByID(ctx, *req.TaxRateID)
		if err != nil {
			return nil, fmt.Errorf("failed to load tax rate: %w", err)
		}
		if rate == nil {
			return nil, shared.NewDomainError("TAX_RATE_NOT_FOUND", "Tax rate not found")
		}
		taxRate = rate
	}

	invoiceNumber, err := s.numberGen.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice number: %w", err)
	}

	invoice, err := billing.NewInvoice(req.OwnerID, invoiceNumber, req.PropertyID, req.UnitID, req.TenantID, req.DueDate)
	if err != nil {
		return nil, err
	}
	invoice.Notes = req.Notes
	if req.CreatedBy != nil {
		invoice.SetCreatedBy(*req.CreatedBy)
	}

	for _, input := range req.Items {
		amount, err := valueobject.NewMoney(input.Amount, valueobject.DefaultCurrency)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_AMOUNT", err.Error())
		}
		if _, err := invoice.AddItem(input.Type, input.Description, amount, nil); err != nil {
			return nil, err
		}
	}

	txErr := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if len(req.BillableIDs) > 0 {
			records, err := repos.BillableRepo().FindByIDsForOwner(ctx, req.OwnerID, req.BillableIDs)
			if err != nil {
				return fmt.Errorf("failed to load billable records: %w", err)
			}
			if len(records) != len(req.BillableIDs) {
				return shared.NewDomainError("BILLABLE_NOT_FOUND", "One or more billable records were not found")
			}
			for idx := range records {
				rec := &records[idx]
				if !rec.CanInvoice() {
					return shared.NewDomainError("NOT_BILLABLE", fmt.Sprintf("Record %s is not in a billable state", rec.ID))
				}
				refID := rec.ID
				if _, err := invoice.AddItem(rec.ItemType(), rec.Description, valueobject.NewMoneyKES(rec.Amount), &refID); err != nil {
					return err
				}
				if err := rec.MarkInvoiced(); err != nil {
					return err
				}
				if err := repos.BillableRepo().Save(ctx, rec); err != nil {
					return fmt.Errorf("failed to update billable record: %w", err)
				}
			}
		}

		if taxRate != nil {
			if err := invoice.ApplyTaxRate(taxRate); err != nil {
				return err
			}
		}

		if invoice.ActiveItemCount() == 0 {
			return shared.NewDomainError("NO_ITEMS", "Invoice requires at least one item")
		}

		if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.publishEvents(ctx, invoice)
	return invoice, nil
}

// SendInvoice transitions a draft invoice to sent
func (s *InvoiceService) SendInvoice(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	invoice, err := s.loadInvoice(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.MarkSent(); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.publishEvents(ctx, invoice)
	return invoice, nil
}

// VoidInvoiceItem voids a single line item and recomputes the totals
// in the same save
func (s *InvoiceService) VoidInvoiceItem(ctx context.Context, ownerID, invoiceID, itemID uuid.UUID) (*billing.Invoice, error) {
	invoice, err := s.loadInvoice(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.VoidItem(itemID); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.publishEvents(ctx, invoice)
	return invoice, nil
}

// VoidInvoice cancels the whole invoice
func (s *InvoiceService) VoidInvoice(ctx context.Context, ownerID, invoiceID uuid.UUID, reason string) (*billing.Invoice, error) {
	invoice, err := s.loadInvoice(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.Cancel(reason); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.publishEvents(ctx, invoice)
	return invoice, nil
}

// MarkInvoiceOverdue flags a past-due invoice as overdue
func (s *InvoiceService) MarkInvoiceOverdue(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	invoice, err := s.loadInvoice(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.MarkOverdue(time.Now()); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	return invoice, nil
}

// GetInvoice returns a single invoice scoped to the owner
func (s *InvoiceService) GetInvoice(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	return s.loadInvoice(ctx, ownerID, invoiceID)
}

// ListInvoices returns a paginated, filtered invoice list for the owner
func (s *InvoiceService) ListInvoices(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (*shared.Paginated[billing.Invoice], error) {
	invoices, err := s.invoiceRepo.FindAllForOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	total, err := s.invoiceRepo.CountForOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	result := shared.NewPaginated(invoices, total, filter.Page, filter.PageSize)
	return &result, nil
}

// GetSummary returns aggregate invoice figures for the owner
func (s *InvoiceService) GetSummary(ctx context.Context, ownerID uuid.UUID) (*billing.InvoiceSummary, error) {
	summary, err := s.invoiceRepo.SummaryForOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice summary: %w", err)
	}
	return summary, nil
}

// publishEvents publishes domain events collected on the aggregate
func (s *InvoiceService) publishEvents(ctx context.Context, invoice *billing.Invoice) {
	if s.eventBus == nil {
		return
	}

	for _, event := range invoice.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	invoice.ClearDomainEvents()
}

func (s *InvoiceService) loadInvoice(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByIDForOwner(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return nil, shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
	}
	return invoice, nil
}
