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

// PaymentService records payments and reconciles invoice settlement
type PaymentService struct {
	paymentRepo      billing.PaymentRepository
	invoiceRepo      billing.InvoiceRepository
	txScope          TransactionScope
	idempotencyStore shared.IdempotencyStore
	idempotencyTTL   time.Duration
	eventBus         shared.EventPublisher
}

// NewPaymentService creates a new PaymentService.
// idempotencyStore may be nil, in which case duplicate-submission
// protection is disabled. The event bus may be nil, in which case
// domain events are discarded.
func NewPaymentService(
	paymentRepo billing.PaymentRepository,
	invoiceRepo billing.InvoiceRepository,
	txScope TransactionScope,
	idempotencyStore shared.IdempotencyStore,
	eventBus shared.EventPublisher,
) *PaymentService {
	return &PaymentService{
		paymentRepo:      paymentRepo,
		invoiceRepo:      invoiceRepo,
		txScope:          txScope,
		idempotencyStore: idempotencyStore,
		idempotencyTTL:   shared.DefaultIdempotencyConfig().TTL,
		eventBus:         eventBus,
	}
}

// RecordPaymentRequest represents a request to record a received payment
type RecordPaymentRequest struct {
	OwnerID        uuid.UUID
	InvoiceID      *uuid.UUID
	PropertyID     uuid.UUID
	UnitID         uuid.UUID
	TenantID       uuid.UUID
	Amount         decimal.Decimal
	PaymentDate    time.Time
	Type           billing.PaymentType
	Mode           billing.PaymentMode
	TransactionID  string
	Description    string
	ReceiptURL     string
	IdempotencyKey string // Client-supplied; retries with the same key are rejected
	CreatedBy      *uuid.UUID
}

// RecordPayment persists a payment record and, when the payment targets
// an invoice, recomputes that invoice's settlement status as the final
// step of the same transaction. A recompute failure rolls the payment
// back; the two are never allowed to diverge.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*billing.Payment, error) {
	keyed := req.IdempotencyKey != "" && s.idempotencyStore != nil
	if keyed {
		fresh, err := s.idempotencyStore.MarkProcessed(ctx, req.IdempotencyKey, s.idempotencyTTL)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !fresh {
			return nil, shared.NewDomainError("DUPLICATE_SUBMISSION", "This payment has already been recorded")
		}
	}

	payment, err := s.recordPayment(ctx, req)
	if err != nil {
		// A failed attempt must not burn the key: the caller retries
		// the whole submission with the same key.
		if keyed {
			_ = s.idempotencyStore.Delete(ctx, req.IdempotencyKey)
		}
		return nil, err
	}

	s.publishEvents(ctx, payment)
	return payment, nil
}

func (s *PaymentService) recordPayment(ctx context.Context, req RecordPaymentRequest) (*billing.Payment, error) {
	amount, err := valueobject.NewMoney(req.Amount, valueobject.DefaultCurrency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", err.Error())
	}

	payment, err := billing.NewPayment(req.OwnerID, req.InvoiceID, req.PropertyID, req.UnitID, req.TenantID, amount, req.PaymentDate, req.Type, req.Mode)
	if err != nil {
		return nil, err
	}
	if req.TransactionID != "" {
		payment.SetTransactionID(req.TransactionID)
	}
	if req.Description != "" {
		payment.SetDescription(req.Description)
	}
	if req.ReceiptURL != "" {
		payment.SetReceiptURL(req.ReceiptURL)
	}
	if req.CreatedBy != nil {
		payment.SetCreatedBy(*req.CreatedBy)
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if payment.IsAttached() {
			invoice, err := repos.InvoiceRepo().FindByIDForOwner(ctx, req.OwnerID, *req.InvoiceID)
			if err != nil {
				return fmt.Errorf("failed to load invoice: %w", err)
			}
			if invoice == nil {
				return shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
			}
			if invoice.IsCancelled() {
				return shared.NewDomainError("INVOICE_CANCELLED", "Cannot record a payment against a cancelled invoice")
			}

			if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
				return fmt.Errorf("failed to save payment: %w", err)
			}

			paidTotal, err := repos.PaymentRepo().SumConfirmedByInvoice(ctx, invoice.ID)
			if err != nil {
				return fmt.Errorf("failed to sum confirmed payments: %w", err)
			}
			if err := invoice.ApplySettlement(valueobject.NewMoneyKES(paidTotal)); err != nil {
				return err
			}
			if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
				return fmt.Errorf("failed to save invoice settlement: %w", err)
			}
			return nil
		}

		// Unattached payments skip the settlement step
		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// publishEvents publishes domain events collected on the payment
func (s *PaymentService) publishEvents(ctx context.Context, payment *billing.Payment) {
	if s.eventBus == nil {
		return
	}

	for _, event := range payment.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	payment.ClearDomainEvents()
}

// GetPayment returns a single payment scoped to the owner
func (s *PaymentService) GetPayment(ctx context.Context, ownerID, paymentID uuid.UUID) (*billing.Payment, error) {
	payment, err := s.paymentRepo.FindByIDForOwner(ctx, ownerID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
	}
	return payment, nil
}

// ListPayments returns a paginated, filtered payment list for the owner
func (s *PaymentService) ListPayments(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (*shared.Paginated[billing.Payment], error) {
	payments, err := s.paymentRepo.FindAllForOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	total, err := s.paymentRepo.CountForOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	result := shared.NewPaginated(payments, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ListInvoicePayments returns every payment recorded against an invoice
func (s *PaymentService) ListInvoicePayments(ctx context.Context, ownerID, invoiceID uuid.UUID) ([]billing.Payment, error) {
	invoice, err := s.invoiceRepo.FindByIDForOwner(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return nil, shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
	}

	payments, err := s.paymentRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice payments: %w", err)
	}
	return payments, nil
}
