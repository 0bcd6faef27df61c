package billing

import (
	"context"

	"github.com/rentdesk/backend/internal/domain/billing"
)

// TransactionScope provides transactional access to billing repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or
// roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the billing repositories
// within a transaction. All repositories returned share the same
// underlying database transaction.
//
// Aggregate boundary notes:
//   - InvoiceRepo persists the Invoice aggregate root; its line items
//     are saved with the aggregate, never independently.
//   - PaymentRepo is append-only.
//   - BillableRepo flips source records (utility readings, deposit
//     records) to invoiced in the same transaction that persists the
//     invoice consuming them.
type TransactionalRepositories interface {
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() billing.InvoiceRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() billing.PaymentRepository
	// BillableRepo returns the billable source repository scoped to the current transaction
	BillableRepo() billing.BillableSourceRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support
// is not required.
type NoOpTransactionScope struct {
	invoiceRepo  billing.InvoiceRepository
	paymentRepo  billing.PaymentRepository
	billableRepo billing.BillableSourceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	billableRepo billing.BillableSourceRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		billableRepo: billableRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository {
	return s.invoiceRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() billing.PaymentRepository {
	return s.paymentRepo
}

// BillableRepo returns the billable source repository.
func (s *NoOpTransactionScope) BillableRepo() billing.BillableSourceRepository {
	return s.billableRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
