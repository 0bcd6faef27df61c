package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	billingapp "github.com/rentdesk/backend/internal/application/billing"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockInvoiceRepository implements billing.InvoiceRepository for testing
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) SummaryForOwner(ctx context.Context, ownerID uuid.UUID) (*billing.InvoiceSummary, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.InvoiceSummary), args.Error(1)
}

// MockPaymentRepository implements billing.PaymentRepository for testing
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]billing.Payment, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumConfirmedByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockTaxRateRepository implements billing.TaxRateRepository for testing
type MockTaxRateRepository struct {
	mock.Mock
}

func (m *MockTaxRateRepository) Save(ctx context.Context, rate *billing.TaxRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockTaxRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.TaxRate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.TaxRate), args.Error(1)
}

func (m *MockTaxRateRepository) FindAll(ctx context.Context) ([]billing.TaxRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.TaxRate), args.Error(1)
}

func (m *MockTaxRateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBillableRepository implements billing.BillableSourceRepository for testing
type MockBillableRepository struct {
	mock.Mock
}

func (m *MockBillableRepository) FindByIDsForOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]billing.BillableRecord, error) {
	args := m.Called(ctx, ownerID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.BillableRecord), args.Error(1)
}

func (m *MockBillableRepository) FindSavedForOwner(ctx context.Context, ownerID, unitID uuid.UUID) ([]billing.BillableRecord, error) {
	args := m.Called(ctx, ownerID, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.BillableRecord), args.Error(1)
}

func (m *MockBillableRepository) Save(ctx context.Context, record *billing.BillableRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockNumberGenerator implements billing.InvoiceNumberGenerator for testing
type MockNumberGenerator struct {
	mock.Mock
}

func (m *MockNumberGenerator) NextInvoiceNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type billingHandlerMocks struct {
	invoiceRepo  *MockInvoiceRepository
	paymentRepo  *MockPaymentRepository
	taxRateRepo  *MockTaxRateRepository
	billableRepo *MockBillableRepository
	numberGen    *MockNumberGenerator
}

func newBillingHandlerMocks() *billingHandlerMocks {
	return &billingHandlerMocks{
		invoiceRepo:  new(MockInvoiceRepository),
		paymentRepo:  new(MockPaymentRepository),
		taxRateRepo:  new(MockTaxRateRepository),
		billableRepo: new(MockBillableRepository),
		numberGen:    new(MockNumberGenerator),
	}
}

func (m *billingHandlerMocks) invoiceService() *billingapp.InvoiceService {
	scope := billingapp.NewNoOpTransactionScope(m.invoiceRepo, m.paymentRepo, m.billableRepo)
	return billingapp.NewInvoiceService(m.invoiceRepo, m.taxRateRepo, m.numberGen, scope, nil)
}

func (m *billingHandlerMocks) paymentService() *billingapp.PaymentService {
	scope := billingapp.NewNoOpTransactionScope(m.invoiceRepo, m.paymentRepo, m.billableRepo)
	return billingapp.NewPaymentService(m.paymentRepo, m.invoiceRepo, scope, nil, nil)
}

// withOwner returns a middleware that injects the owner ID the way the
// owner middleware does after authentication.
func withOwner(ownerID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.OwnerIDKey, ownerID.String())
		c.Next()
	}
}

func serveJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
