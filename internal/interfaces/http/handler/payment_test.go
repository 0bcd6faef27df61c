package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	billingapp "github.com/rentdesk/backend/internal/application/billing"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/domain/shared/valueobject"
	"github.com/rentdesk/backend/internal/infrastructure/cache"
	"github.com/rentdesk/backend/internal/interfaces/http/dto"
)

func newTestPayment(t *testing.T, invoiceID *uuid.UUID) *billing.Payment {
	t.Helper()

	payment, err := billing.NewPayment(
		handlerOwnerID,
		invoiceID,
		handlerPropertyID,
		handlerUnitID,
		handlerTenantID,
		valueobject.NewMoneyKES(decimal.NewFromInt(25000)),
		time.Now(),
		billing.PaymentTypeFull,
		billing.PaymentModeMpesa,
	)
	require.NoError(t, err)
	return payment
}

func paymentTestRouter(mocks *billingHandlerMocks, store shared.IdempotencyStore) *gin.Engine {
	scope := billingapp.NewNoOpTransactionScope(mocks.invoiceRepo, mocks.paymentRepo, mocks.billableRepo)
	svc := billingapp.NewPaymentService(mocks.paymentRepo, mocks.invoiceRepo, scope, store, nil)
	h := NewPaymentHandler(svc)

	router := gin.New()
	group := router.Group("/api/v1/billing")
	group.Use(withOwner(handlerOwnerID))
	group.POST("/payments", h.Record)
	group.GET("/payments", h.List)
	group.GET("/payments/:id", h.GetByID)
	group.GET("/invoices/:id/payments", h.ListByInvoice)
	return router
}

func basePaymentRequest() RecordPaymentRequest {
	return RecordPaymentRequest{
		PropertyID:    handlerPropertyID.String(),
		UnitID:        handlerUnitID.String(),
		TenantID:      handlerTenantID.String(),
		Amount:        25000,
		PaymentDate:   time.Now(),
		Type:          "full",
		Mode:          "mpesa",
		TransactionID: "QA12BC34DE",
	}
}

func TestPaymentHandler_Record(t *testing.T) {
	t.Run("records unattached payment", func(t *testing.T) {
		mocks := newBillingHandlerMocks()
		mocks.paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Payment")).Return(nil)

		router := paymentTestRouter(mocks, nil)

		w := serveJSON(t, router, http.MethodPost, "/api/v1/billing/payments", basePaymentRequest())

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "confirmed", data["status"])
		assert.Equal(t, "mpesa", data["mode"])
		assert.Equal(t, 25000.0, data["amount"])
		assert.Nil(t, data["invoice_id"])

		mocks.paymentRepo.AssertExpectations(t)
	})

	t.Run("records payment against sent invoice and settles it", func(t *testing.T) {
		invoice := newTestInvoice(t)
		require.NoError(t, invoice.MarkSent())

		mocks := newBillingHandlerMocks()
		mocks.invoiceRepo.On("FindByIDForOwner", mock.Anything, handlerOwnerID, invoice.ID).Return(invoice, nil)
		mocks.paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Payment")).Return(nil)
		mocks.paymentRepo.On("SumConfirmedByInvoice", mock.Anything, invoice.ID).Return(decimal.NewFromInt(25000), nil)
		mocks.invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

		router := paymentTestRouter(mocks, nil)

		body := basePaymentRequest()
		invoiceID := invoice.ID.String()
		body.InvoiceID = &invoiceID

		w := serveJSON(t, router, http.MethodPost, "/api/v1/billing/payments", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, billing.InvoiceStatusPaid, invoice.Status)
		mocks.invoiceRepo.AssertExpectations(t)
		mocks.paymentRepo.AssertExpectations(t)
	})

	t.Run("rejects payment against cancelled invoice", func(t *testing.T) {
		invoice := newTestInvoice(t)
		require.NoError(t, invoice.Cancel("duplicate"))

		mocks := newBillingHandlerMocks()
		mocks.invoiceRepo.On("FindByIDForOwner", mock.Anything, handlerOwnerID, invoice.ID).Return(invoice, nil)

		router := paymentTestRouter(mocks, nil)

		body := basePaymentRequest()
		invoiceID := invoice.ID.String()
		body.InvoiceID = &invoiceID

		w := serveJSON(t, router, http.MethodPost, "/api/v1/billing/payments", body)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeInvalidState)
	})

	t.Run("rejects unknown payment mode", func(t *testing.T) {
		mocks := newBillingHandlerMocks()
		router := paymentTestRouter(mocks, nil)

		body := basePaymentRequest()
		body.Mode = "crypto"

		w := serveJSON(t, router, http.MethodPost, "/api/v1/billing/payments", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects duplicate idempotency key", func(t *testing.T) {
		mocks := newBillingHandlerMocks()
		mocks.paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Payment")).Return(nil)

		router := paymentTestRouter(mocks, cache.NewInMemoryIdempotencyStore())

		payload, err := json.Marshal(basePaymentRequest())
		require.NoError(t, err)

		send := func() *httptest.ResponseRecorder {
			req, err := http.NewRequest(http.MethodPost, "/api/v1/billing/payments", bytes.NewReader(payload))
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(IdempotencyKeyHeader, "mpesa-QA12BC34DE")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w
		}

		first := send()
		assert.Equal(t, http.StatusCreated, first.Code)

		second := send()
		assert.Equal(t, http.StatusConflict, second.Code)
		assert.Contains(t, second.Body.String(), dto.ErrCodeDuplicateSubmission)
	})
}

func TestPaymentHandler_GetByID(t *testing.T) {
	t.Run("returns payment", func(t *testing.T) {
		payment := newTestPayment(t, nil)

		mocks := newBillingHandlerMocks()
		mocks.paymentRepo.On("FindByIDForOwner", mock.Anything, handlerOwnerID, payment.ID).Return(payment, nil)

		router := paymentTestRouter(mocks, nil)

		w := serveJSON(t, router, http.MethodGet, "/api/v1/billing/payments/"+payment.ID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, payment.ID.String(), data["id"])
	})

	t.Run("returns 404 for unknown payment", func(t *testing.T) {
		mocks := newBillingHandlerMocks()
		mocks.paymentRepo.On("FindByIDForOwner", mock.Anything, handlerOwnerID, mock.Anything).Return(nil, nil)

		router := paymentTestRouter(mocks, nil)

		w := serveJSON(t, router, http.MethodGet, "/api/v1/billing/payments/"+uuid.NewString(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPaymentHandler_List(t *testing.T) {
	payment := newTestPayment(t, nil)

	mocks := newBillingHandlerMocks()
	mocks.paymentRepo.On("FindAllForOwner", mock.Anything, handlerOwnerID, mock.Anything).Return([]billing.Payment{*payment}, nil)
	mocks.paymentRepo.On("CountForOwner", mock.Anything, handlerOwnerID, mock.Anything).Return(int64(1), nil)

	router := paymentTestRouter(mocks, nil)

	w := serveJSON(t, router, http.MethodGet, "/api/v1/billing/payments?mode=mpesa", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestPaymentHandler_ListByInvoice(t *testing.T) {
	t.Run("returns payments for invoice", func(t *testing.T) {
		invoice := newTestInvoice(t)
		payment := newTestPayment(t, &invoice.ID)

		mocks := newBillingHandlerMocks()
		mocks.invoiceRepo.On("FindByIDForOwner", mock.Anything, handlerOwnerID, invoice.ID).Return(invoice, nil)
		mocks.paymentRepo.On("FindByInvoice", mock.Anything, invoice.ID).Return([]billing.Payment{*payment}, nil)

		router := paymentTestRouter(mocks, nil)

		w := serveJSON(t, router, http.MethodGet, "/api/v1/billing/invoices/"+invoice.ID.String()+"/payments", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		items := resp.Data.([]interface{})
		require.Len(t, items, 1)

		entry := items[0].(map[string]interface{})
		assert.Equal(t, invoice.ID.String(), entry["invoice_id"])
	})

	t.Run("returns 404 for unknown invoice", func(t *testing.T) {
		mocks := newBillingHandlerMocks()
		mocks.invoiceRepo.On("FindByIDForOwner", mock.Anything, handlerOwnerID, mock.Anything).Return(nil, nil)

		router := paymentTestRouter(mocks, nil)

		w := serveJSON(t, router, http.MethodGet, "/api/v1/billing/invoices/"+uuid.NewString()+"/payments", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
