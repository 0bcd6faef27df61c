package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	billingapp "github.com/rentdesk/backend/internal/application/billing"
	"github.com/rentdesk/backend/internal/domain/billing"
)

// IdempotencyKeyHeader carries the client-supplied deduplication key
// for payment recording.
const IdempotencyKeyHeader = "X-Idempotency-Key"

// PaymentHandler handles payment-related API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *billingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// RecordPaymentRequest represents a request to record a received payment
// @Description Request body for recording a payment
type RecordPaymentRequest struct {
	InvoiceID     *string   `json:"invoice_id" binding:"omitempty,uuid"`
	PropertyID    string    `json:"property_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440003"`
	UnitID        string    `json:"unit_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440004"`
	TenantID      string    `json:"tenant_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440005"`
	Amount        float64   `json:"amount" binding:"required,gt=0" example:"25000.00"`
	PaymentDate   time.Time `json:"payment_date" binding:"required" example:"2026-01-20T00:00:00Z"`
	Type          string    `json:"type" binding:"required,oneof=full partial" example:"full"`
	Mode          string    `json:"mode" binding:"required,oneof=mpesa cash bank cheque" example:"mpesa"`
	TransactionID string    `json:"transaction_id" binding:"max=100" example:"QA12BC34DE"`
	Description   string    `json:"description" binding:"max=500" example:"January rent"`
	ReceiptURL    string    `json:"receipt_url" binding:"omitempty,url"`
}

// Record godoc
// @ID           recordPayment
// @Summary      Record a payment
// @Description  Record a received payment, optionally applying it to an invoice. Supply X-Idempotency-Key to deduplicate retries.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Idempotency-Key header string false "Idempotency key for safe retries"
// @Param        request body RecordPaymentRequest true "Payment recording request"
// @Success      201 {object} APIResponse[PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Owner identification required")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := billingapp.RecordPaymentRequest{
		OwnerID:        ownerID,
		PropertyID:     uuid.MustParse(req.PropertyID),
		UnitID:         uuid.MustParse(req.UnitID),
		TenantID:       uuid.MustParse(req.TenantID),
		Amount:         decimal.NewFromFloat(req.Amount),
		PaymentDate:    req.PaymentDate,
		Type:           billing.PaymentType(req.Type),
		Mode:           billing.PaymentMode(req.Mode),
		TransactionID:  req.TransactionID,
		Description:    req.Description,
		ReceiptURL:     req.ReceiptURL,
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	}

	if req.InvoiceID != nil {
		invoiceID := uuid.MustParse(*req.InvoiceID)
		appReq.InvoiceID = &invoiceID
	}

	if userID, err := getUserID(c); err == nil {
		appReq.CreatedBy = &userID
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toPaymentResponse(payment))
}

// GetByID godoc
// @ID           getPaymentById
// @Summary      Get payment by ID
// @Description  Retrieve a single payment record
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/payments/{id} [get]
func (h *PaymentHandler) GetByID(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Owner identification required")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), ownerID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toPaymentResponse(payment))
}

// List godoc
// @ID           listPayments
// @Summary      List payments
// @Description  Retrieve a paginated list of the owner's payments with optional filtering
// @Tags         payments
// @Produce      json
// @Param        mode query string false "Payment mode" Enums(mpesa, cash, bank, cheque)
// @Param        type query string false "Payment type" Enums(full, partial)
// @Param        property_id query string false "Property ID" format(uuid)
// @Param        unit_id query string false "Unit ID" format(uuid)
// @Param        tenant_id query string false "Tenant ID" format(uuid)
// @Param        invoice_id query string false "Invoice ID" format(uuid)
// @Param        search query string false "Search term (transaction ID)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Owner identification required")
		return
	}

	filter := buildListFilter(c, "mode", "type", "property_id", "unit_id", "tenant_id", "invoice_id")

	result, err := h.paymentService.ListPayments(c.Request.Context(), ownerID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	items := make([]PaymentResponse, 0, len(result.Items))
	for idx := range result.Items {
		items = append(items, toPaymentResponse(&result.Items[idx]))
	}

	h.SuccessWithMeta(c, items, result.Total, filter.Page, filter.PageSize)
}

// ListByInvoice godoc
// @ID           listInvoicePayments
// @Summary      List payments for an invoice
// @Description  Retrieve all payments applied to a specific invoice
// @Tags         payments
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[[]PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/invoices/{id}/payments [get]
func (h *PaymentHandler) ListByInvoice(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Owner identification required")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	payments, err := h.paymentService.ListInvoicePayments(c.Request.Context(), ownerID, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	items := make([]PaymentResponse, 0, len(payments))
	for idx := range payments {
		items = append(items, toPaymentResponse(&payments[idx]))
	}

	h.Success(c, items)
}
