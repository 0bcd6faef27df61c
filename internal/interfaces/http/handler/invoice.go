package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	billingapp "github.com/rentdesk/backend/internal/application/billing"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
)

// InvoiceHandler handles invoice-related API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// InvoiceItemRequest represents a manually entered line item
// @Description Manually entered invoice line item
type InvoiceItemRequest struct {
	Type        string  `json:"type" binding:"required,oneof=rent utility deposit penalty other" example:"rent"`
	Description string  `json:"description" binding:"required,min=1,max=500" example:"Rent for January 2026"`
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"25000.00"`
}

// CreateInvoiceRequest represents a request to compose a new invoice
// @Description Request body for composing a new draft invoice
type CreateInvoiceRequest struct {
	PropertyID  string               `json:"property_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440003"`
	UnitID      string               `json:"unit_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440004"`
	TenantID    string               `json:"tenant_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440005"`
	DueDate     time.Time            `json:"due_date" binding:"required" example:"2026-02-01T00:00:00Z"`
	Items       []InvoiceItemRequest `json:"items" binding:"omitempty,dive"`
	BillableIDs []string             `json:"billable_ids" binding:"omitempty,dive,uuid"`
	TaxRateID   *string              `json:"tax_rate_id" binding:"omitempty,uuid"`
	Notes       string               `json:"notes" binding:"max=1000" example:"January billing"`
}

// VoidInvoiceRequest represents a request to cancel an invoice
// @Description Request body for cancelling an invoice
type VoidInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500" example:"Issued against the wrong unit"`
}

// Create godoc
// @ID           createInvoice
// @Summary      Create a new invoice
// @Description  Compose a draft invoice from manual items and saved billable records
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body CreateInvoiceRequest true "Invoice creation request"
// @Success      201 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Owner identification required")
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := billingapp.CreateInvoiceRequest{
		OwnerID: ownerID,
		DueDate: req.DueDate,
		Notes:   req.Notes,
	}

	// Binding already validated the UUID format
	appReq.PropertyID = uuid.MustParse(req.PropertyID)
	appReq.UnitID = uuid.MustParse(req.UnitID)
	appReq.TenantID = uuid.MustParse(req.TenantID)

	for _, item := range req.Items {
		appReq.Items = append(appReq.Items, billingapp.InvoiceItemInput{
			Type:        billing.ItemType(item.Type),
			Description: item.Description,
			Amount:      decimal.NewFromFloat(item.Amount),
		})
	}

	for _, id := range req.BillableIDs {
		appReq.BillableIDs = append(appReq.BillableIDs, uuid.MustParse(id))
	}

	if req.TaxRateID != nil {
		taxRateID := uuid.MustParse(*req.TaxRateID)
		appReq.TaxRateID = &taxRateID
	}

	if userID, err := getUserID(c); err == nil {
		appReq.CreatedBy = &userID
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toInvoiceResponse(invoice))
}

// GetByID godoc
// @ID           getInvoiceById
// @Summary      Get invoice by ID
// @Description  Retrieve an invoice with its line items
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
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

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), ownerID, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Description  Retrieve a paginated list of the owner's invoices with optional filtering
// @Tags         invoices
// @Produce      json
// @Param        status query string false "Invoice status" Enums(draft, sent, paid, partially_paid, overdue, cancelled)
// @Param        property_id query string false "Property ID" format(uuid)
// @Param        unit_id query string false "Unit ID" format(uuid)
// @Param        tenant_id query string false "Tenant ID" format(uuid)
// @Param        search query string false "Search term (invoice number)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]InvoiceListResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Owner identification required")
		return
	}

	filter := buildListFilter(c, "status", "property_id", "unit_id", "tenant_id")

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), ownerID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	items := make([]InvoiceListResponse, 0, len(result.Items))
	for idx := range result.Items {
		items = append(items, toInvoiceListResponse(&result.Items[idx]))
	}

	h.SuccessWithMeta(c, items, result.Total, filter.Page, filter.PageSize)
}

// Send godoc
// @ID           sendInvoice
// @Summary      Send an invoice
// @Description  Transition a draft invoice to sent, freezing its composition
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
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

	invoice, err := h.invoiceService.SendInvoice(c.Request.Context(), ownerID, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// VoidItem godoc
// @ID           voidInvoiceItem
// @Summary      Void an invoice line item
// @Description  Void a single line item and recompute the invoice totals
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        itemId path string true "Item ID" format(uuid)
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/invoices/{id}/items/{itemId}/void [post]
func (h *InvoiceHandler) VoidItem(c *gin.Context) {
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

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	invoice, err := h.invoiceService.VoidInvoiceItem(c.Request.Context(), ownerID, invoiceID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// Void godoc
// @ID           voidInvoice
// @Summary      Cancel an invoice
// @Description  Cancel the whole invoice, voiding all items and zeroing the totals
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body VoidInvoiceRequest true "Cancellation reason"
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/invoices/{id}/void [post]
func (h *InvoiceHandler) Void(c *gin.Context) {
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

	var req VoidInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.VoidInvoice(c.Request.Context(), ownerID, invoiceID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// Summary godoc
// @ID           getInvoiceSummary
// @Summary      Get invoice summary
// @Description  Aggregate invoiced, collected, and outstanding figures for the owner
// @Tags         invoices
// @Produce      json
// @Success      200 {object} APIResponse[InvoiceSummaryResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/invoices/summary [get]
func (h *InvoiceHandler) Summary(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Owner identification required")
		return
	}

	summary, err := h.invoiceService.GetSummary(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toInvoiceSummaryResponse(summary))
}

// buildListFilter extracts pagination, ordering, search, and the named
// query parameters into a repository filter
func buildListFilter(c *gin.Context, filterKeys ...string) shared.Filter {
	filter := shared.DefaultFilter()

	if page := c.Query("page"); page != "" {
		if parsed, err := parsePositiveInt(page); err == nil {
			filter.Page = parsed
		}
	}
	if pageSize := c.Query("page_size"); pageSize != "" {
		if parsed, err := parsePositiveInt(pageSize); err == nil && parsed <= 100 {
			filter.PageSize = parsed
		}
	}
	if orderBy := c.Query("order_by"); orderBy != "" {
		filter.OrderBy = orderBy
	}
	if orderDir := c.Query("order_dir"); orderDir == "asc" || orderDir == "desc" {
		filter.OrderDir = orderDir
	}
	filter.Search = c.Query("search")

	for _, key := range filterKeys {
		if value := c.Query(key); value != "" {
			filter.Filters[key] = value
		}
	}

	return filter
}
