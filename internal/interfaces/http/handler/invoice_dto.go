package handler

import (
	"time"

	"github.com/rentdesk/backend/internal/domain/billing"
)

// InvoiceItemResponse represents an invoice line item in API responses
// @Description Invoice line item details
type InvoiceItemResponse struct {
	ID          string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Type        string  `json:"type" example:"rent" enums:"rent,utility,deposit,penalty,other"`
	Description string  `json:"description" example:"Rent for January 2026"`
	Amount      float64 `json:"amount" example:"25000.00"`
	Status      string  `json:"status" example:"active" enums:"active,void"`
	ReferenceID *string `json:"reference_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440002"`
	VoidedAt    *string `json:"voided_at,omitempty" example:"2026-02-01T12:00:00Z"`
}

// InvoiceResponse represents an invoice in API responses
// @Description Invoice details returned by the API
type InvoiceResponse struct {
	ID            string                `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	InvoiceNumber string                `json:"invoice_number" example:"INV-20260115-0042"`
	PropertyID    string                `json:"property_id" example:"550e8400-e29b-41d4-a716-446655440003"`
	UnitID        string                `json:"unit_id" example:"550e8400-e29b-41d4-a716-446655440004"`
	TenantID      string                `json:"tenant_id" example:"550e8400-e29b-41d4-a716-446655440005"`
	Status        string                `json:"status" example:"sent" enums:"draft,sent,paid,partially_paid,overdue,cancelled"`
	Items         []InvoiceItemResponse `json:"items"`
	Subtotal      float64               `json:"subtotal" example:"25150.00"`
	TaxAmount     float64               `json:"tax_amount" example:"4024.00"`
	TotalAmount   float64               `json:"total_amount" example:"29174.00"`
	DueDate       string                `json:"due_date" example:"2026-02-01T00:00:00Z"`
	Notes         string                `json:"notes,omitempty" example:"January billing"`
	SentAt        *string               `json:"sent_at,omitempty" example:"2026-01-15T09:00:00Z"`
	CancelledAt   *string               `json:"cancelled_at,omitempty"`
	CancelReason  string                `json:"cancel_reason,omitempty"`
	CreatedAt     string                `json:"created_at" example:"2026-01-15T08:55:00Z"`
	UpdatedAt     string                `json:"updated_at" example:"2026-01-15T09:00:00Z"`
	Version       int                   `json:"version" example:"1"`
}

// InvoiceListResponse represents an invoice list item
// @Description Invoice list item with totals but without line items
type InvoiceListResponse struct {
	ID            string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	InvoiceNumber string  `json:"invoice_number" example:"INV-20260115-0042"`
	PropertyID    string  `json:"property_id" example:"550e8400-e29b-41d4-a716-446655440003"`
	UnitID        string  `json:"unit_id" example:"550e8400-e29b-41d4-a716-446655440004"`
	TenantID      string  `json:"tenant_id" example:"550e8400-e29b-41d4-a716-446655440005"`
	Status        string  `json:"status" example:"sent" enums:"draft,sent,paid,partially_paid,overdue,cancelled"`
	TotalAmount   float64 `json:"total_amount" example:"29174.00"`
	DueDate       string  `json:"due_date" example:"2026-02-01T00:00:00Z"`
	CreatedAt     string  `json:"created_at" example:"2026-01-15T08:55:00Z"`
}

// InvoiceSummaryResponse represents aggregate invoice figures
// @Description Aggregate invoice figures for the owner dashboard
type InvoiceSummaryResponse struct {
	TotalInvoiced    float64          `json:"total_invoiced" example:"120000.00"`
	TotalCollected   float64          `json:"total_collected" example:"85000.00"`
	TotalOutstanding float64          `json:"total_outstanding" example:"35000.00"`
	CountByStatus    map[string]int64 `json:"count_by_status"`
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func toInvoiceItemResponse(item *billing.InvoiceItem) InvoiceItemResponse {
	resp := InvoiceItemResponse{
		ID:          item.ID.String(),
		Type:        string(item.Type),
		Description: item.Description,
		Amount:      item.Amount.InexactFloat64(),
		Status:      string(item.Status),
		VoidedAt:    formatTimePtr(item.VoidedAt),
	}
	if item.ReferenceID != nil {
		ref := item.ReferenceID.String()
		resp.ReferenceID = &ref
	}
	return resp
}

func toInvoiceResponse(invoice *billing.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(invoice.Items))
	for idx := range invoice.Items {
		items = append(items, toInvoiceItemResponse(&invoice.Items[idx]))
	}

	return InvoiceResponse{
		ID:            invoice.ID.String(),
		InvoiceNumber: invoice.InvoiceNumber,
		PropertyID:    invoice.PropertyID.String(),
		UnitID:        invoice.UnitID.String(),
		TenantID:      invoice.TenantID.String(),
		Status:        string(invoice.Status),
		Items:         items,
		Subtotal:      invoice.Subtotal.InexactFloat64(),
		TaxAmount:     invoice.TaxAmount.InexactFloat64(),
		TotalAmount:   invoice.TotalAmount.InexactFloat64(),
		DueDate:       invoice.DueDate.Format(time.RFC3339),
		Notes:         invoice.Notes,
		SentAt:        formatTimePtr(invoice.SentAt),
		CancelledAt:   formatTimePtr(invoice.CancelledAt),
		CancelReason:  invoice.CancelReason,
		CreatedAt:     invoice.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     invoice.UpdatedAt.Format(time.RFC3339),
		Version:       invoice.Version,
	}
}

func toInvoiceListResponse(invoice *billing.Invoice) InvoiceListResponse {
	return InvoiceListResponse{
		ID:            invoice.ID.String(),
		InvoiceNumber: invoice.InvoiceNumber,
		PropertyID:    invoice.PropertyID.String(),
		UnitID:        invoice.UnitID.String(),
		TenantID:      invoice.TenantID.String(),
		Status:        string(invoice.Status),
		TotalAmount:   invoice.TotalAmount.InexactFloat64(),
		DueDate:       invoice.DueDate.Format(time.RFC3339),
		CreatedAt:     invoice.CreatedAt.Format(time.RFC3339),
	}
}

func toInvoiceSummaryResponse(summary *billing.InvoiceSummary) InvoiceSummaryResponse {
	counts := make(map[string]int64, len(summary.CountByStatus))
	for status, count := range summary.CountByStatus {
		counts[string(status)] = count
	}

	return InvoiceSummaryResponse{
		TotalInvoiced:    summary.TotalInvoiced.InexactFloat64(),
		TotalCollected:   summary.TotalCollected.InexactFloat64(),
		TotalOutstanding: summary.TotalOutstanding.InexactFloat64(),
		CountByStatus:    counts,
	}
}
