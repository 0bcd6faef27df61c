package handler

import (
	"time"

	"github.com/rentdesk/backend/internal/domain/billing"
)

// PaymentResponse represents a payment in API responses
// @Description Payment details returned by the API
type PaymentResponse struct {
	ID            string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440010"`
	InvoiceID     *string `json:"invoice_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	PropertyID    string  `json:"property_id" example:"550e8400-e29b-41d4-a716-446655440003"`
	UnitID        string  `json:"unit_id" example:"550e8400-e29b-41d4-a716-446655440004"`
	TenantID      string  `json:"tenant_id" example:"550e8400-e29b-41d4-a716-446655440005"`
	Amount        float64 `json:"amount" example:"25000.00"`
	PaymentDate   string  `json:"payment_date" example:"2026-01-20T00:00:00Z"`
	Type          string  `json:"type" example:"full" enums:"full,partial"`
	Mode          string  `json:"mode" example:"mpesa" enums:"mpesa,cash,bank,cheque"`
	Status        string  `json:"status" example:"confirmed"`
	TransactionID string  `json:"transaction_id,omitempty" example:"QA12BC34DE"`
	Description   string  `json:"description,omitempty" example:"January rent"`
	ReceiptURL    string  `json:"receipt_url,omitempty"`
	CreatedAt     string  `json:"created_at" example:"2026-01-20T10:15:00Z"`
	UpdatedAt     string  `json:"updated_at" example:"2026-01-20T10:15:00Z"`
}

func toPaymentResponse(payment *billing.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:            payment.ID.String(),
		PropertyID:    payment.PropertyID.String(),
		UnitID:        payment.UnitID.String(),
		TenantID:      payment.TenantID.String(),
		Amount:        payment.Amount.InexactFloat64(),
		PaymentDate:   payment.PaymentDate.Format(time.RFC3339),
		Type:          string(payment.Type),
		Mode:          string(payment.Mode),
		Status:        string(payment.Status),
		TransactionID: payment.TransactionID,
		Description:   payment.Description,
		ReceiptURL:    payment.ReceiptURL,
		CreatedAt:     payment.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     payment.UpdatedAt.Format(time.RFC3339),
	}
	if payment.InvoiceID != nil {
		invoiceID := payment.InvoiceID.String()
		resp.InvoiceID = &invoiceID
	}
	return resp
}
