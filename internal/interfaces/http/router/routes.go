package router

import (
	"github.com/rentdesk/backend/internal/interfaces/http/handler"
)

// BillingRoutes builds the /billing route group over the invoice and
// payment handlers.
func BillingRoutes(invoices *handler.InvoiceHandler, payments *handler.PaymentHandler) *DomainGroup {
	billing := NewDomainGroup("billing", "/billing")

	billing.GET("/invoices", invoices.List).
		POST("/invoices", invoices.Create).
		GET("/invoices/summary", invoices.Summary).
		GET("/invoices/:id", invoices.GetByID).
		POST("/invoices/:id/send", invoices.Send).
		POST("/invoices/:id/void", invoices.Void).
		POST("/invoices/:id/items/:itemId/void", invoices.VoidItem).
		GET("/invoices/:id/payments", payments.ListByInvoice)

	billing.GET("/payments", payments.List).
		POST("/payments", payments.Record).
		GET("/payments/:id", payments.GetByID)

	return billing
}

// SystemRoutes builds the /system route group for diagnostics endpoints
func SystemRoutes(system *handler.SystemHandler) *DomainGroup {
	routes := NewDomainGroup("system", "/system")

	routes.GET("/info", system.GetSystemInfo).
		GET("/ping", system.Ping)

	return routes
}
