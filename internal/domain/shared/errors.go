package shared

// DomainError is a business-rule violation with a stable machine
// code. The HTTP layer maps codes to statuses; Message is safe to
// show to API clients.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError builds a DomainError from a code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Shared error values. Modules define their own codes for rules
// specific to them; these cover the cross-cutting cases.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvoiceCancelled    = NewDomainError("INVOICE_CANCELLED", "Invoice is cancelled and cannot be modified")
	ErrNotBillable         = NewDomainError("NOT_BILLABLE", "Record is not in a billable state")
)
