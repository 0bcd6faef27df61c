package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeDuplicateSubmission is used when an idempotency key is replayed
	ErrCodeDuplicateSubmission = "ERR_DUPLICATE_SUBMISSION"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:        http.StatusUnprocessableEntity,
	ErrCodeDuplicateSubmission: http.StatusConflict,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the standardized
// transport codes. Codes not listed here pass through NormalizeErrorCode
// unchanged and default to 500 in GetHTTPStatus.
var DomainErrorCodeMapping = map[string]string{
	// Lookups
	"NOT_FOUND":          ErrCodeNotFound,
	"INVOICE_NOT_FOUND":  ErrCodeNotFound,
	"PAYMENT_NOT_FOUND":  ErrCodeNotFound,
	"ITEM_NOT_FOUND":     ErrCodeNotFound,
	"TAX_RATE_NOT_FOUND": ErrCodeNotFound,
	"BILLABLE_NOT_FOUND": ErrCodeNotFound,
	"ALREADY_EXISTS":     ErrCodeAlreadyExists,

	// Validation failures on input values
	"INVALID_INPUT":          ErrCodeInvalidInput,
	"INVALID_AMOUNT":         ErrCodeValidation,
	"INVALID_DESCRIPTION":    ErrCodeValidation,
	"INVALID_DUE_DATE":       ErrCodeValidation,
	"INVALID_INVOICE_NUMBER": ErrCodeValidation,
	"INVALID_ITEM_TYPE":      ErrCodeValidation,
	"INVALID_PAYMENT_DATE":   ErrCodeValidation,
	"INVALID_PAYMENT_MODE":   ErrCodeValidation,
	"INVALID_PAYMENT_TYPE":   ErrCodeValidation,
	"INVALID_PROPERTY":       ErrCodeValidation,
	"INVALID_REASON":         ErrCodeValidation,
	"INVALID_TAX_NAME":       ErrCodeValidation,
	"INVALID_TAX_PERCENTAGE": ErrCodeValidation,
	"INVALID_TAX_RATE":       ErrCodeValidation,
	"INVALID_TENANT":         ErrCodeValidation,
	"INVALID_UNIT":           ErrCodeValidation,

	// Lifecycle rules
	"INVALID_STATE":     ErrCodeInvalidState,
	"INVOICE_CANCELLED": ErrCodeInvalidState,
	"ITEM_ALREADY_VOID": ErrCodeInvalidState,
	"NO_ITEMS":          ErrCodeInvalidState,
	"NOT_BILLABLE":      ErrCodeBusinessRule,
	"NOT_PAST_DUE":      ErrCodeBusinessRule,

	// Concurrency and idempotency
	"OPTIMISTIC_LOCK_ERROR": ErrCodeConcurrencyConflict,
	"CONCURRENCY_CONFLICT":  ErrCodeConcurrencyConflict,
	"DUPLICATE_SUBMISSION":  ErrCodeDuplicateSubmission,

	// Auth
	"UNAUTHORIZED": ErrCodeUnauthorized,
	"FORBIDDEN":    ErrCodeForbidden,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
