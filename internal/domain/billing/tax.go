package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentdesk/backend/internal/domain/shared"
)

// TaxRate is a named percentage selectable when composing an invoice,
// e.g. "VAT 16%". The percentage carries two decimal places.
type TaxRate struct {
	ID         uuid.UUID
	Name       string
	Percentage decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewTaxRate creates a new tax rate
func NewTaxRate(name string, percentage decimal.Decimal) (*TaxRate, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TAX_NAME", "Tax rate name cannot be empty")
	}
	if percentage.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_PERCENTAGE", "Tax percentage cannot be negative")
	}
	if percentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_TAX_PERCENTAGE", "Tax percentage cannot exceed 100")
	}

	now := time.Now()
	return &TaxRate{
		ID:         uuid.New(),
		Name:       name,
		Percentage: percentage.Round(2),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
