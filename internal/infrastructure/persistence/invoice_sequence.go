package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/infrastructure/persistence/models"
)

// invoiceSequenceRowID is the primary key of the single counter row
const invoiceSequenceRowID = 1

// GormInvoiceNumberGenerator issues invoice numbers from a single-row
// counter table. The increment runs in its own transaction under a row
// lock, so concurrent callers serialize on the row and never see the
// same value. A caller that later aborts its invoice burns the number;
// the sequence has gaps but never duplicates.
//
// Format: INV-YYYYMMDD-NNNN. The counter is global and never resets;
// past 9999 the suffix simply grows wider.
type GormInvoiceNumberGenerator struct {
	db *gorm.DB
}

// NewGormInvoiceNumberGenerator creates a new GormInvoiceNumberGenerator
func NewGormInvoiceNumberGenerator(db *gorm.DB) *GormInvoiceNumberGenerator {
	return &GormInvoiceNumberGenerator{db: db}
}

// NextInvoiceNumber reserves and returns the next invoice number
func (g *GormInvoiceNumberGenerator) NextInvoiceNumber(ctx context.Context) (string, error) {
	var next int64
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq models.InvoiceSequenceModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&seq, "id = ?", invoiceSequenceRowID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seq = models.InvoiceSequenceModel{ID: invoiceSequenceRowID, LastValue: 0}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		seq.LastValue++
		seq.UpdatedAt = time.Now()
		if err := tx.Model(&models.InvoiceSequenceModel{}).
			Where("id = ?", invoiceSequenceRowID).
			Updates(map[string]interface{}{
				"last_value": seq.LastValue,
				"updated_at": seq.UpdatedAt,
			}).Error; err != nil {
			return err
		}

		next = seq.LastValue
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to reserve invoice number: %w", err)
	}

	return fmt.Sprintf("INV-%s-%04d", time.Now().Format("20060102"), next), nil
}

// Ensure GormInvoiceNumberGenerator implements InvoiceNumberGenerator
var _ billing.InvoiceNumberGenerator = (*GormInvoiceNumberGenerator)(nil)
