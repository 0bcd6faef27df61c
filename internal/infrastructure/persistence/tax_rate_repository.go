package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/persistence/models"
)

// GormTaxRateRepository implements TaxRateRepository using GORM
type GormTaxRateRepository struct {
	db *gorm.DB
}

// NewGormTaxRateRepository creates a new GormTaxRateRepository
func NewGormTaxRateRepository(db *gorm.DB) *GormTaxRateRepository {
	return &GormTaxRateRepository{db: db}
}

// Save creates or updates a tax rate
func (r *GormTaxRateRepository) Save(ctx context.Context, rate *billing.TaxRate) error {
	model := models.TaxRateModelFromDomain(rate)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a tax rate by its ID
func (r *GormTaxRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.TaxRate, error) {
	var model models.TaxRateModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns the full tax rate catalog
func (r *GormTaxRateRepository) FindAll(ctx context.Context) ([]billing.TaxRate, error) {
	var rateModels []models.TaxRateModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rateModels).Error; err != nil {
		return nil, err
	}

	rates := make([]billing.TaxRate, len(rateModels))
	for i, model := range rateModels {
		rates[i] = *model.ToDomain()
	}
	return rates, nil
}

// Delete removes a tax rate
func (r *GormTaxRateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TaxRateModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormTaxRateRepository implements TaxRateRepository
var _ billing.TaxRateRepository = (*GormTaxRateRepository)(nil)
