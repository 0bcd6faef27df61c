package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/persistence/models"
)

// GormPaymentRepository implements PaymentRepository using GORM.
// Payments are append-only; Save only ever inserts new rows or rewrites
// the metadata fields of an existing row.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Save persists a payment record
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForOwner finds a payment by ID scoped to an owner
func (r *GormPaymentRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForOwner finds all payments for an owner with filtering
func (r *GormPaymentRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]billing.Payment, error) {
	var paymentModels []models.PaymentModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.PaymentModel{}).
			Where("owner_id = ?", ownerID),
		filter,
	)

	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}

	payments := make([]billing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// CountForOwner counts payments for an owner with optional filters
func (r *GormPaymentRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("owner_id = ?", ownerID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByInvoice finds all payments recorded against an invoice
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("payment_date ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}

	payments := make([]billing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// SumConfirmedByInvoice returns the sum of confirmed payment amounts
// recorded against the invoice
func (r *GormPaymentRepository) SumConfirmedByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("invoice_id = ? AND status = ?", invoiceID, billing.PaymentStatusConfirmed).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// applyFilter applies filter options to the query
func (r *GormPaymentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, PaymentSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPaymentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("transaction_id ILIKE ? OR description ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "invoice_id":
			query = query.Where("invoice_id = ?", value)
		case "property_id":
			query = query.Where("property_id = ?", value)
		case "unit_id":
			query = query.Where("unit_id = ?", value)
		case "tenant_id":
			query = query.Where("tenant_id = ?", value)
		case "mode":
			query = query.Where("mode = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("payment_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("payment_date <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
