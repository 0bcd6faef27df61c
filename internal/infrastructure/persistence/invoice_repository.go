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

// GormInvoiceRepository implements InvoiceRepository using GORM.
// Lookups return (nil, nil) when no row matches so callers can map the
// miss to a context-specific error code.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Save creates or updates an invoice together with its items
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return err
		}
		return r.saveItems(tx, invoice)
	})
}

// SaveWithLock saves the invoice only if the stored version matches the
// version the aggregate was loaded with. The version is bumped here so
// callers work with plain domain mutations.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	loadedVersion := invoice.Version
	invoice.IncrementVersion()
	invoice.UpdatedAt = time.Now()
	model := models.InvoiceModelFromDomain(invoice)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InvoiceModel{}).
			Where("id = ? AND version = ?", invoice.ID, loadedVersion).
			Updates(map[string]interface{}{
				"status":        model.Status,
				"subtotal":      model.Subtotal,
				"tax_amount":    model.TaxAmount,
				"total_amount":  model.TotalAmount,
				"tax_rate_id":   model.TaxRateID,
				"due_date":      model.DueDate,
				"notes":         model.Notes,
				"sent_at":       model.SentAt,
				"cancelled_at":  model.CancelledAt,
				"cancel_reason": model.CancelReason,
				"version":       model.Version,
				"updated_at":    model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The invoice has been modified by another transaction")
		}
		return r.saveItems(tx, invoice)
	})
	if err != nil {
		invoice.Version = loadedVersion
		return err
	}
	return nil
}

// saveItems reconciles the stored items with the aggregate's items
func (r *GormInvoiceRepository) saveItems(tx *gorm.DB, invoice *billing.Invoice) error {
	currentItemIDs := make([]uuid.UUID, len(invoice.Items))
	for i, item := range invoice.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("invoice_id = ? AND id NOT IN ?", invoice.ID, currentItemIDs).
			Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("invoice_id = ?", invoice.ID).
			Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
	}

	for i := range invoice.Items {
		invoice.Items[i].InvoiceID = invoice.ID
		itemModel := models.InvoiceItemModelFromDomain(&invoice.Items[i])
		if err := tx.Save(itemModel).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForOwner finds an invoice by ID scoped to an owner
func (r *GormInvoiceRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an invoice by its globally unique number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("invoice_number = ?", invoiceNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForOwner finds all invoices for an owner with filtering
func (r *GormInvoiceRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
			Preload("Items").
			Where("owner_id = ?", ownerID),
		filter,
	)

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// CountForOwner counts invoices for an owner with optional filters
func (r *GormInvoiceRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("owner_id = ?", ownerID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindDueForOverdue returns open invoices whose due date has passed,
// across all owners, for the overdue sweep
func (r *GormInvoiceRepository) FindDueForOverdue(ctx context.Context, asOf time.Time, limit int) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Preload("Items").
		Where("status IN ? AND due_date < ?",
			[]string{string(billing.InvoiceStatusSent), string(billing.InvoiceStatusPartiallyPaid)},
			asOf).
		Order("due_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// SummaryForOwner aggregates invoice and collection figures for an owner
func (r *GormInvoiceRepository) SummaryForOwner(ctx context.Context, ownerID uuid.UUID) (*billing.InvoiceSummary, error) {
	var invoiced struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Select("COALESCE(SUM(total_amount), 0) as total").
		Where("owner_id = ? AND status NOT IN ?", ownerID,
			[]string{string(billing.InvoiceStatusDraft), string(billing.InvoiceStatusCancelled)}).
		Scan(&invoiced).Error; err != nil {
		return nil, err
	}

	var collected struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("owner_id = ? AND status = ?", ownerID, billing.PaymentStatusConfirmed).
		Scan(&collected).Error; err != nil {
		return nil, err
	}

	// Outstanding is what remains on open invoices after their attached
	// confirmed payments. Paid and cancelled invoices carry no balance.
	var outstanding struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Table("invoices").
		Select("COALESCE(SUM(invoices.total_amount - COALESCE(paid.amount, 0)), 0) as total").
		Joins("LEFT JOIN (SELECT invoice_id, SUM(amount) AS amount FROM payments WHERE status = ? GROUP BY invoice_id) paid ON paid.invoice_id = invoices.id",
			billing.PaymentStatusConfirmed).
		Where("invoices.owner_id = ? AND invoices.status IN ?", ownerID,
			[]string{
				string(billing.InvoiceStatusSent),
				string(billing.InvoiceStatusPartiallyPaid),
				string(billing.InvoiceStatusOverdue),
			}).
		Scan(&outstanding).Error; err != nil {
		return nil, err
	}

	var statusCounts []struct {
		Status billing.InvoiceStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Select("status, COUNT(*) as count").
		Where("owner_id = ?", ownerID).
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	summary := &billing.InvoiceSummary{
		TotalInvoiced:    invoiced.Total,
		TotalCollected:   collected.Total,
		TotalOutstanding: outstanding.Total,
		CountByStatus:    make(map[billing.InvoiceStatus]int64, len(statusCounts)),
	}
	for _, sc := range statusCounts {
		summary.CountByStatus[sc.Status] = sc.Count
	}
	return summary, nil
}

// applyFilter applies filter options to the query
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("invoice_number ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "property_id":
			query = query.Where("property_id = ?", value)
		case "unit_id":
			query = query.Where("unit_id = ?", value)
		case "tenant_id":
			query = query.Where("tenant_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "due_before":
			if t, ok := value.(time.Time); ok {
				query = query.Where("due_date < ?", t)
			}
		case "due_after":
			if t, ok := value.(time.Time); ok {
				query = query.Where("due_date > ?", t)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
