package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/infrastructure/persistence/models"
)

// GormBillableSourceRepository implements BillableSourceRepository over
// the utility_readings and deposit_records tables. Both tables share
// the same billable columns, so queries run against each and the
// results are merged.
type GormBillableSourceRepository struct {
	db *gorm.DB
}

// NewGormBillableSourceRepository creates a new GormBillableSourceRepository
func NewGormBillableSourceRepository(db *gorm.DB) *GormBillableSourceRepository {
	return &GormBillableSourceRepository{db: db}
}

// FindByIDsForOwner loads billable records by ID scoped to an owner.
// IDs that match no row in either table are silently absent from the
// result; callers compare counts to detect misses.
func (r *GormBillableSourceRepository) FindByIDsForOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]billing.BillableRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var readings []models.UtilityReadingModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Find(&readings).Error; err != nil {
		return nil, err
	}

	var deposits []models.DepositRecordModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Find(&deposits).Error; err != nil {
		return nil, err
	}

	records := make([]billing.BillableRecord, 0, len(readings)+len(deposits))
	for i := range readings {
		records = append(records, *readings[i].ToDomain())
	}
	for i := range deposits {
		records = append(records, *deposits[i].ToDomain())
	}
	return records, nil
}

// FindSavedForOwner returns the records ready to be pulled onto an
// invoice for a unit
func (r *GormBillableSourceRepository) FindSavedForOwner(ctx context.Context, ownerID, unitID uuid.UUID) ([]billing.BillableRecord, error) {
	var readings []models.UtilityReadingModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND unit_id = ? AND status = ?", ownerID, unitID, billing.BillableStatusSaved).
		Order("created_at ASC").
		Find(&readings).Error; err != nil {
		return nil, err
	}

	var deposits []models.DepositRecordModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND unit_id = ? AND status = ?", ownerID, unitID, billing.BillableStatusSaved).
		Order("created_at ASC").
		Find(&deposits).Error; err != nil {
		return nil, err
	}

	records := make([]billing.BillableRecord, 0, len(readings)+len(deposits))
	for i := range readings {
		records = append(records, *readings[i].ToDomain())
	}
	for i := range deposits {
		records = append(records, *deposits[i].ToDomain())
	}
	return records, nil
}

// Save persists a billable record back to its source table
func (r *GormBillableSourceRepository) Save(ctx context.Context, record *billing.BillableRecord) error {
	switch record.Kind {
	case billing.BillableKindUtilityReading:
		return r.db.WithContext(ctx).Save(models.UtilityReadingModelFromDomain(record)).Error
	case billing.BillableKindDepositRecord:
		return r.db.WithContext(ctx).Save(models.DepositRecordModelFromDomain(record)).Error
	}
	return fmt.Errorf("unknown billable kind: %s", record.Kind)
}

// Ensure GormBillableSourceRepository implements BillableSourceRepository
var _ billing.BillableSourceRepository = (*GormBillableSourceRepository)(nil)
