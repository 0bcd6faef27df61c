package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/backend/internal/domain/billing"
)

func buildBillableRecord(ownerID, unitID uuid.UUID, kind billing.BillableKind, status billing.BillableStatus, amount int64) *billing.BillableRecord {
	now := time.Now()
	return &billing.BillableRecord{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Kind:        kind,
		UnitID:      unitID,
		TenantID:    uuid.New(),
		Description: "Water usage 12 units",
		Amount:      decimal.NewFromInt(amount),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestGormBillableSourceRepository_FindByIDsForOwner(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillableSourceRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()
	unitID := uuid.New()

	reading := buildBillableRecord(ownerID, unitID, billing.BillableKindUtilityReading, billing.BillableStatusSaved, 1200)
	deposit := buildBillableRecord(ownerID, unitID, billing.BillableKindDepositRecord, billing.BillableStatusSaved, 30000)
	require.NoError(t, repo.Save(ctx, reading))
	require.NoError(t, repo.Save(ctx, deposit))

	t.Run("merges records from both source tables", func(t *testing.T) {
		records, err := repo.FindByIDsForOwner(ctx, ownerID, []uuid.UUID{reading.ID, deposit.ID})
		require.NoError(t, err)
		require.Len(t, records, 2)

		kinds := map[billing.BillableKind]bool{}
		for _, record := range records {
			kinds[record.Kind] = true
		}
		assert.True(t, kinds[billing.BillableKindUtilityReading])
		assert.True(t, kinds[billing.BillableKindDepositRecord])
	})

	t.Run("unknown IDs are absent from the result", func(t *testing.T) {
		records, err := repo.FindByIDsForOwner(ctx, ownerID, []uuid.UUID{reading.ID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("empty ID list returns nothing", func(t *testing.T) {
		records, err := repo.FindByIDsForOwner(ctx, ownerID, nil)
		require.NoError(t, err)
		assert.Nil(t, records)
	})

	t.Run("other owners' records are hidden", func(t *testing.T) {
		records, err := repo.FindByIDsForOwner(ctx, uuid.New(), []uuid.UUID{reading.ID, deposit.ID})
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestGormBillableSourceRepository_FindSavedForOwner(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillableSourceRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()
	unitID := uuid.New()

	saved := buildBillableRecord(ownerID, unitID, billing.BillableKindUtilityReading, billing.BillableStatusSaved, 1200)
	pending := buildBillableRecord(ownerID, unitID, billing.BillableKindUtilityReading, billing.BillableStatusPending, 800)
	invoiced := buildBillableRecord(ownerID, unitID, billing.BillableKindDepositRecord, billing.BillableStatusInvoiced, 30000)
	otherUnit := buildBillableRecord(ownerID, uuid.New(), billing.BillableKindUtilityReading, billing.BillableStatusSaved, 500)

	for _, record := range []*billing.BillableRecord{saved, pending, invoiced, otherUnit} {
		require.NoError(t, repo.Save(ctx, record))
	}

	records, err := repo.FindSavedForOwner(ctx, ownerID, unitID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, saved.ID, records[0].ID)
	assert.Equal(t, billing.BillableStatusSaved, records[0].Status)
}

func TestGormBillableSourceRepository_Save(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillableSourceRepository(db)
	ctx := context.Background()

	t.Run("persists a status flip", func(t *testing.T) {
		ownerID := uuid.New()
		record := buildBillableRecord(ownerID, uuid.New(), billing.BillableKindDepositRecord, billing.BillableStatusSaved, 30000)
		require.NoError(t, repo.Save(ctx, record))

		require.NoError(t, record.MarkInvoiced())
		require.NoError(t, repo.Save(ctx, record))

		records, err := repo.FindByIDsForOwner(ctx, ownerID, []uuid.UUID{record.ID})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, billing.BillableStatusInvoiced, records[0].Status)
	})

	t.Run("rejects an unknown kind", func(t *testing.T) {
		record := buildBillableRecord(uuid.New(), uuid.New(), billing.BillableKind("water_meter"), billing.BillableStatusSaved, 100)
		err := repo.Save(ctx, record)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown billable kind")
	})
}
