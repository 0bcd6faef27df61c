package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/domain/shared/valueobject"
	"github.com/rentdesk/backend/internal/infrastructure/persistence/models"
)

// setupBillingTestDB creates an in-memory SQLite database with the billing schema
func setupBillingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.InvoiceModel{},
		&models.InvoiceItemModel{},
		&models.PaymentModel{},
		&models.TaxRateModel{},
		&models.UtilityReadingModel{},
		&models.DepositRecordModel{},
		&models.InvoiceSequenceModel{},
	)
	require.NoError(t, err)

	return db
}

func kes(amount int64) valueobject.Money {
	return valueobject.NewMoneyKES(decimal.NewFromInt(amount))
}

// buildTestInvoice creates a sent invoice with one rent item
func buildTestInvoice(t *testing.T, ownerID uuid.UUID, number string, total int64) *billing.Invoice {
	t.Helper()

	invoice, err := billing.NewInvoice(ownerID, number, uuid.New(), uuid.New(), uuid.New(), time.Now().AddDate(0, 0, 14))
	require.NoError(t, err)
	_, err = invoice.AddItem(billing.ItemTypeRent, "Monthly rent", kes(total), nil)
	require.NoError(t, err)
	require.NoError(t, invoice.MarkSent())
	invoice.ClearDomainEvents()
	return invoice
}

func TestGormInvoiceRepository_SaveAndFind(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	t.Run("saves and reloads the aggregate with its items", func(t *testing.T) {
		ownerID := uuid.New()
		invoice := buildTestInvoice(t, ownerID, "INV-20260115-0001", 15000)
		require.NoError(t, repo.Save(ctx, invoice))

		loaded, err := repo.FindByIDForOwner(ctx, ownerID, invoice.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, invoice.InvoiceNumber, loaded.InvoiceNumber)
		assert.Equal(t, billing.InvoiceStatusSent, loaded.Status)
		assert.Len(t, loaded.Items, 1)
		assert.True(t, loaded.Subtotal.Equal(decimal.NewFromInt(15000)))
		assert.True(t, loaded.TotalAmount.Equal(decimal.NewFromInt(15000)))
	})

	t.Run("returns nil for missing invoice", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("owner scoping hides other owners' invoices", func(t *testing.T) {
		ownerID := uuid.New()
		invoice := buildTestInvoice(t, ownerID, "INV-20260115-0002", 8000)
		require.NoError(t, repo.Save(ctx, invoice))

		loaded, err := repo.FindByIDForOwner(ctx, uuid.New(), invoice.ID)
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("finds by invoice number", func(t *testing.T) {
		ownerID := uuid.New()
		invoice := buildTestInvoice(t, ownerID, "INV-20260115-0003", 12000)
		require.NoError(t, repo.Save(ctx, invoice))

		loaded, err := repo.FindByNumber(ctx, "INV-20260115-0003")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, invoice.ID, loaded.ID)
	})

	t.Run("voided item survives the roundtrip", func(t *testing.T) {
		ownerID := uuid.New()
		invoice := buildTestInvoice(t, ownerID, "INV-20260115-0004", 10000)
		require.NoError(t, repo.Save(ctx, invoice))

		require.NoError(t, invoice.VoidItem(invoice.Items[0].ID))
		require.NoError(t, repo.SaveWithLock(ctx, invoice))

		loaded, err := repo.FindByIDForOwner(ctx, ownerID, invoice.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, billing.ItemStatusVoid, loaded.Items[0].Status)
		assert.True(t, loaded.Subtotal.IsZero())
	})
}

func TestGormInvoiceRepository_SaveWithLock(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	t.Run("bumps the version on success", func(t *testing.T) {
		ownerID := uuid.New()
		invoice := buildTestInvoice(t, ownerID, "INV-20260116-0001", 5000)
		require.NoError(t, repo.Save(ctx, invoice))
		require.Equal(t, 1, invoice.Version)

		require.NoError(t, invoice.ApplySettlement(kes(2000)))
		require.NoError(t, repo.SaveWithLock(ctx, invoice))
		assert.Equal(t, 2, invoice.Version)

		loaded, err := repo.FindByIDForOwner(ctx, ownerID, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.Version)
		assert.Equal(t, billing.InvoiceStatusPartiallyPaid, loaded.Status)
	})

	t.Run("rejects a stale version and restores it", func(t *testing.T) {
		ownerID := uuid.New()
		invoice := buildTestInvoice(t, ownerID, "INV-20260116-0002", 5000)
		require.NoError(t, repo.Save(ctx, invoice))

		stale, err := repo.FindByIDForOwner(ctx, ownerID, invoice.ID)
		require.NoError(t, err)

		require.NoError(t, invoice.ApplySettlement(kes(5000)))
		require.NoError(t, repo.SaveWithLock(ctx, invoice))

		require.NoError(t, stale.ApplySettlement(kes(2000)))
		err = repo.SaveWithLock(ctx, stale)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OPTIMISTIC_LOCK_ERROR", domainErr.Code)
		assert.Equal(t, 1, stale.Version, "failed save must not leave the version bumped")
	})
}

func TestGormInvoiceRepository_FindAllForOwner(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	ownerID := uuid.New()

	for i, number := range []string{"INV-20260117-0001", "INV-20260117-0002", "INV-20260117-0003"} {
		invoice := buildTestInvoice(t, ownerID, number, int64(1000*(i+1)))
		require.NoError(t, repo.Save(ctx, invoice))
	}
	other := buildTestInvoice(t, uuid.New(), "INV-20260117-0004", 999)
	require.NoError(t, repo.Save(ctx, other))

	t.Run("lists only the owner's invoices", func(t *testing.T) {
		invoices, err := repo.FindAllForOwner(ctx, ownerID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, invoices, 3)
	})

	t.Run("filters by status", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["status"] = string(billing.InvoiceStatusSent)

		invoices, err := repo.FindAllForOwner(ctx, ownerID, filter)
		require.NoError(t, err)
		assert.Len(t, invoices, 3)

		filter.Filters["status"] = string(billing.InvoiceStatusPaid)
		invoices, err = repo.FindAllForOwner(ctx, ownerID, filter)
		require.NoError(t, err)
		assert.Empty(t, invoices)
	})

	t.Run("paginates", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 2

		invoices, err := repo.FindAllForOwner(ctx, ownerID, filter)
		require.NoError(t, err)
		assert.Len(t, invoices, 2)

		total, err := repo.CountForOwner(ctx, ownerID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})
}

func TestGormInvoiceRepository_FindDueForOverdue(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	pastDue := buildTestInvoice(t, uuid.New(), "INV-20260118-0001", 5000)
	pastDue.DueDate = time.Now().Add(-72 * time.Hour)
	require.NoError(t, repo.Save(ctx, pastDue))

	current := buildTestInvoice(t, uuid.New(), "INV-20260118-0002", 5000)
	require.NoError(t, repo.Save(ctx, current))

	invoices, err := repo.FindDueForOverdue(ctx, time.Now(), 100)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, pastDue.ID, invoices[0].ID)
}

func TestGormInvoiceRepository_SummaryForOwner(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	paymentRepo := NewGormPaymentRepository(db)
	ctx := context.Background()
	ownerID := uuid.New()

	// A sent invoice for 10000 with a 4000 payment against it
	open := buildTestInvoice(t, ownerID, "INV-20260119-0001", 10000)
	require.NoError(t, repo.Save(ctx, open))

	payment, err := billing.NewPayment(ownerID, &open.ID, open.PropertyID, open.UnitID, open.TenantID, kes(4000), time.Now(), billing.PaymentTypePartial, billing.PaymentModeMpesa)
	require.NoError(t, err)
	require.NoError(t, paymentRepo.Save(ctx, payment))
	require.NoError(t, open.ApplySettlement(kes(4000)))
	require.NoError(t, repo.SaveWithLock(ctx, open))

	// A draft invoice that must not count as invoiced
	draft, err := billing.NewInvoice(ownerID, "INV-20260119-0002", uuid.New(), uuid.New(), uuid.New(), time.Now().AddDate(0, 0, 14))
	require.NoError(t, err)
	_, err = draft.AddItem(billing.ItemTypeRent, "Monthly rent", kes(7000), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, draft))

	summary, err := repo.SummaryForOwner(ctx, ownerID)
	require.NoError(t, err)

	assert.True(t, summary.TotalInvoiced.Equal(decimal.NewFromInt(10000)), "got %s", summary.TotalInvoiced)
	assert.True(t, summary.TotalCollected.Equal(decimal.NewFromInt(4000)), "got %s", summary.TotalCollected)
	assert.True(t, summary.TotalOutstanding.Equal(decimal.NewFromInt(6000)), "got %s", summary.TotalOutstanding)
	assert.Equal(t, int64(1), summary.CountByStatus[billing.InvoiceStatusPartiallyPaid])
	assert.Equal(t, int64(1), summary.CountByStatus[billing.InvoiceStatusDraft])
}
