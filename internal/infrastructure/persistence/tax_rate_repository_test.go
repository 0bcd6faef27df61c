package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
)

func TestGormTaxRateRepository(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormTaxRateRepository(db)
	ctx := context.Background()

	t.Run("saves and reloads a tax rate", func(t *testing.T) {
		rate, err := billing.NewTaxRate("VAT", decimal.NewFromInt(16))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, rate))

		loaded, err := repo.FindByID(ctx, rate.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, "VAT", loaded.Name)
		assert.True(t, loaded.Percentage.Equal(decimal.NewFromInt(16)))
	})

	t.Run("returns nil for missing rate", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("lists rates ordered by name", func(t *testing.T) {
		levy, err := billing.NewTaxRate("Catering levy", decimal.NewFromInt(2))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, levy))

		rates, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, rates, 2)
		assert.Equal(t, "Catering levy", rates[0].Name)
		assert.Equal(t, "VAT", rates[1].Name)
	})

	t.Run("deletes a rate", func(t *testing.T) {
		rate, err := billing.NewTaxRate("Service charge", decimal.NewFromInt(5))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, rate))

		require.NoError(t, repo.Delete(ctx, rate.ID))

		loaded, err := repo.FindByID(ctx, rate.ID)
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("deleting a missing rate reports not found", func(t *testing.T) {
		err := repo.Delete(ctx, uuid.New())
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}
