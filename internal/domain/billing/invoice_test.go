package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/domain/shared/valueobject"
)

func createTestInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv, err := NewInvoice(
		uuid.New(),
		"INV-20260115-0001",
		uuid.New(),
		uuid.New(),
		uuid.New(),
		time.Now().AddDate(0, 0, 14),
	)
	require.NoError(t, err)
	return inv
}

func addItem(t *testing.T, inv *Invoice, itemType ItemType, description string, amount float64) *InvoiceItem {
	t.Helper()
	item, err := inv.AddItem(itemType, description, valueobject.NewMoneyKESFromFloat(amount), nil)
	require.NoError(t, err)
	return item
}

func TestNewInvoice(t *testing.T) {
	t.Run("creates draft invoice with zero totals", func(t *testing.T) {
		inv := createTestInvoice(t)
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.True(t, inv.Subtotal.IsZero())
		assert.True(t, inv.TaxAmount.IsZero())
		assert.True(t, inv.TotalAmount.IsZero())
		assert.Equal(t, 1, inv.GetVersion())
		assert.Len(t, inv.GetDomainEvents(), 1)
	})

	tests := []struct {
		name          string
		invoiceNumber string
		propertyID    uuid.UUID
		unitID        uuid.UUID
		tenantID      uuid.UUID
		dueDate       time.Time
		wantCode      string
	}{
		{"empty invoice number", "", uuid.New(), uuid.New(), uuid.New(), time.Now(), "INVALID_INVOICE_NUMBER"},
		{"nil property", "INV-20260115-0001", uuid.Nil, uuid.New(), uuid.New(), time.Now(), "INVALID_PROPERTY"},
		{"nil unit", "INV-20260115-0001", uuid.New(), uuid.Nil, uuid.New(), time.Now(), "INVALID_UNIT"},
		{"nil tenant", "INV-20260115-0001", uuid.New(), uuid.New(), uuid.Nil, time.Now(), "INVALID_TENANT"},
		{"zero due date", "INV-20260115-0001", uuid.New(), uuid.New(), uuid.New(), time.Time{}, "INVALID_DUE_DATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInvoice(uuid.New(), tt.invoiceNumber, tt.propertyID, tt.unitID, tt.tenantID, tt.dueDate)
			require.Error(t, err)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}

func TestInvoiceAddItem(t *testing.T) {
	t.Run("adds items and updates totals", func(t *testing.T) {
		inv := createTestInvoice(t)
		addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
		addItem(t, inv, ItemTypeUtility, "Water usage", 150)

		assert.Equal(t, 2, inv.ItemCount())
		assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(1150)))
		assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(1150)))
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		inv := createTestInvoice(t)
		_, err := inv.AddItem(ItemTypeRent, "Monthly rent", valueobject.NewMoneyKESFromFloat(-1), nil)
		assert.Error(t, err)
	})

	t.Run("rejects invalid item type", func(t *testing.T) {
		inv := createTestInvoice(t)
		_, err := inv.AddItem(ItemType("subscription"), "Something", valueobject.NewMoneyKESFromFloat(10), nil)
		assert.Error(t, err)
	})

	t.Run("rejects items on sent invoice", func(t *testing.T) {
		inv := createTestInvoice(t)
		addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
		require.NoError(t, inv.MarkSent())
		_, err := inv.AddItem(ItemTypeOther, "Late fee", valueobject.NewMoneyKESFromFloat(50), nil)
		assert.Error(t, err)
	})
}

func TestInvoiceApplyTaxRate(t *testing.T) {
	t.Run("sixteen percent on 1150 yields 184 and total 1334", func(t *testing.T) {
		inv := createTestInvoice(t)
		addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
		addItem(t, inv, ItemTypeUtility, "Water usage", 150)

		rate, err := NewTaxRate("VAT 16%", decimal.NewFromInt(16))
		require.NoError(t, err)
		require.NoError(t, inv.ApplyTaxRate(rate))

		assert.Equal(t, "1150.00", inv.Subtotal.StringFixed(2))
		assert.Equal(t, "184.00", inv.TaxAmount.StringFixed(2))
		assert.Equal(t, "1334.00", inv.TotalAmount.StringFixed(2))
		assert.Equal(t, rate.ID, *inv.TaxRateID)
	})

	t.Run("rejected on non-draft invoice", func(t *testing.T) {
		inv := createTestInvoice(t)
		addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
		require.NoError(t, inv.MarkSent())

		rate, _ := NewTaxRate("VAT 16%", decimal.NewFromInt(16))
		assert.Error(t, inv.ApplyTaxRate(rate))
	})
}

func TestInvoiceVoidItem(t *testing.T) {
	t.Run("drops subtotal by exactly the voided amount", func(t *testing.T) {
		inv := createTestInvoice(t)
		addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
		item := addItem(t, inv, ItemTypeUtility, "Water usage", 150)

		require.NoError(t, inv.VoidItem(item.ID))

		assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, 1, inv.ActiveItemCount())
		assert.Equal(t, ItemStatusVoid, inv.GetItem(item.ID).Status)
	})

	t.Run("never changes tax amount", func(t *testing.T) {
		inv := createTestInvoice(t)
		addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
		item := addItem(t, inv, ItemTypeUtility, "Water usage", 150)
		rate, _ := NewTaxRate("VAT 16%", decimal.NewFromInt(16))
		require.NoError(t, inv.ApplyTaxRate(rate))
		require.NoError(t, inv.MarkSent())

		require.NoError(t, inv.VoidItem(item.ID))

		assert.Equal(t, "1000.00", inv.Subtotal.StringFixed(2))
		assert.Equal(t, "184.00", inv.TaxAmount.StringFixed(2))
		assert.Equal(t, "1184.00", inv.TotalAmount.StringFixed(2))
	})

	t.Run("voiding the last active item zeroes the totals", func(t *testing.T) {
		inv := createTestInvoice(t)
		item := addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)

		require.NoError(t, inv.VoidItem(item.ID))

		assert.True(t, inv.Subtotal.IsZero())
		assert.True(t, inv.TaxAmount.IsZero())
		assert.True(t, inv.TotalAmount.IsZero())
	})

	t.Run("voiding a void item fails", func(t *testing.T) {
		inv := createTestInvoice(t)
		item := addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
		addItem(t, inv, ItemTypeOther, "Cleaning", 100)
		require.NoError(t, inv.VoidItem(item.ID))

		err := inv.VoidItem(item.ID)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ITEM_ALREADY_VOID", domainErr.Code)
	})

	t.Run("unknown item fails", func(t *testing.T) {
		inv := createTestInvoice(t)
		addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
		assert.Error(t, inv.VoidItem(uuid.New()))
	})

	t.Run("rejected on paid invoice", func(t *testing.T) {
		inv := createTestInvoice(t)
		item := addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
		require.NoError(t, inv.MarkSent())
		require.NoError(t, inv.ApplySettlement(valueobject.NewMoneyKESFromFloat(1000)))

		assert.Error(t, inv.VoidItem(item.ID))
	})
}

func TestInvoiceRemoveItem(t *testing.T) {
	t.Run("removes item in draft", func(t *testing.T) {
		inv := createTestInvoice(t)
		item := addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
		addItem(t, inv, ItemTypeUtility, "Water usage", 150)

		require.NoError(t, inv.RemoveItem(item.ID))

		assert.Equal(t, 1, inv.ItemCount())
		assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(150)))
	})

	t.Run("rejected after sending", func(t *testing.T) {
		inv := createTestInvoice(t)
		item := addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
		require.NoError(t, inv.MarkSent())

		assert.Error(t, inv.RemoveItem(item.ID))
	})
}

func TestInvoiceRecalculateTotalsIdempotent(t *testing.T) {
	inv := createTestInvoice(t)
	addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
	addItem(t, inv, ItemTypeUtility, "Water usage", 150)
	rate, _ := NewTaxRate("VAT 16%", decimal.NewFromInt(16))
	require.NoError(t, inv.ApplyTaxRate(rate))

	before := inv.TotalAmount
	inv.recalculateTotals()
	inv.recalculateTotals()

	assert.True(t, inv.TotalAmount.Equal(before))
	assert.True(t, inv.TotalAmount.Equal(inv.Subtotal.Add(inv.TaxAmount)))
}

func TestInvoiceMarkSent(t *testing.T) {
	t.Run("draft with items transitions to sent", func(t *testing.T) {
		inv := createTestInvoice(t)
		addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)

		require.NoError(t, inv.MarkSent())

		assert.Equal(t, InvoiceStatusSent, inv.Status)
		assert.NotNil(t, inv.SentAt)
	})

	t.Run("rejected without active items", func(t *testing.T) {
		inv := createTestInvoice(t)
		err := inv.MarkSent()
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_ITEMS", domainErr.Code)
	})

	t.Run("rejected when all items void", func(t *testing.T) {
		inv := createTestInvoice(t)
		item := addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
		require.NoError(t, inv.VoidItem(item.ID))
		assert.Error(t, inv.MarkSent())
	})
}

func TestInvoiceMarkOverdue(t *testing.T) {
	t.Run("sent past due becomes overdue", func(t *testing.T) {
		inv := createTestInvoice(t)
		addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
		require.NoError(t, inv.MarkSent())

		require.NoError(t, inv.MarkOverdue(inv.DueDate.AddDate(0, 0, 1)))
		assert.Equal(t, InvoiceStatusOverdue, inv.Status)
	})

	t.Run("rejected before due date", func(t *testing.T) {
		inv := createTestInvoice(t)
		addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
		require.NoError(t, inv.MarkSent())

		assert.Error(t, inv.MarkOverdue(inv.DueDate.AddDate(0, 0, -1)))
	})

	t.Run("rejected in draft", func(t *testing.T) {
		inv := createTestInvoice(t)
		assert.Error(t, inv.MarkOverdue(inv.DueDate.AddDate(0, 0, 1)))
	})
}

func TestInvoiceCancel(t *testing.T) {
	t.Run("voids all items and zeroes every total", func(t *testing.T) {
		inv := createTestInvoice(t)
		addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
		addItem(t, inv, ItemTypeUtility, "Water usage", 150)
		rate, _ := NewTaxRate("VAT 16%", decimal.NewFromInt(16))
		require.NoError(t, inv.ApplyTaxRate(rate))
		require.NoError(t, inv.MarkSent())

		require.NoError(t, inv.Cancel("tenant moved out"))

		assert.Equal(t, InvoiceStatusCancelled, inv.Status)
		assert.Equal(t, 0, inv.ActiveItemCount())
		assert.True(t, inv.Subtotal.IsZero())
		assert.True(t, inv.TaxAmount.IsZero())
		assert.True(t, inv.TotalAmount.IsZero())
		assert.NotNil(t, inv.CancelledAt)
	})

	t.Run("requires a reason", func(t *testing.T) {
		inv := createTestInvoice(t)
		assert.Error(t, inv.Cancel(""))
	})

	t.Run("allowed on paid invoice", func(t *testing.T) {
		inv := createTestInvoice(t)
		addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
		require.NoError(t, inv.MarkSent())
		require.NoError(t, inv.ApplySettlement(valueobject.NewMoneyKESFromFloat(1000)))
		require.Equal(t, InvoiceStatusPaid, inv.Status)

		require.NoError(t, inv.Cancel("entered in error"))

		assert.Equal(t, InvoiceStatusCancelled, inv.Status)
		assert.True(t, inv.TotalAmount.IsZero())
	})

	t.Run("cancelled invoice rejects all further mutation", func(t *testing.T) {
		inv := createTestInvoice(t)
		item := addItem(t, inv, ItemTypeRent, "Monthly rent", 1000)
		require.NoError(t, inv.Cancel("duplicate entry"))

		_, err := inv.AddItem(ItemTypeOther, "Late fee", valueobject.NewMoneyKESFromFloat(50), nil)
		assert.Error(t, err)
		assert.Error(t, inv.VoidItem(item.ID))
		assert.Error(t, inv.MarkSent())
		assert.Error(t, inv.Cancel("again"))
		assert.Error(t, inv.ApplySettlement(valueobject.NewMoneyKESFromFloat(100)))
	})
}

func TestInvoiceApplySettlement(t *testing.T) {
	newSentInvoice := func(t *testing.T, total float64) *Invoice {
		inv := createTestInvoice(t)
		addItem(t, inv, ItemTypeRent, "Monthly rent", total)
		require.NoError(t, inv.MarkSent())
		return inv
	}

	t.Run("exact payment settles the invoice", func(t *testing.T) {
		inv := newSentInvoice(t, 1000)
		require.NoError(t, inv.ApplySettlement(valueobject.NewMoneyKESFromFloat(1000)))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("partial payment marks partially paid", func(t *testing.T) {
		inv := newSentInvoice(t, 1000)
		require.NoError(t, inv.ApplySettlement(valueobject.NewMoneyKESFromFloat(400)))
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	})

	t.Run("overpayment is accepted and pins paid", func(t *testing.T) {
		inv := newSentInvoice(t, 1000)
		require.NoError(t, inv.ApplySettlement(valueobject.NewMoneyKESFromFloat(600)))
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)

		require.NoError(t, inv.ApplySettlement(valueobject.NewMoneyKESFromFloat(1100)))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("zero paid total leaves status unchanged", func(t *testing.T) {
		inv := newSentInvoice(t, 1000)
		require.NoError(t, inv.ApplySettlement(valueobject.ZeroKES()))
		assert.Equal(t, InvoiceStatusSent, inv.Status)
	})

	t.Run("paid never regresses to partially paid", func(t *testing.T) {
		inv := newSentInvoice(t, 1000)
		require.NoError(t, inv.ApplySettlement(valueobject.NewMoneyKESFromFloat(1000)))
		require.NoError(t, inv.ApplySettlement(valueobject.NewMoneyKESFromFloat(400)))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("negative paid total fails", func(t *testing.T) {
		inv := newSentInvoice(t, 1000)
		assert.Error(t, inv.ApplySettlement(valueobject.NewMoneyKESFromFloat(-10)))
	})

	t.Run("overdue invoice settles to paid", func(t *testing.T) {
		inv := newSentInvoice(t, 1000)
		require.NoError(t, inv.MarkOverdue(inv.DueDate.AddDate(0, 0, 1)))
		require.NoError(t, inv.ApplySettlement(valueobject.NewMoneyKESFromFloat(1000)))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})
}

func TestInvoiceStatusTransitions(t *testing.T) {
	tests := []struct {
		from    InvoiceStatus
		to      InvoiceStatus
		allowed bool
	}{
		{InvoiceStatusDraft, InvoiceStatusSent, true},
		{InvoiceStatusDraft, InvoiceStatusCancelled, true},
		{InvoiceStatusDraft, InvoiceStatusPaid, false},
		{InvoiceStatusSent, InvoiceStatusPaid, true},
		{InvoiceStatusSent, InvoiceStatusPartiallyPaid, true},
		{InvoiceStatusSent, InvoiceStatusOverdue, true},
		{InvoiceStatusSent, InvoiceStatusDraft, false},
		{InvoiceStatusPartiallyPaid, InvoiceStatusPaid, true},
		{InvoiceStatusPartiallyPaid, InvoiceStatusOverdue, true},
		{InvoiceStatusOverdue, InvoiceStatusPaid, true},
		{InvoiceStatusOverdue, InvoiceStatusPartiallyPaid, true},
		{InvoiceStatusPaid, InvoiceStatusCancelled, true},
		{InvoiceStatusPaid, InvoiceStatusPartiallyPaid, false},
		{InvoiceStatusCancelled, InvoiceStatusSent, false},
		{InvoiceStatusCancelled, InvoiceStatusPaid, false},
		{InvoiceStatusCancelled, InvoiceStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestInvoiceStatusIsValid(t *testing.T) {
	valid := []InvoiceStatus{
		InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid,
		InvoiceStatusPartiallyPaid, InvoiceStatusOverdue, InvoiceStatusCancelled,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, InvoiceStatus("open").IsValid())
}
